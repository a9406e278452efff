package controllers

import (
	"github.com/gin-gonic/gin"

	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

type PassportController struct {
	passportService services.PassportServiceInterface
}

func NewPassportController(passportService services.PassportServiceInterface) *PassportController {
	return &PassportController{passportService: passportService}
}

// GetPassport godoc
// @Summary Get own Gladiador passport
// @Description Level, points, referrals and what is missing for the next level
// @Tags Passport
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /passport [get]
func (p *PassportController) GetPassport(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	passport, err := p.passportService.GetPassport(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, passport, "Passport fetched successfully")
}
