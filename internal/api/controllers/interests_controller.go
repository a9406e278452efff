package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gladiadores/internal/models/request_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

type InterestController struct {
	interestService services.InterestServiceInterface
}

func NewInterestController(interestService services.InterestServiceInterface) *InterestController {
	return &InterestController{
		interestService: interestService,
	}
}

// ListInterests godoc
// @Summary List selectable interests
// @Tags Interests
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.APIResponse
// @Router /interests [get]
func (ic *InterestController) ListInterests(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page number")
		return
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page size (must be 1-100)")
		return
	}

	interests, err := ic.interestService.GetAllInterests(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, interests, "Fetched interests successfully")
}

// CreateInterest godoc
// @Summary Add an interest
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.CreateInterestRequest true "Interest"
// @Success 201 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/interests [post]
func (ic *InterestController) CreateInterest(c *gin.Context) {
	var req request_models.CreateInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	interest, err := ic.interestService.CreateInterest(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, interest, "Interest created")
}
