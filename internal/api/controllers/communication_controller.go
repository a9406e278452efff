package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gladiadores/internal/models/request_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

type CommunicationController struct {
	communicationService services.CommunicationServiceInterface
}

func NewCommunicationController(communicationService services.CommunicationServiceInterface) *CommunicationController {
	return &CommunicationController{communicationService: communicationService}
}

// ListMine godoc
// @Summary Communications addressed to the caller
// @Description National ones plus those targeted at the caller's province or passport level
// @Tags Communications
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /communications [get]
func (cc *CommunicationController) ListMine(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := cc.communicationService.ListForMe(c.Request.Context(), accountID, intQuery(c, "page", 1), intQuery(c, "pageSize", 20))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, items, "Communications fetched successfully")
}

// ListAll godoc
// @Summary Every communication
// @Tags Admin
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/communications [get]
func (cc *CommunicationController) ListAll(c *gin.Context) {
	items, err := cc.communicationService.ListAll(c.Request.Context(), intQuery(c, "page", 1), intQuery(c, "pageSize", 20))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, items, "Communications fetched successfully")
}

// Create godoc
// @Summary Publish a communication
// @Description Pushed to connected clients and optionally emailed to the audience
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.CreateCommunicationRequest true "Communication"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/communications [post]
func (cc *CommunicationController) Create(c *gin.Context) {
	authorID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.CreateCommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	item, err := cc.communicationService.Create(c.Request.Context(), authorID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, item, "Communication published")
}
