package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gladiadores/internal/models/db_models"
	"gladiadores/internal/models/request_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

type DonationController struct {
	donationService services.DonationServiceInterface
}

func NewDonationController(donationService services.DonationServiceInterface) *DonationController {
	return &DonationController{donationService: donationService}
}

// Submit godoc
// @Summary Report a donation
// @Description Stores the transfer receipt and queues the donation for review
// @Tags Donations
// @Accept multipart/form-data
// @Produce json
// @Param amount_minor formData int true "Amount in cents"
// @Param currency formData string true "DOP | USD"
// @Param note formData string false "Free text"
// @Param evidence formData file true "Receipt image"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /donations [post]
func (d *DonationController) Submit(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	var form request_models.CreateDonationForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	up, closeFn, err := formUpload(c, "evidence")
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	defer closeFn()

	donation, err := d.donationService.Submit(c.Request.Context(), accountID, form, up)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, donation, "Donation submitted for review")
}

// ListMine godoc
// @Summary List own donations
// @Tags Donations
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /donations/me [get]
func (d *DonationController) ListMine(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	donations, err := d.donationService.ListOwn(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, donations, "Donations fetched successfully")
}

// ListForReview godoc
// @Summary List donations by status
// @Tags Admin
// @Produce json
// @Param status query string false "pending | approved | rejected (default: pending)"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/donations [get]
func (d *DonationController) ListForReview(c *gin.Context) {
	status := c.DefaultQuery("status", string(db_models.DonationPending))
	switch db_models.DonationStatus(status) {
	case db_models.DonationPending, db_models.DonationApproved, db_models.DonationRejected:
	default:
		utils.RespondError(c, http.StatusBadRequest, "Invalid status")
		return
	}

	donations, err := d.donationService.ListByStatus(c.Request.Context(), status, intQuery(c, "page", 1), intQuery(c, "pageSize", 20))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, donations, "Donations fetched successfully")
}

// Approve godoc
// @Summary Approve a donation
// @Tags Admin
// @Produce json
// @Param id path string true "Donation ID"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/donations/{id}/approve [post]
func (d *DonationController) Approve(c *gin.Context) {
	reviewerID, ok := currentUser(c)
	if !ok {
		return
	}
	donationID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	donation, err := d.donationService.Approve(c.Request.Context(), reviewerID, donationID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, donation, "Donation approved")
}

// Reject godoc
// @Summary Reject a donation
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Donation ID"
// @Param request body request_models.RejectRequest true "Reason"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/donations/{id}/reject [post]
func (d *DonationController) Reject(c *gin.Context) {
	reviewerID, ok := currentUser(c)
	if !ok {
		return
	}
	donationID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req request_models.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	donation, err := d.donationService.Reject(c.Request.Context(), reviewerID, donationID, req.Reason)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, donation, "Donation rejected")
}
