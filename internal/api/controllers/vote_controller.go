package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gladiadores/internal/models/request_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

type VoteController struct {
	voteService services.VoteServiceInterface
}

func NewVoteController(voteService services.VoteServiceInterface) *VoteController {
	return &VoteController{voteService: voteService}
}

// SubmitEvidence godoc
// @Summary Upload proof of vote
// @Tags Votes
// @Accept multipart/form-data
// @Produce json
// @Param evidence formData file true "Photo of the inked finger or voting certificate"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /votes/evidence [post]
func (v *VoteController) SubmitEvidence(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	up, closeFn, err := formUpload(c, "evidence")
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	defer closeFn()

	reg, err := v.voteService.SubmitEvidence(c.Request.Context(), accountID, up)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, reg, "Vote evidence submitted")
}

// Review godoc
// @Summary Validate or reject vote evidence
// @Tags Admin
// @Accept json
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Param request body request_models.ReviewVoteRequest true "Decision"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/votes/{registrationId} [post]
func (v *VoteController) Review(c *gin.Context) {
	reviewerID, ok := currentUser(c)
	if !ok {
		return
	}
	registrationID, ok := uuidParam(c, "registrationId")
	if !ok {
		return
	}

	var req request_models.ReviewVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	if !req.Approve && req.Reason == "" {
		utils.RespondError(c, http.StatusBadRequest, "A reason is required when rejecting")
		return
	}

	reg, err := v.voteService.Review(c.Request.Context(), reviewerID, registrationID, req.Approve, req.Reason)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, reg, "Vote reviewed")
}
