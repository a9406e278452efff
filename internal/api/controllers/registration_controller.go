package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gladiadores/internal/models/request_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

const (
	defaultQRSize      = 256
	defaultLeaderboard = 20
)

type RegistrationController struct {
	registrationService services.RegistrationServiceInterface
}

func NewRegistrationController(registrationService services.RegistrationServiceInterface) *RegistrationController {
	return &RegistrationController{
		registrationService: registrationService,
	}
}

// Register godoc
// @Summary Register as a Gladiador
// @Description Create the caller's registration, bump the province counter and credit the referrer
// @Tags Registrations
// @Accept json
// @Produce json
// @Param request body request_models.RegisterRequest true "Registration payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /registrations [post]
func (r *RegistrationController) Register(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	reg, err := r.registrationService.Register(c.Request.Context(), accountID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, reg, "Registration created successfully")
}

// GetMine godoc
// @Summary Get own registration
// @Description Registration of the caller with cédula and phone masked
// @Tags Registrations
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /registrations/me [get]
func (r *RegistrationController) GetMine(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	reg, err := r.registrationService.GetSafe(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, reg, "Registration fetched successfully")
}

// LookupReferrer godoc
// @Summary Preview a referral code
// @Description Public preview of who invited you: first name and province only
// @Tags Referrals
// @Produce json
// @Param code path string true "Referral code"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /referrals/{code} [get]
func (r *RegistrationController) LookupReferrer(c *gin.Context) {
	preview, err := r.registrationService.LookupReferrer(c.Request.Context(), c.Param("code"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, preview, "Referrer found")
}

// ReferralStats godoc
// @Summary Get own referral stats
// @Tags Referrals
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /referrals/me [get]
func (r *RegistrationController) ReferralStats(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := r.registrationService.ReferralStats(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, stats, "Referral stats fetched successfully")
}

// ReferralQR godoc
// @Summary Invite link as a QR code
// @Tags Referrals
// @Produce png
// @Param size query int false "Image size in pixels (default: 256, 128-1024)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /referrals/me/qr [get]
func (r *RegistrationController) ReferralQR(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	size := intQuery(c, "size", defaultQRSize)
	if size < 128 || size > 1024 {
		utils.RespondError(c, http.StatusBadRequest, "size must be between 128 and 1024")
		return
	}

	png, err := r.registrationService.ReferralQR(c.Request.Context(), accountID, size)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

// Leaderboard godoc
// @Summary Top Gladiadores by points
// @Tags Registrations
// @Produce json
// @Param province query string false "Restrict to one province"
// @Param limit query int false "Entries to return (default: 20, max: 100)"
// @Success 200 {object} utils.APIResponse
// @Router /leaderboard [get]
func (r *RegistrationController) Leaderboard(c *gin.Context) {
	limit := intQuery(c, "limit", defaultLeaderboard)
	if limit < 1 || limit > 100 {
		utils.RespondError(c, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	entries, err := r.registrationService.Leaderboard(c.Request.Context(), c.Query("province"), limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, entries, "Leaderboard fetched successfully")
}
