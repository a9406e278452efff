package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gladiadores/internal/models/request_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

type StaircaseController struct {
	staircaseService services.StaircaseServiceInterface
	documentService  services.DocumentServiceInterface
}

func NewStaircaseController(staircaseService services.StaircaseServiceInterface, documentService services.DocumentServiceInterface) *StaircaseController {
	return &StaircaseController{
		staircaseService: staircaseService,
		documentService:  documentService,
	}
}

// Progress godoc
// @Summary Get staircase progress
// @Tags Staircase
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /staircase [get]
func (s *StaircaseController) Progress(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	progress, err := s.staircaseService.Progress(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, progress, "Progress fetched successfully")
}

// AcceptOath godoc
// @Summary Accept the Gladiador oath
// @Tags Staircase
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /staircase/oath [post]
func (s *StaircaseController) AcceptOath(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	progress, err := s.staircaseService.AcceptOath(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, progress, "Oath accepted")
}

// UploadDocument godoc
// @Summary Upload a side of the cédula
// @Tags Staircase
// @Accept multipart/form-data
// @Produce json
// @Param side path string true "front | back"
// @Param file formData file true "JPEG, PNG or WEBP image"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /staircase/document/{side} [post]
func (s *StaircaseController) UploadDocument(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	side := c.Param("side")
	if side != "front" && side != "back" {
		utils.RespondError(c, http.StatusBadRequest, "side must be front or back")
		return
	}

	up, closeFn, err := formUpload(c, "file")
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	defer closeFn()

	progress, err := s.staircaseService.UploadDocument(c.Request.Context(), accountID, side, up)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, progress, "Document uploaded")
}

// VerifyCedula godoc
// @Summary Match OCR text against the declared cédula
// @Description The verdict is returned even when the match fails so the client can show the read number
// @Tags Staircase
// @Accept json
// @Produce json
// @Param request body request_models.VerifyCedulaRequest true "OCR text"
// @Success 200 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Security BearerAuth
// @Router /staircase/cedula/verify [post]
func (s *StaircaseController) VerifyCedula(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.VerifyCedulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	result, err := s.staircaseService.VerifyCedula(c.Request.Context(), accountID, req.OCRText)
	if err != nil {
		if result != nil && (errors.Is(err, utils.ErrCedulaMismatch) || errors.Is(err, utils.ErrCedulaUnreadable)) {
			utils.RespondErrorData(c, http.StatusUnprocessableEntity, "Document cedula does not match the registration", result)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Cedula verified")
}

// BeginBiometric godoc
// @Summary Start the passkey ceremony
// @Tags Staircase
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /staircase/biometric/begin [post]
func (s *StaircaseController) BeginBiometric(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	challenge, err := s.staircaseService.BeginBiometric(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, challenge, "Biometric challenge created")
}

// FinishBiometric godoc
// @Summary Finish the passkey ceremony
// @Tags Staircase
// @Accept json
// @Produce json
// @Param request body request_models.FinishBiometricRequest true "Session and attestation"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Security BearerAuth
// @Router /staircase/biometric/finish [post]
func (s *StaircaseController) FinishBiometric(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.FinishBiometricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	progress, err := s.staircaseService.FinishBiometric(c.Request.Context(), accountID, req.SessionID, req.Credential)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, progress, "Biometric verified")
}

// SelectInterests godoc
// @Summary Pick 1 to 5 interests
// @Description Last step of the staircase
// @Tags Staircase
// @Accept json
// @Produce json
// @Param request body request_models.SelectInterestsRequest true "Interest slugs"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /staircase/interests [post]
func (s *StaircaseController) SelectInterests(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.SelectInterestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	progress, err := s.staircaseService.SelectInterests(c.Request.Context(), accountID, req.Interests)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, progress, "Interests saved")
}

// GetMyDocuments godoc
// @Summary Short-lived links to own uploaded documents
// @Tags Staircase
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /documents/me [get]
func (s *StaircaseController) GetMyDocuments(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	urls, err := s.documentService.GetOwnDocumentURLs(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, urls, "Documents fetched successfully")
}
