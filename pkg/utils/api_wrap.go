package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errorMapping struct {
	err     error
	code    int
	message string
}

// serviceErrors is checked in order; the first errors.Is match wins.
var serviceErrors = []errorMapping{
	{ErrInvalidPage, http.StatusBadRequest, "Page must be greater than 0"},
	{ErrInvalidPageSize, http.StatusBadRequest, "Page size must be between 1 and 100"},

	{ErrAccountNotFound, http.StatusUnauthorized, "Invalid email or password"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{ErrEmailAlreadyExists, http.StatusConflict, "Email already registered"},
	{ErrInvalidResetToken, http.StatusBadRequest, "Reset token is invalid or expired"},
	{ErrForbidden, http.StatusForbidden, "Forbidden: insufficient permissions"},
	{ErrInvalidRole, http.StatusBadRequest, "Unknown role"},

	{ErrRegistrationNotFound, http.StatusNotFound, "Registration not found"},
	{ErrAlreadyRegistered, http.StatusConflict, "Account already has a registration"},
	{ErrCedulaTaken, http.StatusConflict, "Cedula already registered"},
	{ErrInvalidCedula, http.StatusBadRequest, "Cedula is not valid"},
	{ErrInvalidPhone, http.StatusBadRequest, "Phone number is not valid"},
	{ErrInvalidProvince, http.StatusBadRequest, "Unknown province"},
	{ErrReferralNotFound, http.StatusNotFound, "Referral code not found"},
	{ErrSelfReferral, http.StatusBadRequest, "You cannot refer yourself"},

	{ErrStepOutOfOrder, http.StatusConflict, "Complete the previous step first"},
	{ErrStepAlreadyDone, http.StatusConflict, "Step already completed"},
	{ErrCedulaMismatch, http.StatusUnprocessableEntity, "Document cedula does not match the registration"},
	{ErrCedulaUnreadable, http.StatusUnprocessableEntity, "Could not read a cedula from the document"},
	{ErrInvalidInterests, http.StatusBadRequest, "Select between 1 and 5 valid interests"},
	{ErrInvalidUpload, http.StatusBadRequest, "Invalid file upload"},
	{ErrBiometricSession, http.StatusBadRequest, "Biometric session not found or expired"},
	{ErrBiometricFailed, http.StatusUnprocessableEntity, "Biometric verification failed"},
	{ErrDocumentMissing, http.StatusConflict, "Upload the front of your cedula first"},
	{ErrInterestNotFound, http.StatusNotFound, "Interest not found"},
	{ErrInterestExists, http.StatusConflict, "Interest already exists"},

	{ErrDonationNotFound, http.StatusNotFound, "Donation not found"},
	{ErrDonationAlreadyReviewed, http.StatusConflict, "Donation already reviewed"},
	{ErrInvalidAmount, http.StatusBadRequest, "Donation amount must be positive"},
	{ErrVoteNotPending, http.StatusConflict, "Vote evidence is not pending review"},

	{ErrProvinceNotFound, http.StatusNotFound, "Province not found"},
	{ErrInvalidAudience, http.StatusBadRequest, "Invalid communication audience"},
	{ErrCommunicationMissing, http.StatusNotFound, "Communication not found"},
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, APIResponse{
		Status:  "success",
		Code:    http.StatusCreated,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

// RespondErrorData is RespondError with a payload, for failures the client still needs to render.
func RespondErrorData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func HandleServiceError(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			RespondError(c, m.code, m.message)
			return
		}
	}

	msg := "unknown error"
	if errors.Is(err, ErrDatabaseError) || errors.Is(err, ErrStorageError) {
		msg = "backend error"
	}
	zap.L().Error(msg,
		zap.String("trace_id", c.GetString("trace_id")),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	RespondError(c, http.StatusInternalServerError, "Internal server error")
}
