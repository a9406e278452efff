package utils

import "errors"

var (
	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrDatabaseError   = errors.New("database error")
	ErrStorageError    = errors.New("storage error")

	// auth
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidRole        = errors.New("invalid role")

	// registration
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("account already registered")
	ErrCedulaTaken          = errors.New("cedula already registered")
	ErrInvalidCedula        = errors.New("invalid cedula")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrInvalidProvince      = errors.New("unknown province")
	ErrReferralNotFound     = errors.New("referral code not found")
	ErrSelfReferral         = errors.New("cannot refer yourself")

	// staircase
	ErrStepOutOfOrder   = errors.New("staircase step out of order")
	ErrStepAlreadyDone  = errors.New("staircase step already completed")
	ErrCedulaMismatch   = errors.New("document cedula does not match")
	ErrCedulaUnreadable = errors.New("no cedula found in document text")
	ErrInvalidInterests = errors.New("invalid interest selection")
	ErrInvalidUpload    = errors.New("invalid upload")
	ErrBiometricSession = errors.New("biometric session not found or expired")
	ErrBiometricFailed  = errors.New("biometric verification failed")
	ErrDocumentMissing  = errors.New("document image missing")
	ErrInterestNotFound = errors.New("interest not found")
	ErrInterestExists   = errors.New("interest already exists")

	// donations and votes
	ErrDonationNotFound        = errors.New("donation not found")
	ErrDonationAlreadyReviewed = errors.New("donation already reviewed")
	ErrInvalidAmount           = errors.New("invalid donation amount")
	ErrVoteNotPending          = errors.New("vote evidence is not pending review")

	// provinces and communications
	ErrProvinceNotFound     = errors.New("province not found")
	ErrInvalidAudience      = errors.New("invalid communication audience")
	ErrCommunicationMissing = errors.New("communication not found")
)
