package request_models

import "encoding/json"

type VerifyCedulaRequest struct {
	// Text recognised on the device from the front of the cédula.
	OCRText string `json:"ocr_text" binding:"required,max=4000"`
}

type SelectInterestsRequest struct {
	Interests []string `json:"interests" binding:"required,min=1,max=5,dive,required"`
}

type FinishBiometricRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	// Raw PublicKeyCredential JSON produced by navigator.credentials.create.
	Credential json.RawMessage `json:"credential" binding:"required"`
}
