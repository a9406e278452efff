package response_models

import "gladiadores/pkg/utils"

type StaircaseStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type StaircaseProgress struct {
	Steps       []StaircaseStep `json:"steps"`
	CurrentStep string          `json:"current_step,omitempty"`
	Percent     int             `json:"percent"`
	Completed   bool            `json:"completed"`
}

type CedulaVerification struct {
	Match    utils.CedulaMatch `json:"match"`
	Progress StaircaseProgress `json:"progress"`
}

type BiometricChallenge struct {
	SessionID string `json:"session_id"`
	// PublicKeyCredentialCreationOptions to hand to navigator.credentials.create.
	Options interface{} `json:"options"`
}

type DocumentURLs struct {
	CedulaFront  string `json:"cedula_front,omitempty"`
	CedulaBack   string `json:"cedula_back,omitempty"`
	VoteEvidence string `json:"vote_evidence,omitempty"`
	ExpiresIn    int64  `json:"expires_in_seconds"`
}

type InterestResponse struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	EsName string `json:"es_name"`
	Icon   string `json:"icon,omitempty"`
}
