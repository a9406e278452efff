package response_models

import "time"

type DonationResponse struct {
	ID              string     `json:"id"`
	RegistrationID  string     `json:"registration_id"`
	DonorName       string     `json:"donor_name,omitempty"`
	AmountMinor     int64      `json:"amount_minor"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	EvidenceURL     string     `json:"evidence_url,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
