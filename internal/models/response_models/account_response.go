package response_models

import "time"

type AccountLoginResponse struct {
	Token           string    `json:"token"`
	ExpiresAt       time.Time `json:"expires_at"`
	Roles           []string  `json:"roles"`
	HasRegistration bool      `json:"has_registration"`
}

type AccountResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Roles           []string `json:"roles"`
	HasRegistration bool     `json:"has_registration"`
}
