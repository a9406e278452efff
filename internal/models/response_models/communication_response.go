package response_models

import "time"

type CommunicationResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Audience      string    `json:"audience"`
	Province      string    `json:"province,omitempty"`
	PassportLevel string    `json:"passport_level,omitempty"`
	EmailsSent    int       `json:"emails_sent,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type RoleResponse struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	GrantedAt time.Time `json:"granted_at"`
}

type AppVersionResponse struct {
	Version        string `json:"version"`
	MinVersion     string `json:"min_version"`
	UpdateRequired bool   `json:"update_required"`
}
