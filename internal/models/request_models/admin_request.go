package request_models

import "github.com/google/uuid"

type AssignRoleRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
	Role      string    `json:"role" binding:"required,oneof=admin moderator user"`
}

type CreateCommunicationRequest struct {
	Title         string  `json:"title" binding:"required,min=3,max=140"`
	Body          string  `json:"body" binding:"required,min=1,max=5000"`
	Audience      string  `json:"audience" binding:"required,oneof=all province level"`
	Province      *string `json:"province"`
	PassportLevel *string `json:"passport_level" binding:"omitempty,oneof=none bronze golden"`
	SendEmail     bool    `json:"send_email"`
}

type SetThresholdRequest struct {
	Threshold int64 `json:"threshold" binding:"required,gt=0"`
}

type CreateInterestRequest struct {
	Slug   string `json:"slug" binding:"required,min=2,max=40"`
	EsName string `json:"es_name" binding:"required,min=2,max=80"`
	Icon   string `json:"icon" binding:"omitempty,max=40"`
}
