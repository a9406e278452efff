package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceProvince Audience = "province"
	AudienceLevel    Audience = "level"
)

type Communication struct {
	BaseModel
	Title         string         `gorm:"not null"`
	Body          string         `gorm:"type:text;not null"`
	Audience      Audience       `gorm:"size:16;index;not null"`
	Province      *string        `gorm:"index"`
	PassportLevel *PassportLevel `gorm:"size:16"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;not null"`
	SendEmail     bool
	EmailsSent    int
	Metadata      datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}
