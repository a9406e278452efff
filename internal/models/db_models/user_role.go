package db_models

import "github.com/google/uuid"

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

type UserRole struct {
	BaseModel
	AccountID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_account_role"`
	Role      string     `gorm:"size:32;not null;uniqueIndex:idx_user_roles_account_role"`
	GrantedBy *uuid.UUID `gorm:"type:uuid"`
}
