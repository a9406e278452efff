package db_models

type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-"`
	LastLoginAt  *int64

	Roles []UserRole `gorm:"foreignKey:AccountID"`
}
