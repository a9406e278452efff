package db_models

// Interest is a civic topic a gladiador can follow during the last staircase step.
type Interest struct {
	BaseModel
	Slug   string `gorm:"uniqueIndex;not null"`
	EsName string `gorm:"not null"`
	Icon   string
}
