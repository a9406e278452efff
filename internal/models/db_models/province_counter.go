package db_models

type ProvinceCounter struct {
	BaseModel
	Province       string `gorm:"uniqueIndex;not null"`
	Registrations  int64  `gorm:"not null;default:0"`
	CIDPThreshold  int64  `gorm:"column:cidp_threshold;not null"`
	CIDPUnlockedAt *int64 `gorm:"column:cidp_unlocked_at"`
}

// DominicanProvinces are the 31 provinces plus the Distrito Nacional.
var DominicanProvinces = []string{
	"Azua", "Bahoruco", "Barahona", "Dajabón", "Distrito Nacional", "Duarte",
	"El Seibo", "Elías Piña", "Espaillat", "Hato Mayor", "Hermanas Mirabal",
	"Independencia", "La Altagracia", "La Romana", "La Vega",
	"María Trinidad Sánchez", "Monseñor Nouel", "Monte Cristi", "Monte Plata",
	"Pedernales", "Peravia", "Puerto Plata", "Samaná", "San Cristóbal",
	"San José de Ocoa", "San Juan", "San Pedro de Macorís", "Sánchez Ramírez",
	"Santiago", "Santiago Rodríguez", "Santo Domingo", "Valverde",
}
