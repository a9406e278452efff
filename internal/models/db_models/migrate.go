package db_models

// All lists every table owned by the service, in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&UserRole{},
		&Registration{},
		&Donation{},
		&ProvinceCounter{},
		&Communication{},
		&Interest{},
		&WebAuthnCredential{},
	}
}
