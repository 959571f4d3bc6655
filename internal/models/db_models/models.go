package db_models

// All lists every table managed by the migrator.
func All() []any {
	return []any{
		&Account{},
		&Plan{},
		&Subscription{},
		&Payment{},
		&Product{},
		&SiteSettings{},
		&LandingBlock{},
		&EmailTemplate{},
		&Wallet{},
		&WalletTransaction{},
		&Phase{},
		&Commission{},
		&AuditLog{},
		&AdminNote{},
	}
}
