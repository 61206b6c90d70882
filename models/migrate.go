package models

import "gorm.io/gorm"

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{
		&Owner{},
		&Settings{},
		&Customer{},
		&Karigar{},
		&Order{},
		&KarigarAssignment{},
		&Session{},
		&CodeSequence{},
	}
}

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
