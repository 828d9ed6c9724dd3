package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every relational table of the service
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Tag{},
		&Question{},
		&Answer{},
		&Vote{},
		&Notification{},
	)
}
