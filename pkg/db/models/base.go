package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills a nil primary key so inserts work without a database-side
// uuid default.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&PlantType{},
		&Plant{},
		&WateringHistory{},
		&Diagnosis{},
		&Category{},
		&Product{},
		&ProductReview{},
		&Order{},
		&OrderItem{},
	}
}

// AutoMigrate creates or updates every table. Production schemas are owned
// by the goose migrations; this is for sqlite development and tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
