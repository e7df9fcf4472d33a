package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
)

// Plant is a user's plant record with its care schedule.
type Plant struct {
	ID                      uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID                 uuid.UUID  `gorm:"column:owner_id;type:uuid;not null;index"`
	PlantTypeID             *uuid.UUID `gorm:"column:plant_type_id;type:uuid"`
	PlantType               *PlantType `gorm:"foreignKey:PlantTypeID"`
	Nickname                i18n.Text  `gorm:"embedded;embeddedPrefix:nickname_"`
	PlantName               i18n.Text  `gorm:"embedded;embeddedPrefix:plant_name_"`
	LatinName               *string    `gorm:"column:latin_name"`
	Description             i18n.Text  `gorm:"embedded;embeddedPrefix:description_"`
	Location                i18n.Text  `gorm:"embedded;embeddedPrefix:location_"`
	PhotoURL                *string    `gorm:"column:photo_url"`
	WateringIntervalDays    int        `gorm:"column:watering_interval_days;not null;default:7"`
	LastWateredDate         *time.Time `gorm:"column:last_watered_date"`
	NextWateringDate        *time.Time `gorm:"column:next_watering_date;index"`
	Sunlight                i18n.Text  `gorm:"embedded;embeddedPrefix:sunlight_"`
	TemperatureMin          *float64   `gorm:"column:temperature_min"`
	TemperatureMax          *float64   `gorm:"column:temperature_max"`
	Humidity                i18n.Text  `gorm:"embedded;embeddedPrefix:humidity_"`
	SoilType                i18n.Text  `gorm:"embedded;embeddedPrefix:soil_type_"`
	FertilizingIntervalDays *int       `gorm:"column:fertilizing_interval_days"`
	LastFertilizedDate      *time.Time `gorm:"column:last_fertilized_date"`
	NextFertilizingDate     *time.Time `gorm:"column:next_fertilizing_date"`
	IsDeleted               bool       `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt               time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Plant) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// PlantType is an admin-curated species entry.
type PlantType struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name                 i18n.Text `gorm:"embedded;embeddedPrefix:name_"`
	Description          i18n.Text `gorm:"embedded;embeddedPrefix:description_"`
	CareInstructions     i18n.Text `gorm:"embedded;embeddedPrefix:care_instructions_"`
	WateringIntervalDays *int      `gorm:"column:watering_interval_days"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PlantType) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// WateringHistory is an append-only log of watering events.
type WateringHistory struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PlantID   uuid.UUID `gorm:"column:plant_id;type:uuid;not null;index"`
	WateredAt time.Time `gorm:"column:watered_at;not null"`
	Notes     *string   `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (WateringHistory) TableName() string {
	return "watering_history"
}

func (w *WateringHistory) BeforeCreate(*gorm.DB) error {
	assignID(&w.ID)
	return nil
}
