package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
)

// Diagnosis stores one classifier run against an uploaded image. The
// bilingual texts are copied from the condition catalog at creation.
type Diagnosis struct {
	ID          uuid.UUID                              `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID                              `gorm:"column:user_id;type:uuid;not null;index"`
	PlantID     *uuid.UUID                             `gorm:"column:plant_id;type:uuid"`
	ImageURL    string                                 `gorm:"column:image_url;not null"`
	Condition   enums.PlantCondition                   `gorm:"column:condition;not null"`
	Name        i18n.Text                              `gorm:"embedded;embeddedPrefix:condition_name_"`
	Confidence  float64                                `gorm:"column:confidence;not null"`
	Scores      datatypes.JSONType[map[string]float64] `gorm:"column:scores"`
	Description i18n.Text                              `gorm:"embedded;embeddedPrefix:description_"`
	Treatment   datatypes.JSONType[i18n.TextList]      `gorm:"column:treatment"`
	Prevention  datatypes.JSONType[i18n.TextList]      `gorm:"column:prevention"`
	IsResolved  bool                                   `gorm:"column:is_resolved;not null;default:false"`
	ResolvedAt  *time.Time                             `gorm:"column:resolved_at"`
	CreatedAt   time.Time                              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                              `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Diagnosis) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}
