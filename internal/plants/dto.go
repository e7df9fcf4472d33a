package plants

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hadeeqati/hadeeqati-backend/pkg/care"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// CreatePlantRequest describes a new plant. Omitted intervals fall back to
// the plant type's interval, then to the default.
type CreatePlantRequest struct {
	PlantTypeID             *uuid.UUID `json:"plant_type_id,omitempty"`
	Nickname                i18n.Text  `json:"nickname"`
	PlantName               i18n.Text  `json:"plant_name"`
	LatinName               *string    `json:"latin_name,omitempty" validate:"omitempty,max=150"`
	Description             i18n.Text  `json:"description"`
	Location                i18n.Text  `json:"location"`
	WateringIntervalDays    *int       `json:"watering_interval_days,omitempty" validate:"omitempty,gte=0,lte=365"`
	LastWateredDate         *time.Time `json:"last_watered_date,omitempty"`
	Sunlight                i18n.Text  `json:"sunlight"`
	TemperatureMin          *float64   `json:"temperature_min,omitempty"`
	TemperatureMax          *float64   `json:"temperature_max,omitempty"`
	Humidity                i18n.Text  `json:"humidity"`
	SoilType                i18n.Text  `json:"soil_type"`
	FertilizingIntervalDays *int       `json:"fertilizing_interval_days,omitempty" validate:"omitempty,gte=0,lte=365"`
	LastFertilizedDate      *time.Time `json:"last_fertilized_date,omitempty"`
}

// UpdatePlantRequest is a partial update; nil fields are left alone and
// bilingual fields merge per language.
type UpdatePlantRequest struct {
	PlantTypeID             *uuid.UUID `json:"plant_type_id,omitempty"`
	Nickname                *i18n.Text `json:"nickname,omitempty"`
	PlantName               *i18n.Text `json:"plant_name,omitempty"`
	LatinName               *string    `json:"latin_name,omitempty" validate:"omitempty,max=150"`
	Description             *i18n.Text `json:"description,omitempty"`
	Location                *i18n.Text `json:"location,omitempty"`
	WateringIntervalDays    *int       `json:"watering_interval_days,omitempty" validate:"omitempty,gte=0,lte=365"`
	Sunlight                *i18n.Text `json:"sunlight,omitempty"`
	TemperatureMin          *float64   `json:"temperature_min,omitempty"`
	TemperatureMax          *float64   `json:"temperature_max,omitempty"`
	Humidity                *i18n.Text `json:"humidity,omitempty"`
	SoilType                *i18n.Text `json:"soil_type,omitempty"`
	FertilizingIntervalDays *int       `json:"fertilizing_interval_days,omitempty" validate:"omitempty,gte=0,lte=365"`
}

// WaterRequest records a watering event; WateredAt defaults to now.
type WaterRequest struct {
	WateredAt *time.Time `json:"watered_at,omitempty"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// FertilizeRequest records a fertilizing event; FertilizedAt defaults to now.
type FertilizeRequest struct {
	FertilizedAt *time.Time `json:"fertilized_at,omitempty"`
}

// ListParams filters the owner's plant list.
type ListParams struct {
	pagination.Params
	DueOnly bool
}

// PlantView is the localized plant representation.
type PlantView struct {
	ID                      uuid.UUID  `json:"id"`
	PlantTypeID             *uuid.UUID `json:"plant_type_id,omitempty"`
	PlantTypeName           string     `json:"plant_type_name,omitempty"`
	Nickname                string     `json:"nickname"`
	PlantName               string     `json:"plant_name"`
	LatinName               *string    `json:"latin_name,omitempty"`
	Description             string     `json:"description,omitempty"`
	Location                string     `json:"location,omitempty"`
	PhotoURL                *string    `json:"photo_url,omitempty"`
	WateringIntervalDays    int        `json:"watering_interval_days"`
	LastWateredDate         *time.Time `json:"last_watered_date,omitempty"`
	NextWateringDate        *time.Time `json:"next_watering_date,omitempty"`
	NeedsWatering           bool       `json:"needs_watering"`
	Sunlight                string     `json:"sunlight,omitempty"`
	TemperatureMin          *float64   `json:"temperature_min,omitempty"`
	TemperatureMax          *float64   `json:"temperature_max,omitempty"`
	Humidity                string     `json:"humidity,omitempty"`
	SoilType                string     `json:"soil_type,omitempty"`
	FertilizingIntervalDays *int       `json:"fertilizing_interval_days,omitempty"`
	LastFertilizedDate      *time.Time `json:"last_fertilized_date,omitempty"`
	NextFertilizingDate     *time.Time `json:"next_fertilizing_date,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// WateringView is one watering history row.
type WateringView struct {
	ID        uuid.UUID `json:"id"`
	PlantID   uuid.UUID `json:"plant_id"`
	WateredAt time.Time `json:"watered_at"`
	Notes     *string   `json:"notes,omitempty"`
}

// Localize projects a plant into lang. now decides NeedsWatering.
func Localize(p *models.Plant, lang enums.Language, now time.Time) PlantView {
	view := PlantView{
		ID:                      p.ID,
		PlantTypeID:             p.PlantTypeID,
		Nickname:                p.Nickname.In(lang),
		PlantName:               p.PlantName.In(lang),
		LatinName:               p.LatinName,
		Description:             p.Description.In(lang),
		Location:                p.Location.In(lang),
		PhotoURL:                p.PhotoURL,
		WateringIntervalDays:    p.WateringIntervalDays,
		LastWateredDate:         p.LastWateredDate,
		NextWateringDate:        p.NextWateringDate,
		NeedsWatering:           care.IsWateringDue(p.NextWateringDate, now),
		Sunlight:                p.Sunlight.In(lang),
		TemperatureMin:          p.TemperatureMin,
		TemperatureMax:          p.TemperatureMax,
		Humidity:                p.Humidity.In(lang),
		SoilType:                p.SoilType.In(lang),
		FertilizingIntervalDays: p.FertilizingIntervalDays,
		LastFertilizedDate:      p.LastFertilizedDate,
		NextFertilizingDate:     p.NextFertilizingDate,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
	if p.PlantType != nil {
		view.PlantTypeName = p.PlantType.Name.In(lang)
	}
	return view
}

// LocalizeHistory maps watering rows to their transport shape.
func LocalizeHistory(rows []models.WateringHistory) []WateringView {
	out := make([]WateringView, 0, len(rows))
	for _, row := range rows {
		out = append(out, WateringView{
			ID:        row.ID,
			PlantID:   row.PlantID,
			WateredAt: row.WateredAt,
			Notes:     row.Notes,
		})
	}
	return out
}

func mergeText(dst *i18n.Text, patch *i18n.Text) {
	if patch != nil {
		*dst = dst.Merge(*patch)
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
