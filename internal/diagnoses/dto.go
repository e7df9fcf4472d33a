package diagnoses

import (
	"time"

	"github.com/google/uuid"

	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
)

// View is the localized diagnosis.
type View struct {
	ID            uuid.UUID            `json:"id"`
	PlantID       *uuid.UUID           `json:"plant_id,omitempty"`
	ImageURL      string               `json:"image_url"`
	ConditionID   enums.PlantCondition `json:"condition_id"`
	ConditionName string               `json:"condition"`
	Confidence    float64              `json:"confidence"`
	Scores        map[string]float64   `json:"scores,omitempty"`
	Description   string               `json:"description"`
	Treatment     []string             `json:"treatment"`
	Prevention    []string             `json:"prevention_tips"`
	IsResolved    bool                 `json:"is_resolved"`
	ResolvedAt    *time.Time           `json:"resolved_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// ConditionView is the localized catalog entry.
type ConditionView struct {
	ID          enums.PlantCondition `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Treatment   []string             `json:"treatment"`
	Prevention  []string             `json:"prevention_tips"`
}

// Localize projects a diagnosis into lang.
func Localize(d *models.Diagnosis, lang enums.Language) View {
	return View{
		ID:            d.ID,
		PlantID:       d.PlantID,
		ImageURL:      d.ImageURL,
		ConditionID:   d.Condition,
		ConditionName: d.Name.In(lang),
		Confidence:    d.Confidence,
		Scores:        d.Scores.Data(),
		Description:   d.Description.In(lang),
		Treatment:     d.Treatment.Data().In(lang),
		Prevention:    d.Prevention.Data().In(lang),
		IsResolved:    d.IsResolved,
		ResolvedAt:    d.ResolvedAt,
		CreatedAt:     d.CreatedAt,
	}
}

// LocalizeCondition projects a catalog entry into lang.
func LocalizeCondition(c Condition, lang enums.Language) ConditionView {
	return ConditionView{
		ID:          c.ID,
		Name:        c.Name.In(lang),
		Description: c.Description.In(lang),
		Treatment:   c.Treatment.In(lang),
		Prevention:  c.Prevention.In(lang),
	}
}
