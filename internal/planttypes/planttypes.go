// Package planttypes manages the admin-curated plant species catalog.
package planttypes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/internal/repo"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
)

const (
	notFoundMessage  = "Plant type not found"
	duplicateMessage = "Plant type with this name already exists"
)

// CreateRequest describes a new plant type.
type CreateRequest struct {
	Name                 i18n.Text `json:"name"`
	Description          i18n.Text `json:"description"`
	CareInstructions     i18n.Text `json:"care_instructions"`
	WateringIntervalDays *int      `json:"watering_interval_days,omitempty" validate:"omitempty,gte=0,lte=365"`
}

// UpdateRequest is a partial plant type update.
type UpdateRequest struct {
	Name                 *i18n.Text `json:"name,omitempty"`
	Description          *i18n.Text `json:"description,omitempty"`
	CareInstructions     *i18n.Text `json:"care_instructions,omitempty"`
	WateringIntervalDays *int       `json:"watering_interval_days,omitempty" validate:"omitempty,gte=0,lte=365"`
}

// View is the localized plant type.
type View struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description,omitempty"`
	CareInstructions     string    `json:"care_instructions,omitempty"`
	WateringIntervalDays *int      `json:"watering_interval_days,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// Localize projects a plant type into lang.
func Localize(pt *models.PlantType, lang enums.Language) View {
	return View{
		ID:                   pt.ID,
		Name:                 pt.Name.In(lang),
		Description:          pt.Description.In(lang),
		CareInstructions:     pt.CareInstructions.In(lang),
		WateringIntervalDays: pt.WateringIntervalDays,
		CreatedAt:            pt.CreatedAt,
	}
}

// Repository persists plant types.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, pt *models.PlantType) error {
	return r.DB(ctx).Create(pt).Error
}

func (r *Repository) Save(ctx context.Context, pt *models.PlantType) error {
	return r.DB(ctx).Save(pt).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PlantType, error) {
	var pt models.PlantType
	if err := r.DB(ctx).First(&pt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pt, nil
}

// FindByName matches the English name case-insensitively.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.PlantType, error) {
	var pt models.PlantType
	if err := r.DB(ctx).Where("LOWER(name_en) = ?", strings.ToLower(strings.TrimSpace(name))).First(&pt).Error; err != nil {
		return nil, err
	}
	return &pt, nil
}

// List returns every plant type ordered by English name.
func (r *Repository) List(ctx context.Context) ([]models.PlantType, error) {
	var rows []models.PlantType
	err := r.DB(ctx).Order("name_en ASC").Find(&rows).Error
	return rows, err
}

// Service exposes the plant type catalog.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*models.PlantType, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.PlantType, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PlantType, error)
	List(ctx context.Context) ([]models.PlantType, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("plant type repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*models.PlantType, error) {
	if strings.TrimSpace(req.Name.EN) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"name.en": "is required"})
	}
	if err := s.ensureUniqueName(ctx, req.Name.EN, uuid.Nil); err != nil {
		return nil, err
	}
	pt := &models.PlantType{
		Name:                 req.Name,
		Description:          req.Description,
		CareInstructions:     req.CareInstructions,
		WateringIntervalDays: req.WateringIntervalDays,
	}
	if err := s.repo.Create(ctx, pt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create plant type")
	}
	return pt, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.PlantType, error) {
	pt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if req.Name.EN != "" && !strings.EqualFold(req.Name.EN, pt.Name.EN) {
			if err := s.ensureUniqueName(ctx, req.Name.EN, pt.ID); err != nil {
				return nil, err
			}
		}
		pt.Name = pt.Name.Merge(*req.Name)
	}
	if req.Description != nil {
		pt.Description = pt.Description.Merge(*req.Description)
	}
	if req.CareInstructions != nil {
		pt.CareInstructions = pt.CareInstructions.Merge(*req.CareInstructions)
	}
	if req.WateringIntervalDays != nil {
		pt.WateringIntervalDays = req.WateringIntervalDays
	}
	if err := s.repo.Save(ctx, pt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plant type")
	}
	return pt, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PlantType, error) {
	pt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plant type")
	}
	return pt, nil
}

func (s *service) List(ctx context.Context) ([]models.PlantType, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plant types")
	}
	return rows, nil
}

func (s *service) ensureUniqueName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return pkgerrors.New(pkgerrors.CodeConflict, duplicateMessage)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check plant type name")
	}
	return nil
}
