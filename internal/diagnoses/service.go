package diagnoses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/internal/media"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
	"github.com/hadeeqati/hadeeqati-backend/pkg/metrics"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

const notFoundMessage = "Diagnosis not found"

// Service runs and stores plant diagnoses.
type Service interface {
	Diagnose(ctx context.Context, userID uuid.UUID, plantID *uuid.UUID, image []byte) (*models.Diagnosis, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Diagnosis], error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Diagnosis, error)
	Resolve(ctx context.Context, userID, id uuid.UUID) (*models.Diagnosis, error)
	Conditions() []Condition
}

type plantLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plant, error)
}

// ServiceParams bundles the diagnosis service dependencies. Classifier is
// built once at startup and shared.
type ServiceParams struct {
	DB                 *db.Client
	Plants             plantLookup
	Classifier         Classifier
	Media              media.Service
	Metrics            *metrics.DomainMetrics
	Logger             *logger.Logger
	FallbackConfidence float64
	Now                func() time.Time
}

type service struct {
	repo               *Repository
	plants             plantLookup
	classifier         Classifier
	media              media.Service
	metrics            *metrics.DomainMetrics
	logg               *logger.Logger
	fallbackConfidence float64
	now                func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, fmt.Errorf("database client required")
	case params.Plants == nil:
		return nil, fmt.Errorf("plant lookup required")
	case params.Classifier == nil:
		return nil, fmt.Errorf("classifier required")
	case params.Media == nil:
		return nil, fmt.Errorf("media service required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:               NewRepository(params.DB.DB()),
		plants:             params.Plants,
		classifier:         params.Classifier,
		media:              params.Media,
		metrics:            params.Metrics,
		logg:               params.Logger,
		fallbackConfidence: params.FallbackConfidence,
		now:                now,
	}, nil
}

func (s *service) Diagnose(ctx context.Context, userID uuid.UUID, plantID *uuid.UUID, image []byte) (*models.Diagnosis, error) {
	if plantID != nil {
		if err := s.checkPlant(ctx, userID, *plantID); err != nil {
			return nil, err
		}
	}

	id := uuid.New()
	stored, err := s.media.StoreImage(ctx, enums.MediaKindDiagnosisImage, id.String(), image)
	if err != nil {
		return nil, err
	}

	result := s.classify(ctx, image)
	condition, _ := LookupCondition(result.Condition)

	diagnosis := &models.Diagnosis{
		ID:          id,
		CreatedAt:   s.now(),
		UserID:      userID,
		PlantID:     plantID,
		ImageURL:    stored.URL,
		Condition:   condition.ID,
		Name:        condition.Name,
		Confidence:  result.Confidence,
		Scores:      datatypes.NewJSONType(result.Scores),
		Description: condition.Description,
		Treatment:   datatypes.NewJSONType(condition.Treatment),
		Prevention:  datatypes.NewJSONType(condition.Prevention),
	}
	if err := s.repo.Create(ctx, diagnosis); err != nil {
		_ = s.media.Remove(ctx, stored.URL)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create diagnosis")
	}
	s.metrics.DiagnosisRecorded(condition.ID.String())
	return diagnosis, nil
}

// classify never fails: classifier errors and unknown conditions degrade to
// healthy with the fallback confidence.
func (s *service) classify(ctx context.Context, image []byte) Result {
	result, err := s.classifier.Classify(ctx, image)
	if err == nil {
		if _, ok := LookupCondition(result.Condition); ok {
			return result
		}
		err = fmt.Errorf("unknown condition %q", result.Condition)
	}

	s.metrics.ClassifierFallback()
	if s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "classifier_error", err.Error()), "diagnosis.classifier_fallback")
	}
	return Result{
		Condition:  enums.PlantConditionHealthy,
		Confidence: s.fallbackConfidence,
		Scores:     map[string]float64{enums.PlantConditionHealthy.String(): s.fallbackConfidence},
	}
}

func (s *service) checkPlant(ctx context.Context, userID, plantID uuid.UUID) error {
	plant, err := s.plants.FindByID(ctx, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Plant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plant")
	}
	if plant.IsDeleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Plant not found")
	}
	if plant.OwnerID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not enough permissions")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Diagnosis], error) {
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		c, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = c
	}
	rows, err := s.repo.ListForUser(ctx, userID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list diagnoses")
	}
	items, next := pagination.Trim(rows, params.Limit, func(d models.Diagnosis) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
	})
	return &pagination.Page[models.Diagnosis]{Items: items, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*models.Diagnosis, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load diagnosis")
	}
	if d.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return d, nil
}

func (s *service) Resolve(ctx context.Context, userID, id uuid.UUID) (*models.Diagnosis, error) {
	d, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d.IsResolved {
		return d, nil
	}
	at := s.now()
	if err := s.repo.MarkResolved(ctx, d.ID, at); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve diagnosis")
	}
	d.IsResolved = true
	d.ResolvedAt = &at
	return d, nil
}

func (s *service) Conditions() []Condition {
	return Catalog()
}

