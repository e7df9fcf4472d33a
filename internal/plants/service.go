package plants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/internal/media"
	"github.com/hadeeqati/hadeeqati-backend/pkg/care"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/metrics"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

const (
	plantNotFoundMessage     = "Plant not found"
	plantTypeNotFoundMessage = "Plant type not found"
)

// Service manages a user's plants and their care schedule.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreatePlantRequest) (*models.Plant, error)
	List(ctx context.Context, ownerID uuid.UUID, params ListParams) (*pagination.Page[models.Plant], error)
	Get(ctx context.Context, ownerID, plantID uuid.UUID) (*models.Plant, error)
	Update(ctx context.Context, ownerID, plantID uuid.UUID, req UpdatePlantRequest) (*models.Plant, error)
	Delete(ctx context.Context, ownerID, plantID uuid.UUID) error
	Water(ctx context.Context, ownerID, plantID uuid.UUID, req WaterRequest) (*models.Plant, error)
	Fertilize(ctx context.Context, ownerID, plantID uuid.UUID, req FertilizeRequest) (*models.Plant, error)
	WateringHistory(ctx context.Context, ownerID, plantID uuid.UUID) ([]models.WateringHistory, error)
	UploadPhoto(ctx context.Context, ownerID, plantID uuid.UUID, data []byte) (*models.Plant, error)
}

type plantTypeLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PlantType, error)
}

// ServiceParams bundles the plant service dependencies.
type ServiceParams struct {
	DB         *db.Client
	PlantTypes plantTypeLookup
	Media      media.Service
	Metrics    *metrics.DomainMetrics
	Now        func() time.Time
}

type service struct {
	db         *db.Client
	repo       *Repository
	plantTypes plantTypeLookup
	media      media.Service
	metrics    *metrics.DomainMetrics
	now        func() time.Time
}

// NewService builds the plant service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.PlantTypes == nil {
		return nil, fmt.Errorf("plant type lookup required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media service required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		db:         params.DB,
		repo:       NewRepository(params.DB.DB()),
		plantTypes: params.PlantTypes,
		media:      params.Media,
		metrics:    params.Metrics,
		now:        now,
	}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, req CreatePlantRequest) (*models.Plant, error) {
	if strings.TrimSpace(req.PlantName.EN) == "" {
		return nil, validationError("plant_name.en", "is required")
	}
	if err := checkTemperatures(req.TemperatureMin, req.TemperatureMax); err != nil {
		return nil, err
	}

	interval := care.DefaultWateringIntervalDays
	var plantType *models.PlantType
	if req.PlantTypeID != nil {
		pt, err := s.lookupPlantType(ctx, *req.PlantTypeID)
		if err != nil {
			return nil, err
		}
		plantType = pt
		if pt.WateringIntervalDays != nil {
			interval = *pt.WateringIntervalDays
		}
	}
	if req.WateringIntervalDays != nil {
		interval = *req.WateringIntervalDays
	}

	now := s.now()
	last, next := care.InitialWatering(req.LastWateredDate, interval, now)
	plant := &models.Plant{
		OwnerID:                 ownerID,
		PlantTypeID:             req.PlantTypeID,
		Nickname:                req.Nickname,
		PlantName:               req.PlantName,
		LatinName:               trimmed(req.LatinName),
		Description:             req.Description,
		Location:                req.Location,
		WateringIntervalDays:    interval,
		LastWateredDate:         last,
		NextWateringDate:        &next,
		Sunlight:                req.Sunlight,
		TemperatureMin:          req.TemperatureMin,
		TemperatureMax:          req.TemperatureMax,
		Humidity:                req.Humidity,
		SoilType:                req.SoilType,
		FertilizingIntervalDays: req.FertilizingIntervalDays,
		LastFertilizedDate:      req.LastFertilizedDate,
		NextFertilizingDate:     care.ScheduleNextFertilizing(req.LastFertilizedDate, req.FertilizingIntervalDays),
		CreatedAt:               now,
	}
	if err := s.repo.Create(ctx, plant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create plant")
	}
	plant.PlantType = plantType
	return plant, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, params ListParams) (*pagination.Page[models.Plant], error) {
	q := listQuery{ownerID: ownerID, limit: pagination.LimitWithBuffer(params.Limit)}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		q.cursor = cursor
	}
	if params.DueOnly {
		now := s.now()
		q.dueAt = &now
	}

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plants")
	}
	items, next := pagination.Trim(rows, params.Limit, func(p models.Plant) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return &pagination.Page[models.Plant]{Items: items, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, ownerID, plantID uuid.UUID) (*models.Plant, error) {
	return s.owned(ctx, s.repo, ownerID, plantID)
}

func (s *service) Update(ctx context.Context, ownerID, plantID uuid.UUID, req UpdatePlantRequest) (*models.Plant, error) {
	plant, err := s.owned(ctx, s.repo, ownerID, plantID)
	if err != nil {
		return nil, err
	}

	if req.PlantTypeID != nil {
		pt, err := s.lookupPlantType(ctx, *req.PlantTypeID)
		if err != nil {
			return nil, err
		}
		plant.PlantTypeID = req.PlantTypeID
		plant.PlantType = pt
	}
	mergeText(&plant.Nickname, req.Nickname)
	mergeText(&plant.PlantName, req.PlantName)
	mergeText(&plant.Description, req.Description)
	mergeText(&plant.Location, req.Location)
	mergeText(&plant.Sunlight, req.Sunlight)
	mergeText(&plant.Humidity, req.Humidity)
	mergeText(&plant.SoilType, req.SoilType)
	if req.LatinName != nil {
		plant.LatinName = trimmed(req.LatinName)
	}
	if req.TemperatureMin != nil {
		plant.TemperatureMin = req.TemperatureMin
	}
	if req.TemperatureMax != nil {
		plant.TemperatureMax = req.TemperatureMax
	}
	if err := checkTemperatures(plant.TemperatureMin, plant.TemperatureMax); err != nil {
		return nil, err
	}

	if req.WateringIntervalDays != nil {
		plant.WateringIntervalDays = *req.WateringIntervalDays
		if next, ok := care.RescheduleWatering(plant.LastWateredDate, plant.WateringIntervalDays); ok {
			plant.NextWateringDate = &next
		}
	}
	if req.FertilizingIntervalDays != nil {
		plant.FertilizingIntervalDays = req.FertilizingIntervalDays
		plant.NextFertilizingDate = care.ScheduleNextFertilizing(plant.LastFertilizedDate, plant.FertilizingIntervalDays)
	}

	if err := s.repo.Save(ctx, plant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plant")
	}
	return plant, nil
}

func (s *service) Delete(ctx context.Context, ownerID, plantID uuid.UUID) error {
	if _, err := s.owned(ctx, s.repo, ownerID, plantID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, plantID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete plant")
	}
	return nil
}

func (s *service) Water(ctx context.Context, ownerID, plantID uuid.UUID, req WaterRequest) (*models.Plant, error) {
	wateredAt := s.now()
	if req.WateredAt != nil {
		wateredAt = req.WateredAt.UTC()
	}

	var plant *models.Plant
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := NewRepository(tx)
		p, err := s.owned(ctx, txRepo, ownerID, plantID)
		if err != nil {
			return err
		}
		if err := txRepo.AddWatering(ctx, &models.WateringHistory{
			PlantID:   p.ID,
			WateredAt: wateredAt,
			Notes:     trimmed(req.Notes),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record watering")
		}
		next := care.ScheduleNextWatering(wateredAt, p.WateringIntervalDays)
		if err := txRepo.UpdateWatering(ctx, p.ID, wateredAt, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update watering dates")
		}
		p.LastWateredDate = &wateredAt
		p.NextWateringDate = &next
		plant = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.PlantWatered()
	return plant, nil
}

func (s *service) Fertilize(ctx context.Context, ownerID, plantID uuid.UUID, req FertilizeRequest) (*models.Plant, error) {
	plant, err := s.owned(ctx, s.repo, ownerID, plantID)
	if err != nil {
		return nil, err
	}
	fertilizedAt := s.now()
	if req.FertilizedAt != nil {
		fertilizedAt = req.FertilizedAt.UTC()
	}
	next := care.ScheduleNextFertilizing(&fertilizedAt, plant.FertilizingIntervalDays)
	if err := s.repo.UpdateFertilizing(ctx, plant.ID, fertilizedAt, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update fertilizing dates")
	}
	plant.LastFertilizedDate = &fertilizedAt
	plant.NextFertilizingDate = next
	return plant, nil
}

func (s *service) WateringHistory(ctx context.Context, ownerID, plantID uuid.UUID) ([]models.WateringHistory, error) {
	if _, err := s.owned(ctx, s.repo, ownerID, plantID); err != nil {
		return nil, err
	}
	rows, err := s.repo.History(ctx, plantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list watering history")
	}
	return rows, nil
}

func (s *service) UploadPhoto(ctx context.Context, ownerID, plantID uuid.UUID, data []byte) (*models.Plant, error) {
	plant, err := s.owned(ctx, s.repo, ownerID, plantID)
	if err != nil {
		return nil, err
	}
	stored, err := s.media.StoreImage(ctx, enums.MediaKindPlantPhoto, plant.ID.String(), data)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePhoto(ctx, plant.ID, stored.URL); err != nil {
		_ = s.media.Remove(ctx, stored.URL)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plant photo")
	}
	if plant.PhotoURL != nil {
		_ = s.media.Remove(ctx, *plant.PhotoURL)
	}
	plant.PhotoURL = &stored.URL
	return plant, nil
}

// owned loads a live plant and checks it belongs to ownerID.
func (s *service) owned(ctx context.Context, r *Repository, ownerID, plantID uuid.UUID) (*models.Plant, error) {
	plant, err := r.FindByID(ctx, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, plantNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plant")
	}
	if plant.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, plantNotFoundMessage)
	}
	if plant.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not enough permissions")
	}
	return plant, nil
}

func (s *service) lookupPlantType(ctx context.Context, id uuid.UUID) (*models.PlantType, error) {
	pt, err := s.plantTypes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, plantTypeNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plant type")
	}
	return pt, nil
}

func checkTemperatures(min, max *float64) error {
	if min != nil && max != nil && *min > *max {
		return validationError("temperature_min", "must not exceed temperature_max")
	}
	return nil
}

func validationError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}
