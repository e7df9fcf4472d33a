package plants

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hadeeqati/hadeeqati-backend/internal/repo"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// Repository persists plants and their watering history.
type Repository struct {
	repo.Base
}

// NewRepository binds a plants repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

type listQuery struct {
	ownerID uuid.UUID
	dueAt   *time.Time
	limit   int
	cursor  *pagination.Cursor
}

func (r *Repository) Create(ctx context.Context, plant *models.Plant) error {
	return r.DB(ctx).Omit(clause.Associations).Create(plant).Error
}

// FindByID loads a plant, deleted or not, with its plant type.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Plant, error) {
	var plant models.Plant
	if err := r.DB(ctx).Preload("PlantType").First(&plant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plant, nil
}

// List returns the owner's live plants newest first.
func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Plant, error) {
	query := r.DB(ctx).
		Preload("PlantType").
		Model(&models.Plant{}).
		Where("owner_id = ? AND is_deleted = ?", q.ownerID, false)
	if q.dueAt != nil {
		query = query.Where("next_watering_date IS NOT NULL AND next_watering_date <= ?", *q.dueAt)
	}
	var rows []models.Plant
	if err := repo.NewestFirst(query, "", q.cursor).Limit(q.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save writes every plant column without touching associations.
func (r *Repository) Save(ctx context.Context, plant *models.Plant) error {
	return r.DB(ctx).Omit(clause.Associations).Save(plant).Error
}

func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.Plant{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (r *Repository) UpdateWatering(ctx context.Context, id uuid.UUID, last, next time.Time) error {
	return r.DB(ctx).
		Model(&models.Plant{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_watered_date":  last,
			"next_watering_date": next,
		}).Error
}

func (r *Repository) UpdateFertilizing(ctx context.Context, id uuid.UUID, last time.Time, next *time.Time) error {
	return r.DB(ctx).
		Model(&models.Plant{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_fertilized_date":  last,
			"next_fertilizing_date": next,
		}).Error
}

func (r *Repository) UpdatePhoto(ctx context.Context, id uuid.UUID, url string) error {
	return r.DB(ctx).
		Model(&models.Plant{}).
		Where("id = ?", id).
		Update("photo_url", url).Error
}

// AddWatering appends a watering event. History rows are never updated.
func (r *Repository) AddWatering(ctx context.Context, entry *models.WateringHistory) error {
	return r.DB(ctx).Create(entry).Error
}

// History lists watering events for a plant, newest first.
func (r *Repository) History(ctx context.Context, plantID uuid.UUID) ([]models.WateringHistory, error) {
	var rows []models.WateringHistory
	err := r.DB(ctx).
		Where("plant_id = ?", plantID).
		Order("watered_at DESC").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
