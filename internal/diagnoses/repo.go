package diagnoses

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/internal/repo"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// Repository persists diagnoses.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, d *models.Diagnosis) error {
	return r.DB(ctx).Create(d).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Diagnosis, error) {
	var d models.Diagnosis
	if err := r.DB(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListForUser returns the user's diagnoses newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Diagnosis, error) {
	query := r.DB(ctx).Model(&models.Diagnosis{}).Where("user_id = ?", userID)
	var rows []models.Diagnosis
	err := repo.NewestFirst(query, "", cursor).Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *Repository) MarkResolved(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.Diagnosis{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_resolved": true, "resolved_at": at}).Error
}
