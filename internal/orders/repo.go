package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/internal/repo"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status *enums.OrderStatus, limit int, cursor *pagination.Cursor) ([]models.Order, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, trackingNumber *string) error
}

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// Create inserts the order together with its items.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, status *enums.OrderStatus, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	query := r.DB(ctx).
		Preload("Items").
		Model(&models.Order{}).
		Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.Order
	err := repo.NewestFirst(query, "", cursor).Limit(limit).Find(&rows).Error
	return rows, err
}

// TransitionStatus moves the order to `to` only while its current status is
// one of from, and reports whether the row changed.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, trackingNumber *string) error {
	updates := map[string]any{"status": status}
	if trackingNumber != nil {
		updates["tracking_number"] = *trackingNumber
	}
	return r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}
