package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hadeeqati/hadeeqati-backend/internal/repo"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// Repository persists marketplace products. Order and review services build
// it over their transaction to share the stock and aggregate writes.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Omit(clause.Associations).Create(product).Error
}

// Save writes every product column without touching the category.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Omit(clause.Associations).Save(product).Error
}

// FindByID loads a product with its category, including soft-deleted rows.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActive loads a product that has not been soft-deleted.
func (r *Repository) FindActive(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected, res.Error
}

func (r *Repository) UpdateImage(ctx context.Context, id uuid.UUID, url string) error {
	return r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("image_url", url).Error
}

// DecrementStock removes quantity from a live product only when enough stock
// remains at write time. It reports whether the row was updated.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_deleted = ? AND stock_quantity >= ?", id, false, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementStock returns quantity to a product regardless of its state.
func (r *Repository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
}

// UpdateRating writes the derived review aggregate.
func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error {
	return r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"average_rating": average, "review_count": count}).Error
}

// List returns live products matching the filters, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters, limit int, cursor *pagination.Cursor) ([]models.Product, error) {
	query := r.DB(ctx).
		Preload("Category").
		Model(&models.Product{}).
		Where("is_deleted = ?", false)

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.IsPlant != nil {
		query = query.Where("is_plant = ?", *filters.IsPlant)
	}
	if term := strings.ToLower(strings.TrimSpace(filters.Search)); term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"LOWER(name_en) LIKE ? OR LOWER(name_ar) LIKE ? OR LOWER(description_en) LIKE ? OR LOWER(description_ar) LIKE ? OR LOWER(latin_name) LIKE ?",
			like, like, like, like, like,
		)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.AvailableOnly {
		query = query.Where("stock_quantity > ?", 0)
	}

	var rows []models.Product
	if err := repo.NewestFirst(query, "", cursor).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
