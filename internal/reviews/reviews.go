// Package reviews records product ratings and keeps the product aggregate in
// step with them.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/internal/products"
	"github.com/hadeeqati/hadeeqati-backend/internal/repo"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/metrics"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// DuplicateMessage is returned for a second review by the same user.
const DuplicateMessage = "You have already reviewed this product"

// AddReviewRequest is the review payload.
type AddReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"gte=1,lte=5"`
	Comment   *string   `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// Review is a stored rating plus the reviewer's username.
type Review struct {
	models.ProductReview `gorm:"embedded"`
	ReviewerUsername     string `gorm:"column:reviewer_username"`
}

// View is the review response body.
type View struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewView projects a stored review into its response body.
func NewView(r Review) View {
	return View{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Username:  r.ReviewerUsername,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// Repository persists reviews.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, review *models.ProductReview) error {
	return r.DB(ctx).Create(review).Error
}

func (r *Repository) Exists(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.ProductReview{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error
	return count > 0, err
}

type aggregate struct {
	Count   int
	Average float64
}

// Aggregate recomputes count and mean over every review of the product.
func (r *Repository) Aggregate(ctx context.Context, productID uuid.UUID) (aggregate, error) {
	var agg aggregate
	err := r.DB(ctx).
		Model(&models.ProductReview{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	return agg, err
}

func (r *Repository) ListForProduct(ctx context.Context, productID uuid.UUID, limit int, cursor *pagination.Cursor) ([]Review, error) {
	query := r.DB(ctx).
		Table("product_reviews").
		Select("product_reviews.*, users.username AS reviewer_username").
		Joins("LEFT JOIN users ON users.id = product_reviews.user_id").
		Where("product_reviews.product_id = ?", productID)
	var rows []Review
	err := repo.NewestFirst(query, "product_reviews", cursor).Limit(limit).Scan(&rows).Error
	return rows, err
}

// Service records reviews.
type Service interface {
	AddReview(ctx context.Context, userID uuid.UUID, req AddReviewRequest) (*models.ProductReview, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*pagination.Page[Review], error)
}

// ServiceParams bundles the review service dependencies.
type ServiceParams struct {
	DB      *db.Client
	Metrics *metrics.DomainMetrics
	Now     func() time.Time
}

type service struct {
	db       *db.Client
	repo     *Repository
	products *products.Repository
	metrics  *metrics.DomainMetrics
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		db:       params.DB,
		repo:     NewRepository(params.DB.DB()),
		products: products.NewRepository(params.DB.DB()),
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

// AddReview inserts the review and recomputes the product's average and count
// in the same transaction.
func (s *service) AddReview(ctx context.Context, userID uuid.UUID, req AddReviewRequest) (*models.ProductReview, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"rating": "must be between 1 and 5"})
	}
	var comment *string
	if req.Comment != nil {
		if c := strings.TrimSpace(*req.Comment); c != "" {
			comment = &c
		}
	}

	review := &models.ProductReview{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := products.NewRepository(tx)
		reviewRepo := NewRepository(tx)

		if err := requireProduct(ctx, productRepo, req.ProductID); err != nil {
			return err
		}

		exists, err := reviewRepo.Exists(ctx, req.ProductID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing review")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, DuplicateMessage)
		}

		if err := reviewRepo.Create(ctx, review); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, DuplicateMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
		}

		agg, err := reviewRepo.Aggregate(ctx, req.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate reviews")
		}
		if err := productRepo.UpdateRating(ctx, req.ProductID, agg.Average, agg.Count); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product rating")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ReviewAdded()
	return review, nil
}

// ListForProduct pages a live product's reviews newest first.
func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*pagination.Page[Review], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if err := requireProduct(ctx, s.products, productID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForProduct(ctx, productID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	items, next := pagination.Trim(rows, params.Limit, func(r Review) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
	return &pagination.Page[Review]{Items: items, NextCursor: next}, nil
}

func requireProduct(ctx context.Context, productRepo *products.Repository, productID uuid.UUID) error {
	if _, err := productRepo.FindActive(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, products.NotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return nil
}
