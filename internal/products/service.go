package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/internal/categories"
	"github.com/hadeeqati/hadeeqati-backend/internal/media"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// NotFoundMessage is returned for unknown or deleted products.
const NotFoundMessage = "Product not found"

// Service exposes marketplace catalog operations.
type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadImage(ctx context.Context, id uuid.UUID, data []byte) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, params ListParams) (*pagination.Page[models.Product], error)
}

type categoryLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// ServiceParams bundles the product service dependencies.
type ServiceParams struct {
	Repo       *Repository
	Categories categoryLookup
	Media      media.Service
	Now        func() time.Time
}

type service struct {
	repo       *Repository
	categories categoryLookup
	media      media.Service
	now        func() time.Time
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category lookup required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media service required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:       params.Repo,
		categories: params.Categories,
		media:      params.Media,
		now:        now,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	details := map[string]string{}
	if strings.TrimSpace(req.Name.EN) == "" {
		details["name.en"] = "is required"
	}
	validatePrices(details, req.Price, req.DiscountPrice)
	specs, ok := specifications(req.Specifications)
	if !ok {
		details["specifications"] = "must be a JSON object"
	}
	if len(details) > 0 {
		return nil, validationError(details)
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		DiscountPrice:     req.DiscountPrice,
		StockQuantity:     req.StockQuantity,
		IsPlant:           req.IsPlant,
		LatinName:         trimmed(req.LatinName),
		CareInstructions:  req.CareInstructions,
		Sunlight:          req.Sunlight,
		WateringFrequency: req.WateringFrequency,
		Size:              req.Size,
		Specifications:    specs,
		CreatedAt:         s.now(),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return s.Get(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	price := product.Price
	if req.Price != nil {
		price = *req.Price
	}
	discount := product.DiscountPrice
	if req.DiscountPrice != nil {
		discount = req.DiscountPrice
	}
	details := map[string]string{}
	validatePrices(details, price, discount)
	specs, ok := specifications(req.Specifications)
	if !ok {
		details["specifications"] = "must be a JSON object"
	}
	if len(details) > 0 {
		return nil, validationError(details)
	}

	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		product.Name = product.Name.Merge(*req.Name)
	}
	if req.Description != nil {
		product.Description = product.Description.Merge(*req.Description)
	}
	product.Price = price
	product.DiscountPrice = discount
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.IsPlant != nil {
		product.IsPlant = *req.IsPlant
	}
	if req.LatinName != nil {
		product.LatinName = trimmed(req.LatinName)
	}
	if req.CareInstructions != nil {
		product.CareInstructions = product.CareInstructions.Merge(*req.CareInstructions)
	}
	if req.Sunlight != nil {
		product.Sunlight = product.Sunlight.Merge(*req.Sunlight)
	}
	if req.WateringFrequency != nil {
		product.WateringFrequency = product.WateringFrequency.Merge(*req.WateringFrequency)
	}
	if req.Size != nil {
		product.Size = product.Size.Merge(*req.Size)
	}
	if specs != nil {
		product.Specifications = specs
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return s.Get(ctx, product.ID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, NotFoundMessage)
	}
	return nil
}

func (s *service) UploadImage(ctx context.Context, id uuid.UUID, data []byte) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stored, err := s.media.StoreImage(ctx, enums.MediaKindProductImage, product.ID.String(), data)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateImage(ctx, product.ID, stored.URL); err != nil {
		_ = s.media.Remove(ctx, stored.URL)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product image")
	}
	if product.ImageURL != nil {
		_ = s.media.Remove(ctx, *product.ImageURL)
	}
	product.ImageURL = &stored.URL
	return product, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, NotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, NotFoundMessage)
	}
	return product, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*pagination.Page[models.Product], error) {
	f := params.Filters
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, validationError(map[string]string{"min_price": "must not exceed max_price"})
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, f, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	items, next := pagination.Trim(rows, params.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return &pagination.Page[models.Product]{Items: items, NextCursor: next}, nil
}

func (s *service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, categories.NotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return nil
}

func validatePrices(details map[string]string, price decimal.Decimal, discount *decimal.Decimal) {
	if !price.IsPositive() {
		details["price"] = "must be greater than 0"
	}
	if discount != nil && discount.IsNegative() {
		details["discount_price"] = "must be 0 or greater"
	}
}

// specifications accepts an absent value or a JSON object. A nil result with
// ok true means the field was not supplied.
func specifications(raw json.RawMessage) (datatypes.JSON, bool) {
	trimmedRaw := strings.TrimSpace(string(raw))
	if trimmedRaw == "" || trimmedRaw == "null" {
		return nil, true
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return datatypes.JSON(raw), true
}

func validationError(details map[string]string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}
