package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/internal/products"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/metrics"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

const (
	notFoundMessage     = "Order not found"
	emptyOrderMessage   = "Order must have at least one item"
	notCancellableError = "Order cannot be cancelled in its current status"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Inventory reads and adjusts product stock inside an order transaction.
type Inventory interface {
	FindActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// Service places, cancels and tracks marketplace orders.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*models.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID, params ListParams) (*pagination.Page[models.Order], error)
	Get(ctx context.Context, userID, orderID uuid.UUID, isAdmin bool) (*models.Order, error)
}

// ServiceParams bundles the order service dependencies. Inventory is built
// per transaction.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Inventory func(tx *gorm.DB) Inventory
	Metrics   *metrics.DomainMetrics
	Now       func() time.Time
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory func(tx *gorm.DB) Inventory
	metrics   *metrics.DomainMetrics
	now       func() time.Time
}

// ProductInventory adapts the product repository to Inventory.
func ProductInventory(tx *gorm.DB) Inventory {
	return products.NewRepository(tx)
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	inventory := params.Inventory
	if inventory == nil {
		inventory = ProductInventory
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		inventory: inventory,
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

// CreateOrder walks the items in order, snapshotting prices and taking stock
// with a guarded decrement. Any failure rolls back every write.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyOrderMessage).
			WithDetails(map[string]string{"items": emptyOrderMessage})
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{fmt.Sprintf("items[%d].quantity", i): "must be at least 1"})
		}
	}

	now := s.now()
	order := &models.Order{
		ID:                 uuid.New(),
		UserID:             userID,
		Status:             enums.OrderStatusPending,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       strings.TrimSpace(req.ShippingCity),
		ShippingCountry:    strings.TrimSpace(req.ShippingCountry),
		ShippingPostalCode: req.ShippingPostalCode,
		ContactPhone:       strings.TrimSpace(req.ContactPhone),
		Notes:              req.Notes,
		CreatedAt:          now,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		inventory := s.inventory(tx)
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Items))

		for _, line := range req.Items {
			product, err := inventory.FindActive(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Product with ID %s not found", line.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
			}
			if product.StockQuantity < line.Quantity {
				return insufficientStock(product, line.Quantity)
			}

			ok, err := inventory.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				// Lost a race with a concurrent order; report what is left now.
				current, err := inventory.FindActive(ctx, product.ID)
				if err == nil {
					product = current
				}
				return insufficientStock(product, line.Quantity)
			}

			unit := product.EffectivePrice()
			lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:  product.ID,
				Quantity:   line.Quantity,
				UnitPrice:  unit,
				TotalPrice: lineTotal,
				CreatedAt:  now,
			})
		}

		order.TotalAmount = total
		order.Items = items
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
			s.metrics.InsufficientStock()
		}
		return nil, err
	}
	s.metrics.OrderCreated()
	return order, nil
}

func insufficientStock(product *models.Product, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("Not enough stock for product %s. Available: %d", product.Name.EN, product.StockQuantity),
	).WithDetails(map[string]any{
		"product_id": product.ID,
		"available":  product.StockQuantity,
		"requested":  requested,
	})
}

// CancelOrder flips a pending or processing order to cancelled and returns
// every item's quantity to stock.
func (s *service) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "Not enough permissions")
		}

		changed, err := repo.TransitionStatus(ctx, order.ID, enums.CancellableOrderStatuses, enums.OrderStatusCancelled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, notCancellableError).
				WithDetails(map[string]any{"status": order.Status})
		}

		inventory := s.inventory(tx)
		for _, item := range order.Items {
			if err := inventory.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock product")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.OrderCancelled()
	return nil
}

// UpdateOrderStatus sets any valid status from any status. Stock is not
// touched.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*models.Order, error) {
	if !req.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"status": fmt.Sprintf("invalid order status %q", req.Status)})
	}
	if _, err := s.load(ctx, orderID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, orderID, req.Status, req.TrackingNumber); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	s.metrics.OrderStatusChanged(req.Status.String())
	return s.load(ctx, orderID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params ListParams) (*pagination.Page[models.Order], error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"status": fmt.Sprintf("invalid order status %q", *params.Status)})
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListForUser(ctx, userID, params.Status, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	items, next := pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &pagination.Page[models.Order]{Items: items, NextCursor: next}, nil
}

// Get returns the order to its owner or to an admin. Other users see it as
// missing.
func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID, isAdmin bool) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return order, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}
