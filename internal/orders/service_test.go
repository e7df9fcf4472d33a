package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/pkg/db"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/dbtest"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
	"github.com/hadeeqati/hadeeqati-backend/pkg/metrics"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

type fixture struct {
	client   *db.Client
	svc      Service
	registry *prometheus.Registry
	category *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.OpenClient(t)
	category := &models.Category{Name: i18n.NewText("Plants", "نباتات")}
	require.NoError(t, client.DB().Create(category).Error)

	registry := prometheus.NewRegistry()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(client.DB()),
		Tx:      client,
		Metrics: metrics.NewDomainMetrics(registry),
		Now: func() time.Time {
			now = now.Add(time.Minute)
			return now
		},
	})
	require.NoError(t, err)
	return &fixture{client: client, svc: svc, registry: registry, category: category}
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		CategoryID:    f.category.ID,
		Name:          i18n.NewText(name, ""),
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, f.client.DB().Create(p).Error)
	return p
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.client.DB().First(&p, "id = ?", id).Error)
	return p.StockQuantity
}

func (f *fixture) orderCount(t *testing.T) (orders, items int64) {
	t.Helper()
	require.NoError(t, f.client.DB().Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, f.client.DB().Model(&models.OrderItem{}).Count(&items).Error)
	return orders, items
}

func request(items ...ItemRequest) CreateOrderRequest {
	return CreateOrderRequest{
		ShippingAddress: i18n.NewText("12 Palm Street", "١٢ شارع النخيل"),
		ShippingCity:    "Riyadh",
		ShippingCountry: "SA",
		ContactPhone:    "+966500000000",
		Items:           items,
	}
}

func TestCreateOrderTakesStockAndTotals(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Monstera", "20.50", 5)
	ctx := context.Background()
	user := uuid.New()

	order, err := f.svc.CreateOrder(ctx, user, request(ItemRequest{ProductID: p.ID, Quantity: 3}))
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("61.50")), order.TotalAmount.String())
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("20.50")))
	assert.Equal(t, 2, f.stock(t, p.ID))

	_, err = f.svc.CreateOrder(ctx, user, request(ItemRequest{ProductID: p.ID, Quantity: 3}))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))
	assert.Contains(t, err.Error(), "Not enough stock for product Monstera. Available: 2")
	assert.Equal(t, 2, f.stock(t, p.ID))

	assert.Equal(t, 1.0, counterValue(t, f.registry, "orders_created_total"))
	assert.Equal(t, 1.0, counterValue(t, f.registry, "orders_insufficient_stock_total"))
}

func TestCreateOrderIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Fern", "10", 4)
	b := f.product(t, "Cactus", "5", 1)

	_, err := f.svc.CreateOrder(context.Background(), uuid.New(), request(
		ItemRequest{ProductID: a.ID, Quantity: 2},
		ItemRequest{ProductID: b.ID, Quantity: 2},
	))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, b.ID, details["product_id"])
	assert.Equal(t, 1, details["available"])

	assert.Equal(t, 4, f.stock(t, a.ID))
	assert.Equal(t, 1, f.stock(t, b.ID))
	orders, items := f.orderCount(t)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestCreateOrderSnapshotsDiscountPrice(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Olive tree", "100", 3)
	discount := decimal.RequireFromString("80")
	require.NoError(t, f.client.DB().Model(p).Update("discount_price", discount).Error)

	order, err := f.svc.CreateOrder(context.Background(), uuid.New(), request(ItemRequest{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("160")))

	require.NoError(t, f.client.DB().Model(p).Update("price", decimal.RequireFromString("150")).Error)
	loaded, err := f.svc.Get(context.Background(), order.UserID, order.ID, false)
	require.NoError(t, err)
	assert.True(t, loaded.Items[0].UnitPrice.Equal(discount))
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, uuid.New(), request())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, err.Error(), emptyOrderMessage)

	missing := uuid.New()
	_, err = f.svc.CreateOrder(ctx, uuid.New(), request(ItemRequest{ProductID: missing, Quantity: 1}))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Contains(t, err.Error(), "Product with ID "+missing.String()+" not found")

	deleted := f.product(t, "Gone", "3", 10)
	require.NoError(t, f.client.DB().Model(deleted).Update("is_deleted", true).Error)
	_, err = f.svc.CreateOrder(ctx, uuid.New(), request(ItemRequest{ProductID: deleted.ID, Quantity: 1}))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCancelRestoresStock(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Fern", "10", 4)
	b := f.product(t, "Cactus", "5", 6)
	ctx := context.Background()
	user := uuid.New()

	order, err := f.svc.CreateOrder(ctx, user, request(
		ItemRequest{ProductID: a.ID, Quantity: 4},
		ItemRequest{ProductID: b.ID, Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, a.ID))

	err = f.svc.CancelOrder(ctx, uuid.New(), order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	require.NoError(t, f.svc.CancelOrder(ctx, user, order.ID))
	assert.Equal(t, 4, f.stock(t, a.ID))
	assert.Equal(t, 6, f.stock(t, b.ID))

	err = f.svc.CancelOrder(ctx, user, order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, 4, f.stock(t, a.ID))

	err = f.svc.CancelOrder(ctx, user, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCancelAllowedFromProcessingOnly(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Fern", "10", 5)
	ctx := context.Background()
	user := uuid.New()

	processing, err := f.svc.CreateOrder(ctx, user, request(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = f.svc.UpdateOrderStatus(ctx, processing.ID, UpdateStatusRequest{Status: enums.OrderStatusProcessing})
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelOrder(ctx, user, processing.ID))

	shipped, err := f.svc.CreateOrder(ctx, user, request(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = f.svc.UpdateOrderStatus(ctx, shipped.ID, UpdateStatusRequest{Status: enums.OrderStatusShipped})
	require.NoError(t, err)
	err = f.svc.CancelOrder(ctx, user, shipped.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, 4, f.stock(t, p.ID))
}

func TestUpdateOrderStatusIsUnconstrained(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Fern", "10", 5)
	ctx := context.Background()
	user := uuid.New()

	order, err := f.svc.CreateOrder(ctx, user, request(ItemRequest{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelOrder(ctx, user, order.ID))

	tracking := "TRK-1"
	updated, err := f.svc.UpdateOrderStatus(ctx, order.ID, UpdateStatusRequest{Status: enums.OrderStatusDelivered, TrackingNumber: &tracking})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, tracking, *updated.TrackingNumber)
	assert.Equal(t, 5, f.stock(t, p.ID))

	_, err = f.svc.UpdateOrderStatus(ctx, order.ID, UpdateStatusRequest{Status: "lost"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.UpdateOrderStatus(ctx, uuid.New(), UpdateStatusRequest{Status: enums.OrderStatusShipped})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetAndListScopedToOwner(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Fern", "10", 10)
	ctx := context.Background()
	user := uuid.New()

	first, err := f.svc.CreateOrder(ctx, user, request(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(ctx, user, request(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, uuid.New(), request(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelOrder(ctx, user, first.ID))

	_, err = f.svc.Get(ctx, uuid.New(), first.ID, false)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	asAdmin, err := f.svc.Get(ctx, uuid.New(), first.ID, true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, asAdmin.ID)

	page, err := f.svc.List(ctx, user, ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.Equal(t, first.ID, page.Items[1].ID)

	cancelled := enums.OrderStatusCancelled
	page, err = f.svc.List(ctx, user, ListParams{Status: &cancelled, Params: pagination.Params{Limit: 5}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)

	view := Localize(&page.Items[0], enums.LanguageArabic)
	assert.Equal(t, "١٢ شارع النخيل", view.ShippingAddress)
	require.Len(t, view.Items, 1)
}

type racingInventory struct {
	Inventory
}

func (racingInventory) DecrementStock(context.Context, uuid.UUID, int) (bool, error) {
	return false, nil
}

func TestCreateOrderReportsLostStockRace(t *testing.T) {
	client := dbtest.OpenClient(t)
	category := &models.Category{Name: i18n.NewText("Plants", "")}
	require.NoError(t, client.DB().Create(category).Error)
	p := &models.Product{CategoryID: category.ID, Name: i18n.NewText("Fern", ""), Price: decimal.NewFromInt(3), StockQuantity: 2}
	require.NoError(t, client.DB().Create(p).Error)

	svc, err := NewService(ServiceParams{
		Repo: NewRepository(client.DB()),
		Tx:   client,
		Inventory: func(tx *gorm.DB) Inventory {
			return racingInventory{Inventory: ProductInventory(tx)}
		},
	})
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), uuid.New(), request(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}
