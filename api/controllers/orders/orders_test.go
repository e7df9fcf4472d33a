package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	internalorders "github.com/hadeeqati/hadeeqati-backend/internal/orders"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/dbtest"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

type memoryIdempotencyStore struct {
	data map[string]string
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("idem:%s:%s", scope, id)
}

type harness struct {
	client  *db.Client
	router  http.Handler
	product *models.Product
	buyer   uuid.UUID
	other   uuid.UUID
}

type actor struct {
	id   uuid.UUID
	role enums.UserRole
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dbtest.OpenClient(t)
	category := &models.Category{Name: i18n.NewText("Plants", "نباتات")}
	require.NoError(t, client.DB().Create(category).Error)
	product := &models.Product{
		CategoryID:    category.ID,
		Name:          i18n.NewText("Monstera", "مونستيرا"),
		Price:         decimal.RequireFromString("40.00"),
		StockQuantity: 5,
	}
	require.NoError(t, client.DB().Create(product).Error)

	svc, err := internalorders.NewService(internalorders.ServiceParams{
		Repo: internalorders.NewRepository(client.DB()),
		Tx:   client,
	})
	require.NoError(t, err)

	h := &harness{client: client, product: product, buyer: uuid.New(), other: uuid.New()}
	store := &memoryIdempotencyStore{data: map[string]string{}}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			a, _ := req.Context().Value(actorKey{}).(actor)
			ctx := middleware.WithUserID(req.Context(), a.id.String())
			ctx = middleware.WithRole(ctx, a.role)
			next.ServeHTTP(w, req.WithContext(middleware.WithLanguage(ctx, enums.LanguageArabic)))
		})
	})
	r.Use(middleware.Idempotency(store, nil))
	r.Get("/api/v1/marketplace/orders", List(svc, nil))
	r.Post("/api/v1/marketplace/orders", Create(svc, nil))
	r.Get("/api/v1/marketplace/orders/{orderId}", Detail(svc, nil))
	r.Delete("/api/v1/marketplace/orders/{orderId}", Cancel(svc, nil))
	r.Put("/api/v1/marketplace/orders/{orderId}/status", UpdateStatus(svc, nil))
	h.router = r
	return h
}

type actorKey struct{}

func (h *harness) do(t *testing.T, a actor, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), actorKey{}, a))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) stock(t *testing.T) int {
	t.Helper()
	var p models.Product
	require.NoError(t, h.client.DB().First(&p, "id = ?", h.product.ID).Error)
	return p.StockQuantity
}

func orderBody(productID uuid.UUID, qty int) string {
	return fmt.Sprintf(`{
		"shipping_address": {"en": "12 Palm Street", "ar": "١٢ شارع النخيل"},
		"shipping_city": "Riyadh",
		"shipping_country": "SA",
		"contact_phone": "+966500000000",
		"items": [{"product_id": %q, "quantity": %d}]
	}`, productID.String(), qty)
}

func decodeOrder(t *testing.T, rec *httptest.ResponseRecorder) internalorders.OrderView {
	t.Helper()
	var body struct {
		Data internalorders.OrderView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestCreateOrderThenInsufficientStock(t *testing.T) {
	h := newHarness(t)
	buyer := actor{id: h.buyer, role: enums.UserRoleUser}

	rec := h.do(t, buyer, http.MethodPost, "/api/v1/marketplace/orders", orderBody(h.product.ID, 3), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeOrder(t, rec)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "١٢ شارع النخيل", order.ShippingAddress)
	assert.Equal(t, 2, h.stock(t))

	rec = h.do(t, buyer, http.MethodPost, "/api/v1/marketplace/orders", orderBody(h.product.ID, 3), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Available: 2")
	assert.Equal(t, 2, h.stock(t))
}

func TestCreateOrderValidation(t *testing.T) {
	h := newHarness(t)
	buyer := actor{id: h.buyer, role: enums.UserRoleUser}

	rec := h.do(t, buyer, http.MethodPost, "/api/v1/marketplace/orders", orderBody(h.product.ID, 0), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "items[0].quantity")
	assert.Equal(t, 5, h.stock(t))
}

func TestCreateOrderReplaysIdempotentRequest(t *testing.T) {
	h := newHarness(t)
	buyer := actor{id: h.buyer, role: enums.UserRoleUser}
	headers := map[string]string{"Idempotency-Key": "order-1"}

	first := h.do(t, buyer, http.MethodPost, "/api/v1/marketplace/orders", orderBody(h.product.ID, 2), headers)
	require.Equal(t, http.StatusCreated, first.Code)
	second := h.do(t, buyer, http.MethodPost, "/api/v1/marketplace/orders", orderBody(h.product.ID, 2), headers)
	require.Equal(t, http.StatusCreated, second.Code)

	assert.Equal(t, decodeOrder(t, first).ID, decodeOrder(t, second).ID)
	assert.Equal(t, 3, h.stock(t))
}

func TestOrderVisibilityAndCancel(t *testing.T) {
	h := newHarness(t)
	buyer := actor{id: h.buyer, role: enums.UserRoleUser}
	stranger := actor{id: h.other, role: enums.UserRoleUser}
	admin := actor{id: uuid.New(), role: enums.UserRoleAdmin}

	rec := h.do(t, buyer, http.MethodPost, "/api/v1/marketplace/orders", orderBody(h.product.ID, 2), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/api/v1/marketplace/orders/" + decodeOrder(t, rec).ID.String()

	assert.Equal(t, http.StatusNotFound, h.do(t, stranger, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(t, admin, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(t, stranger, http.MethodDelete, path, "", nil).Code)

	assert.Equal(t, http.StatusNoContent, h.do(t, buyer, http.MethodDelete, path, "", nil).Code)
	assert.Equal(t, 5, h.stock(t))

	rec = h.do(t, buyer, http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot be cancelled")
}

func TestUpdateStatusAndListFilter(t *testing.T) {
	h := newHarness(t)
	buyer := actor{id: h.buyer, role: enums.UserRoleUser}
	admin := actor{id: uuid.New(), role: enums.UserRoleAdmin}

	rec := h.do(t, buyer, http.MethodPost, "/api/v1/marketplace/orders", orderBody(h.product.ID, 1), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeOrder(t, rec).ID.String()
	require.Equal(t, http.StatusCreated, h.do(t, buyer, http.MethodPost, "/api/v1/marketplace/orders", orderBody(h.product.ID, 1), nil).Code)

	rec = h.do(t, admin, http.MethodPut, "/api/v1/marketplace/orders/"+id+"/status", `{"status":"shipped","tracking_number":"TRK-1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, enums.OrderStatusShipped, decodeOrder(t, rec).Status)

	rec = h.do(t, admin, http.MethodPut, "/api/v1/marketplace/orders/"+id+"/status", `{"status":"lost"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.do(t, buyer, http.MethodGet, "/api/v1/marketplace/orders?status=shipped", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data pagination.Page[internalorders.OrderView] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data.Items, 1)
	assert.Equal(t, id, page.Data.Items[0].ID.String())

	rec = h.do(t, buyer, http.MethodGet, "/api/v1/marketplace/orders?status=bogus", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
