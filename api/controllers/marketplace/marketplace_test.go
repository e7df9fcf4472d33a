package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/internal/categories"
	"github.com/hadeeqati/hadeeqati-backend/internal/media"
	"github.com/hadeeqati/hadeeqati-backend/internal/products"
	"github.com/hadeeqati/hadeeqati-backend/internal/reviews"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/dbtest"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

type noopMedia struct{}

func (noopMedia) StoreImage(_ context.Context, kind enums.MediaKind, entityID string, _ []byte) (*media.Stored, error) {
	return &media.Stored{URL: "/uploads/" + kind.String() + "/" + entityID + "/image.png"}, nil
}

func (noopMedia) Remove(context.Context, string) error { return nil }

type marketHarness struct {
	router     http.Handler
	products   products.Service
	categoryID uuid.UUID
	user       *models.User
}

type callerKey struct{}

func newMarketHarness(t *testing.T) *marketHarness {
	t.Helper()
	client := dbtest.OpenClient(t)

	categoryRepo := categories.NewRepository(client.DB())
	categorySvc, err := categories.NewService(categoryRepo)
	require.NoError(t, err)
	productSvc, err := products.NewService(products.ServiceParams{
		Repo:       products.NewRepository(client.DB()),
		Categories: categoryRepo,
		Media:      noopMedia{},
	})
	require.NoError(t, err)
	reviewSvc, err := reviews.NewService(reviews.ServiceParams{DB: client})
	require.NoError(t, err)

	category, err := categorySvc.Create(context.Background(), categories.CreateRequest{Name: i18n.NewText("Indoor", "داخلي")})
	require.NoError(t, err)
	user := &models.User{Email: "sara@example.com", Username: "sara", PasswordHash: "x"}
	require.NoError(t, client.DB().Create(user).Error)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			if u, ok := ctx.Value(callerKey{}).(*models.User); ok {
				ctx = middleware.WithUserID(ctx, u.ID.String())
				ctx = middleware.WithUsername(ctx, u.Username)
			}
			if lang := req.URL.Query().Get("lang"); lang != "" {
				ctx = middleware.WithLanguage(ctx, enums.Language(lang))
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/categories", ListCategories(categorySvc, nil))
	r.Post("/categories", CreateCategory(categorySvc, nil))
	r.Get("/categories/{categoryId}", GetCategory(categorySvc, nil))
	r.Get("/products", ListProducts(productSvc, nil))
	r.Get("/products/{productId}", GetProduct(productSvc, nil))
	r.Delete("/products/{productId}", DeleteProduct(productSvc, nil))
	r.Get("/products/{productId}/reviews", ListProductReviews(reviewSvc, nil))
	r.Post("/reviews", AddReview(reviewSvc, nil))

	return &marketHarness{router: r, products: productSvc, categoryID: category.ID, user: user}
}

func (h *marketHarness) product(t *testing.T, en, ar, price string, stock int, plant bool) *models.Product {
	t.Helper()
	p, err := h.products.Create(context.Background(), products.CreateProductRequest{
		CategoryID:    h.categoryID,
		Name:          i18n.NewText(en, ar),
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsPlant:       plant,
	})
	require.NoError(t, err)
	return p
}

func (h *marketHarness) do(method, path, body string, caller *models.User) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if caller != nil {
		req = req.WithContext(context.WithValue(req.Context(), callerKey{}, caller))
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Data
}

func TestCategoriesCreateGetAndList(t *testing.T) {
	h := newMarketHarness(t)

	rec := h.do(http.MethodPost, "/categories", `{"name":{"en":"Tools","ar":"أدوات"}}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[categories.View](t, rec)
	assert.Equal(t, "Tools", created.Name)

	rec = h.do(http.MethodGet, "/categories/"+created.ID.String()+"?lang=ar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "أدوات", decodeData[categories.View](t, rec).Name)

	rec = h.do(http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]categories.View](t, rec), 2)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/categories/"+uuid.NewString(), "", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(http.MethodPost, "/categories", `{"name":{"en":""}}`, nil).Code)
}

func TestListProductsFilters(t *testing.T) {
	h := newMarketHarness(t)
	h.product(t, "Snake plant", "نبتة الثعبان", "25.00", 3, true)
	h.product(t, "Clay pot", "أصيص فخار", "8.00", 0, false)
	h.product(t, "Fiddle fig", "تين الكمان", "60.00", 1, true)

	names := func(rec *httptest.ResponseRecorder) []string {
		page := decodeData[pagination.Page[products.ProductView]](t, rec)
		out := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			out = append(out, item.Name)
		}
		return out
	}

	rec := h.do(http.MethodGet, "/products?is_plant=true&max_price=30", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Snake plant"}, names(rec))

	rec = h.do(http.MethodGet, "/products?available_only=true&is_plant=false", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, names(rec))

	rec = h.do(http.MethodGet, "/products?search=fig&lang=ar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"تين الكمان"}, names(rec))

	assert.Equal(t, http.StatusUnprocessableEntity, h.do(http.MethodGet, "/products?min_price=cheap", "", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(http.MethodGet, "/products?category_id=nope", "", nil).Code)
}

func TestDeletedProductIsHidden(t *testing.T) {
	h := newMarketHarness(t)
	p := h.product(t, "Cactus", "صبار", "5.00", 2, true)
	path := "/products/" + p.ID.String()

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, path, "", nil).Code)
	require.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, path, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, "", nil).Code)
}

func TestReviewsAddAndList(t *testing.T) {
	h := newMarketHarness(t)
	p := h.product(t, "Pothos", "بوتس", "12.00", 4, true)
	body := `{"product_id":"` + p.ID.String() + `","rating":4,"comment":"  thriving  "}`

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/reviews", body, nil).Code)

	rec := h.do(http.MethodPost, "/reviews", body, h.user)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeData[reviews.View](t, rec)
	assert.Equal(t, "sara", view.Username)
	require.NotNil(t, view.Comment)
	assert.Equal(t, "thriving", *view.Comment)

	rec = h.do(http.MethodPost, "/reviews", body, h.user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), reviews.DuplicateMessage)

	rec = h.do(http.MethodGet, "/products/"+p.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	product := decodeData[products.ProductView](t, rec)
	assert.Equal(t, 4.0, product.AverageRating)
	assert.Equal(t, 1, product.ReviewCount)

	rec = h.do(http.MethodGet, "/products/"+p.ID.String()+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData[pagination.Page[reviews.View]](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "sara", page.Items[0].Username)

	rec = h.do(http.MethodGet, "/products/"+uuid.New().String()+"/reviews", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
