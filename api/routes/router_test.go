package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeeqati/hadeeqati-backend/internal/auth"
	"github.com/hadeeqati/hadeeqati-backend/internal/diagnoses"
	"github.com/hadeeqati/hadeeqati-backend/internal/planttypes"
	pkgAuth "github.com/hadeeqati/hadeeqati-backend/pkg/auth"
	"github.com/hadeeqati/hadeeqati-backend/pkg/auth/session"
	"github.com/hadeeqati/hadeeqati-backend/pkg/config"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
	"github.com/hadeeqati/hadeeqati-backend/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubSessions struct {
	revoked map[string]bool
}

func (s stubSessions) HasSession(_ context.Context, accessID string) (bool, error) {
	return !s.revoked[accessID], nil
}

type stubPlantTypes struct {
	planttypes.Service
}

func (stubPlantTypes) List(context.Context) ([]models.PlantType, error) {
	return []models.PlantType{{ID: uuid.New(), Name: i18n.NewText("Cactus", "صبار")}}, nil
}

func (stubPlantTypes) Create(_ context.Context, req planttypes.CreateRequest) (*models.PlantType, error) {
	return &models.PlantType{ID: uuid.New(), Name: req.Name}, nil
}

type stubDiagnoses struct {
	diagnoses.Service
}

func (stubDiagnoses) Conditions() []diagnoses.Condition {
	return diagnoses.Catalog()
}

type stubRegister struct{}

func (stubRegister) Register(_ context.Context, req auth.RegisterRequest) (*models.User, error) {
	return &models.User{ID: uuid.New(), Username: req.Username, Email: req.Email}, nil
}

func (stubRegister) RegisterAdmin(_ context.Context, req auth.RegisterRequest) (*models.User, error) {
	return &models.User{ID: uuid.New(), Username: req.Username, Email: req.Email, IsAdmin: true}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		Storage: config.StorageConfig{MaxUploadMB: 1},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func testDependencies() Dependencies {
	registry := prometheus.NewRegistry()
	return Dependencies{
		DB:         stubPinger{},
		Sessions:   stubSessions{revoked: map[string]bool{"revoked": true}},
		Gatherer:   registry,
		HTTP:       metrics.NewHTTPMetrics(registry),
		Register:   stubRegister{},
		PlantTypes: stubPlantTypes{},
		Diagnoses:  stubDiagnoses{},
	}
}

func newTestRouter(cfg *config.Config, deps Dependencies) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, deps)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole, jti string) string {
	t.Helper()
	if jti == "" {
		jti = session.NewAccessID()
	}
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "sara",
		Role:     role,
		JTI:      jti,
	})
	require.NoError(t, err)
	return token
}

func serve(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	deps := testDependencies()
	router := newTestRouter(testConfig(), deps)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health/live", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health/ready", "", "").Code)

	deps.DB = stubPinger{err: errors.New("down")}
	router = newTestRouter(testConfig(), deps)
	rec := serve(router, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, testDependencies())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/plants"},
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodPost, "/api/v1/diagnoses"},
		{http.MethodGet, "/api/v1/marketplace/orders"},
		{http.MethodPost, "/api/v1/marketplace/reviews"},
	} {
		rec := serve(router, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.Contains(t, rec.Body.String(), "Could not validate credentials", tc.path)
	}

	rec := serve(router, http.MethodGet, "/api/v1/plants", "", buildToken(t, cfg, enums.UserRoleUser, "revoked"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/plants", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, testDependencies())
	body := `{"name":{"en":"Fern","ar":"سرخس"}}`

	rec := serve(router, http.MethodPost, "/api/v1/plant-types", body, buildToken(t, cfg, enums.UserRoleUser, ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not enough permissions")

	rec = serve(router, http.MethodPost, "/api/v1/plant-types", body, buildToken(t, cfg, enums.UserRoleAdmin, ""))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(router, http.MethodPut, "/api/v1/marketplace/orders/"+uuid.NewString()+"/status", `{"status":"shipped"}`, buildToken(t, cfg, enums.UserRoleUser, ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(router, http.MethodPost, "/api/v1/marketplace/products", `{}`, buildToken(t, cfg, enums.UserRoleUser, ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicCatalogRoutesNegotiateLanguage(t *testing.T) {
	router := newTestRouter(testConfig(), testDependencies())

	rec := serve(router, http.MethodGet, "/api/v1/plant-types?lang=ar", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ar", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Body.String(), "صبار")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/diagnoses/conditions", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "en", resp.Header().Get("Content-Language"))
	assert.Contains(t, resp.Body.String(), "healthy")
}

func TestAdminRegisterOnlyOutsideProduction(t *testing.T) {
	body := `{"email":"admin@example.com","username":"admin","password":"Secret123"}`

	router := newTestRouter(testConfig(), testDependencies())
	rec := serve(router, http.MethodPost, "/api/admin/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)

	cfg := testConfig()
	cfg.App.Env = "prod"
	router = newTestRouter(cfg, testDependencies())
	rec = serve(router, http.MethodPost, "/api/admin/v1/auth/register", body, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodPost, "/api/v1/users/register", body, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"user"`)
}

func TestMetricsEndpointExposesRouteCounters(t *testing.T) {
	router := newTestRouter(testConfig(), testDependencies())
	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/v1/plant-types", "", "").Code)

	rec := serve(router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/api/v1/plant-types"`)
}
