package planttypes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	internalplanttypes "github.com/hadeeqati/hadeeqati-backend/internal/planttypes"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
)

type stubService struct {
	rows      []models.PlantType
	createErr error
	updated   *internalplanttypes.UpdateRequest
}

func (s *stubService) Create(_ context.Context, req internalplanttypes.CreateRequest) (*models.PlantType, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.PlantType{ID: uuid.New(), Name: req.Name}, nil
}

func (s *stubService) Update(_ context.Context, id uuid.UUID, req internalplanttypes.UpdateRequest) (*models.PlantType, error) {
	s.updated = &req
	return &models.PlantType{ID: id, Name: *req.Name}, nil
}

func (s *stubService) Get(_ context.Context, id uuid.UUID) (*models.PlantType, error) {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return &s.rows[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Plant type not found")
}

func (s *stubService) List(context.Context) ([]models.PlantType, error) {
	return s.rows, nil
}

func newRouter(svc internalplanttypes.Service, lang enums.Language) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithLanguage(req.Context(), lang)))
		})
	})
	r.Get("/plant-types", List(svc, nil))
	r.Post("/plant-types", Create(svc, nil))
	r.Get("/plant-types/{typeId}", Get(svc, nil))
	r.Put("/plant-types/{typeId}", Update(svc, nil))
	return r
}

func TestListLocalizesCatalog(t *testing.T) {
	svc := &stubService{rows: []models.PlantType{
		{ID: uuid.New(), Name: i18n.NewText("Cactus", "صبار")},
		{ID: uuid.New(), Name: i18n.NewText("Fern", "")},
	}}

	rec := httptest.NewRecorder()
	newRouter(svc, enums.LanguageArabic).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plant-types", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []internalplanttypes.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "صبار", body.Data[0].Name)
	assert.Equal(t, "Fern", body.Data[1].Name)
}

func TestGetUnknownTypeIsNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}, enums.LanguageEnglish).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plant-types/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	svc := &stubService{createErr: pkgerrors.New(pkgerrors.CodeConflict, "Plant type with this name already exists")}

	rec := httptest.NewRecorder()
	newRouter(svc, enums.LanguageEnglish).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plant-types", strings.NewReader(`{"name":{"en":"Cactus"}}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestCreateReturns201(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}, enums.LanguageEnglish).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plant-types", strings.NewReader(`{"name":{"en":"Cactus"},"watering_interval_days":14}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdatePassesPartialBody(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	newRouter(svc, enums.LanguageEnglish).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/plant-types/"+uuid.NewString(), strings.NewReader(`{"name":{"en":"Succulent"}}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updated)
	assert.Nil(t, svc.updated.Description)
	assert.Equal(t, "Succulent", svc.updated.Name.EN)
}
