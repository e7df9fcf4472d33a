package diagnoses

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/api/responses"
	"github.com/hadeeqati/hadeeqati-backend/api/validators"
	internaldiagnoses "github.com/hadeeqati/hadeeqati-backend/internal/diagnoses"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

const plantIDField = "plant_id"

func serviceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "diagnosis service unavailable")
}

// Create accepts a multipart image in "file" and an optional plant_id form value.
func Create(svc internaldiagnoses.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := validators.ReadUpload(w, r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var plantID *uuid.UUID
		if raw := strings.TrimSpace(r.FormValue(plantIDField)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
					WithDetails(map[string]string{plantIDField: "must be a valid UUID"}))
				return
			}
			plantID = &id
		}

		diagnosis, err := svc.Diagnose(r.Context(), userID, plantID, data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internaldiagnoses.Localize(diagnosis, middleware.LanguageFromContext(r.Context())))
	}
}

func List(svc internaldiagnoses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lang := middleware.LanguageFromContext(r.Context())
		responses.WriteSuccess(w, pagination.MapPage(page, func(d models.Diagnosis) internaldiagnoses.View {
			return internaldiagnoses.Localize(&d, lang)
		}))
	}
}

func Get(svc internaldiagnoses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "diagnosisId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		diagnosis, err := svc.Get(r.Context(), userID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaldiagnoses.Localize(diagnosis, middleware.LanguageFromContext(r.Context())))
	}
}

func Resolve(svc internaldiagnoses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "diagnosisId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		diagnosis, err := svc.Resolve(r.Context(), userID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaldiagnoses.Localize(diagnosis, middleware.LanguageFromContext(r.Context())))
	}
}

// Conditions lists the catalog of conditions the classifier can report.
func Conditions(svc internaldiagnoses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		lang := middleware.LanguageFromContext(r.Context())
		conditions := svc.Conditions()
		out := make([]internaldiagnoses.ConditionView, 0, len(conditions))
		for _, c := range conditions {
			out = append(out, internaldiagnoses.LocalizeCondition(c, lang))
		}
		responses.WriteSuccess(w, out)
	}
}
