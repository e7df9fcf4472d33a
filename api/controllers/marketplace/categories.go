package marketplace

import (
	"net/http"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/api/responses"
	"github.com/hadeeqati/hadeeqati-backend/api/validators"
	"github.com/hadeeqati/hadeeqati-backend/internal/categories"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
)

func ListCategories(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service unavailable"))
			return
		}
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lang := middleware.LanguageFromContext(r.Context())
		out := make([]categories.View, 0, len(rows))
		for i := range rows {
			out = append(out, categories.Localize(&rows[i], lang))
		}
		responses.WriteSuccess(w, out)
	}
}

func GetCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories.Localize(category, middleware.LanguageFromContext(r.Context())))
	}
}

func CreateCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service unavailable"))
			return
		}
		var body categories.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, categories.Localize(category, middleware.LanguageFromContext(r.Context())))
	}
}
