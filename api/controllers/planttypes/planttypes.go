package planttypes

import (
	"net/http"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/api/responses"
	"github.com/hadeeqati/hadeeqati-backend/api/validators"
	internalplanttypes "github.com/hadeeqati/hadeeqati-backend/internal/planttypes"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
)

func serviceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "plant types service unavailable")
}

// List returns the full catalog. Plant types are few, so it is not paginated.
func List(svc internalplanttypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lang := middleware.LanguageFromContext(r.Context())
		out := make([]internalplanttypes.View, 0, len(rows))
		for i := range rows {
			out = append(out, internalplanttypes.Localize(&rows[i], lang))
		}
		responses.WriteSuccess(w, out)
	}
}

func Get(svc internalplanttypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		id, err := validators.ParseUUIDParam(r, "typeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pt, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalplanttypes.Localize(pt, middleware.LanguageFromContext(r.Context())))
	}
}

func Create(svc internalplanttypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		var body internalplanttypes.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pt, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalplanttypes.Localize(pt, middleware.LanguageFromContext(r.Context())))
	}
}

func Update(svc internalplanttypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		id, err := validators.ParseUUIDParam(r, "typeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body internalplanttypes.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pt, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalplanttypes.Localize(pt, middleware.LanguageFromContext(r.Context())))
	}
}
