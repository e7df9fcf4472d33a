package controllers

import (
	"net/http"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/api/responses"
	"github.com/hadeeqati/hadeeqati-backend/api/validators"
	"github.com/hadeeqati/hadeeqati-backend/internal/users"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
)

// UsersMe returns the authenticated user's profile.
func UsersMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("users service unavailable", logg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Me(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users.Localize(user, middleware.LanguageFromContext(r.Context())))
	}
}

// UsersUpdateMe applies a partial profile update.
func UsersUpdateMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("users service unavailable", logg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body users.UpdateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateProfile(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users.Localize(user, middleware.LanguageFromContext(r.Context())))
	}
}
