package controllers

import (
	"context"
	"net/http"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/api/responses"
	"github.com/hadeeqati/hadeeqati-backend/api/validators"
	"github.com/hadeeqati/hadeeqati-backend/internal/auth"
	"github.com/hadeeqati/hadeeqati-backend/internal/users"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
)

type registerFunc func(ctx context.Context, req auth.RegisterRequest) (*models.User, error)

// AuthRegister creates a regular account and returns it with 201.
func AuthRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	if reg == nil {
		return unavailable("registration service unavailable", logg)
	}
	return register(reg.Register, "auth.registered", logg)
}

// AdminRegister creates an administrator. The router mounts it outside
// production only.
func AdminRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	if reg == nil {
		return unavailable("registration service unavailable", logg)
	}
	return register(reg.RegisterAdmin, "auth.admin_registered", logg)
}

func register(create registerFunc, event string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithUserID(r.Context(), user.ID.String()), event)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, users.Localize(user, middleware.LanguageFromContext(r.Context())))
	}
}

func unavailable(msg string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msg))
	}
}
