package orders

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/api/responses"
	"github.com/hadeeqati/hadeeqati-backend/api/validators"
	internalorders "github.com/hadeeqati/hadeeqati-backend/internal/orders"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

func serviceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable")
}

// List returns the caller's orders, newest first, optionally filtered by status.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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
		params, err := buildListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[internalorders.OrderView]{
			Items:      internalorders.LocalizeAll(page.Items, middleware.LanguageFromContext(r.Context())),
			NextCursor: page.NextCursor,
		})
	}
}

func buildListParams(r *http.Request) (internalorders.ListParams, error) {
	page, err := validators.ParsePagination(r)
	if err != nil {
		return internalorders.ListParams{}, err
	}
	params := internalorders.ListParams{Params: page}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"})
		}
		params.Status = &status
	}
	return params, nil
}

// Create places an order. Stock checks and decrements run in one transaction.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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
		var body internalorders.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"order_id": order.ID.String(),
				"items":    len(order.Items),
				"total":    order.TotalAmount.StringFixed(2),
			})
			logg.Info(ctx, "order.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.Localize(order, middleware.LanguageFromContext(r.Context())))
	}
}

// Detail returns one order. Admins may read any order.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orderID, err := target(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), userID, orderID, middleware.IsAdmin(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.Localize(order, middleware.LanguageFromContext(r.Context())))
	}
}

// Cancel cancels a pending or processing order and restocks its items.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orderID, err := target(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.CancelOrder(r.Context(), userID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "order_id", orderID.String()), "order.cancelled")
		}
		responses.WriteNoContent(w)
	}
}

// UpdateStatus is the admin status change.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orderID, err := target(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body internalorders.UpdateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateOrderStatus(r.Context(), orderID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"order_id": orderID.String(),
				"status":   string(order.Status),
			})
			logg.Info(ctx, "order.status_updated")
		}
		responses.WriteSuccess(w, internalorders.Localize(order, middleware.LanguageFromContext(r.Context())))
	}
}

func target(svc internalorders.Service, r *http.Request) (uuid.UUID, uuid.UUID, error) {
	if svc == nil {
		return uuid.Nil, uuid.Nil, serviceUnavailable()
	}
	userID, err := middleware.RequireUserID(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	orderID, err := validators.ParseUUIDParam(r, "orderId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, orderID, nil
}
