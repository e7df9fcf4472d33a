package marketplace

import (
	"net/http"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/api/responses"
	"github.com/hadeeqati/hadeeqati-backend/api/validators"
	"github.com/hadeeqati/hadeeqati-backend/internal/products"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

const maxSearchLength = 100

func productsUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable")
}

// ListProducts browses active listings. Supported filters: category_id,
// is_plant, search, min_price, max_price and available_only.
func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productsUnavailable())
			return
		}
		params, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[products.ProductView]{
			Items:      products.LocalizeAll(page.Items, middleware.LanguageFromContext(r.Context())),
			NextCursor: page.NextCursor,
		})
	}
}

func parseProductFilters(r *http.Request) (products.ListParams, error) {
	var params products.ListParams
	page, err := validators.ParsePagination(r)
	if err != nil {
		return params, err
	}
	params.Params = page

	if params.Filters.CategoryID, err = validators.ParseQueryUUID(r, "category_id"); err != nil {
		return params, err
	}
	if params.Filters.IsPlant, err = validators.ParseQueryBool(r, "is_plant"); err != nil {
		return params, err
	}
	if params.Filters.MinPrice, err = validators.ParseQueryDecimal(r, "min_price"); err != nil {
		return params, err
	}
	if params.Filters.MaxPrice, err = validators.ParseQueryDecimal(r, "max_price"); err != nil {
		return params, err
	}
	available, err := validators.ParseQueryBool(r, "available_only")
	if err != nil {
		return params, err
	}
	params.Filters.AvailableOnly = available != nil && *available
	params.Filters.Search = validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLength)
	return params, nil
}

func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productsUnavailable())
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products.Localize(product, middleware.LanguageFromContext(r.Context())))
	}
}

func CreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productsUnavailable())
			return
		}
		var body products.CreateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, products.Localize(product, middleware.LanguageFromContext(r.Context())))
	}
}

func UpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productsUnavailable())
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body products.UpdateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products.Localize(product, middleware.LanguageFromContext(r.Context())))
	}
}

func DeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productsUnavailable())
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func UploadProductImage(svc products.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productsUnavailable())
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		data, err := validators.ReadUpload(w, r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.UploadImage(r.Context(), id, data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products.Localize(product, middleware.LanguageFromContext(r.Context())))
	}
}
