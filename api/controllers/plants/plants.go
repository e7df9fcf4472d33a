package plants

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/api/responses"
	"github.com/hadeeqati/hadeeqati-backend/api/validators"
	internalplants "github.com/hadeeqati/hadeeqati-backend/internal/plants"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// Handlers exposes the plant endpoints for the authenticated owner.
type Handlers struct {
	svc            internalplants.Service
	logg           *logger.Logger
	maxUploadBytes int64
	now            func() time.Time
}

func NewHandlers(svc internalplants.Service, maxUploadBytes int64, logg *logger.Logger) *Handlers {
	return &Handlers{
		svc:            svc,
		logg:           logg,
		maxUploadBytes: maxUploadBytes,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// target resolves the caller and the {plantId} path parameter.
func (h *Handlers) target(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	if h.svc == nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "plants service unavailable")
	}
	ownerID, err := middleware.RequireUserID(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	plantID, err := validators.ParseUUIDParam(r, "plantId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return ownerID, plantID, nil
}

func (h *Handlers) view(r *http.Request, p *models.Plant) internalplants.PlantView {
	return internalplants.Localize(p, middleware.LanguageFromContext(r.Context()), h.now())
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		responses.WriteError(r.Context(), h.logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plants service unavailable"))
		return
	}
	ownerID, err := middleware.RequireUserID(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	params, err := validators.ParsePagination(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	due, err := validators.ParseQueryBool(r, "due")
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	page, err := h.svc.List(r.Context(), ownerID, internalplants.ListParams{
		Params:  params,
		DueOnly: due != nil && *due,
	})
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, pagination.MapPage(page, func(p models.Plant) internalplants.PlantView {
		return h.view(r, &p)
	}))
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		responses.WriteError(r.Context(), h.logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plants service unavailable"))
		return
	}
	ownerID, err := middleware.RequireUserID(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	var body internalplants.CreatePlantRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	plant, err := h.svc.Create(r.Context(), ownerID, body)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, h.view(r, plant))
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, plantID, err := h.target(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	plant, err := h.svc.Get(r.Context(), ownerID, plantID)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, h.view(r, plant))
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, plantID, err := h.target(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	var body internalplants.UpdatePlantRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	plant, err := h.svc.Update(r.Context(), ownerID, plantID, body)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, h.view(r, plant))
}

func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, plantID, err := h.target(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), ownerID, plantID); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteNoContent(w)
}

// Water records a watering. An empty body waters the plant now.
func (h *Handlers) Water(w http.ResponseWriter, r *http.Request) {
	ownerID, plantID, err := h.target(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	var body internalplants.WaterRequest
	if r.ContentLength != 0 {
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
	}
	plant, err := h.svc.Water(r.Context(), ownerID, plantID, body)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, h.view(r, plant))
}

// Fertilize records a fertilizing. An empty body fertilizes the plant now.
func (h *Handlers) Fertilize(w http.ResponseWriter, r *http.Request) {
	ownerID, plantID, err := h.target(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	var body internalplants.FertilizeRequest
	if r.ContentLength != 0 {
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
	}
	plant, err := h.svc.Fertilize(r.Context(), ownerID, plantID, body)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, h.view(r, plant))
}

func (h *Handlers) WateringHistory(w http.ResponseWriter, r *http.Request) {
	ownerID, plantID, err := h.target(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	rows, err := h.svc.WateringHistory(r.Context(), ownerID, plantID)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, internalplants.LocalizeHistory(rows))
}

func (h *Handlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ownerID, plantID, err := h.target(r)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	data, err := validators.ReadUpload(w, r, h.maxUploadBytes)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	plant, err := h.svc.UploadPhoto(r.Context(), ownerID, plantID, data)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, h.view(r, plant))
}
