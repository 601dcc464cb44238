package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
)

// CourierHandler serves HTTP endpoints for courier resources.
type CourierHandler struct {
	registry courierRegistry
	logger   logx.Logger
}

// NewCourierHandler creates a CourierHandler.
func NewCourierHandler(logger logx.Logger, registry courierRegistry) *CourierHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &CourierHandler{registry: registry, logger: logger}
}

// Create handles POST /couriers.
func (h *CourierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCourierRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	c, err := h.registry.AddCourier(r.Context(), req.Name, req.Phone)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/couriers/"+c.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, courierToResponse(c))
}

// List handles GET /couriers?available=true.
func (h *CourierHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyAvailable := false
	if s := r.URL.Query().Get("available"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeServiceError(h.logger, w, r, apperr.Validation("available must be a boolean"))
			return
		}
		onlyAvailable = v
	}

	list, err := h.registry.List(r.Context(), onlyAvailable)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, couriersToResponse(list))
}

// GetByID handles GET /couriers/{id}.
func (h *CourierHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, courierToResponse(c))
}

// ToggleAvailability handles PATCH /couriers/{id}/availability.
func (h *CourierHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.ToggleAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, courierToResponse(c))
}
