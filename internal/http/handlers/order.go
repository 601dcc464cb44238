package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
	"github.com/primosamu/cannoli-dispatch/internal/service/intake"
	"github.com/primosamu/cannoli-dispatch/internal/service/query"
)

// OrderHandler serves the order endpoints.
type OrderHandler struct {
	queries    orderQueries
	statuses   statusChanger
	deliveries deliveryAssigner
	intake     orderIntaker
	logger     logx.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(
	logger logx.Logger,
	queries orderQueries,
	statuses statusChanger,
	deliveries deliveryAssigner,
	intaker orderIntaker,
) *OrderHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &OrderHandler{
		queries:    queries,
		statuses:   statuses,
		deliveries: deliveries,
		intake:     intaker,
		logger:     logger,
	}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	in := intake.NewOrder{
		ID:      req.ID,
		Channel: domain.Channel(strings.ToLower(strings.TrimSpace(req.Channel))),
		Items:   itemsFromDTO(req.Items),
	}
	if req.Delivery != nil {
		d, err := req.Delivery.toRequest()
		if err != nil {
			writeServiceError(h.logger, w, r, err)
			return
		}
		in.Delivery = d
	}

	o, err := h.intake.Intake(r.Context(), in)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/orders/"+o.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, orderToResponse(o))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.queries.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}

// List handles GET /orders?channels=...&includeTerminal=bool.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	v, err := h.queries.Board(r.Context(), c)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, OrderListResponse{
		Orders: ordersToResponse(v.Orders),
		Groups: groupsToResponse(v.Groups),
	})
}

// Board handles GET /orders/board and returns one column per status.
func (h *OrderHandler) Board(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	v, err := h.queries.Board(r.Context(), c)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, boardToResponse(v))
}

// ChangeStatus handles POST /orders/{id}/status.
func (h *OrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req changeStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	token, err := parseToken(req.ExpectedUpdatedAt)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	target := domain.OrderStatus(strings.ToLower(strings.TrimSpace(req.TargetStatus)))

	o, err := h.statuses.Transition(r.Context(), chi.URLParam(r, "id"), target, token)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}

// AssignDelivery handles POST /orders/{id}/delivery.
func (h *OrderHandler) AssignDelivery(w http.ResponseWriter, r *http.Request) {
	var body assignDeliveryBody
	if ok := decodeJSON(h.logger, w, r, &body); !ok {
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	o, err := h.deliveries.Assign(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}

// criteriaFromQuery reads channels (comma separated or repeated, all when absent) and includeTerminal.
func criteriaFromQuery(r *http.Request) (query.Criteria, error) {
	q := r.URL.Query()
	c := query.Criteria{Channels: query.AllChannels()}

	if raw, ok := q["channels"]; ok {
		c.Channels = query.NewChannelSet()
		for _, v := range raw {
			for _, part := range strings.Split(v, ",") {
				ch := domain.Channel(strings.ToLower(strings.TrimSpace(part)))
				if ch == "" {
					continue
				}
				if !ch.Valid() {
					return query.Criteria{}, apperr.Validation("unknown channel " + strconv.Quote(string(ch)))
				}
				c.Channels[ch] = struct{}{}
			}
		}
	}

	if s := q.Get("includeTerminal"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return query.Criteria{}, apperr.Validation("includeTerminal must be a boolean")
		}
		c.IncludeTerminal = v
	}
	return c, nil
}
