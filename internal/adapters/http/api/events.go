package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/tally/internal/domain/catalog"
	"github.com/okian/tally/internal/domain/model"
)

// EventDependencies defines the interface for event listing and management.
type EventDependencies interface {
	Events(f catalog.Filter) []model.Event
	AvailableEvents() []model.Event
	EventStats() model.EventStats
	Categories() []string
	CreateEvent(ctx context.Context, ev model.Event) (model.Event, error)
	UpdateEvent(ctx context.Context, ev model.Event) (model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest is the body of POST /events and PUT /events/{id}.
type eventRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Points      int    `json:"points"`
	Date        string `json:"date"`
	Organizer   string `json:"organizer"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

func (e eventRequest) event(id string) model.Event {
	return model.Event{
		ID:          id,
		Name:        e.Name,
		Category:    e.Category,
		Points:      e.Points,
		Date:        e.Date,
		Organizer:   e.Organizer,
		Status:      model.Status(e.Status),
		Description: e.Description,
	}
}

type eventListResponse struct {
	Events     []model.Event `json:"events"`
	Categories []string      `json:"categories"`
}

// HandleList handles GET /events?status=&category=&q= requests.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	f := catalog.Filter{
		Status:   model.Status(v.Get("status")),
		Category: v.Get("category"),
		Query:    v.Get("q"),
	}
	writeJSON(w, http.StatusOK, eventListResponse{
		Events:     h.deps.Events(f),
		Categories: h.deps.Categories(),
	})
}

// HandleAvailable handles GET /events/available requests.
func (h *EventsHandler) HandleAvailable(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.AvailableEvents())
}

// HandleStats handles GET /events/stats requests.
func (h *EventsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.EventStats())
}

// HandleCreate handles POST /events requests.
func (h *EventsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	ev, err := h.deps.CreateEvent(r.Context(), req.event(""))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// HandleUpdate handles PUT /events/{id} requests.
func (h *EventsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	ev, err := h.deps.UpdateEvent(r.Context(), req.event(pathParam(r, "id")))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleDelete handles DELETE /events/{id} requests.
func (h *EventsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteEvent(r.Context(), pathParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
