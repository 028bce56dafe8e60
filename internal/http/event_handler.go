package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/service"
	"github.com/go-chi/chi/v5"
)

type EventCatalog interface {
	ListEvents(ctx context.Context) ([]*domain.Event, error)
	ListVendorEvents(ctx context.Context, vendorID string) ([]*domain.Event, error)
	CreateEvent(ctx context.Context, vendor *domain.Profile, in service.EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, editor *domain.Profile, id string, in service.EventInput) (*domain.Event, error)
	DeleteEvent(ctx context.Context, editor *domain.Profile, id string) error
}

type EventHandler struct {
	events   EventCatalog
	sessions SessionReader
	timeout  time.Duration
	maxBody  int64
}

func NewEventHandler(events EventCatalog, sessions SessionReader, timeout time.Duration, maxBody int64) *EventHandler {
	return &EventHandler{events: events, sessions: sessions, timeout: timeout, maxBody: maxBody}
}

type EventResponseDTO struct {
	ID          string `json:"id"`
	VendorID    string `json:"vendor_id"`
	VendorName  string `json:"vendor_name"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Price       string `json:"price"`
}

func toEventResponse(e *domain.Event) EventResponseDTO {
	return EventResponseDTO{
		ID:          e.ID,
		VendorID:    e.VendorID,
		VendorName:  e.VendorName,
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date.Format("2006-01-02"),
		Price:       money(e.Price),
	}
}

func toEventResponses(events []*domain.Event) []EventResponseDTO {
	out := make([]EventResponseDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

// GET /api/v1/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	events, err := h.events.ListEvents(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventResponses(events))
}

// GET /api/v1/vendor/events
func (h *EventHandler) ListVendorEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	events, err := h.events.ListVendorEvents(ctx, h.sessions.Current().Profile.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventResponses(events))
}

// POST /api/v1/vendor/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in service.EventInput
	if !decodeJSON(w, r, h.maxBody, &in) {
		return
	}

	event, err := h.events.CreateEvent(ctx, h.sessions.Current().Profile, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toEventResponse(event))
}

// PUT /api/v1/vendor/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in service.EventInput
	if !decodeJSON(w, r, h.maxBody, &in) {
		return
	}

	event, err := h.events.UpdateEvent(ctx, h.sessions.Current().Profile, chi.URLParam(r, "id"), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventResponse(event))
}

// DELETE /api/v1/vendor/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.events.DeleteEvent(ctx, h.sessions.Current().Profile, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
