package handler

import (
	"context"
	"net/http"
	"time"

	"clinicsched/internal/scheduling/facade"
	"clinicsched/pkg/config"
	apperrors "clinicsched/pkg/errors"
	httputil "clinicsched/pkg/http"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const defaultSlotMinutes = 30

type SlotFinder interface {
	AvailableSlots(ctx context.Context, scope model.Scope, date time.Time, duration time.Duration) ([]model.Slot, error)
	SuggestedSlots(ctx context.Context, scope model.Scope, duration time.Duration, daysAhead int) ([]model.DaySlots, error)
}

type AvailabilityHandler struct {
	finder    SlotFinder
	loc       *time.Location
	daysAhead int
	log       *logger.Logger
}

func NewAvailabilityHandler(finder SlotFinder, cfg *config.Config) *AvailabilityHandler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityHandler{
		finder:    finder,
		loc:       loc,
		daysAhead: cfg.SuggestionDaysAhead,
		log:       cfg.Log,
	}
}

type SlotsResponse struct {
	Date     string       `json:"date"`
	Duration int          `json:"duration"`
	Slots    []model.Slot `json:"slots"`
}

func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}
	date, err := httputil.RequiredDate(r, "date", h.loc)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}
	minutes, err := httputil.PositiveInt(r, "duration", defaultSlotMinutes)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}

	slots, err := h.finder.AvailableSlots(r.Context(), scope, date, time.Duration(minutes)*time.Minute)
	if err != nil {
		h.writeError(w, "Slots", facade.ToAppError(err))
		return
	}

	if err := httputil.WriteSuccess(w, SlotsResponse{
		Date:     date.Format(httputil.DateLayout),
		Duration: minutes,
		Slots:    slots,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Suggestions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		h.writeError(w, "Suggestions", err)
		return
	}
	minutes, err := httputil.PositiveInt(r, "duration", defaultSlotMinutes)
	if err != nil {
		h.writeError(w, "Suggestions", err)
		return
	}
	days, err := httputil.PositiveInt(r, "days_ahead", h.daysAhead)
	if err != nil {
		h.writeError(w, "Suggestions", err)
		return
	}
	if days > 31 {
		h.writeError(w, "Suggestions", apperrors.InvalidInput("days_ahead must be at most 31"))
		return
	}

	suggested, err := h.finder.SuggestedSlots(r.Context(), scope, time.Duration(minutes)*time.Minute, days)
	if err != nil {
		h.writeError(w, "Suggestions", facade.ToAppError(err))
		return
	}

	if err := httputil.WriteSuccess(w, suggested); err != nil {
		h.log.Error("failed to write success response", "handler", "Suggestions", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/slots", h.Slots)
	router.GET("/api/v1/availability/suggestions", h.Suggestions)
}

func scopeFromQuery(r *http.Request) (model.Scope, error) {
	q := r.URL.Query()
	scope := model.Scope{
		TenantID:   q.Get("tenant_id"),
		UserID:     q.Get("user_id"),
		ProviderID: q.Get("provider_id"),
		ResourceID: q.Get("resource_id"),
	}
	if scope.TenantID == "" || scope.UserID == "" {
		return model.Scope{}, apperrors.InvalidInput("Both 'tenant_id' and 'user_id' query parameters are required")
	}
	return scope, nil
}
