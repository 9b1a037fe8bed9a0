package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"clinicsched/internal/appointments/repository"
	"clinicsched/internal/appointments/service"
	apperrors "clinicsched/pkg/errors"
	httputil "clinicsched/pkg/http"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	service service.AppointmentService
	loc     *time.Location
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, loc *time.Location, log *logger.Logger) *AppointmentHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentHandler{
		service: service,
		loc:     loc,
		log:     log,
	}
}

type createRequest struct {
	model.Appointment
	Recurrence *model.RecurrenceRule `json:"recurrence,omitempty"`
}

type ConflictEntry struct {
	Type          model.ConflictType `json:"type"`
	Message       string             `json:"message"`
	ConflictingID string             `json:"conflictingId,omitempty"`
}

type Suggestion struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Reason    string    `json:"reason"`
}

// ConflictResponse is the 409 body for a rejected reservation.
type ConflictResponse struct {
	Error       string          `json:"error"`
	Code        string          `json:"code"`
	Conflicts   []ConflictEntry `json:"conflicts"`
	Suggestions []Suggestion    `json:"suggestions"`
}

type InstanceConflict struct {
	StartTime time.Time       `json:"startTime"`
	EndTime   time.Time       `json:"endTime"`
	Conflicts []ConflictEntry `json:"conflicts"`
}

type SeriesResponse struct {
	CreatedCount      int                  `json:"created_count"`
	SkippedCount      int                  `json:"skipped_count"`
	RecurrenceGroupID string               `json:"recurrenceGroupId,omitempty"`
	CeilingReached    bool                 `json:"ceilingReached,omitempty"`
	Appointments      []*model.Appointment `json:"appointments"`
	Conflicts         []InstanceConflict   `json:"conflicts,omitempty"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var appt model.Appointment
	if !h.decode(w, r, "Create", &appt) {
		return
	}

	res, err := h.service.Create(r.Context(), &appt)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	if res.HasConflict {
		h.writeConflict(w, "Create", res)
		return
	}

	if err := httputil.WriteCreated(w, appt); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) CreateRecurring(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createRequest
	if !h.decode(w, r, "CreateRecurring", &req) {
		return
	}
	if req.Recurrence == nil {
		h.writeError(w, "CreateRecurring", apperrors.InvalidInput("recurrence is required"))
		return
	}

	out, err := h.service.CreateRecurring(r.Context(), &req.Appointment, req.Recurrence)
	if err != nil {
		h.writeError(w, "CreateRecurring", err)
		return
	}

	resp := SeriesResponse{
		CreatedCount:      len(out.Appointments),
		SkippedCount:      len(out.Skipped),
		RecurrenceGroupID: out.GroupID,
		CeilingReached:    out.CeilingReached,
		Appointments:      out.Appointments,
	}
	for _, skipped := range out.Skipped {
		resp.Conflicts = append(resp.Conflicts, InstanceConflict{
			StartTime: skipped.Interval.Start,
			EndTime:   skipped.Interval.End,
			Conflicts: toEntries(skipped.Conflicts),
		})
	}

	if err := httputil.WriteJSON(w, http.StatusCreated, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "CreateRecurring", "operation", "WriteJSON", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appt, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	startTime, err := httputil.OptionalTime(r, "start_time")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	endTime, err := httputil.OptionalTime(r, "end_time")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	query := r.URL.Query()
	filter := repository.Filter{
		TenantID:   query.Get("tenant_id"),
		ProviderID: query.Get("provider_id"),
		UserID:     query.Get("user_id"),
		ResourceID: query.Get("resource_id"),
		Status:     query.Get("status"),
		StartTime:  startTime,
		EndTime:    endTime,
	}

	appts, total, err := h.service.Search(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, appts, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.AppointmentUpdate
	if !h.decode(w, r, "Update", &update) {
		return
	}

	appt, res, err := h.service.Reschedule(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	if res != nil && res.HasConflict {
		h.writeConflict(w, "Update", res)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.StatusUpdate
	if !h.decode(w, r, "UpdateStatus", &req) {
		return
	}

	appt, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), req.Status)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.POST("/api/v1/appointments/recurring", h.CreateRecurring)
	router.GET("/api/v1/appointments/search", h.Search)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/id/:id", h.Update)
	router.PATCH("/api/v1/appointments/id/:id/status", h.UpdateStatus)
}

func (h *AppointmentHandler) decode(w http.ResponseWriter, r *http.Request, handler string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
		}
		return false
	}
	return true
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) writeConflict(w http.ResponseWriter, handler string, res *model.ConflictResult) {
	resp := ConflictResponse{
		Error:       "Requested time is not available",
		Code:        apperrors.CodeConflict,
		Conflicts:   toEntries(res.Conflicts),
		Suggestions: make([]Suggestion, 0, len(res.Suggestions)),
	}
	for _, s := range res.Suggestions {
		resp.Suggestions = append(resp.Suggestions, Suggestion{
			StartTime: s.Start,
			EndTime:   s.End,
			Reason:    fmt.Sprintf("Available on %s", s.Start.In(h.loc).Format("Mon Jan 2 at 15:04")),
		})
	}

	if err := httputil.WriteJSON(w, http.StatusConflict, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func toEntries(conflicts []model.Conflict) []ConflictEntry {
	entries := make([]ConflictEntry, 0, len(conflicts))
	for _, c := range conflicts {
		entries = append(entries, ConflictEntry{Type: c.Type, Message: c.Message, ConflictingID: c.ConflictingID})
	}
	return entries
}
