package handler

import (
	"encoding/json"
	"net/http"

	"clinicsched/internal/blockedtimes/repository"
	"clinicsched/internal/blockedtimes/service"
	httputil "clinicsched/pkg/http"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BlockedTimeHandler struct {
	service service.BlockedTimeService
	log     *logger.Logger
}

func NewBlockedTimeHandler(service service.BlockedTimeService, log *logger.Logger) *BlockedTimeHandler {
	return &BlockedTimeHandler{
		service: service,
		log:     log,
	}
}

type createRequest struct {
	model.BlockedTime
	Recurrence *model.RecurrenceRule `json:"recurrence,omitempty"`
}

type CreateResponse struct {
	CreatedCount int                  `json:"created_count"`
	BlockedTimes []*model.BlockedTime `json:"blocked_times"`
}

type DeleteGroupResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

func (h *BlockedTimeHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	bt := req.BlockedTime
	if req.Recurrence != nil {
		bt.RecurrenceRule = req.Recurrence
	}

	created, err := h.service.Create(r.Context(), &bt)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	resp := CreateResponse{CreatedCount: len(created), BlockedTimes: created}
	if err := httputil.WriteJSON(w, http.StatusCreated, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", err)
	}
}

func (h *BlockedTimeHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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
		GroupID:    query.Get("recurrence_group_id"),
		StartTime:  startTime,
		EndTime:    endTime,
	}

	bts, total, err := h.service.Search(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, bts, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *BlockedTimeHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BlockedTimeHandler) DeleteGroup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n, err := h.service.DeleteGroup(r.Context(), r.URL.Query().Get("tenant_id"), ps.ByName("group_id"))
	if err != nil {
		h.writeError(w, "DeleteGroup", err)
		return
	}

	if err := httputil.WriteSuccess(w, DeleteGroupResponse{DeletedCount: n}); err != nil {
		h.log.Error("failed to write success response", "handler", "DeleteGroup", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BlockedTimeHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/blocked-times", h.Create)
	router.GET("/api/v1/blocked-times/search", h.Search)
	router.DELETE("/api/v1/blocked-times/id/:id", h.Delete)
	router.DELETE("/api/v1/blocked-times/group/:group_id", h.DeleteGroup)
}

func (h *BlockedTimeHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
