package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"clinicsched/internal/scheduling/facade"
	"clinicsched/pkg/config"
	httputil "clinicsched/pkg/http"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type Reserver interface {
	Reserve(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string) (*model.ConflictResult, error)
}

type CheckRequest struct {
	TenantID   string    `json:"tenantId"`
	UserID     string    `json:"userId"`
	ProviderID string    `json:"providerId,omitempty"`
	ResourceID string    `json:"resourceId,omitempty"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	ExcludeID  string    `json:"excludeId,omitempty"`
}

// CheckHandler serves the dry-run conflict check.
type CheckHandler struct {
	reserver Reserver
	log      *logger.Logger
}

func NewCheckHandler(reserver Reserver, cfg *config.Config) *CheckHandler {
	return &CheckHandler{
		reserver: reserver,
		log:      cfg.Log,
	}
}

func (h *CheckHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Check", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	scope := model.Scope{
		TenantID:   req.TenantID,
		UserID:     req.UserID,
		ProviderID: req.ProviderID,
		ResourceID: req.ResourceID,
	}
	res, err := h.reserver.Reserve(r.Context(), model.Interval{Start: req.StartTime, End: req.EndTime}, scope, req.ExcludeID)
	if err != nil {
		if writeErr := httputil.WriteError(w, facade.ToAppError(err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Check", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, res); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Check", "operation", "WriteJSON", "error", err)
	}
}

func (h *CheckHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments/check", h.Check)
}
