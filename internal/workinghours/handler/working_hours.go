package handler

import (
	"encoding/json"
	"net/http"

	"clinicsched/internal/workinghours/service"
	httputil "clinicsched/pkg/http"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WorkingHoursHandler struct {
	service service.WorkingHoursService
	log     *logger.Logger
}

func NewWorkingHoursHandler(service service.WorkingHoursService, log *logger.Logger) *WorkingHoursHandler {
	return &WorkingHoursHandler{
		service: service,
		log:     log,
	}
}

type putRequest struct {
	Hours model.WorkingHours `json:"hours"`
}

func (h *WorkingHoursHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := ps.ByName("tenant_id")
	providerID := r.URL.Query().Get("provider_id")

	eff, err := h.service.Resolve(r.Context(), tenantID, providerID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, eff); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkingHoursHandler) Put(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Put", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	wh := &model.WorkingHoursConfig{
		TenantID:   ps.ByName("tenant_id"),
		ProviderID: r.URL.Query().Get("provider_id"),
		Hours:      req.Hours,
	}
	if err := h.service.Upsert(r.Context(), wh); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Put", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, wh); err != nil {
		h.log.Error("failed to write success response", "handler", "Put", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkingHoursHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("tenant_id"), r.URL.Query().Get("provider_id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *WorkingHoursHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/working-hours/:tenant_id", h.Get)
	router.PUT("/api/v1/working-hours/:tenant_id", h.Put)
	router.DELETE("/api/v1/working-hours/:tenant_id", h.Delete)
}
