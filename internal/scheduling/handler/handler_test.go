package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinicsched/internal/scheduling/conflict"
	"clinicsched/pkg/config"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFinder struct {
	AvailableSlotsFunc func(ctx context.Context, scope model.Scope, date time.Time, duration time.Duration) ([]model.Slot, error)
	SuggestedSlotsFunc func(ctx context.Context, scope model.Scope, duration time.Duration, daysAhead int) ([]model.DaySlots, error)
}

func (m *mockFinder) AvailableSlots(ctx context.Context, scope model.Scope, date time.Time, duration time.Duration) ([]model.Slot, error) {
	return m.AvailableSlotsFunc(ctx, scope, date, duration)
}

func (m *mockFinder) SuggestedSlots(ctx context.Context, scope model.Scope, duration time.Duration, daysAhead int) ([]model.DaySlots, error) {
	return m.SuggestedSlotsFunc(ctx, scope, duration, daysAhead)
}

type mockReserver struct {
	ReserveFunc func(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string) (*model.ConflictResult, error)
}

func (m *mockReserver) Reserve(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string) (*model.ConflictResult, error) {
	return m.ReserveFunc(ctx, candidate, scope, excludeID)
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                 logger.Discard(),
		Location:            time.UTC,
		SuggestionDaysAhead: 7,
	}
}

func serve(h interface{ RegisterRoutes(*httprouter.Router) }, req *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSlots(t *testing.T) {
	var gotScope model.Scope
	var gotDate time.Time
	var gotDuration time.Duration
	finder := &mockFinder{
		AvailableSlotsFunc: func(_ context.Context, scope model.Scope, date time.Time, duration time.Duration) ([]model.Slot, error) {
			gotScope, gotDate, gotDuration = scope, date, duration
			return []model.Slot{{Start: date.Add(9 * time.Hour), End: date.Add(9*time.Hour + duration), Available: true}}, nil
		},
	}
	h := NewAvailabilityHandler(finder, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/slots?tenant_id=t1&user_id=u1&provider_id=P&date=2025-03-03&duration=45", nil)
	rec := serve(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Scope{TenantID: "t1", UserID: "u1", ProviderID: "P"}, gotScope)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), gotDate)
	assert.Equal(t, 45*time.Minute, gotDuration)

	var body struct {
		Data SlotsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-03-03", body.Data.Date)
	assert.Len(t, body.Data.Slots, 1)
}

func TestSlots_BadRequests(t *testing.T) {
	h := NewAvailabilityHandler(&mockFinder{}, testConfig())

	tests := []struct {
		name string
		url  string
	}{
		{name: "missing tenant", url: "/api/v1/availability/slots?user_id=u1&date=2025-03-03"},
		{name: "missing date", url: "/api/v1/availability/slots?tenant_id=t1&user_id=u1"},
		{name: "bad date", url: "/api/v1/availability/slots?tenant_id=t1&user_id=u1&date=03/03/2025"},
		{name: "bad duration", url: "/api/v1/availability/slots?tenant_id=t1&user_id=u1&date=2025-03-03&duration=-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSuggestions(t *testing.T) {
	var gotDays int
	finder := &mockFinder{
		SuggestedSlotsFunc: func(_ context.Context, _ model.Scope, _ time.Duration, daysAhead int) ([]model.DaySlots, error) {
			gotDays = daysAhead
			return []model.DaySlots{}, nil
		},
	}
	h := NewAvailabilityHandler(finder, testConfig())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/availability/suggestions?tenant_id=t1&user_id=u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, gotDays)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/availability/suggestions?tenant_id=t1&user_id=u1&days_ahead=14", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 14, gotDays)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/availability/suggestions?tenant_id=t1&user_id=u1&days_ahead=90", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestions_InternalError(t *testing.T) {
	finder := &mockFinder{
		SuggestedSlotsFunc: func(context.Context, model.Scope, time.Duration, int) ([]model.DaySlots, error) {
			return nil, errors.New("mongo down")
		},
	}
	h := NewAvailabilityHandler(finder, testConfig())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/availability/suggestions?tenant_id=t1&user_id=u1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo down")
}

func TestCheck(t *testing.T) {
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	reserver := &mockReserver{
		ReserveFunc: func(_ context.Context, candidate model.Interval, scope model.Scope, excludeID string) (*model.ConflictResult, error) {
			assert.Equal(t, start, candidate.Start.UTC())
			assert.Equal(t, "appt-9", excludeID)
			res := &model.ConflictResult{Conflicts: []model.Conflict{}, Suggestions: []model.Slot{}}
			res.Add(model.Conflict{Type: model.ConflictProviderAppointment, Message: "Provider already has an appointment from 10:00 to 10:30"})
			return res, nil
		},
	}
	h := NewCheckHandler(reserver, testConfig())

	body := `{"tenantId":"t1","userId":"u1","providerId":"P","startTime":"2025-03-03T10:00:00Z","endTime":"2025-03-03T10:30:00Z","excludeId":"appt-9"}`
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/appointments/check", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var res model.ConflictResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.HasConflict)
	assert.Equal(t, []model.ConflictType{model.ConflictProviderAppointment}, res.Types())
}

func TestCheck_InvalidInterval(t *testing.T) {
	reserver := &mockReserver{
		ReserveFunc: func(context.Context, model.Interval, model.Scope, string) (*model.ConflictResult, error) {
			return nil, conflict.ErrInvalidInterval
		},
	}
	h := NewCheckHandler(reserver, testConfig())

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/appointments/check", bytes.NewBufferString(`{"tenantId":"t1","userId":"u1"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/appointments/check", bytes.NewBufferString(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name   string
		h      *HealthHandler
		status int
	}{
		{name: "database only", h: &HealthHandler{database: ok}, status: http.StatusOK},
		{name: "database and cache", h: &HealthHandler{database: ok, cache: ok}, status: http.StatusOK},
		{name: "database down", h: &HealthHandler{database: fail}, status: http.StatusServiceUnavailable},
		{name: "cache down", h: &HealthHandler{database: ok, cache: fail}, status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.h.log = logger.Discard()
			rec := serve(tt.h, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := serve(&HealthHandler{database: fail, log: logger.Discard()}, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
