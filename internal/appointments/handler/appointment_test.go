package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinicsched/internal/appointments/repository"
	"clinicsched/internal/appointments/service"
	"clinicsched/internal/scheduling/facade"
	apperrors "clinicsched/pkg/errors"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	CreateFunc          func(ctx context.Context, appt *model.Appointment) (*model.ConflictResult, error)
	CreateRecurringFunc func(ctx context.Context, appt *model.Appointment, rule *model.RecurrenceRule) (*service.SeriesOutcome, error)
	GetByIDFunc         func(ctx context.Context, id string) (*model.Appointment, error)
	SearchFunc          func(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Appointment, int64, error)
	RescheduleFunc      func(ctx context.Context, id string, update *model.AppointmentUpdate) (*model.Appointment, *model.ConflictResult, error)
	UpdateStatusFunc    func(ctx context.Context, id string, status string) (*model.Appointment, error)
}

func (m *mockService) Create(ctx context.Context, appt *model.Appointment) (*model.ConflictResult, error) {
	return m.CreateFunc(ctx, appt)
}

func (m *mockService) CreateRecurring(ctx context.Context, appt *model.Appointment, rule *model.RecurrenceRule) (*service.SeriesOutcome, error) {
	return m.CreateRecurringFunc(ctx, appt, rule)
}

func (m *mockService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockService) Search(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	return m.SearchFunc(ctx, f, limit, offset)
}

func (m *mockService) Reschedule(ctx context.Context, id string, update *model.AppointmentUpdate) (*model.Appointment, *model.ConflictResult, error) {
	return m.RescheduleFunc(ctx, id, update)
}

func (m *mockService) UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error) {
	return m.UpdateStatusFunc(ctx, id, status)
}

func serve(svc *mockService, req *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewAppointmentHandler(svc, time.UTC, logger.Discard()).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func at(h, m int) time.Time {
	return time.Date(2025, 3, 3, h, m, 0, 0, time.UTC)
}

const createBody = `{"tenantId":"t1","userId":"u1","providerId":"P","serviceId":"consult",
	"startTime":"2025-03-03T10:00:00Z","endTime":"2025-03-03T10:30:00Z"}`

func TestCreate_Created(t *testing.T) {
	svc := &mockService{
		CreateFunc: func(_ context.Context, appt *model.Appointment) (*model.ConflictResult, error) {
			assert.Equal(t, "P", appt.ProviderID)
			appt.ID = "65f1c0ffee65f1c0ffee65f1"
			return &model.ConflictResult{}, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewBufferString(createBody)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "65f1c0ffee65f1c0ffee65f1", body.Data.ID)
}

func TestCreate_Conflict(t *testing.T) {
	start, end := at(10, 0), at(10, 30)
	svc := &mockService{
		CreateFunc: func(context.Context, *model.Appointment) (*model.ConflictResult, error) {
			res := &model.ConflictResult{Suggestions: []model.Slot{{Start: at(11, 0), End: at(11, 30), Available: true}}}
			res.Add(model.Conflict{
				Type:          model.ConflictProviderAppointment,
				Message:       "Provider already has an appointment from 10:00 to 10:30",
				ConflictingID: "a1",
				Start:         &start,
				End:           &end,
			})
			return res, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewBufferString(createBody)))
	require.Equal(t, http.StatusConflict, rec.Code)

	var body ConflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Conflicts, 1)
	assert.Equal(t, model.ConflictProviderAppointment, body.Conflicts[0].Type)
	require.Len(t, body.Suggestions, 1)
	assert.Equal(t, at(11, 0), body.Suggestions[0].StartTime)
	assert.Equal(t, "Available on Mon Mar 3 at 11:00", body.Suggestions[0].Reason)
}

func TestCreate_BadBodyAndServiceError(t *testing.T) {
	svc := &mockService{
		CreateFunc: func(context.Context, *model.Appointment) (*model.ConflictResult, error) {
			return nil, apperrors.Validation("Appointment validation failed", map[string]any{"serviceId": "serviceId is required"})
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(svc, httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewBufferString(createBody)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateRecurring(t *testing.T) {
	svc := &mockService{
		CreateRecurringFunc: func(_ context.Context, appt *model.Appointment, rule *model.RecurrenceRule) (*service.SeriesOutcome, error) {
			assert.Equal(t, model.FrequencyWeekly, rule.Frequency)
			require.NotNil(t, rule.Count)
			assert.Equal(t, 3, *rule.Count)
			return &service.SeriesOutcome{
				GroupID: "9b2f4c1e-8d1a-4c3b-9a55-0f6a3f1f2e10",
				Appointments: []*model.Appointment{
					{ID: "a1", StartTime: at(10, 0), EndTime: at(10, 30)},
					{ID: "a2", StartTime: at(10, 0).AddDate(0, 0, 14), EndTime: at(10, 30).AddDate(0, 0, 14)},
				},
				Skipped: []facade.SkippedInstance{{
					Interval:  model.Interval{Start: at(10, 0).AddDate(0, 0, 7), End: at(10, 30).AddDate(0, 0, 7)},
					Conflicts: []model.Conflict{{Type: model.ConflictBlockedTime, Message: "Time is blocked"}},
				}},
			}, nil
		},
	}

	body := `{"tenantId":"t1","userId":"u1","providerId":"P","serviceId":"consult",
		"startTime":"2025-03-03T10:00:00Z","endTime":"2025-03-03T10:30:00Z",
		"recurrence":{"frequency":"weekly","interval":1,"count":3}}`
	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/v1/appointments/recurring", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SeriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.CreatedCount)
	assert.Equal(t, 1, resp.SkippedCount)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, model.ConflictBlockedTime, resp.Conflicts[0].Conflicts[0].Type)
}

func TestCreateRecurring_MissingRecurrence(t *testing.T) {
	rec := serve(&mockService{}, httptest.NewRequest(http.MethodPost, "/api/v1/appointments/recurring", bytes.NewBufferString(createBody)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	svc := &mockService{
		SearchFunc: func(_ context.Context, f repository.Filter, limit int, offset int64) ([]*model.Appointment, int64, error) {
			assert.Equal(t, "t1", f.TenantID)
			assert.Equal(t, "P", f.ProviderID)
			require.NotNil(t, f.StartTime)
			assert.Equal(t, at(0, 0), *f.StartTime)
			assert.Nil(t, f.EndTime)
			assert.Equal(t, 5, limit)
			assert.Equal(t, int64(10), offset)
			return []*model.Appointment{{ID: "a1"}}, 11, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodGet,
		"/api/v1/appointments/search?tenant_id=t1&provider_id=P&start_time=2025-03-03T00:00:00Z&limit=5&offset=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		TotalCount int64 `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(11), body.TotalCount)

	rec = serve(svc, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/search?tenant_id=t1&start_time=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdate(t *testing.T) {
	svc := &mockService{
		RescheduleFunc: func(_ context.Context, id string, update *model.AppointmentUpdate) (*model.Appointment, *model.ConflictResult, error) {
			if update.StartTime != nil && update.StartTime.Hour() == 14 {
				res := &model.ConflictResult{}
				res.Add(model.Conflict{Type: model.ConflictOutsideWorkingHours, Message: "Outside working hours"})
				return nil, res, nil
			}
			return &model.Appointment{ID: id, StartTime: *update.StartTime}, &model.ConflictResult{}, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/id/a1",
		bytes.NewBufferString(`{"startTime":"2025-03-03T11:00:00Z","endTime":"2025-03-03T11:30:00Z"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(svc, httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/id/a1",
		bytes.NewBufferString(`{"startTime":"2025-03-03T14:00:00Z","endTime":"2025-03-03T14:30:00Z"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	svc := &mockService{
		UpdateStatusFunc: func(_ context.Context, id string, status string) (*model.Appointment, error) {
			if status == model.StatusScheduled {
				return nil, apperrors.Conflict("Cannot change status from cancelled to scheduled")
			}
			return &model.Appointment{ID: id, Status: status}, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/id/a1/status", bytes.NewBufferString(`{"status":"cancelled"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(svc, httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/id/a1/status", bytes.NewBufferString(`{"status":"scheduled"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockService{
		GetByIDFunc: func(_ context.Context, id string) (*model.Appointment, error) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		},
	}
	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/id/a1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
