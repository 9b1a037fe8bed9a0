package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinicsched/internal/blockedtimes/repository"
	apperrors "clinicsched/pkg/errors"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	CreateFunc      func(ctx context.Context, bt *model.BlockedTime) ([]*model.BlockedTime, error)
	SearchFunc      func(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.BlockedTime, int64, error)
	DeleteFunc      func(ctx context.Context, id string) error
	DeleteGroupFunc func(ctx context.Context, tenantID, groupID string) (int64, error)
}

func (m *mockService) Create(ctx context.Context, bt *model.BlockedTime) ([]*model.BlockedTime, error) {
	return m.CreateFunc(ctx, bt)
}

func (m *mockService) Search(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.BlockedTime, int64, error) {
	return m.SearchFunc(ctx, f, limit, offset)
}

func (m *mockService) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockService) DeleteGroup(ctx context.Context, tenantID, groupID string) (int64, error) {
	return m.DeleteGroupFunc(ctx, tenantID, groupID)
}

func serve(svc *mockService, req *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewBlockedTimeHandler(svc, logger.Discard()).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreate(t *testing.T) {
	svc := &mockService{
		CreateFunc: func(_ context.Context, bt *model.BlockedTime) ([]*model.BlockedTime, error) {
			require.NotNil(t, bt.RecurrenceRule)
			assert.Equal(t, model.FrequencyDaily, bt.RecurrenceRule.Frequency)
			second := *bt
			second.StartTime = bt.StartTime.AddDate(0, 0, 1)
			second.EndTime = bt.EndTime.AddDate(0, 0, 1)
			return []*model.BlockedTime{bt, &second}, nil
		},
	}

	body := `{"tenantId":"t1","userId":"u1","providerId":"P","reason":"Lunch",
		"startTime":"2025-03-03T12:00:00Z","endTime":"2025-03-03T13:00:00Z",
		"recurrence":{"frequency":"daily","count":2}}`
	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/v1/blocked-times", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.CreatedCount)
	assert.Len(t, resp.BlockedTimes, 2)
}

func TestCreate_BadBody(t *testing.T) {
	rec := serve(&mockService{}, httptest.NewRequest(http.MethodPost, "/api/v1/blocked-times", bytes.NewBufferString("[")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	svc := &mockService{
		SearchFunc: func(_ context.Context, f repository.Filter, _ int, _ int64) ([]*model.BlockedTime, int64, error) {
			assert.Equal(t, "t1", f.TenantID)
			assert.Equal(t, "P", f.ProviderID)
			return []*model.BlockedTime{{ID: "b1"}}, 1, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/api/v1/blocked-times/search?tenant_id=t1&provider_id=P", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDelete(t *testing.T) {
	svc := &mockService{
		DeleteFunc: func(_ context.Context, id string) error {
			if id == "missing" {
				return apperrors.NotFoundWithID("Blocked time", id)
			}
			return nil
		},
		DeleteGroupFunc: func(_ context.Context, tenantID, groupID string) (int64, error) {
			assert.Equal(t, "t1", tenantID)
			return 4, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodDelete, "/api/v1/blocked-times/id/b1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(svc, httptest.NewRequest(http.MethodDelete, "/api/v1/blocked-times/id/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(svc, httptest.NewRequest(http.MethodDelete, "/api/v1/blocked-times/group/9b2f4c1e-8d1a-4c3b-9a55-0f6a3f1f2e10?tenant_id=t1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data DeleteGroupResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(4), body.Data.DeletedCount)
}
