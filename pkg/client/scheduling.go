package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"clinicsched/pkg/model"
)

// APIError is a non-2xx answer from the scheduling API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scheduling api: %d %s", e.StatusCode, e.Message)
}

// SlotQuery addresses an availability lookup. Duration is in minutes.
type SlotQuery struct {
	TenantID   string
	UserID     string
	ProviderID string
	ResourceID string
	Duration   int
}

func (q SlotQuery) values() url.Values {
	v := url.Values{}
	v.Set("tenant_id", q.TenantID)
	v.Set("user_id", q.UserID)
	if q.ProviderID != "" {
		v.Set("provider_id", q.ProviderID)
	}
	if q.ResourceID != "" {
		v.Set("resource_id", q.ResourceID)
	}
	v.Set("duration", strconv.Itoa(q.Duration))
	return v
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

// SchedulingClient is a typed client for the scheduling API.
type SchedulingClient struct {
	httpClient *HttpClient
}

func NewSchedulingClient(baseURL string, timeout time.Duration) *SchedulingClient {
	return &SchedulingClient{httpClient: NewHttpClient(baseURL, timeout)}
}

// WithTenant sends X-Tenant-ID on every request.
func (c *SchedulingClient) WithTenant(tenantID string) *SchedulingClient {
	c.httpClient.Headers["X-Tenant-ID"] = tenantID
	return c
}

func (c *SchedulingClient) Slots(ctx context.Context, q SlotQuery, date string) ([]model.Slot, error) {
	v := q.values()
	v.Set("date", date)

	var out struct {
		Data struct {
			Slots []model.Slot `json:"slots"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/api/v1/availability/slots?"+v.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Data.Slots, nil
}

func (c *SchedulingClient) Suggestions(ctx context.Context, q SlotQuery, daysAhead int) ([]model.DaySlots, error) {
	v := q.values()
	if daysAhead > 0 {
		v.Set("days_ahead", strconv.Itoa(daysAhead))
	}

	var out struct {
		Data []model.DaySlots `json:"data"`
	}
	if err := c.get(ctx, "/api/v1/availability/suggestions?"+v.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *SchedulingClient) Check(ctx context.Context, req CheckRequest) (*model.ConflictResult, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/appointments/check", req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: GetErrorMessage(resp)}
	}

	var res model.ConflictResult
	if err := resp.DecodeJSON(&res); err != nil {
		return nil, fmt.Errorf("failed to decode check result: %w", err)
	}
	return &res, nil
}

func (c *SchedulingClient) WorkingHours(ctx context.Context, tenantID, providerID string) (*model.EffectiveHours, error) {
	path := "/api/v1/working-hours/" + url.PathEscape(tenantID)
	if providerID != "" {
		path += "?provider_id=" + url.QueryEscape(providerID)
	}

	var out struct {
		Data model.EffectiveHours `json:"data"`
	}
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *SchedulingClient) get(ctx context.Context, path string, target any) error {
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: GetErrorMessage(resp)}
	}
	if err := resp.DecodeJSON(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
