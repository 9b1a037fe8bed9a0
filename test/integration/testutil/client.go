package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"clinicsched/pkg/client"
	"clinicsched/pkg/middleware"
)

// Client wraps the service HTTP client with fatal-on-error helpers.
type Client struct {
	*client.HttpClient
}

func NewClient(baseURL, tenantID string) *Client {
	c := client.NewHttpClient(baseURL, 10*time.Second)
	c.Headers[middleware.TenantHeader] = tenantID
	return &Client{HttpClient: c}
}

func (c *Client) GET(t *testing.T, path string) *client.Response {
	t.Helper()
	return c.must(t)(c.HttpClient.GET(context.Background(), path))
}

func (c *Client) POST(t *testing.T, path string, body any) *client.Response {
	t.Helper()
	return c.must(t)(c.HttpClient.POST(context.Background(), path, body))
}

func (c *Client) PATCH(t *testing.T, path string, body any) *client.Response {
	t.Helper()
	return c.must(t)(c.HttpClient.PATCH(context.Background(), path, body))
}

func (c *Client) PUT(t *testing.T, path string, body any) *client.Response {
	t.Helper()
	return c.must(t)(c.HttpClient.PUT(context.Background(), path, body))
}

func (c *Client) DELETE(t *testing.T, path string) *client.Response {
	t.Helper()
	return c.must(t)(c.HttpClient.DELETE(context.Background(), path))
}

func (c *Client) must(t *testing.T) func(*client.Response, error) *client.Response {
	return func(resp *client.Response, err error) *client.Response {
		t.Helper()
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		return resp
	}
}

// WaitForHealthy polls /health until the service answers.
func (c *Client) WaitForHealthy(t *testing.T, maxWait time.Duration) {
	t.Helper()
	if err := c.HttpClient.WaitForHealthy(context.Background(), maxWait); err != nil {
		t.Fatal(err)
	}
	t.Log("Service is healthy")
}

func AssertStatusCode(t *testing.T, resp *client.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}

func AssertContains(t *testing.T, resp *client.Response, substr string) {
	t.Helper()
	if !strings.Contains(string(resp.Body), substr) {
		t.Fatalf("response body does not contain %q. Body: %s", substr, string(resp.Body))
	}
}

func IsOK(resp *client.Response) bool {
	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}
