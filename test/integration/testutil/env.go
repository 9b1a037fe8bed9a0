package testutil

import (
	"fmt"
	"os"
	"testing"
)

const (
	DefaultHealthCheckTimeout = 3 * ConnectionTimeout
	DefaultTenantID           = "it-clinic"
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
	TenantID     string
}

// NewTestEnv reads the integration environment. It skips the test unless
// TEST_SERVER_URL points at a running scheduling service.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL not set; skipping integration tests")
	}

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    serverURL,
		TenantID:     getEnv("TEST_TENANT_ID", fmt.Sprintf("%s-%d", DefaultTenantID, os.Getpid())),
	}
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanTenant(t, e.TenantID)

	client := NewClient(e.ServerURL, e.TenantID)
	client.WaitForHealthy(t, DefaultHealthCheckTimeout)

	return mongo, client
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanTenant(t, e.TenantID)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
