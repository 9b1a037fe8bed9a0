package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clinicsched/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExpand(t *testing.T) {
	out, err := run(t, "expand",
		"--timezone", "America/New_York",
		"--start", "2025-03-03T10:00",
		"--duration", "45m",
		"--frequency", "weekly",
		"--count", "3",
	)
	require.NoError(t, err)

	var got ExpandOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got.Instances, 3)
	assert.Equal(t, "2025-03-03T10:00:00-05:00", got.Instances[0].Start)
	assert.Equal(t, "2025-03-03T10:45:00-05:00", got.Instances[0].End)
	// Wall clock holds across the DST change on 2025-03-09.
	assert.Equal(t, "2025-03-10T10:00:00-04:00", got.Instances[1].Start)
	assert.False(t, got.CeilingReached)
}

func TestExpand_CeilingAndJSON(t *testing.T) {
	out, err := run(t, "expand", "--start", "2025-03-03T10:00", "--frequency", "daily", "--ceiling", "5", "-o", "json")
	require.NoError(t, err)

	var got ExpandOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Instances, 6)
	assert.True(t, got.CeilingReached)
}

func TestExpand_BadInput(t *testing.T) {
	_, err := run(t, "expand", "--start", "03/03/2025")
	assert.Error(t, err)

	_, err = run(t, "expand", "--start", "2025-03-03T10:00", "--timezone", "Mars/Olympus")
	assert.Error(t, err)

	_, err = run(t, "expand", "--start", "2025-03-03T10:00", "-o", "xml")
	assert.Error(t, err)
}

func TestHours(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hours.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
working_hours:
  monday:
    start: "09:00"
    end: "17:00"
    breaks:
      - start: "12:00"
        end: "13:00"
`), 0o600))

	out, err := run(t, "hours", "--file", path, "--date", "2025-03-02", "--days", "2")
	require.NoError(t, err)

	var got []HoursOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "sunday", got[0].Weekday)
	assert.Empty(t, got[0].Open)
	assert.Equal(t, "monday", got[1].Weekday)
	require.Len(t, got[1].Open, 2)
	assert.Equal(t, "2025-03-03T12:00:00Z", got[1].Open[0].End)
	assert.Equal(t, "2025-03-03T13:00:00Z", got[1].Open[1].Start)
}

func TestSlots(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/availability/slots", r.URL.Path)
		assert.Equal(t, "t1", r.URL.Query().Get("tenant_id"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"slots": []model.Slot{{Start: start, End: start.Add(30 * time.Minute), Available: true}},
			},
		})
	}))
	defer srv.Close()

	t.Setenv("SCHEDCTL_SERVER", srv.URL)
	t.Setenv("SCHEDCTL_TENANT", "t1")

	out, err := run(t, "slots", "--user", "u1", "--provider", "P", "--date", "2025-03-03", "-o", "json")
	require.NoError(t, err)

	var got []model.Slot
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.True(t, got[0].Start.Equal(start))
}

func TestSlots_RequiresTenant(t *testing.T) {
	_, err := run(t, "slots", "--user", "u1", "--date", "2025-03-03")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "from-file", r.URL.Query().Get("tenant_id"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"slots": []model.Slot{}}})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "schedctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: "+srv.URL+"\ntenant: from-file\noutput: json\n"), 0o600))

	out, err := run(t, "slots", "--config", path, "--user", "u1", "--date", "2025-03-03")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	_, err = run(t, "expand", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--start", "2025-03-03T10:00")
	assert.Error(t, err)
}
