package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	serverURL, adminUser, outputJSON, statsRegion, configFile = "", "cli", false, "", ""
	t.Cleanup(func() { configFile = "" })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestConfigValidate(t *testing.T) {
	path := writeConfig(t, "cache:\n  policies:\n    - name: costs\n      kind: TTL\n")

	out, err := execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "1 policies")

	bad := writeConfig(t, "api:\n  port: 0\n")
	_, err = execute(t, "config", "validate", "--config", bad)
	assert.ErrorContains(t, err, "config validation failed")
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	path := writeConfig(t, "cache:\n  redis:\n    addr: cache:6379\n    password: hunter2\n")

	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "cache:6379")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, cachemgmt.RedactedValue)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.yaml")
	t.Cleanup(func() { initOutput = "config.yaml" })

	_, err := execute(t, "config", "init", "--output", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", "--output", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestCacheStatsPrintsJSONWhenNotATerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/cache/statistics", r.URL.Path)
		assert.Equal(t, "Embeddings", r.URL.Query().Get("region"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"region":"Embeddings","total_hits":1500}}`))
	}))
	defer srv.Close()

	out, err := execute(t, "cache", "stats", "--server", srv.URL, "--region", "Embeddings")
	require.NoError(t, err)

	var stats cachemgmt.StatisticsSnapshot
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, int64(1500), stats.TotalHits)
}

func TestCacheClear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "ops", r.Header.Get("X-Admin-User"))
		_, _ = w.Write([]byte(`{"success":true,"message":"Cache ModelCosts cleared"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "cache", "clear", "ModelCosts", "--server", srv.URL, "--user", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache ModelCosts cleared")

	_, err = execute(t, "cache", "clear")
	assert.Error(t, err)
}

func TestStatsRows(t *testing.T) {
	rows := statsRows(&cachemgmt.StatisticsSnapshot{
		Region:    "VirtualKeys",
		TotalHits: 1234567,
		HitRate:   87.26,
		Memory:    cachemgmt.MemoryUsage{Current: "1.5 MB", Limit: "1 GB"},
	})

	assert.Equal(t, []string{"Region", "VirtualKeys"}, rows[0])
	assert.Equal(t, []string{"Hits", "1,234,567"}, rows[1])
	assert.Equal(t, "87.3%", rows[6][1])
	assert.Equal(t, "1.5 MB / 1 GB", rows[10][1])

	table := renderTable([]string{"Metric", "Value"}, rows)
	assert.Contains(t, table, "1,234,567")
}

func TestRedactConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.DSN = "postgres://u:p@db/admin"

	redacted := redactConfig(cfg)
	assert.Equal(t, cachemgmt.RedactedValue, redacted.Database.DSN)
	assert.Empty(t, redacted.Cache.Redis.Password)
	assert.Equal(t, "postgres://u:p@db/admin", cfg.Database.DSN)
}
