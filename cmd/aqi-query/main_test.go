package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqi-query/internal/report"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"AIR_NOW_API_KEY", "ZIP_CODE", "PROMETHEUS_ENABLED", "METRICS_ADDR",
		"COLLECT_INTERVAL", "AIRNOW_API_URL", "LOG_DIR", "LOG_LEVEL",
	} {
		t.Setenv(env, "")
	}
}

func oneShotArgs(apiURL, logDir string) []string {
	return []string{"--apikey=k", "--zipcode=95814", "--api-url=" + apiURL, "--log-dir=" + logDir}
}

func TestRun_OneShotFailure(t *testing.T) {
	clearEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer server.Close()

	var stdout bytes.Buffer
	assert.Equal(t, 1, run(oneShotArgs(server.URL, t.TempDir()), &stdout))
	assert.Empty(t, stdout.String(), "No table is printed when the request fails")
}

func TestRun_OneShotEmpty(t *testing.T) {
	clearEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "95814", r.URL.Query().Get("zipCode"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	logDir := t.TempDir()
	var stdout bytes.Buffer
	assert.Equal(t, 0, run(oneShotArgs(server.URL, logDir), &stdout))
	assert.Equal(t, report.EmptyResponse+"\n", stdout.String())

	logged, err := os.ReadFile(filepath.Join(logDir, logFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(logged), "aqi-query started", "One-shot runs log at warn unless asked otherwise")
}

func TestRun_ConfigurationError(t *testing.T) {
	clearEnv(t)

	var stdout bytes.Buffer
	assert.Equal(t, 1, run([]string{"--zipcode=95814", "--log-dir=" + t.TempDir()}, &stdout))
	assert.Equal(t, 1, run(append(oneShotArgs("http://127.0.0.1:1", t.TempDir()), "stray"), &stdout))
	assert.Empty(t, stdout.String())
}
