package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trendwatch/trendwatch/app/config"
	"github.com/trendwatch/trendwatch/app/match"
	"github.com/trendwatch/trendwatch/app/notify"
	"github.com/trendwatch/trendwatch/app/report"
	"github.com/trendwatch/trendwatch/app/source"
	"github.com/trendwatch/trendwatch/app/tasks"
)

type fakeRunner struct {
	last     *tasks.RunResult
	runCalls int
}

func (f *fakeRunner) Run(ctx context.Context) *tasks.RunResult {
	f.runCalls++
	f.last = &tasks.RunResult{
		StartedAt: time.Now().UTC(),
		Status:    notify.RunAllSucceeded,
		Report:    &report.Report{Mode: "incremental"},
	}
	return f.last
}

func (f *fakeRunner) LastResult() *tasks.RunResult {
	return f.last
}

func (f *fakeRunner) GetStats() tasks.Stats {
	stats := tasks.Stats{RunCount: f.runCalls}
	if f.last != nil {
		stats.LastRunAt = &f.last.StartedAt
		stats.Status = f.last.Status
	}
	return stats
}

func testConfig() *config.Config {
	return &config.Config{
		Sources: []*source.Config{
			{ID: "zhihu", Type: source.TypeHotlist, URL: "https://example.com", Enabled: true},
			{ID: "disabled", Type: source.TypeHotlist, URL: "https://example.com", Enabled: false},
		},
		Groups:   []match.Group{{Label: "AI", Includes: []string{"AI"}}},
		Channels: []notify.ChannelConfig{{Type: "feishu", Enabled: true}},
	}
}

func newTestServer(runner RunnerInterface, apiAccessKey string) http.Handler {
	return NewServer(NewHandler(runner, testConfig()), apiAccessKey)
}

func TestGetHealth(t *testing.T) {
	server := newTestServer(&fakeRunner{}, "")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["timestamp"] == nil || body["uptime"] == nil {
		t.Errorf("Expected timestamp and uptime fields, got %v", body)
	}
}

func TestGetStats(t *testing.T) {
	runner := &fakeRunner{}
	runner.Run(context.Background())
	server := newTestServer(runner, "")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["run_count"].(float64) != 1 {
		t.Errorf("Expected run_count 1, got %v", body["run_count"])
	}
	if body["sources"].(float64) != 1 {
		t.Errorf("Expected 1 enabled source, got %v", body["sources"])
	}
	if body["groups"].(float64) != 1 || body["channels"].(float64) != 1 {
		t.Errorf("Unexpected config counts: %v", body)
	}
}

func TestGetLatestRunBeforeFirstRun(t *testing.T) {
	server := newTestServer(&fakeRunner{}, "")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/runs/latest", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before first run, got %d", w.Code)
	}
}

func TestGetLatestRun(t *testing.T) {
	runner := &fakeRunner{}
	runner.Run(context.Background())
	server := newTestServer(runner, "")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/runs/latest", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var result tasks.RunResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Status != notify.RunAllSucceeded {
		t.Errorf("Expected all_succeeded, got %s", result.Status)
	}
}

func TestTriggerRunRequiresAuth(t *testing.T) {
	runner := &fakeRunner{}
	server := newTestServer(runner, "secret")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("POST", "/api/run", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", w.Code)
	}

	req := httptest.NewRequest("POST", "/api/run", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong key, got %d", w.Code)
	}

	if runner.runCalls != 0 {
		t.Errorf("Expected no runs triggered, got %d", runner.runCalls)
	}
}

func TestTriggerRun(t *testing.T) {
	runner := &fakeRunner{}
	server := newTestServer(runner, "secret")

	req := httptest.NewRequest("POST", "/api/run", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if runner.runCalls != 1 {
		t.Errorf("Expected 1 triggered run, got %d", runner.runCalls)
	}
}

func TestTriggerRunDisabledWithoutKey(t *testing.T) {
	server := newTestServer(&fakeRunner{}, "")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("POST", "/api/run", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when API is disabled, got %d", w.Code)
	}
}
