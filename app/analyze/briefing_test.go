package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trendwatch/trendwatch/app/canonical"
	"github.com/trendwatch/trendwatch/app/report"
	"github.com/trendwatch/trendwatch/app/trend"
)

func briefingReport(titles ...string) *report.Report {
	r := &report.Report{
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Mode:        "daily",
	}
	for i, title := range titles {
		r.Items = append(r.Items, report.Item{
			Item:           canonical.Item{DisplayTitle: title, PlatformID: "zhihu", Rank: i + 1},
			Classification: trend.ClassificationNew,
		})
	}
	r.TotalItems = len(r.Items)
	return r
}

func TestAnalyzerAttachesSummary(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  今日简报内容\n"}}]}`)
	}))
	defer server.Close()

	analyzer := NewAnalyzer(testClient(server.URL), 20)
	rep := briefingReport("AI芯片突破", "新能源车销量创新高")

	if err := analyzer.Run(context.Background(), rep); err != nil {
		t.Fatalf("Expected briefing to succeed, got: %v", err)
	}
	if rep.Summary != "今日简报内容" {
		t.Errorf("Expected trimmed summary attached, got %q", rep.Summary)
	}

	prompt := captured.Messages[1].Content
	if !strings.Contains(prompt, "AI芯片突破") || !strings.Contains(prompt, "新能源车销量创新高") {
		t.Errorf("Expected prompt to carry matched titles, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "新上榜") {
		t.Errorf("Expected prompt to carry classifications, got:\n%s", prompt)
	}
}

func TestAnalyzerSkipsEmptyReport(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	analyzer := NewAnalyzer(testClient(server.URL), 20)
	rep := briefingReport()

	if err := analyzer.Run(context.Background(), rep); err != nil {
		t.Fatalf("Expected empty report to be skipped, got: %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected no requests for an empty report, got %d", calls)
	}
	if rep.Summary != "" {
		t.Errorf("Expected no summary, got %q", rep.Summary)
	}
}

func TestAnalyzerBoundsPromptItems(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer server.Close()

	analyzer := NewAnalyzer(testClient(server.URL), 2)
	rep := briefingReport("第一条", "第二条", "第三条")

	if err := analyzer.Run(context.Background(), rep); err != nil {
		t.Fatalf("Expected briefing to succeed, got: %v", err)
	}

	prompt := captured.Messages[1].Content
	if !strings.Contains(prompt, "第二条") {
		t.Errorf("Expected second item in prompt, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "第三条") {
		t.Errorf("Expected items beyond the bound to be dropped, got:\n%s", prompt)
	}
}

func TestAnalyzerSurfacesClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	analyzer := NewAnalyzer(testClient(server.URL), 20)
	rep := briefingReport("AI芯片突破")

	if err := analyzer.Run(context.Background(), rep); err == nil {
		t.Fatal("Expected error from failing endpoint")
	}
	if rep.Summary != "" {
		t.Errorf("Expected no summary on failure, got %q", rep.Summary)
	}
}
