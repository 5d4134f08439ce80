package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tubelens-backend/internal/analysis"
	"tubelens-backend/internal/models"
)

// ─── Stubs ───

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, req analysis.CompletionRequest) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubCompleter) Model() string { return "stub-model" }

type stubFetcher struct {
	fetch *models.ChannelFetch
	err   error
	gotN  int
}

func (s *stubFetcher) FetchChannel(ctx context.Context, channelURL string, maxVideos int) (*models.ChannelFetch, error) {
	s.gotN = maxVideos
	return s.fetch, s.err
}

func (s *stubFetcher) Source() string { return "stub" }

type recordingProgress struct {
	steps  []string
	done   int
	failed []string
}

func (p *recordingProgress) Step(ctx context.Context, id uuid.UUID, step int, name string) {
	p.steps = append(p.steps, name)
}

func (p *recordingProgress) Completed(ctx context.Context, id uuid.UUID, analysisType string, ms int64) {
	p.done++
}

func (p *recordingProgress) Failed(ctx context.Context, id uuid.UUID, code, message string) {
	p.failed = append(p.failed, code)
}

func newTestHandler(llm analysis.Completer, fetcher ChannelFetcher, debug bool) (*AnalysisHandler, *recordingProgress) {
	keywords, _ := analysis.NewKeywordExtractor()
	orch := analysis.NewOrchestrator(llm, analysis.NewPromptBuilder(""), 0, zerolog.Nop())
	progress := &recordingProgress{}
	return NewAnalysisHandler(orch, fetcher, keywords, progress, models.VariantFreeText, debug, zerolog.Nop()), progress
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

func sampleFetch() *models.ChannelFetch {
	likes := int64(3)
	return &models.ChannelFetch{
		Channel: models.ChannelInfo{Name: "Fetched"},
		Videos: []models.VideoRecord{
			{ID: "a", Title: "Alpha", ViewCount: 2_000_000, LikeCount: &likes, PublishedAt: "2024-01-02", Transcript: strings.Repeat("golang rust ", 50)},
			{ID: "b", Title: "Beta", ViewCount: 500, PublishedAt: "2024-01-01"},
		},
	}
}

// ─── AI Analyze ───

func TestAIAnalyze_Success(t *testing.T) {
	llm := &stubCompleter{response: "## Report"}
	h, progress := newTestHandler(llm, nil, false)

	rr := postJSON(t, h.AIAnalyze, "/api/v1/ai-analyze", map[string]interface{}{
		"channel_info": map[string]interface{}{"subscriber_count": 1000},
		"videos": []map[string]interface{}{
			{"id": "1", "title": "One", "viewCount": 100, "date": "2024-03-01"},
			{"id": "2", "title": "Two", "view_count": 50, "published_at": "2024-01-01"},
		},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["success"] != true {
		t.Errorf("Expected success=true")
	}
	data := body["data"].(map[string]interface{})

	report := data["ai_analysis"].(map[string]interface{})
	if report["report_text"] != "## Report" {
		t.Errorf("Unexpected report %v", report)
	}
	meta := data["analysis_metadata"].(map[string]interface{})
	if meta["analyzed_videos_count"] != float64(2) || meta["ai_model_used"] != "stub-model" {
		t.Errorf("Unexpected metadata %v", meta)
	}
	summary := data["channel_summary"].(map[string]interface{})
	if summary["name"] != models.UnknownChannelName {
		t.Errorf("Expected sentinel channel name, got %v", summary["name"])
	}
	period := summary["analyzed_period"].(map[string]interface{})
	if period["oldest_video"] != "2024-01-01" || period["newest_video"] != "2024-03-01" {
		t.Errorf("Unexpected period %v", period)
	}
	if data["meta"].(map[string]interface{})["api_version"] != "2.0" {
		t.Errorf("Expected api_version 2.0")
	}
	if len(progress.steps) != 1 || progress.done != 1 {
		t.Errorf("Expected one step and a completion, got %v / %d", progress.steps, progress.done)
	}
}

func TestAIAnalyze_Structured(t *testing.T) {
	llm := &stubCompleter{response: `{"channel_overview":{"summary":"x"}}`}
	h, _ := newTestHandler(llm, nil, false)

	rr := postJSON(t, h.AIAnalyze, "/api/v1/ai-analyze", map[string]interface{}{
		"channel_info": map[string]interface{}{"name": "C"},
		"videos":       []map[string]interface{}{{"title": "One"}},
		"variant":      "structured",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	report := decodeBody(t, rr)["data"].(map[string]interface{})["ai_analysis"].(map[string]interface{})
	overview := report["channel_overview"].(map[string]interface{})
	if len(overview) != 1 || overview["summary"] != "x" {
		t.Errorf("Expected section passed through as given, got %v", overview)
	}
	for _, name := range analysis.SectionNames() {
		if _, ok := report[name]; !ok {
			t.Errorf("Missing section %s", name)
		}
	}
}

func TestAIAnalyze_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name     string
		llm      analysis.Completer
		body     interface{}
		expected int
		code     string
	}{
		{"invalid json", &stubCompleter{}, "{not json", http.StatusBadRequest, "INSUFFICIENT_DATA"},
		{"missing channel info", &stubCompleter{}, map[string]interface{}{"videos": []interface{}{}}, http.StatusBadRequest, "INSUFFICIENT_DATA"},
		{"missing videos", &stubCompleter{}, map[string]interface{}{"channel_info": map[string]string{}}, http.StatusBadRequest, "INSUFFICIENT_DATA"},
		{"zero videos", &stubCompleter{}, map[string]interface{}{"channel_info": map[string]string{}, "videos": []interface{}{}}, http.StatusBadRequest, "INSUFFICIENT_DATA"},
		{"untitled video", &stubCompleter{}, map[string]interface{}{"channel_info": map[string]string{}, "videos": []map[string]string{{"id": "x"}}}, http.StatusBadRequest, "INSUFFICIENT_DATA"},
		{"bad variant", &stubCompleter{}, map[string]interface{}{"channel_info": map[string]string{}, "videos": []map[string]string{{"title": "x"}}, "variant": "poem"}, http.StatusBadRequest, "INSUFFICIENT_DATA"},
		{"no credential", nil, map[string]interface{}{"channel_info": map[string]string{}, "videos": []map[string]string{{"title": "x"}}}, http.StatusInternalServerError, "BACKEND_UNAVAILABLE"},
		{"quota", &stubCompleter{err: errors.New("quota exceeded")}, map[string]interface{}{"channel_info": map[string]string{}, "videos": []map[string]string{{"title": "x"}}}, http.StatusTooManyRequests, "QUOTA_EXCEEDED"},
		{"empty report", &stubCompleter{response: ""}, map[string]interface{}{"channel_info": map[string]string{}, "videos": []map[string]string{{"title": "x"}}}, http.StatusServiceUnavailable, "EMPTY_REPORT"},
		{"unexpected", &stubCompleter{err: errors.New("socket closed")}, map[string]interface{}{"channel_info": map[string]string{}, "videos": []map[string]string{{"title": "x"}}}, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestHandler(tc.llm, nil, false)

			rr := postJSON(t, h.AIAnalyze, "/api/v1/ai-analyze", tc.body)

			if rr.Code != tc.expected {
				t.Fatalf("Expected %d, got %d: %s", tc.expected, rr.Code, rr.Body.String())
			}
			var body models.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tc.code || body.Error == "" || body.Timestamp == "" {
				t.Errorf("Unexpected error body %+v", body)
			}
			if body.Debug != "" {
				t.Errorf("Expected no debug detail outside development")
			}
		})
	}
}

func TestAIAnalyze_DebugDetailInDevelopment(t *testing.T) {
	h, _ := newTestHandler(&stubCompleter{err: errors.New("socket closed")}, nil, true)

	rr := postJSON(t, h.AIAnalyze, "/api/v1/ai-analyze", map[string]interface{}{
		"channel_info": map[string]string{},
		"videos":       []map[string]string{{"title": "x"}},
	})

	var body models.ErrorResponse
	json.Unmarshal(rr.Body.Bytes(), &body)
	if !strings.Contains(body.Debug, "socket closed") {
		t.Errorf("Expected debug detail, got %q", body.Debug)
	}
	if body.Error != "An unexpected error occurred" {
		t.Errorf("Expected generic message, got %q", body.Error)
	}
}

// ─── Combined Analyze ───

func TestAnalyze_BaseOnly(t *testing.T) {
	fetcher := &stubFetcher{fetch: sampleFetch()}
	llm := &stubCompleter{response: "unused"}
	h, progress := newTestHandler(llm, fetcher, false)

	rr := postJSON(t, h.Analyze, "/api/v1/analyze", map[string]interface{}{"url": "https://www.youtube.com/@x"})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if fetcher.gotN != 5 {
		t.Errorf("Expected default of 5 videos, got %d", fetcher.gotN)
	}
	if llm.calls != 0 {
		t.Errorf("Expected no AI call")
	}
	data := decodeBody(t, rr)["data"].(map[string]interface{})
	if _, ok := data["ai_analysis"]; ok {
		t.Errorf("Expected no ai_analysis section")
	}
	summary := data["analysis_summary"].(map[string]interface{})
	if summary["total_views"] != float64(2_000_500) || summary["subtitle_coverage_rate"] != float64(50) {
		t.Errorf("Unexpected summary %v", summary)
	}
	engagement := data["engagement_analysis"].(map[string]interface{})
	if engagement["most_viewed"].(map[string]interface{})["title"] != "Alpha" {
		t.Errorf("Unexpected engagement %v", engagement)
	}
	keywords := data["keyword_analysis"].([]interface{})
	if len(keywords) != 2 {
		t.Errorf("Expected two keywords, got %v", keywords)
	}
	videos := data["videos"].([]interface{})
	if len(videos) != 2 {
		t.Fatalf("Expected the fetched videos in the response, got %v", videos)
	}
	first := videos[0].(map[string]interface{})
	if first["id"] != "a" || first["title"] != "Alpha" || first["transcript"] == "" {
		t.Errorf("Unexpected first video %v", first)
	}
	meta := data["meta"].(map[string]interface{})
	if meta["analysis_type"] != "basic_analysis" || meta["data_source"] != "stub" || meta["ai_analysis_available"] != true {
		t.Errorf("Unexpected meta %v", meta)
	}
	if len(progress.steps) != 2 || progress.done != 1 {
		t.Errorf("Unexpected progress %v / %d", progress.steps, progress.done)
	}
}

func TestAnalyze_ShortTranscriptsGiveNullKeywords(t *testing.T) {
	fetch := sampleFetch()
	fetch.Videos[0].Transcript = ""
	h, _ := newTestHandler(&stubCompleter{}, &stubFetcher{fetch: fetch}, false)

	rr := postJSON(t, h.Analyze, "/api/v1/analyze", map[string]interface{}{"url": "https://www.youtube.com/@x"})

	data := decodeBody(t, rr)["data"].(map[string]interface{})
	keywords, ok := data["keyword_analysis"]
	if !ok {
		t.Fatalf("Expected keyword_analysis key to be present")
	}
	if keywords != nil {
		t.Errorf("Expected null keyword_analysis, got %v", keywords)
	}
}

func TestAnalyze_WithAI(t *testing.T) {
	h, _ := newTestHandler(&stubCompleter{response: "report body"}, &stubFetcher{fetch: sampleFetch()}, false)

	rr := postJSON(t, h.Analyze, "/api/v1/analyze", map[string]interface{}{
		"url": "https://youtu.be/dQw4w9WgXcQ", "maxVideos": 10, "includeAIAnalysis": true,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	data := decodeBody(t, rr)["data"].(map[string]interface{})
	if data["ai_analysis"].(map[string]interface{})["report_text"] != "report body" {
		t.Errorf("Unexpected ai_analysis %v", data["ai_analysis"])
	}
	if data["ai_analysis_metadata"].(map[string]interface{})["analyzed_videos_count"] != float64(2) {
		t.Errorf("Expected AI metadata")
	}
	if data["meta"].(map[string]interface{})["analysis_type"] != "full_analysis_with_ai" {
		t.Errorf("Expected full analysis type")
	}
}

func TestAnalyze_AIFailureKeepsBaseAnalysis(t *testing.T) {
	tests := []struct {
		name   string
		llm    analysis.Completer
		code   string
		status float64
	}{
		{"quota", &stubCompleter{err: errors.New("RESOURCE_EXHAUSTED: quota")}, "QUOTA_EXCEEDED", 429},
		{"malformed", &stubCompleter{response: "not json"}, "MALFORMED_REPORT", 500},
		{"not configured", nil, "BACKEND_UNAVAILABLE", 500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestHandler(tc.llm, &stubFetcher{fetch: sampleFetch()}, false)

			rr := postJSON(t, h.Analyze, "/api/v1/analyze", map[string]interface{}{
				"url": "https://www.youtube.com/@x", "includeAIAnalysis": true, "variant": "structured",
			})

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rr.Code)
			}
			data := decodeBody(t, rr)["data"].(map[string]interface{})
			inline := data["ai_analysis"].(map[string]interface{})
			if inline["code"] != tc.code || inline["status"] != tc.status || inline["error"] == "" {
				t.Errorf("Unexpected inline error %v", inline)
			}
			if _, ok := data["analysis_summary"]; !ok {
				t.Errorf("Expected base analysis to be present")
			}
		})
	}
}

func TestAnalyze_ValidationAndUpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		fetcher  ChannelFetcher
		body     map[string]interface{}
		expected int
	}{
		{"non youtube url", &stubFetcher{fetch: sampleFetch()}, map[string]interface{}{"url": "https://vimeo.com/x"}, http.StatusBadRequest},
		{"missing url", &stubFetcher{fetch: sampleFetch()}, map[string]interface{}{}, http.StatusBadRequest},
		{"max videos zero", &stubFetcher{fetch: sampleFetch()}, map[string]interface{}{"url": "https://youtube.com/@x", "maxVideos": 0}, http.StatusBadRequest},
		{"max videos too large", &stubFetcher{fetch: sampleFetch()}, map[string]interface{}{"url": "https://youtube.com/@x", "maxVideos": 51}, http.StatusBadRequest},
		{"fetch not configured", nil, map[string]interface{}{"url": "https://youtube.com/@x"}, http.StatusInternalServerError},
		{"not found", &stubFetcher{err: &analysis.UpstreamNotFoundError{Message: "No videos found for this channel"}}, map[string]interface{}{"url": "https://youtube.com/@x"}, http.StatusNotFound},
		{"fetch failed", &stubFetcher{err: &analysis.UpstreamFetchError{Message: "Failed"}}, map[string]interface{}{"url": "https://youtube.com/@x"}, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestHandler(&stubCompleter{}, tc.fetcher, false)

			rr := postJSON(t, h.Analyze, "/api/v1/analyze", tc.body)

			if rr.Code != tc.expected {
				t.Errorf("Expected %d, got %d: %s", tc.expected, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAnalyze_FailurePublishesErrorEvent(t *testing.T) {
	h, progress := newTestHandler(&stubCompleter{}, &stubFetcher{err: &analysis.UpstreamFetchError{Message: "Failed"}}, false)

	postJSON(t, h.Analyze, "/api/v1/analyze", map[string]interface{}{"url": "https://youtube.com/@x"})

	if len(progress.failed) != 1 || progress.failed[0] != "UPSTREAM_FETCH_FAILED" {
		t.Errorf("Expected one failure event, got %v", progress.failed)
	}
}

// ─── Info ───

func TestInfoEndpoints(t *testing.T) {
	h, _ := newTestHandler(nil, &stubFetcher{}, false)

	for _, handler := range []http.HandlerFunc{h.AIAnalyzeInfo, h.AnalyzeInfo} {
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rr.Code)
		}
		body := decodeBody(t, rr)
		if body["method"] != "POST" || body["api_version"] != "2.0" {
			t.Errorf("Unexpected info body %v", body)
		}
	}
}

func TestAnalyze_DebugDetailRedactsCredentials(t *testing.T) {
	cause := errors.New(`Get "https://youtube.googleapis.com/youtube/v3/channels?alt=json&key=AIza-SECRET&part=snippet": dial tcp: timeout`)
	fetcher := &stubFetcher{err: &analysis.UpstreamFetchError{Message: "Failed to fetch channel videos", Cause: cause}}
	h, _ := newTestHandler(&stubCompleter{}, fetcher, true)

	rr := postJSON(t, h.Analyze, "/api/v1/analyze", map[string]interface{}{"url": "https://youtube.com/@x"})

	var body models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body.Debug, "AIza-SECRET") {
		t.Errorf("Expected credential to be redacted, got %q", body.Debug)
	}
	if !strings.Contains(body.Debug, "key=REDACTED&part=snippet") {
		t.Errorf("Expected redaction marker, got %q", body.Debug)
	}
}

func TestRedactCredentials(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{`Post "http://h/acts/a/run?token=abc": refused`, `Post "http://h/acts/a/run?token=REDACTED": refused`},
		{`Get "http://h/x?alt=json&key=k1&part=id": timeout`, `Get "http://h/x?alt=json&key=REDACTED&part=id": timeout`},
		{"no url here", "no url here"},
	}

	for _, tc := range tests {
		if got := redactCredentials(tc.in); got != tc.expected {
			t.Errorf("redactCredentials(%q) = %q, want %q", tc.in, got, tc.expected)
		}
	}
}
