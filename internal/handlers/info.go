package handlers

import "net/http"

// AIAnalyzeInfo documents the direct report endpoint.
func (h *AnalysisHandler) AIAnalyzeInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "AI channel analysis API",
		"endpoint": "/api/v1/ai-analyze",
		"method":   "POST",
		"body": map[string]string{
			"channel_info": "{ name, subscriber_count?, video_count?, description? }",
			"videos":       "[{ id, title, description?, view_count, like_count?, comment_count?, published_at, transcript? }]",
			"variant":      "free-text | structured (optional)",
			"analysis_id":  "uuid for live progress over /api/v1/ws (optional)",
		},
		"features": []string{
			"Channel overview and key statistics",
			"Title pattern analysis",
			"High and low performer analysis",
			"Trending keywords",
			"Content strategy recommendations",
		},
		"requirements": map[string]interface{}{
			"ai_available": h.runner.Available(),
			"ai_model":     h.runner.Model(),
		},
		"api_version": apiVersion,
	})
}

// AnalyzeInfo documents the combined fetch and analysis endpoint.
func (h *AnalysisHandler) AnalyzeInfo(w http.ResponseWriter, r *http.Request) {
	source := ""
	if h.fetcher != nil {
		source = h.fetcher.Source()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "YouTube channel analysis API",
		"endpoint": "/api/v1/analyze",
		"method":   "POST",
		"body": map[string]string{
			"url":               "YouTube channel or video URL",
			"maxVideos":         "1-50, default 5",
			"includeAIAnalysis": "boolean, default false",
			"variant":           "free-text | structured (optional)",
		},
		"features": []string{
			"Recent video collection with captions",
			"View distribution and extremes",
			"Transcript keyword frequency",
			"Optional AI report",
		},
		"requirements": map[string]interface{}{
			"fetch_available": h.fetcher != nil,
			"data_source":     source,
			"ai_available":    h.runner.Available(),
		},
		"api_version": apiVersion,
	})
}
