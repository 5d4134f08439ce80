package models

// ──── Requests ────

type AIAnalyzeRequest struct {
	ChannelInfo *ChannelInfo  `json:"channel_info"`
	Videos      []RawVideo    `json:"videos"`
	Variant     ReportVariant `json:"variant"`
	AnalysisID  string        `json:"analysis_id"`
}

type AnalyzeRequest struct {
	URL               string        `json:"url"`
	MaxVideos         *int          `json:"maxVideos"`
	IncludeAIAnalysis bool          `json:"includeAIAnalysis"`
	Variant           ReportVariant `json:"variant"`
	AnalysisID        string        `json:"analysis_id"`
}

// ──── Responses ────

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Debug     string `json:"debug,omitempty"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// InlineError replaces a failed AI section inside an otherwise successful response.
type InlineError struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Status int    `json:"status"`
}

type AnalysisMetadata struct {
	AnalyzedVideosCount    int          `json:"analyzed_videos_count"`
	VideosWithTranscripts  int          `json:"videos_with_transcripts"`
	TranscriptCoverageRate int          `json:"transcript_coverage_rate"`
	AnalysisDurationMS     int64        `json:"analysis_duration_ms"`
	CostEstimate           CostEstimate `json:"cost_estimate"`
	AIModelUsed            string       `json:"ai_model_used"`
}

type AnalyzedPeriod struct {
	OldestVideo string `json:"oldest_video"`
	NewestVideo string `json:"newest_video"`
}

type ChannelSummary struct {
	Name            string         `json:"name"`
	SubscriberCount *int64         `json:"subscriber_count"`
	AnalyzedPeriod  AnalyzedPeriod `json:"analyzed_period"`
}

type AIAnalysisMeta struct {
	AnalyzedAt   string `json:"analyzed_at"`
	APIVersion   string `json:"api_version"`
	AnalysisType string `json:"analysis_type"`
	AnalysisID   string `json:"analysis_id"`
}

type AIAnalysisData struct {
	AIAnalysis       AnalysisReport   `json:"ai_analysis"`
	AnalysisMetadata AnalysisMetadata `json:"analysis_metadata"`
	ChannelSummary   ChannelSummary   `json:"channel_summary"`
	Meta             AIAnalysisMeta   `json:"meta"`
}

// ──── Combined analysis ────

type AnalysisSummary struct {
	TotalVideos           int   `json:"total_videos"`
	TotalViews            int64 `json:"total_views"`
	TotalLikes            int64 `json:"total_likes"`
	TotalComments         int64 `json:"total_comments"`
	AverageViews          int64 `json:"average_views"`
	VideosWithTranscripts int   `json:"videos_with_transcripts"`
	SubtitleCoverageRate  int   `json:"subtitle_coverage_rate"`
}

type KeywordCount struct {
	Word       string `json:"word"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
}

type VideoViews struct {
	Title string `json:"title"`
	Views int64  `json:"views"`
}

type ViewDistribution struct {
	Over1M   int `json:"over_1m"`
	Over100K int `json:"over_100k"`
	Over10K  int `json:"over_10k"`
	Under10K int `json:"under_10k"`
}

type EngagementAnalysis struct {
	AvgViews         int64            `json:"avg_views"`
	MostViewed       VideoViews       `json:"most_viewed"`
	LeastViewed      VideoViews       `json:"least_viewed"`
	ViewDistribution ViewDistribution `json:"view_distribution"`
}

type SubtitleDetail struct {
	VideoID              string `json:"video_id"`
	Title                string `json:"title"`
	TranscriptLength     int    `json:"transcript_length"`
	WordCount            int    `json:"word_count"`
	EstimatedReadingTime int    `json:"estimated_reading_time"`
	Preview              string `json:"preview"`
}

type AnalyzeMeta struct {
	AnalyzedAt          string `json:"analyzed_at"`
	DataSource          string `json:"data_source"`
	APIVersion          string `json:"api_version"`
	AnalysisType        string `json:"analysis_type"`
	AIAnalysisEnabled   bool   `json:"ai_analysis_enabled"`
	AIAnalysisAvailable bool   `json:"ai_analysis_available"`
	AnalysisID          string `json:"analysis_id"`
}

type AnalyzeData struct {
	ChannelInfo        ChannelInfo        `json:"channel_info"`
	Videos             []VideoRecord      `json:"videos"`
	AnalysisSummary    AnalysisSummary    `json:"analysis_summary"`
	KeywordAnalysis    []KeywordCount     `json:"keyword_analysis"`
	EngagementAnalysis EngagementAnalysis `json:"engagement_analysis"`
	SubtitleDetails    []SubtitleDetail   `json:"subtitle_details"`
	AIAnalysis         interface{}        `json:"ai_analysis,omitempty"`
	AIAnalysisMetadata *AnalysisMetadata  `json:"ai_analysis_metadata,omitempty"`
	Meta               AnalyzeMeta        `json:"meta"`
}
