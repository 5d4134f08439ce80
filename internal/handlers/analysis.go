package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tubelens-backend/internal/analysis"
	"tubelens-backend/internal/models"
)

const (
	apiVersion       = "2.0"
	defaultMaxVideos = 5
	maxMaxVideos     = 50
)

// reportRunner is the analysis pipeline as seen by the HTTP layer.
type reportRunner interface {
	Available() bool
	Model() string
	Run(ctx context.Context, channel models.ChannelInfo, videos []models.VideoRecord, variant models.ReportVariant) (*analysis.Result, error)
}

// ChannelFetcher loads a bounded list of recent videos for a channel URL.
type ChannelFetcher interface {
	FetchChannel(ctx context.Context, channelURL string, maxVideos int) (*models.ChannelFetch, error)
	Source() string
}

type progressNotifier interface {
	Step(ctx context.Context, analysisID uuid.UUID, step int, name string)
	Completed(ctx context.Context, analysisID uuid.UUID, analysisType string, durationMS int64)
	Failed(ctx context.Context, analysisID uuid.UUID, code, message string)
}

type AnalysisHandler struct {
	runner         reportRunner
	fetcher        ChannelFetcher
	keywords       *analysis.KeywordExtractor
	progress       progressNotifier
	defaultVariant models.ReportVariant
	debug          bool
	logger         zerolog.Logger
	now            func() time.Time
}

// NewAnalysisHandler wires the HTTP entry points. A nil fetcher reports the combined flow
// as unavailable.
func NewAnalysisHandler(
	runner reportRunner,
	fetcher ChannelFetcher,
	keywords *analysis.KeywordExtractor,
	progress progressNotifier,
	defaultVariant models.ReportVariant,
	debug bool,
	logger zerolog.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		runner:         runner,
		fetcher:        fetcher,
		keywords:       keywords,
		progress:       progress,
		defaultVariant: defaultVariant,
		debug:          debug,
		logger:         logger.With().Str("component", "handlers").Logger(),
		now:            time.Now,
	}
}

// AIAnalyze generates a report from channel data supplied by the client.
func (h *AnalysisHandler) AIAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AIAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, uuid.Nil, &analysis.InsufficientDataError{Message: "Invalid request body"})
		return
	}
	analysisID := parseAnalysisID(req.AnalysisID)

	if req.ChannelInfo == nil || req.Videos == nil {
		h.fail(w, r, analysisID, &analysis.InsufficientDataError{Message: "channel_info and a videos array are required"})
		return
	}
	variant, err := h.variant(req.Variant)
	if err != nil {
		h.fail(w, r, analysisID, err)
		return
	}
	videos, err := toRecords(req.Videos)
	if err != nil {
		h.fail(w, r, analysisID, err)
		return
	}
	channel := req.ChannelInfo.WithDefaults()

	h.progress.Step(r.Context(), analysisID, 1, "Generating AI report")
	result, err := h.runner.Run(r.Context(), channel, videos, variant)
	if err != nil {
		h.fail(w, r, analysisID, err)
		return
	}
	h.progress.Completed(r.Context(), analysisID, "ai_comprehensive", result.Metadata.AnalysisDurationMS)

	writeSuccess(w, models.AIAnalysisData{
		AIAnalysis:       result.Report,
		AnalysisMetadata: result.Metadata,
		ChannelSummary: models.ChannelSummary{
			Name:            channel.Name,
			SubscriberCount: channel.SubscriberCount,
			AnalyzedPeriod:  analysis.AnalyzedPeriod(videos),
		},
		Meta: models.AIAnalysisMeta{
			AnalyzedAt:   h.timestamp(),
			APIVersion:   apiVersion,
			AnalysisType: "ai_comprehensive",
			AnalysisID:   analysisID.String(),
		},
	})
}

// Analyze fetches a channel, computes base statistics and optionally adds an AI report.
// An AI failure never discards the base statistics.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := h.now()

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, uuid.Nil, &analysis.InsufficientDataError{Message: "Invalid request body"})
		return
	}
	analysisID := parseAnalysisID(req.AnalysisID)

	if !isYouTubeURL(req.URL) {
		h.fail(w, r, analysisID, &analysis.InsufficientDataError{Message: "A valid YouTube channel URL is required"})
		return
	}
	maxVideos := defaultMaxVideos
	if req.MaxVideos != nil {
		maxVideos = *req.MaxVideos
	}
	if maxVideos < 1 || maxVideos > maxMaxVideos {
		h.fail(w, r, analysisID, &analysis.InsufficientDataError{Message: "maxVideos must be between 1 and 50"})
		return
	}
	variant, err := h.variant(req.Variant)
	if err != nil {
		h.fail(w, r, analysisID, err)
		return
	}
	if h.fetcher == nil {
		h.fail(w, r, analysisID, &analysis.BackendUnavailableError{Message: "Video fetch service is not configured"})
		return
	}

	h.progress.Step(r.Context(), analysisID, 1, "Fetching channel videos")
	fetch, err := h.fetcher.FetchChannel(r.Context(), req.URL, maxVideos)
	if err != nil {
		h.fail(w, r, analysisID, err)
		return
	}

	h.progress.Step(r.Context(), analysisID, 2, "Computing statistics")
	data := models.AnalyzeData{
		ChannelInfo:        fetch.Channel,
		Videos:             fetch.Videos,
		AnalysisSummary:    analysis.Summarize(fetch.Videos),
		KeywordAnalysis:    h.keywords.TranscriptKeywords(fetch.Videos),
		EngagementAnalysis: analysis.Engagement(fetch.Videos),
		SubtitleDetails:    analysis.SubtitleDetails(fetch.Videos),
	}

	analysisType := "basic_analysis"
	if req.IncludeAIAnalysis {
		analysisType = "full_analysis_with_ai"
		h.progress.Step(r.Context(), analysisID, 3, "Generating AI report")

		result, err := h.runner.Run(r.Context(), fetch.Channel, fetch.Videos, variant)
		if err != nil {
			h.logger.Warn().Err(err).Str("analysis_id", analysisID.String()).Msg("AI report failed, returning base analysis")
			data.AIAnalysis = inlineError(err)
		} else {
			data.AIAnalysis = result.Report
			data.AIAnalysisMetadata = &result.Metadata
		}
	}

	data.Meta = models.AnalyzeMeta{
		AnalyzedAt:          h.timestamp(),
		DataSource:          h.fetcher.Source(),
		APIVersion:          apiVersion,
		AnalysisType:        analysisType,
		AIAnalysisEnabled:   req.IncludeAIAnalysis,
		AIAnalysisAvailable: h.runner.Available(),
		AnalysisID:          analysisID.String(),
	}

	h.progress.Completed(r.Context(), analysisID, analysisType, h.now().Sub(start).Milliseconds())
	writeSuccess(w, data)
}

func (h *AnalysisHandler) fail(w http.ResponseWriter, r *http.Request, analysisID uuid.UUID, err error) {
	status, code, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("code", code).Msg("analysis request failed")
	}
	if analysisID != uuid.Nil {
		h.progress.Failed(r.Context(), analysisID, code, message)
	}
	handleServiceError(w, r, err, h.debug)
}

func (h *AnalysisHandler) variant(v models.ReportVariant) (models.ReportVariant, error) {
	if v == "" {
		return h.defaultVariant, nil
	}
	if !v.Valid() {
		return "", &analysis.InsufficientDataError{Message: "variant must be free-text or structured"}
	}
	return v, nil
}

func (h *AnalysisHandler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

func toRecords(raw []models.RawVideo) ([]models.VideoRecord, error) {
	videos := make([]models.VideoRecord, 0, len(raw))
	for _, v := range raw {
		if strings.TrimSpace(v.Title) == "" {
			return nil, &analysis.InsufficientDataError{Message: "Every video needs a title"}
		}
		videos = append(videos, v.ToRecord())
	}
	return videos, nil
}

func isYouTubeURL(u string) bool {
	return strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be")
}

func parseAnalysisID(s string) uuid.UUID {
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return uuid.New()
}
