package analysis

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tubelens-backend/internal/models"
)

const (
	DefaultMaxOutputTokens = 4000
	DefaultTemperature     = 0.7
)

// CompletionRequest is one text-completion call.
type CompletionRequest struct {
	System          string
	Prompt          string
	MaxOutputTokens int32
	Temperature     float32
	// JSON asks the provider for a JSON response body.
	JSON bool
}

// Completer is the LLM collaborator.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Model() string
}

// Result is a normalized report plus run metadata.
type Result struct {
	Report   models.AnalysisReport
	Metadata models.AnalysisMetadata
}

type Orchestrator struct {
	llm             Completer
	prompts         *PromptBuilder
	maxOutputTokens int32
	logger          zerolog.Logger
	now             func() time.Time
}

// NewOrchestrator wires the pipeline. A nil Completer leaves the orchestrator unavailable.
func NewOrchestrator(llm Completer, prompts *PromptBuilder, maxOutputTokens int, logger zerolog.Logger) *Orchestrator {
	if maxOutputTokens <= 0 {
		maxOutputTokens = DefaultMaxOutputTokens
	}
	if prompts == nil {
		prompts = NewPromptBuilder(DefaultReportLanguage)
	}
	return &Orchestrator{
		llm:             llm,
		prompts:         prompts,
		maxOutputTokens: int32(maxOutputTokens),
		logger:          logger.With().Str("component", "orchestrator").Logger(),
		now:             time.Now,
	}
}

func (o *Orchestrator) Available() bool {
	return o.llm != nil
}

// Model names the model reports are generated with, or "" when unavailable.
func (o *Orchestrator) Model() string {
	if o.llm == nil {
		return ""
	}
	return o.llm.Model()
}

// Run produces one report. The LLM is called exactly once, without retries.
func (o *Orchestrator) Run(ctx context.Context, channel models.ChannelInfo, videos []models.VideoRecord, variant models.ReportVariant) (*Result, error) {
	if o.llm == nil {
		return nil, &BackendUnavailableError{Message: "AI analysis is not configured"}
	}
	if len(videos) == 0 {
		return nil, &InsufficientDataError{Message: "No videos to analyze"}
	}
	if !variant.Valid() {
		variant = models.VariantFreeText
	}

	start := o.now()
	channel = channel.WithDefaults()
	cost := EstimateCost(videos)
	withTranscripts := CountTranscripts(videos)

	o.logger.Info().
		Str("channel", channel.Name).
		Int("videos", len(videos)).
		Int("videos_with_transcripts", withTranscripts).
		Int("estimated_tokens", cost.EstimatedTokens).
		Float64("estimated_cost_usd", cost.EstimatedCostUSD).
		Str("variant", string(variant)).
		Msg("starting report generation")

	prompt := o.prompts.Build(channel, videos, variant)
	raw, err := o.llm.Complete(ctx, CompletionRequest{
		System:          SystemPrompt,
		Prompt:          prompt,
		MaxOutputTokens: o.maxOutputTokens,
		Temperature:     DefaultTemperature,
		JSON:            variant == models.VariantStructured,
	})
	if err != nil {
		classified := ClassifyLLMError(err)
		o.logger.Error().Err(err).Str("channel", channel.Name).Msg("report generation failed")
		return nil, classified
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &EmptyReportError{Message: "AI returned an empty report"}
	}

	report, err := NormalizeReport(raw, variant)
	if err != nil {
		o.logger.Warn().Err(err).Int("response_length", len(raw)).Msg("report normalization failed")
		return nil, err
	}

	duration := o.now().Sub(start).Milliseconds()
	o.logger.Info().Str("channel", channel.Name).Int64("duration_ms", duration).Msg("report generated")

	return &Result{
		Report: report,
		Metadata: models.AnalysisMetadata{
			AnalyzedVideosCount:    len(videos),
			VideosWithTranscripts:  withTranscripts,
			TranscriptCoverageRate: CoverageRate(withTranscripts, len(videos)),
			AnalysisDurationMS:     duration,
			CostEstimate:           cost,
			AIModelUsed:            o.llm.Model(),
		},
	}, nil
}

// CountTranscripts counts videos with usable captions.
func CountTranscripts(videos []models.VideoRecord) int {
	n := 0
	for _, v := range videos {
		if v.HasTranscript() {
			n++
		}
	}
	return n
}

// CoverageRate is part/total as a rounded percentage; 0 for an empty total.
func CoverageRate(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
