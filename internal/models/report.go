package models

import (
	"bytes"
	"encoding/json"
)

type ReportVariant string

const (
	VariantFreeText   ReportVariant = "free-text"
	VariantStructured ReportVariant = "structured"
)

func (v ReportVariant) Valid() bool {
	return v == VariantFreeText || v == VariantStructured
}

type CostEstimate struct {
	EstimatedTokens  int     `json:"estimated_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	EstimatedCostKRW int64   `json:"estimated_cost_krw"`
}

// ReportSection is one top-level section of a structured report, kept as raw JSON so a
// section returned by the model is passed through exactly as given.
type ReportSection struct {
	Name  string
	Value json.RawMessage
}

// AnalysisReport is either a free-text report or a five-section structured report.
type AnalysisReport struct {
	Variant    ReportVariant
	ReportText string
	Sections   []ReportSection
}

// Section returns the raw JSON of a structured section, or nil.
func (r AnalysisReport) Section(name string) json.RawMessage {
	for _, s := range r.Sections {
		if s.Name == name {
			return s.Value
		}
	}
	return nil
}

func (r AnalysisReport) MarshalJSON() ([]byte, error) {
	if r.Variant != VariantStructured {
		return json.Marshal(struct {
			ReportText string `json:"report_text"`
		}{r.ReportText})
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range r.Sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(s.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Structured report schema.

type ChannelOverview struct {
	Summary    string     `json:"summary"`
	KeyMetrics KeyMetrics `json:"key_metrics"`
}

type KeyMetrics struct {
	AvgViews           int64  `json:"avg_views"`
	TotalViews         int64  `json:"total_views"`
	TopPerformingVideo string `json:"top_performing_video"`
	ContentConsistency string `json:"content_consistency"`
}

type TitleAnalysis struct {
	CommonPatterns         []string `json:"common_patterns"`
	SuccessfulTitleFormats []string `json:"successful_title_formats"`
	KeywordUsage           []string `json:"keyword_usage"`
	TitleLengthAnalysis    string   `json:"title_length_analysis"`
	EmotionalTriggers      []string `json:"emotional_triggers"`
}

type HighPerformer struct {
	Title          string   `json:"title"`
	Views          int64    `json:"views"`
	SuccessFactors []string `json:"success_factors"`
}

type LowPerformer struct {
	Title                  string   `json:"title"`
	Views                  int64    `json:"views"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

type PerformanceAnalysis struct {
	HighPerformers      []HighPerformer `json:"high_performers"`
	LowPerformers       []LowPerformer  `json:"low_performers"`
	PerformanceInsights string          `json:"performance_insights"`
}

type ContentStrategyReport struct {
	TrendingTopics              []string `json:"trending_topics"`
	ContentGaps                 []string `json:"content_gaps"`
	OptimizationRecommendations []string `json:"optimization_recommendations"`
	FutureContentIdeas          []string `json:"future_content_ideas"`
}

type ExecutiveSummary struct {
	KeyFindings        []string `json:"key_findings"`
	ImmediateActions   []string `json:"immediate_actions"`
	LongTermStrategies []string `json:"long_term_strategies"`
	ExpectedOutcomes   []string `json:"expected_outcomes"`
}
