package analysis

import (
	"bytes"
	"encoding/json"
	"strings"

	"tubelens-backend/internal/models"
)

// Placeholder fills every field the model did not provide.
const Placeholder = "Insufficient data"

type sectionDefault struct {
	name  string
	value json.RawMessage
}

var placeholderList = []string{Placeholder}

// Section order of the structured report.
var reportSections = []sectionDefault{
	{"channel_overview", mustJSON(models.ChannelOverview{
		Summary: Placeholder,
		KeyMetrics: models.KeyMetrics{
			TopPerformingVideo: Placeholder,
			ContentConsistency: Placeholder,
		},
	})},
	{"title_analysis", mustJSON(models.TitleAnalysis{
		CommonPatterns:         placeholderList,
		SuccessfulTitleFormats: placeholderList,
		KeywordUsage:           placeholderList,
		TitleLengthAnalysis:    Placeholder,
		EmotionalTriggers:      placeholderList,
	})},
	{"performance_analysis", mustJSON(models.PerformanceAnalysis{
		HighPerformers:      []models.HighPerformer{{Title: Placeholder, SuccessFactors: placeholderList}},
		LowPerformers:       []models.LowPerformer{{Title: Placeholder, ImprovementSuggestions: placeholderList}},
		PerformanceInsights: Placeholder,
	})},
	{"content_strategy_report", mustJSON(models.ContentStrategyReport{
		TrendingTopics:              placeholderList,
		ContentGaps:                 placeholderList,
		OptimizationRecommendations: placeholderList,
		FutureContentIdeas:          placeholderList,
	})},
	{"executive_summary", mustJSON(models.ExecutiveSummary{
		KeyFindings:        placeholderList,
		ImmediateActions:   placeholderList,
		LongTermStrategies: placeholderList,
		ExpectedOutcomes:   placeholderList,
	})},
}

// SectionNames lists the structured report sections in order.
func SectionNames() []string {
	names := make([]string, len(reportSections))
	for i, s := range reportSections {
		names[i] = s.name
	}
	return names
}

// DefaultSection returns the placeholder value of a section.
func DefaultSection(name string) json.RawMessage {
	for _, s := range reportSections {
		if s.name == name {
			return s.value
		}
	}
	return nil
}

// NormalizeReport turns raw model output into a report of the requested variant.
func NormalizeReport(raw string, variant models.ReportVariant) (models.AnalysisReport, error) {
	if variant == models.VariantStructured {
		return normalizeStructured(raw)
	}
	if strings.TrimSpace(raw) == "" {
		return models.AnalysisReport{}, &EmptyReportError{Message: "AI returned an empty report"}
	}
	return models.AnalysisReport{Variant: models.VariantFreeText, ReportText: raw}, nil
}

// normalizeStructured overrides defaults per top-level section. A section present in the
// response replaces its default whole; its fields are not backfilled.
func normalizeStructured(raw string) (models.AnalysisReport, error) {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return models.AnalysisReport{}, &MalformedReportError{Message: "AI response was not valid JSON", Cause: err}
	}
	if parsed == nil {
		return models.AnalysisReport{}, &MalformedReportError{Message: "AI response was not a JSON object"}
	}

	report := models.AnalysisReport{
		Variant:  models.VariantStructured,
		Sections: make([]models.ReportSection, 0, len(reportSections)),
	}
	for _, def := range reportSections {
		value := def.value
		if v, ok := parsed[def.name]; ok && isObject(v) {
			value = v
		}
		report.Sections = append(report.Sections, models.ReportSection{Name: def.name, Value: value})
	}
	return report, nil
}

// stripFences removes a surrounding ```json fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isObject(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '{'
}

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
