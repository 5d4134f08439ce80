package analysis

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tubelens-backend/internal/models"
)

// SystemPrompt sets the model's role for every report request.
const SystemPrompt = "You are a YouTube trend analysis expert. You read channel and video statistics and produce practical, data-driven insights for creators."

const DefaultReportLanguage = "Korean"

// PromptBuilder renders report prompts. Output depends only on its inputs.
type PromptBuilder struct {
	language string
	printer  *message.Printer
}

func NewPromptBuilder(reportLanguage string) *PromptBuilder {
	if reportLanguage == "" {
		reportLanguage = DefaultReportLanguage
	}
	return &PromptBuilder{
		language: reportLanguage,
		printer:  message.NewPrinter(language.English),
	}
}

// Build renders the prompt for the given variant. An empty video list yields a prompt
// with no video lines; callers guard against that.
func (p *PromptBuilder) Build(channel models.ChannelInfo, videos []models.VideoRecord, variant models.ReportVariant) string {
	var b strings.Builder

	var totalViews int64
	for _, v := range videos {
		totalViews += v.ViewCount
	}
	var avgViews int64
	if len(videos) > 0 {
		avgViews = roundDiv(totalViews, int64(len(videos)))
	}

	b.WriteString("Analyze the following YouTube channel data.\n\n")

	// Header
	b.WriteString("## Channel\n")
	fmt.Fprintf(&b, "- Channel name: %s\n", channel.Name)
	fmt.Fprintf(&b, "- Subscribers: %s\n", p.optionalCount(channel.SubscriberCount))
	fmt.Fprintf(&b, "- Channel video count: %s\n", p.optionalCount(channel.VideoCount))
	fmt.Fprintf(&b, "- Videos analyzed: %d\n", len(videos))
	fmt.Fprintf(&b, "- Total views: %s\n", p.count(totalViews))
	fmt.Fprintf(&b, "- Average views: %s\n\n", p.count(avgViews))

	// Videos
	b.WriteString("## Videos\n")
	for i, v := range videos {
		p.writeVideoLine(&b, i+1, v)
	}
	b.WriteString("\n")

	if variant == models.VariantStructured {
		p.writeStructuredTail(&b, videos)
	} else {
		p.writeFreeTextTail(&b)
	}

	return b.String()
}

func (p *PromptBuilder) writeVideoLine(b *strings.Builder, index int, v models.VideoRecord) {
	published := v.PublishedAt
	if published == "" {
		published = "unknown"
	}
	fmt.Fprintf(b, "%d. %q\n", index, v.Title)
	fmt.Fprintf(b, "   Views: %s\n", p.count(v.ViewCount))
	fmt.Fprintf(b, "   Published: %s\n", published)
}

func (p *PromptBuilder) writeFreeTextTail(b *strings.Builder) {
	b.WriteString("## Report outline\n")
	b.WriteString("Write a report with exactly these seven sections, in this order:\n")
	b.WriteString("1. Channel overview: the channel's identity and main content themes.\n")
	b.WriteString("2. Key statistics: what the view counts and upload pattern show.\n")
	b.WriteString("3. Title pattern analysis: recurring title structures, lengths and hooks.\n")
	b.WriteString("4. Performance analysis: why the strongest videos outperform the weakest.\n")
	b.WriteString("5. Trending keywords: topics and terms that recur across successful videos.\n")
	b.WriteString("6. Content strategy suggestions: concrete ideas for upcoming videos.\n")
	b.WriteString("7. Conclusion and recommendations: the most important next steps.\n\n")
	b.WriteString("Use markdown headings for each section. Base every claim on the data above.\n")
	fmt.Fprintf(b, "Language: Respond entirely in %s.\n", p.language)
}

func (p *PromptBuilder) writeStructuredTail(b *strings.Builder, videos []models.VideoRecord) {
	high, low := splitThirds(videos)

	b.WriteString("## High performers (top third by views)\n")
	for i, v := range high {
		fmt.Fprintf(b, "%d. %q (%s views)\n", i+1, v.Title, p.count(v.ViewCount))
	}
	b.WriteString("\n## Low performers (bottom third by views)\n")
	for i, v := range low {
		fmt.Fprintf(b, "%d. %q (%s views)\n", i+1, v.Title, p.count(v.ViewCount))
	}
	b.WriteString("\n")

	b.WriteString("## Output format\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.\n")
	b.WriteString("The object must have exactly these five sections and fields:\n")
	b.WriteString(structuredExample)
	b.WriteString("\n")
	fmt.Fprintf(b, "Language: Write every string value in %s. Keep the JSON keys in English.\n", p.language)
}

// splitThirds orders videos by descending views (stable) and returns the top and bottom third.
func splitThirds(videos []models.VideoRecord) (high, low []models.VideoRecord) {
	sorted := make([]models.VideoRecord, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ViewCount > sorted[j].ViewCount
	})

	third := len(sorted) / 3
	if third == 0 && len(sorted) > 0 {
		third = 1
	}
	return sorted[:third], sorted[len(sorted)-third:]
}

func (p *PromptBuilder) count(n int64) string {
	return p.printer.Sprintf("%d", n)
}

func (p *PromptBuilder) optionalCount(n *int64) string {
	if n == nil {
		return "N/A"
	}
	return p.count(*n)
}

// roundDiv divides and rounds half up.
func roundDiv(a, b int64) int64 {
	return (2*a + b) / (2 * b)
}

const structuredExample = `{
  "channel_overview": {
    "summary": "One paragraph describing the channel",
    "key_metrics": {
      "avg_views": 0,
      "total_views": 0,
      "top_performing_video": "Title of the most viewed video",
      "content_consistency": "How consistent the uploads and topics are"
    }
  },
  "title_analysis": {
    "common_patterns": ["pattern"],
    "successful_title_formats": ["format"],
    "keyword_usage": ["keyword"],
    "title_length_analysis": "What title length works",
    "emotional_triggers": ["trigger"]
  },
  "performance_analysis": {
    "high_performers": [{"title": "video title", "views": 0, "success_factors": ["factor"]}],
    "low_performers": [{"title": "video title", "views": 0, "improvement_suggestions": ["suggestion"]}],
    "performance_insights": "What separates strong and weak videos"
  },
  "content_strategy_report": {
    "trending_topics": ["topic"],
    "content_gaps": ["gap"],
    "optimization_recommendations": ["recommendation"],
    "future_content_ideas": ["idea"]
  },
  "executive_summary": {
    "key_findings": ["finding"],
    "immediate_actions": ["action"],
    "long_term_strategies": ["strategy"],
    "expected_outcomes": ["outcome"]
  }
}
`
