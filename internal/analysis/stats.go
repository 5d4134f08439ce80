package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"tubelens-backend/internal/models"
)

const (
	keywordMinTranscriptChars = 500
	titlePreviewChars         = 50
	transcriptPreviewChars    = 200
	wordsPerMinute            = 200
)

// Summarize totals counters across videos.
func Summarize(videos []models.VideoRecord) models.AnalysisSummary {
	s := models.AnalysisSummary{TotalVideos: len(videos)}
	for _, v := range videos {
		s.TotalViews += v.ViewCount
		if v.LikeCount != nil {
			s.TotalLikes += *v.LikeCount
		}
		if v.CommentCount != nil {
			s.TotalComments += *v.CommentCount
		}
	}
	if len(videos) > 0 {
		s.AverageViews = roundDiv(s.TotalViews, int64(len(videos)))
	}
	s.VideosWithTranscripts = CountTranscripts(videos)
	s.SubtitleCoverageRate = CoverageRate(s.VideosWithTranscripts, len(videos))
	return s
}

// Engagement finds view extremes and view thresholds. The over_* counts are cumulative
// (a 2M video counts toward all three). On ties the earlier video wins.
func Engagement(videos []models.VideoRecord) models.EngagementAnalysis {
	var e models.EngagementAnalysis
	if len(videos) == 0 {
		return e
	}

	most, least := videos[0], videos[0]
	var total int64
	for _, v := range videos {
		total += v.ViewCount
		if v.ViewCount > most.ViewCount {
			most = v
		}
		if v.ViewCount < least.ViewCount {
			least = v
		}

		if v.ViewCount >= 1_000_000 {
			e.ViewDistribution.Over1M++
		}
		if v.ViewCount >= 100_000 {
			e.ViewDistribution.Over100K++
		}
		if v.ViewCount >= 10_000 {
			e.ViewDistribution.Over10K++
		} else {
			e.ViewDistribution.Under10K++
		}
	}

	e.AvgViews = roundDiv(total, int64(len(videos)))
	e.MostViewed = models.VideoViews{Title: most.Title, Views: most.ViewCount}
	e.LeastViewed = models.VideoViews{Title: least.Title, Views: least.ViewCount}
	return e
}

// TranscriptKeywords counts terms across usable transcripts. It returns nil when the
// joined transcripts are too short to say anything.
func (k *KeywordExtractor) TranscriptKeywords(videos []models.VideoRecord) []models.KeywordCount {
	var parts []string
	for _, v := range videos {
		if v.HasTranscript() {
			parts = append(parts, v.Transcript)
		}
	}
	blob := strings.Join(parts, " ")
	if models.TextLength(blob) <= keywordMinTranscriptChars {
		return nil
	}

	counts := k.Count(blob)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if len(counts) > maxKeywords {
		counts = counts[:maxKeywords]
	}

	out := make([]models.KeywordCount, len(counts))
	for i, c := range counts {
		out[i] = models.KeywordCount{
			Word:       c.Word,
			Count:      c.Count,
			Percentage: fmt.Sprintf("%.2f", float64(c.Count)/float64(total)*100),
		}
	}
	return out
}

// SubtitleDetails describes each usable transcript.
func SubtitleDetails(videos []models.VideoRecord) []models.SubtitleDetail {
	details := make([]models.SubtitleDetail, 0, len(videos))
	for _, v := range videos {
		if !v.HasTranscript() {
			continue
		}
		words := len(strings.Fields(v.Transcript))
		details = append(details, models.SubtitleDetail{
			VideoID:              v.ID,
			Title:                truncate(v.Title, titlePreviewChars) + "...",
			TranscriptLength:     models.TextLength(v.Transcript),
			WordCount:            words,
			EstimatedReadingTime: int(math.Ceil(float64(words) / wordsPerMinute)),
			Preview:              truncate(v.Transcript, transcriptPreviewChars) + "...",
		})
	}
	return details
}

// AnalyzedPeriod returns the oldest and newest publish dates as given. Dates that do not
// parse never replace a parsed one.
func AnalyzedPeriod(videos []models.VideoRecord) models.AnalyzedPeriod {
	var (
		period         models.AnalyzedPeriod
		oldest, newest time.Time
	)
	for _, v := range videos {
		t, ok := parseDate(v.PublishedAt)
		if !ok {
			if period.OldestVideo == "" && oldest.IsZero() {
				period.OldestVideo = v.PublishedAt
				period.NewestVideo = v.PublishedAt
			}
			continue
		}
		if oldest.IsZero() || t.Before(oldest) {
			oldest = t
			period.OldestVideo = v.PublishedAt
		}
		if newest.IsZero() || t.After(newest) {
			newest = t
			period.NewestVideo = v.PublishedAt
		}
	}
	return period
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
