package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubelens-backend/internal/models"
)

func int64p(v int64) *int64 { return &v }

func TestSummarize(t *testing.T) {
	videos := []models.VideoRecord{
		{ViewCount: 100, LikeCount: int64p(10), CommentCount: int64p(1), Transcript: strings.Repeat("a", 101)},
		{ViewCount: 201},
	}

	s := Summarize(videos)

	assert.Equal(t, 2, s.TotalVideos)
	assert.Equal(t, int64(301), s.TotalViews)
	assert.Equal(t, int64(10), s.TotalLikes)
	assert.Equal(t, int64(1), s.TotalComments)
	assert.Equal(t, int64(151), s.AverageViews)
	assert.Equal(t, 1, s.VideosWithTranscripts)
	assert.Equal(t, 50, s.SubtitleCoverageRate)
}

func TestEngagement(t *testing.T) {
	videos := []models.VideoRecord{
		{Title: "a", ViewCount: 5_000},
		{Title: "b", ViewCount: 2_000_000},
		{Title: "c", ViewCount: 2_000_000},
		{Title: "d", ViewCount: 50_000},
		{Title: "e", ViewCount: 500_000},
		{Title: "f", ViewCount: 5_000},
	}

	e := Engagement(videos)

	assert.Equal(t, models.VideoViews{Title: "b", Views: 2_000_000}, e.MostViewed)
	assert.Equal(t, models.VideoViews{Title: "a", Views: 5_000}, e.LeastViewed)
	assert.Equal(t, models.ViewDistribution{Over1M: 2, Over100K: 3, Over10K: 4, Under10K: 2}, e.ViewDistribution)
	assert.Equal(t, int64(760_000), e.AvgViews)
}

func TestEngagement_CumulativeThresholds(t *testing.T) {
	e := Engagement([]models.VideoRecord{
		{Title: "big", ViewCount: 2_000_000},
		{Title: "mid", ViewCount: 150_000},
	})

	assert.Equal(t, models.ViewDistribution{Over1M: 1, Over100K: 2, Over10K: 2, Under10K: 0}, e.ViewDistribution)
}

func TestTranscriptKeywords(t *testing.T) {
	k, err := NewKeywordExtractor()
	require.NoError(t, err)

	short := []models.VideoRecord{{Transcript: strings.Repeat("word ", 30)}}
	assert.Nil(t, k.TranscriptKeywords(short))

	long := []models.VideoRecord{
		{Transcript: strings.Repeat("golang ", 60) + strings.Repeat("rust ", 40)},
		{Transcript: "ignored because short"},
	}
	got := k.TranscriptKeywords(long)
	require.Len(t, got, 2)
	assert.Equal(t, models.KeywordCount{Word: "golang", Count: 60, Percentage: "60.00"}, got[0])
	assert.Equal(t, models.KeywordCount{Word: "rust", Count: 40, Percentage: "40.00"}, got[1])
}

func TestSubtitleDetails(t *testing.T) {
	transcript := strings.Repeat("word ", 250)
	videos := []models.VideoRecord{
		{ID: "v1", Title: strings.Repeat("t", 60), Transcript: transcript},
		{ID: "v2", Title: "no captions"},
	}

	got := SubtitleDetails(videos)

	require.Len(t, got, 1)
	d := got[0]
	assert.Equal(t, "v1", d.VideoID)
	assert.Equal(t, strings.Repeat("t", 50)+"...", d.Title)
	assert.Equal(t, 1250, d.TranscriptLength)
	assert.Equal(t, 250, d.WordCount)
	assert.Equal(t, 2, d.EstimatedReadingTime)
	assert.Len(t, d.Preview, 203)
}

func TestAnalyzedPeriod(t *testing.T) {
	videos := []models.VideoRecord{
		{PublishedAt: "2024-03-01T00:00:00Z"},
		{PublishedAt: "not a date"},
		{PublishedAt: "2023-12-31"},
		{PublishedAt: "2024-05-10T12:00:00.000Z"},
	}

	p := AnalyzedPeriod(videos)

	assert.Equal(t, "2023-12-31", p.OldestVideo)
	assert.Equal(t, "2024-05-10T12:00:00.000Z", p.NewestVideo)
}

func TestCoverageRate(t *testing.T) {
	assert.Equal(t, 0, CoverageRate(0, 0))
	assert.Equal(t, 67, CoverageRate(2, 3))
	assert.Equal(t, 100, CoverageRate(4, 4))
}
