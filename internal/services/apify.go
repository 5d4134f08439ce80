package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"tubelens-backend/internal/analysis"
	"tubelens-backend/internal/models"
)

const defaultApifyBaseURL = "https://api.apify.com/v2"

// captioner fills in transcripts the scraper did not return.
type captioner interface {
	GetTranscript(ctx context.Context, videoID string) (string, error)
}

// ApifyService fetches channel videos through an Apify YouTube scraper actor.
type ApifyService struct {
	httpClient *http.Client
	baseURL    string
	token      string
	actor      string
	captions   captioner
	logger     zerolog.Logger
}

type ApifyOption func(*ApifyService)

// WithApifyBaseURL points the client at another API host.
func WithApifyBaseURL(u string) ApifyOption {
	return func(s *ApifyService) { s.baseURL = u }
}

// WithCaptionBackfill enables transcript lookup for videos scraped without subtitles.
func WithCaptionBackfill(c captioner) ApifyOption {
	return func(s *ApifyService) { s.captions = c }
}

func NewApifyService(token, actor string, logger zerolog.Logger, opts ...ApifyOption) *ApifyService {
	s := &ApifyService{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    defaultApifyBaseURL,
		token:      token,
		actor:      actor,
		logger:     logger.With().Str("backend", "apify").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ApifyService) Source() string {
	return "apify"
}

type apifyStartURL struct {
	URL string `json:"url"`
}

type apifyInput struct {
	StartURLs          []apifyStartURL `json:"startUrls"`
	MaxResults         int             `json:"maxResults"`
	MaxResultsShorts   int             `json:"maxResultsShorts"`
	MaxResultStreams   int             `json:"maxResultStreams"`
	DownloadSubtitles  bool            `json:"downloadSubtitles"`
	SubtitlesLanguage  string          `json:"subtitlesLanguage"`
	SubtitlesFormat    string          `json:"subtitlesFormat"`
	PreferAutoSubtitle bool            `json:"preferAutoGeneratedSubtitles"`
}

// FetchChannel runs the actor synchronously and returns the scraped videos in order.
func (s *ApifyService) FetchChannel(ctx context.Context, channelURL string, maxVideos int) (*models.ChannelFetch, error) {
	body, err := json.Marshal(apifyInput{
		StartURLs:          []apifyStartURL{{URL: channelURL}},
		MaxResults:         maxVideos,
		DownloadSubtitles:  true,
		SubtitlesLanguage:  "any",
		SubtitlesFormat:    "plaintext",
		PreferAutoSubtitle: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scraper input: %w", err)
	}

	// Credentials stay out of the URL; transport errors quote it.
	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items", s.baseURL, url.PathEscape(s.actor))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scraper request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &analysis.UpstreamFetchError{Message: "Failed to fetch channel videos", Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &analysis.BackendUnavailableError{Message: "Video fetch service credential is invalid"}
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Error().Int("status", resp.StatusCode).Str("body", string(snippet)).Msg("scraper run failed")
		return nil, &analysis.UpstreamFetchError{
			Message: "Failed to fetch channel videos",
			Cause:   fmt.Errorf("scraper returned status %d", resp.StatusCode),
		}
	}

	var items []models.RawVideo
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &analysis.UpstreamFetchError{Message: "Failed to read channel videos", Cause: err}
	}

	fetch := &models.ChannelFetch{Channel: models.ChannelInfo{Name: models.UnknownChannelName}}
	for _, item := range items {
		if item.Title == "" {
			continue
		}
		if len(fetch.Videos) == 0 {
			fetch.Channel = item.Channel()
		}
		fetch.Videos = append(fetch.Videos, item.ToRecord())
	}
	if len(fetch.Videos) == 0 {
		return nil, &analysis.UpstreamNotFoundError{Message: "No videos found for this channel"}
	}
	if fetch.Channel.VideoCount == nil {
		n := int64(len(fetch.Videos))
		fetch.Channel.VideoCount = &n
	}

	s.backfillCaptions(ctx, fetch.Videos)

	s.logger.Info().
		Str("channel", fetch.Channel.Name).
		Int("videos", len(fetch.Videos)).
		Dur("elapsed", time.Since(start)).
		Msg("channel fetched")
	return fetch, nil
}

func (s *ApifyService) backfillCaptions(ctx context.Context, videos []models.VideoRecord) {
	if s.captions == nil {
		return
	}
	for i := range videos {
		if videos[i].HasTranscript() || videos[i].ID == "" {
			continue
		}
		text, err := s.captions.GetTranscript(ctx, videos[i].ID)
		if err != nil {
			s.logger.Debug().Err(err).Str("video_id", videos[i].ID).Msg("no captions")
			continue
		}
		videos[i].Transcript = text
	}
}
