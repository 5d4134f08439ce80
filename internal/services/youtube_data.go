package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"tubelens-backend/internal/analysis"
	"tubelens-backend/internal/models"
)

// channelResolver finds the channel behind a single-video URL.
type channelResolver interface {
	ChannelIDForVideo(ctx context.Context, videoURL string) (string, error)
}

// YouTubeDataService fetches channel videos through the YouTube Data API v3.
type YouTubeDataService struct {
	svc      *youtube.Service
	captions captioner
	resolver channelResolver
	logger   zerolog.Logger
}

func NewYouTubeDataService(ctx context.Context, apiKey string, transcripts *TranscriptService, logger zerolog.Logger, opts ...option.ClientOption) (*YouTubeDataService, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	s := &YouTubeDataService{
		svc:    svc,
		logger: logger.With().Str("backend", "youtube").Logger(),
	}
	if transcripts != nil {
		s.captions = transcripts
		s.resolver = transcripts
	}
	return s, nil
}

func (s *YouTubeDataService) Source() string {
	return "youtube_data_api"
}

type channelRefKind int

const (
	refHandle channelRefKind = iota
	refChannelID
	refUsername
	refVideo
)

type channelRef struct {
	kind  channelRefKind
	value string
}

var videoURLRegex = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|shorts/|live/)|youtu\.be/)([\w-]{11})`)

// parseChannelRef works out what a channel or video URL points at.
func parseChannelRef(raw string) (channelRef, error) {
	if m := videoURLRegex.FindStringSubmatch(raw); len(m) == 2 {
		return channelRef{kind: refVideo, value: m[1]}, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return channelRef{}, fmt.Errorf("invalid channel URL: %w", err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return channelRef{}, fmt.Errorf("channel URL has no channel path")
	}

	switch {
	case strings.HasPrefix(segments[0], "@"):
		return channelRef{kind: refHandle, value: segments[0]}, nil
	case segments[0] == "channel" && len(segments) > 1:
		return channelRef{kind: refChannelID, value: segments[1]}, nil
	case segments[0] == "user" && len(segments) > 1:
		return channelRef{kind: refUsername, value: segments[1]}, nil
	case segments[0] == "c" && len(segments) > 1:
		return channelRef{kind: refHandle, value: "@" + segments[1]}, nil
	}
	return channelRef{}, fmt.Errorf("unrecognized channel URL path %q", u.Path)
}

func (s *YouTubeDataService) FetchChannel(ctx context.Context, channelURL string, maxVideos int) (*models.ChannelFetch, error) {
	ref, err := parseChannelRef(channelURL)
	if err != nil {
		return nil, &analysis.InsufficientDataError{Message: err.Error()}
	}

	if ref.kind == refVideo {
		if s.resolver == nil {
			return nil, &analysis.UpstreamFetchError{Message: "Cannot resolve the channel of a video URL"}
		}
		id, err := s.resolver.ChannelIDForVideo(ctx, "https://www.youtube.com/watch?v="+ref.value)
		if err != nil {
			return nil, &analysis.UpstreamFetchError{Message: "Failed to resolve channel from video", Cause: err}
		}
		ref = channelRef{kind: refChannelID, value: id}
	}

	call := s.svc.Channels.List([]string{"snippet", "statistics", "contentDetails"}).Context(ctx)
	switch ref.kind {
	case refHandle:
		call = call.ForHandle(ref.value)
	case refUsername:
		call = call.ForUsername(ref.value)
	default:
		call = call.Id(ref.value)
	}
	channels, err := call.Do()
	if err != nil {
		return nil, mapYouTubeError(err)
	}
	if len(channels.Items) == 0 {
		return nil, &analysis.UpstreamNotFoundError{Message: "Channel not found"}
	}
	ch := channels.Items[0]

	info := models.ChannelInfo{Name: ch.Snippet.Title, Description: ch.Snippet.Description}
	if ch.Statistics != nil {
		if !ch.Statistics.HiddenSubscriberCount {
			subs := int64(ch.Statistics.SubscriberCount)
			info.SubscriberCount = &subs
		}
		count := int64(ch.Statistics.VideoCount)
		info.VideoCount = &count
	}

	if ch.ContentDetails == nil || ch.ContentDetails.RelatedPlaylists == nil || ch.ContentDetails.RelatedPlaylists.Uploads == "" {
		return nil, &analysis.UpstreamNotFoundError{Message: "No videos found for this channel"}
	}

	playlist, err := s.svc.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(ch.ContentDetails.RelatedPlaylists.Uploads).
		MaxResults(int64(maxVideos)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapYouTubeError(err)
	}

	ids := make([]string, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			ids = append(ids, item.ContentDetails.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, &analysis.UpstreamNotFoundError{Message: "No videos found for this channel"}
	}

	resp, err := s.svc.Videos.List([]string{"snippet", "statistics"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, mapYouTubeError(err)
	}

	byID := make(map[string]*youtube.Video, len(resp.Items))
	for _, v := range resp.Items {
		byID[v.Id] = v
	}

	fetch := &models.ChannelFetch{Channel: info.WithDefaults()}
	for _, id := range ids {
		v, ok := byID[id]
		if !ok || v.Snippet == nil {
			continue
		}
		fetch.Videos = append(fetch.Videos, s.toRecord(ctx, v))
	}
	if len(fetch.Videos) == 0 {
		return nil, &analysis.UpstreamNotFoundError{Message: "No videos found for this channel"}
	}

	s.logger.Info().Str("channel", fetch.Channel.Name).Int("videos", len(fetch.Videos)).Msg("channel fetched")
	return fetch, nil
}

func (s *YouTubeDataService) toRecord(ctx context.Context, v *youtube.Video) models.VideoRecord {
	rec := models.VideoRecord{
		ID:          v.Id,
		Title:       v.Snippet.Title,
		Description: v.Snippet.Description,
		PublishedAt: v.Snippet.PublishedAt,
		URL:         "https://www.youtube.com/watch?v=" + v.Id,
	}
	if st := v.Statistics; st != nil {
		rec.ViewCount = int64(st.ViewCount)
		likes := int64(st.LikeCount)
		comments := int64(st.CommentCount)
		rec.LikeCount = &likes
		rec.CommentCount = &comments
	}

	if s.captions != nil {
		text, err := s.captions.GetTranscript(ctx, v.Id)
		if err != nil {
			s.logger.Debug().Err(err).Str("video_id", v.Id).Msg("no captions")
		} else {
			rec.Transcript = text
		}
	}
	return rec
}

func mapYouTubeError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized:
			if strings.Contains(apiErr.Message, "API key") {
				return &analysis.BackendUnavailableError{Message: "Video fetch service credential is invalid", Cause: err}
			}
		case http.StatusNotFound:
			return &analysis.UpstreamNotFoundError{Message: "Channel not found"}
		}
	}
	return &analysis.UpstreamFetchError{Message: "Failed to fetch channel videos", Cause: err}
}
