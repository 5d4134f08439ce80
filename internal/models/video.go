package models

import (
	"strings"
	"unicode/utf16"
)

const UnknownChannelName = "Unknown Channel"

// TranscriptMinLength is the length a transcript must exceed to count as usable captions.
const TranscriptMinLength = 100

// VideoRecord is the canonical shape every internal component works with.
type VideoRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    *int64 `json:"like_count,omitempty"`
	CommentCount *int64 `json:"comment_count,omitempty"`
	PublishedAt  string `json:"published_at"`
	Transcript   string `json:"transcript,omitempty"`
	URL          string `json:"url,omitempty"`
}

// HasTranscript reports whether the video carries usable captions.
func (v VideoRecord) HasTranscript() bool {
	return TextLength(v.Transcript) > TranscriptMinLength
}

type ChannelInfo struct {
	Name            string `json:"name"`
	SubscriberCount *int64 `json:"subscriber_count,omitempty"`
	VideoCount      *int64 `json:"video_count,omitempty"`
	Description     string `json:"description,omitempty"`
}

// WithDefaults fills the sentinel channel name.
func (c ChannelInfo) WithDefaults() ChannelInfo {
	if strings.TrimSpace(c.Name) == "" {
		c.Name = UnknownChannelName
	}
	return c
}

// ChannelFetch is what a fetch backend returns for one channel URL.
type ChannelFetch struct {
	Channel ChannelInfo
	Videos  []VideoRecord
}

type Subtitle struct {
	Language  string `json:"language,omitempty"`
	Plaintext string `json:"plaintext"`
}

// RawVideo accepts every field spelling the upstream scraper and API clients send.
// Nothing past the HTTP or fetch boundary should read it; call ToRecord.
type RawVideo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`

	Description string `json:"description"`
	Text        string `json:"text"`

	ViewCount    *int64 `json:"view_count"`
	ViewCountAlt *int64 `json:"viewCount"`
	LikeCount    *int64 `json:"like_count"`
	Likes        *int64 `json:"likes"`
	CommentCount *int64 `json:"comment_count"`
	CommentsAlt  *int64 `json:"commentsCount"`

	PublishedAt string `json:"published_at"`
	Date        string `json:"date"`

	Transcript string     `json:"transcript"`
	Subtitles  []Subtitle `json:"subtitles"`

	ChannelName        string `json:"channelName"`
	NumberOfSubscriber *int64 `json:"numberOfSubscribers"`
	ChannelTotalVideos *int64 `json:"channelTotalVideos"`
	ChannelDescription string `json:"channelDescription"`
}

// ToRecord converts the raw shape into a VideoRecord. Alternate spellings win over the
// snake_case ones when both are present and non-zero.
func (r RawVideo) ToRecord() VideoRecord {
	v := VideoRecord{
		ID:          r.ID,
		Title:       r.Title,
		Description: firstNonEmpty(r.Text, r.Description),
		ViewCount:   derefInt(firstNonZero(r.ViewCountAlt, r.ViewCount)),
		LikeCount:   firstNonZero(r.Likes, r.LikeCount),
		PublishedAt: firstNonEmpty(r.Date, r.PublishedAt),
		Transcript:  r.Transcript,
		URL:         r.URL,
	}
	v.CommentCount = firstNonZero(r.CommentsAlt, r.CommentCount)
	if v.Transcript == "" && len(r.Subtitles) > 0 {
		v.Transcript = r.Subtitles[0].Plaintext
	}
	if v.ViewCount < 0 {
		v.ViewCount = 0
	}
	return v
}

// Channel derives channel metadata from a scraped item.
func (r RawVideo) Channel() ChannelInfo {
	return ChannelInfo{
		Name:            r.ChannelName,
		SubscriberCount: r.NumberOfSubscriber,
		VideoCount:      r.ChannelTotalVideos,
		Description:     r.ChannelDescription,
	}.WithDefaults()
}

// TextLength counts UTF-16 code units, which is how browser clients measure strings.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		l := utf16.RuneLen(r)
		if l < 0 {
			l = 1
		}
		n += l
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(vals ...*int64) *int64 {
	var fallback *int64
	for _, v := range vals {
		if v == nil {
			continue
		}
		if *v != 0 {
			return v
		}
		if fallback == nil {
			fallback = v
		}
	}
	return fallback
}

func derefInt(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
