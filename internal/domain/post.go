package domain

import (
	"sort"
	"time"
)

// Source identifies where a post came from.
type Source string

const (
	SourceScrape      Source = "scrape"
	SourcePaidAPI     Source = "paid_api"
	SourceOfficialAPI Source = "official_api"
	SourceMock        Source = "mock"
)

// MediaType enumerates attachment kinds.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
	MediaGIF   MediaType = "gif"
)

// Metrics are engagement counters. Missing provider values stay zero.
type Metrics struct {
	LikeCount       int `json:"likeCount"`
	RepostCount     int `json:"repostCount"`
	ReplyCount      int `json:"replyCount"`
	ImpressionCount int `json:"impressionCount"`
	BookmarkCount   int `json:"bookmarkCount"`
	QuoteCount      int `json:"quoteCount"`
}

// Media is an attachment on a post. VideoURL is set for video and gif items.
type Media struct {
	Type     MediaType `json:"type"`
	URL      string    `json:"url"`
	VideoURL string    `json:"videoUrl,omitempty"`
}

// QuotedPost is the abbreviated form of a post embedded in another one.
type QuotedPost struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName,omitempty"`
	Handle     string    `json:"handle,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	URL        string    `json:"url,omitempty"`
	Media      []Media   `json:"media,omitempty"`
}

// Post is a single social-media item fetched for a tool.
type Post struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	OriginalText string      `json:"originalText,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	Metrics      Metrics     `json:"metrics"`
	URL          string      `json:"url"`
	Media        []Media     `json:"media,omitempty"`
	QuotedPost   *QuotedPost `json:"quotedPost,omitempty"`
	IsMock       bool        `json:"isMock"`
	Source       Source      `json:"source"`
}

// SortNewestFirst orders posts by CreatedAt descending. Ties keep input order.
func SortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// WithinWindow returns the posts created at or after ref-window, preserving order.
func WithinWindow(posts []Post, ref time.Time, window time.Duration) []Post {
	cutoff := ref.Add(-window)
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if !p.CreatedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// DedupByID drops later posts whose ID has already been seen.
func DedupByID(posts []Post) []Post {
	seen := make(map[string]struct{}, len(posts))
	out := posts[:0:0]
	for _, p := range posts {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
