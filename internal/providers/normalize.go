package providers

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// timeLayouts lists the timestamp formats seen across upstreams.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RubyDate, // "Mon Jan 02 15:04:05 -0700 2006"
	"Mon Jan 2 15:04:05 -0700 2006",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
}

// parseTime parses an upstream timestamp into UTC.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// profileURL is the canonical profile link of a handle.
func profileURL(handle string) string {
	h := domain.SanitizeHandle(handle)
	if h == "" {
		return "https://x.com"
	}
	return "https://x.com/" + url.PathEscape(h)
}

// postURL prefers an absolute upstream link, then a permalink path, then
// builds one from handle and id.
func postURL(handle, id, link string) string {
	link = strings.TrimSpace(link)
	switch {
	case strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://"):
		return strings.Replace(link, "https://twitter.com/", "https://x.com/", 1)
	case strings.HasPrefix(link, "/"):
		return "https://x.com" + link
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return profileURL(handle)
	}
	return profileURL(handle) + "/status/" + url.PathEscape(id)
}

// finalize drops posts outside the window, deduplicates by id, sorts
// newest-first and truncates to max.
func finalize(posts []domain.Post, now time.Time, window time.Duration, max int) []domain.Post {
	if window > 0 {
		posts = domain.WithinWindow(posts, now, window)
	}
	posts = domain.DedupByID(posts)
	domain.SortNewestFirst(posts)
	if max > 0 && len(posts) > max {
		posts = posts[:max]
	}
	return posts
}

// flexInt decodes counters that arrive as numbers, numeric strings, or
// objects with a "count" field.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	switch s[0] {
	case '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		n, _ := strconv.Atoi(strings.TrimSpace(str))
		*f = flexInt(n)
		return nil
	case '{':
		var obj struct {
			Count flexInt `json:"count"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*f = obj.Count
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// rawMedia is the media entity shape shared by syndication and paid API.
type rawMedia struct {
	Type          string `json:"type"`
	MediaURLHTTPS string `json:"media_url_https"`
	MediaURL      string `json:"media_url"`
	URL           string `json:"url"`
	VideoURL      string `json:"video_url"`
	VideoInfo     *struct {
		Variants []rawVariant `json:"variants"`
	} `json:"video_info"`
}

type rawVariant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

func convertMedia(items []rawMedia) []domain.Media {
	out := make([]domain.Media, 0, len(items))
	for _, it := range items {
		m := domain.Media{URL: firstNonEmpty(it.MediaURLHTTPS, it.MediaURL, it.URL)}
		switch it.Type {
		case "video":
			m.Type = domain.MediaVideo
		case "animated_gif", "gif":
			m.Type = domain.MediaGIF
		default:
			m.Type = domain.MediaPhoto
		}
		if m.Type != domain.MediaPhoto {
			m.VideoURL = it.VideoURL
			if it.VideoInfo != nil {
				if best := bestMP4(it.VideoInfo.Variants); best != "" {
					m.VideoURL = best
				}
			}
		}
		if m.URL == "" {
			continue
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func bestMP4(variants []rawVariant) string {
	var mp4 []rawVariant
	for _, v := range variants {
		if v.ContentType == "video/mp4" {
			mp4 = append(mp4, v)
		}
	}
	if len(mp4) == 0 {
		return ""
	}
	sort.SliceStable(mp4, func(i, j int) bool { return mp4[i].Bitrate > mp4[j].Bitrate })
	return mp4[0].URL
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
