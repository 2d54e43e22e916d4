package domain

import (
	"sort"
	"time"
)

// ToolWithPosts pairs a catalog entry with its recent posts. LatestPost and
// PostCount are derived and must be refreshed with Normalize after the post
// list changes.
type ToolWithPosts struct {
	Tool
	Posts      []Post `json:"posts"`
	LatestPost *Post  `json:"latestPost"`
	PostCount  int    `json:"postCount"`
}

// Normalize sorts posts newest-first and recomputes the derived fields.
func (t *ToolWithPosts) Normalize() {
	if t.Posts == nil {
		t.Posts = []Post{}
	}
	SortNewestFirst(t.Posts)
	t.PostCount = len(t.Posts)
	t.LatestPost = nil
	if len(t.Posts) > 0 {
		latest := t.Posts[0]
		t.LatestPost = &latest
	}
}

// NewestAt returns the creation time of the newest post, zero when empty.
func (t ToolWithPosts) NewestAt() time.Time {
	var newest time.Time
	for _, p := range t.Posts {
		if p.CreatedAt.After(newest) {
			newest = p.CreatedAt
		}
	}
	return newest
}

// SortToolsByActivity orders tools by their newest post, most recent first.
// Tools without posts sink to the end in their original relative order.
func SortToolsByActivity(tools []ToolWithPosts) {
	sort.SliceStable(tools, func(i, j int) bool {
		a, b := tools[i].NewestAt(), tools[j].NewestAt()
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}

// FilterCategory keeps the tools of one category; "" and "all" keep everything.
func FilterCategory(tools []ToolWithPosts, category string) []ToolWithPosts {
	if category == "" || category == "all" {
		return tools
	}
	out := make([]ToolWithPosts, 0, len(tools))
	for _, t := range tools {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// TimelineEntry is a post flattened with the identity of its owning tool.
type TimelineEntry struct {
	Post
	ToolID     string     `json:"toolId"`
	ToolName   string     `json:"toolName"`
	Handle     string     `json:"handle"`
	Category   string     `json:"category"`
	BrandColor string     `json:"brandColor"`
	Logo       string     `json:"logo"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

// NewTimelineEntry attaches tool identity to a post.
func NewTimelineEntry(t Tool, p Post) TimelineEntry {
	return TimelineEntry{
		Post:       p,
		ToolID:     t.ID,
		ToolName:   t.Name,
		Handle:     t.Handle,
		Category:   t.Category,
		BrandColor: t.BrandColor,
		Logo:       t.Logo,
	}
}

// Flatten turns tools into a single newest-first timeline.
func Flatten(tools []ToolWithPosts) []TimelineEntry {
	out := make([]TimelineEntry, 0)
	for _, t := range tools {
		for _, p := range t.Posts {
			out = append(out, NewTimelineEntry(t.Tool, p))
		}
	}
	SortTimeline(out)
	return out
}

// SortTimeline orders entries newest-first.
func SortTimeline(entries []TimelineEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// CountPosts sums the post lists of all tools.
func CountPosts(tools []ToolWithPosts) int {
	n := 0
	for _, t := range tools {
		n += len(t.Posts)
	}
	return n
}
