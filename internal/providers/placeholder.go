package providers

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/tbourn/ai-tracker/internal/domain"
)

var placeholderTexts = []string{
	"%s just shipped an update. Release notes are live.",
	"What are you building with %s this week? Share your best results.",
	"A closer look at how teams use %s in production.",
	"%s is now available in more regions.",
	"New tutorial: getting started with %s in five minutes.",
}

// Placeholder produces clearly marked demo posts for deployments that prefer
// sample data over an empty dashboard. Output is deterministic for a given
// tool id and reference time.
type Placeholder struct {
	Window time.Duration
	Max    int
}

// Generate returns one ToolWithPosts per tool, each with 1..Max mock posts
// spread across the window ending at now.
func (p Placeholder) Generate(tools []domain.Tool, now time.Time) []domain.ToolWithPosts {
	window := p.Window
	if window <= 0 {
		window = 24 * time.Hour
	}
	max := p.Max
	if max <= 0 {
		max = 3
	}
	out := make([]domain.ToolWithPosts, 0, len(tools))
	for _, t := range tools {
		seed := hashID(t.ID)
		n := 1 + int(seed%uint32(max))
		posts := make([]domain.Post, 0, n)
		for i := 0; i < n; i++ {
			step := window / time.Duration(n+1)
			at := now.Add(-step * time.Duration(i+1)).Add(-time.Duration(seed%600) * time.Second).UTC()
			id := fmt.Sprintf("mock-%s-%d", t.ID, i)
			v := int(seed>>uint(i%8)) % 5000
			posts = append(posts, domain.Post{
				ID:        id,
				Text:      fmt.Sprintf(placeholderTexts[(int(seed)+i)%len(placeholderTexts)], t.Name),
				CreatedAt: at,
				Metrics: domain.Metrics{
					LikeCount:       v,
					RepostCount:     v / 8,
					ReplyCount:      v / 20,
					ImpressionCount: v * 40,
				},
				URL:    profileURL(t.Handle),
				IsMock: true,
				Source: domain.SourceMock,
			})
		}
		tw := domain.ToolWithPosts{Tool: t, Posts: posts}
		tw.Normalize()
		out = append(out, tw)
	}
	domain.SortToolsByActivity(out)
	return out
}

func hashID(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
