package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func post(id string, age time.Duration) Post {
	return Post{ID: id, Text: "t" + id, CreatedAt: t0.Add(-age), Source: SourceScrape}
}

func TestSortNewestFirst_StableOnTies(t *testing.T) {
	ps := []Post{post("a", 3*time.Hour), post("b", time.Hour), post("c", 3*time.Hour), post("d", 0)}
	SortNewestFirst(ps)
	got := []string{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID}
	want := []string{"d", "b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v; want %v", got, want)
		}
	}
}

func TestWithinWindow_BoundaryInclusive(t *testing.T) {
	ps := []Post{post("in", time.Hour), post("edge", 24*time.Hour), post("out", 25*time.Hour)}
	got := WithinWindow(ps, t0, 24*time.Hour)
	if len(got) != 2 || got[0].ID != "in" || got[1].ID != "edge" {
		t.Fatalf("WithinWindow = %+v", got)
	}
}

func TestDedupByID_FirstWins(t *testing.T) {
	a := post("1", 0)
	b := post("1", time.Hour)
	b.Text = "second"
	got := DedupByID([]Post{a, post("2", 0), b})
	if len(got) != 2 || got[0].Text != "t1" {
		t.Fatalf("DedupByID = %+v", got)
	}
}

func TestSanitizeHandle(t *testing.T) {
	for in, want := range map[string]string{"@OpenAI": "OpenAI", " AnthropicAI ": "AnthropicAI", "": ""} {
		if got := SanitizeHandle(in); got != want {
			t.Fatalf("SanitizeHandle(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestPost_JSONFieldNames(t *testing.T) {
	p := post("9", 0)
	p.Metrics.LikeCount = 3
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, k := range []string{`"createdAt"`, `"likeCount":3`, `"isMock":false`, `"source":"scrape"`} {
		if !strings.Contains(s, k) {
			t.Fatalf("missing %s in %s", k, s)
		}
	}
	if strings.Contains(s, "quotedPost") || strings.Contains(s, "originalText") {
		t.Fatalf("optional fields should be omitted: %s", s)
	}
}
