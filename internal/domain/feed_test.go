package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNormalize_DerivedFields(t *testing.T) {
	tw := ToolWithPosts{Tool: Tool{ID: "x"}, Posts: []Post{post("old", 5*time.Hour), post("new", time.Hour)}}
	tw.Normalize()
	if tw.PostCount != 2 || tw.LatestPost == nil || tw.LatestPost.ID != "new" {
		t.Fatalf("Normalize = %+v", tw)
	}
	if tw.Posts[0].ID != "new" {
		t.Fatalf("posts not sorted newest-first")
	}

	empty := ToolWithPosts{Tool: Tool{ID: "y"}}
	empty.Normalize()
	if empty.Posts == nil || empty.PostCount != 0 || empty.LatestPost != nil {
		t.Fatalf("empty Normalize = %+v", empty)
	}
}

func TestSortToolsByActivity_EmptyLastStable(t *testing.T) {
	tools := []ToolWithPosts{
		{Tool: Tool{ID: "none1"}},
		{Tool: Tool{ID: "old"}, Posts: []Post{post("1", 10*time.Hour)}},
		{Tool: Tool{ID: "none2"}},
		{Tool: Tool{ID: "fresh"}, Posts: []Post{post("2", time.Hour), post("3", 20*time.Hour)}},
	}
	SortToolsByActivity(tools)
	want := []string{"fresh", "old", "none1", "none2"}
	for i, id := range want {
		if tools[i].ID != id {
			t.Fatalf("position %d = %s; want %s", i, tools[i].ID, id)
		}
	}
}

func TestFilterCategory(t *testing.T) {
	tools := []ToolWithPosts{{Tool: Tool{ID: "a", Category: "image"}}, {Tool: Tool{ID: "b", Category: "video"}}}
	if got := FilterCategory(tools, "all"); len(got) != 2 {
		t.Fatalf("all should keep everything")
	}
	if got := FilterCategory(tools, "video"); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("video filter = %+v", got)
	}
	if got := FilterCategory(tools, "audio"); len(got) != 0 {
		t.Fatalf("unknown category should yield nothing")
	}
}

func TestFlatten_NewestFirstWithToolIdentity(t *testing.T) {
	tools := []ToolWithPosts{
		{Tool: Tool{ID: "a", Name: "A", Category: "coding"}, Posts: []Post{post("1", 3*time.Hour)}},
		{Tool: Tool{ID: "b", Name: "B", Category: "image"}, Posts: []Post{post("2", time.Hour), post("3", 5*time.Hour)}},
	}
	tl := Flatten(tools)
	if len(tl) != 3 {
		t.Fatalf("len = %d", len(tl))
	}
	if tl[0].ID != "2" || tl[0].ToolID != "b" || tl[1].ToolID != "a" || tl[2].ID != "3" {
		t.Fatalf("timeline = %+v", tl)
	}
	if CountPosts(tools) != 3 {
		t.Fatalf("CountPosts mismatch")
	}

	b, _ := json.Marshal(tl[0])
	if !strings.Contains(string(b), `"toolId":"b"`) || strings.Contains(string(b), "archivedAt") {
		t.Fatalf("timeline json = %s", b)
	}
}

func TestNewSnapshot_Counts(t *testing.T) {
	s := NewSnapshot(t0, "scrape", true, []ToolWithPosts{{Posts: []Post{post("1", 0), post("2", 0)}}, {Posts: []Post{post("3", 0)}}})
	if s.ToolCount != 2 || s.TweetCount != 3 || !s.Translated || s.Empty() {
		t.Fatalf("snapshot = %+v", s)
	}
	if e := NewSnapshot(t0, "x", false, nil); !e.Empty() || e.Data == nil {
		t.Fatalf("nil tools should give empty non-nil data")
	}
}

func TestArchive_RecountAndDayKey(t *testing.T) {
	a := NewArchive(t0)
	a.Tools["x"] = &ArchiveTool{Posts: []ArchivedPost{{Post: post("1", 0)}, {Post: post("2", 0)}}}
	a.Tools["y"] = &ArchiveTool{Posts: []ArchivedPost{{Post: post("3", 0)}}}
	a.TotalPosts = 99
	a.Recount()
	if a.TotalPosts != 3 {
		t.Fatalf("Recount = %d", a.TotalPosts)
	}
	loc := time.FixedZone("UTC+3", 3*3600)
	if got := DayKey(time.Date(2025, 3, 11, 1, 0, 0, 0, loc)); got != "2025-03-10" {
		t.Fatalf("DayKey should use UTC, got %s", got)
	}
}
