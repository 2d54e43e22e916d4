package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-tracker/internal/catalog"
	"github.com/tbourn/ai-tracker/internal/domain"
	"github.com/tbourn/ai-tracker/internal/services"
)

// ---------- stubs ----------

type stubFeed struct {
	feed     services.Feed
	cleared  int
	gotCat   string
	gotForce bool
}

func (s *stubFeed) GetToolsWithPosts(_ context.Context, category string, force bool) services.Feed {
	s.gotCat, s.gotForce = category, force
	return s.feed
}

func (s *stubFeed) GetTimeline(ctx context.Context, category string, force bool) services.Timeline {
	f := s.GetToolsWithPosts(ctx, category, force)
	entries := domain.Flatten(f.Data)
	return services.Timeline{Source: f.Source, Count: len(entries), Data: entries}
}

func (s *stubFeed) ClearCache() { s.cleared++ }

func (s *stubFeed) Status(context.Context) services.Status {
	return services.Status{Source: s.feed.Source, WindowHours: 24}
}

type stubArchive struct {
	gotQuery services.ArchiveQuery
	gotDays  int
	err      error
}

func (s *stubArchive) Query(_ context.Context, q services.ArchiveQuery) (domain.ArchiveView, error) {
	s.gotQuery = q
	return domain.ArchiveView{TotalPosts: 1, ToolsCount: 1, Entries: []domain.TimelineEntry{{ToolID: "claude"}}}, s.err
}

func (s *stubArchive) Stats(context.Context) (domain.ArchiveStats, error) {
	return domain.ArchiveStats{TotalPosts: 3, DailyCounts: map[string]int{"2025-03-10": 3}}, s.err
}

func (s *stubArchive) ToolArchive(_ context.Context, toolID string, days int) (domain.ArchiveView, error) {
	s.gotDays = days
	if s.err != nil {
		return domain.ArchiveView{}, s.err
	}
	return domain.ArchiveView{TotalPosts: 1, Entries: []domain.TimelineEntry{{ToolID: toolID}}}, nil
}

func sampleFeed() services.Feed {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	var data []domain.ToolWithPosts
	for i, id := range []string{"claude", "cursor", "midjourney"} {
		tw := domain.ToolWithPosts{
			Tool:  domain.Tool{ID: id, Name: id},
			Posts: []domain.Post{{ID: id + "-1", CreatedAt: now.Add(-time.Duration(i) * time.Hour)}},
		}
		tw.Normalize()
		data = append(data, tw)
	}
	return services.Feed{Source: "scrape", Count: len(data), Data: data}
}

func newRouter(t *testing.T, feed *stubFeed, arch *stubArchive, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	h := New(cat, feed, arch, opts)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)
	g := r.Group("/tools")
	g.GET("", h.ListTools)
	g.GET("/categories", h.Categories)
	g.GET("/with-posts", h.ToolsWithPosts)
	g.GET("/timeline", h.Timeline)
	g.GET("/status/api", h.Status)
	g.POST("/refresh", h.Refresh)
	g.GET("/search/:query", h.SearchTools)
	g.GET("/archive", h.Archive)
	g.GET("/archive/stats", h.ArchiveStats)
	g.GET("/archive/:toolId", h.ToolArchive)
	g.GET("/:id", h.GetTool)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w
}

// ---------- catalog ----------

func TestCatalogEndpoints(t *testing.T) {
	r := newRouter(t, &stubFeed{feed: sampleFeed()}, &stubArchive{}, Options{})

	var all ToolsResponse
	if w := do(t, r, http.MethodGet, "/tools", &all); w.Code != http.StatusOK || !all.Success || all.Count < 30 {
		t.Fatalf("GET /tools = %d %+v", w.Code, all.Count)
	}
	var coding ToolsResponse
	do(t, r, http.MethodGet, "/tools?category=coding", &coding)
	for _, tool := range coding.Data {
		if tool.Category != "coding" {
			t.Fatalf("category filter leaked %+v", tool)
		}
	}
	var cats CategoriesResponse
	if do(t, r, http.MethodGet, "/tools/categories", &cats); len(cats.Data) != 7 {
		t.Fatalf("categories = %d", len(cats.Data))
	}

	var one ToolResponse
	if w := do(t, r, http.MethodGet, "/tools/claude", &one); w.Code != http.StatusOK || one.Data.ID != "claude" {
		t.Fatalf("GET /tools/claude = %d %+v", w.Code, one)
	}
	var er ErrorResponse
	if w := do(t, r, http.MethodGet, "/tools/nope", &er); w.Code != http.StatusNotFound || er.Code != ErrCodeToolNotFound {
		t.Fatalf("GET /tools/nope = %d %+v", w.Code, er)
	}

	var found ToolsResponse
	if do(t, r, http.MethodGet, "/tools/search/anthropic?limit=3", &found); found.Count == 0 || found.Count > 3 {
		t.Fatalf("search = %+v", found)
	}
}

// ---------- feed ----------

func TestToolsWithPosts_LimitCategoryAndRefresh(t *testing.T) {
	feed := &stubFeed{feed: sampleFeed()}
	r := newRouter(t, feed, &stubArchive{}, Options{})

	var resp FeedResponse
	w := do(t, r, http.MethodGet, "/tools/with-posts?category=chatbots&limit=2&refresh=true", &resp)
	if w.Code != http.StatusOK || !resp.Success || resp.Source != "scrape" {
		t.Fatalf("with-posts = %d %+v", w.Code, resp)
	}
	if len(resp.Data) != 2 || resp.Count != 3 {
		t.Fatalf("limit: data=%d count=%d", len(resp.Data), resp.Count)
	}
	if feed.gotCat != "chatbots" || !feed.gotForce {
		t.Fatalf("service got category=%q force=%v", feed.gotCat, feed.gotForce)
	}
	if resp.Data[0].LatestPost == nil || resp.Data[0].PostCount != 1 {
		t.Fatalf("derived fields missing: %+v", resp.Data[0])
	}
}

func TestToolsWithPosts_EmptyIsStillSuccess(t *testing.T) {
	r := newRouter(t, &stubFeed{feed: services.Feed{Source: services.SourceUnavailable, Data: []domain.ToolWithPosts{}}}, &stubArchive{}, Options{})
	var resp FeedResponse
	if w := do(t, r, http.MethodGet, "/tools/with-posts", &resp); w.Code != http.StatusOK || !resp.Success || resp.Source != "unavailable" {
		t.Fatalf("empty feed = %d %+v", w.Code, resp)
	}
}

func TestTimelineAndStatus(t *testing.T) {
	r := newRouter(t, &stubFeed{feed: sampleFeed()}, &stubArchive{}, Options{})

	var tl TimelineResponse
	do(t, r, http.MethodGet, "/tools/timeline?limit=2", &tl)
	if tl.Count != 3 || len(tl.Data) != 2 || tl.Data[0].ToolID != "claude" {
		t.Fatalf("timeline = %+v", tl)
	}
	var st StatusResponse
	if do(t, r, http.MethodGet, "/tools/status/api", &st); !st.Success || st.Data.Source != "scrape" || st.Data.WindowHours != 24 {
		t.Fatalf("status = %+v", st)
	}
}

func TestRefresh_MessageDependsOnHosting(t *testing.T) {
	feed := &stubFeed{feed: sampleFeed()}
	var live, hosted MessageResponse
	do(t, newRouter(t, feed, &stubArchive{}, Options{}), http.MethodPost, "/tools/refresh", &live)
	do(t, newRouter(t, feed, &stubArchive{}, Options{Hosted: true}), http.MethodPost, "/tools/refresh", &hosted)
	if feed.cleared != 2 || !live.Success || live.Message == hosted.Message {
		t.Fatalf("cleared=%d live=%q hosted=%q", feed.cleared, live.Message, hosted.Message)
	}
}

// ---------- archive ----------

func TestArchiveEndpoints(t *testing.T) {
	arch := &stubArchive{}
	r := newRouter(t, &stubFeed{}, arch, Options{})

	var view ArchiveResponse
	if w := do(t, r, http.MethodGet, "/tools/archive?category=video&days=400&limit=10", &view); w.Code != http.StatusOK || view.TotalPosts != 1 {
		t.Fatalf("archive = %d %+v", w.Code, view)
	}
	if arch.gotQuery.Category != "video" || arch.gotQuery.Days != 90 || arch.gotQuery.Limit != 10 {
		t.Fatalf("query = %+v", arch.gotQuery)
	}
	do(t, r, http.MethodGet, "/tools/archive", nil)
	if arch.gotQuery.Days != 90 || arch.gotQuery.Limit != services.DefaultArchiveLimit {
		t.Fatalf("defaults = %+v", arch.gotQuery)
	}

	var st ArchiveStatsResponse
	if do(t, r, http.MethodGet, "/tools/archive/stats", &st); st.Data.TotalPosts != 3 {
		t.Fatalf("stats = %+v", st)
	}

	var tool ArchiveResponse
	if w := do(t, r, http.MethodGet, "/tools/archive/claude?days=7", &tool); w.Code != http.StatusOK || tool.Entries[0].ToolID != "claude" || arch.gotDays != 7 {
		t.Fatalf("tool archive = %d %+v days=%d", w.Code, tool, arch.gotDays)
	}
}

func TestToolArchive_NotFoundCases(t *testing.T) {
	cases := []struct {
		err  error
		code int
		want string
	}{
		{services.ErrNoArchive, http.StatusNotFound, ErrCodeNoArchive},
		{services.ErrToolNotFound, http.StatusNotFound, ErrCodeToolNotFound},
		{errors.New("disk"), http.StatusInternalServerError, ErrCodeArchiveFailed},
	}
	for _, tc := range cases {
		r := newRouter(t, &stubFeed{}, &stubArchive{err: tc.err}, Options{})
		var er ErrorResponse
		if w := do(t, r, http.MethodGet, "/tools/archive/claude", &er); w.Code != tc.code || er.Code != tc.want {
			t.Fatalf("%v: got %d %+v", tc.err, w.Code, er)
		}
	}
}

func TestHealthAndStats(t *testing.T) {
	r := newRouter(t, &stubFeed{feed: sampleFeed()}, &stubArchive{}, Options{Mode: "SCRAPE"})
	var h map[string]any
	if w := do(t, r, http.MethodGet, "/health", &h); w.Code != http.StatusOK || h["status"] != "OK" || h["mode"] != "SCRAPE" {
		t.Fatalf("health = %v", h)
	}
	var s map[string]any
	do(t, r, http.MethodGet, "/stats", &s)
	if s["categories"].(float64) != 6 || s["totalTools"].(float64) < 30 {
		t.Fatalf("stats = %v", s)
	}
}
