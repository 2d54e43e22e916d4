// Package services – FeedService
//
// FeedService serves the current feed from a process-local cache that moves
// through three states: empty, fetching and filled. Concurrent misses share a
// single acquisition (singleflight); callers that run out of time before it
// finishes get a fallback instead of an error. Hosted deployments never
// acquire live and serve the persisted snapshot only.
//
// Source values reported to clients:
//   - scrape, paid_api, official_api: live acquisition
//   - snapshot: the persisted snapshot
//   - mock: generated placeholder posts
//   - unavailable: nothing to serve
//
// Observability: public methods open OpenTelemetry spans.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/tbourn/ai-tracker/internal/acquire"
	"github.com/tbourn/ai-tracker/internal/domain"
	"github.com/tbourn/ai-tracker/internal/providers"
)

// Fallback sources.
const (
	SourceSnapshot    = "snapshot"
	SourceMock        = string(domain.SourceMock)
	SourceUnavailable = "unavailable"
)

const flightKey = "feed"

// Acquirer runs a full acquisition pass.
type Acquirer interface {
	AcquireAll(ctx context.Context, maxPerTool int) (*acquire.Result, bool)
}

// SnapshotStore persists the current snapshot.
type SnapshotStore interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snap domain.Snapshot) (bool, error)
}

// Translator is the part of the translation service the cache controls.
type Translator interface {
	Configured() bool
	Clear()
}

// ToolLister lists catalog tools for placeholder generation.
type ToolLister interface {
	All() []domain.Tool
}

// FeedOptions configures a FeedService.
type FeedOptions struct {
	TTL            time.Duration
	Window         time.Duration
	MaxPerTool     int
	Hosted         bool
	UsePlaceholder bool
	AcquireTimeout time.Duration // bound on one detached acquisition
	PersistLive    bool          // write the snapshot after a live acquisition
	Now            func() time.Time
}

// FeedDeps groups the collaborators of a FeedService. Only Snapshots is
// required; a nil Acquirer behaves like a hosted deployment.
type FeedDeps struct {
	Acquirer   Acquirer
	Snapshots  SnapshotStore
	Translator Translator
	PaidAPI    providers.Provider
	Catalog    ToolLister
}

// Feed is the tools-with-posts response.
type Feed struct {
	Source     string                 `json:"source"`
	Count      int                    `json:"count"`
	CapturedAt *time.Time             `json:"capturedAt,omitempty"`
	Data       []domain.ToolWithPosts `json:"data"`
}

// Timeline is the flattened cross-tool view.
type Timeline struct {
	Source string                 `json:"source"`
	Count  int                    `json:"count"`
	Data   []domain.TimelineEntry `json:"data"`
}

// Status describes what the service is serving.
type Status struct {
	Source              string     `json:"source"`
	Cached              bool       `json:"cached"`
	Hosted              bool       `json:"hosted"`
	LastUpdated         *time.Time `json:"lastUpdated"`
	SnapshotAvailable   bool       `json:"snapshotAvailable"`
	SnapshotSource      string     `json:"snapshotSource,omitempty"`
	SnapshotToolCount   int        `json:"snapshotToolCount"`
	SnapshotTweetCount  int        `json:"snapshotTweetCount"`
	RapidAPIConfigured  bool       `json:"rapidApiConfigured"`
	TranslateConfigured bool       `json:"translateConfigured"`
	WindowHours         int        `json:"windowHours"`
}

type cacheEntry struct {
	data       []domain.ToolWithPosts
	capturedAt time.Time // when the data was captured upstream
	filledAt   time.Time // when the entry entered the cache; drives the TTL
	source     string
}

var cacheEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tracker_cache_events_total",
		Help: "Feed cache lookups and transitions, by event.",
	},
	[]string{"event"},
)

func init() {
	prometheus.MustRegister(cacheEvents)
}

// FeedService is the cache and snapshot layer.
type FeedService struct {
	deps FeedDeps
	opts FeedOptions

	mu    sync.RWMutex
	entry *cacheEntry

	group        singleflight.Group
	acquisitions int64 // guarded by mu
}

// NewFeedService builds a FeedService with defaults for zero options.
func NewFeedService(deps FeedDeps, opts FeedOptions) *FeedService {
	if opts.TTL <= 0 {
		opts.TTL = 15 * time.Minute
	}
	if opts.Window <= 0 {
		opts.Window = 24 * time.Hour
	}
	if opts.MaxPerTool <= 0 {
		opts.MaxPerTool = 10
	}
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = 10 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Acquirer == nil {
		opts.Hosted = true
	}
	return &FeedService{deps: deps, opts: opts}
}

// GetToolsWithPosts returns the window-filtered feed for a category ("" or
// "all" for every tool). force skips the TTL check but still joins an
// in-flight acquisition.
func (s *FeedService) GetToolsWithPosts(ctx context.Context, category string, force bool) Feed {
	tr := otel.Tracer("services/FeedService")
	ctx, span := tr.Start(ctx, "GetToolsWithPosts",
		trace.WithAttributes(
			attribute.String("category", category),
			attribute.Bool("force", force),
		),
	)
	defer span.End()

	e := s.load(ctx, force)
	data := domain.FilterCategory(s.windowed(e), category)
	feed := Feed{Source: e.source, Count: len(data), Data: data}
	if !e.capturedAt.IsZero() {
		at := e.capturedAt
		feed.CapturedAt = &at
	}
	span.SetAttributes(attribute.String("source", feed.Source), attribute.Int("tools", feed.Count))
	return feed
}

// GetTimeline flattens the feed into entries ordered newest first.
func (s *FeedService) GetTimeline(ctx context.Context, category string, force bool) Timeline {
	tr := otel.Tracer("services/FeedService")
	ctx, span := tr.Start(ctx, "GetTimeline", trace.WithAttributes(attribute.String("category", category)))
	defer span.End()

	feed := s.GetToolsWithPosts(ctx, category, force)
	entries := domain.Flatten(feed.Data)
	return Timeline{Source: feed.Source, Count: len(entries), Data: entries}
}

// ClearCache empties the cache and the translation memo. The persisted
// snapshot is left alone.
func (s *FeedService) ClearCache() {
	s.mu.Lock()
	s.entry = nil
	s.mu.Unlock()
	if s.deps.Translator != nil {
		s.deps.Translator.Clear()
	}
	cacheEvents.WithLabelValues("clear").Inc()
	log.Info().Str("component", "feed").Msg("cache cleared")
}

// Status reports the cache and snapshot state.
func (s *FeedService) Status(ctx context.Context) Status {
	tr := otel.Tracer("services/FeedService")
	ctx, span := tr.Start(ctx, "Status")
	defer span.End()

	st := Status{
		Source:      SourceUnavailable,
		Hosted:      s.opts.Hosted,
		WindowHours: int(s.opts.Window / time.Hour),
	}
	if s.deps.PaidAPI != nil {
		st.RapidAPIConfigured = s.deps.PaidAPI.Configured()
	}
	if s.deps.Translator != nil {
		st.TranslateConfigured = s.deps.Translator.Configured()
	}

	s.mu.RLock()
	e := s.entry
	s.mu.RUnlock()
	if e != nil {
		st.Cached = true
		st.Source = e.source
		at := e.capturedAt
		st.LastUpdated = &at
	}

	snap, err := s.deps.Snapshots.Load(ctx)
	if err == nil {
		st.SnapshotAvailable = true
		st.SnapshotSource = snap.Source
		st.SnapshotToolCount = snap.ToolCount
		st.SnapshotTweetCount = snap.TweetCount
		if st.LastUpdated == nil {
			at := snap.FetchedAt
			st.LastUpdated = &at
			st.Source = SourceSnapshot
		}
	} else if !errors.Is(err, domain.ErrNoSnapshot) {
		log.Warn().Str("component", "feed").Err(err).Msg("snapshot unreadable")
	}
	return st
}

// load returns the entry to serve, filling the cache when needed.
func (s *FeedService) load(ctx context.Context, force bool) *cacheEntry {
	if !force {
		s.mu.RLock()
		e := s.entry
		s.mu.RUnlock()
		if e != nil && s.opts.Now().Sub(e.filledAt) < s.opts.TTL {
			cacheEvents.WithLabelValues("hit").Inc()
			return e
		}
	}
	cacheEvents.WithLabelValues("miss").Inc()

	select {
	case r := <-s.flight(ctx):
		if r.Shared {
			cacheEvents.WithLabelValues("shared").Inc()
		}
		return r.Val.(flightResult).entry
	case <-ctx.Done():
		cacheEvents.WithLabelValues("deadline").Inc()
		log.Warn().Str("component", "feed").Err(ctx.Err()).Msg("serving deadline reached before acquisition finished")
		return s.deadlineFallback(ctx)
	}
}

// flightResult is what one fill hands to every waiter.
type flightResult struct {
	entry *cacheEntry
	live  *acquire.Result // nil unless a live acquisition succeeded
}

// flight starts or joins the process-wide fill. It runs detached from the
// caller so one impatient request cannot cancel the acquisition every other
// caller is waiting on.
func (s *FeedService) flight(ctx context.Context) <-chan singleflight.Result {
	return s.group.DoChan(flightKey, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.AcquireTimeout)
		defer cancel()
		return s.fill(fctx), nil
	})
}

// Refresh acquires live data through the same flight as cache misses,
// ignoring the TTL, and refreshes the cache on success. Scheduled jobs use it
// so that at most one acquisition runs per process. ok is false in hosted
// mode, when the acquisition produced nothing, or when ctx ends first.
func (s *FeedService) Refresh(ctx context.Context) (*acquire.Result, bool) {
	if s.opts.Hosted {
		return nil, false
	}
	select {
	case r := <-s.flight(ctx):
		live := r.Val.(flightResult).live
		return live, live != nil
	case <-ctx.Done():
		return nil, false
	}
}

// SharedAcquirer adapts Refresh to the Acquirer interface for FetchJob. The
// per-tool limit is the service's own.
func (s *FeedService) SharedAcquirer() Acquirer { return sharedAcquirer{s} }

type sharedAcquirer struct{ s *FeedService }

func (a sharedAcquirer) AcquireAll(ctx context.Context, _ int) (*acquire.Result, bool) {
	return a.s.Refresh(ctx)
}

// fill runs inside the flight. Entries with data are cached; an empty
// result is not, so the next request tries again.
func (s *FeedService) fill(ctx context.Context) flightResult {
	var fr flightResult
	if s.opts.Hosted {
		fr.entry = s.fallback(ctx)
	} else {
		fr = s.acquire(ctx)
	}
	if e := fr.entry; len(e.data) > 0 {
		e.filledAt = s.opts.Now()
		s.mu.Lock()
		s.entry = e
		s.mu.Unlock()
		cacheEvents.WithLabelValues("fill").Inc()
	}
	return fr
}

func (s *FeedService) acquire(ctx context.Context) flightResult {
	s.mu.Lock()
	s.acquisitions++
	s.mu.Unlock()

	res, ok := s.deps.Acquirer.AcquireAll(ctx, s.opts.MaxPerTool)
	if !ok {
		log.Warn().Str("component", "feed").Msg("live acquisition produced nothing, falling back")
		return flightResult{entry: s.fallback(ctx)}
	}
	at := res.FetchedAt
	if at.IsZero() {
		at = s.opts.Now()
	}
	if s.opts.PersistLive {
		snap := domain.NewSnapshot(at, string(res.Source), res.Translated, res.Tools)
		if _, err := s.deps.Snapshots.Save(ctx, snap); err != nil {
			log.Error().Str("component", "feed").Err(err).Msg("persist snapshot failed, serving in-memory data")
		}
	}
	return flightResult{
		entry: &cacheEntry{data: res.Tools, capturedAt: at, source: string(res.Source)},
		live:  res,
	}
}

// fallback serves the snapshot, then placeholder or empty data.
func (s *FeedService) fallback(ctx context.Context) *cacheEntry {
	snap, err := s.deps.Snapshots.Load(ctx)
	if err == nil {
		return &cacheEntry{data: snap.Data, capturedAt: snap.FetchedAt, source: SourceSnapshot}
	}
	if !errors.Is(err, domain.ErrNoSnapshot) {
		log.Warn().Str("component", "feed").Err(err).Msg("snapshot unreadable, treating as missing")
	}
	now := s.opts.Now()
	if s.opts.UsePlaceholder && s.deps.Catalog != nil {
		ph := providers.Placeholder{Window: s.opts.Window}
		return &cacheEntry{data: ph.Generate(s.deps.Catalog.All(), now), capturedAt: now, source: SourceMock}
	}
	return &cacheEntry{capturedAt: now, source: SourceUnavailable}
}

// deadlineFallback prefers a stale entry over the snapshot. The caller's
// context is already done, so reads get a short detached budget.
func (s *FeedService) deadlineFallback(ctx context.Context) *cacheEntry {
	s.mu.RLock()
	e := s.entry
	s.mu.RUnlock()
	if e != nil {
		return e
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	return s.fallback(fctx)
}

// windowed applies the read-time window relative to the capture time and
// drops tools left without posts. The cached slices are never modified.
func (s *FeedService) windowed(e *cacheEntry) []domain.ToolWithPosts {
	ref := e.capturedAt
	if ref.IsZero() {
		ref = s.opts.Now()
	}
	out := make([]domain.ToolWithPosts, 0, len(e.data))
	for _, t := range e.data {
		posts := domain.WithinWindow(t.Posts, ref, s.opts.Window)
		if len(posts) == 0 {
			continue
		}
		t.Posts = posts
		t.Normalize()
		out = append(out, t)
	}
	return out
}

// Acquisitions is the number of live acquisitions started so far.
func (s *FeedService) Acquisitions() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.acquisitions
}
