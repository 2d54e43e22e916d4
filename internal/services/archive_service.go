// Package services – ArchiveService
//
// ArchiveService keeps the rolling post history. Appends are serialized,
// deduplicated on (tool id, post id) with the first stored copy winning, and
// pruned to the retention window on every write. Aggregates are always
// recomputed from the stored posts.
package services

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/ai-tracker/internal/domain"
	"github.com/tbourn/ai-tracker/internal/utils"
)

// Archive query defaults.
const (
	DefaultArchiveDays  = domain.ArchiveRetentionDays
	DefaultArchiveLimit = 500
)

// ArchiveStore persists the archive document.
type ArchiveStore interface {
	Load(ctx context.Context) (*domain.Archive, error)
	Save(ctx context.Context, a *domain.Archive) error
}

// ToolLookup resolves catalog ids.
type ToolLookup interface {
	ByID(id string) (domain.Tool, error)
}

// ArchiveQuery filters an archive read. Zero values mean "everything" for
// Category and ToolID, the retention window for Days, DefaultArchiveLimit
// for Limit.
type ArchiveQuery struct {
	Category string
	ToolID   string
	Days     int
	Limit    int
}

// AppendResult reports one append.
type AppendResult struct {
	Added      int `json:"added"`
	TotalPosts int `json:"totalPosts"`
	Pruned     int `json:"pruned"`
}

// ArchiveService owns reads and writes of the archive.
type ArchiveService struct {
	store   ArchiveStore
	catalog ToolLookup
	now     func() time.Time

	mu sync.Mutex
}

// NewArchiveService builds an ArchiveService. catalog may be nil, in which
// case unknown tool ids are reported as having no archive.
func NewArchiveService(store ArchiveStore, catalog ToolLookup) *ArchiveService {
	return &ArchiveService{store: store, catalog: catalog, now: time.Now}
}

// Append merges tools into the archive. Posts already stored for a tool are
// skipped, as are mock posts and posts older than the retention window.
// Running the same batch twice adds nothing the second time.
func (s *ArchiveService) Append(ctx context.Context, tools []domain.ToolWithPosts) (AppendResult, error) {
	tr := otel.Tracer("services/ArchiveService")
	ctx, span := tr.Start(ctx, "Append", trace.WithAttributes(attribute.Int("tools", len(tools))))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.Load(ctx)
	if err != nil {
		return AppendResult{}, err
	}
	now := s.now().UTC()
	cutoff := now.AddDate(0, 0, -domain.ArchiveRetentionDays)

	var res AppendResult
	for _, t := range tools {
		if t.ID == "" {
			continue
		}
		rec, ok := a.Tools[t.ID]
		if !ok {
			rec = &domain.ArchiveTool{Tool: t.Tool, Posts: []domain.ArchivedPost{}}
			a.Tools[t.ID] = rec
		} else {
			rec.Tool = t.Tool
		}
		seen := make(map[string]struct{}, len(rec.Posts))
		for _, p := range rec.Posts {
			seen[p.ID] = struct{}{}
		}
		for _, p := range t.Posts {
			if p.IsMock || p.ID == "" || p.CreatedAt.Before(cutoff) {
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			rec.Posts = append(rec.Posts, domain.ArchivedPost{Post: p, ArchivedAt: now})
			res.Added++
		}
	}

	res.Pruned = prune(a, cutoff)
	a.UpdatedAt = now
	a.Recount()
	res.TotalPosts = a.TotalPosts

	if err := s.store.Save(ctx, a); err != nil {
		return res, err
	}
	span.SetAttributes(attribute.Int("added", res.Added), attribute.Int("total", res.TotalPosts))
	log.Info().Str("component", "archive").
		Int("added", res.Added).
		Int("pruned", res.Pruned).
		Int("total", res.TotalPosts).
		Msg("archive updated")
	return res, nil
}

// prune drops posts created before cutoff and tools left empty, then sorts
// what remains newest-first. It returns the number of posts removed.
func prune(a *domain.Archive, cutoff time.Time) int {
	removed := 0
	for id, rec := range a.Tools {
		kept := rec.Posts[:0]
		for _, p := range rec.Posts {
			if p.CreatedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			delete(a.Tools, id)
			continue
		}
		slices.SortStableFunc(kept, func(x, y domain.ArchivedPost) int {
			return y.CreatedAt.Compare(x.CreatedAt)
		})
		rec.Posts = kept
	}
	return removed
}

// Query returns archived posts as a newest-first timeline. TotalPosts and
// ToolsCount describe the full match; Entries is truncated to Limit.
func (s *ArchiveService) Query(ctx context.Context, q ArchiveQuery) (domain.ArchiveView, error) {
	tr := otel.Tracer("services/ArchiveService")
	ctx, span := tr.Start(ctx, "Query",
		trace.WithAttributes(
			attribute.String("category", q.Category),
			attribute.String("tool.id", q.ToolID),
			attribute.Int("days", q.Days),
		),
	)
	defer span.End()

	days, err := normalizeDays(q.Days)
	if err != nil {
		return domain.ArchiveView{}, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultArchiveLimit
	}

	a, err := s.load(ctx)
	if err != nil {
		return domain.ArchiveView{}, err
	}
	now := s.now().UTC()
	from := now.AddDate(0, 0, -days)

	entries := make([]domain.TimelineEntry, 0)
	tools := map[string]struct{}{}
	for _, id := range slices.Sorted(maps.Keys(a.Tools)) {
		rec := a.Tools[id]
		if q.ToolID != "" && id != q.ToolID {
			continue
		}
		if q.Category != "" && q.Category != "all" && rec.Category != q.Category {
			continue
		}
		for _, p := range rec.Posts {
			if p.CreatedAt.Before(from) {
				continue
			}
			e := domain.NewTimelineEntry(rec.Tool, p.Post)
			archivedAt := p.ArchivedAt
			e.ArchivedAt = &archivedAt
			entries = append(entries, e)
			tools[id] = struct{}{}
		}
	}
	domain.SortTimeline(entries)

	view := domain.ArchiveView{
		DateRange:  domain.DateRange{From: from, To: now},
		TotalPosts: len(entries),
		ToolsCount: len(tools),
		Entries:    entries,
	}
	if len(view.Entries) > limit {
		view.Entries = view.Entries[:limit]
	}
	return view, nil
}

// ToolArchive is Query scoped to one tool. It returns ErrToolNotFound for ids
// outside the catalog and ErrNoArchive when nothing is stored in range.
func (s *ArchiveService) ToolArchive(ctx context.Context, toolID string, days int) (domain.ArchiveView, error) {
	if s.catalog != nil {
		if _, err := s.catalog.ByID(toolID); err != nil {
			return domain.ArchiveView{}, err
		}
	}
	view, err := s.Query(ctx, ArchiveQuery{ToolID: toolID, Days: days})
	if err != nil {
		return view, err
	}
	if view.TotalPosts == 0 {
		return view, ErrNoArchive
	}
	return view, nil
}

// Stats recomputes daily (UTC calendar day of creation) and per-category
// counts over the whole archive.
func (s *ArchiveService) Stats(ctx context.Context) (domain.ArchiveStats, error) {
	tr := otel.Tracer("services/ArchiveService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	a, err := s.load(ctx)
	if err != nil {
		return domain.ArchiveStats{}, err
	}
	st := domain.ArchiveStats{
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		DailyCounts:    map[string]int{},
		CategoryCounts: map[string]int{},
	}
	for _, rec := range a.Tools {
		if len(rec.Posts) == 0 {
			continue
		}
		st.ToolsCount++
		st.CategoryCounts[rec.Category] += len(rec.Posts)
		for _, p := range rec.Posts {
			st.DailyCounts[domain.DayKey(p.CreatedAt)]++
			st.TotalPosts++
		}
	}
	return st, nil
}

// load reads the archive under the write lock so readers never observe a
// document between Load and Save of an append.
func (s *ArchiveService) load(ctx context.Context) (*domain.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// normalizeDays maps 0 to the retention window, caps larger values at it and
// rejects negatives.
func normalizeDays(days int) (int, error) {
	if days < 0 {
		return 0, ErrInvalidDays
	}
	if days == 0 {
		return DefaultArchiveDays, nil
	}
	return utils.Clamp(days, 1, domain.ArchiveRetentionDays), nil
}
