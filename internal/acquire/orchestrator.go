// Package acquire runs one acquisition pass over the tool catalog: every
// distinct handle is fetched once through the provider chain and the posts
// are fanned out to all tools that share it.
package acquire

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/ai-tracker/internal/catalog"
	"github.com/tbourn/ai-tracker/internal/domain"
	"github.com/tbourn/ai-tracker/internal/providers"
)

// Catalog is the subset of *catalog.Catalog the orchestrator reads.
type Catalog interface {
	All() []domain.Tool
	GroupByHandle() []catalog.HandleGroup
}

// Translator rewrites post text after acquisition.
type Translator interface {
	Configured() bool
	TranslateTools(ctx context.Context, tools []domain.ToolWithPosts) []domain.ToolWithPosts
}

// Options tunes a pass. Zero values fall back to the defaults in New.
type Options struct {
	MaxPerTool  int
	Concurrency int           // handles fetched in parallel per batch
	BatchDelay  time.Duration // pause between batches
	CallTimeout time.Duration // hard limit for one provider call
	MaxCooldown time.Duration // longest provider cooldown worth waiting out
	Now         func() time.Time
}

// Result is a successful pass.
type Result struct {
	Tools      []domain.ToolWithPosts
	Source     domain.Source
	Translated bool
	FetchedAt  time.Time
	Handles    int // distinct handles attempted
	Served     int // handles that produced posts
}

// Orchestrator owns the provider chain. Providers are tried in slice order,
// so the slice is also the priority order.
type Orchestrator struct {
	catalog    Catalog
	providers  []providers.Provider
	bulk       providers.BulkProvider
	translator Translator
	opts       Options
}

// New builds an Orchestrator. bulk and translator may be nil.
func New(cat Catalog, chain []providers.Provider, bulk providers.BulkProvider, tr Translator, opts Options) *Orchestrator {
	if opts.MaxPerTool <= 0 {
		opts.MaxPerTool = 10
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 30 * time.Second
	}
	if opts.MaxCooldown <= 0 {
		opts.MaxCooldown = 2 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{catalog: cat, providers: chain, bulk: bulk, translator: tr, opts: opts}
}

type handleOutcome struct {
	posts    []domain.Post
	priority int // index into the chain, -1 when nothing was produced
}

// AcquireAll fetches every handle and returns the tools that have posts,
// sorted by newest post. ok is false when no source produced anything.
// maxPerTool <= 0 uses the configured default.
//
// Source is the lowest-priority provider that served any handle, so a pass
// that needed a fallback anywhere is attributed to that fallback.
func (o *Orchestrator) AcquireAll(ctx context.Context, maxPerTool int) (*Result, bool) {
	started := o.opts.Now()
	if maxPerTool <= 0 {
		maxPerTool = o.opts.MaxPerTool
	}
	lg := log.With().Str("component", "acquire").Logger()

	groups := o.catalog.GroupByHandle()
	outcomes := make([]handleOutcome, len(groups))

	for start := 0; start < len(groups); start += o.opts.Concurrency {
		// the pause runs from the end of one batch to the start of the next
		if start > 0 && o.opts.BatchDelay > 0 {
			sleep(ctx, o.opts.BatchDelay)
		}
		if ctx.Err() != nil {
			lg.Warn().Err(ctx.Err()).Int("done", start).Int("handles", len(groups)).Msg("acquisition interrupted")
			for i := start; i < len(groups); i++ {
				outcomes[i].priority = -1
			}
			break
		}
		end := min(start+o.opts.Concurrency, len(groups))
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				outcomes[i] = o.fetchHandle(ctx, groups[i].Handle, maxPerTool)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := &Result{Handles: len(groups)}
	lowest := -1
	for i, oc := range outcomes {
		if oc.priority < 0 || len(oc.posts) == 0 {
			continue
		}
		res.Served++
		lowest = max(lowest, oc.priority)
		for _, t := range groups[i].Tools {
			tw := domain.ToolWithPosts{Tool: t, Posts: append([]domain.Post(nil), oc.posts...)}
			tw.Normalize()
			res.Tools = append(res.Tools, tw)
		}
	}
	if lowest >= 0 {
		res.Source = o.providers[lowest].Name()
	}

	if len(res.Tools) == 0 && o.bulk != nil && o.bulk.Configured() && ctx.Err() == nil {
		lg.Info().Str("provider", string(o.bulk.Name())).Msg("per-handle sources empty, trying bulk fallback")
		bctx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
		br := o.bulk.FetchAll(bctx, o.catalog.All(), maxPerTool)
		cancel()
		recordFetch(o.bulk.Name(), br.Reason)
		if len(br.Tools) > 0 {
			res.Tools = br.Tools
			res.Source = o.bulk.Name()
			res.Served = len(catalog.GroupByHandle(toolsOf(br.Tools)))
		} else {
			lg.Warn().Str("provider", string(o.bulk.Name())).Str("reason", string(br.Reason)).Err(br.Err).Msg("bulk fallback produced nothing")
		}
	}

	if len(res.Tools) == 0 {
		observeAcquisition(started, o.opts.Now(), false)
		lg.Warn().Int("handles", len(groups)).Msg("acquisition produced no posts")
		return nil, false
	}

	domain.SortToolsByActivity(res.Tools)
	if o.translator != nil && o.translator.Configured() {
		res.Tools = o.translator.TranslateTools(ctx, res.Tools)
		res.Translated = true
	}
	res.FetchedAt = o.opts.Now()
	observeAcquisition(started, res.FetchedAt, true)
	lg.Info().
		Str("source", string(res.Source)).
		Int("handles", res.Handles).
		Int("served", res.Served).
		Int("tools", len(res.Tools)).
		Int("posts", domain.CountPosts(res.Tools)).
		Bool("translated", res.Translated).
		Dur("took", res.FetchedAt.Sub(started)).
		Msg("acquisition finished")
	return res, true
}

// fetchHandle walks the chain until one provider returns posts.
func (o *Orchestrator) fetchHandle(ctx context.Context, handle string, limit int) handleOutcome {
	lg := log.With().Str("component", "acquire").Str("handle", handle).Logger()
	for prio, p := range o.providers {
		if ctx.Err() != nil {
			break
		}
		if !p.Configured() {
			continue
		}
		if cd, ok := p.(providers.Cooldowner); ok {
			if wait := cd.Cooldown(o.opts.Now()); wait > 0 {
				if wait > o.opts.MaxCooldown {
					lg.Info().Str("provider", string(p.Name())).Dur("cooldown", wait).Msg("provider cooling down, skipping")
					recordFetch(p.Name(), providers.ReasonRateLimited)
					continue
				}
				lg.Debug().Str("provider", string(p.Name())).Dur("cooldown", wait).Msg("waiting out provider cooldown")
				if !sleep(ctx, wait) {
					break
				}
			}
		}

		cctx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
		res := p.FetchPosts(cctx, handle, limit)
		cancel()
		recordFetch(p.Name(), res.Reason)
		if res.OK && len(res.Posts) > 0 {
			lg.Debug().Str("provider", string(p.Name())).Int("posts", len(res.Posts)).Msg("handle served")
			return handleOutcome{posts: res.Posts, priority: prio}
		}
		lg.Debug().Str("provider", string(p.Name())).Str("reason", string(res.Reason)).Err(res.Err).Msg("provider empty, falling through")
	}
	return handleOutcome{priority: -1}
}

func toolsOf(tools []domain.ToolWithPosts) []domain.Tool {
	out := make([]domain.Tool, len(tools))
	for i, t := range tools {
		out[i] = t.Tool
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
