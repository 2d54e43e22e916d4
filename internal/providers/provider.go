// Package providers adapts the upstream post sources (public syndication
// scrape, a paid third-party API and the official X API) to one Post shape.
//
// Adapters never return errors past their boundary: every call yields a
// tagged Result whose Reason explains an empty outcome. The orchestrator
// treats any non-OK result as "try the next source".
package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// Reason explains why a fetch produced no posts.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNoData        Reason = "no_data"
	ReasonNotConfigured Reason = "not_configured"
	ReasonRateLimited   Reason = "rate_limited"
	ReasonTimeout       Reason = "timeout"
	ReasonHTTP          Reason = "http_error"
	ReasonParse         Reason = "parse_error"
	ReasonTransport     Reason = "transport_error"
)

// Result is the outcome of one adapter call. OK implies len(Posts) > 0.
type Result struct {
	OK     bool
	Posts  []domain.Post
	Reason Reason
	Err    error
}

// Success wraps posts; an empty list becomes a no_data failure.
func Success(posts []domain.Post) Result {
	if len(posts) == 0 {
		return Result{Reason: ReasonNoData}
	}
	return Result{OK: true, Posts: posts}
}

// Failure builds a non-OK result. When reason is empty it is derived from err.
func Failure(reason Reason, err error) Result {
	if reason == ReasonNone {
		reason = Classify(err)
	}
	return Result{Reason: reason, Err: err}
}

// Provider fetches the recent posts of a single handle.
type Provider interface {
	Name() domain.Source
	Configured() bool
	FetchPosts(ctx context.Context, handle string, max int) Result
}

// Cooldowner is implemented by providers that track an upstream quota. A
// positive duration means the provider should not be called before it elapses.
type Cooldowner interface {
	Cooldown(now time.Time) time.Duration
}

// BulkResult is the outcome of a catalog-wide fetch.
type BulkResult struct {
	Tools  []domain.ToolWithPosts
	Reason Reason
	Err    error
}

// BulkProvider fetches posts for many tools in one pass. It is used as the
// last resort when no per-handle provider produced anything.
type BulkProvider interface {
	Name() domain.Source
	Configured() bool
	FetchAll(ctx context.Context, tools []domain.Tool, maxPerTool int) BulkResult
}

var errParse = errors.New("parse")

// parseError marks err as a response decoding failure.
func parseError(err error) error {
	return fmt.Errorf("%w: %w", errParse, err)
}

// Classify maps an adapter error to a Reason.
func Classify(err error) Reason {
	if err == nil {
		return ReasonNoData
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return ReasonTimeout
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		if herr.StatusCode == http.StatusTooManyRequests {
			return ReasonRateLimited
		}
		return ReasonHTTP
	}
	if errors.Is(err, errParse) {
		return ReasonParse
	}
	return ReasonTransport
}
