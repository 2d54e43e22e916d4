// Tracker HTTP handlers.
//
// Handlers are transport-thin: they parse query parameters, call the catalog
// and the services, and wrap results in the `{success, ...}` envelope the
// dashboard consumes.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-tracker/internal/domain"
	"github.com/tbourn/ai-tracker/internal/services"
	"github.com/tbourn/ai-tracker/internal/utils"
)

//
// Service contracts (context-aware)
//

// Catalog is the read-only tool catalog.
type Catalog interface {
	All() []domain.Tool
	ByID(id string) (domain.Tool, error)
	ByCategory(category string) []domain.Tool
	Categories() []domain.Category
	Search(query string, k int) []domain.Tool
}

// FeedService serves the live or snapshot feed.
//
// Implementations must honor ctx as the serving deadline and answer with
// fallback data rather than an error when it expires.
type FeedService interface {
	GetToolsWithPosts(ctx context.Context, category string, force bool) services.Feed
	GetTimeline(ctx context.Context, category string, force bool) services.Timeline
	ClearCache()
	Status(ctx context.Context) services.Status
}

// ArchiveService reads the rolling history.
type ArchiveService interface {
	Query(ctx context.Context, q services.ArchiveQuery) (domain.ArchiveView, error)
	Stats(ctx context.Context) (domain.ArchiveStats, error)
	ToolArchive(ctx context.Context, toolID string, days int) (domain.ArchiveView, error)
}

//
// Handler wiring
//

// Options carries deployment facts the handlers report.
type Options struct {
	Hosted bool
	Mode   string // reported by health and stats: SNAPSHOT, RAPIDAPI or SCRAPE
}

// Handlers groups the tracker endpoints.
type Handlers struct {
	catalog Catalog
	feed    FeedService
	archive ArchiveService
	opts    Options
}

// New constructs a Handlers instance bound to the given services.
func New(catalog Catalog, feed FeedService, archive ArchiveService, opts Options) *Handlers {
	return &Handlers{catalog: catalog, feed: feed, archive: archive, opts: opts}
}

//
// DTOs
//

// ToolsResponse lists catalog entries.
type ToolsResponse struct {
	Success bool          `json:"success" example:"true"`
	Count   int           `json:"count" example:"35"`
	Data    []domain.Tool `json:"data"`
}

// ToolResponse wraps one catalog entry.
type ToolResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    domain.Tool `json:"data"`
}

// CategoriesResponse lists categories.
type CategoriesResponse struct {
	Success bool              `json:"success" example:"true"`
	Data    []domain.Category `json:"data"`
}

// FeedResponse is the tools-with-posts payload. Count is the number of tools
// before the limit is applied.
type FeedResponse struct {
	Success bool `json:"success" example:"true"`
	services.Feed
}

// TimelineResponse is the flattened feed.
type TimelineResponse struct {
	Success bool                   `json:"success" example:"true"`
	Source  string                 `json:"source" example:"scrape"`
	Count   int                    `json:"count" example:"120"`
	Data    []domain.TimelineEntry `json:"data"`
}

// StatusResponse wraps services.Status.
type StatusResponse struct {
	Success bool            `json:"success" example:"true"`
	Data    services.Status `json:"data"`
}

// MessageResponse acknowledges an action.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"cache cleared"`
}

// ArchiveResponse is an archive query result.
type ArchiveResponse struct {
	Success bool `json:"success" example:"true"`
	domain.ArchiveView
}

// ArchiveStatsResponse wraps domain.ArchiveStats.
type ArchiveStatsResponse struct {
	Success bool                `json:"success" example:"true"`
	Data    domain.ArchiveStats `json:"data"`
}

//
// Helpers
//

// queryLimit parses a positive "limit" query parameter, capped at max.
func queryLimit(c *gin.Context, def, max int) int {
	return utils.Clamp(utils.PositiveOr(c.Query("limit"), def), 1, max)
}

// queryDays parses "days". Missing means the retention window; values are
// capped at it and non-positive numbers fall back to it.
func queryDays(c *gin.Context) int {
	return utils.Clamp(utils.PositiveOr(c.Query("days"), domain.ArchiveRetentionDays), 1, domain.ArchiveRetentionDays)
}

func queryForce(c *gin.Context) bool {
	return utils.ParseFlag(c.Query("refresh"))
}
