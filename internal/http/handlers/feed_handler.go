// Feed HTTP handlers.
//
// This file exposes the live or snapshot feed:
//   - GET  /tools/with-posts   (tools with their recent posts)
//   - GET  /tools/timeline     (all posts, newest first)
//   - GET  /tools/status/api   (cache and snapshot state)
//   - POST /tools/refresh      (clear the cache)
//
// These endpoints never fail for lack of data; the `source` field tells the
// client whether it got live, snapshot, mock or no data.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-tracker/internal/http/middleware"
)

// ToolsWithPosts godoc
// @ID          toolsWithPosts
// @Summary     Tools with recent posts
// @Description Serves cached data within the TTL. refresh=true skips the TTL but joins any running acquisition.
// @Tags        Feed
// @Produce     json
// @Param       category  query  string  false  "Category id, or all"          example(chatbots)
// @Param       limit     query  int     false  "Max tools returned"           minimum(1) maximum(200) default(50)
// @Param       refresh   query  bool    false  "Bypass the cache TTL"
// @Success     200  {object}  handlers.FeedResponse
// @Router      /tools/with-posts [get]
func (h *Handlers) ToolsWithPosts(c *gin.Context) {
	feed := h.feed.GetToolsWithPosts(c.Request.Context(), strings.TrimSpace(c.Query("category")), queryForce(c))
	middleware.TagSource(c, feed.Source)
	if limit := queryLimit(c, 50, 200); len(feed.Data) > limit {
		feed.Data = feed.Data[:limit]
	}
	ok(c, http.StatusOK, FeedResponse{Success: true, Feed: feed})
}

// Timeline godoc
// @ID          timeline
// @Summary     Cross-tool timeline
// @Tags        Feed
// @Produce     json
// @Param       category  query  string  false  "Category id, or all"  example(coding)
// @Param       limit     query  int     false  "Max entries"          minimum(1) maximum(1000) default(100)
// @Param       refresh   query  bool    false  "Bypass the cache TTL"
// @Success     200  {object}  handlers.TimelineResponse
// @Router      /tools/timeline [get]
func (h *Handlers) Timeline(c *gin.Context) {
	tl := h.feed.GetTimeline(c.Request.Context(), strings.TrimSpace(c.Query("category")), queryForce(c))
	middleware.TagSource(c, tl.Source)
	data := tl.Data
	if limit := queryLimit(c, 100, 1000); len(data) > limit {
		data = data[:limit]
	}
	ok(c, http.StatusOK, TimelineResponse{Success: true, Source: tl.Source, Count: tl.Count, Data: data})
}

// Status godoc
// @ID          feedStatus
// @Summary     Feed status
// @Tags        Feed
// @Produce     json
// @Success     200  {object}  handlers.StatusResponse
// @Router      /tools/status/api [get]
func (h *Handlers) Status(c *gin.Context) {
	ok(c, http.StatusOK, StatusResponse{Success: true, Data: h.feed.Status(c.Request.Context())})
}

// Refresh godoc
// @ID          refresh
// @Summary     Clear the feed cache
// @Description Empties the in-memory cache and the translation memo. The persisted snapshot is untouched.
// @Tags        Feed
// @Produce     json
// @Success     200  {object}  handlers.MessageResponse
// @Router      /tools/refresh [post]
func (h *Handlers) Refresh(c *gin.Context) {
	h.feed.ClearCache()
	msg := "cache cleared; the next request acquires fresh data"
	if h.opts.Hosted {
		msg = "cache cleared; new data arrives with the next daily snapshot"
	}
	ok(c, http.StatusOK, MessageResponse{Success: true, Message: msg})
}
