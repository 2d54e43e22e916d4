// Archive HTTP handlers.
//
// This file exposes the rolling post history:
//   - GET /tools/archive            (timeline over the last N days)
//   - GET /tools/archive/stats      (daily and per-category counts)
//   - GET /tools/archive/{toolId}   (one tool; 404 when empty)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-tracker/internal/services"
)

// Archive godoc
// @ID          archive
// @Summary     Archived posts
// @Tags        Archive
// @Produce     json
// @Param       category  query  string  false  "Category id, or all"  example(image)
// @Param       days      query  int     false  "Days back"            minimum(1) maximum(90) default(90)
// @Param       limit     query  int     false  "Max entries"          minimum(1) maximum(5000) default(500)
// @Success     200  {object}  handlers.ArchiveResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Archive unreadable"
// @Router      /tools/archive [get]
func (h *Handlers) Archive(c *gin.Context) {
	view, err := h.archive.Query(c.Request.Context(), services.ArchiveQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Days:     queryDays(c),
		Limit:    queryLimit(c, services.DefaultArchiveLimit, 5000),
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeArchiveFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ArchiveResponse{Success: true, ArchiveView: view})
}

// ArchiveStats godoc
// @ID          archiveStats
// @Summary     Archive statistics
// @Tags        Archive
// @Produce     json
// @Success     200  {object}  handlers.ArchiveStatsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Archive unreadable"
// @Router      /tools/archive/stats [get]
func (h *Handlers) ArchiveStats(c *gin.Context) {
	st, err := h.archive.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeArchiveFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ArchiveStatsResponse{Success: true, Data: st})
}

// ToolArchive godoc
// @ID          toolArchive
// @Summary     One tool's archived posts
// @Tags        Archive
// @Produce     json
// @Param       toolId  path   string  true   "Tool id"    example(claude)
// @Param       days    query  int     false  "Days back"  minimum(1) maximum(90) default(90)
// @Success     200  {object}  handlers.ArchiveResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown tool or nothing archived"
// @Failure     500  {object}  handlers.ErrorResponse  "Archive unreadable"
// @Router      /tools/archive/{toolId} [get]
func (h *Handlers) ToolArchive(c *gin.Context) {
	view, err := h.archive.ToolArchive(c.Request.Context(), c.Param("toolId"), queryDays(c))
	switch {
	case errors.Is(err, services.ErrToolNotFound):
		fail(c, http.StatusNotFound, ErrCodeToolNotFound, "tool not found")
		return
	case errors.Is(err, services.ErrNoArchive):
		fail(c, http.StatusNotFound, ErrCodeNoArchive, "no archived posts for this tool")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeArchiveFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ArchiveResponse{Success: true, ArchiveView: view})
}
