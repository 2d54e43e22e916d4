// Catalog HTTP handlers.
//
// This file exposes the static tool catalog:
//   - GET /tools                 (list, optional category filter)
//   - GET /tools/categories      (category list)
//   - GET /tools/search/{query}  (ranked search)
//   - GET /tools/{id}            (single tool)
//   - GET /health, GET /stats    (liveness and catalog summary)
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// ListTools godoc
// @ID          listTools
// @Summary     List catalog tools
// @Description Returns every tracked tool, optionally restricted to one category.
// @Tags        Tools
// @Produce     json
// @Param       category  query  string  false  "Category id, or all"  example(chatbots)
// @Success     200  {object}  handlers.ToolsResponse
// @Router      /tools [get]
func (h *Handlers) ListTools(c *gin.Context) {
	tools := h.catalog.ByCategory(strings.TrimSpace(c.Query("category")))
	ok(c, http.StatusOK, ToolsResponse{Success: true, Count: len(tools), Data: tools})
}

// Categories godoc
// @ID          listCategories
// @Summary     List categories
// @Tags        Tools
// @Produce     json
// @Success     200  {object}  handlers.CategoriesResponse
// @Router      /tools/categories [get]
func (h *Handlers) Categories(c *gin.Context) {
	ok(c, http.StatusOK, CategoriesResponse{Success: true, Data: h.catalog.Categories()})
}

// SearchTools godoc
// @ID          searchTools
// @Summary     Search tools
// @Description Ranks tools by name, company, handle, category and description.
// @Tags        Tools
// @Produce     json
// @Param       query  path   string  true   "Search text"  example(video)
// @Param       limit  query  int     false  "Max results"  minimum(1) maximum(50) default(20)
// @Success     200  {object}  handlers.ToolsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Empty query"
// @Router      /tools/search/{query} [get]
func (h *Handlers) SearchTools(c *gin.Context) {
	q := strings.TrimSpace(c.Param("query"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query required")
		return
	}
	tools := h.catalog.Search(q, queryLimit(c, 20, 50))
	if tools == nil {
		tools = []domain.Tool{}
	}
	ok(c, http.StatusOK, ToolsResponse{Success: true, Count: len(tools), Data: tools})
}

// GetTool godoc
// @ID          getTool
// @Summary     Get one tool
// @Tags        Tools
// @Produce     json
// @Param       id  path  string  true  "Tool id"  example(claude)
// @Success     200  {object}  handlers.ToolResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown tool"
// @Router      /tools/{id} [get]
func (h *Handlers) GetTool(c *gin.Context) {
	t, err := h.catalog.ByID(c.Param("id"))
	if errors.Is(err, domain.ErrToolNotFound) {
		fail(c, http.StatusNotFound, ErrCodeToolNotFound, "tool not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ToolResponse{Success: true, Data: t})
}

// Health godoc
// @ID          health
// @Summary     Liveness probe
// @Tags        System
// @Produce     json
// @Success     200  {object}  map[string]any
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"mode":      h.opts.Mode,
		"hosted":    h.opts.Hosted,
	})
}

// Stats godoc
// @ID          stats
// @Summary     Catalog summary
// @Tags        System
// @Produce     json
// @Success     200  {object}  map[string]any
// @Router      /stats [get]
func (h *Handlers) Stats(c *gin.Context) {
	categories := 0
	for _, cat := range h.catalog.Categories() {
		if cat.ID != "all" {
			categories++
		}
	}
	st := h.feed.Status(c.Request.Context())
	ok(c, http.StatusOK, gin.H{
		"totalTools":  len(h.catalog.All()),
		"categories":  categories,
		"mode":        h.opts.Mode,
		"lastUpdated": st.LastUpdated,
	})
}
