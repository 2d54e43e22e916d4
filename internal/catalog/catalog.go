// Package catalog holds the static list of tracked AI tools. The default
// catalog is embedded in the binary; an optional YAML file can replace it.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tbourn/ai-tracker/internal/domain"
	"github.com/tbourn/ai-tracker/internal/search"
)

//go:embed catalog.json
var embedded []byte

type document struct {
	Categories []domain.Category `json:"categories" yaml:"categories"`
	Tools      []domain.Tool     `json:"tools"      yaml:"tools"`
}

// Catalog is an immutable, concurrency-safe view of the tool list.
type Catalog struct {
	tools      []domain.Tool
	byID       map[string]int
	categories []domain.Category
	index      search.Index
}

// HandleGroup is a sanitized handle with every tool that shares it.
type HandleGroup struct {
	Handle string
	Tools  []domain.Tool
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(embedded, &doc); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return New(doc.Tools, doc.Categories)
}

// Load returns the embedded catalog, or the YAML file at path when set.
// A YAML file without categories inherits the embedded ones.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if len(doc.Categories) == 0 {
		def, err := Default()
		if err != nil {
			return nil, err
		}
		doc.Categories = def.categories
	}
	return New(doc.Tools, doc.Categories)
}

// New validates tools and builds a Catalog. Ids must be unique and every tool
// needs a handle.
func New(tools []domain.Tool, categories []domain.Category) (*Catalog, error) {
	if len(tools) == 0 {
		return nil, fmt.Errorf("catalog has no tools")
	}
	c := &Catalog{
		tools:      make([]domain.Tool, 0, len(tools)),
		byID:       make(map[string]int, len(tools)),
		categories: categories,
	}
	labels := make(map[string]string, len(categories))
	for _, cat := range categories {
		labels[cat.ID] = cat.Label
	}
	docs := make([]search.Document, 0, len(tools))
	for _, t := range tools {
		t.ID = strings.TrimSpace(t.ID)
		t.Handle = domain.SanitizeHandle(t.Handle)
		if t.ID == "" || t.Handle == "" {
			return nil, fmt.Errorf("catalog entry %q: id and handle are required", t.Name)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", t.ID)
		}
		if t.CategoryLabel == "" {
			t.CategoryLabel = labels[t.Category]
		}
		c.byID[t.ID] = len(c.tools)
		c.tools = append(c.tools, t)
		docs = append(docs, search.Document{
			ID:   t.ID,
			Text: strings.Join([]string{t.Name, t.Company, t.Handle, t.CategoryLabel, t.Description}, " "),
		})
	}
	c.index = search.NewIndex(docs)
	return c, nil
}

// All returns a copy of every tool in catalog order.
func (c *Catalog) All() []domain.Tool {
	return append([]domain.Tool(nil), c.tools...)
}

// Len is the number of tools.
func (c *Catalog) Len() int { return len(c.tools) }

// ByID looks up one tool.
func (c *Catalog) ByID(id string) (domain.Tool, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Tool{}, domain.ErrToolNotFound
	}
	return c.tools[i], nil
}

// ByCategory returns the tools of one category; "" and "all" return everything.
func (c *Catalog) ByCategory(category string) []domain.Tool {
	if category == "" || category == "all" {
		return c.All()
	}
	out := make([]domain.Tool, 0)
	for _, t := range c.tools {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the selectable categories.
func (c *Catalog) Categories() []domain.Category {
	return append([]domain.Category(nil), c.categories...)
}

// Search ranks tools against query. When the token index finds nothing a
// case-insensitive substring match over name, company and description is used.
func (c *Catalog) Search(query string, k int) []domain.Tool {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Tool{}
	}
	out := make([]domain.Tool, 0)
	for _, r := range c.index.TopK(query, k) {
		out = append(out, c.tools[c.byID[r.ID]])
	}
	if len(out) > 0 {
		return out
	}
	q := strings.ToLower(query)
	for _, t := range c.tools {
		hay := strings.ToLower(t.Name + " " + t.Company + " " + t.Description)
		if strings.Contains(hay, q) {
			out = append(out, t)
			if k > 0 && len(out) == k {
				break
			}
		}
	}
	return out
}

// GroupByHandle groups tools by sanitized handle, in first-seen order.
func (c *Catalog) GroupByHandle() []HandleGroup {
	return GroupByHandle(c.tools)
}

// GroupByHandle groups an arbitrary tool list by sanitized handle.
func GroupByHandle(tools []domain.Tool) []HandleGroup {
	pos := make(map[string]int)
	var out []HandleGroup
	for _, t := range tools {
		h := domain.SanitizeHandle(t.Handle)
		if h == "" {
			continue
		}
		key := strings.ToLower(h)
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, HandleGroup{Handle: h})
		}
		out[i].Tools = append(out[i].Tools, t)
	}
	return out
}
