// Package domain defines the core types of the tracker: the static tool
// catalog entries, fetched posts, the aggregated views served by the API,
// and the persisted snapshot and archive documents.
package domain

import "strings"

// Tool describes one tracked AI product. Catalog entries are loaded once at
// startup and never mutated afterwards.
type Tool struct {
	ID            string `json:"id"            yaml:"id"`
	Name          string `json:"name"          yaml:"name"`
	Company       string `json:"company"       yaml:"company"`
	Handle        string `json:"handle"        yaml:"handle"`
	Category      string `json:"category"      yaml:"category"`
	CategoryLabel string `json:"categoryLabel" yaml:"categoryLabel"`
	BrandColor    string `json:"brandColor"    yaml:"brandColor"`
	Description   string `json:"description"   yaml:"description"`
	Logo          string `json:"logo"          yaml:"logo"`
}

// Category is one selectable catalog grouping.
type Category struct {
	ID    string `json:"id"    yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon"  yaml:"icon"`
}

// SanitizeHandle strips surrounding whitespace and a leading '@'.
func SanitizeHandle(h string) string {
	return strings.TrimPrefix(strings.TrimSpace(h), "@")
}
