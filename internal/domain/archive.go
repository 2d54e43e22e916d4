package domain

import "time"

// ArchiveRetentionDays bounds how long archived posts are kept.
const ArchiveRetentionDays = 90

// ArchivedPost is a post plus the moment it entered the archive.
type ArchivedPost struct {
	Post
	ArchivedAt time.Time `json:"archivedAt"`
}

// ArchiveTool is the archive record of one tool.
type ArchiveTool struct {
	Tool
	Posts []ArchivedPost `json:"posts"`
}

// Archive is the persisted rolling history keyed by tool id.
type Archive struct {
	CreatedAt  time.Time               `json:"createdAt"`
	UpdatedAt  time.Time               `json:"updatedAt"`
	TotalPosts int                     `json:"totalPosts"`
	Tools      map[string]*ArchiveTool `json:"data"`
}

// NewArchive returns an empty archive document.
func NewArchive(now time.Time) *Archive {
	return &Archive{
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Tools:     map[string]*ArchiveTool{},
	}
}

// Recount recomputes TotalPosts from the stored lists.
func (a *Archive) Recount() {
	n := 0
	for _, t := range a.Tools {
		n += len(t.Posts)
	}
	a.TotalPosts = n
}

// DateRange bounds an archive query.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ArchiveView is the result of an archive query.
type ArchiveView struct {
	DateRange  DateRange       `json:"dateRange"`
	TotalPosts int             `json:"totalPosts"`
	ToolsCount int             `json:"toolsCount"`
	Entries    []TimelineEntry `json:"data"`
}

// ArchiveStats summarizes the archive. DailyCounts is keyed by UTC calendar day.
type ArchiveStats struct {
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	TotalPosts     int            `json:"totalPosts"`
	ToolsCount     int            `json:"toolsCount"`
	DailyCounts    map[string]int `json:"dailyCounts"`
	CategoryCounts map[string]int `json:"categoryCounts"`
}

// DayKey formats t as the UTC calendar day used by ArchiveStats.
func DayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }
