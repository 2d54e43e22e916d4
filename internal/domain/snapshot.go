package domain

import "time"

// Snapshot is the persisted capture of one acquisition run. It is the only
// data source of hosted deployments.
type Snapshot struct {
	FetchedAt  time.Time       `json:"fetchedAt"`
	Source     string          `json:"source"`
	Translated bool            `json:"translated,omitempty"`
	ToolCount  int             `json:"toolCount"`
	TweetCount int             `json:"tweetCount"`
	Data       []ToolWithPosts `json:"data"`
}

// NewSnapshot builds a snapshot and fills the aggregate counters.
func NewSnapshot(at time.Time, source string, translated bool, tools []ToolWithPosts) Snapshot {
	if tools == nil {
		tools = []ToolWithPosts{}
	}
	return Snapshot{
		FetchedAt:  at.UTC(),
		Source:     source,
		Translated: translated,
		ToolCount:  len(tools),
		TweetCount: CountPosts(tools),
		Data:       tools,
	}
}

// Empty reports whether the snapshot carries no tools.
func (s Snapshot) Empty() bool { return len(s.Data) == 0 }
