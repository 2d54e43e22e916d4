package domain

import "time"

// Well-known document keys.
const (
	DocSnapshot = "current"
	DocArchive  = "archive"
)

// Document is a whole JSON document stored under a key. Snapshot and archive
// persistence rewrite the full body on every save.
//
// Fields:
//   - Key: primary key ("current" for the snapshot, "archive" for the archive).
//   - Body: raw JSON.
//   - UpdatedAt: managed by GORM on every save.
type Document struct {
	Key       string    `gorm:"type:varchar(64);primaryKey"`
	Body      []byte    `gorm:"type:blob;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }
