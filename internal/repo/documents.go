package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// DocumentStore reads and writes whole documents by key. Get returns
// domain.ErrDocumentNotFound for keys that were never written.
//
// Quarantine moves the current document aside under a name carrying
// suffix and returns where it went. After it, Get on key reports
// domain.ErrDocumentNotFound.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
	Quarantine(ctx context.Context, key, suffix string) (string, error)
}

// GetDocument loads one document row.
func GetDocument(ctx context.Context, db *gorm.DB, key string) (*domain.Document, error) {
	var doc domain.Document
	err := db.WithContext(ctx).Where("key = ?", key).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// PutDocument inserts or replaces the body stored under key.
func PutDocument(ctx context.Context, db *gorm.DB, key string, body []byte) error {
	doc := domain.Document{Key: key, Body: body, UpdatedAt: time.Now().UTC()}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
}

// SQLDocumentStore keeps documents in the documents table.
type SQLDocumentStore struct {
	db *gorm.DB
}

// NewSQLDocumentStore wraps an opened and migrated database.
func NewSQLDocumentStore(db *gorm.DB) *SQLDocumentStore {
	return &SQLDocumentStore{db: db}
}

func (s *SQLDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := GetDocument(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	return doc.Body, nil
}

func (s *SQLDocumentStore) Put(ctx context.Context, key string, body []byte) error {
	return PutDocument(ctx, s.db, key, body)
}

// Quarantine renames the row to key+suffix.
func (s *SQLDocumentStore) Quarantine(ctx context.Context, key, suffix string) (string, error) {
	moved := key + suffix
	res := s.db.WithContext(ctx).Model(&domain.Document{}).
		Where("key = ?", key).
		Update("key", moved)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", domain.ErrDocumentNotFound
	}
	return moved, nil
}

// FileDocumentStore keeps each document in its own file. Writes go to a
// temporary file in the same directory which is then renamed over the
// target, so readers never observe a partial document.
type FileDocumentStore struct {
	mu    sync.Mutex
	paths map[string]string
}

// NewFileDocumentStore maps document keys to file paths.
func NewFileDocumentStore(paths map[string]string) *FileDocumentStore {
	cp := make(map[string]string, len(paths))
	for k, v := range paths {
		cp[k] = v
	}
	return &FileDocumentStore{paths: cp}
}

func (s *FileDocumentStore) path(key string) (string, error) {
	p, ok := s.paths[key]
	if !ok || p == "" {
		return "", fmt.Errorf("no file configured for document %q", key)
	}
	return p, nil
}

func (s *FileDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrDocumentNotFound
	}
	return body, err
}

func (s *FileDocumentStore) Put(ctx context.Context, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Quarantine renames the document file to <path><suffix>.
func (s *FileDocumentStore) Quarantine(ctx context.Context, key, suffix string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := s.path(key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	moved := p + suffix
	if err := os.Rename(p, moved); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrDocumentNotFound
		}
		return "", err
	}
	return moved, nil
}
