package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/ai-tracker/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid schema leakage across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newFileStore(t *testing.T) (*FileDocumentStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	return NewFileDocumentStore(map[string]string{
		domain.DocSnapshot: filepath.Join(dir, "cached-posts.json"),
		domain.DocArchive:  filepath.Join(dir, "archive.json"),
	}), dir
}

// exerciseStore runs the contract every DocumentStore must satisfy.
func exerciseStore(t *testing.T, s DocumentStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, domain.DocArchive); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("Get missing: err=%v; want ErrDocumentNotFound", err)
	}
	if err := s.Put(ctx, domain.DocArchive, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, domain.DocArchive, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err := s.Get(ctx, domain.DocArchive)
	if err != nil || string(got) != `{"v":2}` {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if _, err := s.Get(ctx, domain.DocSnapshot); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("keys must be independent, got err=%v", err)
	}

	if _, err := s.Quarantine(ctx, domain.DocArchive, ".bad"); err != nil {
		t.Fatalf("Quarantine: %v", err)
	}
	if _, err := s.Get(ctx, domain.DocArchive); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("Get after Quarantine: err=%v; want ErrDocumentNotFound", err)
	}
	if _, err := s.Quarantine(ctx, domain.DocArchive, ".bad"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("Quarantine missing: err=%v; want ErrDocumentNotFound", err)
	}
}

func TestSQLDocumentStore_Contract(t *testing.T) {
	exerciseStore(t, NewSQLDocumentStore(newTestDB(t)))
}

func TestSQLDocumentStore_UpsertKeepsOneRow(t *testing.T) {
	db := newTestDB(t)
	s := NewSQLDocumentStore(db)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.Put(ctx, domain.DocSnapshot, []byte(fmt.Sprintf(`{"n":%d}`, i))); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}
	var n int64
	if err := db.Model(&domain.Document{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("rows = %d, err=%v; want 1", n, err)
	}
}

func TestFileDocumentStore_Contract(t *testing.T) {
	s, _ := newFileStore(t)
	exerciseStore(t, s)
}

func TestFileDocumentStore_CreatesDirsAndLeavesNoTempFiles(t *testing.T) {
	s, dir := newFileStore(t)
	if err := s.Put(context.Background(), domain.DocSnapshot, []byte(`{}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "cached-posts.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("dir entries = %v", names)
	}
}

func TestFileDocumentStore_UnknownKeyAndCancelledContext(t *testing.T) {
	s, _ := newFileStore(t)
	if err := s.Put(context.Background(), "other", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unmapped key")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Put(ctx, domain.DocSnapshot, []byte(`{}`)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Put with cancelled ctx: %v", err)
	}
}
