package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tbourn/ai-tracker/internal/domain"
)

func TestOpenSQLite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "tracker.db")

	db, err := OpenSQLite(path)
	if db != nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("OpenSQLite(%q) = %v, %v; want ErrNotExist", path, db, err)
	}
}

func TestOpenSQLite_ReadyForDocuments(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	pragmas := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
	}
	for name, want := range pragmas {
		var got string
		if err := db.Raw("PRAGMA " + name + ";").Row().Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", name, err)
		}
		if strings.ToLower(got) != want {
			t.Fatalf("PRAGMA %s = %q; want %q", name, got, want)
		}
	}
	if n := sqlDB.Stats().MaxOpenConnections; n != 4 {
		t.Fatalf("MaxOpenConnections = %d; want 4", n)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := EnableTracing(db); err != nil {
		t.Fatalf("EnableTracing: %v", err)
	}

	// snapshot and archive live side by side in one table
	ctx := context.Background()
	for key, body := range map[string]string{
		domain.DocSnapshot: `{"data":[]}`,
		domain.DocArchive:  `{"posts":{}}`,
	} {
		if err := PutDocument(ctx, db, key, []byte(body)); err != nil {
			t.Fatalf("PutDocument(%s): %v", key, err)
		}
	}
	got, err := GetDocument(ctx, db, domain.DocArchive)
	if err != nil || string(got.Body) != `{"posts":{}}` || got.UpdatedAt.IsZero() {
		t.Fatalf("GetDocument = %+v, %v", got, err)
	}
	var rows int64
	db.Model(&domain.Document{}).Count(&rows)
	if rows != 2 {
		t.Fatalf("documents rows = %d; want 2", rows)
	}
}
