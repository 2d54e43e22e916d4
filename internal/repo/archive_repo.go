package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// ArchiveRepo reads and writes the archive document.
type ArchiveRepo struct {
	store DocumentStore
	now   func() time.Time
}

func NewArchiveRepo(store DocumentStore) *ArchiveRepo {
	return &ArchiveRepo{store: store, now: time.Now}
}

// Load returns the archive. A missing document starts a fresh archive. An
// unreadable one is quarantined first so a later Save cannot overwrite it;
// when it cannot be moved aside Load fails.
func (r *ArchiveRepo) Load(ctx context.Context) (*domain.Archive, error) {
	body, err := r.store.Get(ctx, domain.DocArchive)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return domain.NewArchive(r.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	var a domain.Archive
	if err := json.Unmarshal(body, &a); err != nil {
		suffix := ".corrupt-" + r.now().UTC().Format("20060102T150405Z")
		moved, qerr := r.store.Quarantine(ctx, domain.DocArchive, suffix)
		// ErrDocumentNotFound means a concurrent Load already moved it
		if qerr != nil && !errors.Is(qerr, domain.ErrDocumentNotFound) {
			return nil, fmt.Errorf("%w: %v (quarantine failed: %v)", domain.ErrCorruptDocument, err, qerr)
		}
		log.Warn().Str("component", "repo").Err(err).Str("moved_to", moved).
			Msg("archive document is corrupt, starting fresh")
		return domain.NewArchive(r.now()), nil
	}
	if a.Tools == nil {
		a.Tools = map[string]*domain.ArchiveTool{}
	}
	for id, t := range a.Tools {
		if t == nil {
			delete(a.Tools, id)
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now().UTC()
	}
	return &a, nil
}

// Save rewrites the whole archive.
func (r *ArchiveRepo) Save(ctx context.Context, a *domain.Archive) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}
	if err := r.store.Put(ctx, domain.DocArchive, body); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}
