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

// SnapshotRepo reads and writes the current snapshot document.
type SnapshotRepo struct {
	store DocumentStore
}

func NewSnapshotRepo(store DocumentStore) *SnapshotRepo {
	return &SnapshotRepo{store: store}
}

// Load returns the persisted snapshot. A missing document, a corrupt one or
// one with no tools all yield domain.ErrNoSnapshot.
func (r *SnapshotRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	body, err := r.store.Get(ctx, domain.DocSnapshot)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		log.Warn().Str("component", "repo").Err(err).Msg("snapshot document is corrupt, ignoring")
		return nil, domain.ErrNoSnapshot
	}
	if snap.Empty() {
		return nil, domain.ErrNoSnapshot
	}
	for i := range snap.Data {
		snap.Data[i].Normalize()
	}
	return &snap, nil
}

// Save persists snap. An empty snapshot never replaces a non-empty one; in
// that case written is false and err is nil.
func (r *SnapshotRepo) Save(ctx context.Context, snap domain.Snapshot) (written bool, err error) {
	if snap.Empty() {
		if _, err := r.Load(ctx); err == nil {
			log.Info().Str("component", "repo").Msg("keeping existing snapshot instead of writing an empty one")
			return false, nil
		}
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now().UTC()
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.store.Put(ctx, domain.DocSnapshot, body); err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}
	return true, nil
}
