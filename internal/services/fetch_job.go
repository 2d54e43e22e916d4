package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// Archiver appends acquired tools to the history.
type Archiver interface {
	Append(ctx context.Context, tools []domain.ToolWithPosts) (AppendResult, error)
}

// FetchReport summarizes one FetchJob run.
type FetchReport struct {
	StartedAt       time.Time     `json:"startedAt"`
	Duration        time.Duration `json:"duration"`
	OK              bool          `json:"ok"`
	Source          string        `json:"source"`
	Translated      bool          `json:"translated"`
	Tools           int           `json:"tools"`
	Posts           int           `json:"posts"`
	SnapshotWritten bool          `json:"snapshotWritten"`
	SnapshotError   string        `json:"snapshotError,omitempty"`
	Archive         *AppendResult `json:"archive,omitempty"`
	ArchiveError    string        `json:"archiveError,omitempty"`
}

// FetchJob is the scheduled acquisition run and the only caller of
// Archiver.Append. Its snapshot writes are non-regressing.
type FetchJob struct {
	acq        Acquirer
	snaps      SnapshotStore
	archive    Archiver
	maxPerTool int
	now        func() time.Time
}

// NewFetchJob builds a FetchJob. archive may be nil to skip archiving.
func NewFetchJob(acq Acquirer, snaps SnapshotStore, archive Archiver, maxPerTool int) *FetchJob {
	return &FetchJob{acq: acq, snaps: snaps, archive: archive, maxPerTool: maxPerTool, now: time.Now}
}

// Run acquires, writes the snapshot and appends to the archive. Persistence
// failures are logged and reported but never abort the run.
func (j *FetchJob) Run(ctx context.Context) FetchReport {
	ctx, span := otel.Tracer("services/FetchJob").Start(ctx, "Run")
	defer span.End()

	lg := log.With().Str("component", "fetch-job").Logger()
	rep := FetchReport{StartedAt: j.now().UTC(), Source: SourceUnavailable}

	res, ok := j.acq.AcquireAll(ctx, j.maxPerTool)
	snap := domain.NewSnapshot(rep.StartedAt, SourceUnavailable, false, nil)
	if ok {
		at := res.FetchedAt
		if at.IsZero() {
			at = j.now()
		}
		snap = domain.NewSnapshot(at, string(res.Source), res.Translated, res.Tools)
		rep.OK = true
		rep.Source = string(res.Source)
		rep.Translated = res.Translated
		rep.Tools = snap.ToolCount
		rep.Posts = snap.TweetCount
	} else {
		lg.Warn().Msg("acquisition produced nothing; the existing snapshot is kept")
	}

	written, err := j.snaps.Save(ctx, snap)
	rep.SnapshotWritten = written
	if err != nil {
		rep.SnapshotError = err.Error()
		lg.Error().Err(err).Msg("snapshot write failed")
	}

	if ok && j.archive != nil {
		ar, err := j.archive.Append(ctx, res.Tools)
		if err != nil {
			rep.ArchiveError = err.Error()
			lg.Error().Err(err).Msg("archive append failed")
		} else {
			rep.Archive = &ar
		}
	}

	rep.Duration = j.now().Sub(rep.StartedAt)
	span.SetAttributes(
		attribute.Bool("ok", rep.OK),
		attribute.String("source", rep.Source),
		attribute.Int("posts", rep.Posts),
	)
	lg.Info().
		Bool("ok", rep.OK).
		Str("source", rep.Source).
		Int("tools", rep.Tools).
		Int("posts", rep.Posts).
		Bool("snapshot_written", rep.SnapshotWritten).
		Dur("took", rep.Duration).
		Msg("fetch job finished")
	return rep
}
