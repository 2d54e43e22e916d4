// Package scheduler runs the tracker's periodic jobs (the hourly cache sweep
// and the optional in-process acquisition) on robfig/cron.
//
// Overlapping runs of the same job are skipped, every run gets a bounded
// context that is also cancelled when the scheduler stops, and each run is
// logged and counted.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultJobTimeout bounds a single run.
const DefaultJobTimeout = 30 * time.Minute

// Job is a scheduled task.
type Job func(ctx context.Context) error

// JobInfo describes a registered job.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"nextRun"`
	LastRun  time.Time `json:"lastRun"`
}

var jobRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tracker_scheduler_runs_total",
		Help: "Scheduled job runs by job and outcome.",
	},
	[]string{"job", "outcome"},
)

func init() {
	prometheus.MustRegister(jobRuns)
}

type entry struct {
	id       cron.EntryID
	schedule string
}

// Scheduler wraps a cron runner with named jobs.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]entry

	base   context.Context
	cancel context.CancelFunc
}

// New creates a scheduler evaluating schedules in the named IANA zone
// ("" means UTC). timeout <= 0 selects DefaultJobTimeout.
func New(timezone string, timeout time.Duration) (*Scheduler, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
		}
		loc = l
	}
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}

	lg := cronLogger{}
	base, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(lg),
			cron.WithChain(cron.Recover(lg), cron.SkipIfStillRunning(lg)),
		),
		timeout: timeout,
		jobs:    make(map[string]entry),
		base:    base,
		cancel:  cancel,
	}, nil
}

// AddJob registers job under name with a standard five-field cron spec.
// Names are unique.
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %s already scheduled", name)
	}
	id, err := s.cron.AddFunc(schedule, func() { _ = s.run(name, job) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	s.jobs[name] = entry{id: id, schedule: schedule}
	log.Info().Str("component", "scheduler").Str("job", name).Str("schedule", schedule).Msg("job added")
	return nil
}

// RemoveJob unschedules name. Unknown names are ignored.
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[name]; ok {
		s.cron.Remove(e.id)
		delete(s.jobs, name)
	}
}

// RunNow executes job synchronously with the same timeout and logging as a
// scheduled run.
func (s *Scheduler) RunNow(name string, job Job) error {
	return s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := context.WithTimeout(s.base, s.timeout)
	defer cancel()

	lg := log.With().Str("component", "scheduler").Str("job", name).Logger()
	lg.Info().Msg("job started")
	start := time.Now()

	err := job(ctx)
	switch {
	case err == nil:
		jobRuns.WithLabelValues(name, "ok").Inc()
		lg.Info().Dur("duration", time.Since(start)).Msg("job completed")
	case errors.Is(err, context.Canceled):
		jobRuns.WithLabelValues(name, "cancelled").Inc()
		lg.Warn().Dur("duration", time.Since(start)).Msg("job cancelled")
	default:
		jobRuns.WithLabelValues(name, "error").Inc()
		lg.Error().Err(err).Dur("duration", time.Since(start)).Msg("job failed")
	}
	return err
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	log.Info().Str("component", "scheduler").Int("jobs", len(s.ListJobs())).Msg("scheduler started")
	s.cron.Start()
}

// Stop halts scheduling, cancels running jobs and waits for them to return
// or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		log.Info().Str("component", "scheduler").Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListJobs reports registered jobs sorted by name.
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, e := range s.jobs {
		ce := s.cron.Entry(e.id)
		infos = append(infos, JobInfo{Name: name, Schedule: e.schedule, NextRun: ce.Next, LastRun: ce.Prev})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// cronLogger routes cron's own messages (skips, recovered panics) to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	log.Debug().Str("component", "cron").Fields(kv).Msg(msg)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	log.Error().Str("component", "cron").Err(err).Fields(kv).Msg(msg)
}
