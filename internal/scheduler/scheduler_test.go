package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New("", time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func noop(context.Context) error { return nil }

func TestNew_RejectsUnknownZone(t *testing.T) {
	if _, err := New("Mars/Olympus_Mons", 0); err == nil {
		t.Fatalf("expected timezone error")
	}
	s, err := New("UTC", 0)
	if err != nil {
		t.Fatalf("New(UTC): %v", err)
	}
	if s.timeout != DefaultJobTimeout {
		t.Fatalf("timeout = %v; want %v", s.timeout, DefaultJobTimeout)
	}
}

func TestAddJob_ValidatesAndLists(t *testing.T) {
	s := newScheduler(t)

	if err := s.AddJob("fetch", "0 6 * * *", noop); err != nil {
		t.Fatalf("AddJob fetch: %v", err)
	}
	if err := s.AddJob("cache-sweep", "0 * * * *", noop); err != nil {
		t.Fatalf("AddJob sweep: %v", err)
	}
	if err := s.AddJob("fetch", "0 7 * * *", noop); err == nil {
		t.Fatalf("duplicate name accepted")
	}
	if err := s.AddJob("broken", "every tuesday", noop); err == nil {
		t.Fatalf("bad spec accepted")
	}

	s.Start()
	jobs := s.ListJobs()
	if len(jobs) != 2 || jobs[0].Name != "cache-sweep" || jobs[1].Name != "fetch" {
		t.Fatalf("ListJobs = %+v", jobs)
	}
	if jobs[0].Schedule != "0 * * * *" || jobs[0].NextRun.IsZero() {
		t.Fatalf("cache-sweep info = %+v", jobs[0])
	}

	s.RemoveJob("fetch")
	s.RemoveJob("never-added")
	if jobs := s.ListJobs(); len(jobs) != 1 {
		t.Fatalf("after remove = %+v", jobs)
	}
}

func TestRunNow_TimeoutAndOutcomes(t *testing.T) {
	s := newScheduler(t)

	var deadline time.Time
	err := s.RunNow("probe", func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return nil
	})
	if err != nil || deadline.IsZero() || time.Until(deadline) > time.Minute {
		t.Fatalf("RunNow err=%v deadline=%v", err, deadline)
	}

	before := testutil.ToFloat64(jobRuns.WithLabelValues("probe-fail", "error"))
	boom := errors.New("boom")
	if err := s.RunNow("probe-fail", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("RunNow error = %v", err)
	}
	if got := testutil.ToFloat64(jobRuns.WithLabelValues("probe-fail", "error")); got != before+1 {
		t.Fatalf("error counter = %v; want %v", got, before+1)
	}
}

func TestStop_CancelsRunningJobs(t *testing.T) {
	s, err := New("", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{})
	result := make(chan error, 1)
	go func() {
		result <- s.RunNow("long", func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("job returned %v; want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("job was not cancelled by Stop")
	}
}
