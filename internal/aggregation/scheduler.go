package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const shutdownGrace = 30 * time.Second

// Job is a named background task run on a cron schedule.
type Job struct {
	Name string
	Spec string // standard 5-field spec or descriptor, e.g. "@every 1h"
	Run  func(ctx context.Context)

	// RunOnStart also runs the job once when the scheduler starts.
	RunOnStart bool
}

// Scheduler runs batch jobs (cache warm, retention sweep) on cron schedules.
// A run that is still going when its next tick fires is skipped.
type Scheduler struct {
	jobs  []Job
	grace time.Duration
}

func NewScheduler(jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, grace: shutdownGrace}
}

// Start registers every job and blocks until ctx is cancelled, then waits
// up to shutdownGrace for running jobs to finish, including start-up runs.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := cronLogger{}
	c := cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	for _, job := range s.jobs {
		if _, err := c.AddFunc(job.Spec, func() { s.runJob(ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
		}
		slog.Info("[Scheduler] Registered job", "job", job.Name, "spec", job.Spec)
	}

	c.Start()

	var startup sync.WaitGroup
	for _, job := range s.jobs {
		if job.RunOnStart {
			startup.Add(1)
			go func() {
				defer startup.Done()
				s.runJob(ctx, job)
			}()
		}
	}

	<-ctx.Done()
	slog.Info("[Scheduler] Stopping (context cancelled)")

	done := make(chan struct{})
	go func() {
		<-c.Stop().Done()
		startup.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("[Scheduler] All jobs finished")
	case <-time.After(s.grace):
		slog.Warn("[Scheduler] Jobs still running after shutdown grace period", "grace", s.grace)
	}
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	slog.Info("[Scheduler] Job started", "job", job.Name)
	job.Run(ctx)
	slog.Info("[Scheduler] Job finished", "job", job.Name, "duration", time.Since(start))
}

// cronLogger routes robfig/cron's logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("[Cron] "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("[Cron] "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
