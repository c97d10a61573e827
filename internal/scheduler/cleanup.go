package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"marketplace-api/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	JobOTPCleanup     = "otp_cleanup"
	JobSessionCleanup = "session_cleanup"

	defaultSchedule = "0 * * * *" // hourly
	runTimeout      = 2 * time.Minute
)

// SweepFunc deletes stale rows and reports how many went.
type SweepFunc func(ctx context.Context) (int64, error)

type job struct {
	name  string
	sweep SweepFunc
}

// CleanupScheduler runs the periodic sweeps (expired OTPs, expired sessions).
type CleanupScheduler struct {
	schedule string
	jobs     []job
	metrics  *metrics.JobMetrics
	log      *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewCleanupScheduler takes a standard 5-field cron expression; empty means hourly.
func NewCleanupScheduler(schedule string, m *metrics.JobMetrics, log *zap.Logger) *CleanupScheduler {
	if strings.TrimSpace(schedule) == "" {
		schedule = defaultSchedule
	}
	return &CleanupScheduler{
		schedule: schedule,
		metrics:  m,
		log:      log.With(zap.String("component", "cleanup_scheduler")),
	}
}

// Register adds a sweep. Call before Start.
func (s *CleanupScheduler) Register(name string, sweep SweepFunc) *CleanupScheduler {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job{name: name, sweep: sweep})
	return s
}

// Start is a no-op when already running.
func (s *CleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if len(s.jobs) == 0 {
		return errors.New("cleanup scheduler has no jobs")
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(withSeconds(s.schedule), func() { s.RunNow(context.Background()) }); err != nil {
		s.log.Error("Failed to schedule cleanup", zap.Error(err), zap.String("schedule", s.schedule))
		return err
	}

	c.Start()
	s.cron = c
	s.running = true

	s.log.Info("Cleanup scheduler started",
		zap.String("schedule", s.schedule),
		zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop waits for a sweep in flight. Safe to call twice.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("Cleanup scheduler stopped")
}

func (s *CleanupScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow runs every registered sweep once, synchronously. A failing sweep does
// not stop the others.
func (s *CleanupScheduler) RunNow(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]job(nil), s.jobs...)
	s.mu.Unlock()

	for _, j := range jobs {
		s.run(ctx, j)
	}
}

func (s *CleanupScheduler) run(ctx context.Context, j job) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	start := time.Now()
	deleted, err := j.sweep(ctx)
	s.metrics.ObserveDuration(j.name, time.Since(start))

	if err != nil {
		s.metrics.IncFailure(j.name)
		s.log.Error("Cleanup job failed", zap.String("job", j.name), zap.Error(err))
		return
	}

	s.metrics.IncSuccess(j.name)
	if deleted > 0 {
		s.log.Info("Cleanup job finished",
			zap.String("job", j.name),
			zap.Int64("deleted", deleted),
			zap.Duration("duration", time.Since(start)))
	}
}

// withSeconds converts a 5-field expression for cron.WithSeconds.
func withSeconds(schedule string) string {
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}
