package sched

import (
	"context"
	"errors"
	"time"

	"cadi-backend/internal/infra/metrics"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Job is a periodic unit of work. Run returns how many items it processed.
type Job struct {
	Name    string
	Every   time.Duration
	Timeout time.Duration
	Run     func(ctx context.Context) (int, error)
}

// ScheduledReleaser delivers notifications held back by quiet hours.
type ScheduledReleaser interface {
	ReleaseScheduled(ctx context.Context) (int, error)
}

// DueDispatcher sends campaigns whose schedule time has passed.
type DueDispatcher interface {
	DispatchDue(ctx context.Context) (int, error)
}

func ReleaseJob(every time.Duration, r ScheduledReleaser) Job {
	return Job{Name: "release_scheduled_notifications", Every: every, Run: r.ReleaseScheduled}
}

func CampaignJob(every time.Duration, d DueDispatcher) Job {
	return Job{Name: "dispatch_due_campaigns", Every: every, Run: d.DispatchDue}
}

// Scheduler runs Jobs on gocron. A job never overlaps with itself; a tick
// that fires while the previous run is still busy is skipped.
type Scheduler struct {
	cron gocron.Scheduler
	log  *zerolog.Logger
}

func NewScheduler(loc *time.Location, logger *zerolog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	l := logger.With().Str("component", "scheduler").Logger()
	return &Scheduler{cron: c, log: &l}, nil
}

// Add registers job. ctx bounds every run of the job.
func (s *Scheduler) Add(ctx context.Context, job Job) error {
	if job.Run == nil || job.Every <= 0 {
		return errors.New("sched: job needs Run and a positive interval")
	}
	_, err := s.cron.NewJob(
		gocron.DurationJob(job.Every),
		gocron.NewTask(func() { s.run(ctx, job) }),
		gocron.WithName(job.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	s.log.Info().Str("job", job.Name).Dur("every", job.Every).Msg("job registered")
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Shutdown stops scheduling and waits for running jobs.
func (s *Scheduler) Shutdown() error { return s.cron.Shutdown() }

func (s *Scheduler) run(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	n, err := job.Run(runCtx)
	if err != nil {
		metrics.IncJobRun(job.Name, "failed")
		s.log.Error().Err(err).Str("job", job.Name).Dur("took", time.Since(start)).Msg("job failed")
		return
	}
	metrics.IncJobRun(job.Name, "ok")
	metrics.AddJobItems(job.Name, n)
	if n > 0 {
		s.log.Info().Str("job", job.Name).Int("items", n).Dur("took", time.Since(start)).Msg("job done")
	}
}
