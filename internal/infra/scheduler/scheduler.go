// internal/infra/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Jobs is what the scheduler runs. app.RegularService implements it.
type Jobs interface {
	MaterializeAll(ctx context.Context) (int, error)
	SendReceiptReminders(ctx context.Context) (int, error)
}

const (
	materializeTimeout = 5 * time.Minute
	reminderTimeout    = 2 * time.Minute
)

// RegularScheduler drives the regular operations jobs on cron schedules.
type RegularScheduler struct {
	cronEngine      *cron.Cron
	jobs            Jobs
	logger          *logrus.Entry
	specMaterialize string
	specReminder    string
}

func NewRegularScheduler(
	jobs Jobs,
	logger *logrus.Entry,
	loc *time.Location,
	specMaterialize string, // e.g. "0 8 * * *"
	specReminder string, // e.g. "0 20 * * *"
) *RegularScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &RegularScheduler{
		cronEngine:      cron.New(cron.WithLocation(loc)),
		jobs:            jobs,
		logger:          logger,
		specMaterialize: specMaterialize,
		specReminder:    specReminder,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *RegularScheduler) Start() error {
	s.logger.Info("Starting regular operations scheduler")

	// Job that spawns today's instances of every active regular operation
	if _, err := s.cronEngine.AddFunc(s.specMaterialize, func() {
		s.run("materialize", materializeTimeout, s.jobs.MaterializeAll)
	}); err != nil {
		return fmt.Errorf("could not add materialize cron job: %w", err)
	}

	// Job that re-asks about receipts still pending from earlier days
	if _, err := s.cronEngine.AddFunc(s.specReminder, func() {
		s.run("receipt_reminder", reminderTimeout, s.jobs.SendReceiptReminders)
	}); err != nil {
		return fmt.Errorf("could not add receipt reminder cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"materialize": s.specMaterialize,
		"reminder":    s.specReminder,
	}).Info("Regular operations scheduler started")
	return nil
}

// RunNow executes the materialization job once, outside the schedule.
func (s *RegularScheduler) RunNow() {
	s.run("materialize", materializeTimeout, s.jobs.MaterializeAll)
}

func (s *RegularScheduler) run(job string, timeout time.Duration, fn func(context.Context) (int, error)) {
	// Tag every log line of this run
	logCtx := s.logger.WithFields(logrus.Fields{"job": job, "run_id": uuid.NewString()})
	logCtx.Info("Cron job triggered")

	ctx, cancel := context.WithTimeout(context.Background(), timeout) // Context for the job
	defer cancel()

	started := time.Now()
	n, err := fn(ctx)
	logCtx = logCtx.WithFields(logrus.Fields{"affected": n, "duration": time.Since(started).String()})
	if err != nil {
		logCtx.WithError(err).Error("Cron job finished with errors")
		return
	}
	logCtx.Info("Cron job finished")
}

func (s *RegularScheduler) Stop() {
	s.logger.Info("Stopping regular operations scheduler")
	ctx := s.cronEngine.Stop() // Stops scheduling new runs
	<-ctx.Done()               // Wait for running jobs to finish
	s.logger.Info("Regular operations scheduler stopped")
}
