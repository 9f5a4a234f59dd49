// Package jobs runs the periodic background work of the server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"alcyxob/gym-manager/internal/logger"
)

// Scheduler runs registered jobs on cron schedules. A run that is still in
// progress when its next tick arrives makes that tick a no-op.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func NewScheduler(timeout time.Duration) *Scheduler {
	l := cronLogger{log: logger.Get().With("component", "cron")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		timeout: timeout,
	}
}

// Register schedules run under name. spec is a standard five field cron expression.
func (s *Scheduler) Register(name, spec string, run func(ctx context.Context) (int, error)) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		n, err := run(ctx)
		if err != nil {
			logger.Error("job failed", "job", name, "error", err)
			return
		}
		logger.Info("job finished", "job", name, "items", n, "duration", time.Since(start))
	})
	return err
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger routes cron's own logging to slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
