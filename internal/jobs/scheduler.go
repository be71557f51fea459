// Package jobs runs periodic background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Func is a unit of scheduled work. The context is cancelled when the
// scheduler stops or the run exceeds its timeout.
type Func func(ctx context.Context) error

// cronLogger adapts slog to the cron logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}

type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	// ctx is the parent of every run; Stop cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler builds a scheduler whose jobs never overlap with themselves
// and recover from panics.
func NewScheduler(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cl := cronLogger{logger: logger.With(slog.String("component", "cron"))}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:  logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers fn under name on a standard cron spec or a descriptor such
// as "@every 1m".
func (s *Scheduler) Add(name, spec string, fn Func) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

// RunNow executes fn immediately on the caller's goroutine.
func (s *Scheduler) RunNow(name string, fn Func) error {
	return s.run(name, fn)
}

func (s *Scheduler) run(name string, fn Func) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Error("job failed", slog.String("job", name), slog.Duration("took", time.Since(start)), slog.Any("err", err))
		return err
	}
	s.logger.Debug("job finished", slog.String("job", name), slog.Duration("took", time.Since(start)))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling, cancels running jobs and waits for them to return
// or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
