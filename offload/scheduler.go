package offload

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs jobs on cron schedules. A job still running when its next
// time comes is skipped for that tick. Jobs sharing one driver are
// serialized by the driver itself.
type Scheduler struct {
	cron   *cron.Cron
	logger Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewScheduler creates a stopped scheduler. logger may be nil.
func NewScheduler(logger Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddFunc schedules fn with a standard 5-field cron spec or a descriptor
// such as "@hourly". fn receives a context cancelled by Stop.
func (s *Scheduler) AddFunc(spec string, fn func(ctx context.Context)) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("offload: schedule %q: %w", spec, err)
	}
	if _, err := s.cron.AddFunc(spec, func() { fn(s.ctx) }); err != nil {
		return fmt.Errorf("offload: schedule %q: %w", spec, err)
	}
	return nil
}

// Add schedules runs of o.
//
// Example:
//
//	sched := offload.NewScheduler(logger)
//	if err := sched.Add("0 * * * *", off); err != nil {
//	    log.Fatal(err)
//	}
//	sched.Start()
//	defer sched.Stop()
func (s *Scheduler) Add(spec string, o *Offloader) error {
	return s.AddFunc(spec, func(ctx context.Context) {
		res, err := o.Run(ctx)
		switch {
		case err != nil:
			s.logError("scheduled offload failed", "error", err)
		case len(res.Failed) > 0:
			s.logError("scheduled offload incomplete", "failed", len(res.Failed), "error", res.Err())
		}
	})
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop ends scheduling, cancels the context of running jobs and waits for
// them to return. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		done := s.cron.Stop()
		s.cancel()
		<-done.Done()
	})
}

func (s *Scheduler) logError(msg string, keysAndValues ...interface{}) {
	if s.logger != nil {
		s.logger.Error(msg, keysAndValues...)
	}
}

// cronLogger routes cron's log output to a Logger.
type cronLogger struct {
	logger Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if c.logger != nil {
		c.logger.Debug("cron: "+msg, keysAndValues...)
	}
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if c.logger != nil {
		c.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
	}
}
