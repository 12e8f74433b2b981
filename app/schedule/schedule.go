// Package schedule triggers a job on a cron schedule, one run at a time.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"
)

// DefaultSpec runs a job every 15 minutes, at the zero second.
const DefaultSpec = "0 */15 * * * *"

// Job is a function to run on schedule.
type Job func(ctx context.Context) error

// Params defines parameters of the scheduler.
type Params struct {
	// Spec is a cron expression, seconds field is optional.
	Spec string
	// Timeout bounds a single run, unlimited if zero.
	Timeout time.Duration
	// RunOnStart runs the job once right after start.
	RunOnStart bool
}

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs the job on schedule. A tick that fires while the
// previous run is still in progress is skipped.
type Scheduler struct {
	log     *slog.Logger
	params  Params
	job     Job
	cron    *cron.Cron
	sched   cron.Schedule
	wrapped cron.Job
	wg      sync.WaitGroup
	// runCtx is detached from the Run context, so that shutdown lets
	// the current run finish instead of interrupting it halfway.
	runCtx context.Context
}

// New makes a new scheduler and validates the spec.
func New(lg *slog.Logger, params Params, job Job) (*Scheduler, error) {
	if params.Spec == "" {
		params.Spec = DefaultSpec
	}

	sched, err := parser.Parse(params.Spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", params.Spec, err)
	}

	cl := cronLogger{log: lg}

	s := &Scheduler{
		log:    lg,
		params: params,
		job:    job,
		sched:  sched,
		runCtx: context.Background(),
		cron:   cron.New(cron.WithParser(parser), cron.WithLogger(cl)),
	}

	s.wrapped = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.tick))
	s.cron.Schedule(sched, s.wrapped)

	return s, nil
}

// Run starts the scheduler and blocks until ctx is done, then waits
// for the job in progress to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.InfoCtx(ctx, "scheduler started", slog.String("spec", s.params.Spec))
	s.cron.Start()

	if s.params.RunOnStart {
		s.wg.Add(1)
		// goes through the same chain, so it never overlaps a scheduled tick
		go func() {
			defer s.wg.Done()
			s.wrapped.Run()
		}()
	}

	<-ctx.Done()

	s.log.InfoCtx(ctx, "stopping scheduler, waiting for the job in progress")
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.InfoCtx(ctx, "scheduler stopped")

	return ctx.Err()
}

// Next returns the next time the job is going to run.
func (s *Scheduler) Next() time.Time { return s.sched.Next(time.Now()) }

func (s *Scheduler) tick() {
	ctx := s.runCtx
	if s.params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.params.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.log.ErrorCtx(ctx, "scheduled job failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("err", err))
		return
	}

	s.log.DebugCtx(ctx, "scheduled job finished", slog.Duration("elapsed", time.Since(start)))
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, slog.Any("err", err))...)
}
