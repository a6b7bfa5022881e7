package cron

import (
	"context"

	"carsensor/internal/worker"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron   *cron.Cron
	worker *worker.Worker
	logger *zap.Logger

	spec   string
	output string
	ctx    context.Context

	// shared by RunNow and the scheduled entry, so runs never overlap
	refresh cron.Job
}

// NewScheduler reruns the refresh on a cron spec with a leading seconds field,
// e.g. "0 0 * * * *" or "@every 1h".
func NewScheduler(logger *zap.Logger, w *worker.Worker, spec, output string) *Scheduler {
	cl := cronLogger{logger: logger.Sugar()}

	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLogger(cl)),
		worker: w,
		logger: logger,
		spec:   spec,
		output: output,
		ctx:    context.Background(),
	}
	s.refresh = cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.run))

	return s
}

// Start schedules the refresh. ctx is passed to every refresh, scheduled or RunNow.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	if _, err := s.cron.AddJob(s.spec, s.refresh); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Cron scheduler started", zap.String("schedule", s.spec))
	return nil
}

// RunNow runs a refresh outside the schedule and waits for it. It is skipped while a
// scheduled refresh is still running.
func (s *Scheduler) RunNow() {
	s.refresh.Run()
}

func (s *Scheduler) run() {
	s.logger.Info("Car data refresh")
	if err := s.worker.Refresh(s.ctx, s.output); err != nil {
		s.logger.Error("Car data refresh failed", zap.Error(err))
	}
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Cron scheduler stopped")
}

// cronLogger routes the scheduler's own messages to zap. Its chatter goes to debug.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
