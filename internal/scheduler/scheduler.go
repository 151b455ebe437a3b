// Package scheduler triggers incremental pipeline runs on a cron spec.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/domain/pipeline"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context, params pipeline.RunParams) (pipeline.RunResult, error)
}

// Scheduler wraps robfig/cron and fires one run per tick
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	params pipeline.RunParams
	spec   string
	logger *logging.Logger
}

// New creates a Scheduler for spec, e.g. "@every 24h" or "0 6 * * *"
func New(runner Runner, spec string, params pipeline.RunParams, logger *logging.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler: runner is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("scheduler")

	cronLogger := cron.PrintfLogger(logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner: runner,
		params: params,
		spec:   spec,
		logger: logger,
	}, nil
}

// Start registers the job and starts the cron loop. Runs use ctx, so
// cancelling it aborts an in-flight run.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.Trigger(ctx) }); err != nil {
		return fmt.Errorf("scheduler: add %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("cron started", "spec", s.spec, "mode", s.params.Mode)
	return nil
}

// Stop halts the cron loop and waits for a running job to return
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron stopped")
}

// Trigger performs one scheduled run
func (s *Scheduler) Trigger(ctx context.Context) {
	s.logger.Info("scheduled run started")

	res, err := s.runner.Run(ctx, s.params)
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		s.logger.Info("scheduled run skipped, another run is active")
	case err != nil:
		s.logger.Error("scheduled run failed", "run_id", res.RunID, "error", err)
	default:
		s.logger.Info("scheduled run complete",
			"run_id", res.RunID,
			"collected", res.Collected,
			"new", res.New,
			"processed", res.Processed,
			"failed", res.Failed,
		)
	}
}
