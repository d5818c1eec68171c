package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"presskit/internal/config"
	"presskit/internal/ledger"
	"presskit/internal/logging"
)

// Recorder receives step execution records. *ledger.Store satisfies it; tests
// substitute their own.
type Recorder interface {
	RecordStep(ctx context.Context, rec ledger.StepRecord) error
}

// Runner executes pipeline steps sequentially under the build lock.
//
// Steps run in the order given and the first failure aborts the run. There is
// no rollback: artifacts produced by completed steps stay in place.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder Recorder
	steps    []Step
}

// NewRunner constructs a runner for the given steps. recorder may be nil.
func NewRunner(cfg *config.Config, logger *slog.Logger, recorder Recorder, steps ...Step) *Runner {
	return &Runner{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		recorder: recorder,
		steps:    steps,
	}
}

// LockPath returns the build lock location for the configured log directory.
func LockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "presskit.lock")
}

// Run executes every step against the given themes. The build lock is held
// for the whole run so two invocations cannot race on the same artifact
// paths; a held lock fails fast with ErrLocked.
func (r *Runner) Run(ctx context.Context, themes []string) error {
	lock := flock.New(LockPath(r.cfg))
	ok, err := lock.TryLock()
	if err != nil {
		return Wrap(ErrConfiguration, "pipeline", "acquire lock", "Unable to acquire the build lock", err)
	}
	if !ok {
		return fmt.Errorf("%w: another presskit run is active (lock %s)", ErrLocked, LockPath(r.cfg))
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			r.logger.Warn("failed to release build lock", logging.Error(unlockErr))
		}
	}()

	runID := uuid.NewString()
	runLogger := r.logger.With(logging.String(logging.FieldRunID, runID))
	runLogger.Info("pipeline run starting",
		logging.String("themes", fmt.Sprint(themes)),
		logging.Int("steps", len(r.steps)),
	)

	for _, step := range r.steps {
		started := time.Now()
		summary, stepErr := step.Run(ctx, themes)
		r.record(ctx, runLogger, ledger.StepRecord{
			RunID:     runID,
			Step:      step.Name(),
			Themes:    themes,
			Processed: summary.Processed,
			Skipped:   summary.Skipped,
			Duration:  time.Since(started),
			Outcome:   outcomeFor(stepErr),
			ErrorText: errorText(stepErr),
			StartedAt: started,
		})
		if stepErr != nil {
			runLogger.Error("pipeline step failed",
				logging.String("step", step.Name()),
				logging.Error(stepErr),
			)
			return fmt.Errorf("step %s: %w", step.Name(), stepErr)
		}
		runLogger.Info("pipeline step completed",
			logging.String("step", step.Name()),
			logging.Int("processed", summary.Processed),
			logging.Int("skipped", summary.Skipped),
			logging.Duration("duration", time.Since(started)),
		)
	}

	runLogger.Info("pipeline run completed")
	return nil
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, rec ledger.StepRecord) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordStep(ctx, rec); err != nil {
		logger.Warn("failed to record step in build ledger", logging.Error(err))
	}
}

func outcomeFor(err error) string {
	if err != nil {
		return ledger.OutcomeFailed
	}
	return ledger.OutcomeOK
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
