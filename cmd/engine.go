package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hemovita/hemovita-cli/internal/engine"
	"github.com/hemovita/hemovita-cli/internal/model"
	"github.com/hemovita/hemovita-cli/internal/store"
)

// initEngine loads reference data and produces a trained engine. With
// snapshot reuse enabled and a usable persisted snapshot, training is
// skipped; a stale or mismatched snapshot falls back to retraining.
func initEngine(ctx context.Context, st store.Store) (*engine.Engine, error) {
	eng, err := engine.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Bandit.ReuseSnapshot && st != nil {
		snap, err := st.LatestSnapshot(ctx)
		if err != nil {
			zap.L().Warn("load model snapshot failed, retraining", zap.Error(err))
		} else if snap != nil {
			if err := eng.Restore(snap.Params); err != nil {
				zap.L().Warn("model snapshot incompatible, retraining", zap.Error(err))
			} else {
				zap.L().Info("restored trained model from snapshot",
					zap.String("snapshot_id", snap.ID),
					zap.Int("steps", snap.Steps),
				)
				return eng, nil
			}
		}
	}

	eng.Train()

	if st != nil {
		if err := saveSnapshot(ctx, st, eng); err != nil {
			zap.L().Warn("save model snapshot failed", zap.Error(err))
		}
	}
	return eng, nil
}

func saveSnapshot(ctx context.Context, st store.Store, eng *engine.Engine) error {
	raw, err := eng.Snapshot()
	if err != nil {
		return err
	}
	steps, seed, actions := eng.BanditInfo()
	return st.SaveSnapshot(ctx, &model.ModelSnapshot{
		Steps:     steps,
		Seed:      seed,
		Actions:   actions,
		Params:    raw,
		CreatedAt: time.Now().UTC(),
	})
}

// buildWithRun wraps one report generation with run bookkeeping. The
// run row is created before the pipeline executes so a panic inside it
// is recorded as a failed run and surfaced as an error. A nil store
// skips bookkeeping; bookkeeping failures are logged, never surfaced.
func buildWithRun(ctx context.Context, st store.Store, build func() (*model.Report, *model.RunResult)) (rep *model.Report, err error) {
	var runID string
	if st != nil {
		run, cerr := st.CreateRun(ctx)
		if cerr != nil {
			zap.L().Warn("create run failed", zap.Error(cerr))
		} else {
			runID = run.ID
		}
	}

	defer func() {
		if r := recover(); r != nil {
			if runID != "" {
				if serr := st.UpdateRunStatus(ctx, runID, model.RunStatusFailed); serr != nil {
					zap.L().Warn("mark run failed", zap.String("run_id", runID), zap.Error(serr))
				}
			}
			rep = nil
			err = eris.Errorf("report generation failed: %v", r)
		}
	}()

	report, result := build()
	if runID != "" {
		if uerr := st.UpdateRunResult(ctx, runID, result); uerr != nil {
			zap.L().Warn("update run result failed", zap.String("run_id", runID), zap.Error(uerr))
		}
	}
	return report, nil
}
