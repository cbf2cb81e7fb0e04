package monitoring

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemovita/hemovita-cli/internal/model"
	"github.com/hemovita/hemovita-cli/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestCollect_Empty(t *testing.T) {
	c := NewCollector(newTestStore(t))

	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.RunsTotal)
	assert.Zero(t, snap.FailRate)
	assert.Equal(t, 24, snap.LookbackHours)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollect_Aggregates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := st.CreateRun(ctx)
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunResult(ctx, first.ID, &model.RunResult{
		LowMarkers: 3, ForcedPlaced: 1, RiskServed: true, DurationMS: 10,
	}))

	second, err := st.CreateRun(ctx)
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunResult(ctx, second.ID, &model.RunResult{
		LowMarkers: 1, RiskServed: false, DurationMS: 30,
	}))

	failed, err := st.CreateRun(ctx)
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, failed.ID, model.RunStatusFailed))

	_, err = st.CreateRun(ctx) // still running
	require.NoError(t, err)

	snap, err := NewCollector(st).Collect(ctx, 24)
	require.NoError(t, err)

	assert.Equal(t, 4, snap.RunsTotal)
	assert.Equal(t, 2, snap.RunsCompleted)
	assert.Equal(t, 1, snap.RunsFailed)
	assert.Equal(t, 1, snap.RunsRunning)
	assert.InDelta(t, 1.0/3.0, snap.FailRate, 1e-9)

	assert.InDelta(t, 20.0, snap.AvgDurationMS, 1e-9)
	assert.InDelta(t, 2.0, snap.AvgLowMarkers, 1e-9)
	assert.Equal(t, 1, snap.ForcedTotal)
	assert.InDelta(t, 0.5, snap.RiskServedRate, 1e-9)
}
