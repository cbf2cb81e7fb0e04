// Package monitoring aggregates run bookkeeping into an operational
// stats snapshot served by the HTTP API.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/hemovita/hemovita-cli/internal/model"
	"github.com/hemovita/hemovita-cli/internal/store"
)

// StatsSnapshot holds a point-in-time view of report activity.
type StatsSnapshot struct {
	// Run counts within the lookback window.
	RunsTotal     int     `json:"runs_total"`
	RunsCompleted int     `json:"runs_completed"`
	RunsFailed    int     `json:"runs_failed"`
	RunsRunning   int     `json:"runs_running"`
	FailRate      float64 `json:"fail_rate"`

	// Aggregates over completed runs.
	AvgDurationMS  float64 `json:"avg_duration_ms"`
	AvgLowMarkers  float64 `json:"avg_low_markers"`
	ForcedTotal    int     `json:"forced_total"`
	RiskServedRate float64 `json:"risk_served_rate"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers run stats from the store.
type Collector struct {
	store store.Store
}

func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect aggregates runs created within the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*StatsSnapshot, error) {
	snap := &StatsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	runs, err := c.store.ListRuns(ctx, store.RunFilter{
		CreatedAfter: cutoff,
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.RunsTotal = len(runs)
	var totalDuration int64
	var totalLow int
	var riskServed int
	var withResult int

	for _, r := range runs {
		switch r.Status {
		case model.RunStatusCompleted:
			snap.RunsCompleted++
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusRunning:
			snap.RunsRunning++
		}
		if r.Result != nil {
			withResult++
			totalDuration += r.Result.DurationMS
			totalLow += r.Result.LowMarkers
			snap.ForcedTotal += r.Result.ForcedPlaced
			if r.Result.RiskServed {
				riskServed++
			}
		}
	}

	finished := snap.RunsCompleted + snap.RunsFailed
	if finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
	}
	if withResult > 0 {
		snap.AvgDurationMS = float64(totalDuration) / float64(withResult)
		snap.AvgLowMarkers = float64(totalLow) / float64(withResult)
		snap.RiskServedRate = float64(riskServed) / float64(withResult)
	}

	return snap, nil
}
