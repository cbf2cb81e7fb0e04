package model

import "time"

// RunStatus tracks the lifecycle of a report-generation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunResult summarizes what a completed run produced. Only aggregate
// counts are kept; lab values and patient identity are never recorded.
type RunResult struct {
	LowMarkers   int   `json:"low_markers"`
	ForcedPlaced int   `json:"forced_placed"`
	RiskServed   bool  `json:"risk_served"`
	DurationMS   int64 `json:"duration_ms"`
}

// Run is one report-generation run.
type Run struct {
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ModelSnapshot is a persisted copy of trained bandit parameters.
type ModelSnapshot struct {
	ID        string    `json:"id"`
	Steps     int       `json:"steps"`
	Seed      int64     `json:"seed"`
	Actions   int       `json:"actions"`
	Params    []byte    `json:"params"` // bandit.Model snapshot JSON
	CreatedAt time.Time `json:"created_at"`
}
