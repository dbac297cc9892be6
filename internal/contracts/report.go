package contracts

import "time"

// Cadence identifies which analysis cycle is running
type Cadence string

const (
	CadenceIntraWeek Cadence = "intraweek"
	CadenceEndOfWeek Cadence = "endofweek"
)

// Valid reports whether the cadence is one of the two known cycles
func (c Cadence) Valid() bool {
	return c == CadenceIntraWeek || c == CadenceEndOfWeek
}

// CycleReport is the immutable result of one orchestrator run.
// Counters cover the whole cycle including partial failures.
type CycleReport struct {
	Cadence      Cadence   `json:"cadence"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	UniverseSize int       `json:"universe_size"`
	Processed    int       `json:"processed"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`

	NewRecommendations int `json:"new_recommendations"`
	Promotions         int `json:"promotions"`
	Sells              int `json:"sells"`
	Reentries          int `json:"reentries"`
	Refreshed          int `json:"refreshed"`
	Samples            int `json:"samples"`

	// Aborted is set when the cycle terminated early because a
	// collaborator or the store was unreachable.
	Aborted bool     `json:"aborted,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Duration returns the cycle wall-clock duration
func (r *CycleReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
