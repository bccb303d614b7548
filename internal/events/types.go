package events

// SyncCompletedEvent is published after a sync run has written every table.
type SyncCompletedEvent struct {
	RunID      string `json:"run_id"`
	Season     string `json:"season"`
	Teams      int    `json:"teams"`
	Standings  int    `json:"standings"`
	TeamStats  int    `json:"team_stats"`
	DurationMS int64  `json:"duration_ms"`
}

type SyncFailedEvent struct {
	RunID  string `json:"run_id"`
	Season string `json:"season"`
	Error  string `json:"error"`
}

// PredictionServedEvent mirrors one /api/predict response.
type PredictionServedEvent struct {
	PredictionID string  `json:"prediction_id"`
	TeamA        string  `json:"team_a"`
	TeamB        string  `json:"team_b"`
	BestOf       int     `json:"best_of,omitempty"`
	ProbA        float64 `json:"prob_a"`
	ProbB        float64 `json:"prob_b"`
	RawScore     float64 `json:"raw_score"`
	// Roster-adjusted win percentages, present when transfers were available.
	AdjustedA *float64 `json:"adjusted_a,omitempty"`
	AdjustedB *float64 `json:"adjusted_b,omitempty"`
}
