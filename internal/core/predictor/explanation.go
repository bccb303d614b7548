package predictor

import "github.com/charleschow/mplid-predictor/internal/core/snapshot"

// Feature is one term of the score. A and B are the teams' own values,
// Diff is what the weight multiplies, which for standings columns is the
// difference of z-scores rather than of the raw values.
type Feature struct {
	A            float64 `json:"a"`
	B            float64 `json:"b"`
	Diff         float64 `json:"diff"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

func newFeature(a, b, diff, weight float64) Feature {
	a, b, diff = snapshot.Finite(a), snapshot.Finite(b), snapshot.Finite(diff)
	return Feature{A: a, B: b, Diff: diff, Weight: weight, Contribution: saturate(weight * diff)}
}

// H2HFeature tells "never met" apart from an even record.
type H2HFeature struct {
	Feature
	Meetings   int  `json:"meetings"`
	HasHistory bool `json:"hasHistory"`
}

type Explanation struct {
	TeamA  string `json:"teamA"`
	TeamB  string `json:"teamB"`
	BestOf int    `json:"bestOf,omitempty"`

	H2H        H2HFeature `json:"h2h"`
	Form       Feature    `json:"form"`
	Points     Feature    `json:"points"`
	GameDiff   Feature    `json:"gdiff"`
	Efficiency *Feature   `json:"efficiency,omitempty"`
	DraftDepth *Feature   `json:"draftDepth,omitempty"`

	SeriesMultiplier float64 `json:"seriesMultiplier"`
	RawScore         float64 `json:"rawScore"`
	ProbA            float64 `json:"probA"`
	ProbB            float64 `json:"probB"`

	HistoryVersion string   `json:"historyVersion"`
	Missing        []string `json:"missing,omitempty"`
}

// Favorite is the slug with the higher probability, or "" on a coin flip.
func (e Explanation) Favorite() string {
	switch {
	case e.ProbA > e.ProbB:
		return e.TeamA
	case e.ProbB > e.ProbA:
		return e.TeamB
	}
	return ""
}
