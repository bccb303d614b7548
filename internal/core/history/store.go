package history

import (
	"fmt"
	"slices"

	"github.com/charleschow/mplid-predictor/internal/core/slug"
)

// MatchRecord is one best-of series. Home/Away only says which side each
// score belongs to; it carries no venue meaning.
type MatchRecord struct {
	Week      int    `json:"week"`
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeGames int    `json:"home_games"`
	AwayGames int    `json:"away_games"`
}

// Involves reports whether s played in the series.
func (m MatchRecord) Involves(s string) bool { return m.Home == s || m.Away == s }

// Perspective returns (own games, opponent games, opponent) for team s.
// ok is false when s did not play.
func (m MatchRecord) Perspective(s string) (own, opp int, opponent string, ok bool) {
	switch s {
	case m.Home:
		return m.HomeGames, m.AwayGames, m.Away, true
	case m.Away:
		return m.AwayGames, m.HomeGames, m.Home, true
	}
	return 0, 0, "", false
}

// Winner returns the slug that took the series, or "" on a level score.
func (m MatchRecord) Winner() string {
	switch {
	case m.HomeGames > m.AwayGames:
		return m.Home
	case m.AwayGames > m.HomeGames:
		return m.Away
	}
	return ""
}

// Store is an immutable, versioned table of series results. It has no
// mutation API; a correction is a new table.
type Store struct {
	version string
	records []MatchRecord
	maxWeek int
}

// NewStore resolves every slug and checks that weeks never go backwards in
// append order.
func NewStore(version string, records []MatchRecord) (*Store, error) {
	out := make([]MatchRecord, len(records))
	maxWeek := 0
	for i, r := range records {
		if r.Week < 0 {
			return nil, fmt.Errorf("record %d: negative week %d", i, r.Week)
		}
		if i > 0 && r.Week < records[i-1].Week {
			return nil, fmt.Errorf("record %d: week %d after week %d", i, r.Week, records[i-1].Week)
		}
		if r.HomeGames < 0 || r.AwayGames < 0 {
			return nil, fmt.Errorf("record %d: negative series score %d-%d", i, r.HomeGames, r.AwayGames)
		}
		r.Home = slug.Resolve(r.Home)
		r.Away = slug.Resolve(r.Away)
		if r.Home == "" || r.Away == "" || r.Home == r.Away {
			return nil, fmt.Errorf("record %d: invalid pairing %q vs %q", i, r.Home, r.Away)
		}
		out[i] = r
		maxWeek = max(maxWeek, r.Week)
	}
	return &Store{version: version, records: out, maxWeek: maxWeek}, nil
}

// MustStore is NewStore for compiled-in tables.
func MustStore(version string, records []MatchRecord) *Store {
	s, err := NewStore(version, records)
	if err != nil {
		panic(fmt.Sprintf("history %s: %v", version, err))
	}
	return s
}

func (s *Store) Version() string { return s.version }
func (s *Store) Len() int        { return len(s.records) }

// Records returns a copy of the full table in append order.
func (s *Store) Records() []MatchRecord { return slices.Clone(s.records) }

// CurrentWeek is the latest week in the table, or 1 when it is empty.
func (s *Store) CurrentWeek() int {
	if s.maxWeek < 1 {
		return 1
	}
	return s.maxWeek
}

// MatchesInvolving returns every series team s played, ascending by week.
func (s *Store) MatchesInvolving(team string) []MatchRecord {
	team = slug.Resolve(team)
	var out []MatchRecord
	for _, r := range s.records {
		if r.Involves(team) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b MatchRecord) int { return a.Week - b.Week })
	return out
}

// MatchesBetween returns every series between a and b in either order.
func (s *Store) MatchesBetween(a, b string) []MatchRecord {
	a, b = slug.Resolve(a), slug.Resolve(b)
	if a == b {
		return nil
	}
	var out []MatchRecord
	for _, r := range s.records {
		if (r.Home == a && r.Away == b) || (r.Home == b && r.Away == a) {
			out = append(out, r)
		}
	}
	return out
}

// Before returns the sub-table of series played strictly before week.
func (s *Store) Before(week int) *Store {
	var kept []MatchRecord
	maxWeek := 0
	for _, r := range s.records {
		if r.Week < week {
			kept = append(kept, r)
			maxWeek = max(maxWeek, r.Week)
		}
	}
	return &Store{version: fmt.Sprintf("%s<w%d", s.version, week), records: kept, maxWeek: maxWeek}
}

// Week returns the series of one week in append order.
func (s *Store) Week(week int) []MatchRecord {
	var out []MatchRecord
	for _, r := range s.records {
		if r.Week == week {
			out = append(out, r)
		}
	}
	return out
}
