// Package snapshot holds the normalized rows the predictor consumes. Every
// optional upstream field is a pointer; the *OrZero accessors are the one
// place where "missing" turns into the neutral default.
package snapshot

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Num returns the value behind p, or 0 when p is nil, NaN or infinite.
func Num(p *float64) float64 {
	if p == nil {
		return 0
	}
	return Finite(*p)
}

// Finite maps NaN and ±Inf to 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Ptr is a convenience for building rows in code and tests.
func Ptr(v float64) *float64 { return &v }

// TeamRow is a team as listed upstream. ID is the upstream slug, which is
// not always one of ours.
type TeamRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`
	Logo string `json:"logo,omitempty"`
	URL  string `json:"team_url,omitempty"`
}

// StandingsRow is one team's line in the league table.
type StandingsRow struct {
	Rank       int      `json:"rank"`
	Team       string   `json:"team"`
	Wins       int      `json:"wins"`
	Losses     int      `json:"losses"`
	Points     *float64 `json:"points"`
	GameDiff   *float64 `json:"game_diff"`
	Logo       string   `json:"logo,omitempty"`
	MatchWL    string   `json:"match_wl,omitempty"`
	GameWL     string   `json:"game_wl,omitempty"`
	GameWins   int      `json:"game_wins"`
	GameLosses int      `json:"game_losses"`
}

func (r StandingsRow) PointsOrZero() float64   { return Num(r.Points) }
func (r StandingsRow) GameDiffOrZero() float64 { return Num(r.GameDiff) }

// TeamStatsRow aggregates a team's in-game numbers for the season.
type TeamStatsRow struct {
	TeamName string   `json:"team_name"`
	Kills    *float64 `json:"kills,omitempty"`
	Deaths   *float64 `json:"deaths,omitempty"`
	Assists  *float64 `json:"assists,omitempty"`
	Gold     *float64 `json:"gold,omitempty"`
	Damage   *float64 `json:"damage,omitempty"`
	Lord     *float64 `json:"lord,omitempty"`
	Tortoise *float64 `json:"tortoise,omitempty"`
	Tower    *float64 `json:"tower,omitempty"`
}

// KDAProxy is kills/(deaths+1); the +1 keeps deathless rows finite.
func (r TeamStatsRow) KDAProxy() float64 {
	d := Num(r.Deaths)
	if d < 0 {
		d = 0
	}
	return Num(r.Kills) / (d + 1)
}

// ObjectiveControl sums the three objective counters.
func (r TeamStatsRow) ObjectiveControl() float64 {
	return Num(r.Lord) + Num(r.Tortoise) + Num(r.Tower)
}

// PlayerStatsRow is one player's season line.
type PlayerStatsRow struct {
	PlayerName        string   `json:"player_name"`
	PlayerLogo        string   `json:"player_logo,omitempty"`
	Lane              string   `json:"lane,omitempty"`
	TotalGames        *float64 `json:"total_games,omitempty"`
	AvgKills          *float64 `json:"avg_kills,omitempty"`
	AvgDeaths         *float64 `json:"avg_deaths,omitempty"`
	AvgAssists        *float64 `json:"avg_assists,omitempty"`
	AvgKDA            *float64 `json:"avg_kda,omitempty"`
	KillParticipation *float64 `json:"kill_participation,omitempty"` // percent, 0–100
}

// PoolPick is one player's usage of a hero.
type PoolPick struct {
	Team     string   `json:"team,omitempty"`
	Name     string   `json:"name,omitempty"`
	Info     string   `json:"player_info,omitempty"`
	Pick     *float64 `json:"pick,omitempty"`
	PickRate *float64 `json:"pick_rate,omitempty"`
}

// HeroPoolRow lists who has picked a hero this season.
type HeroPoolRow struct {
	HeroName string     `json:"hero_name"`
	HeroLogo string     `json:"hero_logo,omitempty"`
	Total    int        `json:"total"`
	Players  []PoolPick `json:"players"`
}

// Transfer is one roster move. Date is nil when the upstream text could not
// be parsed; such rows are kept for display but never score.
type Transfer struct {
	Date     *time.Time `json:"date,omitempty"`
	DateText string     `json:"date_text"`
	Player   string     `json:"player"`
	Role     string     `json:"role,omitempty"`
	FromTeam string     `json:"from_team,omitempty"`
	ToTeam   string     `json:"to_team,omitempty"`
	FromLogo string     `json:"from_logo,omitempty"`
	ToLogo   string     `json:"to_logo,omitempty"`
}

func (t Transfer) IsCoach() bool {
	return strings.Contains(strings.ToLower(t.Role), "coach")
}

// PlayerHeroPool is one player's hero pool. The upstream shape is passed
// through untouched; only the player name is read.
type PlayerHeroPool struct {
	PlayerName string
	Raw        json.RawMessage
}

func (p *PlayerHeroPool) UnmarshalJSON(data []byte) error {
	var head struct {
		PlayerName string `json:"player_name"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	p.PlayerName = head.PlayerName
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (p PlayerHeroPool) MarshalJSON() ([]byte, error) {
	if len(p.Raw) == 0 {
		return json.Marshal(map[string]string{"player_name": p.PlayerName})
	}
	return p.Raw, nil
}
