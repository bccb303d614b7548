package mplid_http

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/charleschow/mplid-predictor/internal/core/players"
	"github.com/charleschow/mplid-predictor/internal/core/roster"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

type standingsRaw struct {
	Rank       Number `json:"rank"`
	TeamName   string `json:"team_name"`
	TeamLogo   string `json:"team_logo"`
	MatchPoint Number `json:"match_point"`
	MatchWL    string `json:"match_wl"`
	NetGameWin Number `json:"net_game_win"`
	GameWL     string `json:"game_wl"`
}

type teamRaw struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	TeamName string `json:"team_name"`
	Tag      string `json:"tag"`
	Logo     string `json:"logo"`
	TeamLogo string `json:"team_logo"`
	TeamURL  string `json:"team_url"`
}

type teamStatsRaw struct {
	TeamName string `json:"team_name"`
	Kills    Number `json:"kills"`
	Deaths   Number `json:"deaths"`
	Assists  Number `json:"assists"`
	Gold     Number `json:"gold"`
	Damage   Number `json:"damage"`
	Lord     Number `json:"lord"`
	Tortoise Number `json:"tortoise"`
	Tower    Number `json:"tower"`
}

type playerStatsRaw struct {
	PlayerName        string `json:"player_name"`
	PlayerLogo        string `json:"player_logo"`
	Lane              string `json:"lane"`
	TotalGames        Number `json:"total_games"`
	AvgKills          Number `json:"avg_kills"`
	AvgDeaths         Number `json:"avg_deaths"`
	AvgAssists        Number `json:"avg_assists"`
	AvgKDA            Number `json:"avg_kda"`
	KillParticipation Number `json:"kill_participation"`
}

type poolPickRaw struct {
	PlayerInfo string `json:"player_info"`
	Name       string `json:"name"`
	Pick       Number `json:"pick"`
	PickRate   Number `json:"pick_rate"`
}

type heroPoolRaw struct {
	HeroName string        `json:"hero_name"`
	HeroLogo string        `json:"hero_logo"`
	Total    Number        `json:"total"`
	Players  []poolPickRaw `json:"players"`
}

type transferRaw struct {
	TransferDate string `json:"transfer_date"`
	PlayerName   string `json:"player_name"`
	PlayerRole   string `json:"player_role"`
	FromTeamName string `json:"from_team_name"`
	FromTeamLogo string `json:"from_team_logo"`
	ToTeamName   string `json:"to_team_name"`
	ToTeamLogo   string `json:"to_team_logo"`
}

var pairRE = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)

// splitPair reads "W-L". Anything else is 0-0.
func splitPair(s string) (int, int) {
	m := pairRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	return a, b
}

// slugFromTeamURL takes the last path segment of a team page link, with or
// without a scheme.
func slugFromTeamURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		path = u.Path
	}
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// isIndexPayload spots the upstream's endpoint listing, [{"name","url"}].
func isIndexPayload(data []byte) bool {
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil || len(probe) == 0 {
		return false
	}
	_, hasName := probe[0]["name"]
	_, hasURL := probe[0]["url"]
	return hasName && hasURL
}

// decodeList accepts a bare array or an object wrapping one under "data"
// or "results".
func decodeList[T any](data []byte, what string) ([]T, error) {
	var out []T
	if err := json.Unmarshal(data, &out); err == nil {
		return out, nil
	}
	var wrapped struct {
		Data    []T `json:"data"`
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return wrapped.Results, nil
}

func decodeStandings(data []byte) ([]snapshot.StandingsRow, error) {
	if isIndexPayload(data) {
		return nil, fmt.Errorf("standings: %w", ErrIndexPayload)
	}
	raw, err := decodeList[standingsRaw](data, "standings")
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.StandingsRow, 0, len(raw))
	for _, r := range raw {
		w, l := splitPair(r.MatchWL)
		gw, gl := splitPair(r.GameWL)
		out = append(out, snapshot.StandingsRow{
			Rank:       r.Rank.Int(),
			Team:       strings.TrimSpace(r.TeamName),
			Wins:       w,
			Losses:     l,
			Points:     r.MatchPoint.Ptr(),
			GameDiff:   r.NetGameWin.Ptr(),
			Logo:       r.TeamLogo,
			MatchWL:    r.MatchWL,
			GameWL:     r.GameWL,
			GameWins:   gw,
			GameLosses: gl,
		})
	}
	return out, nil
}

func decodeTeams(data []byte) ([]snapshot.TeamRow, error) {
	raw, err := decodeList[teamRaw](data, "teams")
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.TeamRow, 0, len(raw))
	for _, t := range raw {
		id := slugFromTeamURL(t.TeamURL)
		if id == "" {
			id = string(t.ID)
		}
		name := t.Name
		if name == "" {
			name = t.TeamName
		}
		if name == "" {
			name = "Unknown"
		}
		logo := t.Logo
		if logo == "" {
			logo = t.TeamLogo
		}
		out = append(out, snapshot.TeamRow{ID: id, Name: name, Tag: t.Tag, Logo: logo, URL: t.TeamURL})
	}
	return out, nil
}

func decodeTeamStats(data []byte) ([]snapshot.TeamStatsRow, error) {
	raw, err := decodeList[teamStatsRaw](data, "team stats")
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.TeamStatsRow, 0, len(raw))
	for _, r := range raw {
		out = append(out, snapshot.TeamStatsRow{
			TeamName: strings.TrimSpace(r.TeamName),
			Kills:    r.Kills.Ptr(),
			Deaths:   r.Deaths.Ptr(),
			Assists:  r.Assists.Ptr(),
			Gold:     r.Gold.Ptr(),
			Damage:   r.Damage.Ptr(),
			Lord:     r.Lord.Ptr(),
			Tortoise: r.Tortoise.Ptr(),
			Tower:    r.Tower.Ptr(),
		})
	}
	return out, nil
}

func decodePlayerStats(data []byte) ([]snapshot.PlayerStatsRow, error) {
	raw, err := decodeList[playerStatsRaw](data, "player stats")
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.PlayerStatsRow, 0, len(raw))
	for _, r := range raw {
		out = append(out, snapshot.PlayerStatsRow{
			PlayerName:        r.PlayerName,
			PlayerLogo:        r.PlayerLogo,
			Lane:              r.Lane,
			TotalGames:        r.TotalGames.Ptr(),
			AvgKills:          r.AvgKills.Ptr(),
			AvgDeaths:         r.AvgDeaths.Ptr(),
			AvgAssists:        r.AvgAssists.Ptr(),
			AvgKDA:            r.AvgKDA.Ptr(),
			KillParticipation: r.KillParticipation.Ptr(),
		})
	}
	return out, nil
}

// decodePlayerPools also fills team and name from player_info.
func decodePlayerPools(data []byte) ([]snapshot.HeroPoolRow, error) {
	raw, err := decodeList[heroPoolRaw](data, "player pools")
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.HeroPoolRow, 0, len(raw))
	for _, h := range raw {
		row := snapshot.HeroPoolRow{HeroName: h.HeroName, HeroLogo: h.HeroLogo, Total: h.Total.Int()}
		for _, p := range h.Players {
			row.Players = append(row.Players, snapshot.PoolPick{
				Name:     p.Name,
				Info:     p.PlayerInfo,
				Pick:     p.Pick.Ptr(),
				PickRate: p.PickRate.Ptr(),
			})
		}
		if row.Total == 0 {
			row.Total = len(row.Players)
		}
		out = append(out, row)
	}
	return players.Enrich(out), nil
}

func decodeTransfers(data []byte) ([]snapshot.Transfer, error) {
	raw, err := decodeList[transferRaw](data, "transfers")
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.Transfer, 0, len(raw))
	for _, t := range raw {
		tr := snapshot.Transfer{
			DateText: t.TransferDate,
			Player:   strings.TrimSpace(t.PlayerName),
			Role:     t.PlayerRole,
			FromTeam: t.FromTeamName,
			ToTeam:   t.ToTeamName,
			FromLogo: t.FromTeamLogo,
			ToLogo:   t.ToTeamLogo,
		}
		if d, ok := roster.ParseDate(t.TransferDate); ok {
			tr.Date = &d
		}
		out = append(out, tr)
	}
	return out, nil
}

func decodeHeroPools(data []byte) ([]snapshot.PlayerHeroPool, error) {
	return decodeList[snapshot.PlayerHeroPool](data, "hero pools")
}
