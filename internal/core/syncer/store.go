package syncer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
	"github.com/charleschow/mplid-predictor/internal/telemetry"

	_ "modernc.org/sqlite"
)

// Fixed width so that text order is time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists synced team records and the log of served predictions.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sync store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sync schema: %w", err)
	}

	var teams int64
	db.QueryRow(`SELECT COUNT(*) FROM teams`).Scan(&teams)
	telemetry.Infof("sync store: opened %s  teams=%d", path, teams)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS teams (
	slug       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	tag        TEXT NOT NULL DEFAULT '',
	logo       TEXT NOT NULL DEFAULT '',
	ext_id     TEXT NOT NULL DEFAULT '',
	season     TEXT NOT NULL DEFAULT '',
	rating     REAL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS standings (
	team_slug  TEXT    NOT NULL REFERENCES teams(slug),
	season     TEXT    NOT NULL,
	rank       INTEGER NOT NULL,
	wins       INTEGER NOT NULL,
	losses     INTEGER NOT NULL,
	points     REAL,
	game_diff  REAL,
	updated_at TEXT    NOT NULL,
	PRIMARY KEY (team_slug, season)
);

CREATE TABLE IF NOT EXISTS team_stats (
	team_slug  TEXT PRIMARY KEY REFERENCES teams(slug),
	season     TEXT NOT NULL,
	kills      REAL,
	deaths     REAL,
	assists    REAL,
	gold       REAL,
	damage     REAL,
	lord       REAL,
	tortoise   REAL,
	tower      REAL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS predictions (
	id              TEXT PRIMARY KEY,
	created_at      TEXT    NOT NULL,
	team_a          TEXT    NOT NULL,
	team_b          TEXT    NOT NULL,
	best_of         INTEGER NOT NULL DEFAULT 0,
	prob_a          REAL    NOT NULL,
	prob_b          REAL    NOT NULL,
	raw_score       REAL    NOT NULL,
	history_version TEXT    NOT NULL,

	-- Roster-adjusted win percentages (nullable, transfers may be unavailable)
	adjusted_a REAL,
	adjusted_b REAL
);

CREATE INDEX IF NOT EXISTS idx_predictions_pair ON predictions(team_a, team_b, created_at);

CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY,
	season      TEXT    NOT NULL,
	started_at  TEXT    NOT NULL,
	finished_at TEXT    NOT NULL,
	teams       INTEGER NOT NULL,
	standings   INTEGER NOT NULL,
	team_stats  INTEGER NOT NULL,
	error       TEXT
)`

// SeededRating is an Elo-style starting point from the standings line:
// 1500 + (winPct−0.5)·400 + gd·8 + pts·5. No games counts as one.
func SeededRating(wins, losses int, gameDiff, points float64) float64 {
	games := wins + losses
	if games <= 0 {
		games = 1
	}
	winPct := float64(wins) / float64(games)
	return 1500 + (winPct-0.5)*400 + snapshot.Finite(gameDiff)*8 + snapshot.Finite(points)*5
}

func teamKey(t snapshot.TeamRow) string {
	if slug.Known(t.ID) {
		return slug.Resolve(t.ID)
	}
	return slug.Resolve(t.Name)
}

// Counts is what one Apply wrote.
type Counts struct {
	Teams     int `json:"teams"`
	Standings int `json:"standings"`
	TeamStats int `json:"team_stats"`
}

// Apply upserts one season's snapshot in a single transaction. Teams seen
// only in standings or stats get a bare row.
func (s *Store) Apply(ctx context.Context, season string, teams []snapshot.TeamRow, standings []snapshot.StandingsRow, stats []snapshot.TeamStatsRow) (Counts, error) {
	now := time.Now().UTC().Format(tsLayout)
	var n Counts

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return n, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ensure := func(key, name string) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO teams (slug, name, updated_at) VALUES (?, ?, ?) ON CONFLICT(slug) DO NOTHING`,
			key, name, now)
		return err
	}

	for _, t := range teams {
		key := teamKey(t)
		if key == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO teams (slug, name, tag, logo, ext_id, updated_at) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(slug) DO UPDATE SET
				name = excluded.name, tag = excluded.tag, logo = excluded.logo,
				ext_id = excluded.ext_id, updated_at = excluded.updated_at`,
			key, t.Name, t.Tag, t.Logo, t.ID, now)
		if err != nil {
			return n, fmt.Errorf("upsert team %s: %w", key, err)
		}
		n.Teams++
	}

	for _, r := range standings {
		key := slug.Resolve(r.Team)
		if key == "" {
			continue
		}
		if err := ensure(key, r.Team); err != nil {
			return n, fmt.Errorf("ensure team %s: %w", key, err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO standings (team_slug, season, rank, wins, losses, points, game_diff, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(team_slug, season) DO UPDATE SET
				rank = excluded.rank, wins = excluded.wins, losses = excluded.losses,
				points = excluded.points, game_diff = excluded.game_diff, updated_at = excluded.updated_at`,
			key, season, r.Rank, r.Wins, r.Losses, nullFloat(r.Points), nullFloat(r.GameDiff), now)
		if err != nil {
			return n, fmt.Errorf("upsert standing %s: %w", key, err)
		}
		rating := SeededRating(r.Wins, r.Losses, r.GameDiffOrZero(), r.PointsOrZero())
		if _, err := tx.ExecContext(ctx, `UPDATE teams SET rating = ?, season = ? WHERE slug = ?`, rating, season, key); err != nil {
			return n, fmt.Errorf("seed rating %s: %w", key, err)
		}
		n.Standings++
	}

	for _, r := range stats {
		key := slug.Resolve(r.TeamName)
		if key == "" {
			continue
		}
		if err := ensure(key, r.TeamName); err != nil {
			return n, fmt.Errorf("ensure team %s: %w", key, err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO team_stats (team_slug, season, kills, deaths, assists, gold, damage, lord, tortoise, tower, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(team_slug) DO UPDATE SET
				season = excluded.season, kills = excluded.kills, deaths = excluded.deaths,
				assists = excluded.assists, gold = excluded.gold, damage = excluded.damage,
				lord = excluded.lord, tortoise = excluded.tortoise, tower = excluded.tower,
				updated_at = excluded.updated_at`,
			key, season, nullFloat(r.Kills), nullFloat(r.Deaths), nullFloat(r.Assists), nullFloat(r.Gold),
			nullFloat(r.Damage), nullFloat(r.Lord), nullFloat(r.Tortoise), nullFloat(r.Tower), now)
		if err != nil {
			return n, fmt.Errorf("upsert team stats %s: %w", key, err)
		}
		n.TeamStats++
	}

	if err := tx.Commit(); err != nil {
		return n, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: snapshot.Finite(*p), Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}

// TeamRecord is a stored team with its seeded rating.
type TeamRecord struct {
	Slug   string   `json:"slug"`
	Name   string   `json:"name"`
	Tag    string   `json:"tag,omitempty"`
	Logo   string   `json:"logo,omitempty"`
	Season string   `json:"season,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
}

// Teams lists stored teams, highest rating first.
func (s *Store) Teams(ctx context.Context) ([]TeamRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, name, tag, logo, season, rating FROM teams ORDER BY rating IS NULL, rating DESC, slug`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var out []TeamRecord
	for rows.Next() {
		var t TeamRecord
		var rating sql.NullFloat64
		if err := rows.Scan(&t.Slug, &t.Name, &t.Tag, &t.Logo, &t.Season, &rating); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		t.Rating = floatPtr(rating)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Standings returns a season's stored table in rank order, shaped like the
// upstream rows so the predictor can run from the store alone.
func (s *Store) Standings(ctx context.Context, season string) ([]snapshot.StandingsRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.team_slug, t.logo, s.rank, s.wins, s.losses, s.points, s.game_diff
		FROM standings s JOIN teams t ON t.slug = s.team_slug
		WHERE s.season = ? ORDER BY s.rank, s.team_slug`, season)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	var out []snapshot.StandingsRow
	for rows.Next() {
		var r snapshot.StandingsRow
		var pts, gd sql.NullFloat64
		if err := rows.Scan(&r.Team, &r.Logo, &r.Rank, &r.Wins, &r.Losses, &pts, &gd); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		r.Points, r.GameDiff = floatPtr(pts), floatPtr(gd)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PredictionRecord is one logged /api/predict answer.
type PredictionRecord struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	TeamA          string    `json:"team_a"`
	TeamB          string    `json:"team_b"`
	BestOf         int       `json:"best_of,omitempty"`
	ProbA          float64   `json:"prob_a"`
	ProbB          float64   `json:"prob_b"`
	RawScore       float64   `json:"raw_score"`
	HistoryVersion string    `json:"history_version"`
	AdjustedA      *float64  `json:"adjusted_a,omitempty"`
	AdjustedB      *float64  `json:"adjusted_b,omitempty"`
}

func (s *Store) LogPrediction(ctx context.Context, p PredictionRecord) error {
	if p.ID == "" {
		return errors.New("log prediction: empty id")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (id, created_at, team_a, team_b, best_of, prob_a, prob_b, raw_score, history_version, adjusted_a, adjusted_b)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CreatedAt.UTC().Format(tsLayout), p.TeamA, p.TeamB, p.BestOf,
		p.ProbA, p.ProbB, p.RawScore, p.HistoryVersion, nullFloat(p.AdjustedA), nullFloat(p.AdjustedB))
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// RecentPredictions returns up to limit logged predictions, newest first.
func (s *Store) RecentPredictions(ctx context.Context, limit int) ([]PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, team_a, team_b, best_of, prob_a, prob_b, raw_score, history_version, adjusted_a, adjusted_b
		FROM predictions ORDER BY created_at DESC, id LIMIT ?`, max(limit, 1))
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []PredictionRecord
	for rows.Next() {
		var p PredictionRecord
		var created string
		var adjA, adjB sql.NullFloat64
		if err := rows.Scan(&p.ID, &created, &p.TeamA, &p.TeamB, &p.BestOf, &p.ProbA, &p.ProbB,
			&p.RawScore, &p.HistoryVersion, &adjA, &adjB); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.CreatedAt, _ = time.Parse(tsLayout, created)
		p.AdjustedA, p.AdjustedB = floatPtr(adjA), floatPtr(adjB)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) recordRun(ctx context.Context, id, season string, started, finished time.Time, n Counts, runErr error) error {
	var msg sql.NullString
	if runErr != nil {
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, season, started_at, finished_at, teams, standings, team_stats, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, season, started.UTC().Format(tsLayout), finished.UTC().Format(tsLayout),
		n.Teams, n.Standings, n.TeamStats, msg)
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// LastRun reports when the last successful sync finished. ok is false when
// there has been none.
func (s *Store) LastRun(ctx context.Context) (finished time.Time, ok bool, err error) {
	var ts string
	err = s.db.QueryRowContext(ctx,
		`SELECT finished_at FROM sync_runs WHERE error IS NULL ORDER BY finished_at DESC LIMIT 1`).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last run: %w", err)
	}
	finished, err = time.Parse(tsLayout, ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last run: %w", err)
	}
	return finished, true, nil
}
