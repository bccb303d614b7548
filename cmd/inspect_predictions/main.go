package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

func main() {
	team := flag.String("team", "", "slug to match on either side (empty matches all)")
	n := flag.Int("n", 10, "max results to return")
	dbPath := flag.String("db", "data/mplid.db", "path to the sync store")
	flag.Parse()

	db, err := sql.Open("sqlite", *dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(10000)&mode=ro")
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	q := `SELECT id, created_at, team_a, team_b, best_of, prob_a, prob_b, raw_score, history_version, adjusted_a, adjusted_b FROM predictions`
	var args []any
	if *team != "" {
		q += ` WHERE team_a = ? OR team_b = ?`
		args = append(args, *team, *team)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, *n)

	rows, err := db.Query(q, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id, created, a, b, version string
		var bestOf int
		var probA, probB, raw float64
		var adjA, adjB sql.NullFloat64
		if err := rows.Scan(&id, &created, &a, &b, &bestOf, &probA, &probB, &raw, &version, &adjA, &adjB); err != nil {
			fmt.Fprintf(os.Stderr, "scan: %v\n", err)
			continue
		}
		count++

		fmt.Printf("--- %s  %s  history=%s ---\n", id, created, version)
		fmt.Printf("  %-6s vs %-6s  bo%d  %.1f%% / %.1f%%  score=%+.3f", a, b, bestOf, 100*probA, 100*probB, raw)
		if adjA.Valid && adjB.Valid {
			fmt.Printf("  roster-adjusted %.1f%% / %.1f%%", adjA.Float64, adjB.Float64)
		}
		fmt.Println()
	}
	if count == 0 {
		fmt.Println("(no predictions found)")
	} else {
		fmt.Printf("(%d results)\n", count)
	}
}
