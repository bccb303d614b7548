package slug

import (
	"cmp"
	"slices"
)

// Team is the identity of one league member.
type Team struct {
	Slug string `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`
	Logo string `json:"logo,omitempty"`
}

var teams = []Team{
	{Slug: "ae", Name: "Alter Ego Esports", Tag: "AE"},
	{Slug: "btr", Name: "Bigetron by Vitality", Tag: "BTR"},
	{Slug: "dewa", Name: "Dewa United Esports", Tag: "DEWA"},
	{Slug: "evos", Name: "EVOS", Tag: "EVOS"},
	{Slug: "geek", Name: "Geek Fam ID", Tag: "GEEK"},
	{Slug: "onic", Name: "ONIC", Tag: "ONIC"},
	{Slug: "rrq", Name: "RRQ Hoshi", Tag: "RRQ"},
	{Slug: "tlid", Name: "Team Liquid ID", Tag: "TLID"},
	{Slug: "navi", Name: "NAVI", Tag: "NAVI"},
}

// Teams returns the league roster of canonical identities, ordered by slug.
func Teams() []Team {
	out := slices.Clone(teams)
	slices.SortFunc(out, func(a, b Team) int { return cmp.Compare(a.Slug, b.Slug) })
	return out
}

// Lookup returns the canonical team for any alias.
func Lookup(nameOrSlug string) (Team, bool) {
	s := Resolve(nameOrSlug)
	for _, t := range teams {
		if t.Slug == s {
			return t, true
		}
	}
	return Team{Slug: s}, false
}

// Known reports whether the input resolves to a league member.
func Known(nameOrSlug string) bool {
	_, ok := Lookup(nameOrSlug)
	return ok
}

// Slugs lists every canonical slug, sorted.
func Slugs() []string {
	out := make([]string, 0, len(teams))
	for _, t := range Teams() {
		out = append(out, t.Slug)
	}
	return out
}
