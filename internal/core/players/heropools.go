package players

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKD.String(s))), " ")
}

// SearchHeroPools matches player names exactly after NFKD folding, falling
// back to a substring match when nothing is exact.
func SearchHeroPools(list []snapshot.PlayerHeroPool, player string) []snapshot.PlayerHeroPool {
	needle := normalizeName(player)
	if needle == "" {
		return list
	}

	var exact, partial []snapshot.PlayerHeroPool
	for _, p := range list {
		name := normalizeName(p.PlayerName)
		switch {
		case name == needle:
			exact = append(exact, p)
		case strings.Contains(name, needle):
			partial = append(partial, p)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}
