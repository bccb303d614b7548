package slug

// aliases maps folded names, abbreviations and known typos to a slug.
// Every slug also maps to itself (see init).
var aliases = map[string]string{
	// Alter Ego
	"alter ego": "ae", "alter ego esports": "ae", "alterego": "ae", "ae esports": "ae",

	// Bigetron
	"bigetron": "btr", "bigetron alpha": "btr", "bigetron by vitality": "btr", "btr vit": "btr",
	"btr vitality": "btr", "bigetron esports": "btr",

	// Dewa United
	"dewa united": "dewa", "dewa united esports": "dewa", "dewa esports": "dewa", "dwa": "dewa",

	// EVOS
	"evos glory": "evos", "evos esports": "evos", "evos legends": "evos",

	// Geek Fam
	"geek fam": "geek", "geek fam id": "geek", "geekfam": "geek", "gfam": "geek",
	"geej": "geek", // week 2 score sheet typo

	// ONIC
	"onic esports": "onic", "onic esports id": "onic", "onic id": "onic",

	// RRQ
	"rrq hoshi": "rrq", "rex regum qeon": "rrq", "rrq esports": "rrq",

	// Team Liquid ID
	"team liquid id": "tlid", "team liquid": "tlid", "liquid id": "tlid", "tl id": "tlid",
	"team liquid indonesia": "tlid", "aura fire": "tlid",

	// NAVI
	"natus vincere": "navi", "na'vi": "navi", "navi id": "navi", "natus vincere id": "navi",
}

func init() {
	for _, t := range teams {
		aliases[t.Slug] = t.Slug
		aliases[Fold(t.Name)] = t.Slug
		if t.Tag != "" {
			aliases[Fold(t.Tag)] = t.Slug
		}
	}
}
