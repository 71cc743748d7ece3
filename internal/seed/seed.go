// Package seed ships the curated alias table applied at startup. These are
// the provider labels that burned us in production: mappings a cold registry
// cannot learn on its own because nothing about the string resembles the
// canonical name. Targets that do not exist yet are logged and skipped,
// never created.
package seed

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"ncaam_v5/resolution/internal/repository"
	"ncaam_v5/resolution/internal/resolve"
)

// curated maps a provider label to the canonical name it must resolve to.
// Grouped by the incidents that earned each block its place.
var curated = map[string]string{
	// Connecticut variants
	"UConn":               "Connecticut",
	"UConn Huskies":       "Connecticut",
	"UCONN":               "Connecticut",
	"Connecticut Huskies": "Connecticut",

	// Florida schools. FIU, FAU and Florida A&M all shadow each other in
	// provider feeds; exact mappings keep them apart.
	"Florida A&M Rattlers":           "Florida A&M",
	"FAMU":                           "Florida A&M",
	"Fla A&M":                        "Florida A&M",
	"Florida AM":                     "Florida A&M",
	"FIU Panthers":                   "FIU",
	"Florida International":          "FIU",
	"Florida International Panthers": "FIU",
	"FAU Owls":                       "FAU",
	"Florida Atlantic Owls":          "FAU",
	"Florida Atlantic":               "FAU",

	// Oregon and Oregon St. arrive under four different labels
	"Oregon Ducks":         "Oregon",
	"Oregon State Beavers": "Oregon St.",
	"Oregon State":         "Oregon St.",
	"OSU Beavers":          "Oregon St.",

	// Power conference mascot forms
	"Duke Blue Devils":         "Duke",
	"North Carolina Tar Heels": "North Carolina",
	"UNC":                      "North Carolina",
	"NC State Wolfpack":        "NC State",
	"Kentucky Wildcats":        "Kentucky",
	"Kansas Jayhawks":          "Kansas",
	"Gonzaga Bulldogs":         "Gonzaga",
	"Alabama Crimson Tide":     "Alabama",
	"Auburn Tigers":            "Auburn",
	"Tennessee Volunteers":     "Tennessee",
	"Texas Longhorns":          "Texas",
	"Texas A&M Aggies":         "Texas A&M",
	"Michigan Wolverines":      "Michigan",
	"Ohio State Buckeyes":      "Ohio St.",
	"Purdue Boilermakers":      "Purdue",
	"Houston Cougars":          "Houston",

	// Full "State" forms for teams stored in St. style
	"Florida St. Seminoles":    "Florida St.",
	"Florida State Seminoles":  "Florida St.",
	"Florida State":            "Florida St.",
	"Michigan State Spartans":  "Michigan St.",
	"Michigan State":           "Michigan St.",
	"Penn State Nittany Lions": "Penn St.",
	"Penn State":               "Penn St.",
	"Ohio State":               "Ohio St.",
	"Kansas State Wildcats":    "Kansas St.",
	"Kansas State":             "Kansas St.",
	"Iowa State Cyclones":      "Iowa St.",
	"Iowa State":               "Iowa St.",
	"Oklahoma State Cowboys":   "Oklahoma St.",
	"Oklahoma State":           "Oklahoma St.",

	// HBCU programs, chronically mislabeled in odds feeds
	"Grambling State Tigers":       "Grambling St.",
	"Grambling State":              "Grambling St.",
	"Jackson State Tigers":         "Jackson St.",
	"Jackson State":                "Jackson St.",
	"Norfolk State Spartans":       "Norfolk St.",
	"Norfolk State":                "Norfolk St.",
	"Morgan State Bears":           "Morgan St.",
	"Morgan State":                 "Morgan St.",
	"Coppin State Eagles":          "Coppin St.",
	"Coppin State":                 "Coppin St.",
	"Hampton Pirates":              "Hampton",
	"Alabama State Hornets":        "Alabama St.",
	"Alabama State":                "Alabama St.",
	"Prairie View A&M Panthers":    "Prairie View A&M",
	"Texas Southern Tigers":        "Texas Southern",
	"Mississippi Valley State":     "Mississippi Valley St.",
	"Miss Valley St. Delta Devils": "Mississippi Valley St.",

	// Mid-majors with unstable provider labels
	"Southeastern Louisiana Lions": "Southeastern Louisiana",
	"SE Louisiana":                 "Southeastern Louisiana",
	"SE Louisiana Lions":           "Southeastern Louisiana",
	"Tarleton State Texans":        "Tarleton St.",
	"Tarleton State":               "Tarleton St.",
	"Tarleton St. Texans":          "Tarleton St.",
	"North Alabama Lions":          "North Alabama",
	"California Golden Bears":      "California",
	"Cal Bears":                    "California",
	"Cal":                          "California",
	"High Point Panthers":          "High Point",
	"La Salle Explorers":           "La Salle",
	"Navy Midshipmen":              "Navy",
}

// Entry is one curated alias mapping
type Entry struct {
	Alias     string
	Canonical string
}

// Entries returns the curated table sorted by alias, so applying the seed
// touches the database in a stable order.
func Entries() []Entry {
	entries := make([]Entry, 0, len(curated))
	for alias, canonical := range curated {
		entries = append(entries, Entry{Alias: alias, Canonical: canonical})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Alias < entries[j].Alias
	})
	return entries
}

// Result summarizes one seeding pass
type Result struct {
	Applied   int
	Missing   int
	Conflicts int
}

// Apply registers every curated alias under the given source. Aliases whose
// canonical target is not registered yet are skipped; a later pass picks
// them up once the ratings sync has created the team. Conflicting aliases
// are reported, not overwritten.
func Apply(ctx context.Context, db *repository.Database, resolver *resolve.Service, source string) (*Result, error) {
	result := &Result{}

	for _, entry := range Entries() {
		team, err := db.Teams.GetByCanonicalName(ctx, entry.Canonical)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				log.Warn().
					Str("alias", entry.Alias).
					Str("canonical", entry.Canonical).
					Msg("Seed target not registered yet, skipping alias")
				result.Missing++
				continue
			}
			return result, err
		}

		if _, err := resolver.RegisterAlias(ctx, entry.Alias, source, team.ID, 1.0); err != nil {
			if errors.Is(err, repository.ErrAliasConflict) {
				log.Warn().
					Str("alias", entry.Alias).
					Str("canonical", entry.Canonical).
					Msg("Seed alias already owned by another team, leaving it alone")
				result.Conflicts++
				continue
			}
			return result, err
		}
		result.Applied++
	}

	log.Info().
		Str("source", source).
		Int("applied", result.Applied).
		Int("missing", result.Missing).
		Int("conflicts", result.Conflicts).
		Msg("Curated alias seed applied")

	return result, nil
}
