// Package normalize converts raw provider team names into the canonical
// comparison form shared by the resolver and the ingestion sync paths.
//
// The rule table is small and fixed. Downstream services rely on it being
// reproducible, so rules are ordered and append-only: dash/quote unification
// runs before anything dash-sensitive, University forms are dropped before
// the State contraction sees the bare school name.
package normalize

import (
	"strings"
	"unicode"
)

// asciiReplacer unifies curly quotes and en/em dashes to their ASCII
// equivalents before any other rule runs.
var asciiReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"–", "-", // en dash
	"—", "-", // em dash
)

// directionalPrefixes are contracted to the single-letter-period form used by
// canonical names ("Northern Iowa" -> "N. Iowa").
var directionalPrefixes = [][2]string{
	{"Northern ", "N. "},
	{"Southern ", "S. "},
	{"Eastern ", "E. "},
	{"Western ", "W. "},
	{"Central ", "C. "},
}

// Normalize applies the ordered rule table to a raw provider name. It is
// total and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	name = asciiReplacer.Replace(name)
	name = collapseWhitespace(name)

	// University forms drop first so the State rules see the school name.
	name = strings.TrimSuffix(name, " University")
	name = strings.TrimPrefix(name, "University of ")

	// Carolina contractions run before the directional prefixes; "North
	// Carolina" must never be read as a directional.
	if strings.HasPrefix(name, "North Carolina") {
		name = "N.C." + name[len("North Carolina"):]
	} else if strings.HasPrefix(name, "South Carolina") {
		name = "S.C." + name[len("South Carolina"):]
	}

	if strings.HasPrefix(name, "Saint ") {
		name = "St. " + name[len("Saint "):]
	} else if strings.HasPrefix(name, "St ") {
		name = "St. " + name[len("St "):]
	}

	for _, p := range directionalPrefixes {
		if strings.HasPrefix(name, p[0]) {
			name = p[1] + name[len(p[0]):]
			break
		}
	}

	// State contracts both as a trailing word and mid-name ("Oregon State
	// Beavers" -> "Oregon St. Beavers").
	name = strings.ReplaceAll(name, " State ", " St. ")
	if strings.HasSuffix(name, " State") {
		name = strings.TrimSuffix(name, " State") + " St."
	}

	return strings.TrimSpace(collapseWhitespace(name))
}

// CompareKey folds a name down to lowercase letters and digits only. Both
// sides of every normalized comparison go through this fold, so "Texas A&M",
// "Texas A&M;" and "TEXAS AM" all share one key.
func CompareKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
