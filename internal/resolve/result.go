// Package resolve maps raw provider team names to canonical registry teams.
//
// Matching is a fixed five-stage waterfall; the first stage that produces a
// candidate wins and later stages never run. There is no fuzzy or substring
// stage: an input that survives all four matching stages comes back
// Unresolved, and an operator registers an alias to cover it.
package resolve

import (
	"github.com/google/uuid"
)

// Method identifies which waterfall stage produced a resolution
type Method string

const (
	MethodCanonical      Method = "canonical"
	MethodAlias          Method = "alias"
	MethodNormalized     Method = "normalized"
	MethodMascotStripped Method = "mascot_stripped"
	MethodUnresolved     Method = "unresolved"
)

// Confidence tiers per method. Alias resolutions carry the alias row's own
// confidence instead.
const (
	confidenceCanonical      = 1.0
	confidenceNormalized     = 0.95
	confidenceMascotStripped = 0.9
)

// Hints optionally narrow an exact canonical match when a provider supplies
// conference or location context alongside the name. Empty fields are
// ignored; a populated field that contradicts every candidate makes stage
// one produce nothing rather than a wrong team.
type Hints struct {
	Conference string
	City       string
	State      string
}

// Resolution is the outcome of one resolver invocation. Unresolved is a
// value, not an error: Method is MethodUnresolved, TeamID is zero and
// Confidence is 0.
type Resolution struct {
	Input           string    `json:"input"`
	NormalizedInput string    `json:"normalized_input"`
	TeamID          uuid.UUID `json:"team_id"`
	CanonicalName   string    `json:"canonical_name"`
	Method          Method    `json:"method"`
	Confidence      float64   `json:"confidence"`
	HasRatings      bool      `json:"has_ratings"`

	// Alternatives are up to five canonical names whose compare key has a
	// substring relationship with the input's. Populated only for
	// unresolved inputs, for operator triage; never used for matching.
	Alternatives []string `json:"alternatives,omitempty"`
}

// Resolved reports whether the input mapped to a canonical team
func (r Resolution) Resolved() bool {
	return r.Method != MethodUnresolved
}
