package resolve

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"ncaam_v5/resolution/internal/models"
	"ncaam_v5/resolution/internal/normalize"
)

const (
	maxAlternatives = 5

	// Keys shorter than this never participate in the alternatives scan;
	// a two-letter key is related to half the registry.
	minAlternativeKeyLen = 4
)

type aliasEntry struct {
	team       *models.Team
	confidence float64
	source     string
}

type keyedName struct {
	name string
	key  string
}

// Index is the in-memory lookup snapshot the waterfall runs against. It is
// built from explicit slices so tests never need a database. Lookups are
// read-only; mutation happens only through the Engine, under its lock.
//
// Canonical and alias strings are indexed under their compare key as stored.
// Only the input side passes through the Normalizer, mirroring how the
// registry is queried: stored names are already in house style, provider
// inputs are not.
type Index struct {
	teams      map[uuid.UUID]*models.Team
	canonLower map[string][]*models.Team
	aliasLower map[string][]aliasEntry
	canonKey   map[string][]*models.Team
	aliasKey   map[string][]aliasEntry
	rated      map[uuid.UUID]bool
	canonNames []keyedName
	aliasCount int
}

// NewIndex builds a snapshot from registry rows. Alias rows pointing at an
// unknown team id are skipped.
func NewIndex(teams []*models.Team, aliases []*models.Alias, ratedIDs []uuid.UUID) *Index {
	idx := &Index{
		teams:      make(map[uuid.UUID]*models.Team, len(teams)),
		canonLower: make(map[string][]*models.Team, len(teams)),
		aliasLower: make(map[string][]aliasEntry, len(aliases)),
		canonKey:   make(map[string][]*models.Team, len(teams)),
		aliasKey:   make(map[string][]aliasEntry, len(aliases)),
		rated:      make(map[uuid.UUID]bool, len(ratedIDs)),
	}

	for _, t := range teams {
		idx.addTeam(t)
	}
	for _, a := range aliases {
		idx.addAlias(a)
	}
	for _, id := range ratedIDs {
		idx.rated[id] = true
	}

	return idx
}

// Resolve runs the five-stage waterfall. First match wins; an input no
// stage matches comes back with Method set to MethodUnresolved.
func (idx *Index) Resolve(input string, hints *Hints) Resolution {
	trimmed := strings.TrimSpace(input)
	normalized := normalize.Normalize(trimmed)

	res := Resolution{
		Input:           input,
		NormalizedInput: normalized,
		Method:          MethodUnresolved,
	}
	if trimmed == "" {
		return res
	}

	// Stage 1: exact canonical name, case-insensitive, hint-narrowed.
	if team := idx.exactCanonical(trimmed, hints); team != nil {
		return res.withTeam(team, MethodCanonical, confidenceCanonical, idx.rated[team.ID])
	}

	// Stage 2: exact alias, case-insensitive.
	if e := idx.exactAlias(trimmed); e != nil {
		return res.withTeam(e.team, MethodAlias, e.confidence, idx.rated[e.team.ID])
	}

	// Stage 3: compare-key match on the normalized input.
	normKey := normalize.CompareKey(normalized)
	if team := idx.keyMatch(normKey); team != nil {
		return res.withTeam(team, MethodNormalized, confidenceNormalized, idx.rated[team.ID])
	}

	// Stage 4: compare-key match after mascot stripping.
	if stripped := normalize.StripMascot(normalized); stripped != normalized {
		if team := idx.keyMatch(normalize.CompareKey(stripped)); team != nil {
			return res.withTeam(team, MethodMascotStripped, confidenceMascotStripped, idx.rated[team.ID])
		}
	}

	// Stage 5: fail closed. Alternatives are triage hints, not matches.
	res.Alternatives = idx.alternatives(normKey)
	return res
}

func (r Resolution) withTeam(team *models.Team, method Method, confidence float64, hasRatings bool) Resolution {
	r.TeamID = team.ID
	r.CanonicalName = team.CanonicalName
	r.Method = method
	r.Confidence = confidence
	r.HasRatings = hasRatings
	return r
}

func (idx *Index) exactCanonical(input string, hints *Hints) *models.Team {
	candidates := idx.canonLower[strings.ToLower(input)]
	if hints != nil {
		filtered := make([]*models.Team, 0, len(candidates))
		for _, t := range candidates {
			if matchesHints(t, hints) {
				filtered = append(filtered, t)
			}
		}
		candidates = filtered
	}
	return idx.pickTeam(candidates)
}

func matchesHints(t *models.Team, h *Hints) bool {
	if h.Conference != "" && (!t.Conference.Valid || !strings.EqualFold(t.Conference.String, h.Conference)) {
		return false
	}
	if h.City != "" && (!t.City.Valid || !strings.EqualFold(t.City.String, h.City)) {
		return false
	}
	if h.State != "" && (!t.State.Valid || !strings.EqualFold(t.State.String, h.State)) {
		return false
	}
	return true
}

func (idx *Index) exactAlias(input string) *aliasEntry {
	return idx.pickAlias(idx.aliasLower[strings.ToLower(input)])
}

// keyMatch resolves a compare key against canonical names first, then
// aliases. Empty keys match nothing.
func (idx *Index) keyMatch(key string) *models.Team {
	if key == "" {
		return nil
	}
	if team := idx.pickTeam(idx.canonKey[key]); team != nil {
		return team
	}
	if e := idx.pickAlias(idx.aliasKey[key]); e != nil {
		return e.team
	}
	return nil
}

// pickTeam breaks ties deterministically: rated teams beat unrated, then
// canonical name ascending.
func (idx *Index) pickTeam(candidates []*models.Team) *models.Team {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	for _, t := range candidates[1:] {
		if idx.preferTeam(t, best) {
			best = t
		}
	}
	return best
}

func (idx *Index) preferTeam(a, b *models.Team) bool {
	if idx.rated[a.ID] != idx.rated[b.ID] {
		return idx.rated[a.ID]
	}
	if a.CanonicalName != b.CanonicalName {
		return a.CanonicalName < b.CanonicalName
	}
	// Shadow teams share a canonical name; fall through to the id so the
	// pick never depends on map or insertion order.
	return a.ID.String() < b.ID.String()
}

// pickAlias orders by confidence, then rating presence, then canonical name
// and source for full determinism.
func (idx *Index) pickAlias(entries []aliasEntry) *aliasEntry {
	if len(entries) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(entries); i++ {
		if idx.preferAlias(entries[i], entries[best]) {
			best = i
		}
	}
	return &entries[best]
}

func (idx *Index) preferAlias(a, b aliasEntry) bool {
	if a.confidence != b.confidence {
		return a.confidence > b.confidence
	}
	if idx.rated[a.team.ID] != idx.rated[b.team.ID] {
		return idx.rated[a.team.ID]
	}
	if a.team.CanonicalName != b.team.CanonicalName {
		return a.team.CanonicalName < b.team.CanonicalName
	}
	if a.source != b.source {
		return a.source < b.source
	}
	return a.team.ID.String() < b.team.ID.String()
}

// alternatives lists up to five canonical names whose key contains, or is
// contained by, the input's key. Name-ordered for stable output.
func (idx *Index) alternatives(inputKey string) []string {
	if len(inputKey) < minAlternativeKeyLen {
		return nil
	}
	var alts []string
	for _, kn := range idx.canonNames {
		if len(kn.key) < minAlternativeKeyLen || kn.key == inputKey {
			continue
		}
		if !strings.Contains(kn.key, inputKey) && !strings.Contains(inputKey, kn.key) {
			continue
		}
		alts = append(alts, kn.name)
		if len(alts) == maxAlternatives {
			break
		}
	}
	return alts
}

func (idx *Index) addTeam(t *models.Team) {
	if _, ok := idx.teams[t.ID]; ok {
		return
	}
	idx.teams[t.ID] = t

	lower := strings.ToLower(t.CanonicalName)
	idx.canonLower[lower] = append(idx.canonLower[lower], t)

	key := normalize.CompareKey(t.CanonicalName)
	idx.canonKey[key] = append(idx.canonKey[key], t)

	idx.canonNames = append(idx.canonNames, keyedName{name: t.CanonicalName, key: key})
	sort.Slice(idx.canonNames, func(i, j int) bool {
		return idx.canonNames[i].name < idx.canonNames[j].name
	})
}

func (idx *Index) addAlias(a *models.Alias) bool {
	team, ok := idx.teams[a.TeamID]
	if !ok {
		return false
	}
	e := aliasEntry{team: team, confidence: a.Confidence, source: a.Source}

	lower := strings.ToLower(a.Alias)
	idx.aliasLower[lower] = append(idx.aliasLower[lower], e)

	key := normalize.CompareKey(a.Alias)
	idx.aliasKey[key] = append(idx.aliasKey[key], e)

	idx.aliasCount++
	return true
}

func (idx *Index) markRated(id uuid.UUID) {
	idx.rated[id] = true
}

// TeamCount returns the number of teams in the snapshot
func (idx *Index) TeamCount() int {
	return len(idx.teams)
}

// AliasCount returns the number of alias entries in the snapshot
func (idx *Index) AliasCount() int {
	return idx.aliasCount
}

// RatedCount returns the number of rated teams in the snapshot
func (idx *Index) RatedCount() int {
	return len(idx.rated)
}
