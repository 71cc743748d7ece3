package resolve

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam_v5/resolution/internal/models"
)

func newTeam(name, conference string) *models.Team {
	team := &models.Team{ID: uuid.New(), CanonicalName: name}
	if conference != "" {
		team.Conference = sql.NullString{String: conference, Valid: true}
	}
	return team
}

func newAlias(teamID uuid.UUID, alias, source string, confidence float64) *models.Alias {
	return &models.Alias{TeamID: teamID, Alias: alias, Source: source, Confidence: confidence}
}

// fixture is a small slice of the registry with the historically dangerous
// name families present.
type fixture struct {
	idx   *Index
	teams map[string]*models.Team
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	names := []struct {
		name       string
		conference string
		rated      bool
	}{
		{"Oregon", "Pac-12", true},
		{"Oregon St.", "Pac-12", true},
		{"Florida", "SEC", true},
		{"Florida A&M", "SWAC", false},
		{"FIU", "CUSA", false},
		{"FAU", "American", true},
		{"Duke", "ACC", true},
		{"Tennessee", "SEC", true},
		{"Tennessee St.", "OVC", false},
		{"North Carolina", "ACC", true},
		{"NC State", "ACC", true},
		{"Connecticut", "Big East", true},
		{"Northern Colorado", "Big Sky", true},
		{"Ohio St.", "Big Ten", true},
		{"Kent St.", "MAC", true},
		{"Marquette", "Big East", true},
		{"Gonzaga", "WCC", true},
	}

	f := &fixture{teams: make(map[string]*models.Team, len(names))}
	teams := make([]*models.Team, 0, len(names))
	var rated []uuid.UUID
	for _, n := range names {
		team := newTeam(n.name, n.conference)
		f.teams[n.name] = team
		teams = append(teams, team)
		if n.rated {
			rated = append(rated, team.ID)
		}
	}

	aliases := []*models.Alias{
		newAlias(f.teams["Connecticut"].ID, "UConn", "the_odds_api", 1.0),
		newAlias(f.teams["FAU"].ID, "Florida Atlantic", "the_odds_api", 1.0),
		newAlias(f.teams["NC State"].ID, "NC State Wolfpack", "the_odds_api", 1.0),
	}

	f.idx = NewIndex(teams, aliases, rated)
	require.Equal(t, len(names), f.idx.TeamCount())
	return f
}

func TestResolveExactCanonical(t *testing.T) {
	f := newFixture(t)

	res := f.idx.Resolve("Duke", nil)
	assert.Equal(t, MethodCanonical, res.Method)
	assert.Equal(t, "Duke", res.CanonicalName)
	assert.Equal(t, f.teams["Duke"].ID, res.TeamID)
	assert.Equal(t, 1.0, res.Confidence)
	assert.True(t, res.HasRatings)

	// Case-insensitive.
	res = f.idx.Resolve("dUkE", nil)
	assert.Equal(t, MethodCanonical, res.Method)
	assert.Equal(t, "Duke", res.CanonicalName)
}

func TestResolveCanonicalFixedPoint(t *testing.T) {
	f := newFixture(t)

	for name, team := range f.teams {
		res := f.idx.Resolve(name, nil)
		assert.Equal(t, MethodCanonical, res.Method, "canonical %q must match itself", name)
		assert.Equal(t, team.ID, res.TeamID, "canonical %q must map to its own team", name)
	}
}

func TestResolveNeverSubstringMatches(t *testing.T) {
	// "Oregon" once resolved to "Oregon St." through a contains heuristic.
	// With only "Oregon St." registered, "Oregon" must stay unresolved.
	oregonSt := newTeam("Oregon St.", "Pac-12")
	idx := NewIndex([]*models.Team{oregonSt}, nil, []uuid.UUID{oregonSt.ID})

	res := idx.Resolve("Oregon", nil)
	assert.Equal(t, MethodUnresolved, res.Method)
	assert.Equal(t, uuid.Nil, res.TeamID)
	assert.Zero(t, res.Confidence)

	// It does show up as a triage alternative, which is not a match.
	assert.Contains(t, res.Alternatives, "Oregon St.")
}

func TestResolveOregonFamily(t *testing.T) {
	f := newFixture(t)

	res := f.idx.Resolve("Oregon", nil)
	assert.Equal(t, "Oregon", res.CanonicalName)
	assert.Equal(t, MethodCanonical, res.Method)

	res = f.idx.Resolve("Oregon Ducks", nil)
	assert.Equal(t, "Oregon", res.CanonicalName)
	assert.Equal(t, MethodMascotStripped, res.Method)

	res = f.idx.Resolve("Oregon State Beavers", nil)
	assert.Equal(t, "Oregon St.", res.CanonicalName)
	assert.Equal(t, MethodMascotStripped, res.Method)

	res = f.idx.Resolve("Oregon State", nil)
	assert.Equal(t, "Oregon St.", res.CanonicalName)
	assert.Equal(t, MethodNormalized, res.Method)
}

func TestResolveFloridaFamily(t *testing.T) {
	f := newFixture(t)

	res := f.idx.Resolve("Florida", nil)
	assert.Equal(t, "Florida", res.CanonicalName)
	assert.Equal(t, MethodCanonical, res.Method)

	res = f.idx.Resolve("Florida A&M Rattlers", nil)
	assert.Equal(t, "Florida A&M", res.CanonicalName)
	assert.Equal(t, MethodMascotStripped, res.Method)

	res = f.idx.Resolve("FIU Panthers", nil)
	assert.Equal(t, "FIU", res.CanonicalName)
	assert.Equal(t, MethodMascotStripped, res.Method)

	// "Florida Atlantic" only maps to FAU through its registered alias.
	res = f.idx.Resolve("Florida Atlantic", nil)
	assert.Equal(t, "FAU", res.CanonicalName)
	assert.Equal(t, MethodAlias, res.Method)
}

func TestResolveMascotStripped(t *testing.T) {
	f := newFixture(t)

	res := f.idx.Resolve("Duke Blue Devils", nil)
	assert.Equal(t, "Duke", res.CanonicalName)
	assert.Equal(t, MethodMascotStripped, res.Method)
	assert.Equal(t, 0.9, res.Confidence)

	// A bare mascot word is ambiguous and must fail closed.
	res = f.idx.Resolve("Wolfpack", nil)
	assert.Equal(t, MethodUnresolved, res.Method)
}

func TestResolveNormalized(t *testing.T) {
	f := newFixture(t)

	res := f.idx.Resolve("Tennessee State", nil)
	assert.Equal(t, "Tennessee St.", res.CanonicalName)
	assert.Equal(t, MethodNormalized, res.Method)
	assert.Equal(t, 0.95, res.Confidence)
	assert.Equal(t, "Tennessee St.", res.NormalizedInput)

	res = f.idx.Resolve("Ohio State", nil)
	assert.Equal(t, "Ohio St.", res.CanonicalName)
	assert.Equal(t, MethodNormalized, res.Method)

	res = f.idx.Resolve("Kent State Golden Flashes", nil)
	assert.Equal(t, "Kent St.", res.CanonicalName)
	assert.Equal(t, MethodMascotStripped, res.Method)
}

func TestResolveTennesseeStaysExact(t *testing.T) {
	f := newFixture(t)

	res := f.idx.Resolve("Tennessee", nil)
	assert.Equal(t, "Tennessee", res.CanonicalName, "plain Tennessee must never drift to Tennessee St.")
	assert.Equal(t, MethodCanonical, res.Method)
}

func TestResolveHints(t *testing.T) {
	f := newFixture(t)

	res := f.idx.Resolve("Tennessee", &Hints{Conference: "SEC"})
	assert.Equal(t, "Tennessee", res.CanonicalName)
	assert.Equal(t, MethodCanonical, res.Method)

	// A contradicting hint blocks stage one; the name still resolves on
	// the normalized stage at lower confidence.
	res = f.idx.Resolve("Tennessee", &Hints{Conference: "ACC"})
	assert.Equal(t, "Tennessee", res.CanonicalName)
	assert.Equal(t, MethodNormalized, res.Method)
}

func TestResolveAliasLifecycle(t *testing.T) {
	f := newFixture(t)

	res := f.idx.Resolve("N Colorado Bears", nil)
	assert.Equal(t, MethodUnresolved, res.Method, "unknown spelling must not guess")

	ok := f.idx.addAlias(newAlias(f.teams["Northern Colorado"].ID, "N Colorado Bears", "x", 1.0))
	require.True(t, ok)

	res = f.idx.Resolve("N Colorado Bears", nil)
	assert.Equal(t, MethodAlias, res.Method)
	assert.Equal(t, "Northern Colorado", res.CanonicalName)
	assert.Equal(t, 1.0, res.Confidence)

	res = f.idx.Resolve("n colorado bears", nil)
	assert.Equal(t, MethodAlias, res.Method, "alias match is case-insensitive")
}

func TestResolveAliasConfidenceTieBreak(t *testing.T) {
	texasAM := newTeam("Texas A&M", "SEC")
	utahSt := newTeam("Utah St.", "MWC")
	aliases := []*models.Alias{
		newAlias(texasAM.ID, "Aggies", "feed_a", 0.8),
		newAlias(utahSt.ID, "Aggies", "feed_b", 0.9),
	}
	idx := NewIndex([]*models.Team{texasAM, utahSt}, aliases, []uuid.UUID{texasAM.ID, utahSt.ID})

	res := idx.Resolve("Aggies", nil)
	assert.Equal(t, "Utah St.", res.CanonicalName, "higher confidence alias wins")
	assert.Equal(t, 0.9, res.Confidence)
}

func TestResolveAliasRatingTieBreak(t *testing.T) {
	louisville := newTeam("Louisville", "ACC")
	ballSt := newTeam("Ball St.", "MAC")
	aliases := []*models.Alias{
		newAlias(ballSt.ID, "Cardinals", "feed_a", 0.9),
		newAlias(louisville.ID, "Cardinals", "feed_b", 0.9),
	}
	// Only Louisville is rated.
	idx := NewIndex([]*models.Team{louisville, ballSt}, aliases, []uuid.UUID{louisville.ID})

	res := idx.Resolve("Cardinals", nil)
	assert.Equal(t, "Louisville", res.CanonicalName, "rated team wins a confidence tie")
}

func TestResolveShadowTeamPrefersRated(t *testing.T) {
	real := newTeam("Portland", "WCC")
	shadow := newTeam("Portland", "WCC")
	idx := NewIndex([]*models.Team{shadow, real}, nil, []uuid.UUID{real.ID})

	res := idx.Resolve("Portland", nil)
	assert.Equal(t, real.ID, res.TeamID, "rated duplicate wins over its shadow")
}

func TestResolveEmptyInput(t *testing.T) {
	f := newFixture(t)

	for _, input := range []string{"", "   ", "\t"} {
		res := f.idx.Resolve(input, nil)
		assert.Equal(t, MethodUnresolved, res.Method)
		assert.Empty(t, res.Alternatives)
	}
}

func TestResolveNormalizedInputAgrees(t *testing.T) {
	f := newFixture(t)

	inputs := []string{"Tennessee State", "Ohio State", "Oregon State Beavers", "Duke Blue Devils"}
	for _, input := range inputs {
		first := f.idx.Resolve(input, nil)
		require.True(t, first.Resolved(), "fixture input %q should resolve", input)

		again := f.idx.Resolve(first.NormalizedInput, nil)
		assert.Equal(t, first.TeamID, again.TeamID,
			"resolving the normalized form of %q must land on the same team", input)
	}
}

func TestAlternativesAreBoundedAndSorted(t *testing.T) {
	teams := []*models.Team{
		newTeam("Carolina A", ""), newTeam("Carolina B", ""), newTeam("Carolina C", ""),
		newTeam("Carolina D", ""), newTeam("Carolina E", ""), newTeam("Carolina F", ""),
	}
	idx := NewIndex(teams, nil, nil)

	res := idx.Resolve("Carolina", nil)
	require.Equal(t, MethodUnresolved, res.Method)
	assert.Len(t, res.Alternatives, maxAlternatives)
	for i := 1; i < len(res.Alternatives); i++ {
		assert.Less(t, res.Alternatives[i-1], res.Alternatives[i], "alternatives must be name-sorted")
	}
}

func TestAlternativesSkipShortKeys(t *testing.T) {
	f := newFixture(t)

	// "FIU" folds to a three-letter key, below the relation threshold.
	res := f.idx.Resolve("FI", nil)
	assert.Equal(t, MethodUnresolved, res.Method)
	assert.Empty(t, res.Alternatives)
}
