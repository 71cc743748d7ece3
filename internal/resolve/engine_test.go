package resolve

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam_v5/resolution/internal/models"
)

func TestEngineSwapAndResolve(t *testing.T) {
	engine := NewEngine()

	res := engine.Resolve("Duke", nil)
	assert.Equal(t, MethodUnresolved, res.Method, "empty engine resolves nothing")

	duke := newTeam("Duke", "ACC")
	engine.Swap(NewIndex([]*models.Team{duke}, nil, nil))

	res = engine.Resolve("Duke", nil)
	assert.Equal(t, MethodCanonical, res.Method)
	assert.False(t, res.HasRatings)

	engine.MarkRated(duke.ID)
	res = engine.Resolve("Duke", nil)
	assert.True(t, res.HasRatings)
	assert.True(t, engine.HasRatings(duke.ID))
}

func TestEngineIncrementalAlias(t *testing.T) {
	uconn := newTeam("Connecticut", "Big East")
	engine := NewEngine()
	engine.Swap(NewIndex([]*models.Team{uconn}, nil, nil))

	require.Equal(t, MethodUnresolved, engine.Resolve("UConn", nil).Method)

	ok := engine.AddAlias(newAlias(uconn.ID, "UConn", "the_odds_api", 1.0))
	require.True(t, ok)

	res := engine.Resolve("UConn", nil)
	assert.Equal(t, MethodAlias, res.Method)
	assert.Equal(t, "Connecticut", res.CanonicalName)

	// Alias for an unknown team is refused.
	stranger := newTeam("Nowhere", "")
	assert.False(t, engine.AddAlias(newAlias(stranger.ID, "Nowhere U", "x", 1.0)))
}

func TestEngineAddTeam(t *testing.T) {
	engine := NewEngine()
	engine.Swap(NewIndex(nil, nil, nil))

	gonzaga := newTeam("Gonzaga", "WCC")
	engine.AddTeam(gonzaga)

	res := engine.Resolve("Gonzaga", nil)
	assert.Equal(t, MethodCanonical, res.Method)

	teams, aliases, rated := engine.Stats()
	assert.Equal(t, 1, teams)
	assert.Equal(t, 0, aliases)
	assert.Equal(t, 0, rated)
}

func TestEngineConcurrentReads(t *testing.T) {
	f := newFixture(t)
	engine := NewEngine()
	engine.Swap(f.idx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				engine.Resolve("Duke Blue Devils", nil)
				engine.MarkRated(f.teams["FIU"].ID)
			}
		}()
	}
	wg.Wait()

	assert.True(t, engine.HasRatings(f.teams["FIU"].ID))
}
