package resolve

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ncaam_v5/resolution/internal/models"
	"ncaam_v5/resolution/internal/repository"
)

// Engine holds the current Index behind a lock. Reads are concurrent;
// incremental writes (new alias, new team, newly rated team) keep the
// snapshot coherent with the database between full rebuilds.
type Engine struct {
	mu  sync.RWMutex
	idx *Index
}

// NewEngine returns an engine with an empty index; call Rebuild or Swap
// before serving lookups
func NewEngine() *Engine {
	return &Engine{idx: NewIndex(nil, nil, nil)}
}

// Rebuild loads the full registry and swaps the snapshot in one step
func (e *Engine) Rebuild(ctx context.Context, db *repository.Database) error {
	teams, err := db.Teams.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load teams for index: %w", err)
	}

	aliases, err := db.Aliases.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load aliases for index: %w", err)
	}

	ratedIDs, err := db.Ratings.ListRatedTeamIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rated team ids for index: %w", err)
	}

	idx := NewIndex(teams, aliases, ratedIDs)
	e.Swap(idx)

	log.Info().
		Int("teams", idx.TeamCount()).
		Int("aliases", idx.AliasCount()).
		Int("rated", idx.RatedCount()).
		Msg("Resolution index rebuilt")

	return nil
}

// Swap replaces the current snapshot
func (e *Engine) Swap(idx *Index) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idx = idx
}

// Resolve runs the waterfall against the current snapshot
func (e *Engine) Resolve(input string, hints *Hints) Resolution {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.Resolve(input, hints)
}

// AddTeam adds a team to the snapshot after a successful registry write
func (e *Engine) AddTeam(team *models.Team) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idx.addTeam(team)
}

// AddAlias adds an alias to the snapshot after a successful registry write.
// Returns false when the alias points at a team the snapshot does not know.
func (e *Engine) AddAlias(alias *models.Alias) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idx.addAlias(alias)
}

// MarkRated flags a team as rated after its first snapshot lands
func (e *Engine) MarkRated(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idx.markRated(id)
}

// HasRatings reports rating presence from the snapshot
func (e *Engine) HasRatings(id uuid.UUID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.rated[id]
}

// Stats returns snapshot sizes for logging and gauges
func (e *Engine) Stats() (teams, aliases, rated int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.TeamCount(), e.idx.AliasCount(), e.idx.RatedCount()
}
