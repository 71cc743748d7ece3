// Package repair holds the operator workflows for fixing bad registry
// state: aliases pointing at the wrong team, and unrated "shadow" rows
// duplicating a real team. Both workflows take explicit, reviewed team ids;
// nothing in here matches names automatically.
package repair

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ncaam_v5/resolution/internal/cache"
	"ncaam_v5/resolution/internal/repository"
)

// Repairer runs repair workflows against the registry. Repairs leave the
// in-memory resolution snapshot stale; callers rebuild the engine after a
// successful repair.
type Repairer struct {
	db    *repository.Database
	cache *cache.RedisCache
}

// NewRepairer builds a repairer. A nil cache skips invalidation.
func NewRepairer(db *repository.Database, redisCache *cache.RedisCache) *Repairer {
	return &Repairer{db: db, cache: redisCache}
}

// MergeResult reports what one shadow-team merge touched
type MergeResult struct {
	AliasesRepointed int64 `json:"aliases_repointed"`
	GamesRepointed   int64 `json:"games_repointed"`
}

// RepointAlias remaps one (alias, source) pair to an explicit target team.
// Safe to re-run; the row is created if it does not exist.
func (r *Repairer) RepointAlias(ctx context.Context, aliasName, source string, targetTeamID uuid.UUID) error {
	target, err := r.db.Teams.GetByID(ctx, targetTeamID)
	if err != nil {
		return fmt.Errorf("repoint target: %w", err)
	}

	if err := r.db.Aliases.Repoint(ctx, aliasName, source, target.ID, 1.0); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, cache.ResolutionKey(source, aliasName)); err != nil {
		log.Warn().Err(err).Str("alias", aliasName).Msg("Failed to invalidate resolution cache after repoint")
	}

	return nil
}

// MergeShadowTeam folds an unrated duplicate team into a rated target:
// every alias of the duplicate is repointed, the duplicate's canonical name
// becomes an alias of the target, and games referencing the duplicate are
// repointed. The duplicate row itself stays, so re-running the merge is a
// no-op. The target must be rated; merging into another shadow would only
// move the problem.
func (r *Repairer) MergeShadowTeam(ctx context.Context, duplicateID, targetID uuid.UUID) (*MergeResult, error) {
	if duplicateID == targetID {
		return nil, fmt.Errorf("cannot merge team %s into itself", targetID)
	}

	duplicate, err := r.db.Teams.GetByID(ctx, duplicateID)
	if err != nil {
		return nil, fmt.Errorf("merge duplicate: %w", err)
	}
	target, err := r.db.Teams.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("merge target: %w", err)
	}

	rated, err := r.db.Ratings.HasRatings(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if !rated {
		return nil, fmt.Errorf("merge target %q has no rating snapshots; refusing", target.CanonicalName)
	}

	// Collect the duplicate's aliases first so their cache keys can be
	// flushed after the merge commits.
	staleAliases, err := r.db.Aliases.ListByTeam(ctx, duplicate.ID)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &MergeResult{}

	// Each inserted row collides with its own source row on (alias,
	// source), so the conflict update repoints in place and leaves no
	// duplicates behind.
	tag, err := tx.Exec(ctx, `
		INSERT INTO team_aliases (team_id, alias, source, confidence)
		SELECT $1, alias, source, confidence
		FROM team_aliases
		WHERE team_id = $2
		ON CONFLICT ((lower(alias)), source) DO UPDATE SET
			team_id = EXCLUDED.team_id
	`, target.ID, duplicate.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to repoint aliases: %w", err)
	}
	result.AliasesRepointed = tag.RowsAffected()

	// The duplicate's canonical name keeps resolving, now to the target.
	_, err = tx.Exec(ctx, `
		INSERT INTO team_aliases (team_id, alias, source, confidence)
		VALUES ($1, $2, 'merge', 1.0)
		ON CONFLICT ((lower(alias)), source) DO UPDATE SET
			team_id = EXCLUDED.team_id
	`, target.ID, duplicate.CanonicalName)
	if err != nil {
		return nil, fmt.Errorf("failed to alias duplicate canonical: %w", err)
	}

	tag, err = tx.Exec(ctx,
		`UPDATE games SET home_team_id = $1, updated_at = NOW() WHERE home_team_id = $2`,
		target.ID, duplicate.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to repoint home games: %w", err)
	}
	result.GamesRepointed += tag.RowsAffected()

	tag, err = tx.Exec(ctx,
		`UPDATE games SET away_team_id = $1, updated_at = NOW() WHERE away_team_id = $2`,
		target.ID, duplicate.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to repoint away games: %w", err)
	}
	result.GamesRepointed += tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit merge: %w", err)
	}

	keys := make([]string, 0, len(staleAliases)+1)
	for _, a := range staleAliases {
		keys = append(keys, cache.ResolutionKey(a.Source, a.Alias))
	}
	keys = append(keys, cache.ResolutionKey("merge", duplicate.CanonicalName))
	if err := r.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate resolution cache after merge")
	}

	log.Info().
		Str("duplicate", duplicate.CanonicalName).
		Str("duplicate_id", duplicate.ID.String()).
		Str("target", target.CanonicalName).
		Str("target_id", target.ID.String()).
		Int64("aliases_repointed", result.AliasesRepointed).
		Int64("games_repointed", result.GamesRepointed).
		Msg("Shadow team merged")

	return result, nil
}
