package repository

import (
	"context"
	"errors"
	"fmt"

	"ncaam_v5/resolution/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ErrAliasConflict is returned when an (alias, source) pair already belongs
// to a different team. The write is aborted; remapping is an explicit repair
// operation, never a side effect of registration.
var ErrAliasConflict = errors.New("alias already mapped to a different team")

// AliasRepository handles provider alias database operations
type AliasRepository struct {
	db *Database
}

// Upsert registers an alias. Registering an identical mapping again is a
// no-op; the same (alias, source) pair owned by another team returns
// ErrAliasConflict. Reports whether a new row was created.
func (r *AliasRepository) Upsert(ctx context.Context, alias *models.Alias) (bool, error) {
	query := `
		INSERT INTO team_aliases (team_id, alias, source, confidence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ((lower(alias)), source) DO NOTHING
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		alias.TeamID, alias.Alias, alias.Source, alias.Confidence,
	).Scan(&alias.ID, &alias.CreatedAt)

	if err == pgx.ErrNoRows {
		// Conflict target hit: the pair exists. Idempotent only when the
		// owner matches.
		existing, getErr := r.GetBySourceAlias(ctx, alias.Alias, alias.Source)
		if getErr != nil {
			return false, getErr
		}
		if existing.TeamID != alias.TeamID {
			return false, fmt.Errorf(
				"alias %q (source %s) belongs to team %s, not %s: %w",
				alias.Alias, alias.Source, existing.TeamID, alias.TeamID, ErrAliasConflict,
			)
		}
		alias.ID = existing.ID
		alias.CreatedAt = existing.CreatedAt
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert alias: %w", err)
	}

	log.Debug().
		Str("alias", alias.Alias).
		Str("source", alias.Source).
		Str("team_id", alias.TeamID.String()).
		Msg("Alias registered")

	return true, nil
}

// Repoint remaps an (alias, source) pair to a new team, creating the row if
// it does not exist. This is the repair-path counterpart of Upsert.
func (r *AliasRepository) Repoint(ctx context.Context, aliasName, source string, teamID uuid.UUID, confidence float64) error {
	query := `
		INSERT INTO team_aliases (team_id, alias, source, confidence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ((lower(alias)), source) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			confidence = EXCLUDED.confidence
	`

	_, err := r.db.Pool.Exec(ctx, query, teamID, aliasName, source, confidence)
	if err != nil {
		return fmt.Errorf("failed to repoint alias: %w", err)
	}

	log.Info().
		Str("alias", aliasName).
		Str("source", source).
		Str("team_id", teamID.String()).
		Msg("Alias repointed")

	return nil
}

// GetBySourceAlias retrieves one alias row, case-insensitively on the alias
func (r *AliasRepository) GetBySourceAlias(ctx context.Context, aliasName, source string) (*models.Alias, error) {
	query := `
		SELECT id, team_id, alias, source, confidence, created_at
		FROM team_aliases
		WHERE lower(alias) = lower($1) AND source = $2
	`

	var alias models.Alias
	err := r.db.Pool.QueryRow(ctx, query, aliasName, source).Scan(
		&alias.ID, &alias.TeamID, &alias.Alias, &alias.Source,
		&alias.Confidence, &alias.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("alias not found: %s (source %s): %w", aliasName, source, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alias: %w", err)
	}

	return &alias, nil
}

// List retrieves all aliases
func (r *AliasRepository) List(ctx context.Context) ([]*models.Alias, error) {
	query := `
		SELECT id, team_id, alias, source, confidence, created_at
		FROM team_aliases
		ORDER BY alias, source
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*models.Alias
	for rows.Next() {
		var alias models.Alias
		err := rows.Scan(
			&alias.ID, &alias.TeamID, &alias.Alias, &alias.Source,
			&alias.Confidence, &alias.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases = append(aliases, &alias)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aliases: %w", err)
	}

	return aliases, nil
}

// ListByTeam retrieves all aliases mapped to one team
func (r *AliasRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Alias, error) {
	query := `
		SELECT id, team_id, alias, source, confidence, created_at
		FROM team_aliases
		WHERE team_id = $1
		ORDER BY alias, source
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases by team: %w", err)
	}
	defer rows.Close()

	var aliases []*models.Alias
	for rows.Next() {
		var alias models.Alias
		err := rows.Scan(
			&alias.ID, &alias.TeamID, &alias.Alias, &alias.Source,
			&alias.Confidence, &alias.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases = append(aliases, &alias)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aliases: %w", err)
	}

	return aliases, nil
}

// Count returns the total number of aliases
func (r *AliasRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM team_aliases`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count aliases: %w", err)
	}

	return count, nil
}
