package repository

import (
	"context"
	"fmt"

	"ncaam_v5/resolution/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExternalIDRepository handles provider stable-id database operations
type ExternalIDRepository struct {
	db *Database
}

// Upsert links a provider id to a team. Conflicts on (source, external_id)
// update in place; season bounds widen, never shrink.
func (r *ExternalIDRepository) Upsert(ctx context.Context, ext *models.ExternalID) error {
	query := `
		INSERT INTO team_external_ids (
			team_id, source, external_id, first_season, last_season, metadata
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source, external_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			first_season = LEAST(team_external_ids.first_season, EXCLUDED.first_season),
			last_season = GREATEST(team_external_ids.last_season, EXCLUDED.last_season),
			metadata = COALESCE(EXCLUDED.metadata, team_external_ids.metadata)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		ext.TeamID, ext.Source, ext.ExternalID,
		ext.FirstSeason, ext.LastSeason, ext.Metadata,
	).Scan(&ext.ID, &ext.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert external id: %w", err)
	}

	return nil
}

// GetBySourceExternalID retrieves one provider id mapping
func (r *ExternalIDRepository) GetBySourceExternalID(ctx context.Context, source, externalID string) (*models.ExternalID, error) {
	query := `
		SELECT id, team_id, source, external_id, first_season, last_season,
		       metadata, created_at
		FROM team_external_ids
		WHERE source = $1 AND external_id = $2
	`

	var ext models.ExternalID
	err := r.db.Pool.QueryRow(ctx, query, source, externalID).Scan(
		&ext.ID, &ext.TeamID, &ext.Source, &ext.ExternalID,
		&ext.FirstSeason, &ext.LastSeason, &ext.Metadata, &ext.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("external id not found: %s/%s: %w", source, externalID, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get external id: %w", err)
	}

	return &ext, nil
}

// ListByTeam retrieves all provider ids for one team
func (r *ExternalIDRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.ExternalID, error) {
	query := `
		SELECT id, team_id, source, external_id, first_season, last_season,
		       metadata, created_at
		FROM team_external_ids
		WHERE team_id = $1
		ORDER BY source, external_id
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list external ids: %w", err)
	}
	defer rows.Close()

	var exts []*models.ExternalID
	for rows.Next() {
		var ext models.ExternalID
		err := rows.Scan(
			&ext.ID, &ext.TeamID, &ext.Source, &ext.ExternalID,
			&ext.FirstSeason, &ext.LastSeason, &ext.Metadata, &ext.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan external id: %w", err)
		}
		exts = append(exts, &ext)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating external ids: %w", err)
	}

	return exts, nil
}

// Count returns the total number of external id mappings
func (r *ExternalIDRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM team_external_ids`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count external ids: %w", err)
	}

	return count, nil
}
