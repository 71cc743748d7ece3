package repository

import (
	"context"
	"fmt"

	"ncaam_v5/resolution/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles canonical team database operations. Team rows are
// never hard-deleted; merges repoint references and leave the row behind.
type TeamRepository struct {
	db *Database
}

// Create inserts a new canonical team
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			canonical_name, barttorvik_name, conference, division, city, state
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.CanonicalName, team.BarttorvikName, team.Conference,
		team.Division, team.City, team.State,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	log.Debug().
		Str("id", team.ID.String()).
		Str("canonical", team.CanonicalName).
		Msg("Team created")

	return nil
}

// GetByID retrieves a team by its database ID
func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := `
		SELECT id, canonical_name, barttorvik_name, conference, division,
		       city, state, created_at, updated_at
		FROM teams
		WHERE id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&team.ID, &team.CanonicalName, &team.BarttorvikName,
		&team.Conference, &team.Division, &team.City, &team.State,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: id=%s: %w", id, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// GetByCanonicalName retrieves a team by canonical name, case-insensitively
func (r *TeamRepository) GetByCanonicalName(ctx context.Context, name string) (*models.Team, error) {
	query := `
		SELECT id, canonical_name, barttorvik_name, conference, division,
		       city, state, created_at, updated_at
		FROM teams
		WHERE lower(canonical_name) = lower($1)
		ORDER BY created_at
		LIMIT 1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(
		&team.ID, &team.CanonicalName, &team.BarttorvikName,
		&team.Conference, &team.Division, &team.City, &team.State,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: canonical=%s: %w", name, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// GetByBarttorvikName retrieves a team by its Barttorvik feed name
func (r *TeamRepository) GetByBarttorvikName(ctx context.Context, name string) (*models.Team, error) {
	query := `
		SELECT id, canonical_name, barttorvik_name, conference, division,
		       city, state, created_at, updated_at
		FROM teams
		WHERE barttorvik_name = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(
		&team.ID, &team.CanonicalName, &team.BarttorvikName,
		&team.Conference, &team.Division, &team.City, &team.State,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: barttorvik_name=%s: %w", name, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// SetBarttorvikName backfills the feed name on a team that has none yet.
// An already-set name is left alone so a renamed feed row cannot silently
// steal an existing mapping.
func (r *TeamRepository) SetBarttorvikName(ctx context.Context, id uuid.UUID, name string) error {
	query := `
		UPDATE teams SET barttorvik_name = $1, updated_at = NOW()
		WHERE id = $2 AND barttorvik_name IS NULL
	`

	_, err := r.db.Pool.Exec(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("failed to set barttorvik name: %w", err)
	}

	return nil
}

// List retrieves all teams
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, canonical_name, barttorvik_name, conference, division,
		       city, state, created_at, updated_at
		FROM teams
		ORDER BY canonical_name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID, &team.CanonicalName, &team.BarttorvikName,
			&team.Conference, &team.Division, &team.City, &team.State,
			&team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Update updates a team's descriptive fields
func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			canonical_name = $1,
			conference = $2,
			division = $3,
			city = $4,
			state = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.CanonicalName, team.Conference, team.Division,
		team.City, team.State, team.ID,
	).Scan(&team.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("team not found: id=%s: %w", team.ID, pgx.ErrNoRows)
	}
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}

	return nil
}

// FindDuplicateCanonicals reports case-insensitive canonical-name collision
// groups for operator triage. Ids come back oldest-first so the first entry
// is the natural merge target.
func (r *TeamRepository) FindDuplicateCanonicals(ctx context.Context) ([]*models.DuplicateCanonical, error) {
	query := `
		SELECT lower(canonical_name) AS key,
		       COUNT(*) AS count,
		       array_agg(id ORDER BY created_at) AS team_ids
		FROM teams
		GROUP BY lower(canonical_name)
		HAVING COUNT(*) > 1
		ORDER BY count DESC, key
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicate canonicals: %w", err)
	}
	defer rows.Close()

	var dupes []*models.DuplicateCanonical
	for rows.Next() {
		var d models.DuplicateCanonical
		if err := rows.Scan(&d.Key, &d.Count, &d.TeamIDs); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate canonical: %w", err)
		}
		dupes = append(dupes, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duplicate canonicals: %w", err)
	}

	return dupes, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM teams`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}
