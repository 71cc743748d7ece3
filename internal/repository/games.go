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

// ErrSameTeamGame is returned when a game's home and away sides resolved to
// the same team id. The row is rejected before it reaches the database; a
// CHECK constraint backstops the same rule.
var ErrSameTeamGame = errors.New("home and away teams resolved to same team id")

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

// Upsert inserts or updates a game by provider external id. Games persist
// even when a side is unresolved; the raw provider labels always ride along
// so the readiness gate can name blocking slots.
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) error {
	if game.HomeTeamID.Valid && game.AwayTeamID.Valid &&
		game.HomeTeamID.UUID == game.AwayTeamID.UUID {
		return fmt.Errorf(
			"game %s: %q vs %q: %w",
			game.ExternalID, game.HomeTeamName, game.AwayTeamName, ErrSameTeamGame,
		)
	}

	query := `
		INSERT INTO games (
			external_id, source, season, home_team_id, away_team_id,
			home_team_name, away_team_name, commence_time, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_id) DO UPDATE SET
			source = EXCLUDED.source,
			season = EXCLUDED.season,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_team_name = EXCLUDED.home_team_name,
			away_team_name = EXCLUDED.away_team_name,
			commence_time = EXCLUDED.commence_time,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		game.ExternalID, game.Source, game.Season,
		game.HomeTeamID, game.AwayTeamID,
		game.HomeTeamName, game.AwayTeamName,
		game.CommenceTime, game.Status,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by its database ID
func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := `
		SELECT id, external_id, source, season, home_team_id, away_team_id,
		       home_team_name, away_team_name, commence_time, status,
		       home_score, away_score, created_at, updated_at
		FROM games
		WHERE id = $1
	`

	var game models.Game
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&game.ID, &game.ExternalID, &game.Source, &game.Season,
		&game.HomeTeamID, &game.AwayTeamID,
		&game.HomeTeamName, &game.AwayTeamName,
		&game.CommenceTime, &game.Status,
		&game.HomeScore, &game.AwayScore,
		&game.CreatedAt, &game.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: id=%s: %w", id, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// GetByExternalID retrieves a game by its provider external id
func (r *GameRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Game, error) {
	query := `
		SELECT id, external_id, source, season, home_team_id, away_team_id,
		       home_team_name, away_team_name, commence_time, status,
		       home_score, away_score, created_at, updated_at
		FROM games
		WHERE external_id = $1
	`

	var game models.Game
	err := r.db.Pool.QueryRow(ctx, query, externalID).Scan(
		&game.ID, &game.ExternalID, &game.Source, &game.Season,
		&game.HomeTeamID, &game.AwayTeamID,
		&game.HomeTeamName, &game.AwayTeamName,
		&game.CommenceTime, &game.Status,
		&game.HomeScore, &game.AwayScore,
		&game.CreatedAt, &game.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: external_id=%s: %w", externalID, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// ListScheduledByDate retrieves the scheduled slate for one calendar date in
// the given operational timezone. The date is a YYYY-MM-DD string; tipoff
// timestamps are stored UTC and bucketed into local dates here.
func (r *GameRepository) ListScheduledByDate(ctx context.Context, date, timezone string) ([]*models.Game, error) {
	query := `
		SELECT id, external_id, source, season, home_team_id, away_team_id,
		       home_team_name, away_team_name, commence_time, status,
		       home_score, away_score, created_at, updated_at
		FROM games
		WHERE status = 'scheduled'
		  AND DATE(commence_time AT TIME ZONE $2) = $1::date
		ORDER BY commence_time, external_id
	`

	rows, err := r.db.Pool.Query(ctx, query, date, timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		var game models.Game
		err := rows.Scan(
			&game.ID, &game.ExternalID, &game.Source, &game.Season,
			&game.HomeTeamID, &game.AwayTeamID,
			&game.HomeTeamName, &game.AwayTeamName,
			&game.CommenceTime, &game.Status,
			&game.HomeScore, &game.AwayScore,
			&game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// UpdateStatus updates a game's status
func (r *GameRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE games SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.Pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("game not found: id=%s: %w", id, pgx.ErrNoRows)
	}

	return nil
}

// UpdateScore records the score and moves the game to the given status
func (r *GameRepository) UpdateScore(ctx context.Context, id uuid.UUID, homeScore, awayScore int, status string) error {
	query := `
		UPDATE games SET
			home_score = $1,
			away_score = $2,
			status = $3,
			updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.db.Pool.Exec(ctx, query, homeScore, awayScore, status, id)
	if err != nil {
		return fmt.Errorf("failed to update game score: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("game not found: id=%s: %w", id, pgx.ErrNoRows)
	}

	log.Debug().
		Str("id", id.String()).
		Int("home_score", homeScore).
		Int("away_score", awayScore).
		Str("status", status).
		Msg("Game score updated")

	return nil
}

// Count returns the total number of games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM games`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}
