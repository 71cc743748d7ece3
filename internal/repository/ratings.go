package repository

import (
	"context"
	"fmt"

	"ncaam_v5/resolution/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RatingRepository handles rating snapshot database operations. Snapshots
// are keyed by (team_id, rating_date); re-running a sync for the same date
// overwrites that date's line and never duplicates it.
type RatingRepository struct {
	db *Database
}

// Upsert writes one team's rating line for a date
func (r *RatingRepository) Upsert(ctx context.Context, snap *models.RatingSnapshot) error {
	query := `
		INSERT INTO team_ratings (
			team_id, rating_date, adj_o, adj_d, tempo, net_rating, torvik_rank,
			wins, losses, games_played,
			efg, efgd, tor, tord, orb, drb, ftr, ftrd,
			two_pt_pct, two_pt_pct_d, three_pt_pct, three_pt_pct_d,
			three_pt_rate, three_pt_rate_d, barthag, wab, raw_barttorvik
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		ON CONFLICT (team_id, rating_date) DO UPDATE SET
			adj_o = EXCLUDED.adj_o,
			adj_d = EXCLUDED.adj_d,
			tempo = EXCLUDED.tempo,
			net_rating = EXCLUDED.net_rating,
			torvik_rank = EXCLUDED.torvik_rank,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			games_played = EXCLUDED.games_played,
			efg = EXCLUDED.efg,
			efgd = EXCLUDED.efgd,
			tor = EXCLUDED.tor,
			tord = EXCLUDED.tord,
			orb = EXCLUDED.orb,
			drb = EXCLUDED.drb,
			ftr = EXCLUDED.ftr,
			ftrd = EXCLUDED.ftrd,
			two_pt_pct = EXCLUDED.two_pt_pct,
			two_pt_pct_d = EXCLUDED.two_pt_pct_d,
			three_pt_pct = EXCLUDED.three_pt_pct,
			three_pt_pct_d = EXCLUDED.three_pt_pct_d,
			three_pt_rate = EXCLUDED.three_pt_rate,
			three_pt_rate_d = EXCLUDED.three_pt_rate_d,
			barthag = EXCLUDED.barthag,
			wab = EXCLUDED.wab,
			raw_barttorvik = EXCLUDED.raw_barttorvik
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		snap.TeamID, snap.RatingDate, snap.AdjO, snap.AdjD, snap.Tempo,
		snap.NetRating, snap.TorvikRank, snap.Wins, snap.Losses, snap.GamesPlayed,
		snap.EFG, snap.EFGD, snap.TOR, snap.TORD, snap.ORB, snap.DRB,
		snap.FTR, snap.FTRD,
		snap.TwoPtPct, snap.TwoPtPctD, snap.ThreePtPct, snap.ThreePtPctD,
		snap.ThreePtRate, snap.ThreePtRateD, snap.Barthag, snap.WAB, snap.Raw,
	).Scan(&snap.ID, &snap.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert rating snapshot: %w", err)
	}

	return nil
}

// HasRatings reports whether a team has at least one snapshot on any date
func (r *RatingRepository) HasRatings(ctx context.Context, teamID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM team_ratings WHERE team_id = $1)`

	var exists bool
	err := r.db.Pool.QueryRow(ctx, query, teamID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ratings: %w", err)
	}

	return exists, nil
}

// ListRatedTeamIDs returns every team id with at least one snapshot
func (r *RatingRepository) ListRatedTeamIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT team_id FROM team_ratings`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rated team ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan rated team id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rated team ids: %w", err)
	}

	return ids, nil
}

// RatedAmong reports which of the given team ids have at least one
// snapshot. One round trip for a whole slate's worth of slots.
func (r *RatingRepository) RatedAmong(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	rated := make(map[uuid.UUID]bool, len(teamIDs))
	if len(teamIDs) == 0 {
		return rated, nil
	}

	query := `SELECT DISTINCT team_id FROM team_ratings WHERE team_id = ANY($1)`

	rows, err := r.db.Pool.Query(ctx, query, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check rated teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan rated team id: %w", err)
		}
		rated[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rated team ids: %w", err)
	}

	return rated, nil
}

// GetLatest retrieves a team's most recent snapshot
func (r *RatingRepository) GetLatest(ctx context.Context, teamID uuid.UUID) (*models.RatingSnapshot, error) {
	query := `
		SELECT id, team_id, rating_date, adj_o, adj_d, tempo, net_rating,
		       torvik_rank, wins, losses, games_played,
		       efg, efgd, tor, tord, orb, drb, ftr, ftrd,
		       two_pt_pct, two_pt_pct_d, three_pt_pct, three_pt_pct_d,
		       three_pt_rate, three_pt_rate_d, barthag, wab, raw_barttorvik,
		       created_at
		FROM team_ratings
		WHERE team_id = $1
		ORDER BY rating_date DESC
		LIMIT 1
	`

	var snap models.RatingSnapshot
	err := r.db.Pool.QueryRow(ctx, query, teamID).Scan(
		&snap.ID, &snap.TeamID, &snap.RatingDate, &snap.AdjO, &snap.AdjD,
		&snap.Tempo, &snap.NetRating, &snap.TorvikRank, &snap.Wins,
		&snap.Losses, &snap.GamesPlayed,
		&snap.EFG, &snap.EFGD, &snap.TOR, &snap.TORD, &snap.ORB, &snap.DRB,
		&snap.FTR, &snap.FTRD,
		&snap.TwoPtPct, &snap.TwoPtPctD, &snap.ThreePtPct, &snap.ThreePtPctD,
		&snap.ThreePtRate, &snap.ThreePtRateD, &snap.Barthag, &snap.WAB,
		&snap.Raw, &snap.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no ratings for team %s: %w", teamID, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest rating: %w", err)
	}

	return &snap, nil
}

// CountRatedTeams returns the number of teams with at least one snapshot
func (r *RatingRepository) CountRatedTeams(ctx context.Context) (int, error) {
	query := `SELECT COUNT(DISTINCT team_id) FROM team_ratings`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rated teams: %w", err)
	}

	return count, nil
}

// Count returns the total number of snapshots
func (r *RatingRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM team_ratings`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	return count, nil
}
