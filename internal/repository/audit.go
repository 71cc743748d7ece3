package repository

import (
	"context"
	"fmt"

	"ncaam_v5/resolution/internal/models"
)

// AuditRepository handles the append-only resolution audit trail. Rows are
// never updated or deleted; the unresolved_team_inputs view aggregates them
// for operator triage.
type AuditRepository struct {
	db *Database
}

// Append writes one audit row for a resolver invocation
func (r *AuditRepository) Append(ctx context.Context, audit *models.ResolutionAudit) error {
	query := `
		INSERT INTO team_resolution_audit (
			input_name, resolved_team_id, resolved_name, source, context,
			method, confidence, has_ratings, normalized_input, alternatives
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		audit.InputName, audit.ResolvedTeamID, audit.ResolvedName,
		audit.Source, audit.Context, audit.Method, audit.Confidence,
		audit.HasRatings, audit.NormalizedInput, audit.Alternatives,
	).Scan(&audit.ID, &audit.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append resolution audit: %w", err)
	}

	return nil
}

// ListUnresolved reads the unresolved_team_inputs view: provider spellings
// with unresolved attempts on record, most frequent first
func (r *AuditRepository) ListUnresolved(ctx context.Context, limit int) ([]*models.UnresolvedInput, error) {
	query := `
		SELECT input_name, source, occurrences, first_seen, last_seen
		FROM unresolved_team_inputs
		ORDER BY occurrences DESC, input_name
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved inputs: %w", err)
	}
	defer rows.Close()

	var inputs []*models.UnresolvedInput
	for rows.Next() {
		var in models.UnresolvedInput
		err := rows.Scan(&in.InputName, &in.Source, &in.Occurrences, &in.FirstSeen, &in.LastSeen)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unresolved input: %w", err)
		}
		inputs = append(inputs, &in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unresolved inputs: %w", err)
	}

	return inputs, nil
}

// CountUnresolved returns the number of distinct (input, source) pairs with
// unresolved attempts on record
func (r *AuditRepository) CountUnresolved(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM unresolved_team_inputs`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unresolved inputs: %w", err)
	}

	return count, nil
}

// Count returns the total number of audit rows
func (r *AuditRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM team_resolution_audit`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit rows: %w", err)
	}

	return count, nil
}
