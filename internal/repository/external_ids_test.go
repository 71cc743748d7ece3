package repository

import (
	"database/sql"
	"errors"
	"testing"

	"ncaam_v5/resolution/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalIDRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := createTestTeam(t, db, ctx, "Villanova")
	extID := uniqueName("ncaa-id")

	ext := &models.ExternalID{
		TeamID:      team.ID,
		Source:      "test",
		ExternalID:  extID,
		FirstSeason: sql.NullInt32{Int32: 2021, Valid: true},
		LastSeason:  sql.NullInt32{Int32: 2023, Valid: true},
		Metadata:    []byte(`{"division":"I"}`),
	}
	require.NoError(t, db.ExternalIDs.Upsert(ctx, ext), "Should insert external id")
	assert.NotZero(t, ext.ID, "Should assign an id")

	// Re-upserting widens the season range and keeps old metadata when the
	// new row carries none.
	later := &models.ExternalID{
		TeamID:      team.ID,
		Source:      "test",
		ExternalID:  extID,
		FirstSeason: sql.NullInt32{Int32: 2022, Valid: true},
		LastSeason:  sql.NullInt32{Int32: 2025, Valid: true},
	}
	require.NoError(t, db.ExternalIDs.Upsert(ctx, later), "Should update on conflict")
	assert.Equal(t, ext.ID, later.ID, "Conflict should hit the existing row")

	merged, err := db.ExternalIDs.GetBySourceExternalID(ctx, "test", extID)
	require.NoError(t, err)
	assert.Equal(t, int32(2021), merged.FirstSeason.Int32, "First season should not shrink")
	assert.Equal(t, int32(2025), merged.LastSeason.Int32, "Last season should widen")
	assert.JSONEq(t, `{"division":"I"}`, string(merged.Metadata), "Metadata should survive a nil update")
}

func TestExternalIDRepository_GetNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.ExternalIDs.GetBySourceExternalID(ctx, "test", uniqueName("missing"))
	require.Error(t, err, "Should return error for unknown mapping")
	assert.True(t, errors.Is(err, pgx.ErrNoRows), "Not-found should wrap pgx.ErrNoRows")
}

func TestExternalIDRepository_ListByTeam(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := createTestTeam(t, db, ctx, "Creighton")

	for _, source := range []string{"odds", "stats"} {
		ext := &models.ExternalID{
			TeamID:     team.ID,
			Source:     source,
			ExternalID: uniqueName("prov"),
		}
		require.NoError(t, db.ExternalIDs.Upsert(ctx, ext))
	}

	exts, err := db.ExternalIDs.ListByTeam(ctx, team.ID)
	require.NoError(t, err, "Should list external ids")
	assert.Len(t, exts, 2, "Should return both mappings")
	assert.Equal(t, "odds", exts[0].Source, "Rows should be ordered by source")
}
