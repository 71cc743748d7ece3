package repository

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"ncaam_v5/resolution/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRepository_Create(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := &models.Team{
		CanonicalName: uniqueName("Gonzaga"),
		Conference:    sql.NullString{String: "WCC", Valid: true},
		City:          sql.NullString{String: "Spokane", Valid: true},
		State:         sql.NullString{String: "WA", Valid: true},
	}

	err := db.Teams.Create(ctx, team)
	require.NoError(t, err, "Should create team")
	assert.NotEqual(t, uuid.Nil, team.ID, "Should assign an id")
	assert.False(t, team.CreatedAt.IsZero(), "Should set created_at")

	// Retrieve and verify
	retrieved, err := db.Teams.GetByID(ctx, team.ID)
	require.NoError(t, err, "Should retrieve created team")
	assert.Equal(t, team.CanonicalName, retrieved.CanonicalName, "Canonical names should match")
	assert.Equal(t, "WCC", retrieved.Conference.String, "Conference should round-trip")
	assert.False(t, retrieved.BarttorvikName.Valid, "Feed name starts unset")
}

func TestTeamRepository_GetByCanonicalName(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := createTestTeam(t, db, ctx, "Saint Mary's")

	// Lookup is case-insensitive
	retrieved, err := db.Teams.GetByCanonicalName(ctx, strings.ToUpper(team.CanonicalName))
	require.NoError(t, err, "Should retrieve team case-insensitively")
	assert.Equal(t, team.ID, retrieved.ID, "Team ids should match")
	assert.Equal(t, team.CanonicalName, retrieved.CanonicalName, "Stored casing should be returned")
}

func TestTeamRepository_SetBarttorvikName(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := createTestTeam(t, db, ctx, "Houston")
	feedName := uniqueName("Houston Feed")

	err := db.Teams.SetBarttorvikName(ctx, team.ID, feedName)
	require.NoError(t, err, "Should set feed name")

	retrieved, err := db.Teams.GetByBarttorvikName(ctx, feedName)
	require.NoError(t, err, "Should retrieve team by feed name")
	assert.Equal(t, team.ID, retrieved.ID, "Team ids should match")

	// A second set must not overwrite the existing mapping
	err = db.Teams.SetBarttorvikName(ctx, team.ID, uniqueName("Houston Renamed"))
	require.NoError(t, err)

	unchanged, err := db.Teams.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, feedName, unchanged.BarttorvikName.String, "First feed name should stick")
}

func TestTeamRepository_Update(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := createTestTeam(t, db, ctx, "San Diego St.")

	team.Conference = sql.NullString{String: "MWC", Valid: true}
	team.City = sql.NullString{String: "San Diego", Valid: true}
	err := db.Teams.Update(ctx, team)
	require.NoError(t, err, "Should update team")

	updated, err := db.Teams.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "MWC", updated.Conference.String, "Conference should be updated")
	assert.Equal(t, "San Diego", updated.City.String, "City should be updated")
}

func TestTeamRepository_List(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	createTestTeam(t, db, ctx, "Purdue")
	createTestTeam(t, db, ctx, "Illinois")
	createTestTeam(t, db, ctx, "Wisconsin")

	teams, err := db.Teams.List(ctx)
	require.NoError(t, err, "Should list teams")
	assert.GreaterOrEqual(t, len(teams), 3, "Should have at least 3 teams")
}

func TestTeamRepository_FindDuplicateCanonicals(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Two rows whose canonical names differ only in case form one
	// collision group, oldest first.
	name := uniqueName("Shadow Duplicate")
	older := &models.Team{CanonicalName: name}
	require.NoError(t, db.Teams.Create(ctx, older))
	newer := &models.Team{CanonicalName: strings.ToUpper(name)}
	require.NoError(t, db.Teams.Create(ctx, newer))

	dupes, err := db.Teams.FindDuplicateCanonicals(ctx)
	require.NoError(t, err, "Should report duplicate canonicals")

	var group *models.DuplicateCanonical
	for _, d := range dupes {
		if d.Key == strings.ToLower(name) {
			group = d
			break
		}
	}
	require.NotNil(t, group, "Collision group should be reported")
	assert.Equal(t, 2, group.Count, "Group should hold both rows")
	require.Len(t, group.TeamIDs, 2)
	assert.Equal(t, older.ID, group.TeamIDs[0], "Oldest row should lead the group")
}

func TestTeamRepository_GetNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Teams.GetByCanonicalName(ctx, uniqueName("No Such Team"))
	require.Error(t, err, "Should return error for non-existent team")
	assert.True(t, errors.Is(err, pgx.ErrNoRows), "Not-found should wrap pgx.ErrNoRows")
}
