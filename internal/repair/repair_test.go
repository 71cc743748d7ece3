package repair

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam_v5/resolution/internal/models"
	"ncaam_v5/resolution/internal/repository"
)

// Integration tests for repair workflows
// Run with: go test -v -tags=integration ./internal/repair/...

func setupRepairTest(t *testing.T) (*Repairer, *repository.Database, context.Context) {
	ctx := context.Background()

	cfg := repository.Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "ncaam_v5_test",
		User:     "ncaam_user",
		Password: "ncaam_password",
		SSLMode:  "disable",
	}

	db, err := repository.NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	return NewRepairer(db, nil), db, ctx
}

// createTeam inserts a team with a unique canonical name so reruns against a
// persistent test database do not collide.
func createTeam(t *testing.T, ctx context.Context, db *repository.Database, base string) *models.Team {
	team := &models.Team{CanonicalName: base + " " + uuid.NewString()[:8]}
	require.NoError(t, db.Teams.Create(ctx, team), "Should create team")
	return team
}

func rateTeam(t *testing.T, ctx context.Context, db *repository.Database, teamID uuid.UUID) {
	snapshot := &models.RatingSnapshot{
		TeamID:     teamID,
		RatingDate: time.Now().UTC().Truncate(24 * time.Hour),
		AdjO:       112.5,
		AdjD:       94.1,
		Tempo:      67.3,
		NetRating:  18.4,
	}
	require.NoError(t, db.Ratings.Upsert(ctx, snapshot), "Should insert rating snapshot")
}

func TestRepairer_RepointAlias(t *testing.T) {
	repairer, db, ctx := setupRepairTest(t)
	defer db.Close()

	wrong := createTeam(t, ctx, db, "Wrong Owner")
	right := createTeam(t, ctx, db, "Right Owner")

	aliasName := "Repoint Test " + uuid.NewString()[:8]
	_, err := db.Aliases.Upsert(ctx, &models.Alias{
		TeamID:     wrong.ID,
		Alias:      aliasName,
		Source:     "the_odds_api",
		Confidence: 1.0,
	})
	require.NoError(t, err, "Should register alias on wrong team")

	err = repairer.RepointAlias(ctx, aliasName, "the_odds_api", right.ID)
	require.NoError(t, err, "Should repoint alias")

	moved, err := db.Aliases.GetBySourceAlias(ctx, aliasName, "the_odds_api")
	require.NoError(t, err, "Should retrieve repointed alias")
	assert.Equal(t, right.ID, moved.TeamID, "Alias should now map to the target team")
}

func TestRepairer_RepointAliasCreatesMissing(t *testing.T) {
	repairer, db, ctx := setupRepairTest(t)
	defer db.Close()

	target := createTeam(t, ctx, db, "Fresh Target")
	aliasName := "Brand New " + uuid.NewString()[:8]

	err := repairer.RepointAlias(ctx, aliasName, "manual", target.ID)
	require.NoError(t, err, "Repoint of a missing alias should create it")

	created, err := db.Aliases.GetBySourceAlias(ctx, aliasName, "manual")
	require.NoError(t, err, "Should retrieve created alias")
	assert.Equal(t, target.ID, created.TeamID, "Created alias should map to the target team")
	assert.Equal(t, 1.0, created.Confidence, "Repaired aliases carry full confidence")
}

func TestRepairer_RepointAliasUnknownTarget(t *testing.T) {
	repairer, db, ctx := setupRepairTest(t)
	defer db.Close()

	err := repairer.RepointAlias(ctx, "Anything", "manual", uuid.New())
	assert.Error(t, err, "Should refuse to repoint onto a team that does not exist")
}

func TestRepairer_MergeShadowTeam(t *testing.T) {
	repairer, db, ctx := setupRepairTest(t)
	defer db.Close()

	target := createTeam(t, ctx, db, "Real Team")
	shadow := createTeam(t, ctx, db, "Shadow Team")
	rateTeam(t, ctx, db, target.ID)

	_, err := db.Aliases.Upsert(ctx, &models.Alias{
		TeamID:     shadow.ID,
		Alias:      "Shadow Label " + uuid.NewString()[:8],
		Source:     "the_odds_api",
		Confidence: 0.9,
	})
	require.NoError(t, err, "Should register alias on shadow team")

	game := &models.Game{
		ExternalID:   "merge-test-" + uuid.NewString()[:8],
		Source:       "the_odds_api",
		Season:       2025,
		HomeTeamID:   uuid.NullUUID{UUID: shadow.ID, Valid: true},
		HomeTeamName: shadow.CanonicalName,
		AwayTeamName: "Somebody Else",
		CommenceTime: time.Now().UTC().Add(24 * time.Hour),
		Status:       models.GameStatusScheduled,
	}
	require.NoError(t, db.Games.Upsert(ctx, game), "Should insert game referencing shadow")

	result, err := repairer.MergeShadowTeam(ctx, shadow.ID, target.ID)
	require.NoError(t, err, "Merge should succeed")
	assert.Equal(t, int64(1), result.AliasesRepointed, "Shadow's alias should be repointed")
	assert.Equal(t, int64(1), result.GamesRepointed, "Shadow's game should be repointed")

	// The shadow's canonical name now resolves as a merge alias.
	canonical, err := db.Aliases.GetBySourceAlias(ctx, shadow.CanonicalName, "merge")
	require.NoError(t, err, "Shadow canonical should exist as merge alias")
	assert.Equal(t, target.ID, canonical.TeamID, "Merge alias should map to the target")

	merged, err := db.Games.GetByID(ctx, game.ID)
	require.NoError(t, err, "Should retrieve repointed game")
	assert.Equal(t, target.ID, merged.HomeTeamID.UUID, "Game home slot should reference the target")

	// The shadow row survives so the merge can be replayed safely.
	_, err = db.Teams.GetByID(ctx, shadow.ID)
	assert.NoError(t, err, "Shadow team row should not be deleted")

	again, err := repairer.MergeShadowTeam(ctx, shadow.ID, target.ID)
	require.NoError(t, err, "Replaying the merge should not fail")
	assert.Equal(t, int64(0), again.AliasesRepointed, "Replay should find nothing left to repoint")
	assert.Equal(t, int64(0), again.GamesRepointed, "Replay should find no games left to repoint")
}

func TestRepairer_MergeRefusesUnratedTarget(t *testing.T) {
	repairer, db, ctx := setupRepairTest(t)
	defer db.Close()

	target := createTeam(t, ctx, db, "Unrated Target")
	shadow := createTeam(t, ctx, db, "Another Shadow")

	_, err := repairer.MergeShadowTeam(ctx, shadow.ID, target.ID)
	assert.Error(t, err, "Should refuse to merge into a team with no rating snapshots")
}

func TestRepairer_MergeRefusesSelf(t *testing.T) {
	repairer, db, ctx := setupRepairTest(t)
	defer db.Close()

	team := createTeam(t, ctx, db, "Self Merge")

	_, err := repairer.MergeShadowTeam(ctx, team.ID, team.ID)
	assert.Error(t, err, "Should refuse to merge a team into itself")
}
