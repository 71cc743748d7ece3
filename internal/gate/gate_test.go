package gate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam_v5/resolution/internal/models"
)

func resolvedID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

func testGame(externalID string, home, away uuid.NullUUID, homeName, awayName string) *models.Game {
	return &models.Game{
		ID:           uuid.New(),
		ExternalID:   externalID,
		HomeTeamID:   home,
		AwayTeamID:   away,
		HomeTeamName: homeName,
		AwayTeamName: awayName,
		Status:       models.GameStatusScheduled,
	}
}

func TestBuildResultAllRated(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	games := []*models.Game{
		testGame("g1", resolvedID(a), resolvedID(b), "Duke", "North Carolina"),
	}
	rated := map[uuid.UUID]bool{a: true, b: true}

	result := buildResult("2026-01-10", games, rated, time.Now())

	assert.True(t, result.GatePassed)
	assert.Equal(t, 1, result.TotalGames)
	assert.Equal(t, 2, result.TotalSlots)
	assert.Equal(t, 2, result.RatedSlots)
	assert.Equal(t, 100.0, result.MatchRatePercent)
	assert.Empty(t, result.Blockers)
}

func TestBuildResultUnresolvedSlot(t *testing.T) {
	a := uuid.New()
	games := []*models.Game{
		testGame("g1", resolvedID(a), uuid.NullUUID{}, "Duke", "N Colorado Bears"),
	}
	rated := map[uuid.UUID]bool{a: true}

	result := buildResult("2026-01-10", games, rated, time.Now())

	assert.False(t, result.GatePassed)
	require.Len(t, result.Blockers, 1)

	blocker := result.Blockers[0]
	assert.Equal(t, games[0].ID, blocker.GameID)
	assert.Equal(t, "g1", blocker.ExternalID)
	assert.Equal(t, SlotAway, blocker.Slot)
	assert.Equal(t, "N Colorado Bears", blocker.TeamLabel, "blocker carries the raw provider label")
	assert.Equal(t, ReasonUnresolved, blocker.Reason)
}

func TestBuildResultUnratedSlot(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	games := []*models.Game{
		testGame("g1", resolvedID(a), resolvedID(b), "Duke", "Tennessee St."),
	}
	// b resolved but has no snapshots.
	rated := map[uuid.UUID]bool{a: true}

	result := buildResult("2026-01-10", games, rated, time.Now())

	assert.False(t, result.GatePassed)
	require.Len(t, result.Blockers, 1)
	assert.Equal(t, ReasonNoRatings, result.Blockers[0].Reason)
	assert.Equal(t, SlotAway, result.Blockers[0].Slot)
	assert.Equal(t, 1, result.RatedSlots)
	assert.Equal(t, 50.0, result.MatchRatePercent)
}

func TestBuildResultMatchRate(t *testing.T) {
	// Ten games, twenty slots, two blocked: 90.0 exactly.
	rated := make(map[uuid.UUID]bool)
	games := make([]*models.Game, 0, 10)
	for i := 0; i < 10; i++ {
		home, away := uuid.New(), uuid.New()
		rated[home] = true
		rated[away] = true
		games = append(games, testGame(
			string(rune('a'+i)), resolvedID(home), resolvedID(away), "Home", "Away",
		))
	}
	// Block two slots: one unresolved, one unrated.
	games[0].AwayTeamID = uuid.NullUUID{}
	delete(rated, games[5].HomeTeamID.UUID)

	result := buildResult("2026-01-10", games, rated, time.Now())

	assert.False(t, result.GatePassed)
	assert.Equal(t, 20, result.TotalSlots)
	assert.Equal(t, 18, result.RatedSlots)
	assert.Equal(t, 90.0, result.MatchRatePercent)
	assert.Len(t, result.Blockers, 2)
}

func TestBuildResultEmptySlate(t *testing.T) {
	result := buildResult("2026-07-04", nil, nil, time.Now())

	assert.True(t, result.GatePassed, "no games means no blockers, and the gate is exactly no-blockers")
	assert.Equal(t, 0, result.TotalSlots)
	assert.Equal(t, 0, result.RatedSlots)
	assert.Equal(t, 0.0, result.MatchRatePercent)
	assert.Empty(t, result.Blockers)
}

func TestBuildResultCountsPerSlotNotPerTeam(t *testing.T) {
	// A team playing twice that day occupies two slots; both count.
	busy, x, y := uuid.New(), uuid.New(), uuid.New()
	games := []*models.Game{
		testGame("g1", resolvedID(busy), resolvedID(x), "Busy", "X"),
		testGame("g2", resolvedID(y), resolvedID(busy), "Y", "Busy"),
	}
	rated := map[uuid.UUID]bool{x: true, y: true}

	result := buildResult("2026-01-10", games, rated, time.Now())

	assert.Equal(t, 4, result.TotalSlots)
	assert.Equal(t, 2, result.RatedSlots)
	assert.Len(t, result.Blockers, 2, "the unrated team blocks once per slot")
	assert.Equal(t, 50.0, result.MatchRatePercent)
}

func TestBuildResultBothSlotsBlocked(t *testing.T) {
	games := []*models.Game{
		testGame("g1", uuid.NullUUID{}, uuid.NullUUID{}, "Mystery A", "Mystery B"),
	}

	result := buildResult("2026-01-10", games, nil, time.Now())

	require.Len(t, result.Blockers, 2)
	assert.Equal(t, SlotHome, result.Blockers[0].Slot)
	assert.Equal(t, SlotAway, result.Blockers[1].Slot)
	assert.Equal(t, 0.0, result.MatchRatePercent)
}

func TestCheckerRejectsBadDate(t *testing.T) {
	checker := NewChecker(nil, nil, time.UTC, 0)

	_, err := checker.Check(context.Background(), "01/10/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")

	_, err = checker.Check(context.Background(), "2026-13-40")
	require.Error(t, err)
}
