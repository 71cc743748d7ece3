package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ncaam_v5/resolution/internal/client"
)

func TestSnapshotFromTorvik(t *testing.T) {
	teamID := uuid.New()
	ratingDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	row := &client.TorvikTeam{
		Rank:        3,
		Team:        "Houston",
		Conf:        "B12",
		Wins:        17,
		Losses:      2,
		GamesPlayed: 19,
		AdjOE:       118.2,
		AdjDE:       87.4,
		Tempo:       61.9,
		Barthag:     0.97,
		WAB:         5.1,
		EFG:         52.0,
		EFGD:        44.3,
		TwoPct:      53.1,
		ThreePct:    34.8,
		Raw:         []byte(`[3,"Houston"]`),
	}

	snap := snapshotFromTorvik(teamID, ratingDate, row)

	assert.Equal(t, teamID, snap.TeamID)
	assert.Equal(t, ratingDate, snap.RatingDate)
	assert.Equal(t, 118.2, snap.AdjO)
	assert.Equal(t, 87.4, snap.AdjD)
	assert.Equal(t, 61.9, snap.Tempo)
	assert.InDelta(t, 30.8, snap.NetRating, 0.0001, "Net rating is offense minus defense")
	assert.Equal(t, 3, snap.TorvikRank)
	assert.Equal(t, 17, snap.Wins)
	assert.Equal(t, 2, snap.Losses)
	assert.Equal(t, 19, snap.GamesPlayed)
	assert.Equal(t, 52.0, snap.EFG)
	assert.Equal(t, 53.1, snap.TwoPtPct)
	assert.Equal(t, 34.8, snap.ThreePtPct)
	assert.Equal(t, 0.97, snap.Barthag)
	assert.Equal(t, 5.1, snap.WAB)
	assert.Equal(t, []byte(`[3,"Houston"]`), snap.Raw, "Raw feed row should ride along")
}
