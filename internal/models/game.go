package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Game statuses as stored. The readiness gate only ever looks at scheduled
// games; score updates move rows to in_progress and final.
const (
	GameStatusScheduled  = "scheduled"
	GameStatusInProgress = "in_progress"
	GameStatusFinal      = "final"
)

// Game represents a college basketball game. Team ids are nullable: a game
// is persisted even when a side failed to resolve, carrying the raw provider
// label so the gate can report the blocking slot.
type Game struct {
	ID           uuid.UUID     `db:"id"`
	ExternalID   string        `db:"external_id"`
	Source       string        `db:"source"`
	Season       int           `db:"season"`
	HomeTeamID   uuid.NullUUID `db:"home_team_id"`
	AwayTeamID   uuid.NullUUID `db:"away_team_id"`
	HomeTeamName string        `db:"home_team_name"`
	AwayTeamName string        `db:"away_team_name"`
	CommenceTime time.Time     `db:"commence_time"`
	Status       string        `db:"status"`

	// Scores
	HomeScore sql.NullInt32 `db:"home_score"`
	AwayScore sql.NullInt32 `db:"away_score"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GameInput is used for creating/updating games from provider feeds
type GameInput struct {
	ExternalID   string `json:"id"`
	Source       string `json:"source"`
	Season       int    `json:"season"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	CommenceTime string `json:"commence_time"` // ISO 8601 format
}

// ToGame converts GameInput to a Game model. Team ids come from the
// resolver; either may be invalid when the side did not resolve.
func (gi *GameInput) ToGame(homeTeamID, awayTeamID uuid.NullUUID) *Game {
	game := &Game{
		ExternalID:   gi.ExternalID,
		Source:       gi.Source,
		Season:       gi.Season,
		HomeTeamID:   homeTeamID,
		AwayTeamID:   awayTeamID,
		HomeTeamName: gi.HomeTeam,
		AwayTeamName: gi.AwayTeam,
		Status:       GameStatusScheduled,
	}

	if commence, err := time.Parse(time.RFC3339, gi.CommenceTime); err == nil {
		game.CommenceTime = commence
	}

	return game
}

// IsScheduled returns true if the game has not started
func (g *Game) IsScheduled() bool {
	return g.Status == GameStatusScheduled
}

// IsFinal returns true if the game is completed
func (g *Game) IsFinal() bool {
	return g.Status == GameStatusFinal
}
