package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Team represents a canonical college basketball team
type Team struct {
	ID             uuid.UUID      `db:"id"`
	CanonicalName  string         `db:"canonical_name"`
	BarttorvikName sql.NullString `db:"barttorvik_name"`
	Conference     sql.NullString `db:"conference"`
	Division       sql.NullString `db:"division"`
	City           sql.NullString `db:"city"`
	State          sql.NullString `db:"state"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// DuplicateCanonical is one case-insensitive canonical-name collision group,
// input to the shadow-team repair workflow
type DuplicateCanonical struct {
	Key     string      `db:"key"`
	Count   int         `db:"count"`
	TeamIDs []uuid.UUID `db:"team_ids"`
}

// TeamInput is used for creating teams from sync and seed flows
type TeamInput struct {
	CanonicalName  string `json:"canonical_name"`
	BarttorvikName string `json:"barttorvik_name"`
	Conference     string `json:"conference"`
	Division       string `json:"division"`
	City           string `json:"city"`
	State          string `json:"state"`
}

// ToTeam converts TeamInput to a Team model
func (ti *TeamInput) ToTeam() *Team {
	team := &Team{
		CanonicalName: ti.CanonicalName,
	}

	if ti.BarttorvikName != "" {
		team.BarttorvikName = sql.NullString{String: ti.BarttorvikName, Valid: true}
	}
	if ti.Conference != "" {
		team.Conference = sql.NullString{String: ti.Conference, Valid: true}
	}
	if ti.Division != "" {
		team.Division = sql.NullString{String: ti.Division, Valid: true}
	}
	if ti.City != "" {
		team.City = sql.NullString{String: ti.City, Valid: true}
	}
	if ti.State != "" {
		team.State = sql.NullString{String: ti.State, Valid: true}
	}

	return team
}
