package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Alias maps one provider spelling to a canonical team. The (alias, source)
// pair is unique; registering the same pair for a different team is a
// conflict, not an overwrite.
type Alias struct {
	ID         int64     `db:"id"`
	TeamID     uuid.UUID `db:"team_id"`
	Alias      string    `db:"alias"`
	Source     string    `db:"source"`
	Confidence float64   `db:"confidence"`
	CreatedAt  time.Time `db:"created_at"`
}

// ExternalID links a team to one provider's stable identifier
type ExternalID struct {
	ID          int64         `db:"id"`
	TeamID      uuid.UUID     `db:"team_id"`
	Source      string        `db:"source"`
	ExternalID  string        `db:"external_id"`
	FirstSeason sql.NullInt32 `db:"first_season"`
	LastSeason  sql.NullInt32 `db:"last_season"`
	Metadata    []byte        `db:"metadata"`
	CreatedAt   time.Time     `db:"created_at"`
}
