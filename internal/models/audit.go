package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ResolutionAudit is one append-only row per resolver invocation, resolved
// or not. Unresolved rows feed the unresolved_team_inputs view operators
// work from when curating aliases.
type ResolutionAudit struct {
	ID              int64          `db:"id"`
	InputName       string         `db:"input_name"`
	ResolvedTeamID  uuid.NullUUID  `db:"resolved_team_id"`
	ResolvedName    sql.NullString `db:"resolved_name"`
	Source          string         `db:"source"`
	Context         string         `db:"context"`
	Method          string         `db:"method"`
	Confidence      float64        `db:"confidence"`
	HasRatings      bool           `db:"has_ratings"`
	NormalizedInput string         `db:"normalized_input"`
	Alternatives    []string       `db:"alternatives"`
	CreatedAt       time.Time      `db:"created_at"`
}

// UnresolvedInput is one row of the unresolved_team_inputs view: a provider
// spelling with unresolved attempts on record, grouped by source
type UnresolvedInput struct {
	InputName   string    `db:"input_name"`
	Source      string    `db:"source"`
	Occurrences int64     `db:"occurrences"`
	FirstSeen   time.Time `db:"first_seen"`
	LastSeen    time.Time `db:"last_seen"`
}
