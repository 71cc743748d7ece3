package models

import (
	"time"

	"github.com/google/uuid"
)

// RatingSnapshot is one team's Barttorvik efficiency line on a given date.
// A team either has snapshots or it does not; the readiness gate only asks
// for existence, the model layer carries the full line for consumers.
type RatingSnapshot struct {
	ID           int64     `db:"id"`
	TeamID       uuid.UUID `db:"team_id"`
	RatingDate   time.Time `db:"rating_date"`
	AdjO         float64   `db:"adj_o"`
	AdjD         float64   `db:"adj_d"`
	Tempo        float64   `db:"tempo"`
	NetRating    float64   `db:"net_rating"`
	TorvikRank   int       `db:"torvik_rank"`
	Wins         int       `db:"wins"`
	Losses       int       `db:"losses"`
	GamesPlayed  int       `db:"games_played"`
	EFG          float64   `db:"efg"`
	EFGD         float64   `db:"efgd"`
	TOR          float64   `db:"tor"`
	TORD         float64   `db:"tord"`
	ORB          float64   `db:"orb"`
	DRB          float64   `db:"drb"`
	FTR          float64   `db:"ftr"`
	FTRD         float64   `db:"ftrd"`
	TwoPtPct     float64   `db:"two_pt_pct"`
	TwoPtPctD    float64   `db:"two_pt_pct_d"`
	ThreePtPct   float64   `db:"three_pt_pct"`
	ThreePtPctD  float64   `db:"three_pt_pct_d"`
	ThreePtRate  float64   `db:"three_pt_rate"`
	ThreePtRateD float64   `db:"three_pt_rate_d"`
	Barthag      float64   `db:"barthag"`
	WAB          float64   `db:"wab"`
	Raw          []byte    `db:"raw_barttorvik"`
	CreatedAt    time.Time `db:"created_at"`
}
