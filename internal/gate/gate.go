// Package gate computes the production-readiness verdict for a slate date.
// A date passes only when every slot of every scheduled game has a resolved
// team with at least one rating snapshot. Verdicts are recomputed on demand
// and cached briefly, never stored durably; downstream prediction runs treat
// a failed gate as a hard stop.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ncaam_v5/resolution/internal/cache"
	"ncaam_v5/resolution/internal/metrics"
	"ncaam_v5/resolution/internal/models"
	"ncaam_v5/resolution/internal/repository"
)

// Blocker reasons, verbatim in operator output and dashboards
const (
	ReasonUnresolved = "Team not resolved to canonical"
	ReasonNoRatings  = "No ratings data for team"
)

// Slot roles
const (
	SlotHome = "home"
	SlotAway = "away"
)

// DateFormat is the gate's slate date format
const DateFormat = "2006-01-02"

// Blocker is one slot that keeps a date from passing
type Blocker struct {
	GameID     uuid.UUID `json:"game_id"`
	ExternalID string    `json:"external_id"`
	Slot       string    `json:"slot"`
	TeamLabel  string    `json:"team_label"`
	Reason     string    `json:"reason"`
}

// Result is one gate evaluation. GatePassed is exactly "no blockers";
// MatchRatePercent is unrounded and 0 for an empty slate.
type Result struct {
	Date             string    `json:"date"`
	GatePassed       bool      `json:"gate_passed"`
	TotalGames       int       `json:"total_games"`
	TotalSlots       int       `json:"total_slots"`
	RatedSlots       int       `json:"rated_slots"`
	MatchRatePercent float64   `json:"match_rate_percent"`
	Blockers         []Blocker `json:"blockers"`
	CheckedAt        time.Time `json:"checked_at"`
}

// Checker evaluates readiness for slate dates in one operational timezone
type Checker struct {
	db       *repository.Database
	cache    *cache.RedisCache
	location *time.Location
	ttl      time.Duration
}

// NewChecker builds a gate checker. A nil cache disables caching.
func NewChecker(db *repository.Database, redisCache *cache.RedisCache, location *time.Location, ttl time.Duration) *Checker {
	if location == nil {
		location = time.UTC
	}
	return &Checker{db: db, cache: redisCache, location: location, ttl: ttl}
}

// Today returns the current date in the gate's operational timezone
func (c *Checker) Today() string {
	return time.Now().In(c.location).Format(DateFormat)
}

// Check evaluates the gate for one date (YYYY-MM-DD)
func (c *Checker) Check(ctx context.Context, date string) (*Result, error) {
	if _, err := time.Parse(DateFormat, date); err != nil {
		return nil, fmt.Errorf("invalid gate date %q (want YYYY-MM-DD): %w", date, err)
	}

	cacheKey := cache.GateKey(date)
	var cached Result
	hit, err := c.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Warn().Err(err).Str("date", date).Msg("Gate cache read failed")
	}
	if hit {
		return &cached, nil
	}

	games, err := c.db.Games.ListScheduledByDate(ctx, date, c.location.String())
	if err != nil {
		return nil, fmt.Errorf("gate slate query for %s: %w", date, err)
	}

	ids := make([]uuid.UUID, 0, len(games)*2)
	for _, g := range games {
		if g.HomeTeamID.Valid {
			ids = append(ids, g.HomeTeamID.UUID)
		}
		if g.AwayTeamID.Valid {
			ids = append(ids, g.AwayTeamID.UUID)
		}
	}

	rated, err := c.db.Ratings.RatedAmong(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("gate rating check for %s: %w", date, err)
	}

	result := buildResult(date, games, rated, time.Now().In(c.location))

	metrics.RecordGateCheck(result.GatePassed, result.MatchRatePercent, len(result.Blockers))
	log.Info().
		Str("date", date).
		Bool("gate_passed", result.GatePassed).
		Int("total_games", result.TotalGames).
		Int("rated_slots", result.RatedSlots).
		Int("total_slots", result.TotalSlots).
		Float64("match_rate_percent", result.MatchRatePercent).
		Int("blockers", len(result.Blockers)).
		Msg("Readiness gate evaluated")

	if err := c.cache.Set(ctx, cacheKey, result, c.ttl); err != nil {
		log.Warn().Err(err).Str("date", date).Msg("Gate cache write failed")
	}

	return result, nil
}

// ValidateDate returns only the blocking slots for a date
func (c *Checker) ValidateDate(ctx context.Context, date string) ([]Blocker, error) {
	result, err := c.Check(ctx, date)
	if err != nil {
		return nil, err
	}
	return result.Blockers, nil
}

// buildResult is the pure slot arithmetic: two slots per game, one blocker
// per slot that is unresolved or unrated.
func buildResult(date string, games []*models.Game, rated map[uuid.UUID]bool, checkedAt time.Time) *Result {
	result := &Result{
		Date:       date,
		TotalGames: len(games),
		TotalSlots: len(games) * 2,
		Blockers:   []Blocker{},
		CheckedAt:  checkedAt,
	}

	for _, g := range games {
		result.checkSlot(g, SlotHome, g.HomeTeamID, g.HomeTeamName, rated)
		result.checkSlot(g, SlotAway, g.AwayTeamID, g.AwayTeamName, rated)
	}

	result.RatedSlots = result.TotalSlots - len(result.Blockers)
	if result.TotalSlots > 0 {
		result.MatchRatePercent = float64(result.RatedSlots) / float64(result.TotalSlots) * 100
	}
	result.GatePassed = len(result.Blockers) == 0

	return result
}

func (r *Result) checkSlot(g *models.Game, slot string, teamID uuid.NullUUID, label string, rated map[uuid.UUID]bool) {
	blocker := Blocker{
		GameID:     g.ID,
		ExternalID: g.ExternalID,
		Slot:       slot,
		TeamLabel:  label,
	}

	switch {
	case !teamID.Valid:
		blocker.Reason = ReasonUnresolved
	case !rated[teamID.UUID]:
		blocker.Reason = ReasonNoRatings
	default:
		return
	}

	r.Blockers = append(r.Blockers, blocker)
}
