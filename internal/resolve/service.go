package resolve

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"ncaam_v5/resolution/internal/cache"
	"ncaam_v5/resolution/internal/metrics"
	"ncaam_v5/resolution/internal/models"
	"ncaam_v5/resolution/internal/normalize"
	"ncaam_v5/resolution/internal/repository"
)

// Audit context values for game ingestion
const (
	ContextHomeTeam    = "home_team"
	ContextAwayTeam    = "away_team"
	ContextRatingsSync = "ratings_sync"
	ContextManual      = "manual"
)

// SourceBarttorvik tags aliases and audit rows produced by the ratings feed
const SourceBarttorvik = "barttorvik"

// Service wires the in-memory engine to the database, the audit trail, the
// shared Redis cache and metrics. Every Resolve call appends one audit row;
// registration and sync paths keep the engine snapshot and the cache
// coherent with what they wrote.
type Service struct {
	db            *repository.Database
	engine        *Engine
	cache         *cache.RedisCache
	resolutionTTL time.Duration
}

// NewService builds a service around an empty engine; call Rebuild before
// serving. A nil cache disables caching.
func NewService(db *repository.Database, redisCache *cache.RedisCache, resolutionTTL time.Duration) *Service {
	return &Service{
		db:            db,
		engine:        NewEngine(),
		cache:         redisCache,
		resolutionTTL: resolutionTTL,
	}
}

// Engine exposes the underlying engine for direct snapshot access
func (s *Service) Engine() *Engine {
	return s.engine
}

// Rebuild reloads the engine snapshot from the database
func (s *Service) Rebuild(ctx context.Context) error {
	return s.engine.Rebuild(ctx, s.db)
}

// Resolve maps one provider input to a canonical team and appends an audit
// row for the attempt. Unresolved is a normal outcome, not an error; audit
// or cache failures are logged and never block the caller.
func (s *Service) Resolve(ctx context.Context, input string, hints *Hints, source, resContext string) Resolution {
	start := time.Now()

	var res Resolution
	cacheKey := cache.ResolutionKey(source, strings.TrimSpace(input))

	// Hints change the outcome, so hinted lookups bypass the shared cache.
	hit := false
	if hints == nil {
		var err error
		hit, err = s.cache.Get(ctx, cacheKey, &res)
		if err != nil {
			log.Warn().Err(err).Str("input", input).Msg("Resolution cache read failed")
			hit = false
		}
	}

	if !hit {
		res = s.engine.Resolve(input, hints)
		if hints == nil {
			if err := s.cache.Set(ctx, cacheKey, res, s.resolutionTTL); err != nil {
				log.Warn().Err(err).Str("input", input).Msg("Resolution cache write failed")
			}
		}
	}

	s.appendAudit(ctx, res, source, resContext)
	metrics.RecordResolution(string(res.Method), source, time.Since(start).Seconds())

	if !res.Resolved() {
		log.Warn().
			Str("input", input).
			Str("normalized", res.NormalizedInput).
			Str("source", source).
			Str("context", resContext).
			Strs("alternatives", res.Alternatives).
			Msg("Team name did not resolve")
	}

	return res
}

func (s *Service) appendAudit(ctx context.Context, res Resolution, source, resContext string) {
	audit := &models.ResolutionAudit{
		InputName:       res.Input,
		Source:          source,
		Context:         resContext,
		Method:          string(res.Method),
		Confidence:      res.Confidence,
		HasRatings:      res.HasRatings,
		NormalizedInput: res.NormalizedInput,
		Alternatives:    res.Alternatives,
	}
	if res.Resolved() {
		audit.ResolvedTeamID = uuid.NullUUID{UUID: res.TeamID, Valid: true}
		audit.ResolvedName = sql.NullString{String: res.CanonicalName, Valid: true}
	}

	if err := s.db.Audit.Append(ctx, audit); err != nil {
		metrics.RecordError("resolve", "audit_append")
		log.Warn().Err(err).Str("input", res.Input).Msg("Failed to append resolution audit")
	}
}

// RegisterAlias maps a provider spelling to a team. Registering an existing
// identical mapping is a no-op; a pair owned by another team returns
// repository.ErrAliasConflict untouched.
func (s *Service) RegisterAlias(ctx context.Context, aliasName, source string, teamID uuid.UUID, confidence float64) (*models.Alias, error) {
	aliasName = strings.TrimSpace(aliasName)
	if aliasName == "" {
		return nil, fmt.Errorf("alias must not be empty")
	}
	if source == "" {
		return nil, fmt.Errorf("alias source must not be empty")
	}
	if confidence <= 0 || confidence > 1 {
		return nil, fmt.Errorf("alias confidence %v outside (0, 1]", confidence)
	}

	team, err := s.db.Teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("alias target: %w", err)
	}

	alias := &models.Alias{
		TeamID:     team.ID,
		Alias:      aliasName,
		Source:     source,
		Confidence: confidence,
	}

	created, err := s.db.Aliases.Upsert(ctx, alias)
	if err != nil {
		if errors.Is(err, repository.ErrAliasConflict) {
			metrics.RecordAliasRegistration(source, "conflict")
		}
		return nil, err
	}

	s.engine.AddAlias(alias)

	if err := s.cache.Delete(ctx, cache.ResolutionKey(source, aliasName)); err != nil {
		log.Warn().Err(err).Str("alias", aliasName).Msg("Failed to invalidate resolution cache")
	}

	status := "exists"
	if created {
		status = "created"
		log.Info().
			Str("alias", aliasName).
			Str("source", source).
			Str("canonical", team.CanonicalName).
			Msg("Alias registered")
	}
	metrics.RecordAliasRegistration(source, status)

	return alias, nil
}

// RecordRatingSnapshot upserts one rating line and marks the team rated in
// the live snapshot
func (s *Service) RecordRatingSnapshot(ctx context.Context, snap *models.RatingSnapshot) error {
	if err := s.db.Ratings.Upsert(ctx, snap); err != nil {
		return err
	}
	s.engine.MarkRated(snap.TeamID)
	return nil
}

// IngestGame resolves both sides of a provider game row and upserts it.
// The game persists even when a side is unresolved; the same team on both
// sides is rejected with repository.ErrSameTeamGame.
func (s *Service) IngestGame(ctx context.Context, input *models.GameInput) (*models.Game, error) {
	homeRes := s.Resolve(ctx, input.HomeTeam, nil, input.Source, ContextHomeTeam)
	awayRes := s.Resolve(ctx, input.AwayTeam, nil, input.Source, ContextAwayTeam)

	homeID := uuid.NullUUID{UUID: homeRes.TeamID, Valid: homeRes.Resolved()}
	awayID := uuid.NullUUID{UUID: awayRes.TeamID, Valid: awayRes.Resolved()}

	game := input.ToGame(homeID, awayID)
	if err := s.db.Games.Upsert(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// EnsureTeam finds or creates the registry team for one ratings feed row.
// Lookup order: stored feed name, then the resolver, then a new team under
// the normalized feed name. The feed name is recorded as an alias either
// way so the next season's sync short-circuits.
func (s *Service) EnsureTeam(ctx context.Context, torvikName, conference string) (*models.Team, error) {
	team, err := s.db.Teams.GetByBarttorvikName(ctx, torvikName)
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	res := s.Resolve(ctx, torvikName, nil, SourceBarttorvik, ContextRatingsSync)
	if res.Resolved() {
		team, err = s.db.Teams.GetByID(ctx, res.TeamID)
		if err != nil {
			return nil, err
		}
		if err := s.db.Teams.SetBarttorvikName(ctx, team.ID, torvikName); err != nil {
			return nil, err
		}
		if _, err := s.RegisterAlias(ctx, torvikName, SourceBarttorvik, team.ID, 1.0); err != nil &&
			!errors.Is(err, repository.ErrAliasConflict) {
			return nil, err
		}
		return team, nil
	}

	input := &models.TeamInput{
		CanonicalName:  normalize.Normalize(torvikName),
		BarttorvikName: torvikName,
		Conference:     conference,
	}
	team = input.ToTeam()
	if err := s.db.Teams.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team for feed name %q: %w", torvikName, err)
	}
	s.engine.AddTeam(team)

	if !strings.EqualFold(team.CanonicalName, torvikName) {
		if _, err := s.RegisterAlias(ctx, torvikName, SourceBarttorvik, team.ID, 1.0); err != nil &&
			!errors.Is(err, repository.ErrAliasConflict) {
			return nil, err
		}
	}

	log.Info().
		Str("canonical", team.CanonicalName).
		Str("barttorvik_name", torvikName).
		Str("conference", conference).
		Msg("Team created from ratings feed")

	return team, nil
}
