package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"ncaam_v5/resolution/internal/cache"
	"ncaam_v5/resolution/internal/client"
	"ncaam_v5/resolution/internal/config"
	"ncaam_v5/resolution/internal/gate"
	"ncaam_v5/resolution/internal/metrics"
	"ncaam_v5/resolution/internal/models"
	"ncaam_v5/resolution/internal/repository"
	"ncaam_v5/resolution/internal/resolve"
)

// Scheduler manages the background jobs that keep the registry current:
// - Nightly Barttorvik ratings sync
// - Recurring readiness gate check on today's slate
type Scheduler struct {
	cfg      *config.Config
	torvik   *client.TorvikClient
	db       *repository.Database
	resolver *resolve.Service
	checker  *gate.Checker
	cache    *cache.RedisCache
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	cfg *config.Config,
	torvik *client.TorvikClient,
	db *repository.Database,
	resolver *resolve.Service,
	checker *gate.Checker,
	redisCache *cache.RedisCache,
) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		torvik:   torvik,
		db:       db,
		resolver: resolver,
		checker:  checker,
		cache:    redisCache,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.RatingsSyncCron, func() {
		log.Info().Msg("Running nightly ratings sync...")
		if err := s.SyncRatings(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly ratings sync failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule ratings sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.RatingsSyncCron).
		Msg("Nightly ratings sync scheduled")

	interval := time.Duration(s.cfg.GateCheckInterval) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Readiness gate polling started")

	go s.pollGate(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollGate re-evaluates the readiness gate for today's slate on a fixed
// interval, so a failing gate shows up in metrics long before anyone asks
// for predictions.
func (s *Scheduler) pollGate(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping gate polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping gate polling")
			return
		case <-s.ticker.C:
			if err := s.runGateCheck(ctx); err != nil {
				log.Error().Err(err).Msg("Readiness gate check failed")
			}
		}
	}
}

func (s *Scheduler) runGateCheck(ctx context.Context) error {
	date := s.checker.Today()
	result, err := s.checker.Check(ctx, date)
	if err != nil {
		return err
	}

	if !result.GatePassed {
		log.Warn().
			Str("date", date).
			Int("blockers", len(result.Blockers)).
			Float64("match_rate", result.MatchRatePercent).
			Msg("Readiness gate is failing")
	}

	s.updateRegistryStats(ctx)
	return nil
}

// SyncRatings runs one full ratings sync: fetch the Barttorvik feed, ensure
// every rated team exists in the registry, store today's snapshots, rebuild
// the resolution index and re-check the gate. Individual bad rows are
// skipped; the sync only fails when nothing could be stored.
func (s *Scheduler) SyncRatings(ctx context.Context) error {
	start := time.Now()
	season := client.CurrentSeason()

	teams, err := s.torvik.FetchTeamRatings(ctx, season)
	if err != nil {
		metrics.RecordSync("ratings", "failure", time.Since(start).Seconds())
		metrics.RecordError("scheduler", "ratings_fetch")
		return fmt.Errorf("failed to fetch ratings: %w", err)
	}

	ratingDate := time.Now().UTC().Truncate(24 * time.Hour)
	stored := 0
	failed := 0
	for i := range teams {
		row := &teams[i]

		team, err := s.resolver.EnsureTeam(ctx, row.Team, row.Conf)
		if err != nil {
			log.Warn().Err(err).Str("team", row.Team).Msg("Failed to ensure team for ratings row")
			failed++
			continue
		}

		if err := s.resolver.RecordRatingSnapshot(ctx, snapshotFromTorvik(team.ID, ratingDate, row)); err != nil {
			log.Warn().Err(err).Str("team", row.Team).Msg("Failed to store rating snapshot")
			failed++
			continue
		}
		stored++
	}

	if err := s.resolver.Rebuild(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to rebuild resolution index after sync")
	}

	// Ratings moved, so the cached gate verdict for today is stale.
	today := s.checker.Today()
	if err := s.cache.Delete(ctx, cache.GateKey(today)); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate gate cache after sync")
	}
	if _, err := s.checker.Check(ctx, today); err != nil {
		log.Warn().Err(err).Str("date", today).Msg("Post-sync gate check failed")
	}

	s.updateRegistryStats(ctx)

	duration := time.Since(start)
	if stored == 0 && len(teams) > 0 {
		metrics.RecordSync("ratings", "failure", duration.Seconds())
		return fmt.Errorf("ratings sync stored no snapshots (%d rows failed)", failed)
	}
	metrics.RecordSync("ratings", "success", duration.Seconds())

	log.Info().
		Int("stored", stored).
		Int("failed", failed).
		Int("season", season).
		Dur("duration", duration).
		Msg("Ratings sync complete")

	return nil
}

func (s *Scheduler) updateRegistryStats(ctx context.Context) {
	teams, err := s.db.Teams.Count(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to count teams for metrics")
		return
	}
	rated, err := s.db.Ratings.CountRatedTeams(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to count rated teams for metrics")
		return
	}
	unresolved, err := s.db.Audit.CountUnresolved(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to count unresolved inputs for metrics")
		return
	}

	metrics.UpdateRegistryStats(int64(teams), int64(rated), int64(unresolved))
}

// snapshotFromTorvik maps one parsed feed row onto a rating snapshot
func snapshotFromTorvik(teamID uuid.UUID, ratingDate time.Time, t *client.TorvikTeam) *models.RatingSnapshot {
	return &models.RatingSnapshot{
		TeamID:       teamID,
		RatingDate:   ratingDate,
		AdjO:         t.AdjOE,
		AdjD:         t.AdjDE,
		Tempo:        t.Tempo,
		NetRating:    t.NetRating(),
		TorvikRank:   t.Rank,
		Wins:         t.Wins,
		Losses:       t.Losses,
		GamesPlayed:  t.GamesPlayed,
		EFG:          t.EFG,
		EFGD:         t.EFGD,
		TOR:          t.TOR,
		TORD:         t.TORD,
		ORB:          t.ORB,
		DRB:          t.DRB,
		FTR:          t.FTR,
		FTRD:         t.FTRD,
		TwoPtPct:     t.TwoPct,
		TwoPtPctD:    t.TwoPctD,
		ThreePtPct:   t.ThreePct,
		ThreePtPctD:  t.ThreePctD,
		ThreePtRate:  t.ThreeRate,
		ThreePtRateD: t.ThreeRateD,
		Barthag:      t.Barthag,
		WAB:          t.WAB,
		Raw:          t.Raw,
	}
}
