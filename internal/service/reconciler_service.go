package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/data-reconciler-service/internal/combine"
	"github.com/cypherlabdev/data-reconciler-service/internal/identity"
	"github.com/cypherlabdev/data-reconciler-service/internal/models"
	"github.com/cypherlabdev/data-reconciler-service/internal/provider"
)

// LeagueJob describes one league's reconciliation workload: which seasons to
// combine and which providers feed it, in priority order.
type LeagueJob struct {
	League   models.League
	Years    []int
	Registry *provider.Registry
}

// ReconcilerService orchestrates the full pipeline: combine provider streams
// into canonical games, cache them for the read API, and publish them
// downstream.
type ReconcilerService struct {
	maps      *identity.Maps
	cache     GameCache
	publisher Publisher
	shutdown  *combine.Shutdown
	logger    zerolog.Logger
}

// NewReconcilerService creates a new reconciler service
func NewReconcilerService(
	maps *identity.Maps,
	cache GameCache,
	publisher Publisher,
	shutdown *combine.Shutdown,
	logger zerolog.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		maps:      maps,
		cache:     cache,
		publisher: publisher,
		shutdown:  shutdown,
		logger:    logger.With().Str("component", "reconciler_service").Logger(),
	}
}

// Run reconciles every job in order. The first failure stops the run: a
// malformed or missing source makes the whole output suspect, so nothing is
// published past it.
func (s *ReconcilerService) Run(ctx context.Context, jobs []LeagueJob) error {
	for _, job := range jobs {
		if s.shutdown.Requested() {
			return fmt.Errorf("shutdown requested before league %s", job.League)
		}
		if err := s.runLeague(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

// runLeague reconciles every configured season of one league.
func (s *ReconcilerService) runLeague(ctx context.Context, job LeagueJob) error {
	combined := combine.NewLeague(s.maps, job.League, job.Registry, s.shutdown, s.logger)

	for _, year := range job.Years {
		games, err := s.reconcileSeason(ctx, combined, year)
		if err != nil {
			return fmt.Errorf("league %s season %d: %w", job.League, year, err)
		}

		// Cache failures degrade the read API but don't invalidate the
		// canonical output, so they are logged and skipped.
		if err := s.cache.SetBatch(ctx, games); err != nil {
			s.logger.Warn().
				Err(err).
				Str("league", string(job.League)).
				Int("year", year).
				Msg("failed to cache canonical games")
		}

		batchID, err := s.publisher.PublishBatch(ctx, job.League, games)
		if err != nil {
			return fmt.Errorf("league %s season %d: %w", job.League, year, err)
		}

		s.logger.Info().
			Str("league", string(job.League)).
			Int("year", year).
			Int("game_count", len(games)).
			Str("batch_id", batchID).
			Msg("reconciled season")
	}

	return nil
}

// reconcileSeason drains the merged stream for one season.
func (s *ReconcilerService) reconcileSeason(ctx context.Context, combined *combine.League, year int) ([]*models.Game, error) {
	it, err := combined.Season(ctx, year)
	if err != nil {
		return nil, err
	}

	var games []*models.Game
	for {
		game, err := it.Next(ctx)
		if err == provider.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}

	return games, nil
}
