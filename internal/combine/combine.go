// Package combine composes N providers' raw game streams into one canonical
// stream per league season.
//
// Grouping needs every raw observation of a game before it can merge, so a
// season combination drains all providers for that season into memory before
// emitting anything: a deliberate memory-for-correctness trade-off, bounded
// per (league, season). Emission itself stays lazy — groups are merged one at
// a time as the consumer pulls.
package combine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/data-reconciler-service/internal/identity"
	"github.com/cypherlabdev/data-reconciler-service/internal/models"
	"github.com/cypherlabdev/data-reconciler-service/internal/provider"
	"github.com/cypherlabdev/data-reconciler-service/pkg/merge"
)

// Shutdown is the process-wide stop flag. Any provider failure requests
// shutdown; sibling iterators observe it and stop yielding promptly. Merged
// output already yielded stands — there is no rollback.
type Shutdown struct {
	flag atomic.Bool
}

// Request sets the flag.
func (s *Shutdown) Request() {
	s.flag.Store(true)
}

// Requested reports whether shutdown has been requested.
func (s *Shutdown) Requested() bool {
	return s.flag.Load()
}

// League combines registered providers into canonical game streams for one
// league.
type League struct {
	league   models.League
	registry *provider.Registry
	engine   *merge.Engine
	shutdown *Shutdown
	logger   zerolog.Logger
}

// NewLeague creates a combined league over the registry's providers. Registry
// order is merge priority.
func NewLeague(
	maps *identity.Maps,
	league models.League,
	registry *provider.Registry,
	shutdown *Shutdown,
	logger zerolog.Logger,
) *League {
	return &League{
		league:   league,
		registry: registry,
		engine:   merge.NewEngine(maps, league, logger),
		shutdown: shutdown,
		logger:   logger.With().Str("component", "combined_league").Str("league", string(league)).Logger(),
	}
}

// Season drains every provider's stream for one season, groups raw games by
// their cross-provider key, and returns a lazy iterator of merged canonical
// games in first-appearance order. A provider error requests process
// shutdown and is returned as-is: malformed data is fatal to the run, never
// silently partial.
func (l *League) Season(ctx context.Context, year int) (provider.GameIterator, error) {
	var order []string
	groups := make(map[string][]*models.Game)

	for idx, p := range l.registry.Providers() {
		if l.shutdown.Requested() {
			l.logger.Warn().Str("provider", p.Name()).Msg("shutdown requested, not draining further providers")
			break
		}

		it, err := p.Season(ctx, l.league, year)
		if err != nil {
			l.shutdown.Request()
			return nil, fmt.Errorf("provider %s season %d: %w", p.Name(), year, err)
		}

		count := 0
		for {
			raw, err := it.Next(ctx)
			if err == provider.Done {
				break
			}
			if err != nil {
				l.shutdown.Request()
				return nil, fmt.Errorf("provider %s season %d: %w", p.Name(), year, err)
			}

			raw.SourceIndex = idx
			key := merge.GroupKey(raw)
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], raw)
			count++
		}

		l.logger.Info().
			Str("provider", p.Name()).
			Int("year", year).
			Int("games", count).
			Msg("drained provider season")
	}

	return &mergedIterator{
		league:   l,
		year:     year,
		order:    order,
		groups:   groups,
		shutdown: l.shutdown,
	}, nil
}

// mergedIterator lazily merges one group per pull, threading the running
// game-number counter so ordinals stay monotonically increasing even when no
// source reports them.
type mergedIterator struct {
	league         *League
	year           int
	order          []string
	groups         map[string][]*models.Game
	pos            int
	lastGameNumber int
	shutdown       *Shutdown
}

// Next implements provider.GameIterator.
func (it *mergedIterator) Next(ctx context.Context) (*models.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.shutdown.Requested() {
		it.league.logger.Warn().Int("year", it.year).Msg("shutdown requested, stopping merged stream")
		return nil, provider.Done
	}
	if it.pos >= len(it.order) {
		return nil, provider.Done
	}

	key := it.order[it.pos]
	it.pos++

	merged, err := it.league.engine.MergeGames(it.groups[key], it.lastGameNumber)
	if err != nil {
		// Required-field failures are fatal to the run, not retried.
		it.shutdown.Request()
		return nil, err
	}
	if merged.GameNumber != nil {
		it.lastGameNumber = *merged.GameNumber
	}

	return merged, nil
}
