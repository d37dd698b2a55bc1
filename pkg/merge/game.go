// Package merge reconciles multiple providers' raw observations of the same
// real-world game into one canonical record. Matching is key-based (date plus
// team-name multiset), identity is resolved through static per-league maps,
// and field conflicts are settled by a first-non-null-in-priority-order
// policy. Merging is pure in-memory computation: no I/O, no timeouts.
package merge

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/data-reconciler-service/internal/identity"
	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// ErrMissingStartTime is returned when no grouped raw source reports a start
// time. Required fields get no silent default: a malformed merge is fatal to
// the run so data-quality regressions surface loudly.
var ErrMissingStartTime = errors.New("no source reported a start time")

// canonicalGameNamespace seeds deterministic canonical game IDs so re-running
// a reconciliation pass yields identical records.
var canonicalGameNamespace = uuid.MustParse("8f9d6a51-2c3e-4b7a-9e1d-5f0c4b8a2d17")

// Engine merges raw games, teams and players for one league.
type Engine struct {
	league  models.League
	teams   *identity.Resolver
	venues  *identity.Resolver
	players *identity.Resolver
	logger  zerolog.Logger
}

// NewEngine creates a merge engine backed by the league's identity maps.
func NewEngine(maps *identity.Maps, league models.League, logger zerolog.Logger) *Engine {
	return &Engine{
		league:  league,
		teams:   maps.Teams(league),
		venues:  maps.Venues(league),
		players: maps.Players(league),
		logger:  logger.With().Str("component", "merge_engine").Str("league", string(league)).Logger(),
	}
}

// MergeGames reconciles raw observations of one real-world game into a single
// canonical game. Callers group raws by GroupKey first. lastGameNumber is the
// caller's running ordinal counter for the season; when no source reports a
// game number the merged game gets lastGameNumber+1, keeping ordinals
// monotonically increasing.
func (e *Engine) MergeGames(raws []*models.Game, lastGameNumber int) (*models.Game, error) {
	if len(raws) == 0 {
		return nil, errors.New("no raw games to merge")
	}

	// Priority order: the order providers were registered in, lowest first.
	ordered := make([]*models.Game, len(raws))
	copy(ordered, raws)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SourceIndex < ordered[j].SourceIndex
	})

	startTime, hasZone, err := mergeStartTime(ordered)
	if err != nil {
		return nil, fmt.Errorf("merge game %s: %w", GroupKey(ordered[0]), err)
	}

	merged := &models.Game{
		ID:          uuid.NewSHA1(canonicalGameNamespace, []byte(string(ordered[0].League)+keySeparator+GroupKey(ordered[0]))),
		StartTime:   startTime,
		HasZone:     hasZone,
		League:      ordered[0].League,
		Year:        ordered[0].Year,
		Version:     models.GameVersion,
		SourceIndex: ordered[0].SourceIndex,

		EndTime:    coalesce(ordered, func(g *models.Game) *time.Time { return g.EndTime }),
		Week:       coalesce(ordered, func(g *models.Game) *int { return g.Week }),
		Attendance: coalesce(ordered, func(g *models.Game) *int { return g.Attendance }),
		Postponed:  coalesce(ordered, func(g *models.Game) *bool { return g.Postponed }),
		PlayOff:    coalesce(ordered, func(g *models.Game) *bool { return g.PlayOff }),
		Distance:   coalesce(ordered, func(g *models.Game) *decimal.Decimal { return g.Distance }),
		Pot:        coalesce(ordered, func(g *models.Game) *decimal.Decimal { return g.Pot }),
	}
	merged.SeasonType = models.SeasonType(coalesceString(ordered, func(g *models.Game) string { return string(g.SeasonType) }))

	merged.GameNumber = coalesce(ordered, func(g *models.Game) *int { return g.GameNumber })
	if merged.GameNumber == nil {
		next := lastGameNumber + 1
		merged.GameNumber = &next
	}

	// Dividends are payout observations, concatenated across sources.
	for _, g := range ordered {
		merged.Dividends = append(merged.Dividends, g.Dividends...)
	}

	merged.Venue = e.mergeVenues(ordered)
	merged.Teams = e.mergeGameTeams(ordered)

	return merged, nil
}

// mergeStartTime picks the merged start time. A timestamp carrying explicit
// timezone information dominates provider priority for this one field;
// otherwise the highest-priority non-zero timestamp wins. All-zero is an
// error.
func mergeStartTime(ordered []*models.Game) (time.Time, bool, error) {
	for _, g := range ordered {
		if g.HasZone && !g.StartTime.IsZero() {
			return g.StartTime, true, nil
		}
	}
	for _, g := range ordered {
		if !g.StartTime.IsZero() {
			return g.StartTime, false, nil
		}
	}
	return time.Time{}, false, ErrMissingStartTime
}

// mergeVenues reconciles venues as reference data: the first raw venue whose
// identifier the venue map recognizes wins, with its identifier rewritten to
// the canonical one. When no venue is mapped the first venue is retained
// under its own raw identifier.
func (e *Engine) mergeVenues(ordered []*models.Game) *models.Venue {
	var first *models.Venue
	for _, g := range ordered {
		if g.Venue == nil {
			continue
		}
		if first == nil {
			first = g.Venue
		}
		if canonical, ok := e.venues.Lookup(g.Venue.ID); ok {
			resolved := *g.Venue
			resolved.ID = canonical
			return &resolved
		}
	}
	if first == nil {
		return nil
	}
	fallback := *first
	fallback.ID = e.venues.Resolve(first.ID)
	return &fallback
}

// mergeGameTeams groups raw teams across the ordered raw games by canonical
// team identity (resolved from each team's raw identifier, not its name) and
// merges each group. Positional order follows first appearance in priority
// order, preserving the highest-priority provider's home/away convention.
func (e *Engine) mergeGameTeams(ordered []*models.Game) []models.Team {
	var order []string
	groups := make(map[string][]*models.Team)

	for _, g := range ordered {
		for i := range g.Teams {
			raw := &g.Teams[i]
			canonical := e.teams.Resolve(raw.ID)
			if _, seen := groups[canonical]; !seen {
				order = append(order, canonical)
			}
			groups[canonical] = append(groups[canonical], raw)
		}
	}

	teams := make([]models.Team, 0, len(order))
	for _, canonical := range order {
		teams = append(teams, e.mergeTeam(canonical, groups[canonical]))
	}
	return teams
}
