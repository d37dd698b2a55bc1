package merge

import (
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// mergeTeam merges raw observations of one team within an already-grouped
// game. The identifier is the resolved canonical key; scalars follow the
// first-non-null policy; odds are a union — every bookie's quote from every
// provider is a distinct observation, never deduplicated.
func (e *Engine) mergeTeam(canonical string, raws []*models.Team) models.Team {
	merged := models.Team{
		ID:         canonical,
		Name:       coalesceString(raws, func(t *models.Team) string { return t.Name }),
		Location:   coalesce(raws, func(t *models.Team) *string { return t.Location }),
		Points:     coalesce(raws, func(t *models.Team) *decimal.Decimal { return t.Points }),
		LadderRank: coalesce(raws, func(t *models.Team) *int { return t.LadderRank }),
	}

	for _, t := range raws {
		merged.Odds = append(merged.Odds, t.Odds...)
	}

	merged.Players = e.mergeTeamPlayers(raws)
	return merged
}
