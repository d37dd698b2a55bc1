package merge

import (
	"sort"
	"strings"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// keySeparator joins group-key components. Team display names never contain
// it in practice; the sort below makes the key symmetric regardless.
const keySeparator = "|"

// GroupKey computes the cross-provider grouping key for a raw game: the
// calendar date plus the multiset of raw team display names, sorted and
// joined. Two games from different providers are the same real-world game iff
// their keys are equal.
//
// Date granularity (not datetime) is deliberate: providers disagree on
// timezone and precision. Team names are the raw display names, not canonical
// identities; canonicalization happens one level down, when teams are merged.
//
// Known gap: same-day rematches between the same two teams (doubleheaders)
// collapse into one group. The upstream sources give nothing to disambiguate
// them with, so this is documented rather than guessed at.
func GroupKey(g *models.Game) string {
	parts := make([]string, 0, len(g.Teams)+1)
	parts = append(parts, g.StartTime.Format("2006-01-02"))
	for i := range g.Teams {
		parts = append(parts, g.Teams[i].Name)
	}
	sort.Strings(parts)
	return strings.Join(parts, keySeparator)
}
