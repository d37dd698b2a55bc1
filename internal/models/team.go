package models

import (
	"github.com/shopspring/decimal"
)

// Team represents one team's participation in one game. ID is the canonical
// identifier after identity resolution; raw provider teams carry their raw
// identifier there until resolved.
type Team struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Location   *string          `json:"location,omitempty"`
	Players    []Player         `json:"players,omitempty"`
	Odds       []Odds           `json:"odds,omitempty"`
	Points     *decimal.Decimal `json:"points,omitempty"`
	LadderRank *int             `json:"ladder_rank,omitempty"`

	// Memoized aggregate, keyed on the player-list length to detect staleness.
	totalKicks        *int
	totalKicksPlayers int
}

// TotalKicks sums player kicks across the team, lazily. Returns nil when no
// player reports kicks at all (absence is not zero). The result is memoized
// until the player list changes length.
func (t *Team) TotalKicks() *int {
	if t.totalKicks != nil && t.totalKicksPlayers == len(t.Players) {
		return t.totalKicks
	}

	var total int
	seen := false
	for i := range t.Players {
		if k := t.Players[i].Kicks; k != nil {
			total += *k
			seen = true
		}
	}
	if !seen {
		return nil
	}

	t.totalKicks = &total
	t.totalKicksPlayers = len(t.Players)
	return t.totalKicks
}
