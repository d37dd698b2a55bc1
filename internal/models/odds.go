package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bookie is a betting operator identity. Reference data: resolved once,
// never field-merged.
type Bookie struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Odds is one bookmaker quote for one team in one game. Each provider's quote
// from each bookie is a distinct observation; reconciliation unions quotes
// across providers and never deduplicates them.
type Odds struct {
	Bookie    Bookie          `json:"bookie"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
	BetType   string          `json:"bet_type"`

	// Canonical marks a provider's headline market as opposed to secondary
	// markets for the same game.
	Canonical bool `json:"canonical"`
}

// Dividend is a payout record for pool betting (racing): the pool type, the
// ordered combination of participant identifiers, and the payout amount.
type Dividend struct {
	Pool        string          `json:"pool"`
	Combination []string        `json:"combination"`
	Payout      decimal.Decimal `json:"payout"`
}
