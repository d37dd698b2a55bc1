package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GameVersion is the schema tag stamped on every canonical game so downstream
// consumers can detect shape changes.
const GameVersion = "1.0"

// Game represents one real-world contest, either as reported by a single
// provider (raw) or after reconciliation across providers (canonical).
// Optional fields are pointers; nil means "not tracked by this source",
// never zero. A game is immutable once constructed.
type Game struct {
	ID         uuid.UUID        `json:"id"`
	StartTime  time.Time        `json:"start_time"`
	HasZone    bool             `json:"has_zone"` // upstream supplied an explicit offset/zone
	EndTime    *time.Time       `json:"end_time,omitempty"`
	Week       *int             `json:"week,omitempty"`
	GameNumber *int             `json:"game_number,omitempty"`
	Venue      *Venue           `json:"venue,omitempty"`
	Teams      []Team           `json:"teams"`
	League     League           `json:"league"`
	Year       int              `json:"year"`
	SeasonType SeasonType       `json:"season_type"`
	Attendance *int             `json:"attendance,omitempty"`
	Postponed  *bool            `json:"postponed,omitempty"`
	PlayOff    *bool            `json:"play_off,omitempty"`
	Distance   *decimal.Decimal `json:"distance,omitempty"` // racing
	Dividends  []Dividend       `json:"dividends,omitempty"`
	Pot        *decimal.Decimal `json:"pot,omitempty"`
	Version    string           `json:"version"`

	// SourceIndex is the registration position of the provider that produced
	// this raw game. Lower index means higher merge priority. Canonical games
	// carry the index of their highest-priority contributor.
	SourceIndex int `json:"source_index"`
}

// HomeTeam returns the positionally-first team. Head-to-head sports list the
// home side first by convention.
func (g *Game) HomeTeam() *Team {
	if len(g.Teams) == 0 {
		return nil
	}
	return &g.Teams[0]
}

// AwayTeam returns the positionally-second team.
func (g *Game) AwayTeam() *Team {
	if len(g.Teams) < 2 {
		return nil
	}
	return &g.Teams[1]
}

// Venue is a physical venue. Venues are reference data: shared by identifier
// across all games played there, never field-merged.
type Venue struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// KafkaCanonicalGamesMessage is the message published to downstream consumers
// (feature pipeline) after a reconciliation pass.
type KafkaCanonicalGamesMessage struct {
	Games     []Game    `json:"games"`
	Timestamp time.Time `json:"timestamp"`
	BatchID   string    `json:"batch_id"`
}
