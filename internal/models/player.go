package models

// Player represents one player's participation in one game for one team.
// Statistic fields are a flat set of nullable per-sport counters; nil means
// the source does not track that statistic, never zero. Different providers
// routinely fill disjoint subsets, so reconciliation resolves every field
// independently.
type Player struct {
	ID     string  `json:"id"`
	Jersey *int    `json:"jersey,omitempty"`
	Name   *string `json:"name,omitempty"`

	// Australian rules
	Kicks                  *int `json:"kicks,omitempty"`
	Marks                  *int `json:"marks,omitempty"`
	Handballs              *int `json:"handballs,omitempty"`
	Disposals              *int `json:"disposals,omitempty"`
	Goals                  *int `json:"goals,omitempty"`
	Behinds                *int `json:"behinds,omitempty"`
	HitOuts                *int `json:"hit_outs,omitempty"`
	Tackles                *int `json:"tackles,omitempty"`
	Rebounds               *int `json:"rebounds,omitempty"`
	Insides50              *int `json:"insides_50,omitempty"`
	Clearances             *int `json:"clearances,omitempty"`
	Clangers               *int `json:"clangers,omitempty"`
	FreesFor               *int `json:"frees_for,omitempty"`
	FreesAgainst           *int `json:"frees_against,omitempty"`
	BrownlowVotes          *int `json:"brownlow_votes,omitempty"`
	ContestedPossessions   *int `json:"contested_possessions,omitempty"`
	UncontestedPossessions *int `json:"uncontested_possessions,omitempty"`
	ContestedMarks         *int `json:"contested_marks,omitempty"`
	MarksInside50          *int `json:"marks_inside_50,omitempty"`
	OnePercenters          *int `json:"one_percenters,omitempty"`
	Bounces                *int `json:"bounces,omitempty"`
	GoalAssists            *int `json:"goal_assists,omitempty"`

	// Basketball
	Points                 *int `json:"points,omitempty"`
	Assists                *int `json:"assists,omitempty"`
	Steals                 *int `json:"steals,omitempty"`
	Blocks                 *int `json:"blocks,omitempty"`
	Turnovers              *int `json:"turnovers,omitempty"`
	PersonalFouls          *int `json:"personal_fouls,omitempty"`
	MinutesPlayed          *int `json:"minutes_played,omitempty"`
	FieldGoalsAttempted    *int `json:"field_goals_attempted,omitempty"`
	FieldGoalsMade         *int `json:"field_goals_made,omitempty"`
	ThreePointersAttempted *int `json:"three_pointers_attempted,omitempty"`
	ThreePointersMade      *int `json:"three_pointers_made,omitempty"`
	FreeThrowsAttempted    *int `json:"free_throws_attempted,omitempty"`
	FreeThrowsMade         *int `json:"free_throws_made,omitempty"`
	OffensiveRebounds      *int `json:"offensive_rebounds,omitempty"`
	DefensiveRebounds      *int `json:"defensive_rebounds,omitempty"`

	// Gridiron
	PassingYards   *int `json:"passing_yards,omitempty"`
	PassingTDs     *int `json:"passing_tds,omitempty"`
	Interceptions  *int `json:"interceptions,omitempty"`
	RushingYards   *int `json:"rushing_yards,omitempty"`
	RushingTDs     *int `json:"rushing_tds,omitempty"`
	Receptions     *int `json:"receptions,omitempty"`
	ReceivingYards *int `json:"receiving_yards,omitempty"`
	ReceivingTDs   *int `json:"receiving_tds,omitempty"`
	Fumbles        *int `json:"fumbles,omitempty"`
}
