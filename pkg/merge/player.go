package merge

import (
	"strconv"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
	"github.com/cypherlabdev/data-reconciler-service/internal/names"
)

// playerGroupKey picks the grouping key for a raw player: jersey number when
// present, else the normalized name, else the raw identifier as a last
// resort. Player identity maps are mostly empty, so name normalization does
// the heavy lifting here.
func (e *Engine) playerGroupKey(p *models.Player) string {
	if p.Jersey != nil {
		return "jersey:" + strconv.Itoa(*p.Jersey)
	}
	if p.Name != nil && *p.Name != "" {
		if key := names.NormalizeKey(*p.Name); key != "" {
			return "name:" + key
		}
	}
	return "id:" + e.players.Resolve(p.ID)
}

// mergeTeamPlayers groups players across a team's raw observations and merges
// each group field-by-field.
func (e *Engine) mergeTeamPlayers(raws []*models.Team) []models.Player {
	var order []string
	groups := make(map[string][]*models.Player)

	for _, t := range raws {
		for i := range t.Players {
			raw := &t.Players[i]
			key := e.playerGroupKey(raw)
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], raw)
		}
	}

	players := make([]models.Player, 0, len(order))
	for _, key := range order {
		players = append(players, mergePlayer(groups[key]))
	}
	return players
}

// mergePlayer resolves every statistic field independently across sources:
// one provider can supply kicks while another supplies marks for the same
// merged player. Fields are never taken wholesale from one winning source.
func mergePlayer(raws []*models.Player) models.Player {
	get := func(f func(*models.Player) *int) *int {
		return coalesce(raws, f)
	}

	return models.Player{
		ID:     coalesceString(raws, func(p *models.Player) string { return p.ID }),
		Jersey: get(func(p *models.Player) *int { return p.Jersey }),
		Name:   coalesce(raws, func(p *models.Player) *string { return p.Name }),

		Kicks:                  get(func(p *models.Player) *int { return p.Kicks }),
		Marks:                  get(func(p *models.Player) *int { return p.Marks }),
		Handballs:              get(func(p *models.Player) *int { return p.Handballs }),
		Disposals:              get(func(p *models.Player) *int { return p.Disposals }),
		Goals:                  get(func(p *models.Player) *int { return p.Goals }),
		Behinds:                get(func(p *models.Player) *int { return p.Behinds }),
		HitOuts:                get(func(p *models.Player) *int { return p.HitOuts }),
		Tackles:                get(func(p *models.Player) *int { return p.Tackles }),
		Rebounds:               get(func(p *models.Player) *int { return p.Rebounds }),
		Insides50:              get(func(p *models.Player) *int { return p.Insides50 }),
		Clearances:             get(func(p *models.Player) *int { return p.Clearances }),
		Clangers:               get(func(p *models.Player) *int { return p.Clangers }),
		FreesFor:               get(func(p *models.Player) *int { return p.FreesFor }),
		FreesAgainst:           get(func(p *models.Player) *int { return p.FreesAgainst }),
		BrownlowVotes:          get(func(p *models.Player) *int { return p.BrownlowVotes }),
		ContestedPossessions:   get(func(p *models.Player) *int { return p.ContestedPossessions }),
		UncontestedPossessions: get(func(p *models.Player) *int { return p.UncontestedPossessions }),
		ContestedMarks:         get(func(p *models.Player) *int { return p.ContestedMarks }),
		MarksInside50:          get(func(p *models.Player) *int { return p.MarksInside50 }),
		OnePercenters:          get(func(p *models.Player) *int { return p.OnePercenters }),
		Bounces:                get(func(p *models.Player) *int { return p.Bounces }),
		GoalAssists:            get(func(p *models.Player) *int { return p.GoalAssists }),

		Points:                 get(func(p *models.Player) *int { return p.Points }),
		Assists:                get(func(p *models.Player) *int { return p.Assists }),
		Steals:                 get(func(p *models.Player) *int { return p.Steals }),
		Blocks:                 get(func(p *models.Player) *int { return p.Blocks }),
		Turnovers:              get(func(p *models.Player) *int { return p.Turnovers }),
		PersonalFouls:          get(func(p *models.Player) *int { return p.PersonalFouls }),
		MinutesPlayed:          get(func(p *models.Player) *int { return p.MinutesPlayed }),
		FieldGoalsAttempted:    get(func(p *models.Player) *int { return p.FieldGoalsAttempted }),
		FieldGoalsMade:         get(func(p *models.Player) *int { return p.FieldGoalsMade }),
		ThreePointersAttempted: get(func(p *models.Player) *int { return p.ThreePointersAttempted }),
		ThreePointersMade:      get(func(p *models.Player) *int { return p.ThreePointersMade }),
		FreeThrowsAttempted:    get(func(p *models.Player) *int { return p.FreeThrowsAttempted }),
		FreeThrowsMade:         get(func(p *models.Player) *int { return p.FreeThrowsMade }),
		OffensiveRebounds:      get(func(p *models.Player) *int { return p.OffensiveRebounds }),
		DefensiveRebounds:      get(func(p *models.Player) *int { return p.DefensiveRebounds }),

		PassingYards:   get(func(p *models.Player) *int { return p.PassingYards }),
		PassingTDs:     get(func(p *models.Player) *int { return p.PassingTDs }),
		Interceptions:  get(func(p *models.Player) *int { return p.Interceptions }),
		RushingYards:   get(func(p *models.Player) *int { return p.RushingYards }),
		RushingTDs:     get(func(p *models.Player) *int { return p.RushingTDs }),
		Receptions:     get(func(p *models.Player) *int { return p.Receptions }),
		ReceivingYards: get(func(p *models.Player) *int { return p.ReceivingYards }),
		ReceivingTDs:   get(func(p *models.Player) *int { return p.ReceivingTDs }),
		Fumbles:        get(func(p *models.Player) *int { return p.Fumbles }),
	}
}
