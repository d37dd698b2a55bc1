package models

// League identifies a sport/competition. Values are stable and used in cache
// keys and identity-map asset names, so they never change once assigned.
type League string

const (
	LeagueNFL  League = "nfl"
	LeagueAFL  League = "afl"
	LeagueNBA  League = "nba"
	LeagueNHL  League = "nhl"
	LeagueMLB  League = "mlb"
	LeagueEPL  League = "epl"
	LeagueHKJC League = "hkjc"
)

// Leagues lists every supported league.
var Leagues = []League{
	LeagueNFL,
	LeagueAFL,
	LeagueNBA,
	LeagueNHL,
	LeagueMLB,
	LeagueEPL,
	LeagueHKJC,
}

// Valid reports whether l is a known league.
func (l League) Valid() bool {
	for _, known := range Leagues {
		if l == known {
			return true
		}
	}
	return false
}

// SeasonType classifies the phase of a season a game belongs to.
type SeasonType string

const (
	SeasonRegular    SeasonType = "regular"
	SeasonPreseason  SeasonType = "preseason"
	SeasonPostseason SeasonType = "postseason"
	SeasonOffseason  SeasonType = "offseason"
)
