package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// TestMergePlayer_FieldsResolvedIndependently tests that one provider can
// supply kicks while another supplies marks for the same merged player
func TestMergePlayer_FieldsResolvedIndependently(t *testing.T) {
	setup := setupTestEngine(t, models.LeagueAFL)

	p0 := rawGame(0, day(2023, time.June, 12), "Collingwood", "Carlton")
	p0.League = models.LeagueAFL
	p0.Teams[0].Players = []models.Player{
		{ID: "aflt-123", Jersey: intPtr(35), Kicks: intPtr(22)},
	}
	p1 := rawGame(1, day(2023, time.June, 12), "Collingwood", "Carlton")
	p1.League = models.LeagueAFL
	p1.Teams[0].Players = []models.Player{
		{ID: "espn-998", Jersey: intPtr(35), Marks: intPtr(9), Kicks: intPtr(21)},
	}

	merged, err := setup.engine.MergeGames([]*models.Game{p0, p1}, 0)

	require.NoError(t, err)
	require.Len(t, merged.HomeTeam().Players, 1)

	player := merged.HomeTeam().Players[0]
	require.NotNil(t, player.Kicks)
	assert.Equal(t, 22, *player.Kicks) // higher-priority provider wins the conflict
	require.NotNil(t, player.Marks)
	assert.Equal(t, 9, *player.Marks) // filled from the lower-priority provider
}

// TestMergePlayer_GroupedByNormalizedName tests the name fallback when no
// jersey number is reported
func TestMergePlayer_GroupedByNormalizedName(t *testing.T) {
	setup := setupTestEngine(t, models.LeagueAFL)

	p0 := rawGame(0, day(2023, time.June, 12), "Collingwood", "Carlton")
	p0.League = models.LeagueAFL
	p0.Teams[0].Players = []models.Player{
		{ID: "a-1", Name: strPtr("Daicos, Nick"), Disposals: intPtr(38)},
	}
	p1 := rawGame(1, day(2023, time.June, 12), "Collingwood", "Carlton")
	p1.League = models.LeagueAFL
	p1.Teams[0].Players = []models.Player{
		{ID: "b-7", Name: strPtr("Nick Daicos"), Goals: intPtr(2)},
	}

	merged, err := setup.engine.MergeGames([]*models.Game{p0, p1}, 0)

	require.NoError(t, err)
	require.Len(t, merged.HomeTeam().Players, 1)

	player := merged.HomeTeam().Players[0]
	assert.Equal(t, 38, *player.Disposals)
	assert.Equal(t, 2, *player.Goals)
}

// TestMergePlayer_RawIDLastResort tests that players without jersey or name
// stay separate unless their identifiers agree
func TestMergePlayer_RawIDLastResort(t *testing.T) {
	setup := setupTestEngine(t, models.LeagueAFL)

	p0 := rawGame(0, day(2023, time.June, 12), "Collingwood", "Carlton")
	p0.League = models.LeagueAFL
	p0.Teams[0].Players = []models.Player{
		{ID: "x-1", Tackles: intPtr(4)},
		{ID: "x-2", Tackles: intPtr(6)},
	}
	p1 := rawGame(1, day(2023, time.June, 12), "Collingwood", "Carlton")
	p1.League = models.LeagueAFL
	p1.Teams[0].Players = []models.Player{
		{ID: "x-1", HitOuts: intPtr(11)},
	}

	merged, err := setup.engine.MergeGames([]*models.Game{p0, p1}, 0)

	require.NoError(t, err)
	require.Len(t, merged.HomeTeam().Players, 2)

	first := merged.HomeTeam().Players[0]
	assert.Equal(t, 4, *first.Tackles)
	assert.Equal(t, 11, *first.HitOuts)
}

// TestMergedTeam_TotalKicksOverMergedPlayers tests that the derived aggregate
// is computed over the merged player set
func TestMergedTeam_TotalKicksOverMergedPlayers(t *testing.T) {
	setup := setupTestEngine(t, models.LeagueAFL)

	p0 := rawGame(0, day(2023, time.June, 12), "Collingwood", "Carlton")
	p0.League = models.LeagueAFL
	p0.Teams[0].Players = []models.Player{
		{ID: "a-1", Jersey: intPtr(35), Kicks: intPtr(22)},
		{ID: "a-2", Jersey: intPtr(4)},
	}
	p1 := rawGame(1, day(2023, time.June, 12), "Collingwood", "Carlton")
	p1.League = models.LeagueAFL
	p1.Teams[0].Players = []models.Player{
		{ID: "b-9", Jersey: intPtr(4), Kicks: intPtr(13)},
	}

	merged, err := setup.engine.MergeGames([]*models.Game{p0, p1}, 0)

	require.NoError(t, err)
	total := merged.HomeTeam().TotalKicks()
	require.NotNil(t, total)
	assert.Equal(t, 35, *total)
}
