package statistics

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
)

func TestTallyCounts(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	for _, o := range []game.Outcome{
		game.PlayerWin, game.PlayerBlackjack, game.PlayerWin,
		game.DealerWin, game.PlayerBust, game.DealerBlackjack,
		game.Push, game.NoOutcome,
	} {
		tally.Add(o)
	}

	assert.Equal(t, 7, tally.Rounds(), "unresolved rounds are ignored")
	assert.Equal(t, 3, tally.Wins())
	assert.Equal(t, 3, tally.Losses())
	assert.Equal(t, 1, tally.Pushes())
	assert.Equal(t, "3-3-1", tally.Record())
	assert.InDelta(t, 3.0/7.0, tally.WinRate(), 1e-9)
	assert.InDelta(t, 0, tally.Mean(), 1e-9)
	require.NoError(t, tally.Validate())
}

func TestTallyEmpty(t *testing.T) {
	t.Parallel()

	var tally Tally
	assert.Zero(t, tally.Rounds())
	assert.Zero(t, tally.WinRate())
	assert.Zero(t, tally.Mean())
	assert.Zero(t, tally.StdError())
	assert.NoError(t, tally.Validate())
	assert.Contains(t, tally.Summary(), "Rounds: 0")

	// The zero value is usable
	tally.Add(game.Push)
	assert.Equal(t, 1, tally.Pushes())
}

func TestTallyMerge(t *testing.T) {
	t.Parallel()

	a, b := NewTally(), NewTally()
	a.Add(game.PlayerWin)
	a.AddRecord(game.RoundRecord{Outcome: game.PlayerWin, DealerTotal: 24})
	b.Add(game.DealerWin)
	b.Add(game.Push)

	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, 4, a.Rounds())
	assert.Equal(t, 2, a.Wins())
	assert.Equal(t, 1, a.Losses())
	assert.Equal(t, 1, a.Pushes())
	assert.Equal(t, 1, a.DealerBusts)
	require.NoError(t, a.Validate())
}

func TestTallyConfidenceInterval(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	for range 50 {
		tally.Add(game.PlayerWin)
		tally.Add(game.DealerWin)
	}

	low, high := tally.ConfidenceInterval95()
	assert.InDelta(t, 0, tally.Mean(), 1e-9)
	assert.Less(t, low, 0.0)
	assert.Greater(t, high, 0.0)
	assert.InDelta(t, -high, low, 1e-9, "interval is symmetric around the mean")

	// Variance of alternating +1/-1 is n/(n-1)
	assert.InDelta(t, 100.0/99.0, tally.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(100.0/99.0)/10, tally.StdError(), 1e-9)
}

func TestTallyValidateDetectsMismatch(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	tally.Add(game.PlayerWin)
	tally.Counts[game.DealerWin] = 3

	assert.Error(t, tally.Validate())
}

func TestSummaryListsEveryOutcome(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	tally.Add(game.PlayerBlackjack)
	summary := tally.Summary()

	for _, o := range game.Outcomes {
		assert.Contains(t, summary, o.String())
	}
	assert.Contains(t, summary, "Win rate: 100.00%")
}

func TestReportRoundTrip(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	for _, o := range []game.Outcome{game.PlayerWin, game.PlayerWin, game.DealerWin, game.Push, game.PlayerBust} {
		tally.Add(o)
	}
	tally.DealerBusts = 1

	report := tally.Report()
	report.Seed = 42
	report.StandOn = 17

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, report.WriteFile(path))

	loaded, err := ReadReport(path)
	require.NoError(t, err)
	assert.Equal(t, report, loaded)

	assert.Equal(t, 5, loaded.Rounds)
	assert.Equal(t, 2, loaded.Wins)
	assert.Equal(t, 2, loaded.Losses)
	assert.Equal(t, 1, loaded.Pushes)
	assert.Equal(t, 2, loaded.Outcomes["PLAYER_WIN"])
	assert.Less(t, loaded.CI95[0], loaded.Mean)
	assert.Greater(t, loaded.CI95[1], loaded.Mean)
}
