package statistics

import (
	"fmt"
	"math"
	"strings"

	"github.com/lox/blackjack/internal/game"
)

// Tally tracks round outcomes for a session or a simulation run
type Tally struct {
	Counts      map[game.Outcome]int
	DealerBusts int // Rounds the dealer drew past 21

	rounds int
	sum    float64 // Sum of per-round results (+1 win, 0 push, -1 loss)
	sum2   float64 // Sum of squares for variance calculation
}

// NewTally returns an empty tally
func NewTally() *Tally {
	return &Tally{Counts: make(map[game.Outcome]int, len(game.Outcomes))}
}

// Add records one resolved outcome. Unresolved rounds are ignored.
func (t *Tally) Add(o game.Outcome) {
	if o == game.NoOutcome {
		return
	}
	if t.Counts == nil {
		t.Counts = make(map[game.Outcome]int, len(game.Outcomes))
	}

	t.Counts[o]++
	t.rounds++

	v := result(o)
	t.sum += v
	t.sum2 += v * v
}

// AddRecord records a finished round, including whether the dealer busted
func (t *Tally) AddRecord(rec game.RoundRecord) {
	t.Add(rec.Outcome)
	if rec.Outcome != game.NoOutcome && rec.DealerTotal > game.BlackjackTotal {
		t.DealerBusts++
	}
}

// Merge folds another tally into this one
func (t *Tally) Merge(other *Tally) {
	if other == nil {
		return
	}
	if t.Counts == nil {
		t.Counts = make(map[game.Outcome]int, len(game.Outcomes))
	}
	for o, n := range other.Counts {
		t.Counts[o] += n
	}
	t.DealerBusts += other.DealerBusts
	t.rounds += other.rounds
	t.sum += other.sum
	t.sum2 += other.sum2
}

func result(o game.Outcome) float64 {
	switch {
	case o.IsPlayerWin():
		return 1
	case o.IsPlayerLoss():
		return -1
	default:
		return 0
	}
}

// Rounds returns the number of resolved rounds
func (t *Tally) Rounds() int {
	return t.rounds
}

// Wins counts rounds the player won, naturals included
func (t *Tally) Wins() int {
	return t.Counts[game.PlayerWin] + t.Counts[game.PlayerBlackjack]
}

// Losses counts rounds the player lost, busts included
func (t *Tally) Losses() int {
	return t.Counts[game.DealerWin] + t.Counts[game.DealerBlackjack] + t.Counts[game.PlayerBust]
}

// Pushes counts tied rounds
func (t *Tally) Pushes() int {
	return t.Counts[game.Push]
}

// WinRate returns the fraction of rounds won
func (t *Tally) WinRate() float64 {
	if t.rounds == 0 {
		return 0
	}
	return float64(t.Wins()) / float64(t.rounds)
}

// Mean returns the average per-round result in [-1, 1]
func (t *Tally) Mean() float64 {
	if t.rounds == 0 {
		return 0
	}
	return t.sum / float64(t.rounds)
}

// Variance returns the sample variance of per-round results
func (t *Tally) Variance() float64 {
	if t.rounds < 2 {
		return 0
	}
	mean := t.Mean()
	return (t.sum2 - float64(t.rounds)*mean*mean) / float64(t.rounds-1)
}

// StdError returns the standard error of the mean
func (t *Tally) StdError() float64 {
	if t.rounds == 0 {
		return 0
	}
	return math.Sqrt(t.Variance()) / math.Sqrt(float64(t.rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (t *Tally) ConfidenceInterval95() (float64, float64) {
	mean := t.Mean()
	margin := 1.96 * t.StdError()
	return mean - margin, mean + margin
}

// Validate checks the tally is internally consistent
func (t *Tally) Validate() error {
	total := 0
	for o, n := range t.Counts {
		if o == game.NoOutcome {
			return fmt.Errorf("unresolved outcome recorded %d times", n)
		}
		if n < 0 {
			return fmt.Errorf("negative count for %s: %d", o, n)
		}
		total += n
	}
	if total != t.rounds {
		return fmt.Errorf("outcome counts sum to %d, expected %d rounds", total, t.rounds)
	}
	if t.Wins()+t.Losses()+t.Pushes() != t.rounds {
		return fmt.Errorf("wins+losses+pushes = %d, expected %d", t.Wins()+t.Losses()+t.Pushes(), t.rounds)
	}
	return nil
}

// Record returns the short W-L-P form, e.g. "3-2-1"
func (t *Tally) Record() string {
	return fmt.Sprintf("%d-%d-%d", t.Wins(), t.Losses(), t.Pushes())
}

// Summary returns a multi-line report
func (t *Tally) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Rounds: %d (W-L-P %s)\n", t.rounds, t.Record())
	if t.rounds == 0 {
		return sb.String()
	}

	for _, o := range game.Outcomes {
		n := t.Counts[o]
		fmt.Fprintf(&sb, "  %-16s %8d  %6.2f%%\n", o, n, 100*float64(n)/float64(t.rounds))
	}

	low, high := t.ConfidenceInterval95()
	fmt.Fprintf(&sb, "Win rate: %.2f%%\n", 100*t.WinRate())
	fmt.Fprintf(&sb, "Mean result: %+.4f per round (95%% CI %+.4f to %+.4f)\n", t.Mean(), low, high)
	fmt.Fprintf(&sb, "Dealer busts: %d\n", t.DealerBusts)
	return sb.String()
}
