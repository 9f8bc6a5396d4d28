package statistics

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lox/blackjack/internal/fileutil"
)

// Report is the machine-readable form of a tally
type Report struct {
	Rounds      int            `json:"rounds"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"losses"`
	Pushes      int            `json:"pushes"`
	Outcomes    map[string]int `json:"outcomes"`
	DealerBusts int            `json:"dealer_busts"`
	WinRate     float64        `json:"win_rate"`
	Mean        float64        `json:"mean"`
	StdError    float64        `json:"std_error"`
	CI95        [2]float64     `json:"ci95"`

	// Set by the caller when the tally came from a simulation
	Seed    int64 `json:"seed,omitempty"`
	Workers int   `json:"workers,omitempty"`
	StandOn int   `json:"stand_on,omitempty"`
}

// Report snapshots the tally
func (t *Tally) Report() Report {
	r := Report{
		Rounds:      t.rounds,
		Wins:        t.Wins(),
		Losses:      t.Losses(),
		Pushes:      t.Pushes(),
		Outcomes:    make(map[string]int, len(t.Counts)),
		DealerBusts: t.DealerBusts,
		WinRate:     t.WinRate(),
		Mean:        t.Mean(),
		StdError:    t.StdError(),
	}
	for o, n := range t.Counts {
		r.Outcomes[o.String()] = n
	}
	r.CI95[0], r.CI95[1] = t.ConfidenceInterval95()
	return r
}

// WriteFile writes the report as indented JSON. Readers never see a
// partially written file.
func (r Report) WriteFile(filename string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return fileutil.WriteFileAtomic(filename, append(data, '\n'), 0o644)
}

// ReadReport loads a report written by WriteFile
func ReadReport(filename string) (Report, error) {
	var r Report
	data, err := os.ReadFile(filename)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse report %s: %w", filename, err)
	}
	return r, nil
}
