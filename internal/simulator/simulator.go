package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
)

// How often workers check for cancellation
const cancelCheckInterval = 1024

// Config holds configuration for running simulations
type Config struct {
	Rounds  int
	Workers int
	StandOn int   // The automated player stands on this total or more
	Seed    int64 // 0 picks a random base seed
	Logger  *log.Logger
}

// Simulator plays many rounds with a fixed player policy
type Simulator struct {
	config Config
	seed   int64
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	return &Simulator{config: config}
}

// Run plays the configured number of rounds split across workers and
// returns the combined tally. Results are reproducible for a given seed and
// worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Tally, error) {
	cfg := s.config
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	workers := min(cfg.Workers, cfg.Rounds)

	logger := cfg.Logger.WithPrefix("simulator")
	seed := cfg.Seed
	for seed == 0 {
		seed = randutil.NewRandom().Int64()
	}
	s.seed = seed
	logger.Info("Starting simulation", "rounds", cfg.Rounds, "workers", workers, "stand_on", cfg.StandOn, "seed", seed)

	// Per-round logging would swamp the output
	roundLogger := cfg.Logger.WithPrefix("sim")
	roundLogger.SetLevel(max(cfg.Logger.GetLevel(), log.WarnLevel))

	start := time.Now()
	perWorker := cfg.Rounds / workers
	remainder := cfg.Rounds % workers

	// Indexed by worker so merging happens in a fixed order
	results := make([]*statistics.Tally, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		rounds := perWorker
		if w < remainder {
			rounds++
		}
		workerSeed := randutil.Derive(seed, w)

		g.Go(func() error {
			tally, err := runWorker(ctx, rounds, cfg.StandOn, workerSeed, roundLogger)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = tally
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := statistics.NewTally()
	for _, t := range results {
		total.Merge(t)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	logger.Info("Simulation complete", "rounds", total.Rounds(), "record", total.Record(), "elapsed", time.Since(start))
	return total, nil
}

// Seed returns the base seed of the last run, including one picked at random
func (s *Simulator) Seed() int64 {
	return s.seed
}

func runWorker(ctx context.Context, rounds, standOn int, seed int64, logger *log.Logger) (*statistics.Tally, error) {
	d := deck.NewDeck(randutil.New(seed))
	d.OnReshuffle = func() { logger.Warn("Warning: Deck is empty! Reshuffling...") }

	player := game.NewHand(game.DefaultPlayerName)
	dealer := game.NewHand(game.DefaultDealerName)
	auto := NewAutoPlayer(player, standOn)
	tally := statistics.NewTally()

	for i := range rounds {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		round := game.NewRound(d, player, dealer, auto, game.NopDisplay{}, logger)
		outcome, err := round.Play()
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		tally.AddRecord(game.RoundRecord{
			Number:      i + 1,
			Outcome:     outcome,
			PlayerTotal: player.Total(),
			DealerTotal: dealer.Total(),
		})
	}
	return tally, nil
}

// AutoPlayer answers prompts with a fixed policy: hit below StandOn, and
// always play another round.
type AutoPlayer struct {
	hand    *game.Hand
	StandOn int
}

// NewAutoPlayer creates a policy player reading totals from hand
func NewAutoPlayer(hand *game.Hand, standOn int) *AutoPlayer {
	return &AutoPlayer{hand: hand, StandOn: standOn}
}

// RequestYesNo implements game.InputProvider
func (a *AutoPlayer) RequestYesNo(prompt string) (bool, error) {
	if prompt == game.HitPrompt {
		return a.hand.Total() < a.StandOn, nil
	}
	return true, nil
}
