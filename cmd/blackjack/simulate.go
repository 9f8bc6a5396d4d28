package main

import (
	"fmt"
	"os"

	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays automated rounds with a fixed hit/stand policy
type SimulateCmd struct {
	Rounds  int    `short:"n" help:"Rounds to play (overrides config)"`
	Workers int    `short:"w" help:"Parallel workers (overrides config)"`
	StandOn int    `help:"The automated player stands on this total or more (overrides config)"`
	Output  string `short:"o" help:"Also write the results as JSON to this file" type:"path"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Rounds != 0 {
		cfg.Simulation.Rounds = c.Rounds
	}
	if c.Workers != 0 {
		cfg.Simulation.Workers = c.Workers
	}
	if c.StandOn != 0 {
		cfg.Simulation.StandOn = c.StandOn
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(os.Stderr, cfg)
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	sim := simulator.New(simulator.Config{
		Rounds:  cfg.Simulation.Rounds,
		Workers: cfg.Simulation.Workers,
		StandOn: cfg.Simulation.StandOn,
		Seed:    cfg.Table.Seed,
		Logger:  logger,
	})

	tally, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf(" Standing on %d ", cfg.Simulation.StandOn)))
	fmt.Println()
	fmt.Println(tally.Summary())
	fmt.Printf("Seed: %d\n", sim.Seed())

	if c.Output != "" {
		report := tally.Report()
		report.Seed = sim.Seed()
		report.Workers = cfg.Simulation.Workers
		report.StandOn = cfg.Simulation.StandOn
		if err := report.WriteFile(c.Output); err != nil {
			return err
		}
		logger.Info("Wrote report", "file", c.Output)
	}
	return nil
}
