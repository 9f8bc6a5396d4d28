package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/console"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/remote"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/tui"
)

var (
	titleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1).
		Bold(true)
)

// PlayCmd plays an interactive game on this terminal
type PlayCmd struct {
	TUI     bool   `help:"Use the full-screen table UI"`
	NoColor bool   `help:"Disable coloured output"`
	Player  string `help:"Player name (overrides config)"`
	Dealer  string `help:"Dealer name (overrides config)"`
	Connect string `help:"Play on a remote server instead, e.g. ws://localhost:8080/play"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.TUI {
		cfg.UI.Mode = config.ModeTUI
	}
	if c.NoColor {
		off := false
		cfg.UI.Color = &off
	}
	if c.Player != "" {
		cfg.Table.PlayerName = c.Player
	}
	if c.Dealer != "" {
		cfg.Table.DealerName = c.Dealer
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Logs go to a file so they never interleave with the table
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()

	logger := newLogger(logFile, cfg).WithPrefix("main")
	logger.Info("Starting interactive game", "mode", cfg.UI.Mode, "player", cfg.Table.PlayerName, "dealer", cfg.Table.DealerName)

	if c.Connect != "" {
		return c.playRemote(cfg, logger)
	}

	tally := statistics.NewTally()
	switch cfg.UI.Mode {
	case config.ModeTUI:
		err = tui.Play(logger, func(collab game.Collaborator) error {
			return newSession(cfg, collab, collab, logger, tally).Run()
		})
	default:
		cons := console.New(os.Stdin, os.Stdout, console.WithColor(cfg.ColorEnabled()), console.WithLogger(logger))
		printTitle(os.Stdout, cfg.ColorEnabled())
		err = newSession(cfg, cons, cons, logger, tally).Run()
	}
	if err != nil {
		return err
	}

	if tally.Rounds() > 0 {
		fmt.Println()
		fmt.Println(tally.Summary())
	}
	return nil
}

func (c *PlayCmd) playRemote(cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	client, err := remote.Dial(ctx, c.Connect, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	cons := console.New(os.Stdin, os.Stdout, console.WithColor(cfg.ColorEnabled()), console.WithLogger(logger))
	printTitle(os.Stdout, cfg.ColorEnabled())

	err = client.Play(ctx, cons, cons)
	if errors.Is(err, game.ErrQuit) {
		return nil
	}
	return err
}

// newSession wires a shuffled deck and the running tally into a session.
// The observer runs on the game goroutine.
func newSession(cfg *config.Config, input game.InputProvider, display game.Display, logger *log.Logger, tally *statistics.Tally) *game.Session {
	d := deck.NewDeck(randutil.FromSeed(cfg.Table.Seed))
	d.OnReshuffle = func() {
		logger.Warn("Warning: Deck is empty! Reshuffling...")
	}

	return game.NewSession(d, input, display, logger,
		game.WithNames(cfg.Table.PlayerName, cfg.Table.DealerName),
		game.WithRoundObserver(func(rec game.RoundRecord) {
			tally.AddRecord(rec)
			display.ShowMessage("Session: " + tally.Record())
		}),
	)
}

func printTitle(w io.Writer, color bool) {
	title := " ♠ ♥ Blackjack ♦ ♣ "
	if color {
		title = titleStyle.Render(title)
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w)
}
