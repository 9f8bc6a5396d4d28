package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestPlayIsDefaultCommand(t *testing.T) {
	cli, ctx := parse(t, "--tui", "--player", "Alice")
	assert.Equal(t, "play", ctx.Command())
	assert.True(t, cli.Play.TUI)
	assert.Equal(t, "Alice", cli.Play.Player)
}

func TestSimulateFlags(t *testing.T) {
	cli, ctx := parse(t, "--seed", "42", "simulate", "-n", "500", "-w", "2", "--stand-on", "16")
	assert.Equal(t, "simulate", ctx.Command())
	require.NotNil(t, cli.Seed)
	assert.Equal(t, int64(42), *cli.Seed)
	assert.Equal(t, 500, cli.Simulate.Rounds)
	assert.Equal(t, 2, cli.Simulate.Workers)
	assert.Equal(t, 16, cli.Simulate.StandOn)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`table { seed = 5 }`), 0o644))

	seed := int64(99)
	g := &Globals{Config: path, Seed: &seed, Debug: true}
	cfg, err := g.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Table.Seed)
	assert.Equal(t, "debug", cfg.UI.LogLevel)

	g = &Globals{Config: path}
	cfg, err = g.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.Table.Seed)
}

func TestNewSessionTalliesRounds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Table.Seed = 1
	cfg.Table.DealerName = "House"

	// Answers land on whichever prompt comes next; the session ends when they run out
	input := game.NewScriptedInput(false, true, false, true, false, false)
	display := &game.RecordingDisplay{}
	tally := statistics.NewTally()

	s := newSession(cfg, input, display, game.QuietLogger(), tally)
	require.NoError(t, s.Run())

	rounds := len(s.Records())
	assert.Equal(t, rounds, tally.Rounds())
	assert.Equal(t, "House", s.DealerName())
	assert.Contains(t, display.Messages, "Session: "+tally.Record())
}
