package main

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/remote"
)

// ServeCmd hosts sessions for remote players
type ServeCmd struct {
	Addr string `help:"Listen address, e.g. :8080 (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger := newLogger(os.Stderr, cfg)
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	// With a seed each connection gets its own reproducible stream
	seed := cfg.Table.Seed
	var connections atomic.Int64
	newSource := func() game.CardSource {
		n := int(connections.Add(1)) - 1
		rng := randutil.NewRandom()
		if seed != 0 {
			rng = randutil.New(randutil.Derive(seed, n))
		}
		d := deck.NewDeck(rng)
		d.OnReshuffle = func() {
			logger.Warn("Warning: Deck is empty! Reshuffling...", "connection", n)
		}
		return d
	}

	srv := remote.NewServer(addr, logger,
		remote.WithSourceFactory(newSource),
		remote.WithSessionOptions(game.WithNames(cfg.Table.PlayerName, cfg.Table.DealerName)),
	)
	return srv.Run(ctx)
}
