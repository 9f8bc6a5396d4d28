package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/deck"
)

// Default party names
const (
	DefaultPlayerName = "Player"
	DefaultDealerName = "Dealer"
)

// Banner is shown once when a session starts
var Banner = []string{
	"====================================",
	"   Welcome to Blackjack!",
	"====================================",
	"Rules: Try to get as close to 21 as possible without going over.",
	"       Dealer must hit on 16 and stand on 17.",
	"       Aces can count as 1 or 11 points.",
	"====================================",
}

// Farewell is shown when the player leaves
const Farewell = "Thank you for playing Blackjack!"

// RoundRecord summarises a finished round
type RoundRecord struct {
	Number      int
	Outcome     Outcome
	PlayerCards []deck.Card
	DealerCards []deck.Card
	PlayerTotal int
	DealerTotal int
	StartedAt   time.Time
	Duration    time.Duration
}

// Session is the game loop: it plays rounds until the player declines to
// continue. A session is driven from a single goroutine.
type Session struct {
	source  CardSource
	input   InputProvider
	display Display
	logger  *log.Logger
	clock   quartz.Clock

	player *Hand
	dealer *Hand

	banner    bool
	records   []RoundRecord
	observers []func(RoundRecord)
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithClock sets the clock used to time rounds
func WithClock(clock quartz.Clock) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithNames sets the player and dealer names shown on hands
func WithNames(player, dealer string) SessionOption {
	return func(s *Session) {
		if player != "" {
			s.player.Name = player
		}
		if dealer != "" {
			s.dealer.Name = dealer
		}
	}
}

// WithRoundObserver registers a callback run after every resolved round
func WithRoundObserver(fn func(RoundRecord)) SessionOption {
	return func(s *Session) {
		s.observers = append(s.observers, fn)
	}
}

// WithoutBanner skips the welcome banner
func WithoutBanner() SessionOption {
	return func(s *Session) {
		s.banner = false
	}
}

// NewSession creates a session dealing from source and talking to the
// player through input and display.
func NewSession(source CardSource, input InputProvider, display Display, logger *log.Logger, opts ...SessionOption) *Session {
	s := &Session{
		source:  source,
		input:   input,
		display: display,
		logger:  logger.WithPrefix("session"),
		clock:   quartz.NewReal(),
		player:  NewHand(DefaultPlayerName),
		dealer:  NewHand(DefaultDealerName),
		banner:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run plays rounds until the player declines another or quits. ErrQuit from
// the InputProvider ends the session without error.
func (s *Session) Run() error {
	s.logger.Info("Session started", "player", s.player.Name, "dealer", s.dealer.Name)

	if s.banner {
		for _, line := range Banner {
			s.display.ShowMessage(line)
		}
	}

	err := s.loop()
	if errors.Is(err, ErrQuit) {
		s.logger.Info("Player quit", "rounds", len(s.records))
		err = nil
	}
	if err != nil {
		s.logger.Error("Session ended with error", "error", err)
		return err
	}

	s.display.ShowMessage(Farewell)
	s.logger.Info("Session finished", "rounds", len(s.records))
	return nil
}

func (s *Session) loop() error {
	for {
		if _, err := s.PlayRound(); err != nil {
			return err
		}

		again, err := s.input.RequestYesNo(PlayAgainPrompt)
		if err != nil {
			return fmt.Errorf("play again: %w", err)
		}
		if !again {
			return nil
		}
	}
}

// PlayRound plays a single round and records its result
func (s *Session) PlayRound() (RoundRecord, error) {
	started := s.clock.Now()
	round := NewRound(s.source, s.player, s.dealer, s.input, s.display, s.logger)

	outcome, err := round.Play()
	if err != nil {
		return RoundRecord{}, err
	}

	rec := RoundRecord{
		Number:      len(s.records) + 1,
		Outcome:     outcome,
		PlayerCards: s.player.Cards(),
		DealerCards: s.dealer.Cards(),
		PlayerTotal: s.player.Total(),
		DealerTotal: s.dealer.Total(),
		StartedAt:   started,
		Duration:    s.clock.Now().Sub(started),
	}
	s.records = append(s.records, rec)

	s.logger.Debug("Round recorded", "round", rec.Number, "outcome", rec.Outcome, "duration", rec.Duration)
	for _, fn := range s.observers {
		fn(rec)
	}
	return rec, nil
}

// Records returns the rounds played so far
func (s *Session) Records() []RoundRecord {
	out := make([]RoundRecord, len(s.records))
	copy(out, s.records)
	return out
}

// PlayerName returns the player's display name
func (s *Session) PlayerName() string {
	return s.player.Name
}

// DealerName returns the dealer's display name
func (s *Session) DealerName() string {
	return s.dealer.Name
}
