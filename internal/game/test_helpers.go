package game

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
)

// StackedDeck is a CardSource that deals a fixed sequence of cards in the
// given order. Reset is counted but does not reshuffle, so a scenario can be
// stacked across the round's reset.
type StackedDeck struct {
	cards  []deck.Card
	Resets int
}

// NewStackedDeck stacks cards so that cards[0] is dealt first. Round deals
// player, dealer, player, dealer, then hits in order.
func NewStackedDeck(cards ...deck.Card) *StackedDeck {
	return &StackedDeck{cards: append([]deck.Card(nil), cards...)}
}

// StackRound builds a StackedDeck from card notation: the player's two cards,
// the dealer's two cards (hole card first), then any further draws.
func StackRound(player, dealer, draws string) *StackedDeck {
	p := deck.MustParseCards(player)
	d := deck.MustParseCards(dealer)
	if len(p) != 2 || len(d) != 2 {
		panic("StackRound needs exactly two cards per hand")
	}
	cards := []deck.Card{p[0], d[0], p[1], d[1]}
	return NewStackedDeck(append(cards, deck.MustParseCards(draws)...)...)
}

// Reset implements CardSource
func (s *StackedDeck) Reset() {
	s.Resets++
}

// Draw implements CardSource
func (s *StackedDeck) Draw() deck.Card {
	if len(s.cards) == 0 {
		panic("stacked deck exhausted")
	}
	card := s.cards[0]
	s.cards = s.cards[1:]
	return card
}

// Remaining returns how many stacked cards are left
func (s *StackedDeck) Remaining() int {
	return len(s.cards)
}

// ScriptedInput answers prompts from a fixed list and returns ErrQuit once
// the script runs out.
type ScriptedInput struct {
	mu      sync.Mutex
	answers []bool
	Prompts []string
}

// NewScriptedInput creates an input provider that replies with answers in order
func NewScriptedInput(answers ...bool) *ScriptedInput {
	return &ScriptedInput{answers: answers}
}

// RequestYesNo implements InputProvider
func (s *ScriptedInput) RequestYesNo(prompt string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	if len(s.answers) == 0 {
		return false, ErrQuit
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// RecordingDisplay keeps everything shown to the player
type RecordingDisplay struct {
	mu       sync.Mutex
	Hands    []HandView
	Messages []string
}

// ShowHand implements Display
func (d *RecordingDisplay) ShowHand(view HandView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Hands = append(d.Hands, view)
}

// ShowMessage implements Display
func (d *RecordingDisplay) ShowMessage(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Messages = append(d.Messages, text)
}

// LastMessage returns the most recent message, or "" if none
func (d *RecordingDisplay) LastMessage() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Messages) == 0 {
		return ""
	}
	return d.Messages[len(d.Messages)-1]
}

// HandsFor returns the views shown for the named owner
func (d *RecordingDisplay) HandsFor(owner string) []HandView {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []HandView
	for _, v := range d.Hands {
		if v.Owner == owner {
			out = append(out, v)
		}
	}
	return out
}

// NopDisplay discards everything
type NopDisplay struct{}

func (NopDisplay) ShowHand(HandView)  {}
func (NopDisplay) ShowMessage(string) {}

// QuietLogger returns a logger that only reports errors, to io.Discard
func QuietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}
