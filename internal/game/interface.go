package game

import (
	"errors"

	"github.com/lox/blackjack/internal/deck"
)

// ErrQuit is returned by an InputProvider when the player leaves the table
// (end of input, closed window, dropped connection). Sessions treat it as a
// normal end of play.
var ErrQuit = errors.New("player quit")

// CardSource supplies cards to a round. *deck.Deck is the production
// implementation; tests substitute a stacked source.
type CardSource interface {
	// Reset restores a full shuffled deck
	Reset()
	// Draw removes and returns one card and never fails
	Draw() deck.Card
}

// InputProvider supplies the player's decisions. Implementations handle
// invalid raw input themselves and only return validated answers.
type InputProvider interface {
	// RequestYesNo blocks until the player answers the prompt
	RequestYesNo(prompt string) (bool, error)
}

// Display receives everything the player should see during a session
type Display interface {
	ShowHand(view HandView)
	ShowMessage(text string)
}

// Collaborator is both halves of the player-facing boundary
type Collaborator interface {
	InputProvider
	Display
}

var _ CardSource = (*deck.Deck)(nil)
