package remote

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// MessageType identifies a message on the /play socket
type MessageType string

// Server → Client
const (
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeHand    MessageType = "hand"
	MessageTypeMessage MessageType = "message"
	MessageTypePrompt  MessageType = "prompt"
	MessageTypeDone    MessageType = "done"
)

// Client → Server
const (
	MessageTypeAnswer MessageType = "answer"
)

// HiddenCard stands in for the dealer's face-down card on the wire
const HiddenCard = "??"

// Message is the JSON envelope for every frame
type Message struct {
	Type    MessageType  `json:"type"`
	Session string       `json:"session,omitempty"`
	Hand    *HandPayload `json:"hand,omitempty"`
	Text    string       `json:"text,omitempty"`
	Yes     bool         `json:"yes,omitempty"`
}

// HandPayload is a hand as the client may see it. A hidden hole card is
// sent as HiddenCard so its value never leaves the server.
type HandPayload struct {
	Owner      string   `json:"owner"`
	Cards      []string `json:"cards"`
	HideFirst  bool     `json:"hide_first"`
	Total      int      `json:"total,omitempty"`
	TotalKnown bool     `json:"total_known"`
}

// NewHandPayload converts a hand view for the wire
func NewHandPayload(v game.HandView) *HandPayload {
	p := &HandPayload{
		Owner:      v.Owner,
		Cards:      make([]string, 0, len(v.Cards)),
		HideFirst:  v.HideFirst,
		TotalKnown: v.TotalKnown,
	}
	for i, card := range v.Cards {
		if i == 0 && v.HideFirst {
			p.Cards = append(p.Cards, HiddenCard)
			continue
		}
		p.Cards = append(p.Cards, card.Notation())
	}
	if v.TotalKnown {
		p.Total = v.Total
	}
	return p
}

// View converts the payload back into a hand view. The hidden card becomes
// a zero Card, which displays never render while HideFirst is set.
func (p *HandPayload) View() (game.HandView, error) {
	v := game.HandView{
		Owner:      p.Owner,
		Cards:      make([]deck.Card, 0, len(p.Cards)),
		HideFirst:  p.HideFirst,
		Total:      p.Total,
		TotalKnown: p.TotalKnown,
	}
	for i, s := range p.Cards {
		if s == HiddenCard {
			if i != 0 || !p.HideFirst {
				return game.HandView{}, fmt.Errorf("hidden card at position %d", i)
			}
			v.Cards = append(v.Cards, deck.Card{})
			continue
		}
		cards, err := deck.ParseCards(s)
		if err != nil {
			return game.HandView{}, fmt.Errorf("card %d: %w", i, err)
		}
		if len(cards) != 1 {
			return game.HandView{}, fmt.Errorf("card %d: expected one card, got %q", i, s)
		}
		v.Cards = append(v.Cards, cards[0])
	}
	return v, nil
}
