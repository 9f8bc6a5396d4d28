package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/blackjack/internal/deck"
)

func handOf(name, cards string) *Hand {
	h := NewHand(name)
	for _, c := range deck.MustParseCards(cards) {
		h.AddCard(c)
	}
	return h
}

func TestHandTotal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cards   string
		total   int
		soft    bool
		bust    bool
		natural bool
	}{
		{name: "empty hand", cards: "", total: 0},
		{name: "ace king", cards: "AsKh", total: 21, soft: true, natural: true},
		{name: "ace ten", cards: "AdTc", total: 21, soft: true, natural: true},
		{name: "two aces", cards: "AsAh", total: 12, soft: true},
		{name: "ace ace nine", cards: "AsAh9c", total: 21, soft: true},
		{name: "three aces and eight", cards: "AsAhAd8c", total: 21, soft: true},
		{name: "soft seventeen", cards: "As6h", total: 17, soft: true},
		{name: "ace rescues bust", cards: "As5h8c", total: 14},
		{name: "face cards", cards: "KsQh", total: 20},
		{name: "three card twenty one", cards: "KsQhAc", total: 21},
		{name: "ten nine five", cards: "Ts9h5c", total: 24, bust: true},
		{name: "four aces still bust", cards: "AsAhAdAcKsQh", total: 24, bust: true},
		{name: "hard twelve", cards: "Ts2h", total: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handOf("Player", tt.cards)
			assert.Equal(t, tt.total, h.Total())
			assert.Equal(t, tt.soft, h.IsSoft(), "soft")
			assert.Equal(t, tt.bust, h.IsBust(), "bust")
			assert.Equal(t, tt.natural, h.IsNaturalBlackjack(), "natural")
		})
	}
}

func TestHandTotalIsRecomputed(t *testing.T) {
	t.Parallel()

	h := handOf("Player", "As6h")
	assert.Equal(t, 17, h.Total())
	assert.Equal(t, 17, h.Total(), "repeated calls without mutation agree")

	h.AddCard(deck.NewCard(deck.Nine, deck.Clubs))
	assert.Equal(t, 16, h.Total())
	assert.False(t, h.IsSoft())

	h.Clear()
	assert.Equal(t, 0, h.Total())
	assert.Equal(t, 0, h.Len())
}

func TestNaturalRequiresTwoCards(t *testing.T) {
	t.Parallel()

	h := handOf("Player", "As")
	assert.False(t, h.IsNaturalBlackjack())

	h.AddCard(deck.NewCard(deck.King, deck.Hearts))
	assert.True(t, h.IsNaturalBlackjack())

	// A third card can never make a natural, whatever the total
	h = handOf("Player", "7s7h7d")
	assert.Equal(t, 21, h.Total())
	assert.False(t, h.IsNaturalBlackjack())
}

func TestHandRender(t *testing.T) {
	t.Parallel()

	h := handOf("Dealer", "Qc7d")

	assert.Equal(t, "Dealer's hand: [Hidden card], 7 of Diamonds", h.Render(true))
	assert.Equal(t, "Dealer's hand: Queen of Clubs, 7 of Diamonds - Value: 17", h.Render(false))
	assert.Equal(t, h.Render(false), h.String())

	// Rendering does not mutate
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 17, h.Total())

	assert.Equal(t, "Player's hand: empty", NewHand("Player").Render(false))
}

func TestHandView(t *testing.T) {
	t.Parallel()

	h := handOf("Dealer", "AsKh")

	hidden := h.View(true)
	assert.True(t, hidden.HideFirst)
	assert.False(t, hidden.TotalKnown)
	assert.Zero(t, hidden.Total)
	assert.Len(t, hidden.Cards, 2)

	shown := h.View(false)
	assert.False(t, shown.HideFirst)
	assert.True(t, shown.TotalKnown)
	assert.Equal(t, 21, shown.Total)

	// The view holds a copy of the cards
	shown.Cards[0] = deck.NewCard(deck.Two, deck.Clubs)
	assert.Equal(t, deck.NewCard(deck.Ace, deck.Spades), h.Cards()[0])
}
