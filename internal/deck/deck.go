package deck

import (
	rand "math/rand/v2"
)

// Size is the number of cards in a full deck
const Size = 52

// Deck represents a deck of playing cards. Cards are drawn from the end of
// the slice.
type Deck struct {
	cards []Card
	rng   *rand.Rand

	// OnReshuffle is called when Draw finds the deck empty and refills it.
	OnReshuffle func()
}

// NewDeck creates a full, shuffled 52-card deck using rng for shuffling
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	d.Reset()
	return d
}

// Reset restores the deck to a full 52-card deck and shuffles it
func (d *Deck) Reset() {
	d.cards = d.cards[:0] // Clear the slice but keep capacity

	for _, suit := range Suits {
		for rank := Ace; rank <= King; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}

	d.Shuffle()
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the last card. An empty deck is refilled and
// reshuffled first, so Draw always succeeds.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		if d.OnReshuffle != nil {
			d.OnReshuffle()
		}
		d.Reset()
	}

	last := len(d.cards) - 1
	card := d.cards[last]
	d.cards = d.cards[:last]
	return card
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards in draw order (last is next)
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
