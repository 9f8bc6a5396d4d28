package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

const (
	// BlackjackTotal is the best possible hand total
	BlackjackTotal = 21

	// aceDowngrade is the difference between an Ace counted as 11 and as 1
	aceDowngrade = 10
)

// Hand is the ordered set of cards held by one party in a round
type Hand struct {
	Name  string
	cards []deck.Card
}

// NewHand creates an empty hand for the named owner
func NewHand(name string) *Hand {
	return &Hand{Name: name, cards: make([]deck.Card, 0, 8)}
}

// Clear empties the hand for a new round
func (h *Hand) Clear() {
	h.cards = h.cards[:0]
}

// AddCard appends a card to the hand
func (h *Hand) AddCard(card deck.Card) {
	h.cards = append(h.cards, card)
}

// Cards returns a copy of the cards in the order they were dealt
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.cards)
}

// Total returns the best blackjack total for the hand: the highest total not
// over 21 reachable by counting some Aces as 1, or the lowest bust total when
// none exists. Computed fresh on every call.
func (h *Hand) Total() int {
	total, _ := h.score()
	return total
}

// IsSoft reports whether at least one Ace is still counted as 11
func (h *Hand) IsSoft() bool {
	_, softAces := h.score()
	return softAces > 0
}

// score returns the total and how many Aces are still counted as 11.
// Each downgrade lowers the total by exactly 10, so downgrading greedily
// until the hand is at most 21 gives the maximum non-bust total.
func (h *Hand) score() (total, softAces int) {
	for _, card := range h.cards {
		total += card.PointValue()
		if card.IsAce() {
			softAces++
		}
	}

	for total > BlackjackTotal && softAces > 0 {
		total -= aceDowngrade
		softAces--
	}

	return total, softAces
}

// IsBust returns true if the hand total exceeds 21
func (h *Hand) IsBust() bool {
	return h.Total() > BlackjackTotal
}

// IsNaturalBlackjack returns true for a two-card 21. Only meaningful right
// after the initial deal; never true once a third card is added.
func (h *Hand) IsNaturalBlackjack() bool {
	return len(h.cards) == 2 && h.Total() == BlackjackTotal
}

// View returns the display form of the hand. With hideFirst the first card
// dealt stays face down and the total is withheld.
func (h *Hand) View(hideFirst bool) HandView {
	v := HandView{
		Owner:     h.Name,
		Cards:     h.Cards(),
		HideFirst: hideFirst && len(h.cards) > 0,
	}
	if !v.HideFirst {
		v.Total = h.Total()
		v.TotalKnown = true
	}
	return v
}

// Render returns a one-line text form of the hand, e.g.
// "Dealer's hand: [Hidden card] 7 of Clubs".
func (h *Hand) Render(hideFirst bool) string {
	return h.View(hideFirst).String()
}

// String returns the fully revealed hand
func (h *Hand) String() string {
	return h.Render(false)
}

// HandView is a snapshot of a hand as it should be shown to the player
type HandView struct {
	Owner      string
	Cards      []deck.Card
	HideFirst  bool
	Total      int
	TotalKnown bool
}

// HiddenCard is the placeholder shown for a face-down card
const HiddenCard = "[Hidden card]"

// String formats the view the way the console shows it
func (v HandView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s's hand: ", v.Owner)

	if len(v.Cards) == 0 {
		sb.WriteString("empty")
		return sb.String()
	}

	parts := make([]string, 0, len(v.Cards))
	for i, card := range v.Cards {
		if i == 0 && v.HideFirst {
			parts = append(parts, HiddenCard)
			continue
		}
		parts = append(parts, card.Describe())
	}
	sb.WriteString(strings.Join(parts, ", "))

	if v.TotalKnown {
		fmt.Fprintf(&sb, " - Value: %d", v.Total)
	}
	return sb.String()
}
