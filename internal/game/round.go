package game

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
)

// DealerStandsOn is the total at which the dealer stops drawing. The dealer
// stands on every 17, soft or hard.
const DealerStandsOn = 17

// Prompts sent to the InputProvider
const (
	HitPrompt       = "Do you want to hit?"
	PlayAgainPrompt = "Would you like to play again?"
)

// Round runs one round of blackjack from the deal to the outcome. It owns
// the two hands and the card source for its duration.
type Round struct {
	source  CardSource
	player  *Hand
	dealer  *Hand
	input   InputProvider
	display Display
	logger  *log.Logger

	state    State
	visited  []State
	outcome  Outcome
	naturals bool
	revealed bool
}

// NewRound creates a round over the given hands. The hands are cleared when
// the round deals.
func NewRound(source CardSource, player, dealer *Hand, input InputProvider, display Display, logger *log.Logger) *Round {
	return &Round{
		source:  source,
		player:  player,
		dealer:  dealer,
		input:   input,
		display: display,
		logger:  logger.WithPrefix("round"),
		state:   Dealing,
	}
}

// Play drives the state machine until the round resolves. The only errors
// come from the InputProvider.
func (r *Round) Play() (Outcome, error) {
	r.state = Dealing
	r.visited = r.visited[:0]
	r.outcome = NoOutcome
	r.naturals = false
	r.revealed = false

	for {
		r.visited = append(r.visited, r.state)
		if r.state == Resolved {
			break
		}

		next, err := r.step()
		if err != nil {
			return NoOutcome, err
		}
		r.logger.Debug("State transition", "from", r.state, "to", next)
		r.state = next
	}

	r.display.ShowMessage(r.outcomeMessage())
	r.logger.Info("Round resolved",
		"outcome", r.outcome,
		"player", r.player.Total(),
		"dealer", r.dealer.Total(),
	)
	return r.outcome, nil
}

func (r *Round) step() (State, error) {
	switch r.state {
	case Dealing:
		return r.deal(), nil
	case CheckingNaturals:
		return r.checkNaturals(), nil
	case PlayerTurn:
		return r.playerTurn()
	case DealerTurn:
		return r.dealerTurn(), nil
	default:
		return Resolved, fmt.Errorf("round cannot advance from state %s", r.state)
	}
}

// deal resets the shared deck and deals player, dealer, player, dealer.
// The dealer's first card is the hole card.
func (r *Round) deal() State {
	r.source.Reset()
	r.player.Clear()
	r.dealer.Clear()

	for range 2 {
		r.drawTo(r.player)
		r.drawTo(r.dealer)
	}

	r.display.ShowMessage("--- New Round ---")
	r.display.ShowHand(r.dealer.View(true))
	r.display.ShowHand(r.player.View(false))
	return CheckingNaturals
}

func (r *Round) checkNaturals() State {
	playerNatural := r.player.IsNaturalBlackjack()
	dealerNatural := r.dealer.IsNaturalBlackjack()

	switch {
	case playerNatural && dealerNatural:
		r.outcome = Push
	case playerNatural:
		r.outcome = PlayerBlackjack
	case dealerNatural:
		r.reveal()
		r.outcome = DealerBlackjack
	default:
		return PlayerTurn
	}

	r.naturals = true
	return Resolved
}

func (r *Round) playerTurn() (State, error) {
	for {
		hit, err := r.input.RequestYesNo(HitPrompt)
		if err != nil {
			return r.state, fmt.Errorf("hit or stand: %w", err)
		}

		if !hit {
			r.display.ShowMessage(fmt.Sprintf("You stand with %d", r.player.Total()))
			return DealerTurn, nil
		}

		card := r.drawTo(r.player)
		r.display.ShowMessage("You draw: " + card.Describe())
		r.display.ShowHand(r.player.View(false))

		if r.player.IsBust() {
			r.outcome = PlayerBust
			return Resolved, nil
		}
		if r.player.Total() == BlackjackTotal {
			r.display.ShowMessage("You hit 21! Standing automatically.")
			return DealerTurn, nil
		}
	}
}

func (r *Round) dealerTurn() State {
	r.display.ShowMessage(fmt.Sprintf("--- %s's turn ---", r.dealer.Name))
	r.reveal()

	for r.dealer.Total() < DealerStandsOn {
		card := r.drawTo(r.dealer)
		r.display.ShowMessage(fmt.Sprintf("%s draws: %s", r.dealer.Name, card.Describe()))
		r.display.ShowHand(r.dealer.View(false))
	}

	player, dealer := r.player.Total(), r.dealer.Total()
	switch {
	case r.dealer.IsBust():
		r.outcome = PlayerWin
	case player > dealer:
		r.outcome = PlayerWin
	case dealer > player:
		r.outcome = DealerWin
	default:
		r.outcome = Push
	}
	return Resolved
}

func (r *Round) reveal() {
	r.revealed = true
	r.display.ShowHand(r.dealer.View(false))
}

func (r *Round) drawTo(h *Hand) deck.Card {
	card := r.source.Draw()
	h.AddCard(card)
	r.logger.Debug("Card dealt", "to", h.Name, "card", card.String(), "total", h.Total())
	return card
}

func (r *Round) outcomeMessage() string {
	player, dealer := r.player.Total(), r.dealer.Total()
	name := r.dealer.Name

	switch r.outcome {
	case Push:
		if r.naturals {
			return fmt.Sprintf("Both you and %s have Blackjack! It's a push (tie).", name)
		}
		return fmt.Sprintf("It's a push (tie) with %d.", player)
	case PlayerBlackjack:
		return fmt.Sprintf("Blackjack! You win %s on your bet!", PlayerBlackjack.Payout())
	case DealerBlackjack:
		return fmt.Sprintf("%s has Blackjack! You lose.", name)
	case PlayerBust:
		return "Bust! You went over 21. You lose."
	case PlayerWin:
		if r.dealer.IsBust() {
			return fmt.Sprintf("%s busts! You win!", name)
		}
		return fmt.Sprintf("You win with %d against %s's %d!", player, name, dealer)
	case DealerWin:
		return fmt.Sprintf("%s wins with %d against your %d.", name, dealer, player)
	default:
		return ""
	}
}

// State returns the current state of the round
func (r *Round) State() State {
	return r.state
}

// Visited returns the states the last Play passed through, in order
func (r *Round) Visited() []State {
	out := make([]State, len(r.visited))
	copy(out, r.visited)
	return out
}

// Outcome returns the resolved outcome, or NoOutcome before resolution
func (r *Round) Outcome() Outcome {
	return r.outcome
}

// DealerRevealed reports whether the dealer's hole card was shown
func (r *Round) DealerRevealed() bool {
	return r.revealed
}

// Player returns the player's hand
func (r *Round) Player() *Hand {
	return r.player
}

// Dealer returns the dealer's hand
func (r *Round) Dealer() *Hand {
	return r.dealer
}
