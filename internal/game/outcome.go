package game

// Outcome is the result of a finished round from the player's side
type Outcome int

const (
	// NoOutcome is the zero value for a round that has not resolved
	NoOutcome Outcome = iota
	Push
	PlayerBlackjack
	DealerBlackjack
	PlayerBust
	PlayerWin
	DealerWin
)

// Outcomes lists every resolved outcome
var Outcomes = [...]Outcome{Push, PlayerBlackjack, DealerBlackjack, PlayerBust, PlayerWin, DealerWin}

// String returns the outcome label
func (o Outcome) String() string {
	switch o {
	case Push:
		return "PUSH"
	case PlayerBlackjack:
		return "PLAYER_BLACKJACK"
	case DealerBlackjack:
		return "DEALER_BLACKJACK"
	case PlayerBust:
		return "PLAYER_BUST"
	case PlayerWin:
		return "PLAYER_WIN"
	case DealerWin:
		return "DEALER_WIN"
	default:
		return "NONE"
	}
}

// IsPlayerWin returns true for outcomes the player wins
func (o Outcome) IsPlayerWin() bool {
	return o == PlayerWin || o == PlayerBlackjack
}

// IsPlayerLoss returns true for outcomes the player loses
func (o Outcome) IsPlayerLoss() bool {
	return o == DealerWin || o == DealerBlackjack || o == PlayerBust
}

// Payout is the cosmetic payout label for an outcome. No bets are tracked;
// "3:2" only decorates a natural blackjack.
func (o Outcome) Payout() string {
	switch o {
	case PlayerBlackjack:
		return "3:2"
	case PlayerWin:
		return "1:1"
	case Push:
		return "push"
	default:
		return "lose"
	}
}

// State is a phase of the round state machine
type State int

const (
	Dealing State = iota
	CheckingNaturals
	PlayerTurn
	DealerTurn
	Resolved
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Dealing:
		return "Dealing"
	case CheckingNaturals:
		return "CheckingNaturals"
	case PlayerTurn:
		return "PlayerTurn"
	case DealerTurn:
		return "DealerTurn"
	case Resolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}
