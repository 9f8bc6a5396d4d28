package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
)

type roundFixture struct {
	round   *Round
	source  *StackedDeck
	input   *ScriptedInput
	display *RecordingDisplay
}

func newRoundFixture(src *StackedDeck, answers ...bool) *roundFixture {
	f := &roundFixture{
		source:  src,
		input:   NewScriptedInput(answers...),
		display: &RecordingDisplay{},
	}
	f.round = NewRound(src, NewHand("Player"), NewHand("Dealer"), f.input, f.display, QuietLogger())
	return f
}

func TestRoundOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		player  string
		dealer  string
		draws   string
		answers []bool
		want    Outcome
		message string
	}{
		{
			name:    "player natural beats dealer",
			player:  "AsKh",
			dealer:  "9c7d",
			want:    PlayerBlackjack,
			message: "Blackjack! You win 3:2 on your bet!",
		},
		{
			name:    "both naturals push",
			player:  "AsKh",
			dealer:  "AcQd",
			want:    Push,
			message: "Both you and Dealer have Blackjack! It's a push (tie).",
		},
		{
			name:    "dealer natural",
			player:  "9s7h",
			dealer:  "AcKd",
			want:    DealerBlackjack,
			message: "Dealer has Blackjack! You lose.",
		},
		{
			name:    "dealer draws from twelve to nineteen",
			player:  "Th8c",
			dealer:  "Tc2d",
			draws:   "7s",
			answers: []bool{false},
			want:    DealerWin,
			message: "Dealer wins with 19 against your 18.",
		},
		{
			name:    "dealer busts",
			player:  "5h7c",
			dealer:  "Tc6d",
			draws:   "Ks",
			answers: []bool{false},
			want:    PlayerWin,
			message: "Dealer busts! You win!",
		},
		{
			name:    "player busts",
			player:  "Th6c",
			dealer:  "Tc7d",
			draws:   "Ks",
			answers: []bool{true},
			want:    PlayerBust,
			message: "Bust! You went over 21. You lose.",
		},
		{
			name:    "player higher total",
			player:  "Th9c",
			dealer:  "Tc7d",
			answers: []bool{false},
			want:    PlayerWin,
			message: "You win with 19 against Dealer's 17!",
		},
		{
			name:    "equal totals push",
			player:  "Th8c",
			dealer:  "Tc8d",
			answers: []bool{false},
			want:    Push,
			message: "It's a push (tie) with 18.",
		},
		{
			name:    "dealer stands on soft seventeen",
			player:  "Th7c",
			dealer:  "As6d",
			draws:   "5c",
			answers: []bool{false},
			want:    Push,
			message: "It's a push (tie) with 17.",
		},
		{
			name:    "player hits twice then stands",
			player:  "2h3c",
			dealer:  "Tc7d",
			draws:   "4s5s",
			answers: []bool{true, true, false},
			want:    DealerWin,
			message: "Dealer wins with 17 against your 14.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRoundFixture(StackRound(tt.player, tt.dealer, tt.draws), tt.answers...)

			outcome, err := f.round.Play()
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)
			assert.Equal(t, tt.want, f.round.Outcome())
			assert.Equal(t, Resolved, f.round.State())
			assert.Equal(t, tt.message, f.display.LastMessage())
			assert.Len(t, f.input.Prompts, len(tt.answers), "every scripted answer is consumed")
		})
	}
}

func TestNaturalsSkipPlayerTurn(t *testing.T) {
	t.Parallel()

	f := newRoundFixture(StackRound("AsKh", "9c7d", ""))
	_, err := f.round.Play()
	require.NoError(t, err)

	assert.Empty(t, f.input.Prompts)
	assert.Equal(t, []State{Dealing, CheckingNaturals, Resolved}, f.round.Visited())
	assert.False(t, f.round.DealerRevealed(), "player natural does not reveal the hole card")
}

func TestDealerNaturalRevealsHand(t *testing.T) {
	t.Parallel()

	f := newRoundFixture(StackRound("9s7h", "AcKd", ""))
	_, err := f.round.Play()
	require.NoError(t, err)

	assert.True(t, f.round.DealerRevealed())
	dealerViews := f.display.HandsFor("Dealer")
	require.Len(t, dealerViews, 2)
	assert.True(t, dealerViews[0].HideFirst)
	assert.False(t, dealerViews[1].HideFirst)
	assert.Equal(t, 21, dealerViews[1].Total)
}

func TestPlayerBustSkipsDealerTurn(t *testing.T) {
	t.Parallel()

	f := newRoundFixture(StackRound("Th6c", "Tc2d", "Ks5d"), true)
	outcome, err := f.round.Play()
	require.NoError(t, err)

	assert.Equal(t, PlayerBust, outcome)
	assert.NotContains(t, f.round.Visited(), DealerTurn)
	assert.False(t, f.round.DealerRevealed())
	assert.Equal(t, 2, f.round.Dealer().Len(), "dealer never draws")
	assert.Equal(t, 1, f.source.Remaining())

	for _, v := range f.display.HandsFor("Dealer") {
		assert.True(t, v.HideFirst, "dealer hand is never revealed")
	}
}

func TestPlayerAutoStandsOnTwentyOne(t *testing.T) {
	t.Parallel()

	// Only one answer: hitting to 21 must end the player's turn
	f := newRoundFixture(StackRound("5h6c", "Tc7d", "Ks"), true)
	outcome, err := f.round.Play()
	require.NoError(t, err)

	assert.Equal(t, PlayerWin, outcome)
	assert.Equal(t, []string{HitPrompt}, f.input.Prompts)
	assert.Contains(t, f.display.Messages, "You hit 21! Standing automatically.")
	assert.Equal(t, []State{Dealing, CheckingNaturals, PlayerTurn, DealerTurn, Resolved}, f.round.Visited())
}

func TestDealOrder(t *testing.T) {
	t.Parallel()

	cards := deck.MustParseCards("2c3d4h5s")
	src := NewStackedDeck(append(cards, deck.MustParseCards("Ts")...)...)
	f := newRoundFixture(src, false)

	_, err := f.round.Play()
	require.NoError(t, err)

	assert.Equal(t, 1, src.Resets, "the deck is reset once per round")
	assert.Equal(t, []deck.Card{cards[0], cards[2]}, f.round.Player().Cards())
	// dealer 3+5 = 8, draws the ten
	assert.Equal(t, []deck.Card{cards[1], cards[3], deck.MustParseCards("Ts")[0]}, f.round.Dealer().Cards())

	first := f.display.Hands[0]
	assert.Equal(t, "Dealer", first.Owner)
	assert.True(t, first.HideFirst, "the dealer's first dealt card is hidden")
	assert.Equal(t, "--- New Round ---", f.display.Messages[0])
}

func TestInputErrorAbortsRound(t *testing.T) {
	t.Parallel()

	f := newRoundFixture(StackRound("Th6c", "Tc7d", ""))
	outcome, err := f.round.Play()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuit))
	assert.Equal(t, NoOutcome, outcome)
}

func TestRoundWithShuffledDeckConservesCards(t *testing.T) {
	t.Parallel()

	d := deck.NewDeck(randutil.New(1234))
	player, dealer := NewHand("Player"), NewHand("Dealer")

	for range 200 {
		r := NewRound(d, player, dealer, NewScriptedInput(false), NopDisplay{}, QuietLogger())
		outcome, err := r.Play()
		require.NoError(t, err)
		require.NotEqual(t, NoOutcome, outcome)

		seen := make(map[deck.Card]bool)
		for _, c := range append(player.Cards(), dealer.Cards()...) {
			require.False(t, seen[c], "duplicate card %s", c)
			seen[c] = true
		}
		for _, c := range d.Cards() {
			require.False(t, seen[c], "card %s both in deck and in a hand", c)
		}
		assert.Equal(t, deck.Size, len(seen)+d.CardsRemaining())
		if !player.IsNaturalBlackjack() && !dealer.IsNaturalBlackjack() {
			assert.GreaterOrEqual(t, dealer.Total(), DealerStandsOn)
		}
	}
}

func TestOutcomePayout(t *testing.T) {
	t.Parallel()

	tests := map[Outcome]string{
		PlayerBlackjack: "3:2",
		PlayerWin:       "1:1",
		Push:            "push",
		DealerBlackjack: "lose",
		PlayerBust:      "lose",
		DealerWin:       "lose",
	}
	for _, o := range Outcomes {
		assert.Equal(t, tests[o], o.Payout(), o.String())
	}
}
