// Package game implements the blackjack rules engine: hands, the round
// state machine and the session loop that repeats rounds.
//
// # Basic Usage
//
// A Session deals from a CardSource and talks to the player through an
// InputProvider and a Display:
//
//	d := deck.NewDeck(randutil.NewRandom())
//	s := game.NewSession(d, input, display, logger)
//	if err := s.Run(); err != nil {
//	    // collaborator failure
//	}
//
// # Rounds
//
// Each Round moves through Dealing, CheckingNaturals, PlayerTurn,
// DealerTurn and Resolved. The player hits or stands through
// InputProvider.RequestYesNo; the dealer draws while under 17 and stands on
// every 17. A round never fails on its own: the deck refills itself when it
// runs out, and the only errors come from the InputProvider.
//
// # Deterministic Testing
//
// Rounds accept any CardSource, so tests can stack the cards:
//
//	src := game.StackRound("AsKh", "9c7d", "")
//	r := game.NewRound(src, game.NewHand("Player"), game.NewHand("Dealer"),
//	    game.NewScriptedInput(), &game.RecordingDisplay{}, game.QuietLogger())
//	outcome, _ := r.Play() // PlayerBlackjack
//
// For shuffled but reproducible decks use deck.NewDeck(randutil.New(seed)).
package game
