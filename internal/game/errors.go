// internal/game/errors.go
package game

import "errors"

var (
	// ErrNoCardsInDeck means a draw was attempted from an empty deck.
	ErrNoCardsInDeck = errors.New("no cards left in deck")
	// ErrBoardFull means a sixth community card was about to be dealt.
	ErrBoardFull = errors.New("board already holds five cards")
	// ErrPlayerFull rejects a join against a table at seat capacity.
	ErrPlayerFull = errors.New("table is full")
	// ErrPlayerNotFound rejects removal of an unseated player.
	ErrPlayerNotFound = errors.New("player not seated at this table")
	// ErrNotEnoughPlayers rejects a hand start with fewer than two seats.
	ErrNotEnoughPlayers = errors.New("need at least two players to start")
)
