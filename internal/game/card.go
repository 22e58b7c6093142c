// internal/game/card.go
package game

import "fmt"

// Suit is one of the four card suits.
type Suit int

const (
	Spade Suit = iota
	Diamond
	Heart
	Club
)

var suitSymbols = [...]string{"♠", "◆", "♥", "♣"}

func (s Suit) String() string {
	return suitSymbols[s]
}

// Rank is a card rank from 2 (deuce) to 14 (ace). Ace is always high.
type Rank int

const (
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

func (r Rank) String() string {
	switch r {
	case 10:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return fmt.Sprintf("%d", int(r))
	}
}

// Card is an immutable suit+rank value. Its string form ("♠A", "♥T")
// is what goes over the wire in game_state payloads.
type Card struct {
	Suit Suit
	Rank Rank
}

func (c Card) String() string {
	return c.Suit.String() + c.Rank.String()
}

// HiddenCard is sent in place of a hole card the recipient may not see.
const HiddenCard = "??"
