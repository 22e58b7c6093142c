// internal/game/deck.go
package game

import "math/rand"

// Deck is an ordered pile of cards consumed strictly front to back.
type Deck struct {
	cards []Card
}

// NewDeck builds the full 52-card set and shuffles it uniformly.
// Gameplay randomness does not need to be cryptographic.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for s := Spade; s <= Club; s++ {
		for r := Rank(2); r <= Ace; r++ {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// Draw removes and returns the front card. An empty deck is an engine
// invariant violation: a single hand can never exhaust 52 cards.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrNoCardsInDeck
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

// Len reports how many cards remain undrawn.
func (d *Deck) Len() int {
	return len(d.cards)
}
