// internal/game/table.go
package game

// Table owns the cards and chips shared by a hand: the shuffled deck,
// the community board and the total pot. A fresh Table is built for
// every hand.
type Table struct {
	deck  *Deck
	board []Card
	Pot   int
}

func NewTable() *Table {
	return &Table{deck: NewDeck()}
}

// Board returns the community cards dealt so far.
func (t *Table) Board() []Card {
	return t.board
}

// Draw takes the next card off the deck.
func (t *Table) Draw() (Card, error) {
	return t.deck.Draw()
}

// DealBoard moves one card from the deck onto the board.
func (t *Table) DealBoard() error {
	if len(t.board) >= 5 {
		return ErrBoardFull
	}
	c, err := t.deck.Draw()
	if err != nil {
		return err
	}
	t.board = append(t.board, c)
	return nil
}

// FillBoard deals out the remaining community cards for an early
// showdown, when no further betting can happen.
func (t *Table) FillBoard() error {
	for len(t.board) < 5 {
		if err := t.DealBoard(); err != nil {
			return err
		}
	}
	return nil
}
