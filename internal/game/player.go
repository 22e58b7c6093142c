// internal/game/player.go
package game

import (
	"fmt"

	"github.com/google/uuid"
)

// PlayerState tracks a seat's position in the per-hand betting state
// machine. Fold and AllIn are sticky until the next deal; Winner is set
// only at hand end.
type PlayerState int

const (
	StateWaiting PlayerState = iota
	StateIdle
	StateCheck
	StateCall
	StateRaise
	StateFold
	StateAllIn
	StateWinner
)

var playerStateNames = [...]string{
	"Waiting", "Idle", "Check", "Call", "Raise", "Fold", "AllIn", "Winner",
}

func (s PlayerState) String() string {
	return playerStateNames[s]
}

// Player is a seat at a table: identity, chip stack, the chips it has
// moved into the pot this hand, and its outbound message channel. A
// Player is owned exclusively by the table that seats it.
type Player struct {
	ID    uuid.UUID
	Name  string
	Chips int
	State PlayerState
	Hole  []Card // nil until dealt, then exactly 2
	Pot   int    // contribution this hand, reset at settlement

	// Out receives serialized events for this seat. The engine only
	// ever sends; delivery is the transport's problem.
	Out chan<- []byte
}

// NewPlayer seats a player with a persisted chip balance.
func NewPlayer(id uuid.UUID, name string, chips int, out chan<- []byte) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Chips: chips,
		State: StateWaiting,
		Out:   out,
	}
}

// Acted reports whether the seat has taken a voluntary action this
// round. Blinds do not count.
func (p *Player) Acted() bool {
	switch p.State {
	case StateCheck, StateCall, StateRaise, StateAllIn:
		return true
	}
	return false
}

// Alive reports whether the seat is still contesting the pot.
func (p *Player) Alive() bool {
	return p.State != StateFold && p.State != StateWaiting
}

func (p *Player) returnsToIdle() bool {
	switch p.State {
	case StateCheck, StateCall, StateRaise:
		return true
	}
	return false
}

// Check records a check. Legality (nothing left to call) is the
// table's responsibility.
func (p *Player) Check() {
	p.State = StateCheck
}

// Call moves size chips into the player's contribution. The table must
// never ask for more than the stack holds.
func (p *Player) Call(size int) {
	p.move(size)
	p.State = StateCall
}

// Raise moves size chips in and reports whether the raise consumed the
// whole stack, which transitions the seat to all-in instead.
func (p *Player) Raise(size int) bool {
	p.move(size)
	if p.Chips == 0 {
		p.State = StateAllIn
		return true
	}
	p.State = StateRaise
	return false
}

// AllIn commits the entire remaining stack.
func (p *Player) AllIn() {
	p.Pot += p.Chips
	p.Chips = 0
	p.State = StateAllIn
}

// BlindRaise posts a forced blind: same transfer as a raise but the
// state is untouched, so the seat still counts as not having acted.
func (p *Player) BlindRaise(size int) {
	p.move(size)
}

// Fold surrenders the hand. Contributed chips stay in the pot.
func (p *Player) Fold() {
	p.State = StateFold
}

// AwardChips returns winnings to the stack at settlement.
func (p *Player) AwardChips(chips int) {
	p.Chips += chips
}

func (p *Player) move(size int) {
	if size > p.Chips {
		// Callers validate stack sizes first; reaching here is a
		// programming error, not a user error.
		panic(fmt.Sprintf("player %s moving %d chips with stack %d", p.Name, size, p.Chips))
	}
	p.Chips -= size
	p.Pot += size
}
