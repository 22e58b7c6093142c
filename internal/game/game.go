// internal/game/game.go
package game

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Phase is the table's position in the hand lifecycle. A hand runs
// FreeFlop → Flop → Turn → River → ShowDown, then the table returns to
// BeforeStart until the next deal.
type Phase string

const (
	PhaseInit        Phase = "Init"
	PhaseBeforeStart Phase = "BeforeStart"
	PhaseFreeFlop    Phase = "FreeFlop"
	PhaseFlop        Phase = "Flop"
	PhaseTurn        Phase = "Turn"
	PhaseRiver       Phase = "River"
	PhaseShowDown    Phase = "ShowDown"
)

// Action is a betting command submitted by a player.
type Action int

const (
	ActionCheck Action = iota
	ActionCall
	ActionRaise
	ActionAllIn
	ActionFold
)

// MaxPlayers is the seat capacity of a table.
const MaxPlayers = 6

// Game is the full state of one table: seats, cards, pot and the
// betting-round bookkeeping. It has no internal locking; the owning
// room actor is the only goroutine that ever touches it.
type Game struct {
	players []*Player
	table   *Table
	blind   int // big blind size
	phase   Phase

	sbIdx   int // small-blind seat, rotates each hand
	curIdx  int // seat whose action we are waiting on
	callPot int // contribution every live seat must match this round

	canRaise int // seats that can still raise (not folded, not all-in)
	alive    int // seats that have not folded
	winners  int // declared winners, set at hand end

	log logrus.FieldLogger
}

// NewGame builds an empty table with the given big blind.
func NewGame(blind int, log logrus.FieldLogger) *Game {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Game{
		table: NewTable(),
		blind: blind,
		phase: PhaseInit,
		log:   log,
	}
}

// AddPlayer seats a new player. Joins are rejected once the table is
// at capacity; a join never interrupts a running hand (the seat sits
// out in Waiting until the next deal).
func (g *Game) AddPlayer(p *Player) error {
	if len(g.players) >= MaxPlayers {
		return ErrPlayerFull
	}
	if g.phase == PhaseInit {
		g.phase = PhaseBeforeStart
	}
	g.players = append(g.players, p)
	return nil
}

// RemovePlayer unseats a player. If a hand is running and the seat was
// still contesting the pot, it is folded out of the bookkeeping first;
// should that leave a single live seat, the hand settles immediately
// and RemovePlayer reports the hand as ended.
func (g *Game) RemovePlayer(id uuid.UUID) (bool, error) {
	idx := -1
	for i, p := range g.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrPlayerNotFound
	}

	p := g.players[idx]
	inHand := g.InBettingPhase()
	if inHand && p.Alive() {
		g.alive--
		if p.State != StateAllIn {
			g.canRaise--
		}
	}

	g.players = append(g.players[:idx], g.players[idx+1:]...)
	if len(g.players) == 0 {
		return false, nil
	}
	if g.curIdx > idx {
		g.curIdx--
	}
	if g.sbIdx > idx {
		g.sbIdx--
	}
	g.curIdx %= len(g.players)
	g.sbIdx %= len(g.players)

	// The removed seat may have been the one whose bet set the call
	// amount. If nobody left at the table can match it, clamp it to
	// the deepest live stake so the round can still close.
	if inHand {
		if largest := g.largestLivePot(); g.callPot > largest {
			g.callPot = largest
		}
	}

	if inHand && g.onlyOneLeft() {
		g.declareLastAlive()
		g.settlePot()
		return true, nil
	}
	return false, nil
}

// Players returns the seat list in table order.
func (g *Game) Players() []*Player {
	return g.players
}

func (g *Game) PlayersLen() int {
	return len(g.players)
}

// CurrentPlayer is the seat whose action the table is waiting on.
func (g *Game) CurrentPlayer() *Player {
	return g.players[g.curIdx]
}

func (g *Game) Phase() Phase { return g.phase }
func (g *Game) Blind() int   { return g.blind }
func (g *Game) CallPot() int { return g.callPot }
func (g *Game) Pot() int     { return g.table.Pot }

// InBettingPhase reports whether a hand is mid-flight, i.e. player
// actions are currently meaningful.
func (g *Game) InBettingPhase() bool {
	switch g.phase {
	case PhaseFreeFlop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// CanStart reports whether a new hand may be dealt.
func (g *Game) CanStart() bool {
	return g.phase == PhaseBeforeStart && len(g.players) >= 2
}

// Start deals a new hand: resets every seat, rotates the small blind,
// builds a fresh deck, deals two hole cards per seat, posts the blinds
// and opens the action two past the small blind.
func (g *Game) Start() error {
	if len(g.players) < 2 {
		return ErrNotEnoughPlayers
	}

	for _, p := range g.players {
		p.State = StateIdle
		p.Hole = nil
	}
	g.canRaise = len(g.players)
	g.alive = len(g.players)
	g.winners = 0
	g.sbIdx = (g.sbIdx + 1) % len(g.players)
	g.table = NewTable()

	for _, p := range g.players {
		c1, err := g.table.Draw()
		if err != nil {
			return err
		}
		c2, err := g.table.Draw()
		if err != nil {
			return err
		}
		p.Hole = []Card{c1, c2}
	}

	g.phase = PhaseFreeFlop
	g.openBettingRound()
	return nil
}

// openBettingRound positions the action for the phase that just began.
// Preflop posts the blinds and opens at sb+2 with the big blind to
// call; later streets open at the small blind with the largest live
// contribution to match.
func (g *Game) openBettingRound() {
	if g.phase == PhaseFreeFlop {
		bbIdx := (g.sbIdx + 1) % len(g.players)
		g.curIdx = (g.sbIdx + 2) % len(g.players)
		g.postBlind(g.sbIdx, g.blind/2)
		g.postBlind(bbIdx, g.blind)
		g.callPot = g.blind
		return
	}
	g.curIdx = g.sbIdx
	g.callPot = g.largestLivePot()
	for !g.players[g.curIdx].Alive() || g.players[g.curIdx].State == StateAllIn {
		g.curIdx = (g.curIdx + 1) % len(g.players)
	}
}

// postBlind moves a forced blind into the pot. A stack shorter than
// the blind posts what it has.
func (g *Game) postBlind(idx, size int) {
	p := g.players[idx]
	if size > p.Chips {
		size = p.Chips
	}
	p.BlindRaise(size)
	g.table.Pot += size
}

// HandleAction applies a betting command from a player. Commands from
// anyone but the acting seat, and actions the seat cannot legally
// take, are ignored without mutating anything; applied reports whether
// the command changed the table, ended whether the hand finished as a
// result.
func (g *Game) HandleAction(playerID uuid.UUID, act Action, size int) (applied, ended bool, err error) {
	if !g.InBettingPhase() {
		return false, false, nil
	}
	p := g.players[g.curIdx]
	if p.ID != playerID {
		g.log.WithFields(logrus.Fields{"player": playerID, "turn": p.Name}).
			Debug("action out of turn ignored")
		return false, false, nil
	}

	switch act {
	case ActionCheck:
		if g.callPot != p.Pot {
			return false, false, nil
		}
		p.Check()

	case ActionCall:
		// A zero-size call is legal (big blind closing an unraised
		// round); a call that would consume the whole stack is not,
		// that seat has to go all-in instead.
		need := g.callPot - p.Pot
		if need < 0 || (need > 0 && need >= p.Chips) {
			return false, false, nil
		}
		p.Call(need)
		g.table.Pot += need

	case ActionRaise:
		if size <= 0 || size > p.Chips {
			g.log.WithField("player", p.Name).Debug("raise size rejected")
			return false, false, nil
		}
		wentAllIn := p.Raise(size)
		g.table.Pot += size
		if wentAllIn {
			g.canRaise--
		}
		g.callPot = p.Pot

	case ActionAllIn:
		g.table.Pot += p.Chips
		p.AllIn()
		g.canRaise--
		if p.Pot > g.callPot {
			g.callPot = p.Pot
		}

	case ActionFold:
		p.Fold()
		g.alive--
		g.canRaise--

	default:
		return false, false, nil
	}

	ended, err = g.advanceTurn()
	return true, ended, err
}

// advanceTurn moves the action to the next seat that owes a decision,
// closing the betting round when the acting seat has matched the call
// amount after acting, or when only one seat remains.
func (g *Game) advanceTurn() (bool, error) {
	for {
		g.curIdx = (g.curIdx + 1) % len(g.players)
		if g.isBetFinished() {
			return g.afterBetting()
		}
		p := g.players[g.curIdx]
		if !p.Alive() || p.State == StateAllIn {
			continue
		}
		return false, nil
	}
}

func (g *Game) isBetFinished() bool {
	p := g.players[g.curIdx]
	return (g.callPot == p.Pot && p.Acted()) || g.onlyOneLeft()
}

// afterBetting closes a betting round: either the hand is over and the
// pot settles, or the next street's board cards are dealt and a new
// round opens.
func (g *Game) afterBetting() (bool, error) {
	finished, err := g.maybeFinishHand()
	if err != nil {
		return false, err
	}
	if finished {
		return true, nil
	}

	for _, p := range g.players {
		if p.returnsToIdle() {
			p.State = StateIdle
		}
	}

	switch g.phase {
	case PhaseFreeFlop:
		for i := 0; i < 3; i++ {
			if err := g.table.DealBoard(); err != nil {
				return false, err
			}
		}
		g.phase = PhaseFlop
	case PhaseFlop:
		if err := g.table.DealBoard(); err != nil {
			return false, err
		}
		g.phase = PhaseTurn
	case PhaseTurn:
		if err := g.table.DealBoard(); err != nil {
			return false, err
		}
		g.phase = PhaseRiver
	case PhaseRiver:
		g.phase = PhaseShowDown
	}

	g.openBettingRound()
	return false, nil
}

// maybeFinishHand checks the hand-over conditions before a new round
// opens: everyone all-in or folded bar one (early showdown), the river
// round closing, or a lone survivor.
func (g *Game) maybeFinishHand() (bool, error) {
	if g.isEarlyShowdown() || g.phase == PhaseRiver {
		if err := g.table.FillBoard(); err != nil {
			return false, err
		}
		g.showdown()
		g.settlePot()
		return true, nil
	}
	if g.onlyOneLeft() {
		g.declareLastAlive()
		g.settlePot()
		return true, nil
	}
	return false, nil
}

// isEarlyShowdown is true when more than one seat is contesting the
// pot but at most one of them can still raise.
func (g *Game) isEarlyShowdown() bool {
	return g.alive > 1 && g.canRaise <= 1
}

func (g *Game) onlyOneLeft() bool {
	return g.alive == 1
}

// declareLastAlive crowns the sole remaining seat without comparing
// cards.
func (g *Game) declareLastAlive() {
	for _, p := range g.players {
		if p.Alive() {
			p.State = StateWinner
			g.winners++
		}
	}
}

// showdown evaluates every live seat's seven cards against the current
// best. Strictly better hands replace the winner set; equal hands chop.
func (g *Game) showdown() {
	board := g.table.Board()
	var best HandRank
	var winners []*Player

	for _, p := range g.players {
		if !p.Alive() {
			continue
		}
		rank := Evaluate(append(append([]Card{}, board...), p.Hole...))
		if len(winners) == 0 {
			best = rank
			winners = []*Player{p}
			continue
		}
		switch cmp := rank.Compare(best); {
		case cmp > 0:
			best = rank
			winners = []*Player{p}
		case cmp == 0:
			winners = append(winners, p)
		}
	}

	g.winners = len(winners)
	for _, p := range winners {
		p.State = StateWinner
		g.log.WithFields(logrus.Fields{"player": p.Name, "hand": best.Category.String()}).
			Info("showdown winner")
	}
}

// settlePot pays the hand out. A winner who contributed more than the
// smallest live stack takes their excess back as a side pot first.
// The rest splits evenly among winners, but a short all-in winner can
// take at most what every other stake could match against their own;
// the surplus goes back to the live seats that covered it. Integer
// division drops any odd chips.
func (g *Game) settlePot() {
	mainPot := g.smallestLivePot()

	for _, p := range g.players {
		if p.State == StateWinner && p.Pot > mainPot {
			side := p.Pot - mainPot
			p.AwardChips(side)
			g.table.Pot -= side
		}
	}

	var covering []*Player
	for _, p := range g.players {
		if p.Alive() && p.State != StateWinner {
			covering = append(covering, p)
		}
	}

	share := g.table.Pot / g.winners
	leftover := 0
	for _, p := range g.players {
		if p.State != StateWinner {
			continue
		}
		take := share
		// With no live seat left to contest it, dead money is the
		// winner's regardless of stake.
		if len(covering) > 0 {
			if limit := g.matchedStake(p); take > limit {
				leftover += take - limit
				take = limit
			}
		}
		p.AwardChips(take)
		g.log.WithFields(logrus.Fields{"player": p.Name, "chips": take}).
			Info("winner takes pot")
	}
	if leftover > 0 {
		back := leftover / len(covering)
		for _, p := range covering {
			p.AwardChips(back)
		}
	}

	for _, p := range g.players {
		p.Pot = 0
	}
	g.table.Pot = 0
	g.phase = PhaseBeforeStart
}

// matchedStake is the most a winner's own stake can claim: each seat's
// contribution counts only up to the winner's.
func (g *Game) matchedStake(w *Player) int {
	total := 0
	for _, p := range g.players {
		if p.Pot < w.Pot {
			total += p.Pot
		} else {
			total += w.Pot
		}
	}
	return total
}

// largestLivePot is the call amount when a post-flop round reopens:
// contributions persist across rounds within a hand.
func (g *Game) largestLivePot() int {
	largest := 0
	for _, p := range g.players {
		if p.Alive() && p.Pot > largest {
			largest = p.Pot
		}
	}
	return largest
}

func (g *Game) smallestLivePot() int {
	smallest := int(^uint(0) >> 1)
	for _, p := range g.players {
		if p.Alive() && p.Pot < smallest {
			smallest = p.Pot
		}
	}
	return smallest
}

// Abort voids a hand after an engine invariant violation: every
// seat's contribution is refunded so no chips are created or lost, and
// the table returns to BeforeStart.
func (g *Game) Abort() {
	for _, p := range g.players {
		p.AwardChips(p.Pot)
		p.Pot = 0
		if p.State != StateWaiting {
			p.State = StateIdle
		}
		p.Hole = nil
	}
	g.table.Pot = 0
	g.phase = PhaseBeforeStart
}

// BrokePlayers lists seats whose stacks hit zero, for the kick notice
// after settlement.
func (g *Game) BrokePlayers() []*Player {
	var broke []*Player
	for _, p := range g.players {
		if p.Chips == 0 {
			broke = append(broke, p)
		}
	}
	return broke
}
