// internal/game/game_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupGame seats n players with the given stacks and deals nothing.
// The first Start rotates the small blind to seat 1, so seat 1 posts
// the small blind, seat 2 the big blind, and action opens at seat 0
// (heads-up: seat 1 posts small and acts first).
func setupGame(t *testing.T, n, chips, blind int) (*Game, []*Player) {
	t.Helper()
	g := NewGame(blind, nil)
	players := make([]*Player, n)
	for i := 0; i < n; i++ {
		players[i] = NewPlayer(uuid.New(), string(rune('A'+i)), chips, nil)
		require.NoError(t, g.AddPlayer(players[i]))
	}
	return g, players
}

// totalChips is stacks plus the table pot; the pot already carries
// every seat's contribution.
func totalChips(g *Game) int {
	sum := g.Pot()
	for _, p := range g.Players() {
		sum += p.Chips
	}
	return sum
}

func TestAddPlayerCapacity(t *testing.T) {
	g := NewGame(10, nil)
	assert.Equal(t, PhaseInit, g.Phase())

	for i := 0; i < MaxPlayers; i++ {
		require.NoError(t, g.AddPlayer(NewPlayer(uuid.New(), "p", 1000, nil)))
	}
	assert.Equal(t, PhaseBeforeStart, g.Phase())
	assert.ErrorIs(t, g.AddPlayer(NewPlayer(uuid.New(), "late", 1000, nil)), ErrPlayerFull)
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	g := NewGame(10, nil)
	require.NoError(t, g.AddPlayer(NewPlayer(uuid.New(), "solo", 1000, nil)))
	assert.False(t, g.CanStart())
	assert.ErrorIs(t, g.Start(), ErrNotEnoughPlayers)
}

func TestStartPostsBlindsAndOpensAction(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	require.NoError(t, g.Start())

	assert.Equal(t, PhaseFreeFlop, g.Phase())
	assert.Equal(t, 5, players[1].Pot, "seat 1 posts the small blind")
	assert.Equal(t, 10, players[2].Pot, "seat 2 posts the big blind")
	assert.Equal(t, 15, g.Pot())
	assert.Equal(t, 10, g.CallPot())
	assert.Equal(t, players[0].ID, g.CurrentPlayer().ID, "action opens two past the small blind")

	for _, p := range players {
		assert.Len(t, p.Hole, 2)
	}
	assert.Equal(t, 3000, totalChips(g))
}

func TestIllegalActionsAreIgnored(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	require.NoError(t, g.Start())

	// Out of turn.
	applied, ended, err := g.HandleAction(players[1].ID, ActionFold, 0)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, ended)
	assert.Equal(t, players[0].ID, g.CurrentPlayer().ID)
	assert.True(t, players[1].Alive())

	// Check while facing a bet.
	applied, ended, err = g.HandleAction(players[0].ID, ActionCheck, 0)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, ended)
	assert.Equal(t, players[0].ID, g.CurrentPlayer().ID)

	// Raise for zero or beyond the stack.
	applied, _, err = g.HandleAction(players[0].ID, ActionRaise, 0)
	require.NoError(t, err)
	assert.False(t, applied)
	applied, _, err = g.HandleAction(players[0].ID, ActionRaise, 1001)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, players[0].ID, g.CurrentPlayer().ID)
	assert.Equal(t, 15, g.Pot())

	applied, ended, err = g.HandleAction(players[0].ID, ActionCall, 0)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.False(t, ended)
	assert.Equal(t, players[1].ID, g.CurrentPlayer().ID)
}

func TestFoldsLeaveLastSeatTheWinner(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	require.NoError(t, g.Start())

	_, ended, err := g.HandleAction(players[0].ID, ActionFold, 0)
	require.NoError(t, err)
	require.False(t, ended)

	_, ended, err = g.HandleAction(players[1].ID, ActionFold, 0)
	require.NoError(t, err)
	require.True(t, ended, "a lone live seat ends the hand")

	assert.Equal(t, PhaseBeforeStart, g.Phase())
	assert.Equal(t, StateWinner, players[2].State)
	assert.Equal(t, 1005, players[2].Chips, "big blind collects both blinds")
	assert.Equal(t, 995, players[1].Chips)
	assert.Equal(t, 1000, players[0].Chips)
	assert.Zero(t, g.Pot())
}

func TestCallsAndChecksRunToShowdown(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	require.NoError(t, g.Start())

	// Preflop: everyone calls; the big blind closes with a zero call.
	_, _, err := g.HandleAction(players[0].ID, ActionCall, 0)
	require.NoError(t, err)
	_, _, err = g.HandleAction(players[1].ID, ActionCall, 0)
	require.NoError(t, err)
	require.Equal(t, players[2].ID, g.CurrentPlayer().ID)
	require.Equal(t, g.CallPot(), players[2].Pot)
	_, ended, err := g.HandleAction(players[2].ID, ActionCall, 0)
	require.NoError(t, err)
	require.False(t, ended)

	require.Equal(t, PhaseFlop, g.Phase())
	assert.Equal(t, 30, g.Pot())
	assert.Equal(t, players[1].ID, g.CurrentPlayer().ID, "post-flop action opens at the small blind")

	// Flop, turn and river all check through.
	for _, phase := range []Phase{PhaseTurn, PhaseRiver, PhaseBeforeStart} {
		for _, idx := range []int{1, 2, 0} {
			_, ended, err = g.HandleAction(players[idx].ID, ActionCheck, 0)
			require.NoError(t, err)
		}
		require.Equal(t, phase, g.Phase())
	}
	require.True(t, ended, "river checks close the hand")

	winners := 0
	for _, p := range players {
		if p.State == StateWinner {
			winners++
		}
		assert.Zero(t, p.Pot)
	}
	assert.GreaterOrEqual(t, winners, 1)
	assert.Zero(t, g.Pot())
	// 30 chips split evenly however many seats chop.
	assert.Equal(t, 3000, totalChips(g))
}

func TestRaiseRepricesTheCall(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	require.NoError(t, g.Start())

	_, _, err := g.HandleAction(players[0].ID, ActionRaise, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, g.CallPot())
	assert.Equal(t, 45, g.Pot())

	_, _, err = g.HandleAction(players[1].ID, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, players[1].Pot)

	_, ended, err := g.HandleAction(players[2].ID, ActionCall, 0)
	require.NoError(t, err)
	require.False(t, ended)
	assert.Equal(t, PhaseFlop, g.Phase())
	assert.Equal(t, 90, g.Pot())
}

func TestTurnSkipsFoldedSeat(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	require.NoError(t, g.Start())

	_, _, err := g.HandleAction(players[0].ID, ActionCall, 0)
	require.NoError(t, err)
	_, _, err = g.HandleAction(players[1].ID, ActionFold, 0)
	require.NoError(t, err)
	_, _, err = g.HandleAction(players[2].ID, ActionCheck, 0)
	require.NoError(t, err)

	require.Equal(t, PhaseFlop, g.Phase())
	assert.Equal(t, players[2].ID, g.CurrentPlayer().ID,
		"the folded small blind is skipped when the flop round opens")
}

func TestActionRoutesOnlyBetweenLiveSeats(t *testing.T) {
	g, players := setupGame(t, 4, 1000, 10)
	players[3].Chips = 50
	require.NoError(t, g.Start())
	require.Equal(t, players[3].ID, g.CurrentPlayer().ID)

	// Seat 3 is all-in and seat 2 folds; from here the action may only
	// touch seats 0 and 1.
	_, _, err := g.HandleAction(players[3].ID, ActionAllIn, 0)
	require.NoError(t, err)
	_, _, err = g.HandleAction(players[0].ID, ActionCall, 0)
	require.NoError(t, err)
	_, _, err = g.HandleAction(players[1].ID, ActionCall, 0)
	require.NoError(t, err)
	_, _, err = g.HandleAction(players[2].ID, ActionFold, 0)
	require.NoError(t, err)

	require.Equal(t, PhaseFlop, g.Phase())
	require.Equal(t, players[1].ID, g.CurrentPlayer().ID)

	_, _, err = g.HandleAction(players[1].ID, ActionRaise, 100)
	require.NoError(t, err)
	assert.Equal(t, players[0].ID, g.CurrentPlayer().ID,
		"the raise passes straight over the folded and all-in seats")

	_, _, err = g.HandleAction(players[0].ID, ActionCall, 0)
	require.NoError(t, err)
	require.Equal(t, PhaseTurn, g.Phase())
	assert.Equal(t, players[1].ID, g.CurrentPlayer().ID)
}

func TestHeadsUpAllInRunsTheBoardOut(t *testing.T) {
	g, players := setupGame(t, 2, 1000, 10)
	require.NoError(t, g.Start())
	require.Equal(t, players[1].ID, g.CurrentPlayer().ID, "small blind acts first heads-up")

	_, _, err := g.HandleAction(players[1].ID, ActionAllIn, 0)
	require.NoError(t, err)
	assert.Equal(t, 1000, g.CallPot())

	// A call that would consume the whole stack is refused; the seat
	// has to commit all-in explicitly.
	_, ended, err := g.HandleAction(players[0].ID, ActionCall, 0)
	require.NoError(t, err)
	require.False(t, ended)
	require.Equal(t, players[0].ID, g.CurrentPlayer().ID)

	_, ended, err = g.HandleAction(players[0].ID, ActionAllIn, 0)
	require.NoError(t, err)
	require.True(t, ended, "both seats all-in runs the board out immediately")

	assert.Equal(t, PhaseBeforeStart, g.Phase())
	assert.Len(t, g.table.Board(), 5)
	assert.Zero(t, g.Pot())
	assert.Equal(t, 2000, totalChips(g))
}

func TestSettleRefundsWinnersSidePot(t *testing.T) {
	g := NewGame(10, nil)
	a := NewPlayer(uuid.New(), "A", 0, nil)
	b := NewPlayer(uuid.New(), "B", 0, nil)
	c := NewPlayer(uuid.New(), "C", 0, nil)
	a.State, a.Pot = StateWinner, 100
	b.State, b.Pot = StateWinner, 50 // short all-in, chopped
	c.State, c.Pot = StateFold, 100
	g.players = []*Player{a, b, c}
	g.table.Pot = 250
	g.winners = 2

	g.settlePot()

	assert.Equal(t, 150, a.Chips, "excess over the short stack comes back before the split")
	assert.Equal(t, 100, b.Chips, "the short all-in only wins what it was eligible for")
	assert.Zero(t, c.Chips)
	assert.Zero(t, g.Pot())
	assert.Equal(t, PhaseBeforeStart, g.Phase())
}

func TestShortStackWinnerIsCappedByItsStake(t *testing.T) {
	g := NewGame(10, nil)
	a := NewPlayer(uuid.New(), "A", 0, nil)
	b := NewPlayer(uuid.New(), "B", 0, nil)
	c := NewPlayer(uuid.New(), "C", 0, nil)
	a.State, a.Pot = StateWinner, 50 // all-in winner
	b.State, b.Pot = StateCall, 100
	c.State, c.Pot = StateCall, 100
	g.players = []*Player{a, b, c}
	g.table.Pot = 250
	g.winners = 1

	g.settlePot()

	assert.Equal(t, 150, a.Chips, "the winner claims at most its own stake from every seat")
	assert.Equal(t, 50, b.Chips, "chips the short stake could not cover return to the deep seats")
	assert.Equal(t, 50, c.Chips)
	assert.Zero(t, g.Pot())
}

func TestSplitPotDropsOddChip(t *testing.T) {
	g := NewGame(10, nil)
	a := NewPlayer(uuid.New(), "A", 0, nil)
	b := NewPlayer(uuid.New(), "B", 0, nil)
	c := NewPlayer(uuid.New(), "C", 0, nil)
	a.State, a.Pot = StateWinner, 10
	b.State, b.Pot = StateWinner, 10
	c.State, c.Pot = StateFold, 5
	g.players = []*Player{a, b, c}
	g.table.Pot = 25
	g.winners = 2

	g.settlePot()

	assert.Equal(t, 12, a.Chips)
	assert.Equal(t, 12, b.Chips)
	assert.Zero(t, g.Pot(), "the odd chip is dropped, not carried over")
}

func TestRemovePlayerMidHand(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	require.NoError(t, g.Start())

	_, err := g.RemovePlayer(uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	ended, err := g.RemovePlayer(players[0].ID)
	require.NoError(t, err)
	assert.False(t, ended)
	assert.Equal(t, 2, g.PlayersLen())
	assert.Equal(t, players[1].ID, g.CurrentPlayer().ID)

	ended, err = g.RemovePlayer(players[1].ID)
	require.NoError(t, err)
	require.True(t, ended, "removal leaving one live seat settles the hand")
	assert.Equal(t, StateWinner, players[2].State)
	assert.Equal(t, 1005, players[2].Chips)
	assert.Equal(t, PhaseBeforeStart, g.Phase())
}

func TestRemovingCallSetterUnsticksTheRound(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	players[0].Chips = 150
	players[1].Chips = 120
	players[2].Chips = 130
	require.NoError(t, g.Start())

	// Seat 0 shoves deep, then leaves. Nobody left can match 150,
	// so the call amount has to come down with the departed stake.
	_, _, err := g.HandleAction(players[0].ID, ActionAllIn, 0)
	require.NoError(t, err)
	ended, err := g.RemovePlayer(players[0].ID)
	require.NoError(t, err)
	require.False(t, ended)

	_, ended, err = g.HandleAction(players[1].ID, ActionAllIn, 0)
	require.NoError(t, err)
	require.False(t, ended)
	_, ended, err = g.HandleAction(players[2].ID, ActionAllIn, 0)
	require.NoError(t, err)
	require.True(t, ended, "all seats all-in closes the round")

	assert.Equal(t, PhaseBeforeStart, g.Phase())
	assert.Equal(t, 400, players[1].Chips+players[2].Chips,
		"the departed stake is forfeited to the survivors")
	assert.Zero(t, g.Pot())
}

func TestAbortRefundsContributions(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	require.NoError(t, g.Start())
	_, _, err := g.HandleAction(players[0].ID, ActionRaise, 100)
	require.NoError(t, err)

	g.Abort()

	for _, p := range players {
		assert.Equal(t, 1000, p.Chips)
		assert.Zero(t, p.Pot)
		assert.Nil(t, p.Hole)
	}
	assert.Zero(t, g.Pot())
	assert.Equal(t, PhaseBeforeStart, g.Phase())
}

func TestBrokePlayers(t *testing.T) {
	g, players := setupGame(t, 3, 1000, 10)
	players[1].Chips = 0

	broke := g.BrokePlayers()
	require.Len(t, broke, 1)
	assert.Equal(t, players[1].ID, broke[0].ID)
}
