// internal/game/player_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBlindDoesNotCountAsActing(t *testing.T) {
	p := NewPlayer(uuid.New(), "sb", 100, nil)
	p.State = StateIdle
	p.BlindRaise(5)

	assert.Equal(t, 95, p.Chips)
	assert.Equal(t, 5, p.Pot)
	assert.Equal(t, StateIdle, p.State)
	assert.False(t, p.Acted(), "a posted blind is not a voluntary action")
}

func TestRaiseConsumingStackGoesAllIn(t *testing.T) {
	p := NewPlayer(uuid.New(), "shorty", 30, nil)
	p.State = StateIdle

	allIn := p.Raise(20)
	assert.False(t, allIn)
	assert.Equal(t, StateRaise, p.State)

	allIn = p.Raise(10)
	assert.True(t, allIn)
	assert.Equal(t, StateAllIn, p.State)
	assert.Zero(t, p.Chips)
	assert.Equal(t, 30, p.Pot)
}

func TestAliveStates(t *testing.T) {
	p := NewPlayer(uuid.New(), "p", 100, nil)
	assert.False(t, p.Alive(), "a waiting seat is not contesting the pot")

	p.State = StateIdle
	assert.True(t, p.Alive())
	p.State = StateAllIn
	assert.True(t, p.Alive())
	p.Fold()
	assert.False(t, p.Alive())
}

func TestOverdrawPanics(t *testing.T) {
	p := NewPlayer(uuid.New(), "p", 10, nil)
	p.State = StateIdle
	assert.Panics(t, func() { p.Call(11) })
}
