// internal/room/room.go
package room

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pokerhall/pokerhall/internal/game"
)

// ErrRoomClosed rejects requests against a room whose actor has
// already exited.
var ErrRoomClosed = errors.New("room is closed")

// ChipStore persists a player's chip balance after a settled hand.
// Failures are logged and never block gameplay.
type ChipStore interface {
	SaveChips(ctx context.Context, playerID uuid.UUID, chips int) error
}

// ResultSink receives a record of every settled hand for downstream
// consumers (audit trail, history).
type ResultSink interface {
	PublishHandResult(ctx context.Context, rec HandResult) error
}

// HandResult summarizes one settled hand. Winners and the chips map
// are keyed by player id, not username; usernames are not unique.
type HandResult struct {
	RoomID    int            `json:"room_id"`
	HandNo    int            `json:"hand_no"`
	Winners   []string       `json:"winners"`
	Chips     map[string]int `json:"chips"`
	Timestamp int64          `json:"timestamp"`
}

// SeatRequest carries everything needed to seat a player: identity,
// the chip balance loaded from persistence, and the connection's
// outbound channel.
type SeatRequest struct {
	ID    uuid.UUID
	Name  string
	Chips int
	Out   chan<- []byte
}

type msgKind int

const (
	msgJoin msgKind = iota
	msgLeave
	msgStart
	msgAction
	msgTurnTimeout
)

type envelope struct {
	kind   msgKind
	seat   SeatRequest
	reply  chan error
	player uuid.UUID
	action game.Action
	size   int
	seq    uint64
}

// Room is the actor owning one table. A single goroutine drains the
// mailbox and applies commands to the game state one at a time, which
// is the entire concurrency discipline: at most one in-flight mutation
// per table, no locks anywhere in the engine.
type Room struct {
	ID    int
	Name  string
	Blind int

	game    *game.Game
	mailbox chan envelope
	closed  chan struct{}
	seats   atomic.Int32

	handNo      int
	turnSeq     uint64
	turnTimer   *time.Timer
	turnTimeout time.Duration

	chips   ChipStore
	results ResultSink
	onClose func(id int)
	log     *logrus.Entry
}

func newRoom(id int, name string, blind int, cfg Config, log *logrus.Logger, onClose func(int)) *Room {
	return &Room{
		ID:          id,
		Name:        name,
		Blind:       blind,
		game:        game.NewGame(blind, log.WithField("room", id)),
		mailbox:     make(chan envelope, 64),
		closed:      make(chan struct{}),
		turnTimeout: cfg.TurnTimeout,
		chips:       cfg.Chips,
		results:     cfg.Results,
		onClose:     onClose,
		log:         log.WithField("room", id),
	}
}

// PlayerCount is readable from outside the actor, for room listings.
func (r *Room) PlayerCount() int {
	return int(r.seats.Load())
}

// Join seats a player, waiting for the actor to accept or reject.
func (r *Room) Join(seat SeatRequest) error {
	reply := make(chan error, 1)
	if !r.enqueue(envelope{kind: msgJoin, seat: seat, reply: reply}) {
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.closed:
		return ErrRoomClosed
	}
}

// Leave unseats a player. Fire-and-forget: the actor folds the seat
// out of a running hand if needed and tears the room down when the
// last seat empties.
func (r *Room) Leave(playerID uuid.UUID) {
	r.enqueue(envelope{kind: msgLeave, player: playerID})
}

// SubmitStart asks the actor to deal a new hand.
func (r *Room) SubmitStart(playerID uuid.UUID) {
	r.enqueue(envelope{kind: msgStart, player: playerID})
}

// SubmitAction queues a betting command for the actor.
func (r *Room) SubmitAction(playerID uuid.UUID, act game.Action, size int) {
	r.enqueue(envelope{kind: msgAction, player: playerID, action: act, size: size})
}

func (r *Room) enqueue(env envelope) bool {
	select {
	case r.mailbox <- env:
		return true
	case <-r.closed:
		return false
	}
}

// run is the actor loop. It exits when the last seat empties; teardown
// is done here, on the actor goroutine, so a departing last player can
// never race a joining one.
func (r *Room) run() {
	for {
		select {
		case env := <-r.mailbox:
			if r.handle(env) {
				r.shutdown()
				return
			}
		case <-r.closed:
			return
		}
	}
}

// handle processes one mailbox message to completion. Returns true
// when the room should tear itself down.
func (r *Room) handle(env envelope) bool {
	switch env.kind {
	case msgJoin:
		env.reply <- r.handleJoin(env.seat)

	case msgLeave:
		if r.handleLeave(env.player) {
			return true
		}

	case msgStart:
		r.handleStart(env.player)

	case msgAction:
		return r.applyAction(env.player, env.action, env.size)

	case msgTurnTimeout:
		if env.seq != r.turnSeq || !r.game.InBettingPhase() {
			return false // stale timer, the turn already moved on
		}
		p := r.game.CurrentPlayer()
		r.log.WithField("player", p.Name).Warn("turn deadline expired, auto-folding")
		return r.applyAction(p.ID, game.ActionFold, 0)
	}
	return false
}

func (r *Room) handleJoin(seat SeatRequest) error {
	p := game.NewPlayer(seat.ID, seat.Name, seat.Chips, seat.Out)
	if err := r.game.AddPlayer(p); err != nil {
		r.log.WithField("player", seat.Name).WithError(err).Info("join rejected")
		return err
	}
	r.seats.Add(1)
	r.log.WithField("player", seat.Name).Info("player joined")
	r.game.Broadcast(false)
	return nil
}

func (r *Room) handleLeave(playerID uuid.UUID) bool {
	// A leaving seat that holds the action folds first so the turn
	// passes on through the normal path.
	if r.game.InBettingPhase() && r.game.PlayersLen() > 0 &&
		r.game.CurrentPlayer().ID == playerID {
		_, ended, err := r.game.HandleAction(playerID, game.ActionFold, 0)
		if err != nil {
			r.abortHand(err)
		} else if ended && r.finishHand() {
			return true
		}
	}

	var stack int
	for _, p := range r.game.Players() {
		if p.ID == playerID {
			stack = p.Chips
			break
		}
	}

	ended, err := r.game.RemovePlayer(playerID)
	if err != nil {
		r.log.WithField("player", playerID).Debug("leave for unseated player ignored")
		return false
	}
	r.seats.Add(-1)
	r.log.WithField("player", playerID).Info("player left")
	r.saveChips(playerID, stack)

	if r.seats.Load() == 0 {
		return true
	}
	if ended {
		return r.finishHand()
	}
	r.game.Broadcast(false)
	r.game.PromptAction()
	r.armTurnTimer()
	return false
}

func (r *Room) handleStart(playerID uuid.UUID) {
	if !r.game.CanStart() {
		r.log.WithField("player", playerID).Debug("start ignored, table not ready")
		return
	}
	r.handNo++
	if err := r.game.Start(); err != nil {
		r.abortHand(err)
		return
	}
	r.log.WithField("hand", r.handNo).Info("hand started")
	r.game.Broadcast(false)
	r.game.PromptAction()
	r.armTurnTimer()
}

func (r *Room) applyAction(playerID uuid.UUID, act game.Action, size int) bool {
	applied, ended, err := r.game.HandleAction(playerID, act, size)
	if err != nil {
		r.abortHand(err)
		return false
	}
	if ended {
		return r.finishHand()
	}
	// An ignored command changed nothing; re-arming the deadline here
	// would let any seat stall the acting one forever.
	if !applied {
		return false
	}
	r.game.Broadcast(false)
	r.game.PromptAction()
	r.armTurnTimer()
	return false
}

// finishHand runs the post-settlement duties: reveal-all broadcast,
// chip persistence, the hand-result record, and kicking broke seats.
// Returns true if kicking emptied the table.
func (r *Room) finishHand() bool {
	r.stopTurnTimer()
	r.game.Broadcast(true)
	r.persistResults()

	for _, p := range r.game.BrokePlayers() {
		r.game.Kick(p)
		if _, err := r.game.RemovePlayer(p.ID); err == nil {
			r.seats.Add(-1)
			r.log.WithField("player", p.Name).Info("kicked broke player")
		}
	}
	return r.seats.Load() == 0
}

// persistResults pushes chip balances to the store and the hand record
// to the sink, both off the actor goroutine. A failure costs us the
// durability of this hand's results, never the game.
func (r *Room) persistResults() {
	rec := HandResult{
		RoomID:    r.ID,
		HandNo:    r.handNo,
		Chips:     make(map[string]int),
		Timestamp: time.Now().Unix(),
	}
	type balance struct {
		id    uuid.UUID
		name  string
		chips int
	}
	var balances []balance
	for _, p := range r.game.Players() {
		rec.Chips[p.ID.String()] = p.Chips
		if p.State == game.StateWinner {
			rec.Winners = append(rec.Winners, p.ID.String())
		}
		balances = append(balances, balance{id: p.ID, name: p.Name, chips: p.Chips})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if r.chips != nil {
			for _, b := range balances {
				if err := r.chips.SaveChips(ctx, b.id, b.chips); err != nil {
					r.log.WithField("player", b.name).WithError(err).Error("failed to persist chips")
				}
			}
		}
		if r.results != nil {
			if err := r.results.PublishHandResult(ctx, rec); err != nil {
				r.log.WithError(err).Error("failed to publish hand result")
			}
		}
	}()
}

// saveChips writes one seat's balance back, off the actor goroutine.
// A departing player's stack would otherwise revert to the last
// settled balance.
func (r *Room) saveChips(playerID uuid.UUID, chips int) {
	if r.chips == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.chips.SaveChips(ctx, playerID, chips); err != nil {
			r.log.WithField("player", playerID).WithError(err).Error("failed to persist chips")
		}
	}()
}

// abortHand handles an engine invariant violation (deck exhausted,
// board overflow): log it, refund contributions and void the hand.
func (r *Room) abortHand(err error) {
	r.log.WithError(err).Error("engine invariant violated, aborting hand")
	r.stopTurnTimer()
	r.game.Abort()
	r.game.Broadcast(false)
}

// armTurnTimer starts the per-turn deadline for the acting seat. The
// sequence number ties the timer to this particular turn: by the time
// it fires, a bumped sequence means the turn already resolved.
func (r *Room) armTurnTimer() {
	r.stopTurnTimer()
	if r.turnTimeout <= 0 || !r.game.InBettingPhase() {
		return
	}
	r.turnSeq++
	seq := r.turnSeq
	r.turnTimer = time.AfterFunc(r.turnTimeout, func() {
		r.enqueue(envelope{kind: msgTurnTimeout, seq: seq})
	})
}

func (r *Room) stopTurnTimer() {
	r.turnSeq++
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
}

func (r *Room) shutdown() {
	r.stopTurnTimer()
	close(r.closed)
	if r.onClose != nil {
		r.onClose(r.ID)
	}
	r.log.Info("room closed")
}
