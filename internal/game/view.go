// internal/game/view.go
package game

import (
	"encoding/json"
)

// PlayerView is one seat as shown to a recipient. Hole cards are
// masked unless the recipient owns them or the hand is over.
type PlayerView struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Card1 string `json:"card1"`
	Card2 string `json:"card2"`
	Chips int    `json:"chips"`
	Pot   int    `json:"player_pot"`
}

// BoardView is the shared table block of a game_state message.
type BoardView struct {
	Pot     int      `json:"pot"`
	BB      int      `json:"bb"`
	Cards   []string `json:"cards"`
	State   Phase    `json:"state"`
	CallPot int      `json:"call_pot"`
}

// StateMessage is the full table snapshot broadcast after every
// mutation. The players slice is padded with nulls to seat capacity.
type StateMessage struct {
	Type    string        `json:"type"`
	ID      string        `json:"id"`
	Players []*PlayerView `json:"players"`
	Board   BoardView     `json:"board"`
}

// ActionFlags tells the acting seat which commands are currently
// legal given the call amount and its stack.
type ActionFlags struct {
	Check bool `json:"check"`
	Call  bool `json:"call"`
	Raise bool `json:"raise"`
	AllIn bool `json:"allin"`
	Fold  bool `json:"fold"`
}

// ActionMessage prompts the acting seat for its move.
type ActionMessage struct {
	Type   string      `json:"type"`
	Action ActionFlags `json:"action"`
}

// KickMessage tells a broke seat it is out of the table.
type KickMessage struct {
	Type string `json:"type"`
}

// Snapshot computes the game_state projection for one recipient.
// Masking happens here, at broadcast time; shared state is never
// mutated per recipient.
func (g *Game) Snapshot(recipient *Player, revealAll bool) StateMessage {
	players := make([]*PlayerView, MaxPlayers)
	for i, p := range g.players {
		card1, card2 := HiddenCard, HiddenCard
		if len(p.Hole) == 2 && (p == recipient || revealAll) {
			card1 = p.Hole[0].String()
			card2 = p.Hole[1].String()
		}
		players[i] = &PlayerView{
			Name:  p.Name,
			State: p.State.String(),
			Card1: card1,
			Card2: card2,
			Chips: p.Chips,
			Pot:   p.Pot,
		}
	}

	board := g.table.Board()
	cards := make([]string, len(board))
	for i, c := range board {
		cards[i] = c.String()
	}

	return StateMessage{
		Type:    "game_state",
		ID:      recipient.ID.String(),
		Players: players,
		Board: BoardView{
			Pot:     g.table.Pot,
			BB:      g.blind,
			Cards:   cards,
			State:   g.phase,
			CallPot: g.callPot,
		},
	}
}

// Broadcast pushes each seat's projection of the table onto that
// seat's outbound channel. Delivery is fire-and-forget.
func (g *Game) Broadcast(revealAll bool) {
	for _, p := range g.players {
		g.send(p, g.Snapshot(p, revealAll))
	}
}

// PromptAction tells the acting seat which moves are legal. Sent only
// to the seat whose turn it is.
func (g *Game) PromptAction() {
	if !g.InBettingPhase() {
		return
	}
	p := g.players[g.curIdx]

	flags := ActionFlags{Check: true, Call: true, Raise: true, AllIn: true, Fold: true}
	if g.callPot == 0 || p.Pot == g.callPot {
		flags.Call = false
	} else {
		flags.Check = false
		if p.Chips+p.Pot <= g.callPot {
			flags.Raise = false
			flags.Call = false
		}
	}

	g.send(p, ActionMessage{Type: "action", Action: flags})
}

// Kick notifies a seat it lost its last chip.
func (g *Game) Kick(p *Player) {
	g.send(p, KickMessage{Type: "kick"})
}

// send serializes a message onto a seat's channel without blocking. A
// full channel means the transport stalled; the message is dropped
// rather than wedging the table.
func (g *Game) send(p *Player, msg interface{}) {
	if p.Out == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		g.log.WithError(err).Error("failed to marshal outbound message")
		return
	}
	select {
	case p.Out <- data:
	default:
		g.log.WithField("player", p.Name).Warn("outbound channel full, dropping message")
	}
}
