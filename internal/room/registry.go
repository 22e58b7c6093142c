// internal/room/registry.go
package room

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pokerhall/pokerhall/internal/game"
)

var (
	// ErrInvalidRoom rejects a creation request with a bad name or
	// blind (blinds must be positive multiples of 10).
	ErrInvalidRoom = errors.New("invalid room name or blind")
	// ErrTooManyRooms rejects creation past the registry's capacity.
	ErrTooManyRooms = errors.New("room capacity reached")
)

// Config carries the registry's shared collaborators and limits.
type Config struct {
	MaxRooms    int
	TurnTimeout time.Duration // 0 disables the per-turn deadline
	Chips       ChipStore
	Results     ResultSink
}

// Info is the public listing entry for one room.
type Info struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	MaxPlayer int    `json:"max_player"`
	CurPlayer int    `json:"cur_player"`
	BigBlind  int    `json:"bb"`
}

// Registry maps room ids to their actors. The lock guards only
// registry mutation (create/delete); in-hand state is owned by each
// room's actor and never touched here. Room ids come from the
// registry's own monotonic counter.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[int]*Room
	nextID int
	cfg    Config
	log    *logrus.Logger
}

func NewRegistry(cfg Config, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.MaxRooms <= 0 {
		cfg.MaxRooms = 64
	}
	return &Registry{
		rooms: make(map[int]*Room),
		cfg:   cfg,
		log:   log,
	}
}

// CreateRoom validates the request, allocates an id, and starts the
// room's actor goroutine.
func (reg *Registry) CreateRoom(name string, blind int) (*Room, error) {
	if name == "" || blind <= 0 || blind%10 != 0 {
		return nil, ErrInvalidRoom
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.rooms) >= reg.cfg.MaxRooms {
		return nil, ErrTooManyRooms
	}

	id := reg.nextID
	reg.nextID++
	r := newRoom(id, name, blind, reg.cfg, reg.log, reg.remove)
	reg.rooms[id] = r
	go r.run()

	reg.log.WithFields(logrus.Fields{"room": id, "name": name, "bb": blind}).Info("room created")
	return r, nil
}

// Room looks up a live room by id.
func (reg *Registry) Room(id int) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[id]
	return r, ok
}

// List returns the directory of live rooms, ordered by id.
func (reg *Registry) List() []Info {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	infos := make([]Info, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		infos = append(infos, Info{
			ID:        r.ID,
			Name:      r.Name,
			MaxPlayer: game.MaxPlayers,
			CurPlayer: r.PlayerCount(),
			BigBlind:  r.Blind,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// remove drops a room from the directory. Called by the room's own
// actor as it exits, never from the outside, so a dying room can't
// race a join: the join either reaches the actor first or finds no
// room at all.
func (reg *Registry) remove(id int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, id)
}
