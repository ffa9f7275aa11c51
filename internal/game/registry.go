package game

import (
	"crypto/rand"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
)

var (
	ErrTooManyRooms = errors.New("Maximum number of rooms reached")
	ErrCodeTaken    = errors.New("room code collision")
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// Registry owns the set of live rooms. Lookups and listings read the rooms'
// published summaries, so they never touch a room's serialized section.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	maxRooms int
	policy   Policy
	deps     Deps
	log      zerolog.Logger
}

func NewRegistry(maxRooms int, policy Policy, deps Deps) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		maxRooms: maxRooms,
		policy:   policy,
		deps:     deps,
		log:      deps.Logger.With().Str("component", "registry").Logger(),
	}
}

// Create allocates a room with a fresh code and a reserved host seat. The
// returned player id is the host's: the creator claims it over the websocket
// before the grace window ages it out. An empty password leaves the room open.
func (reg *Registry) Create(hostName, password string) (*Room, int, error) {
	hash := ""
	if password != "" {
		var err error
		hash, err = argon2id.CreateHash(password, argon2id.DefaultParams)
		if err != nil {
			return nil, 0, err
		}
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(reg.rooms) >= reg.maxRooms {
		return nil, 0, ErrTooManyRooms
	}

	code, err := reg.newCode()
	if err != nil {
		return nil, 0, err
	}

	room, hostID := newRoom(code, hostName, hash, reg.policy, reg.deps)
	reg.rooms[code] = room
	go room.run()

	reg.log.Info().Str("room", code).Str("host", hostName).Msg("room created")
	return room, hostID, nil
}

// Get returns the live room for a code, or nil.
func (reg *Registry) Get(code string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[code]
}

// ListPublic returns summaries of rooms that are joinable without a
// password, newest first.
func (reg *Registry) ListPublic() []RoomInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	out := make([]RoomInfo, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		info := room.Info()
		if info.HasPassword {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Stats returns the live room and connection totals for health reporting.
func (reg *Registry) Stats() (rooms, connections int) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	for _, room := range reg.rooms {
		connections += room.Info().Connected
	}
	return len(reg.rooms), connections
}

// Reap closes rooms with no live connections for at least maxIdle, and
// finished rooms regardless of occupancy once they idle out. Returns the
// number of rooms removed.
func (reg *Registry) Reap(maxIdle time.Duration) int {
	now := reg.deps.Clock.Now()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	n := 0
	for code, room := range reg.rooms {
		info := room.Info()
		if info.EmptySince.IsZero() || now.Sub(info.EmptySince) < maxIdle {
			continue
		}
		room.Close()
		delete(reg.rooms, code)
		n++
		reg.log.Info().Str("room", code).Msg("room reaped")
	}
	return n
}

// RunReaper sweeps on the given interval until stop is closed.
func (reg *Registry) RunReaper(interval, maxIdle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			reg.Reap(maxIdle)
		case <-stop:
			return
		}
	}
}

// CloseAll shuts every room down. Used on server shutdown.
func (reg *Registry) CloseAll() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for code, room := range reg.rooms {
		room.Close()
		delete(reg.rooms, code)
	}
}

// newCode draws random codes until one is unused. Caller holds the lock.
func (reg *Registry) newCode() (string, error) {
	buf := make([]byte, codeLength)
	for range 100 {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i := range buf {
			buf[i] = codeCharset[int(buf[i])%len(codeCharset)]
		}
		code := string(buf)
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeTaken
}
