package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/scythe504/skribblr-rooms/internal/utils"
)

// =============================================================================
// ROOM REGISTRY
// =============================================================================

// Registry owns every active room, indexed by id and by join code.
// Lock order is registry before room; nothing holding a room lock may call
// back into the registry.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*internal.Room
	codes  map[string]string // code -> room id
	order  []string          // creation order, for FindAvailableRoom
	now    func() time.Time
	codeFn func() string
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*internal.Room),
		codes:  make(map[string]string),
		now:    time.Now,
		codeFn: utils.GenerateRoomCode,
	}
}

// CreateRoom registers an empty room with a fresh id and a code unique among
// active rooms.
func (r *Registry) CreateRoom(isPublic bool) *internal.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(isPublic)
}

func (r *Registry) createLocked(isPublic bool) *internal.Room {
	code := r.codeFn()
	for {
		if _, taken := r.codes[code]; !taken {
			break
		}
		code = r.codeFn()
	}

	room := internal.NewRoom(utils.GenerateID(), code, isPublic, r.now())
	r.rooms[room.Id] = room
	r.codes[code] = room.Id
	r.order = append(r.order, room.Id)

	log.Info().Str("room", room.Id).Str("code", code).Bool("public", isPublic).Msg("[CreateRoom] room created")
	return room
}

func (r *Registry) GetRoom(id string) *internal.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[id]
}

func (r *Registry) GetRoomByCode(code string) *internal.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.codes[utils.NormalizeRoomCode(code)]
	if !ok {
		return nil
	}
	return r.rooms[id]
}

// FindAvailableRoom returns the public, unfinished room with a free seat that
// has the most players, oldest first on ties, or nil.
func (r *Registry) FindAvailableRoom() *internal.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findAvailableLocked()
}

func (r *Registry) findAvailableLocked() *internal.Room {
	var (
		best      *internal.Room
		bestCount int
	)
	for _, id := range r.order {
		room := r.rooms[id]
		if room == nil {
			continue
		}

		room.Mu.Lock()
		ok := room.IsPublic && !room.Closed && room.State != internal.StateFinished && !room.IsFull()
		count, createdAt := room.PlayerCount(), room.CreatedAt
		room.Mu.Unlock()

		if !ok {
			continue
		}
		if best == nil || count > bestCount || (count == bestCount && createdAt.Before(best.CreatedAt)) {
			best, bestCount = room, count
		}
	}
	return best
}

// FindOrCreateAvailableRoom is FindAvailableRoom falling back to a new public
// room, done under one registry lock so concurrent joiners share a room.
func (r *Registry) FindOrCreateAvailableRoom() (*internal.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room := r.findAvailableLocked(); room != nil {
		return room, false
	}
	return r.createLocked(true), true
}

func (r *Registry) DeleteRoom(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(id)
}

func (r *Registry) deleteLocked(id string) bool {
	room, ok := r.rooms[id]
	if !ok {
		return false
	}
	delete(r.rooms, id)
	if r.codes[room.Code] == id {
		delete(r.codes, room.Code)
	}
	for i, rid := range r.order {
		if rid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	log.Info().Str("room", id).Msg("[DeleteRoom] room removed")
	return true
}

// Rooms returns the active rooms in creation order.
func (r *Registry) Rooms() []*internal.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*internal.Room, 0, len(r.order))
	for _, id := range r.order {
		if room := r.rooms[id]; room != nil {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

type Stats struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{Rooms: len(r.rooms)}
	for _, room := range r.rooms {
		room.Mu.Lock()
		stats.Players += room.PlayerCount()
		room.Mu.Unlock()
	}
	return stats
}

// Sweep removes and closes every room idle for longer than ttl and returns
// them so the caller can release their timers and connections.
func (r *Registry) Sweep(now time.Time, ttl time.Duration) []*internal.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []*internal.Room
	for _, id := range append([]string(nil), r.order...) {
		room := r.rooms[id]
		if room == nil {
			continue
		}

		room.Mu.Lock()
		stale := now.Sub(room.LastActivity) > ttl
		if stale {
			room.Closed = true
		}
		room.Mu.Unlock()

		if stale {
			r.deleteLocked(id)
			expired = append(expired, room)
		}
	}
	return expired
}
