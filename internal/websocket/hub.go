package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal/game"
)

// MessageHandler consumes frames read from clients.
type MessageHandler interface {
	HandleMessage(connId string, raw []byte)
	HandleDisconnect(connId string)
}

// Hub tracks live connections and which room and player each one is bound
// to. It implements game.Transport.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	bindings map[string]game.Binding
	rooms    map[string]map[string]*Client // room id -> conn id -> client
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		bindings: make(map[string]game.Binding),
		rooms:    make(map[string]map[string]*Client),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.Id] = c
	log.Debug().Str("conn", c.Id).Int("clients", len(h.clients)).Msg("[Hub] client registered")
}

// unregister forgets the client and closes its send queue. Bindings are
// released separately by the game through Unbind.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.Id]; !ok {
		return
	}
	delete(h.clients, c.Id)
	h.unbindLocked(c.Id)
	close(c.send)
	log.Debug().Str("conn", c.Id).Int("clients", len(h.clients)).Msg("[Hub] client unregistered")
}

func (h *Hub) Bind(connId, roomId, playerId string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unbindLocked(connId)
	h.bindings[connId] = game.Binding{RoomId: roomId, PlayerId: playerId}

	c, ok := h.clients[connId]
	if !ok {
		return
	}
	members, ok := h.rooms[roomId]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[roomId] = members
	}
	members[connId] = c
}

func (h *Hub) Unbind(connId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unbindLocked(connId)
}

func (h *Hub) unbindLocked(connId string) {
	b, ok := h.bindings[connId]
	if !ok {
		return
	}
	delete(h.bindings, connId)

	if members, ok := h.rooms[b.RoomId]; ok {
		delete(members, connId)
		if len(members) == 0 {
			delete(h.rooms, b.RoomId)
		}
	}
}

func (h *Hub) Binding(connId string) (game.Binding, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.bindings[connId]
	return b, ok
}

// Send queues msg for one connection without blocking.
func (h *Hub) Send(connId string, msg any) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("conn", connId).Msg("[Hub] failed to marshal message")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connId]
	if !ok {
		return false
	}
	return c.enqueue(data)
}

// BroadcastToRoom queues msg for every connection bound to the room.
func (h *Hub) BroadcastToRoom(roomId string, msg any, excludeConnId string) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("room", roomId).Msg("[Hub] failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for connId, c := range h.rooms[roomId] {
		if connId == excludeConnId {
			continue
		}
		c.enqueue(data)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll shuts every client's queue, which makes their write pumps send a
// close frame and exit.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
	h.bindings = make(map[string]game.Binding)
	h.rooms = make(map[string]map[string]*Client)
}
