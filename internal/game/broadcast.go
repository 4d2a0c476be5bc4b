package game

import (
	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
)

// =============================================================================
// BROADCASTING
// =============================================================================

// Binding ties a live connection to the player it speaks for.
type Binding struct {
	RoomId   string
	PlayerId string
}

// Transport delivers messages to connections. Send and BroadcastToRoom must
// not block: a slow client loses messages rather than stalling the room.
type Transport interface {
	Send(connId string, msg any) bool
	BroadcastToRoom(roomId string, msg any, excludeConnId string)
	Bind(connId, roomId, playerId string)
	Unbind(connId string)
	Binding(connId string) (Binding, bool)
}

// Broadcaster wraps a Transport with the room level fan-out rules. Calls are
// made with room.Mu held so that every client observes a room's events in
// the order its state changed.
type Broadcaster struct {
	transport Transport
}

func NewBroadcaster(t Transport) *Broadcaster {
	return &Broadcaster{transport: t}
}

func (b *Broadcaster) ToConn(connId, msgType string, payload any) {
	if connId == "" {
		return
	}
	if !b.transport.Send(connId, internal.NewMessage(msgType, payload)) {
		log.Debug().Str("conn", connId).Str("type", msgType).Msg("[ToConn] message dropped")
	}
}

func (b *Broadcaster) ToPlayer(p *internal.Player, msgType string, payload any) {
	if p == nil {
		return
	}
	b.ToConn(p.ConnId, msgType, payload)
}

// SafeBroadcastToRoom sends to every connection bound to the room.
func (b *Broadcaster) SafeBroadcastToRoom(room *internal.Room, msgType string, payload any) {
	b.transport.BroadcastToRoom(room.Id, internal.NewMessage(msgType, payload), "")
}

// SafeBroadcastToRoomExcept skips one connection, usually the sender.
func (b *Broadcaster) SafeBroadcastToRoomExcept(room *internal.Room, excludeConnId, msgType string, payload any) {
	b.transport.BroadcastToRoom(room.Id, internal.NewMessage(msgType, payload), excludeConnId)
}

func (b *Broadcaster) PlayersUpdated(room *internal.Room) {
	b.SafeBroadcastToRoom(room, internal.TypePlayersUpdated, internal.PlayersUpdatedData{
		Players: room.PlayerInfos(),
	})
}

func (b *Broadcaster) Error(connId, message string) {
	b.ToConn(connId, internal.TypeError, internal.ErrorData{Message: message})
}
