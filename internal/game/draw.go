package game

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
)

// =============================================================================
// DRAWING SYSTEM
// =============================================================================
// Strokes and clears from anyone but the current drawer are dropped without
// a reply.

// drawerRoom returns the locked room when connId belongs to its current
// drawer, or nil. The caller must unlock a non-nil result.
func (g *Game) drawerRoom(connId string) *internal.Room {
	room, playerId := g.boundRoom(connId)
	if room == nil {
		return nil
	}

	room.Mu.Lock()
	if room.Closed || !room.IsDrawer(playerId) {
		room.Mu.Unlock()
		log.Debug().Str("conn", connId).Msg("[drawerRoom] ignoring canvas event from non-drawer")
		return nil
	}
	return room
}

func (g *Game) handleDraw(connId string, raw json.RawMessage) error {
	room := g.drawerRoom(connId)
	if room == nil {
		return nil
	}
	defer room.Mu.Unlock()

	stroke, err := decodePayload[internal.DrawStroke](raw)
	if err != nil {
		return ErrInvalidStroke
	}
	stroke, err = stroke.Normalize()
	if err != nil {
		return ErrInvalidStroke
	}

	room.Touch(g.now())
	g.out.SafeBroadcastToRoomExcept(room, connId, internal.TypeDraw, stroke)
	return nil
}

func (g *Game) handleClearCanvas(connId string, _ json.RawMessage) error {
	room := g.drawerRoom(connId)
	if room == nil {
		return nil
	}
	defer room.Mu.Unlock()

	room.Touch(g.now())
	g.out.SafeBroadcastToRoom(room, internal.TypeClearCanvas, nil)
	return nil
}
