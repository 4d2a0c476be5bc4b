package game

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
)

// =============================================================================
// MESSAGE ROUTING
// =============================================================================

type handlerFunc func(g *Game, connId string, payload json.RawMessage) error

var handlers = map[string]handlerFunc{
	internal.TypeJoinRoom:    (*Game).handleJoinRoom,
	internal.TypeJoinByCode:  (*Game).handleJoinByCode,
	internal.TypeCreateRoom:  (*Game).handleCreateRoom,
	internal.TypeSyncState:   (*Game).handleSyncState,
	internal.TypeStartGame:   (*Game).handleStartGame,
	internal.TypeSelectWord:  (*Game).handleSelectWord,
	internal.TypeDraw:        (*Game).handleDraw,
	internal.TypeClearCanvas: (*Game).handleClearCanvas,
	internal.TypeSendMessage: (*Game).handleSendMessage,
	internal.TypeNextTurn:    (*Game).handleNextTurn,
}

// HandleMessage decodes one inbound frame and dispatches it. Failures are
// answered with an ERROR to the sending connection only.
func (g *Game) HandleMessage(connId string, raw []byte) {
	var baseMsg internal.Message[json.RawMessage]
	if err := json.Unmarshal(raw, &baseMsg); err != nil || baseMsg.Type == "" {
		log.Debug().Str("conn", connId).Msg("[HandleMessage] failed to parse base message")
		g.fail(connId, ErrInvalidMessageFormat)
		return
	}

	handle, ok := handlers[baseMsg.Type]
	if !ok {
		log.Debug().Str("conn", connId).Str("type", baseMsg.Type).Msg("[HandleMessage] unknown message type")
		g.fail(connId, ErrUnknownMessageType)
		return
	}

	if err := handle(g, connId, baseMsg.Payload); err != nil {
		g.fail(connId, err)
	}
}

func (g *Game) fail(connId string, err error) {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		log.Debug().Str("conn", connId).Str("kind", gameErr.Kind.String()).Msg(gameErr.Message)
		g.out.Error(connId, gameErr.Message)
		return
	}

	log.Error().Err(err).Str("conn", connId).Msg("[HandleMessage] unexpected error")
	g.out.Error(connId, "Internal server error")
}

// decodePayload unmarshals an optional payload; a missing or null payload
// yields the zero value.
func decodePayload[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, ErrInvalidPayload
	}
	return payload, nil
}

// boundRoom resolves the room and player a connection is bound to. A nil
// room means the connection is not in one.
func (g *Game) boundRoom(connId string) (*internal.Room, string) {
	b, ok := g.conns.Binding(connId)
	if !ok {
		return nil, ""
	}
	return g.rooms.GetRoom(b.RoomId), b.PlayerId
}
