package game

import (
	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
)

// =============================================================================
// ROOM MANAGEMENT - DEPARTURES & CLEANUP
// =============================================================================

// HandleDisconnect is called by the transport once a connection is gone.
func (g *Game) HandleDisconnect(connId string) {
	b, ok := g.conns.Binding(connId)
	g.conns.Unbind(connId)
	if !ok {
		return
	}
	g.removePlayer(b.RoomId, b.PlayerId, connId)
}

// removePlayer takes the player out of the room, repairs the turn if the
// drawer left, and deletes the room once it is empty. A stale connection
// whose player has since been rebound to another connection is ignored.
func (g *Game) removePlayer(roomId, playerId, connId string) {
	room := g.rooms.GetRoom(roomId)
	if room == nil {
		return
	}

	if empty := g.removeFromRoom(room, playerId, connId); empty {
		if g.rooms.DeleteRoom(room.Id) {
			room.Mu.Lock()
			g.publish(room, EventRoomDeleted, map[string]any{"reason": "empty"})
			room.Mu.Unlock()
		}
	}
}

// removeFromRoom reports whether the room was left empty and closed.
func (g *Game) removeFromRoom(room *internal.Room, playerId, connId string) bool {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed {
		return false
	}
	player, ok := room.Players[playerId]
	if !ok || (connId != "" && player.ConnId != connId) {
		return false
	}

	wasDrawer := room.IsDrawer(playerId)
	room.RemovePlayer(playerId, g.now())

	log.Info().Str("room", room.Id).Str("player", playerId).Bool("drawer", wasDrawer).
		Int("remaining", room.PlayerCount()).Msg("[removePlayer] player left")
	g.publish(room, EventPlayerLeft, internal.PlayerLeftData{PlayerId: player.Id, Username: player.Username})

	if room.PlayerCount() == 0 {
		room.Closed = true
		g.timers.CancelAll(room.Id)
		return true
	}

	g.out.PlayersUpdated(room)
	g.out.SafeBroadcastToRoom(room, internal.TypePlayerLeft, internal.PlayerLeftData{
		PlayerId: player.Id,
		Username: player.Username,
	})

	switch room.State {
	case internal.StatePlaying:
		if wasDrawer {
			g.advanceTurn(room)
		} else if room.CurrentWord != "" && room.HasEveryoneGuessed() {
			g.timers.Cancel(room.Id, TimerRound)
			g.scheduleAdvance(room, g.cfg.AllGuessedGrace)
		}
	case internal.StateWaiting:
		if room.PlayerCount() < internal.MinPlayersToStart && g.timers.Cancel(room.Id, TimerAutoStart) {
			g.out.SafeBroadcastToRoom(room, internal.TypeAutoStartCancelled, nil)
		}
	}
	return false
}

// Sweep removes rooms idle for longer than RoomTTL, releasing their timers
// and connection bindings. It returns how many rooms were removed.
func (g *Game) Sweep() int {
	expired := g.rooms.Sweep(g.now(), g.cfg.RoomTTL)
	for _, room := range expired {
		g.timers.CancelAll(room.Id)

		room.Mu.Lock()
		for _, p := range room.OrderedPlayers() {
			if p.ConnId != "" {
				g.out.Error(p.ConnId, "Room closed due to inactivity")
				g.conns.Unbind(p.ConnId)
			}
		}
		g.publish(room, EventRoomDeleted, map[string]any{"reason": "idle"})
		room.Mu.Unlock()

		log.Info().Str("room", room.Id).Msg("[Sweep] idle room removed")
	}
	return len(expired)
}
