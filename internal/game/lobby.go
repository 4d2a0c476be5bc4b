package game

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/scythe504/skribblr-rooms/internal/utils"
)

// =============================================================================
// GAME FLOW - LOBBY & INITIALIZATION
// =============================================================================

// joinAttempts bounds retries when a public room fills or closes between
// being picked and being locked.
const joinAttempts = 3

func (g *Game) handleJoinRoom(connId string, raw json.RawMessage) error {
	payload, err := decodePayload[internal.JoinRoomPayload](raw)
	if err != nil {
		return err
	}
	username := utils.SanitizeUsername(payload.Username)
	if username == "" {
		return ErrUsernameRequired
	}

	g.leaveCurrentRoom(connId)

	for attempt := 0; attempt < joinAttempts; attempt++ {
		room, created := g.rooms.FindOrCreateAvailableRoom()
		if created {
			g.announceRoomCreated(room)
		}

		err := g.joinRoom(connId, room, username)
		if errors.Is(err, ErrRoomFull) || errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrGameFinished) {
			log.Debug().Str("room", room.Id).Int("attempt", attempt).Msg("[handleJoinRoom] room no longer available, retrying")
			continue
		}
		return err
	}
	return ErrNoRoomAvailable
}

func (g *Game) handleJoinByCode(connId string, raw json.RawMessage) error {
	payload, err := decodePayload[internal.JoinByCodePayload](raw)
	if err != nil {
		return err
	}
	username := utils.SanitizeUsername(payload.Username)
	code := utils.NormalizeRoomCode(payload.Code)
	if username == "" || code == "" {
		return ErrCodeRequired
	}

	if !utils.IsValidRoomCode(code) {
		return ErrInvalidRoomCode
	}
	room := g.rooms.GetRoomByCode(code)
	if room == nil {
		return ErrInvalidRoomCode
	}

	g.leaveCurrentRoom(connId)
	return g.joinRoom(connId, room, username)
}

func (g *Game) handleCreateRoom(connId string, raw json.RawMessage) error {
	payload, err := decodePayload[internal.CreateRoomPayload](raw)
	if err != nil {
		return err
	}
	username := utils.SanitizeUsername(payload.Username)
	if username == "" {
		return ErrUsernameRequired
	}

	g.leaveCurrentRoom(connId)

	room := g.rooms.CreateRoom(false)
	g.announceRoomCreated(room)

	if err := g.joinRoom(connId, room, username); err != nil {
		log.Error().Err(err).Str("room", room.Id).Msg("[handleCreateRoom] creator could not join new room")
		g.rooms.DeleteRoom(room.Id)
		return ErrCreateFailed
	}
	return nil
}

func (g *Game) announceRoomCreated(room *internal.Room) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	g.publish(room, EventRoomCreated, map[string]any{"code": room.Code, "public": room.IsPublic})
}

// joinRoom adds a new player for connId to room and sends the join
// notifications. Rooms that are already playing accept the player as a
// guesser queued for a later turn.
func (g *Game) joinRoom(connId string, room *internal.Room, username string) error {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	switch {
	case room.Closed:
		return ErrRoomNotFound
	case room.State == internal.StateFinished:
		return ErrGameFinished
	case room.IsFull():
		return ErrRoomFull
	}

	now := g.now()
	player := internal.NewPlayer(utils.GenerateID(), username, connId, now)
	room.AddPlayer(player, now)
	g.conns.Bind(connId, room.Id, player.Id)

	log.Info().Str("room", room.Id).Str("player", player.Id).Str("username", username).
		Int("players", room.PlayerCount()).Msg("[joinRoom] player joined")

	g.out.ToConn(connId, internal.TypeRoomJoined, g.roomJoinedData(room, player))
	g.out.PlayersUpdated(room)
	g.out.SafeBroadcastToRoomExcept(room, connId, internal.TypePlayerJoined, internal.PlayerJoinedData{
		PlayerId: player.Id,
		Username: player.Username,
	})
	g.publish(room, EventPlayerJoined, internal.PlayerJoinedData{PlayerId: player.Id, Username: player.Username})

	// Each arrival restarts the countdown so late joiners get the full window.
	if room.CanStartGame() {
		g.armAutoStart(room)
	}
	return nil
}

func (g *Game) roomJoinedData(room *internal.Room, player *internal.Player) internal.RoomJoinedData {
	data := internal.RoomJoinedData{
		RoomId:      room.Id,
		RoomCode:    room.Code,
		PlayerId:    player.Id,
		Players:     room.PlayerInfos(),
		CreatorName: room.CreatorName(),
		GameStarted: room.State == internal.StatePlaying,
		RoundNumber: room.RoundNumber,
		MaxRounds:   room.MaxRounds,
	}
	if drawer := room.CurrentDrawer(); drawer != nil && room.State == internal.StatePlaying {
		data.CurrentDrawer = drawer.Username
		data.CurrentDrawerId = drawer.Id
		data.WordHint = utils.WordHint(room.CurrentWord)
	}
	return data
}

// handleSyncState rebinds an existing player to a new connection, typically
// after a client reconnects.
func (g *Game) handleSyncState(connId string, raw json.RawMessage) error {
	payload, err := decodePayload[internal.SyncStatePayload](raw)
	if err != nil {
		return err
	}
	if payload.RoomId == "" || payload.PlayerId == "" {
		return ErrSyncFieldsRequired
	}

	if b, ok := g.conns.Binding(connId); ok && (b.RoomId != payload.RoomId || b.PlayerId != payload.PlayerId) {
		g.leaveCurrentRoom(connId)
	}

	room := g.rooms.GetRoom(payload.RoomId)
	if room == nil {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed {
		return ErrRoomNotFound
	}
	player, ok := room.Players[payload.PlayerId]
	if !ok {
		return ErrPlayerNotFound
	}

	if player.ConnId != "" && player.ConnId != connId {
		g.conns.Unbind(player.ConnId)
	}
	player.ConnId = connId
	g.conns.Bind(connId, room.Id, player.Id)
	room.Touch(g.now())

	data := internal.StateSyncedData{
		RoomId:      room.Id,
		RoomCode:    room.Code,
		Players:     room.PlayerInfos(),
		GameStarted: room.State == internal.StatePlaying,
		RoundNumber: room.RoundNumber,
		MaxRounds:   room.MaxRounds,
		CreatorName: room.CreatorName(),
	}
	if drawer := room.CurrentDrawer(); drawer != nil && room.State == internal.StatePlaying {
		data.CurrentDrawer = drawer.Username
		data.CurrentDrawerId = drawer.Id
		data.WordHint = utils.WordHint(room.CurrentWord)
		if drawer.Id == player.Id {
			data.CurrentWord = room.CurrentWord
		}
	}
	g.out.ToConn(connId, internal.TypeStateSynced, data)

	// A drawer reconnecting before choosing needs the choices again.
	if room.IsDrawer(player.Id) && len(room.WordChoices) > 0 {
		g.out.ToConn(connId, internal.TypeChooseWord, internal.ChooseWordData{
			WordChoices: room.WordChoices,
			RoundNumber: room.RoundNumber,
			MaxRounds:   room.MaxRounds,
		})
	}
	return nil
}

func (g *Game) handleStartGame(connId string, _ json.RawMessage) error {
	room, _ := g.boundRoom(connId)
	if room == nil {
		return ErrNotInRoom
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	switch {
	case room.Closed:
		return ErrRoomNotFound
	case room.State != internal.StateWaiting:
		return ErrGameAlreadyStarted
	case room.PlayerCount() < internal.MinPlayersToStart:
		return ErrNotEnoughPlayers
	}

	g.timers.Cancel(room.Id, TimerAutoStart)
	if !g.beginGame(room) {
		return ErrStartFailed
	}
	return nil
}

// beginGame starts play and announces the first turn. Caller holds room.Mu.
func (g *Game) beginGame(room *internal.Room) bool {
	turn, ok := startGame(room, g.words, g.now())
	if !ok {
		log.Warn().Str("room", room.Id).Msg("[beginGame] room has no creator or players")
		return false
	}

	log.Info().Str("room", room.Id).Str("drawer", turn.DrawerId).Int("players", room.PlayerCount()).
		Msg("[beginGame] game started")

	g.out.ToConn(turn.DrawerConnId, internal.TypeChooseWord, internal.ChooseWordData{
		WordChoices: turn.WordChoices,
		RoundNumber: turn.RoundNumber,
		MaxRounds:   turn.MaxRounds,
	})
	g.out.SafeBroadcastToRoom(room, internal.TypeGameStarted, turnData(room, turn))
	g.publish(room, EventGameStarted, map[string]any{"drawerId": turn.DrawerId, "players": room.PlayerCount()})

	g.armWordSelection(room)
	return true
}

// armAutoStart announces the countdown and starts the game when it reaches
// zero if the room is still eligible. Caller holds room.Mu.
func (g *Game) armAutoStart(room *internal.Room) {
	from := g.cfg.AutoStartCountdown
	g.out.SafeBroadcastToRoom(room, internal.TypeAutoStartCountdown, internal.CountdownData{Countdown: from})

	g.timers.Countdown(room, TimerAutoStart, from, g.cfg.CountdownInterval,
		func(remaining int) {
			if room.Closed {
				return
			}
			g.out.SafeBroadcastToRoom(room, internal.TypeAutoStartCountdown, internal.CountdownData{Countdown: remaining})
		},
		func() {
			if !room.Closed && room.CanStartGame() {
				g.beginGame(room)
			}
		},
	)
}

// leaveCurrentRoom removes the player a connection speaks for before the
// connection joins somewhere else.
func (g *Game) leaveCurrentRoom(connId string) {
	b, ok := g.conns.Binding(connId)
	if !ok {
		return
	}
	g.conns.Unbind(connId)
	g.removePlayer(b.RoomId, b.PlayerId, connId)
}
