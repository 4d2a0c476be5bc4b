package game

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
)

// =============================================================================
// GAME FLOW - ROUND MANAGEMENT
// =============================================================================
// Everything below runs with room.Mu held, either from a handler or from a
// scheduler callback.

func turnData(room *internal.Room, turn *internal.TurnResult) internal.TurnData {
	return internal.TurnData{
		Drawer:      turn.DrawerName,
		DrawerId:    turn.DrawerId,
		RoundNumber: turn.RoundNumber,
		MaxRounds:   turn.MaxRounds,
		Players:     room.PlayerInfos(),
	}
}

func (g *Game) handleSelectWord(connId string, raw json.RawMessage) error {
	payload, err := decodePayload[internal.SelectWordPayload](raw)
	if err != nil {
		return err
	}

	room, playerId := g.boundRoom(connId)
	if room == nil {
		return ErrNotInRoom
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed {
		return ErrRoomNotFound
	}
	if !room.IsDrawer(playerId) {
		return ErrNotYourTurn
	}
	return g.applyWordSelection(room, payload.Word)
}

// applyWordSelection commits the word, tells the drawer the word and
// everyone else the hint, then starts the round clock.
func (g *Game) applyWordSelection(room *internal.Room, word string) error {
	sel, ok := selectWord(room, word, g.now())
	if !ok {
		return ErrInvalidWord
	}
	g.timers.Cancel(room.Id, TimerWordSelection)

	drawer := room.CurrentDrawer()
	excludeConn := ""
	if drawer != nil {
		excludeConn = drawer.ConnId
		g.out.ToPlayer(drawer, internal.TypeWordSelected, internal.WordSelectedData{
			Word:     sel.Word,
			WordHint: sel.WordHint,
		})
	}
	g.out.SafeBroadcastToRoomExcept(room, excludeConn, internal.TypeWordSelected, internal.WordSelectedData{
		WordHint: sel.WordHint,
	})

	log.Debug().Str("room", room.Id).Int("turn", room.TurnNumber).Msg("[applyWordSelection] word selected")
	g.armRound(room)
	return nil
}

// armWordSelection auto-picks the first choice if the drawer stalls.
func (g *Game) armWordSelection(room *internal.Room) {
	turn := room.TurnNumber
	g.timers.Schedule(room, TimerWordSelection, g.cfg.WordSelectionTimeout, func() {
		if room.Closed || room.State != internal.StatePlaying || room.TurnNumber != turn || len(room.WordChoices) == 0 {
			return
		}
		log.Info().Str("room", room.Id).Str("word", room.WordChoices[0]).Msg("[armWordSelection] drawer timed out, auto-selecting")
		if err := g.applyWordSelection(room, room.WordChoices[0]); err != nil {
			log.Warn().Err(err).Str("room", room.Id).Msg("[armWordSelection] auto-select failed")
		}
	})
}

// armRound reveals the word when time runs out and advances after a short
// grace. Both steps are pinned to the turn they were armed for.
func (g *Game) armRound(room *internal.Room) {
	turn := room.TurnNumber
	g.timers.Schedule(room, TimerRound, g.cfg.RoundDuration, func() {
		if room.Closed || room.State != internal.StatePlaying || room.TurnNumber != turn || room.CurrentWord == "" {
			return
		}

		log.Debug().Str("room", room.Id).Int("turn", turn).Msg("[armRound] round time expired")
		g.out.SafeBroadcastToRoom(room, internal.TypeRoundEnded, internal.RoundEndedData{Word: room.CurrentWord})
		g.publish(room, EventRoundEnded, internal.RoundEndedData{Word: room.CurrentWord})

		g.scheduleAdvance(room, g.cfg.RoundEndGrace)
	})
}

// scheduleAdvance moves to the next turn after delay, unless the turn has
// already moved on. It occupies the round slot.
func (g *Game) scheduleAdvance(room *internal.Room, delay time.Duration) {
	turn := room.TurnNumber
	g.timers.Schedule(room, TimerRound, delay, func() {
		if room.Closed || room.State != internal.StatePlaying || room.TurnNumber != turn {
			return
		}
		g.advanceTurn(room)
	})
}

func (g *Game) handleNextTurn(connId string, _ json.RawMessage) error {
	room, playerId := g.boundRoom(connId)
	if room == nil {
		return ErrNotInRoom
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	switch {
	case room.Closed:
		return ErrRoomNotFound
	case room.State != internal.StatePlaying:
		return ErrGameNotInProgress
	case !room.IsDrawer(playerId):
		return ErrNotDrawer
	}

	g.advanceTurn(room)
	return nil
}

// advanceTurn cancels the current turn's timers and either announces the
// next turn or finishes the game.
func (g *Game) advanceTurn(room *internal.Room) {
	g.timers.Cancel(room.Id, TimerWordSelection)
	g.timers.Cancel(room.Id, TimerRound)

	turn, result := nextTurn(room, g.words, g.now())
	if result != nil {
		g.finishGame(room, result)
		return
	}
	if turn == nil {
		return
	}

	log.Info().Str("room", room.Id).Str("drawer", turn.DrawerId).Int("round", turn.RoundNumber).
		Int("turn", turn.TurnNumber).Msg("[advanceTurn] new turn")

	g.out.ToConn(turn.DrawerConnId, internal.TypeChooseWord, internal.ChooseWordData{
		WordChoices: turn.WordChoices,
		RoundNumber: turn.RoundNumber,
		MaxRounds:   turn.MaxRounds,
	})
	g.out.SafeBroadcastToRoom(room, internal.TypeNewTurn, turnData(room, turn))
	g.publish(room, EventTurnStarted, map[string]any{
		"drawerId": turn.DrawerId,
		"round":    turn.RoundNumber,
		"turn":     turn.TurnNumber,
	})

	g.armWordSelection(room)
}

func (g *Game) finishGame(room *internal.Room, result *internal.GameResult) {
	g.timers.CancelAll(room.Id)

	log.Info().Str("room", room.Id).Int("winners", len(result.Winners)).Int("rounds", result.RoundsPlayed).
		Msg("[finishGame] game ended")

	g.out.SafeBroadcastToRoom(room, internal.TypeGameEnded, internal.GameEndedData{
		Winners: result.Winners,
		Players: result.Players,
	})

	rec := internal.GameRecord{
		RoomId:       room.Id,
		RoomCode:     room.Code,
		Winners:      result.Winners,
		Leaderboard:  result.Leaderboard,
		RoundsPlayed: result.RoundsPlayed,
		FinishedAt:   g.now(),
	}
	g.publish(room, EventGameEnded, rec)
	go g.recordResult(rec)
}
