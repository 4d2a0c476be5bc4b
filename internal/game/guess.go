package game

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/scythe504/skribblr-rooms/internal/utils"
)

// =============================================================================
// GUESSING & CHAT
// =============================================================================

func (g *Game) handleSendMessage(connId string, raw json.RawMessage) error {
	payload, err := decodePayload[internal.SendMessagePayload](raw)
	if err != nil {
		return err
	}
	if payload.Message == nil {
		return ErrMessageRequired
	}

	room, playerId := g.boundRoom(connId)
	if room == nil {
		return nil
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	player, ok := room.Players[playerId]
	if room.Closed || !ok {
		return nil
	}

	text := utils.SanitizeMessage(*payload.Message)
	if text == "" {
		return nil
	}

	now := g.now()
	room.Touch(now)
	msg := internal.NewChatMessage(player, text, now)

	if room.State != internal.StatePlaying || room.CurrentWord == "" || room.CurrentDrawerId == player.Id {
		g.out.SafeBroadcastToRoom(room, internal.TypeMessage, msg)
		return nil
	}

	if !player.GuessedCorrect && strings.EqualFold(text, room.CurrentWord) {
		g.handleCorrectGuess(room, player, msg)
		return nil
	}

	// Misses, and chatter from players who already know the word, stay
	// between the sender and those who know the word.
	g.sendToSolvers(room, player, msg, nil)
	return nil
}

func (g *Game) handleCorrectGuess(room *internal.Room, player *internal.Player, msg internal.ChatMessageData) {
	points := handleCorrectGuess(room, player.Id)
	if points == 0 {
		return
	}

	log.Info().Str("room", room.Id).Str("player", player.Id).Int("points", points).
		Int("correct", room.CorrectGuesses).Msg("[handleCorrectGuess] correct guess")

	g.out.SafeBroadcastToRoom(room, internal.TypeCorrectGuess, internal.CorrectGuessData{
		Username: player.Username,
		PlayerId: player.Id,
		Points:   points,
	})
	g.out.PlayersUpdated(room)

	literal := msg
	literal.IsCorrect = true
	masked := literal
	masked.Message = internal.MaskedGuessText
	g.sendToSolvers(room, player, literal, &masked)

	g.publish(room, EventCorrectGuess, internal.CorrectGuessData{
		Username: player.Username,
		PlayerId: player.Id,
		Points:   points,
	})

	if room.HasEveryoneGuessed() {
		log.Debug().Str("room", room.Id).Msg("[handleCorrectGuess] everyone guessed, ending turn early")
		g.timers.Cancel(room.Id, TimerRound)
		g.scheduleAdvance(room, g.cfg.AllGuessedGrace)
	}
}

// sendToSolvers delivers literal to the drawer, to every player who has
// guessed the word, and to the sender. Everyone else receives masked, or
// nothing when masked is nil.
func (g *Game) sendToSolvers(room *internal.Room, sender *internal.Player, literal internal.ChatMessageData, masked *internal.ChatMessageData) {
	for _, p := range room.OrderedPlayers() {
		switch {
		case p.Id == room.CurrentDrawerId || p.GuessedCorrect || p.Id == sender.Id:
			g.out.ToPlayer(p, internal.TypeMessage, literal)
		case masked != nil:
			g.out.ToPlayer(p, internal.TypeMessage, *masked)
		}
	}
}
