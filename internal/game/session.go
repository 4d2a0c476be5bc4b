package game

import (
	"slices"
	"time"

	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/scythe504/skribblr-rooms/internal/utils"
)

// =============================================================================
// SESSION STATE MACHINE
// =============================================================================
// Every function here expects the caller to hold room.Mu. None of them
// broadcast or touch timers; they only move the room between states.

// WordSource supplies the word choices offered to each drawer.
type WordSource interface {
	Choices(n int) []string
}

// startGame freezes the turn order and hands the first turn to the earliest
// joiner. Returns false when the room has nobody to draw.
func startGame(room *internal.Room, words WordSource, now time.Time) (*internal.TurnResult, bool) {
	if room.CreatorId == "" || len(room.PlayerOrder) == 0 {
		return nil, false
	}

	room.State = internal.StatePlaying
	room.TurnOrder = slices.Clone(room.PlayerOrder)
	room.RoundNumber = 1
	room.TurnNumber = 0
	room.CurrentDrawerIndex = -1
	room.Touch(now)

	return beginTurn(room, 0, words), true
}

// beginTurn hands the turn to TurnOrder[idx] and offers fresh choices.
func beginTurn(room *internal.Room, idx int, words WordSource) *internal.TurnResult {
	room.CurrentDrawerIndex = idx
	room.CurrentDrawerId = room.TurnOrder[idx]
	room.TurnNumber++
	room.CurrentWord = ""
	room.WordChoices = words.Choices(internal.WordsToChoose)
	room.ResetPlayerGuessState()

	drawer := room.Players[room.CurrentDrawerId]
	return &internal.TurnResult{
		DrawerId:     drawer.Id,
		DrawerName:   drawer.Username,
		DrawerConnId: drawer.ConnId,
		WordChoices:  slices.Clone(room.WordChoices),
		RoundNumber:  room.RoundNumber,
		MaxRounds:    room.MaxRounds,
		TurnNumber:   room.TurnNumber,
	}
}

// selectWord fixes the secret word for the turn. An empty WordChoices after
// this call is the marker that selection has happened.
func selectWord(room *internal.Room, word string, now time.Time) (*internal.WordSelection, bool) {
	if room.State != internal.StatePlaying || len(room.WordChoices) == 0 {
		return nil, false
	}
	if !slices.Contains(room.WordChoices, word) {
		return nil, false
	}

	room.CurrentWord = word
	room.WordChoices = nil
	room.Touch(now)

	return &internal.WordSelection{
		Word:     word,
		WordHint: utils.WordHint(word),
	}, true
}

// nextTurn advances to the following drawer. Wrapping past the end of the
// turn order starts a new round, and wrapping past the last round ends the
// game, in which case the GameResult is returned instead.
func nextTurn(room *internal.Room, words WordSource, now time.Time) (*internal.TurnResult, *internal.GameResult) {
	if room.State != internal.StatePlaying {
		return nil, nil
	}
	room.Touch(now)

	if len(room.TurnOrder) == 0 {
		return nil, endGame(room)
	}

	next := room.CurrentDrawerIndex + 1
	if next >= len(room.TurnOrder) {
		next = 0
		if room.RoundNumber >= room.MaxRounds {
			return nil, endGame(room)
		}
		room.RoundNumber++
	}

	return beginTurn(room, next, words), nil
}

// endGame moves the room to finished and computes the winners.
func endGame(room *internal.Room) *internal.GameResult {
	room.State = internal.StateFinished
	room.CurrentWord = ""
	room.WordChoices = nil

	result := CalculateFinalResults(room)
	room.CurrentDrawerId = ""
	return result
}

// handleCorrectGuess scores a correct guess and returns the points awarded,
// or 0 when the player cannot score this turn.
func handleCorrectGuess(room *internal.Room, playerId string) int {
	player, ok := room.Players[playerId]
	if !ok || player.GuessedCorrect || playerId == room.CurrentDrawerId {
		return 0
	}

	player.GuessedCorrect = true
	room.CorrectGuesses++
	points := GuessPoints(room.CorrectGuesses)
	player.Score += points

	if drawer := room.CurrentDrawer(); drawer != nil {
		drawer.Score += DrawerBonus
	}
	return points
}
