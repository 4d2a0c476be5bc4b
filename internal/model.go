package internal

import (
	"sync"
	"time"
)

const (
	MaxPlayersPerRoom = 8
	MinPlayersToStart = 2
	MaxRounds         = 3
	WordsToChoose     = 3
	RoomCodeLength    = 6
	MaxUsernameLength = 20
	MaxMessageLength  = 200
)

type GameState string

const (
	StateWaiting  GameState = "waiting"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
)

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}

// Room is one isolated game instance. Every field is guarded by Mu.
type Room struct {
	Id       string
	Code     string
	IsPublic bool

	// Players keyed by id, PlayerOrder keeps join order.
	Players     map[string]*Player
	PlayerOrder []string

	State     GameState
	CreatorId string

	// Turn Management
	TurnOrder          []string // frozen at game start, joiners appended
	CurrentDrawerId    string
	CurrentDrawerIndex int
	CurrentWord        string
	WordChoices        []string
	CorrectGuesses     int

	// Round Management
	RoundNumber int
	TurnNumber  int
	MaxRounds   int

	CreatedAt    time.Time
	LastActivity time.Time

	// Closed is set once the last player leaves or the room is swept.
	Closed bool

	Mu sync.Mutex
}

type Player struct {
	Id             string    `json:"id"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	GuessedCorrect bool      `json:"guessedCorrect"`
	JoinedAt       time.Time `json:"joinedAt"`
	ConnId         string    `json:"-"`
}

type PlayerInfo struct {
	Id             string `json:"id"`
	Username       string `json:"username"`
	Score          int    `json:"score"`
	GuessedCorrect bool   `json:"guessedCorrect"`
	IsDrawing      bool   `json:"isDrawing"`
	IsCreator      bool   `json:"isCreator"`
}

type Winner struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type LeaderboardEntry struct {
	PlayerId string `json:"playerId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

// TurnResult describes the turn that has just begun.
type TurnResult struct {
	DrawerId     string
	DrawerName   string
	DrawerConnId string
	WordChoices  []string
	RoundNumber  int
	MaxRounds    int
	TurnNumber   int
}

type WordSelection struct {
	Word     string
	WordHint string
}

type GameResult struct {
	Winners      []Winner
	Players      []PlayerInfo
	Leaderboard  []LeaderboardEntry
	RoundsPlayed int
}

// GameRecord is the persisted summary of a finished game.
type GameRecord struct {
	RoomId       string             `json:"roomId"`
	RoomCode     string             `json:"roomCode"`
	Winners      []Winner           `json:"winners"`
	Leaderboard  []LeaderboardEntry `json:"leaderboard"`
	RoundsPlayed int                `json:"roundsPlayed"`
	FinishedAt   time.Time          `json:"finishedAt"`
}

// RoomEvent is a lifecycle entry written to the room event journal.
type RoomEvent struct {
	RoomId  string    `json:"roomId"`
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}
