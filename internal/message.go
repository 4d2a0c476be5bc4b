package internal

import "time"

type Message[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

func NewMessage(msgType string, payload any) Message[any] {
	if payload == nil {
		payload = struct{}{}
	}
	return Message[any]{Type: msgType, Payload: payload}
}

// Inbound message types
const (
	TypeJoinRoom    = "JOIN_ROOM"
	TypeJoinByCode  = "JOIN_BY_CODE"
	TypeCreateRoom  = "CREATE_ROOM"
	TypeSyncState   = "SYNC_STATE"
	TypeStartGame   = "START_GAME"
	TypeSelectWord  = "SELECT_WORD"
	TypeDraw        = "DRAW"
	TypeClearCanvas = "CLEAR_CANVAS"
	TypeSendMessage = "SEND_MESSAGE"
	TypeNextTurn    = "NEXT_TURN"
)

// Outbound message types
const (
	TypeRoomJoined         = "ROOM_JOINED"
	TypeStateSynced        = "STATE_SYNCED"
	TypePlayersUpdated     = "PLAYERS_UPDATED"
	TypePlayerJoined       = "PLAYER_JOINED"
	TypePlayerLeft         = "PLAYER_LEFT"
	TypeGameStarted        = "GAME_STARTED"
	TypeChooseWord         = "CHOOSE_WORD"
	TypeWordSelected       = "WORD_SELECTED"
	TypeNewTurn            = "NEW_TURN"
	TypeMessage            = "MESSAGE"
	TypeCorrectGuess       = "CORRECT_GUESS"
	TypeRoundEnded         = "ROUND_ENDED"
	TypeGameEnded          = "GAME_ENDED"
	TypeAutoStartCountdown = "AUTO_START_COUNTDOWN"
	TypeAutoStartCancelled = "AUTO_START_CANCELLED"
	TypeError              = "ERROR"
)

// MaskedGuessText replaces a correct guess for players still guessing.
const MaskedGuessText = "*** Guessed correctly! ***"

// ===== INBOUND PAYLOADS =====

type JoinRoomPayload struct {
	Username string `json:"username"`
}

type JoinByCodePayload struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type CreateRoomPayload struct {
	Username string `json:"username"`
}

type SyncStatePayload struct {
	RoomId   string `json:"roomId"`
	PlayerId string `json:"playerId"`
}

type SelectWordPayload struct {
	Word string `json:"word"`
}

type SendMessagePayload struct {
	Message *string `json:"message"`
}

// ===== OUTBOUND PAYLOADS =====

type RoomJoinedData struct {
	RoomId          string       `json:"roomId"`
	RoomCode        string       `json:"roomCode"`
	PlayerId        string       `json:"playerId"`
	Players         []PlayerInfo `json:"players"`
	CreatorName     string       `json:"creatorName"`
	GameStarted     bool         `json:"gameStarted"`
	CurrentDrawer   string       `json:"currentDrawer,omitempty"`
	CurrentDrawerId string       `json:"currentDrawerId,omitempty"`
	WordHint        string       `json:"wordHint,omitempty"`
	RoundNumber     int          `json:"roundNumber"`
	MaxRounds       int          `json:"maxRounds"`
}

type StateSyncedData struct {
	RoomId          string       `json:"roomId"`
	RoomCode        string       `json:"roomCode"`
	Players         []PlayerInfo `json:"players"`
	GameStarted     bool         `json:"gameStarted"`
	CurrentDrawer   string       `json:"currentDrawer,omitempty"`
	CurrentDrawerId string       `json:"currentDrawerId,omitempty"`
	WordHint        string       `json:"wordHint,omitempty"`
	CurrentWord     string       `json:"currentWord,omitempty"` // drawer only
	RoundNumber     int          `json:"roundNumber"`
	MaxRounds       int          `json:"maxRounds"`
	CreatorName     string       `json:"creatorName"`
}

type PlayersUpdatedData struct {
	Players []PlayerInfo `json:"players"`
}

type PlayerJoinedData struct {
	PlayerId string `json:"playerId"`
	Username string `json:"username"`
}

type PlayerLeftData struct {
	PlayerId string `json:"playerId"`
	Username string `json:"username"`
}

type TurnData struct {
	Drawer      string       `json:"drawer"`
	DrawerId    string       `json:"drawerId"`
	RoundNumber int          `json:"roundNumber"`
	MaxRounds   int          `json:"maxRounds"`
	Players     []PlayerInfo `json:"players"`
}

type ChooseWordData struct {
	WordChoices []string `json:"wordChoices"`
	RoundNumber int      `json:"roundNumber"`
	MaxRounds   int      `json:"maxRounds"`
}

type WordSelectedData struct {
	Word     string `json:"word,omitempty"`
	WordHint string `json:"wordHint"`
}

type ChatMessageData struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	PlayerId  string `json:"playerId"`
	Timestamp int64  `json:"timestamp"`
	IsCorrect bool   `json:"isCorrect,omitempty"`
}

type CorrectGuessData struct {
	Username string `json:"username"`
	PlayerId string `json:"playerId"`
	Points   int    `json:"points"`
}

type RoundEndedData struct {
	Word string `json:"word"`
}

type GameEndedData struct {
	Winners []Winner     `json:"winners"`
	Players []PlayerInfo `json:"players"`
}

type CountdownData struct {
	Countdown int `json:"countdown"`
}

type ErrorData struct {
	Message string `json:"message"`
}

func NewChatMessage(p *Player, text string, at time.Time) ChatMessageData {
	return ChatMessageData{
		Username:  p.Username,
		Message:   text,
		PlayerId:  p.Id,
		Timestamp: at.UnixMilli(),
	}
}
