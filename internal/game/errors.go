package game

// ErrorKind groups client-facing failures.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindAuthorization
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a failure reported back to the sending connection. Message is
// shown to the player as-is.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrInvalidMessageFormat = newError(KindValidation, "Invalid message format")
	ErrUnknownMessageType   = newError(KindValidation, "Unknown message type")
	ErrInvalidPayload       = newError(KindValidation, "Invalid payload")
	ErrUsernameRequired     = newError(KindValidation, "Username is required")
	ErrCodeRequired         = newError(KindValidation, "Username and code are required")
	ErrSyncFieldsRequired   = newError(KindValidation, "Room ID and player ID are required")
	ErrMessageRequired      = newError(KindValidation, "Message is required")
	ErrInvalidWord          = newError(KindValidation, "Invalid word selection")
	ErrInvalidStroke        = newError(KindValidation, "Invalid draw data")

	ErrInvalidRoomCode = newError(KindNotFound, "Invalid room code")
	ErrRoomNotFound    = newError(KindNotFound, "Room not found")
	ErrPlayerNotFound  = newError(KindNotFound, "Player not found")
	ErrNotInRoom       = newError(KindNotFound, "Not in a room")

	ErrNotYourTurn = newError(KindAuthorization, "Not your turn to select word")
	ErrNotDrawer   = newError(KindAuthorization, "Only current drawer can advance turn")

	ErrRoomFull           = newError(KindConflict, "Room is full")
	ErrNoRoomAvailable    = newError(KindConflict, "Room is full or could not join")
	ErrGameFinished       = newError(KindConflict, "Game has already finished")
	ErrGameAlreadyStarted = newError(KindConflict, "Game has already started")
	ErrGameNotInProgress  = newError(KindConflict, "Game is not in progress")
	ErrNotEnoughPlayers   = newError(KindConflict, "Need at least 2 players to start")
	ErrStartFailed        = newError(KindConflict, "Failed to start game")
	ErrCreateFailed       = newError(KindConflict, "Failed to create room")
)
