package utils

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/scythe504/skribblr-rooms/internal"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// WordHint reveals the first and last letter of every space separated word
// and masks the rest, e.g. "Ice Cream" becomes "I _ e   C _ _ _ m".
func WordHint(word string) string {
	if word == "" {
		return ""
	}

	runes := []rune(word)
	hinted := make([]string, len(runes))
	for i, r := range runes {
		switch {
		case r == ' ':
			hinted[i] = " "
		case i == 0 || runes[i-1] == ' ':
			hinted[i] = string(r)
		case i == len(runes)-1 || runes[i+1] == ' ':
			hinted[i] = string(r)
		default:
			hinted[i] = "_"
		}
	}
	return strings.Join(hinted, " ")
}

func GenerateRoomCode() string {
	rngMu.Lock()
	defer rngMu.Unlock()

	code := make([]byte, internal.RoomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rng.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}

func GenerateID() string {
	return uuid.NewString()
}

// TruncateRunes cuts s down to at most n characters.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func SanitizeUsername(name string) string {
	return strings.TrimSpace(TruncateRunes(strings.TrimSpace(name), internal.MaxUsernameLength))
}

func SanitizeMessage(msg string) string {
	return strings.TrimSpace(TruncateRunes(strings.TrimSpace(msg), internal.MaxMessageLength))
}

func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func IsValidRoomCode(code string) bool {
	if len(code) != internal.RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(roomCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
