package game

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	Type    string
	Payload any
}

// fakeTransport records every message per connection.
type fakeTransport struct {
	mu       sync.Mutex
	bindings map[string]Binding
	inbox    map[string][]sentMessage
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		bindings: make(map[string]Binding),
		inbox:    make(map[string][]sentMessage),
	}
}

func (f *fakeTransport) record(connId string, msg any) {
	m := msg.(internal.Message[any])
	f.inbox[connId] = append(f.inbox[connId], sentMessage{Type: m.Type, Payload: m.Payload})
}

func (f *fakeTransport) Send(connId string, msg any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(connId, msg)
	return true
}

func (f *fakeTransport) BroadcastToRoom(roomId string, msg any, excludeConnId string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for connId, b := range f.bindings {
		if b.RoomId == roomId && connId != excludeConnId {
			f.record(connId, msg)
		}
	}
}

func (f *fakeTransport) Bind(connId, roomId, playerId string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings[connId] = Binding{RoomId: roomId, PlayerId: playerId}
}

func (f *fakeTransport) Unbind(connId string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bindings, connId)
}

func (f *fakeTransport) Binding(connId string) (Binding, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bindings[connId]
	return b, ok
}

// messages returns the payloads of msgType delivered to connId so far.
func (f *fakeTransport) messages(connId, msgType string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []any
	for _, m := range f.inbox[connId] {
		if m.Type == msgType {
			out = append(out, m.Payload)
		}
	}
	return out
}

func (f *fakeTransport) count(connId, msgType string) int {
	return len(f.messages(connId, msgType))
}

func (f *fakeTransport) last(connId, msgType string) any {
	msgs := f.messages(connId, msgType)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

func (f *fakeTransport) types(connId string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.inbox[connId] {
		out = append(out, m.Type)
	}
	return out
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox = make(map[string][]sentMessage)
}

type fixedWords []string

func (w fixedWords) Choices(n int) []string {
	return append([]string(nil), w[:min(n, len(w))]...)
}

type fakeJournal struct {
	mu     sync.Mutex
	events []internal.RoomEvent
}

func (j *fakeJournal) Publish(_ context.Context, ev internal.RoomEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
	return nil
}

func (j *fakeJournal) types() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []string
	for _, ev := range j.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeResults struct {
	mu      sync.Mutex
	records []internal.GameRecord
}

func (r *fakeResults) RecordGameResult(_ context.Context, rec internal.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeResults) all() []internal.GameRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]internal.GameRecord(nil), r.records...)
}

// quietConfig never fires a timer on its own unless a test shortens one.
func quietConfig() Config {
	return Config{
		AutoStartCountdown:   10,
		CountdownInterval:    time.Hour,
		WordSelectionTimeout: time.Hour,
		RoundDuration:        time.Hour,
		RoundEndGrace:        10 * time.Millisecond,
		AllGuessedGrace:      10 * time.Millisecond,
		RoomTTL:              time.Hour,
		SweepInterval:        time.Hour,
		PersistTimeout:       time.Second,
	}
}

var testWords = fixedWords{"Cat", "Ice Cream", "Guitar", "Robot"}

func newTestGame(t *testing.T, tweak func(*Config), opts ...Option) (*Game, *fakeTransport) {
	t.Helper()
	cfg := quietConfig()
	if tweak != nil {
		tweak(&cfg)
	}
	ft := newFakeTransport()
	g := NewGame(ft, testWords, append([]Option{WithConfig(cfg)}, opts...)...)
	return g, ft
}

func send(t *testing.T, g *Game, connId, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(internal.Message[any]{Type: msgType, Payload: payload})
	require.NoError(t, err)
	g.HandleMessage(connId, raw)
}

func joined(t *testing.T, ft *fakeTransport, connId string) internal.RoomJoinedData {
	t.Helper()
	data, ok := ft.last(connId, internal.TypeRoomJoined).(internal.RoomJoinedData)
	require.True(t, ok, "connection %s never received ROOM_JOINED", connId)
	return data
}

func errorsFor(ft *fakeTransport, connId string) []string {
	var out []string
	for _, p := range ft.messages(connId, internal.TypeError) {
		out = append(out, p.(internal.ErrorData).Message)
	}
	return out
}

// privateRoom creates a room through CREATE_ROOM and joins the other
// connections by code. It returns the room.
func privateRoom(t *testing.T, g *Game, ft *fakeTransport, conns ...string) *internal.Room {
	t.Helper()
	send(t, g, conns[0], internal.TypeCreateRoom, map[string]string{"username": conns[0]})
	data := joined(t, ft, conns[0])
	for _, c := range conns[1:] {
		send(t, g, c, internal.TypeJoinByCode, map[string]string{"username": c, "code": data.RoomCode})
		joined(t, ft, c)
	}
	room := g.rooms.GetRoom(data.RoomId)
	require.NotNil(t, room)
	return room
}

// startedRoom is privateRoom followed by START_GAME from the creator.
func startedRoom(t *testing.T, g *Game, ft *fakeTransport, conns ...string) *internal.Room {
	t.Helper()
	room := privateRoom(t, g, ft, conns...)
	send(t, g, conns[0], internal.TypeStartGame, nil)
	require.Empty(t, errorsFor(ft, conns[0]))
	return room
}

func playerId(t *testing.T, ft *fakeTransport, connId string) string {
	t.Helper()
	return joined(t, ft, connId).PlayerId
}

func withRoom[T any](room *internal.Room, fn func(*internal.Room) T) T {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	return fn(room)
}
