package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/scythe504/skribblr-rooms/internal/game"
	"github.com/scythe504/skribblr-rooms/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClient(h *Hub, id string, buffer int) *Client {
	c := &Client{Id: id, send: make(chan []byte, buffer), hub: h}
	h.register(c)
	return c
}

func drain(c *Client) []string {
	var out []string
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, string(data))
		default:
			return out
		}
	}
}

func TestHubBroadcastToRoom(t *testing.T) {
	h := NewHub()
	a := fakeClient(h, "a", 4)
	b := fakeClient(h, "b", 4)
	c := fakeClient(h, "c", 4)

	h.Bind("a", "room-1", "pa")
	h.Bind("b", "room-1", "pb")
	h.Bind("c", "room-2", "pc")

	h.BroadcastToRoom("room-1", internal.NewMessage(internal.TypeClearCanvas, nil), "b")

	assert.Equal(t, []string{`{"type":"CLEAR_CANVAS","payload":{}}`}, drain(a))
	assert.Empty(t, drain(b))
	assert.Empty(t, drain(c))

	binding, ok := h.Binding("b")
	require.True(t, ok)
	assert.Equal(t, game.Binding{RoomId: "room-1", PlayerId: "pb"}, binding)
}

func TestHubRebindMovesConnection(t *testing.T) {
	h := NewHub()
	a := fakeClient(h, "a", 4)

	h.Bind("a", "room-1", "pa")
	h.Bind("a", "room-2", "pa2")

	h.BroadcastToRoom("room-1", internal.NewMessage(internal.TypeClearCanvas, nil), "")
	assert.Empty(t, drain(a))

	h.BroadcastToRoom("room-2", internal.NewMessage(internal.TypeClearCanvas, nil), "")
	assert.Len(t, drain(a), 1)

	h.Unbind("a")
	_, ok := h.Binding("a")
	assert.False(t, ok)
	assert.Empty(t, h.rooms)
}

func TestHubSendDoesNotBlock(t *testing.T) {
	h := NewHub()
	a := fakeClient(h, "a", 1)

	assert.True(t, h.Send("a", internal.NewMessage(internal.TypeError, internal.ErrorData{Message: "one"})))
	assert.False(t, h.Send("a", internal.NewMessage(internal.TypeError, internal.ErrorData{Message: "two"})))
	assert.False(t, h.Send("missing", internal.NewMessage(internal.TypeError, nil)))
	assert.Equal(t, []string{`{"type":"ERROR","payload":{"message":"one"}}`}, drain(a))
}

func TestHubUnregister(t *testing.T) {
	h := NewHub()
	a := fakeClient(h, "a", 1)
	h.Bind("a", "room-1", "pa")
	require.Equal(t, 1, h.ClientCount())

	h.unregister(a)
	h.unregister(a)

	assert.Zero(t, h.ClientCount())
	_, ok := h.Binding("a")
	assert.False(t, ok)
	_, open := <-a.send
	assert.False(t, open)
}

func TestHubCloseAll(t *testing.T) {
	h := NewHub()
	a := fakeClient(h, "a", 1)
	b := fakeClient(h, "b", 1)
	h.Bind("a", "room-1", "pa")

	h.CloseAll()
	h.unregister(a)

	assert.Zero(t, h.ClientCount())
	for _, c := range []*Client{a, b} {
		_, open := <-c.send
		assert.False(t, open)
	}
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(internal.NewMessage(msgType, payload)))
}

// readUntil reads frames until one of msgType arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == msgType {
			return f
		}
	}
}

func quietGame(hub *Hub) *game.Game {
	cfg := game.DefaultConfig()
	cfg.CountdownInterval = time.Hour
	return game.NewGame(hub, utils.NewWordCatalog(nil), game.WithConfig(cfg))
}

func TestHandleWebSocketEndToEnd(t *testing.T) {
	hub := NewHub()
	g := quietGame(hub)
	srv := httptest.NewServer(hub.HandleWebSocket(g, Options{}))
	defer srv.Close()

	alice := dial(t, srv, nil)
	bob := dial(t, srv, nil)

	sendFrame(t, alice, internal.TypeCreateRoom, internal.CreateRoomPayload{Username: "alice"})
	var created internal.RoomJoinedData
	require.NoError(t, json.Unmarshal(readUntil(t, alice, internal.TypeRoomJoined).Payload, &created))

	sendFrame(t, bob, internal.TypeJoinByCode, internal.JoinByCodePayload{Username: "bob", Code: created.RoomCode})
	readUntil(t, bob, internal.TypeRoomJoined)

	var joined internal.PlayerJoinedData
	require.NoError(t, json.Unmarshal(readUntil(t, alice, internal.TypePlayerJoined).Payload, &joined))
	assert.Equal(t, "bob", joined.Username)
	assert.Equal(t, 2, hub.ClientCount())

	sendFrame(t, bob, "DANCE", nil)
	var errData internal.ErrorData
	require.NoError(t, json.Unmarshal(readUntil(t, bob, internal.TypeError).Payload, &errData))
	assert.Equal(t, "Unknown message type", errData.Message)

	require.NoError(t, bob.Close())

	var left internal.PlayerLeftData
	require.NoError(t, json.Unmarshal(readUntil(t, alice, internal.TypePlayerLeft).Payload, &left))
	assert.Equal(t, "bob", left.Username)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, game.Stats{Rooms: 1, Players: 1}, g.Stats())
}

func TestHandleWebSocketChecksOrigin(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.HandleWebSocket(quietGame(hub), Options{
		AllowedOrigins: []string{"https://skribblr.app"},
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	dial(t, srv, http.Header{"Origin": {"https://skribblr.app"}})
}

type countingHandler struct {
	frames chan string
	gone   chan string
}

func (h *countingHandler) HandleMessage(connId string, raw []byte) { h.frames <- string(raw) }

func (h *countingHandler) HandleDisconnect(connId string) { h.gone <- connId }

func TestHandleWebSocketRateLimits(t *testing.T) {
	hub := NewHub()
	handler := &countingHandler{frames: make(chan string, 16), gone: make(chan string, 1)}
	srv := httptest.NewServer(hub.HandleWebSocket(handler, Options{MessageRate: 0.001, MessageBurst: 2}))
	defer srv.Close()

	conn := dial(t, srv, nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{}")))
	}
	require.NoError(t, conn.Close())

	select {
	case <-handler.gone:
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect never reported")
	}
	assert.Len(t, handler.frames, 2)
}
