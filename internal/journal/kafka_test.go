package journal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublish(t *testing.T) {
	w := &recordingWriter{}
	k := newKafka(w, "events")

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	err := k.Publish(context.Background(), internal.RoomEvent{
		RoomId:  "room-1",
		Type:    "player_joined",
		Payload: internal.PlayerJoinedData{PlayerId: "p1", Username: "alice"},
		At:      at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "room-1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, []kafka.Header{{Key: "event", Value: []byte("player_joined")}}, msg.Headers)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "room-1", decoded["roomId"])
	assert.Equal(t, "player_joined", decoded["type"])
	assert.Equal(t, map[string]any{"playerId": "p1", "username": "alice"}, decoded["payload"])

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublishPropagatesWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	k := newKafka(w, "events")

	err := k.Publish(context.Background(), internal.RoomEvent{RoomId: "r", Type: "room_created"})
	assert.EqualError(t, err, "broker down")
}

func TestNop(t *testing.T) {
	var n Nop
	assert.NoError(t, n.Publish(context.Background(), internal.RoomEvent{}))
	assert.NoError(t, n.Close())
}
