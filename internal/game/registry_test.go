package game

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAndLookup(t *testing.T) {
	r := NewRegistry()

	room := r.CreateRoom(false)
	require.NotNil(t, room)
	assert.Len(t, room.Code, internal.RoomCodeLength)
	assert.False(t, room.IsPublic)

	assert.Same(t, room, r.GetRoom(room.Id))
	assert.Same(t, room, r.GetRoomByCode(room.Code))
	assert.Same(t, room, r.GetRoomByCode("  "+strings.ToLower(room.Code)+" "))
	assert.Nil(t, r.GetRoom("missing"))
	assert.Nil(t, r.GetRoomByCode("ZZZZZZ"))
}

func TestRegistryRetriesCodeCollision(t *testing.T) {
	r := NewRegistry()
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	var i int
	r.codeFn = func() string {
		c := codes[i]
		i++
		return c
	}

	first := r.CreateRoom(true)
	second := r.CreateRoom(true)
	assert.Equal(t, "AAAAAA", first.Code)
	assert.Equal(t, "BBBBBB", second.Code)
}

func fill(room *internal.Room, n int) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-p%d", room.Code, i)
		room.AddPlayer(internal.NewPlayer(id, id, "", epoch), epoch)
	}
}

func TestRegistryFindAvailableRoom(t *testing.T) {
	r := NewRegistry()
	clock := epoch
	r.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	assert.Nil(t, r.FindAvailableRoom())

	fill(r.CreateRoom(false), 5)
	full := r.CreateRoom(true)
	fill(full, internal.MaxPlayersPerRoom)
	finished := r.CreateRoom(true)
	fill(finished, 6)
	finished.State = internal.StateFinished

	older := r.CreateRoom(true)
	fill(older, 1)
	busier := r.CreateRoom(true)
	fill(busier, 3)
	tied := r.CreateRoom(true)
	fill(tied, 3)

	assert.Same(t, busier, r.FindAvailableRoom(), "most players wins")

	busier.Closed = true
	assert.Same(t, tied, r.FindAvailableRoom())

	older.AddPlayer(internal.NewPlayer("late-1", "late-1", "", epoch), epoch)
	older.AddPlayer(internal.NewPlayer("late-2", "late-2", "", epoch), epoch)
	assert.Same(t, older, r.FindAvailableRoom(), "oldest wins a tie")
}

func TestRegistryFindAvailableRoomIncludesPlayingRooms(t *testing.T) {
	r := NewRegistry()
	playing := r.CreateRoom(true)
	fill(playing, 2)
	playing.State = internal.StatePlaying

	assert.Same(t, playing, r.FindAvailableRoom())

	room, created := r.FindOrCreateAvailableRoom()
	assert.False(t, created)
	assert.Same(t, playing, room)
}

func TestRegistryFindOrCreateIsShared(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	rooms := make([]*internal.Room, 10)
	for i := range rooms {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rooms[i], _ = r.FindOrCreateAvailableRoom()
		}(i)
	}
	wg.Wait()

	for _, room := range rooms {
		assert.Same(t, rooms[0], room)
	}
	assert.Equal(t, 1, r.Stats().Rooms)
}

func TestRegistryDeleteRoomFreesCode(t *testing.T) {
	r := NewRegistry()
	room := r.CreateRoom(true)

	assert.True(t, r.DeleteRoom(room.Id))
	assert.False(t, r.DeleteRoom(room.Id))
	assert.Nil(t, r.GetRoomByCode(room.Code))
	assert.Empty(t, r.Rooms())
}

func TestRegistryStats(t *testing.T) {
	r := NewRegistry()
	a := r.CreateRoom(true)
	a.AddPlayer(internal.NewPlayer("p1", "p1", "", epoch), epoch)
	a.AddPlayer(internal.NewPlayer("p2", "p2", "", epoch), epoch)
	b := r.CreateRoom(false)
	b.AddPlayer(internal.NewPlayer("p3", "p3", "", epoch), epoch)

	assert.Equal(t, Stats{Rooms: 2, Players: 3}, r.Stats())
	assert.Equal(t, []*internal.Room{a, b}, r.Rooms())
}

func TestRegistrySweep(t *testing.T) {
	r := NewRegistry()
	r.now = func() time.Time { return epoch }

	stale := r.CreateRoom(true)
	fresh := r.CreateRoom(true)
	fresh.Touch(epoch.Add(50 * time.Minute))

	expired := r.Sweep(epoch.Add(61*time.Minute), time.Hour)

	require.Len(t, expired, 1)
	assert.Same(t, stale, expired[0])
	assert.True(t, stale.Closed)
	assert.Nil(t, r.GetRoom(stale.Id))
	assert.Same(t, fresh, r.GetRoom(fresh.Id))
	assert.False(t, fresh.Closed)
}
