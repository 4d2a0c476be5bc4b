package database_test

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/scythe504/skribblr-rooms/internal/database"
	"github.com/scythe504/skribblr-rooms/internal/database/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var db *database.Postgres

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("skribblr"),
		postgres.WithUsername("skribblr"),
		postgres.WithPassword("skribblr"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	if err := migrations.Migrate(connString); err != nil {
		panic(err)
	}
	// A second run must be a no-op.
	if err := migrations.Migrate(connString); err != nil {
		panic(err)
	}

	db, err = database.NewPostgres(ctx, connString)
	if err != nil {
		panic(err)
	}

	code := m.Run()

	db.Close()
	postgresContainer.Terminate(ctx)
	os.Exit(code)
}

func TestWords(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	added, err := db.AddWords(ctx, []string{"Cat", "Dog", "cat", "Ice Cream"})
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = db.AddWords(ctx, []string{"DOG", "Robot"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	words, err := db.Words(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cat", "Dog", "Ice Cream", "Robot"}, words)
}

func TestGameResults(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()
	finished := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

	older := internal.GameRecord{
		RoomId:       "room-old",
		RoomCode:     "OLD111",
		Winners:      []internal.Winner{{Id: "p1", Username: "alice", Score: 300}},
		Leaderboard:  []internal.LeaderboardEntry{{PlayerId: "p1", Username: "alice", Score: 300, Position: 1}},
		RoundsPlayed: 3,
		FinishedAt:   finished,
	}
	newer := internal.GameRecord{
		RoomId:   "room-new",
		RoomCode: "NEW222",
		Winners: []internal.Winner{
			{Id: "p2", Username: "bob", Score: 190},
			{Id: "p3", Username: "carol", Score: 190},
		},
		Leaderboard: []internal.LeaderboardEntry{
			{PlayerId: "p2", Username: "bob", Score: 190, Position: 1},
			{PlayerId: "p3", Username: "carol", Score: 190, Position: 2},
		},
		RoundsPlayed: 3,
		FinishedAt:   finished.Add(time.Hour),
	}
	require.NoError(t, db.RecordGameResult(ctx, older))
	require.NoError(t, db.RecordGameResult(ctx, newer))

	recent, err := db.RecentGameResults(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "room-new", recent[0].RoomId)
	assert.Equal(t, newer.Winners, recent[0].Winners)
	assert.Equal(t, newer.Leaderboard, recent[0].Leaderboard)
	assert.True(t, newer.FinishedAt.Equal(recent[0].FinishedAt))
	assert.Equal(t, older.Winners, recent[1].Winners)

	limited, err := db.RecentGameResults(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
