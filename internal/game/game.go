package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
)

// Config holds the game timings. Tests shrink these to milliseconds.
type Config struct {
	AutoStartCountdown   int
	CountdownInterval    time.Duration
	WordSelectionTimeout time.Duration
	RoundDuration        time.Duration
	RoundEndGrace        time.Duration
	AllGuessedGrace      time.Duration
	RoomTTL              time.Duration
	SweepInterval        time.Duration
	PersistTimeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		AutoStartCountdown:   10,
		CountdownInterval:    time.Second,
		WordSelectionTimeout: 15 * time.Second,
		RoundDuration:        30 * time.Second,
		RoundEndGrace:        3 * time.Second,
		AllGuessedGrace:      2 * time.Second,
		RoomTTL:              time.Hour,
		SweepInterval:        5 * time.Minute,
		PersistTimeout:       5 * time.Second,
	}
}

// Journal receives room lifecycle events. Publish must not block for long;
// it is called with the room lock held.
type Journal interface {
	Publish(ctx context.Context, ev internal.RoomEvent) error
}

// ResultStore persists finished games.
type ResultStore interface {
	RecordGameResult(ctx context.Context, rec internal.GameRecord) error
}

type nopJournal struct{}

func (nopJournal) Publish(context.Context, internal.RoomEvent) error { return nil }

// Journal event types
const (
	EventRoomCreated  = "room_created"
	EventRoomDeleted  = "room_deleted"
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventGameStarted  = "game_started"
	EventTurnStarted  = "turn_started"
	EventCorrectGuess = "correct_guess"
	EventRoundEnded   = "round_ended"
	EventGameEnded    = "game_ended"
)

// Game coordinates rooms, timers and the transport. All of its handlers are
// safe for concurrent use.
type Game struct {
	cfg     Config
	rooms   *Registry
	timers  *Scheduler
	conns   Transport
	out     *Broadcaster
	words   WordSource
	journal Journal
	results ResultStore
	now     func() time.Time
}

type Option func(*Game)

func WithConfig(cfg Config) Option {
	return func(g *Game) { g.cfg = cfg }
}

func WithJournal(j Journal) Option {
	return func(g *Game) {
		if j != nil {
			g.journal = j
		}
	}
}

func WithResultStore(r ResultStore) Option {
	return func(g *Game) { g.results = r }
}

func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

func NewGame(conns Transport, words WordSource, opts ...Option) *Game {
	g := &Game{
		cfg:     DefaultConfig(),
		rooms:   NewRegistry(),
		timers:  NewScheduler(),
		conns:   conns,
		out:     NewBroadcaster(conns),
		words:   words,
		journal: nopJournal{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.rooms.now = g.now
	return g
}

func (g *Game) Rooms() *Registry { return g.rooms }

func (g *Game) Timers() *Scheduler { return g.timers }

func (g *Game) Stats() Stats { return g.rooms.Stats() }

// AvailableRoomCode returns the code of a public room a new player would be
// placed in, if any.
func (g *Game) AvailableRoomCode() (string, bool) {
	room := g.rooms.FindAvailableRoom()
	if room == nil {
		return "", false
	}
	return room.Code, true
}

// Run sweeps idle rooms every SweepInterval until ctx is done.
func (g *Game) Run(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := g.Sweep(); n > 0 {
				log.Info().Int("rooms", n).Msg("[Run] swept idle rooms")
			}
		}
	}
}

func (g *Game) publish(room *internal.Room, eventType string, payload any) {
	ev := internal.RoomEvent{
		RoomId:  room.Id,
		Type:    eventType,
		Payload: payload,
		At:      g.now(),
	}
	if err := g.journal.Publish(context.Background(), ev); err != nil {
		log.Warn().Err(err).Str("room", room.Id).Str("event", eventType).Msg("[publish] journal write failed")
	}
}

func (g *Game) recordResult(rec internal.GameRecord) {
	if g.results == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.cfg.PersistTimeout)
	defer cancel()
	if err := g.results.RecordGameResult(ctx, rec); err != nil {
		log.Error().Err(err).Str("room", rec.RoomId).Msg("[recordResult] failed to persist game result")
	}
}
