package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal/config"
	"github.com/scythe504/skribblr-rooms/internal/database"
	"github.com/scythe504/skribblr-rooms/internal/database/migrations"
	"github.com/scythe504/skribblr-rooms/internal/game"
	"github.com/scythe504/skribblr-rooms/internal/journal"
	"github.com/scythe504/skribblr-rooms/internal/logger"
	"github.com/scythe504/skribblr-rooms/internal/server"
	"github.com/scythe504/skribblr-rooms/internal/stats"
	"github.com/scythe504/skribblr-rooms/internal/utils"
	"github.com/scythe504/skribblr-rooms/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []game.Option{game.WithConfig(cfg.Game())}

	words := loadWords(cfg)

	var db *database.Postgres
	if cfg.DatabaseURL != "" {
		db, err = openDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		defer db.Close()

		words = syncWords(ctx, db, words)
		opts = append(opts, game.WithResultStore(db))
	}

	events := openJournal(cfg)
	defer events.Close()
	opts = append(opts, game.WithJournal(events))

	hub := websocket.NewHub()
	g := game.NewGame(hub, utils.NewWordCatalog(words), opts...)
	go g.Run(ctx)

	if cfg.RedisURL != "" {
		startStats(ctx, cfg, g, hub)
	}

	wsHandler := hub.HandleWebSocket(g, websocket.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		MessageRate:    cfg.MessageRate,
		MessageBurst:   cfg.MessageBurst,
	})
	srv := server.NewServer(cfg.Addr(), g, wsHandler, hub.ClientCount, cfg.AllowedOrigins)
	if db != nil {
		srv.WithHistory(db)
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
	hub.CloseAll()
	log.Info().Msg("bye")
}

// loadWords reads WORDS_FILE when set, otherwise the built-in list.
func loadWords(cfg *config.Config) []string {
	if cfg.WordsFile == "" {
		return utils.DefaultWords()
	}
	words, err := utils.ReadCsvFile(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.WordsFile).Msg("failed to load word list")
	}
	log.Info().Int("words", len(words)).Str("file", cfg.WordsFile).Msg("loaded word list")
	return words
}

type eventJournal interface {
	game.Journal
	io.Closer
}

func openJournal(cfg *config.Config) eventJournal {
	if len(cfg.KafkaBrokers) == 0 {
		return journal.Nop{}
	}
	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("room event journal enabled")
	return journal.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func openDatabase(ctx context.Context, url string) (*database.Postgres, error) {
	if err := migrations.Migrate(url); err != nil {
		return nil, err
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return database.NewPostgres(connectCtx, url)
}

// syncWords seeds the database catalog with words and returns the full
// stored catalog, falling back to words if the database cannot be read.
func syncWords(ctx context.Context, db *database.Postgres, words []string) []string {
	added, err := db.AddWords(ctx, words)
	if err != nil {
		log.Warn().Err(err).Msg("failed to seed word catalog")
	} else if added > 0 {
		log.Info().Int("added", added).Msg("seeded word catalog")
	}

	stored, err := db.Words(ctx)
	if err != nil || len(stored) == 0 {
		log.Warn().Err(err).Msg("using in-memory word list")
		return words
	}
	return stored
}

func startStats(ctx context.Context, cfg *config.Config, g *game.Game, hub *websocket.Hub) {
	instance, err := os.Hostname()
	if err != nil || instance == "" {
		instance = utils.GenerateID()
	}

	rs, err := stats.NewRedis(cfg.RedisURL, instance, 3*cfg.StatsInterval)
	if err != nil {
		log.Error().Err(err).Msg("stats reporting disabled")
		return
	}
	if err := rs.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis not reachable yet, reporting anyway")
	}

	src := func() stats.Snapshot {
		s := g.Stats()
		return stats.Snapshot{Rooms: s.Rooms, Players: s.Players, Clients: hub.ClientCount()}
	}
	go func() {
		defer rs.Close()
		stats.Run(ctx, cfg.StatsInterval, src, rs)
	}()
}
