package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal/game"
)

type Config struct {
	Port           int
	AllowedOrigins []string
	LogLevel       string
	LogPretty      bool

	DatabaseURL  string
	KafkaBrokers []string
	KafkaTopic   string
	RedisURL     string
	WordsFile    string

	RoomTTL              time.Duration
	SweepInterval        time.Duration
	WordSelectionTimeout time.Duration
	RoundDuration        time.Duration
	StatsInterval        time.Duration

	MessageRate  float64
	MessageBurst int
}

// Load reads .env (falling back to .env.local) and then the process
// environment. Missing files are not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load(".env.local"); err != nil {
			log.Debug().Msg("[config] no .env file found, using process environment")
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	defaults := game.DefaultConfig()
	p := parser{getenv: getenv}

	cfg := &Config{
		Port:           p.integer("PORT", 8080),
		AllowedOrigins: p.list("ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:       p.str("LOG_LEVEL", "info"),
		LogPretty:      p.boolean("LOG_PRETTY", false),

		DatabaseURL:  p.str("DATABASE_URL", ""),
		KafkaBrokers: p.list("KAFKA_BROKERS", nil),
		KafkaTopic:   p.str("KAFKA_TOPIC", "skribblr.room-events"),
		RedisURL:     p.str("REDIS_URL", ""),
		WordsFile:    p.str("WORDS_FILE", ""),

		RoomTTL:              p.duration("ROOM_TTL", defaults.RoomTTL),
		SweepInterval:        p.duration("SWEEP_INTERVAL", defaults.SweepInterval),
		WordSelectionTimeout: p.seconds("WORD_SELECTION_SECONDS", defaults.WordSelectionTimeout),
		RoundDuration:        p.seconds("ROUND_SECONDS", defaults.RoundDuration),
		StatsInterval:        p.duration("STATS_INTERVAL", 15*time.Second),

		MessageRate:  p.float("MESSAGE_RATE", 20),
		MessageBurst: p.integer("MESSAGE_BURST", 40),
	}
	if p.err != nil {
		return nil, p.err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: PORT out of range: %d", cfg.Port)
	}
	return cfg, nil
}

// Game returns the game timings with overrides from the environment.
func (c *Config) Game() game.Config {
	g := game.DefaultConfig()
	g.RoomTTL = c.RoomTTL
	g.SweepInterval = c.SweepInterval
	g.WordSelectionTimeout = c.WordSelectionTimeout
	g.RoundDuration = c.RoundDuration
	return g
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// parser records the first malformed value it meets.
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) raw(key string) (string, bool) {
	v := strings.TrimSpace(p.getenv(key))
	return v, v != ""
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config: invalid %s=%q: %w", key, value, err)
	}
}

func (p *parser) str(key, def string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return f
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *parser) seconds(key string, def time.Duration) time.Duration {
	n := p.integer(key, -1)
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func (p *parser) list(key string, def []string) []string {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
