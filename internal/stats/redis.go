package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Snapshot is the occupancy of one server instance.
type Snapshot struct {
	Rooms   int
	Players int
	Clients int
}

type Source func() Snapshot

type Reporter interface {
	Report(ctx context.Context, s Snapshot) error
}

// Redis writes snapshots to a hash so other instances and dashboards can
// read live occupancy. The hash expires if the instance stops reporting.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedis(url, instance string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{
		client: redis.NewClient(opts),
		key:    "skribblr:stats:" + instance,
		ttl:    ttl,
	}, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Report(ctx context.Context, s Snapshot) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key,
			"rooms", s.Rooms,
			"players", s.Players,
			"clients", s.Clients,
			"updated_at", time.Now().Unix(),
		)
		pipe.Expire(ctx, r.key, r.ttl)
		return nil
	})
	return err
}

// Read loads the last snapshot written under this instance's key.
func (r *Redis) Read(ctx context.Context) (Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	for name, dst := range map[string]*int{"rooms": &s.Rooms, "players": &s.Players, "clients": &s.Clients} {
		if v, ok := fields[name]; ok {
			if *dst, err = strconv.Atoi(v); err != nil {
				return Snapshot{}, fmt.Errorf("parse %s: %w", name, err)
			}
		}
	}
	return s, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Run reports a snapshot every interval until ctx is done.
func Run(ctx context.Context, every time.Duration, src Source, rep Reporter) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := rep.Report(ctx, src()); err != nil {
				log.Warn().Err(err).Msg("[stats] report failed")
			}
		}
	}
}
