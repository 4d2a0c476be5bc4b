package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scythe504/skribblr-rooms/internal"
)

var ErrUnexpectedDatabase = errors.New("unexpected database error")

// Postgres stores the word catalog and finished game results.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
}

// Words returns the whole catalog in insertion order.
func (p *Postgres) Words(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, "SELECT word FROM words ORDER BY id")
	if err != nil {
		return nil, wrap(err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrap(err)
	}
	return words, nil
}

// AddWords inserts the words, skipping any already present regardless of
// case, and returns how many were new.
func (p *Postgres) AddWords(ctx context.Context, words []string) (int, error) {
	batch := &pgx.Batch{}
	for _, w := range words {
		batch.Queue("INSERT INTO words (word) VALUES ($1) ON CONFLICT DO NOTHING", w)
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range words {
		tag, err := results.Exec()
		if err != nil {
			return inserted, wrap(err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (p *Postgres) RecordGameResult(ctx context.Context, rec internal.GameRecord) error {
	winners, err := json.Marshal(rec.Winners)
	if err != nil {
		return fmt.Errorf("marshal winners: %w", err)
	}
	leaderboard, err := json.Marshal(rec.Leaderboard)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO game_results (room_id, room_code, winners, leaderboard, rounds_played, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.RoomId, rec.RoomCode, string(winners), string(leaderboard), rec.RoundsPlayed, rec.FinishedAt,
	)
	return wrap(err)
}

// RecentGameResults returns the latest results, newest first.
func (p *Postgres) RecentGameResults(ctx context.Context, limit int) ([]internal.GameRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT room_id, room_code, winners, leaderboard, rounds_played, finished_at
		 FROM game_results ORDER BY finished_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	var records []internal.GameRecord
	for rows.Next() {
		var (
			rec                  internal.GameRecord
			winners, leaderboard []byte
		)
		if err := rows.Scan(&rec.RoomId, &rec.RoomCode, &winners, &leaderboard, &rec.RoundsPlayed, &rec.FinishedAt); err != nil {
			return nil, wrap(err)
		}
		if err := json.Unmarshal(winners, &rec.Winners); err != nil {
			return nil, fmt.Errorf("decode winners: %w", err)
		}
		if err := json.Unmarshal(leaderboard, &rec.Leaderboard); err != nil {
			return nil, fmt.Errorf("decode leaderboard: %w", err)
		}
		records = append(records, rec)
	}
	return records, wrap(rows.Err())
}
