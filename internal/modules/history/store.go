// README: Itinerary store backed by PostgreSQL, with a Redis cache for
// rendered markdown keyed by request fingerprint.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	db    *pgxpool.Pool
	cache *redis.Client
}

func NewStore(db *pgxpool.Pool, cache *redis.Client) *Store {
	return &Store{db: db, cache: cache}
}

func (s *Store) Create(ctx context.Context, it *Itinerary) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO itineraries (
			id, from_city, to_city, start_date, end_date,
			travelers, budget, markdown, degraded, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)`,
		it.ID,
		it.FromCity,
		it.ToCity,
		it.StartDate,
		it.EndDate,
		it.Travelers,
		it.Budget,
		it.Markdown,
		it.Degraded,
		it.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Itinerary, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, from_city, to_city, start_date, end_date,
		       travelers, budget, markdown, degraded, created_at
		FROM itineraries
		WHERE id = $1`, id,
	)

	var it Itinerary
	err := row.Scan(
		&it.ID, &it.FromCity, &it.ToCity, &it.StartDate, &it.EndDate,
		&it.Travelers, &it.Budget, &it.Markdown, &it.Degraded, &it.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]Itinerary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, from_city, to_city, start_date, end_date,
		       travelers, budget, markdown, degraded, created_at
		FROM itineraries
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Itinerary
	for rows.Next() {
		var it Itinerary
		if err := rows.Scan(
			&it.ID, &it.FromCity, &it.ToCity, &it.StartDate, &it.EndDate,
			&it.Travelers, &it.Budget, &it.Markdown, &it.Degraded, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// CachedMarkdown looks up a rendered itinerary by fingerprint. A cache miss is
// not an error.
func (s *Store) CachedMarkdown(ctx context.Context, fingerprint string) (string, bool, error) {
	if s.cache == nil {
		return "", false, nil
	}
	v, err := s.cache.Get(ctx, fingerprint).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) CacheMarkdown(ctx context.Context, fingerprint, markdown string, ttl time.Duration) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, fingerprint, markdown, ttl).Err()
}
