// README: Quote store backed by Redis; mirrors the latest quote and batch.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	currentKey = "quotes:current"
	batchKey   = "quotes:batch"
	// Presentation state only; a day is plenty.
	keyTTL = 24 * time.Hour
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) SaveCurrent(ctx context.Context, r Result) error {
	return s.set(ctx, currentKey, r)
}

func (s *Store) SaveBatch(ctx context.Context, results []Result) error {
	return s.set(ctx, batchKey, results)
}

// Current returns the mirrored current quote and whether one exists.
func (s *Store) Current(ctx context.Context) (Result, bool, error) {
	var r Result
	ok, err := s.get(ctx, currentKey, &r)
	return r, ok, err
}

// Batch returns the mirrored batch and whether one exists.
func (s *Store) Batch(ctx context.Context) ([]Result, bool, error) {
	var results []Result
	ok, err := s.get(ctx, batchKey, &results)
	return results, ok, err
}

func (s *Store) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.redis.Set(ctx, key, raw, keyTTL).Err()
}

func (s *Store) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
