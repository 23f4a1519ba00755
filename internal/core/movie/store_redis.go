// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotFormat versions the JSON document stored under the snapshot key.
const snapshotFormat = 1

// snapshotDocument is the value stored in Redis.
type snapshotDocument struct {
	Format  int       `json:"format"`
	SavedAt time.Time `json:"saved_at"`
	Movies  []Movie   `json:"movies"`
}

// redisRepository stores the snapshot as a single JSON value.
type redisRepository struct {
	client redis.Cmdable
	key    string
	now    func() time.Time
}

// NewRedisRepository constructs a Redis backed snapshot store under key.
func NewRedisRepository(client redis.Cmdable, key string) SnapshotRepository {
	return &redisRepository{client: client, key: key, now: time.Now}
}

func (repository *redisRepository) Load(ctx context.Context) ([]Movie, error) {
	body, err := repository.client.Get(ctx, repository.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("movie: failed to read snapshot %q: %w", repository.key, err)
	}
	return decodeSnapshot(body)
}

func (repository *redisRepository) Save(ctx context.Context, movies []Movie) error {
	body, err := encodeSnapshot(movies, repository.now())
	if err != nil {
		return err
	}
	if err := repository.client.Set(ctx, repository.key, body, 0).Err(); err != nil {
		return fmt.Errorf("movie: failed to write snapshot %q: %w", repository.key, err)
	}
	return nil
}

func encodeSnapshot(movies []Movie, savedAt time.Time) ([]byte, error) {
	if movies == nil {
		movies = make([]Movie, 0)
	}
	body, err := json.Marshal(snapshotDocument{Format: snapshotFormat, SavedAt: savedAt.UTC(), Movies: movies})
	if err != nil {
		return nil, fmt.Errorf("movie: failed to encode snapshot: %w", err)
	}
	return body, nil
}

func decodeSnapshot(body []byte) ([]Movie, error) {
	var document snapshotDocument
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, fmt.Errorf("movie: failed to decode snapshot: %w", err)
	}
	if document.Format != snapshotFormat {
		return nil, fmt.Errorf("movie: unsupported snapshot format %d", document.Format)
	}
	if document.Movies == nil {
		document.Movies = make([]Movie, 0)
	}
	return document.Movies, nil
}
