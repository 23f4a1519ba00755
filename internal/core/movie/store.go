// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSnapshot is returned by [SnapshotRepository.Load] when nothing was
// ever saved. A saved empty catalog loads as an empty slice instead.
var ErrNoSnapshot = errors.New("movie: no catalog snapshot has been saved")

// SnapshotRepository persists the whole catalog as one ordered snapshot.
type SnapshotRepository interface {
	Load(ctx context.Context) ([]Movie, error)
	Save(ctx context.Context, movies []Movie) error
}

// memoryRepository keeps the last saved snapshot in process memory.
type memoryRepository struct {
	mu     sync.RWMutex
	movies []Movie
	saved  bool
}

// NewMemoryRepository returns a process-local [SnapshotRepository].
func NewMemoryRepository() SnapshotRepository {
	return &memoryRepository{movies: make([]Movie, 0)}
}

func (repository *memoryRepository) Load(_ context.Context) ([]Movie, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	if !repository.saved {
		return nil, ErrNoSnapshot
	}
	return cloneAll(repository.movies), nil
}

func (repository *memoryRepository) Save(_ context.Context, movies []Movie) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.movies = cloneAll(movies)
	repository.saved = true
	return nil
}

// RestoreOrSeed returns the saved snapshot, or the records from seed when
// the repository has never been written. restored reports which one.
func RestoreOrSeed(ctx context.Context, repository SnapshotRepository, seed func(context.Context) ([]Movie, error)) (records []Movie, restored bool, err error) {
	records, err = repository.Load(ctx)
	switch {
	case err == nil:
		return records, true, nil
	case !errors.Is(err, ErrNoSnapshot):
		return nil, false, err
	}

	records, err = seed(ctx)
	if err != nil {
		return nil, false, err
	}
	return records, false, nil
}
