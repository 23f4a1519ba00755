// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kinora/internal/core/movie"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingRepository struct {
	mu    sync.Mutex
	saves [][]movie.Movie
	err   error
}

func (repository *recordingRepository) Load(context.Context) ([]movie.Movie, error) {
	return nil, movie.ErrNoSnapshot
}

func (repository *recordingRepository) Save(_ context.Context, movies []movie.Movie) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.saves = append(repository.saves, movies)
	return repository.err
}

type recordingObserver struct {
	persisted []error
	published map[string][]error
}

func (observer *recordingObserver) ObservePersist(err error, _ time.Duration) {
	observer.persisted = append(observer.persisted, err)
}

func (observer *recordingObserver) ObservePublish(eventType string, err error) {
	if observer.published == nil {
		observer.published = map[string][]error{}
	}
	observer.published[eventType] = append(observer.published[eventType], err)
}

type publishedMessage struct {
	subject   string
	eventType string
	payload   any
}

type recordingPublisher struct {
	messages []publishedMessage
	err      error
}

func (publisher *recordingPublisher) Publish(_ context.Context, subject, eventType string, payload any) error {
	publisher.messages = append(publisher.messages, publishedMessage{subject, eventType, payload})
	return publisher.err
}

func (publisher *recordingPublisher) Ping(context.Context) error { return nil }

func (publisher *recordingPublisher) Close() error { return nil }

/*
TestPersister_SavesEverySnapshot verifies each change writes the full
post-change collection.
*/
func TestPersister_SavesEverySnapshot(t *testing.T) {
	repository := &recordingRepository{}
	observer := &recordingObserver{}
	persister := movie.NewPersister(repository, discardLogger(), observer)

	catalog := movie.NewCatalog()
	catalog.Subscribe(persister.OnChange)

	catalog.Seed(movie.SeedMovies())
	catalog.Delete("2")

	require.Len(t, repository.saves, 2)
	assert.Len(t, repository.saves[0], 4)
	assert.Equal(t, []string{"1", "3", "4"}, ids(repository.saves[1]))
	assert.Equal(t, []error{nil, nil}, observer.persisted)
}

/*
TestPersister_FailureDoesNotBlockMutation verifies a failing store is
observed but the catalog change still stands.
*/
func TestPersister_FailureDoesNotBlockMutation(t *testing.T) {
	cause := errors.New("disk full")
	observer := &recordingObserver{}
	persister := movie.NewPersister(&recordingRepository{err: cause}, discardLogger(), observer)

	catalog := movie.NewCatalog()
	catalog.Subscribe(persister.OnChange)

	_, err := catalog.Add(validInput())
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.Len())
	assert.Equal(t, []error{cause}, observer.persisted)
	assert.ErrorIs(t, persister.Flush(context.Background(), catalog.List()), cause)
}

/*
TestPersister_SaveVersionDropsStale verifies an older snapshot never
replaces a newer one and a failed save keeps the last good version.
*/
func TestPersister_SaveVersionDropsStale(t *testing.T) {
	ctx := context.Background()
	repository := &recordingRepository{}
	persister := movie.NewPersister(repository, discardLogger(), nil)

	_, ok := persister.LastSaved()
	assert.False(t, ok)

	saved, err := persister.SaveVersion(ctx, movie.SeedMovies(), 2)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = persister.SaveVersion(ctx, movie.SeedMovies()[:1], 1)
	require.NoError(t, err)
	assert.False(t, saved)
	require.Len(t, repository.saves, 1)
	assert.Len(t, repository.saves[0], 4)

	saved, err = persister.SaveVersion(ctx, movie.SeedMovies()[:2], 2)
	require.NoError(t, err)
	assert.True(t, saved)

	repository.err = errors.New("disk full")
	saved, err = persister.SaveVersion(ctx, nil, 3)
	assert.Error(t, err)
	assert.False(t, saved)

	version, ok := persister.LastSaved()
	assert.True(t, ok)
	assert.Equal(t, uint64(2), version)
}

/*
TestRestoreOrSeed covers the three startup outcomes: nothing saved, a saved
empty catalog and a broken store.
*/
func TestRestoreOrSeed(t *testing.T) {
	ctx := context.Background()
	seeded := 0
	seed := func(context.Context) ([]movie.Movie, error) {
		seeded++
		return movie.SeedMovies(), nil
	}

	t.Run("never_saved", func(t *testing.T) {
		seeded = 0
		records, restored, err := movie.RestoreOrSeed(ctx, movie.NewMemoryRepository(), seed)
		require.NoError(t, err)
		assert.False(t, restored)
		assert.Equal(t, []string{"1", "2", "3", "4"}, ids(records))
		assert.Equal(t, 1, seeded)
	})

	t.Run("saved_empty", func(t *testing.T) {
		seeded = 0
		repository := movie.NewMemoryRepository()
		require.NoError(t, repository.Save(ctx, []movie.Movie{}))

		records, restored, err := movie.RestoreOrSeed(ctx, repository, seed)
		require.NoError(t, err)
		assert.True(t, restored)
		assert.Empty(t, records)
		assert.Zero(t, seeded)
	})

	t.Run("load_error", func(t *testing.T) {
		seeded = 0
		cause := errors.New("connection refused")
		_, _, err := movie.RestoreOrSeed(ctx, failingRepository{err: cause}, seed)
		assert.ErrorIs(t, err, cause)
		assert.Zero(t, seeded)
	})

	t.Run("seed_error", func(t *testing.T) {
		cause := errors.New("seed file missing")
		_, _, err := movie.RestoreOrSeed(ctx, movie.NewMemoryRepository(), func(context.Context) ([]movie.Movie, error) {
			return nil, cause
		})
		assert.ErrorIs(t, err, cause)
	})
}

type failingRepository struct{ err error }

func (repository failingRepository) Load(context.Context) ([]movie.Movie, error) {
	return nil, repository.err
}

func (repository failingRepository) Save(context.Context, []movie.Movie) error {
	return repository.err
}

/*
TestMemoryRepository verifies saved snapshots are copied in and out.
*/
func TestMemoryRepository(t *testing.T) {
	repository := movie.NewMemoryRepository()
	ctx := context.Background()

	_, err := repository.Load(ctx)
	require.ErrorIs(t, err, movie.ErrNoSnapshot)

	require.NoError(t, repository.Save(ctx, nil))
	empty, err := repository.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	movies := movie.SeedMovies()
	require.NoError(t, repository.Save(ctx, movies))
	movies[0].Title = "Changed"

	loaded, err := repository.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "The Digital Frontier", loaded[0].Title)
}

/*
TestChangePublisher covers subjects, event types and payload shapes.
*/
func TestChangePublisher(t *testing.T) {
	publisher := &recordingPublisher{}
	observer := &recordingObserver{}
	changes := movie.NewChangePublisher(publisher, discardLogger(), observer)

	catalog := movie.NewCatalog()
	catalog.Subscribe(changes.OnChange)

	catalog.Seed(movie.SeedMovies())
	created, err := catalog.Add(validInput())
	require.NoError(t, err)

	require.Len(t, publisher.messages, 2)

	seeded := publisher.messages[0]
	assert.Equal(t, "kinora.movies.seeded", seeded.subject)
	assert.Equal(t, "movie.seeded", seeded.eventType)
	assert.Equal(t, movie.SeedEvent{Version: 1, Count: 4}, seeded.payload)

	added := publisher.messages[1]
	assert.Equal(t, "kinora.movies.created", added.subject)
	assert.Equal(t, "movie.created", added.eventType)
	assert.Equal(t, movie.ChangeEvent{Version: 2, Movie: created}, added.payload)

	assert.Len(t, observer.published["movie.created"], 1)
}

/*
TestChangePublisher_FailureIsObserved verifies broker errors are recorded
without affecting the catalog.
*/
func TestChangePublisher_FailureIsObserved(t *testing.T) {
	cause := errors.New("no responders")
	observer := &recordingObserver{}
	changes := movie.NewChangePublisher(&recordingPublisher{err: cause}, discardLogger(), observer)

	catalog := seededCatalog(t)
	catalog.Subscribe(changes.OnChange)
	catalog.Delete("1")

	assert.Equal(t, 3, catalog.Len())
	assert.Equal(t, []error{cause}, observer.published["movie.deleted"])
}
