// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kinora/internal/core/movie"
	"github.com/taibuivan/kinora/internal/platform/apperr"
)

type queryCounter struct{ runs int }

func (counter *queryCounter) ObserveQuery(time.Duration) { counter.runs++ }

/*
TestService_List verifies the pipeline runs on a snapshot, reports the
effective query and is observed.
*/
func TestService_List(t *testing.T) {
	counter := &queryCounter{}
	service := movie.NewService(seededCatalog(t), nil, discardLogger(), counter)

	movies, effective := service.List(context.Background(), movie.Query{Sort: "title"})

	assert.Equal(t, []string{"4", "2", "1", "3"}, ids(movies))
	assert.Equal(t, movie.Query{Genre: movie.AllGenres, Sort: movie.SortTitle}, effective)
	assert.Equal(t, 1, counter.runs)
}

/*
TestService_Flush covers flushing with and without a persister.
*/
func TestService_Flush(t *testing.T) {
	ctx := context.Background()
	catalog := seededCatalog(t)

	_, err := movie.NewService(catalog, nil, discardLogger(), nil).Flush(ctx)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnavailable))

	repository := movie.NewMemoryRepository()
	service := movie.NewService(catalog, movie.NewPersister(repository, discardLogger(), nil), discardLogger(), nil)

	result, err := service.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, movie.FlushResult{Saved: 4, Version: 1}, result)

	saved, err := repository.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.List(), saved)
}

/*
TestService_FlushSuperseded verifies a flush older than the last saved
version leaves the newer snapshot in place.
*/
func TestService_FlushSuperseded(t *testing.T) {
	ctx := context.Background()
	catalog := seededCatalog(t)
	repository := movie.NewMemoryRepository()
	persister := movie.NewPersister(repository, discardLogger(), nil)

	newer := movie.SeedMovies()[:1]
	_, err := persister.SaveVersion(ctx, newer, 5)
	require.NoError(t, err)

	result, err := movie.NewService(catalog, persister, discardLogger(), nil).Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, movie.FlushResult{Saved: 0, Version: 5}, result)

	saved, err := repository.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(saved))
}

/*
TestService_Get verifies unknown identifiers map to NOT_FOUND.
*/
func TestService_Get(t *testing.T) {
	service := movie.NewService(seededCatalog(t), nil, discardLogger(), nil)

	_, err := service.Get(context.Background(), "missing")
	assert.True(t, apperr.IsNotFound(err))
}
