// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kinora/internal/core/movie"
)

type fakeHostedSource struct {
	body  string
	err   error
	query string
}

func (source *fakeHostedSource) Query(_ context.Context, groq string, out any) error {
	source.query = groq
	if source.err != nil {
		return source.err
	}
	return json.Unmarshal([]byte(source.body), out)
}

const hostedFixture = `[
	{
		"_id": "abc123",
		"_createdAt": "2024-03-01T08:00:00Z",
		"title": "  Glass Harbor ",
		"plot": "A lighthouse keeper hears voices in the fog.",
		"genre": ["Drama", " "],
		"rating": 6.9,
		"year": 2021,
		"duration": 97,
		"director": "Chloé Zhao",
		"cast": ["Frances McDormand"],
		"posterUrl": "https://cdn.sanity.io/images/p/d/glass.jpg"
	},
	{
		"_id": "draft-1",
		"_createdAt": "2024-02-01T08:00:00Z",
		"title": "Untitled",
		"plot": "",
		"genre": [],
		"rating": 0,
		"year": 2024,
		"duration": 0
	}
]`

/*
TestLoadHosted verifies hosted rows are mapped onto catalog records.
*/
func TestLoadHosted(t *testing.T) {
	source := &fakeHostedSource{body: hostedFixture}

	movies, err := movie.LoadHosted(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, movie.HostedQuery, source.query)

	first := movies[0]
	assert.Equal(t, "abc123", first.ID)
	assert.Equal(t, "Glass Harbor", first.Title)
	assert.Equal(t, "A lighthouse keeper hears voices in the fog.", first.Description)
	assert.Equal(t, "https://cdn.sanity.io/images/p/d/glass.jpg", first.Poster)
	assert.Equal(t, []string{"Drama"}, first.Genre)
	assert.Equal(t, 2024, first.CreatedAt.Year())
}

/*
TestLoadHosted_SeedRejectsIncompleteRows verifies hosted drafts missing
required fields never reach the catalog.
*/
func TestLoadHosted_SeedRejectsIncompleteRows(t *testing.T) {
	movies, err := movie.LoadHosted(context.Background(), &fakeHostedSource{body: hostedFixture})
	require.NoError(t, err)

	catalog := movie.NewCatalog()
	rejections := catalog.Seed(movies)

	require.Len(t, rejections, 1)
	assert.Equal(t, "draft-1", rejections[0].ID)
	assert.Contains(t, rejections[0].Fields, movie.FieldDescription)
	assert.Contains(t, rejections[0].Fields, movie.FieldPoster)
	assert.Equal(t, []string{"abc123"}, ids(catalog.List()))
}

/*
TestLoadHosted_SourceError verifies a failing source is wrapped.
*/
func TestLoadHosted_SourceError(t *testing.T) {
	cause := errors.New("dial tcp: timeout")

	_, err := movie.LoadHosted(context.Background(), &fakeHostedSource{err: cause})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

/*
TestLoadSeed covers each seed source.
*/
func TestLoadSeed(t *testing.T) {
	ctx := context.Background()

	builtin, err := movie.LoadSeed(ctx, movie.SourceBuiltin, nil)
	require.NoError(t, err)
	assert.Len(t, builtin, 4)

	hosted, err := movie.LoadSeed(ctx, movie.SourceHosted, &fakeHostedSource{body: hostedFixture})
	require.NoError(t, err)
	assert.Len(t, hosted, 2)

	none, err := movie.LoadSeed(ctx, movie.SourceNone, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = movie.LoadSeed(ctx, movie.SourceHosted, nil)
	assert.Error(t, err)

	_, err = movie.LoadSeed(ctx, "ftp", nil)
	assert.Error(t, err)
}
