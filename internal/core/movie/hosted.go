// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"context"
	"fmt"
	"time"
)

// HostedQuery is the GROQ projection used to read movies from the hosted
// content backend. The poster is resolved from its asset reference.
const HostedQuery = `*[_type == "movie"] | order(_createdAt desc){
	_id,
	_createdAt,
	title,
	plot,
	genre,
	rating,
	year,
	duration,
	director,
	cast,
	trailer,
	"posterUrl": poster.asset->url
}`

// HostedMovie is the read model served by the hosted backend. Its field
// names differ from [Movie]; convert with [HostedMovie.Normalize].
type HostedMovie struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"_createdAt"`
	Title     string    `json:"title"`
	Plot      string    `json:"plot"`
	Genre     []string  `json:"genre"`
	Rating    float64   `json:"rating"`
	Year      int       `json:"year"`
	Duration  int       `json:"duration"`
	Director  string    `json:"director"`
	Cast      []string  `json:"cast"`
	Trailer   string    `json:"trailer"`
	PosterURL string    `json:"posterUrl"`
}

// Normalize maps the hosted shape onto [Movie]. The result is not validated;
// [Catalog.Seed] does that and reports what it refuses.
func (h HostedMovie) Normalize() Movie {
	identity := Movie{ID: h.ID, CreatedAt: h.CreatedAt}
	return identity.withInput(MovieInput{
		Title:       h.Title,
		Description: h.Plot,
		Poster:      h.PosterURL,
		Trailer:     h.Trailer,
		Genre:       h.Genre,
		Year:        h.Year,
		Rating:      h.Rating,
		Duration:    h.Duration,
		Director:    h.Director,
		Cast:        h.Cast,
	}.Normalize())
}

// HostedSource runs a query against the hosted backend.
type HostedSource interface {
	Query(ctx context.Context, groq string, out any) error
}

// LoadHosted fetches and normalises every hosted movie.
func LoadHosted(ctx context.Context, source HostedSource) ([]Movie, error) {
	var rows []HostedMovie
	if err := source.Query(ctx, HostedQuery, &rows); err != nil {
		return nil, fmt.Errorf("movie: failed to load hosted catalog: %w", err)
	}

	movies := make([]Movie, len(rows))
	for i, row := range rows {
		movies[i] = row.Normalize()
	}
	return movies, nil
}
