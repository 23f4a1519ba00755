// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package movie implements the Kinora movie catalog.

The [Catalog] owns the canonical, ordered record collection and is the only
mutation surface. [Apply] derives filtered and sorted views from a catalog
snapshot. Everything else in the package (persistence, change events,
statistics, the HTTP handler) is a consumer built on those two.
*/
package movie

import (
	"slices"
	"strings"
	"time"
)

// Movie is a single catalog record.
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Poster      string    `json:"poster"`
	Trailer     string    `json:"trailer,omitempty"`
	Genre       []string  `json:"genre"`
	Year        int       `json:"year"`
	Rating      float64   `json:"rating"`
	Duration    int       `json:"duration"`
	Director    string    `json:"director"`
	Cast        []string  `json:"cast"`
	CreatedAt   time.Time `json:"created_at"`
}

// MovieInput is the body of a record before the catalog assigns its
// identifier and creation timestamp.
type MovieInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Poster      string   `json:"poster"`
	Trailer     string   `json:"trailer,omitempty"`
	Genre       []string `json:"genre"`
	Year        int      `json:"year"`
	Rating      float64  `json:"rating"`
	Duration    int      `json:"duration"`
	Director    string   `json:"director"`
	Cast        []string `json:"cast"`
}

// MoviePatch is a partial update. A nil field is left untouched.
//
// ID and CreatedAt have no patch field, so a JSON body carrying "id" or
// "created_at" is decoded without error and those keys are ignored.
type MoviePatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Poster      *string   `json:"poster,omitempty"`
	Trailer     *string   `json:"trailer,omitempty"`
	Genre       *[]string `json:"genre,omitempty"`
	Year        *int      `json:"year,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	Duration    *int      `json:"duration,omitempty"`
	Director    *string   `json:"director,omitempty"`
	Cast        *[]string `json:"cast,omitempty"`
}

// Field names used as keys in validation error maps.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPoster      = "poster"
	FieldTrailer     = "trailer"
	FieldGenre       = "genre"
	FieldYear        = "year"
	FieldRating      = "rating"
	FieldDuration    = "duration"
	FieldDirector    = "director"
	FieldCast        = "cast"
)

// # Copying

// clone returns a deep copy; the slices never alias the receiver's.
func (m Movie) clone() Movie {
	m.Genre = slices.Clone(m.Genre)
	m.Cast = slices.Clone(m.Cast)
	return m
}

func cloneAll(movies []Movie) []Movie {
	out := make([]Movie, len(movies))
	for i, m := range movies {
		out[i] = m.clone()
	}
	return out
}

// Input strips the catalog-assigned fields.
func (m Movie) Input() MovieInput {
	return MovieInput{
		Title:       m.Title,
		Description: m.Description,
		Poster:      m.Poster,
		Trailer:     m.Trailer,
		Genre:       slices.Clone(m.Genre),
		Year:        m.Year,
		Rating:      m.Rating,
		Duration:    m.Duration,
		Director:    m.Director,
		Cast:        slices.Clone(m.Cast),
	}
}

// withInput replaces the body of m, keeping its identifier and timestamp.
func (m Movie) withInput(in MovieInput) Movie {
	return Movie{
		ID:          m.ID,
		Title:       in.Title,
		Description: in.Description,
		Poster:      in.Poster,
		Trailer:     in.Trailer,
		Genre:       slices.Clone(in.Genre),
		Year:        in.Year,
		Rating:      in.Rating,
		Duration:    in.Duration,
		Director:    in.Director,
		Cast:        slices.Clone(in.Cast),
		CreatedAt:   m.CreatedAt,
	}
}

// equal reports field-wise equality. Timestamps compare by instant.
func (m Movie) equal(other Movie) bool {
	return m.ID == other.ID &&
		m.Title == other.Title &&
		m.Description == other.Description &&
		m.Poster == other.Poster &&
		m.Trailer == other.Trailer &&
		slices.Equal(m.Genre, other.Genre) &&
		m.Year == other.Year &&
		m.Rating == other.Rating &&
		m.Duration == other.Duration &&
		m.Director == other.Director &&
		slices.Equal(m.Cast, other.Cast) &&
		m.CreatedAt.Equal(other.CreatedAt)
}

// # Normalisation

// Normalize trims text fields and drops blank genre and cast entries.
// Input that is already clean is returned unchanged.
func (in MovieInput) Normalize() MovieInput {
	return MovieInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Poster:      strings.TrimSpace(in.Poster),
		Trailer:     strings.TrimSpace(in.Trailer),
		Genre:       cleanList(in.Genre),
		Year:        in.Year,
		Rating:      in.Rating,
		Duration:    in.Duration,
		Director:    strings.TrimSpace(in.Director),
		Cast:        cleanList(in.Cast),
	}
}

// cleanList trims entries and removes the empty ones. Duplicates are kept.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// # Patching

// IsEmpty reports whether the patch sets no field at all.
func (p MoviePatch) IsEmpty() bool {
	return p == MoviePatch{}
}

// applyTo returns input with every provided field replaced.
func (p MoviePatch) applyTo(in MovieInput) MovieInput {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Poster != nil {
		in.Poster = *p.Poster
	}
	if p.Trailer != nil {
		in.Trailer = *p.Trailer
	}
	if p.Genre != nil {
		in.Genre = slices.Clone(*p.Genre)
	}
	if p.Year != nil {
		in.Year = *p.Year
	}
	if p.Rating != nil {
		in.Rating = *p.Rating
	}
	if p.Duration != nil {
		in.Duration = *p.Duration
	}
	if p.Director != nil {
		in.Director = *p.Director
	}
	if p.Cast != nil {
		in.Cast = slices.Clone(*p.Cast)
	}
	return in
}
