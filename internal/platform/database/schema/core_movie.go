// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds table and column identifiers for hand-written SQL.
package schema

// CoreMovieTable represents the 'core.movie' table
type CoreMovieTable struct {
	Table       string
	ID          string
	Position    string
	Title       string
	Description string
	Poster      string
	Trailer     string
	Genre       string
	Year        string
	Rating      string
	Duration    string
	Director    string
	Cast        string
	CreatedAt   string
}

// CoreMovie is the schema definition for core.movie
var CoreMovie = CoreMovieTable{
	Table:       "core.movie",
	ID:          "id",
	Position:    "position",
	Title:       "title",
	Description: "description",
	Poster:      "poster",
	Trailer:     "trailer",
	Genre:       "genre",
	Year:        "year",
	Rating:      "rating",
	Duration:    "duration",
	Director:    "director",
	Cast:        "cast_members",
	CreatedAt:   "created_at",
}

// Columns returns the record columns in scan order. Position is excluded;
// it only drives ORDER BY.
func (t CoreMovieTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Description, t.Poster, t.Trailer, t.Genre,
		t.Year, t.Rating, t.Duration, t.Director, t.Cast, t.CreatedAt,
	}
}

// CoreCatalogSnapshotTable represents the single-row 'core.catalog_snapshot'
// marker written with every save.
type CoreCatalogSnapshotTable struct {
	Table   string
	ID      string
	SavedAt string
	Movies  string
}

// CoreCatalogSnapshot is the schema definition for core.catalog_snapshot
var CoreCatalogSnapshot = CoreCatalogSnapshotTable{
	Table:   "core.catalog_snapshot",
	ID:      "id",
	SavedAt: "saved_at",
	Movies:  "movie_count",
}
