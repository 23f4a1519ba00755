// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"math"
	"slices"
	"time"

	"github.com/taibuivan/kinora/internal/platform/constants"
	"github.com/taibuivan/kinora/pkg/slice"
)

// Stats is the admin dashboard summary of a catalog snapshot.
type Stats struct {
	TotalMovies    int     `json:"total_movies"`
	AverageRating  float64 `json:"average_rating"`
	GenreCount     int     `json:"genre_count"`
	AddedThisMonth int     `json:"added_this_month"`
	Recent         []Movie `json:"recent"`
}

// ComputeStats summarises movies relative to now.
//
// The average is rounded to one decimal and is 0 for an empty snapshot.
// Genres are counted as distinct exact strings. "This month" is the calendar
// month and year of now, in now's location.
func ComputeStats(movies []Movie, now time.Time) Stats {
	stats := Stats{
		TotalMovies: len(movies),
		Recent:      Featured(movies, constants.RecentCount),
	}

	if len(movies) > 0 {
		sum := slice.SumFunc(movies, func(m Movie) float64 { return m.Rating })
		stats.AverageRating = math.Round(sum/float64(len(movies))*10) / 10
	}

	stats.GenreCount = len(slice.Unique(slice.FlatMap(movies, genresOf)))

	stats.AddedThisMonth = slice.CountFunc(movies, func(m Movie) bool {
		created := m.CreatedAt.In(now.Location())
		return created.Year() == now.Year() && created.Month() == now.Month()
	})

	return stats
}

// Featured returns copies of the first n movies in store order.
func Featured(movies []Movie, n int) []Movie {
	n = max(0, min(n, len(movies)))
	return cloneAll(movies[:n])
}

// Genres returns the distinct genre tags of movies in title-collation order.
func Genres(movies []Movie) []string {
	genres := slice.Unique(slice.FlatMap(movies, genresOf))

	collator := NewTitleCollator()
	slices.SortStableFunc(genres, collator.CompareString)
	return genres
}

func genresOf(m Movie) []string { return m.Genre }
