// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Seed source names accepted by [LoadSeed].
const (
	SourceBuiltin = "builtin"
	SourceHosted  = "hosted"
	SourceNone    = "none"
)

// LoadSeed returns the starting records for an empty catalog.
// hosted is only consulted for [SourceHosted].
func LoadSeed(ctx context.Context, source string, hosted HostedSource) ([]Movie, error) {
	switch source {
	case SourceBuiltin, "":
		return SeedMovies(), nil
	case SourceHosted:
		if hosted == nil {
			return nil, errors.New("movie: hosted seed source is not configured")
		}
		return LoadHosted(ctx, hosted)
	case SourceNone:
		return make([]Movie, 0), nil
	default:
		return nil, fmt.Errorf("movie: unknown seed source %q", source)
	}
}

func pexelsPoster(photo int) string {
	return fmt.Sprintf("https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=500&h=750&fit=crop", photo, photo)
}

func seedTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic("movie: bad seed timestamp " + value)
	}
	return parsed
}

// SeedMovies returns the built-in starter catalog, most recent first.
// Each call returns fresh copies.
func SeedMovies() []Movie {
	return []Movie{
		{
			ID:          "1",
			Title:       "The Digital Frontier",
			Description: "A thrilling journey into the world of artificial intelligence and digital consciousness.",
			Poster:      pexelsPoster(7991579),
			Trailer:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Genre:       []string{"Sci-Fi", "Thriller"},
			Year:        2024,
			Rating:      8.5,
			Duration:    142,
			Director:    "Alex Rivera",
			Cast:        []string{"Emma Stone", "Ryan Gosling", "Oscar Isaac"},
			CreatedAt:   seedTime("2024-01-15T10:00:00Z"),
		},
		{
			ID:          "2",
			Title:       "Ocean's Mystery",
			Description: "Deep beneath the waves lies a secret that could change humanity forever.",
			Poster:      pexelsPoster(1117132),
			Genre:       []string{"Adventure", "Mystery"},
			Year:        2023,
			Rating:      7.8,
			Duration:    118,
			Director:    "Sofia Coppola",
			Cast:        []string{"Scarlett Johansson", "Jason Momoa", "Lupita Nyong'o"},
			CreatedAt:   seedTime("2024-01-10T14:30:00Z"),
		},
		{
			ID:          "3",
			Title:       "Urban Legends",
			Description: "When myths become reality, a young detective must solve the impossible.",
			Poster:      pexelsPoster(2403251),
			Genre:       []string{"Horror", "Mystery"},
			Year:        2024,
			Rating:      7.2,
			Duration:    105,
			Director:    "Jordan Peele",
			Cast:        []string{"Lupita Nyong'o", "Daniel Kaluuya", "Keke Palmer"},
			CreatedAt:   seedTime("2024-01-05T16:45:00Z"),
		},
		{
			ID:          "4",
			Title:       "Neon Nights",
			Description: "In a cyberpunk future, love blooms in the most unexpected places.",
			Poster:      pexelsPoster(2169434),
			Genre:       []string{"Romance", "Sci-Fi"},
			Year:        2023,
			Rating:      8.1,
			Duration:    128,
			Director:    "Denis Villeneuve",
			Cast:        []string{"Zendaya", "Timothée Chalamet", "Rebecca Ferguson"},
			CreatedAt:   seedTime("2023-12-20T12:00:00Z"),
		},
	}
}
