// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of a query result.
type SortKey string

const (
	SortNewest SortKey = "newest"
	SortRating SortKey = "rating"
	SortYear   SortKey = "year"
	SortTitle  SortKey = "title"
)

// AllGenres is the genre sentinel meaning "no genre filter".
const AllGenres = "all"

// SortKeys lists the accepted sort keys in display order.
var SortKeys = []SortKey{SortNewest, SortRating, SortYear, SortTitle}

// ParseSortKey maps raw input to a [SortKey]. Unknown values become [SortNewest].
func ParseSortKey(raw string) SortKey {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if slices.Contains(SortKeys, key) {
		return key
	}
	return SortNewest
}

// Query holds the three independent inputs of the pipeline.
type Query struct {
	Search string  `json:"search"`
	Genre  string  `json:"genre"`
	Sort   SortKey `json:"sort"`
}

// DefaultQuery is the query applied when the caller supplies nothing.
func DefaultQuery() Query {
	return Query{Search: "", Genre: AllGenres, Sort: SortNewest}
}

// Normalize returns the effective query: trimmed text, an empty genre
// replaced by [AllGenres] and the sort key resolved.
func (q Query) Normalize() Query {
	genre := strings.TrimSpace(q.Genre)
	if genre == "" {
		genre = AllGenres
	}
	return Query{
		Search: strings.TrimSpace(q.Search),
		Genre:  genre,
		Sort:   ParseSortKey(string(q.Sort)),
	}
}

/*
Apply derives the view of movies selected by q.

 1. Search keeps records whose title, description or any genre contains the
    search text, compared case-insensitively.
 2. Genre keeps records carrying a tag equal to the genre, case-insensitively.
    [AllGenres] disables the filter.
 3. The survivors are stably sorted by q.Sort.

The input slice is never modified and the result never aliases it. An empty
result is a non-nil, zero-length slice.
*/
func Apply(movies []Movie, q Query) []Movie {
	q = q.Normalize()
	folder := cases.Fold()
	fold := func(s string) string { return folder.String(s) }

	needle := fold(q.Search)
	genre := fold(q.Genre)
	filterGenre := genre != fold(AllGenres)

	result := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if needle != "" && !matchesSearch(m, needle, fold) {
			continue
		}
		if filterGenre && !slices.ContainsFunc(m.Genre, func(g string) bool { return fold(strings.TrimSpace(g)) == genre }) {
			continue
		}
		result = append(result, m.clone())
	}

	slices.SortStableFunc(result, comparator(q.Sort))
	return result
}

func matchesSearch(m Movie, needle string, fold func(string) string) bool {
	if strings.Contains(fold(m.Title), needle) || strings.Contains(fold(m.Description), needle) {
		return true
	}
	return slices.ContainsFunc(m.Genre, func(g string) bool { return strings.Contains(fold(g), needle) })
}

// comparator returns the ordering for key. Every order is a total preorder,
// so the stable sort keeps store order among ties.
func comparator(key SortKey) func(a, b Movie) int {
	switch key {
	case SortRating:
		return func(a, b Movie) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortYear:
		return func(a, b Movie) int { return cmp.Compare(b.Year, a.Year) }
	case SortTitle:
		collator := NewTitleCollator()
		return func(a, b Movie) int { return collator.CompareString(a.Title, b.Title) }
	default:
		return func(a, b Movie) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

// NewTitleCollator returns the English collator used for title ordering.
// A collator is not safe for concurrent use; build one per goroutine.
func NewTitleCollator() *collate.Collator {
	return collate.New(language.English)
}
