// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/kinora/pkg/slice"
)

/*
TestFilter checks that a non-nil input never yields nil.
*/
func TestFilter(t *testing.T) {
	genres := []string{"Horror", "Mystery", "Romance"}

	matched := slice.Filter(genres, func(s string) bool { return strings.HasPrefix(s, "M") })
	assert.Equal(t, []string{"Mystery"}, matched)

	none := slice.Filter(genres, func(string) bool { return false })
	assert.NotNil(t, none)
	assert.Empty(t, none)

	assert.Nil(t, slice.Filter[string](nil, func(string) bool { return true }))
}

func TestCountAndSum(t *testing.T) {
	ratings := []float64{8.5, 7.8, 7.2}

	assert.Equal(t, 2, slice.CountFunc(ratings, func(r float64) bool { return r > 7.5 }))
	assert.InDelta(t, 23.5, slice.SumFunc(ratings, func(r float64) float64 { return r }), 1e-9)
	assert.Zero(t, slice.SumFunc([]float64(nil), func(r float64) float64 { return r }))
}

func TestFlatMap(t *testing.T) {
	tags := [][]string{{"Sci-Fi", "Thriller"}, {}, {"Mystery"}}
	got := slice.FlatMap(tags, func(g []string) []string { return g })

	assert.Equal(t, []string{"Sci-Fi", "Thriller", "Mystery"}, got)
	assert.NotNil(t, slice.FlatMap([][]string(nil), func(g []string) []string { return g }))
}

func TestUnique(t *testing.T) {
	got := slice.Unique([]string{"Sci-Fi", "Thriller", "Sci-Fi", "Mystery", "Thriller"})
	assert.Equal(t, []string{"Sci-Fi", "Thriller", "Mystery"}, got)
	assert.NotNil(t, slice.Unique[string](nil))
}
