// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"strings"

	"github.com/taibuivan/kinora/internal/platform/validate"
)

// Bounds enforced on every accepted record.
const (
	MinYear   = 1900
	MaxYear   = 2030
	MinRating = 0.0
	MaxRating = 10.0
)

// Validate checks the record constraints and returns a VALIDATION_ERROR
// whose details are keyed by field. It does not normalise; callers pass
// the output of [MovieInput.Normalize].
func (in MovieInput) Validate() error {
	v := (&validate.Validator{}).
		Label(FieldTitle, "Title").
		Label(FieldDescription, "Description").
		Label(FieldPoster, "Poster URL").
		Label(FieldDirector, "Director").
		Label(FieldYear, "Year").
		Label(FieldRating, "Rating").
		Label(FieldDuration, "Duration")

	v.Required(FieldTitle, in.Title).
		Required(FieldDescription, in.Description).
		Required(FieldPoster, in.Poster).
		URL(FieldPoster, in.Poster).
		URL(FieldTrailer, in.Trailer).
		Range(FieldYear, in.Year, MinYear, MaxYear).
		FloatRange(FieldRating, in.Rating, MinRating, MaxRating).
		Positive(FieldDuration, in.Duration).
		Required(FieldDirector, in.Director).
		Custom(FieldGenre, !hasEntry(in.Genre), "At least one genre is required").
		Custom(FieldCast, !hasEntry(in.Cast), "At least one cast member is required")

	return v.Err()
}

func hasEntry(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
