// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate collects field-level rule failures into a single
// VALIDATION_ERROR. Movie records and admin login bodies are checked with it.
package validate

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/taibuivan/kinora/internal/platform/apperr"
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// Messages default to a field-agnostic form ("This field is required").
// When a label is registered with [Validator.Label], rules phrase the message
// around it instead ("Title is required").
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs   []apperr.FieldError
	labels map[string]string
}

// Label registers a human-readable name used to phrase messages for field.
func (v *Validator) Label(field, label string) *Validator {
	if v.labels == nil {
		v.labels = make(map[string]string)
	}
	v.labels[field] = label
	return v
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, v.phrase(field, "is required", "This field is required"))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, v.between(field, fmt.Sprintf("%d and %d", min, max)))
	}
	return v
}

// FloatRange fails if the value is NaN or outside the [min, max] range (inclusive).
func (v *Validator) FloatRange(field string, value, min, max float64) *Validator {
	if math.IsNaN(value) || value < min || value > max {
		v.add(field, v.between(field, fmt.Sprintf("%g and %g", min, max)))
	}
	return v
}

// Positive fails if the value is zero or negative.
func (v *Validator) Positive(field string, value int) *Validator {
	if value <= 0 {
		v.add(field, v.phrase(field, "must be greater than 0", "Must be greater than 0"))
	}
	return v
}

// URL fails if the value is not an absolute URL with a scheme and host.
//
// Empty values are left to [Validator.Required]; URL only checks the format.
func (v *Validator) URL(field, value string) *Validator {
	if value == "" {
		return v
	}
	parsed, err := url.ParseRequestURI(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		v.add(field, "Must be a valid URL")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("genre", len(genres) == 0, "At least one genre is required")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Failed reports whether the given field has at least one recorded failure.
func (v *Validator) Failed(field string) bool {
	for _, e := range v.errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// phrase builds "<Label> <predicate>" when field is labelled, else fallback.
func (v *Validator) phrase(field, predicate, fallback string) string {
	if label, ok := v.labels[field]; ok {
		return label + " " + predicate
	}
	return fallback
}

func (v *Validator) between(field, bounds string) string {
	return v.phrase(field, "must be between "+bounds, "Must be between "+bounds)
}
