// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kinora/internal/platform/apperr"
	"github.com/taibuivan/kinora/internal/platform/respond"
)

/*
TestError maps errors to status, code, details and headers without leaking causes.
*/
func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		code       string
		retryAfter string
	}{
		{"not_found", apperr.NotFound("Movie"), http.StatusNotFound, apperr.CodeNotFound, ""},
		{"validation", apperr.ValidationError("Invalid movie", apperr.FieldError{Field: "rating", Message: "Rating must be between 0 and 10"}), http.StatusBadRequest, apperr.CodeValidation, ""},
		{"rate_limited", apperr.RateLimited(3), http.StatusTooManyRequests, apperr.CodeRateLimited, "3"},
		{"plain_error", errors.New("pq: relation does not exist"), http.StatusInternalServerError, apperr.CodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.retryAfter, recorder.Header().Get("Retry-After"))
			assert.NotContains(t, recorder.Body.String(), "pq:")

			var body respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

/*
TestList writes data and meta side by side.
*/
func TestList(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.List(recorder, []string{}, map[string]int{"total": 0})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"total":0}}`, recorder.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))
}
