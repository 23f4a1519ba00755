// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads path parameters, query strings, JSON bodies and
// caller identity from incoming requests.
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/kinora/internal/platform/apperr"
	"github.com/taibuivan/kinora/internal/platform/constants"
	"github.com/taibuivan/kinora/internal/platform/ctxutil"
	"github.com/taibuivan/kinora/internal/platform/sec"
	"github.com/taibuivan/kinora/internal/platform/validate"
)

// DecodeJSON decodes a single JSON value from the body into target.
//
// Empty, malformed or trailing-garbage bodies yield [validate.ErrInvalidJSON];
// a body over [constants.MaxRequestBodyBytes] yields a 400 naming the limit.
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, constants.MaxRequestBodyBytes))

	if err := decoder.Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.BadRequest("Request body is too large")
		}
		return validate.ErrInvalidJSON
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

// ID returns the trimmed path parameter name.
func ID(request *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(request, name))
}

// QueryParam returns the raw query string value of name, or "".
func QueryParam(request *http.Request, name string) string {
	return request.URL.Query().Get(name)
}

// RequiredClaims returns the caller's verified claims or a 401.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.Claims(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
