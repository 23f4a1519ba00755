// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies PostgreSQL failures of the catalog store into
// [apperr.AppError] values, keeping driver details out of API responses.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/kinora/internal/platform/apperr"
)

// SQLSTATE codes with a dedicated mapping.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeUndefinedTable       = "42P01"
)

// Wrap classifies err raised while performing op. A nil err stays nil.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Movie")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.ServiceUnavailable("Catalog store timed out").WithCause(fmt.Errorf("%s: %w", op, err))
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case codeUniqueViolation:
			return apperr.Conflict("Duplicate movie identifier during " + op)
		case codeCheckViolation:
			return apperr.Unprocessable("Movie rejected by a database constraint during " + op)
		case codeSerializationFailure:
			return apperr.Conflict("Concurrent catalog write during " + op)
		case codeUndefinedTable:
			return apperr.ServiceUnavailable("Catalog schema is not migrated").WithCause(err)
		}
	}

	return apperr.Internal(fmt.Errorf("%s: %w", op, err))
}
