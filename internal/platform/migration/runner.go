// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the SQL files under data/migrations with
// golang-migrate. It runs at startup when PERSISTENCE=postgres, before the
// catalog snapshot is loaded.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the pgx5:// database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the file:// source scheme.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty reports a half-applied migration that needs manual repair.
var ErrDirty = errors.New("migration: database is dirty")

// RunUp applies every pending migration in migrationsPath to dsn.
func RunUp(dsn, migrationsPath string, logger *slog.Logger) (err error) {
	migrator, err := migrate.New("file://"+migrationsPath, DatabaseURL(dsn))
	if err != nil {
		return fmt.Errorf("migration: open: %w", err)
	}
	defer func() {
		sourceErr, dbErr := migrator.Close()
		err = errors.Join(err, sourceErr, dbErr)
	}()

	migrator.Log = slogAdapter{logger: logger}

	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return fmt.Errorf("migration: read version: %w", err)
	case dirty:
		return fmt.Errorf("%w at version %d", ErrDirty, from)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration: up: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("migrations_applied",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)
	return nil
}

// DatabaseURL rewrites postgres:// and postgresql:// DSNs to the pgx5://
// scheme golang-migrate registers for pgx/v5. Other inputs pass through.
func DatabaseURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogAdapter routes golang-migrate output to debug logs.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Printf(format string, args ...any) {
	a.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (a slogAdapter) Verbose() bool {
	return a.logger.Enabled(context.Background(), slog.LevelDebug)
}
