// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/taibuivan/kinora/internal/platform/database/schema"
	"github.com/taibuivan/kinora/internal/platform/dberr"
)

// pgxConn is the subset of [*pgxpool.Pool] the repository needs.
type pgxConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresRepository stores the snapshot as one row per movie in core.movie.
// The position column preserves store order.
type postgresRepository struct {
	db  pgxConn
	now func() time.Time
}

// NewPostgresRepository constructs a PostgreSQL backed snapshot store.
func NewPostgresRepository(db pgxConn) SnapshotRepository {
	return &postgresRepository{db: db, now: time.Now}
}

/*
Load reads every row ordered by position.

Returns:
  - []Movie: The stored catalog in store order
  - error: [ErrNoSnapshot] when the marker row is absent, otherwise
    database errors wrapped by dberr
*/
func (repository *postgresRepository) Load(ctx context.Context) ([]Movie, error) {
	marker := schema.CoreCatalogSnapshot
	var savedAt time.Time
	err := repository.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s`, marker.SavedAt, marker.Table)).Scan(&savedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, dberr.Wrap(err, "load_snapshot_marker")
	}

	table := schema.CoreMovie
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC`,
		strings.Join(table.Columns(), ", "), table.Table, table.Position)

	rows, err := repository.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "load_movies")
	}
	defer rows.Close()

	movies := make([]Movie, 0)
	for rows.Next() {
		var (
			record  Movie
			trailer pgtype.Text
		)
		if err := rows.Scan(
			&record.ID, &record.Title, &record.Description, &record.Poster, &trailer, &record.Genre,
			&record.Year, &record.Rating, &record.Duration, &record.Director, &record.Cast, &record.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_movie")
		}
		record.Trailer = trailer.String
		record.CreatedAt = record.CreatedAt.UTC()
		movies = append(movies, record)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_movies")
	}
	return movies, nil
}

/*
Save replaces the table contents with movies inside one transaction.

Rows are written with COPY and the core.catalog_snapshot marker is upserted
in the same transaction; the previous snapshot stays visible to readers
until commit.
*/
func (repository *postgresRepository) Save(ctx context.Context, movies []Movie) error {
	table := schema.CoreMovie

	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_save_movies")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, table.Table)); err != nil {
		return dberr.Wrap(err, "clear_movies")
	}

	columns := append([]string{table.Position}, table.Columns()...)
	source := pgx.CopyFromSlice(len(movies), func(i int) ([]any, error) {
		m := movies[i]
		trailer := pgtype.Text{String: m.Trailer, Valid: m.Trailer != ""}
		return []any{
			i, m.ID, m.Title, m.Description, m.Poster, trailer, m.Genre,
			m.Year, m.Rating, m.Duration, m.Director, m.Cast, m.CreatedAt,
		}, nil
	})

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{schemaName(table.Table), tableName(table.Table)}, columns, source); err != nil {
		return dberr.Wrap(err, "copy_movies")
	}

	marker := schema.CoreCatalogSnapshot
	upsert := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s) VALUES (TRUE, $1, $2)
		ON CONFLICT (%[2]s) DO UPDATE SET %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s`,
		marker.Table, marker.ID, marker.SavedAt, marker.Movies)
	if _, err := tx.Exec(ctx, upsert, repository.now().UTC(), len(movies)); err != nil {
		return dberr.Wrap(err, "mark_snapshot")
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit_save_movies")
	}
	return nil
}

// schemaName and tableName split a qualified "schema.table" identifier.
func schemaName(qualified string) string {
	before, _, _ := strings.Cut(qualified, ".")
	return before
}

func tableName(qualified string) string {
	_, after, found := strings.Cut(qualified, ".")
	if !found {
		return qualified
	}
	return after
}
