// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/kinora/internal/platform/apperr"
	"github.com/taibuivan/kinora/internal/platform/constants"
)

// QueryObserver receives the duration of every pipeline run.
type QueryObserver interface {
	ObserveQuery(duration time.Duration)
}

// FlushResult reports an explicit persistence flush.
type FlushResult struct {
	Saved   int    `json:"saved"`
	Version uint64 `json:"version"`
}

// Service exposes catalog operations to transports, adding logging and
// query metrics around the [Catalog] and [Apply].
type Service struct {
	catalog   *Catalog
	persister *Persister
	logger    *slog.Logger
	observer  QueryObserver
	clock     func() time.Time
}

// NewService wires the service. persister and observer may be nil.
func NewService(catalog *Catalog, persister *Persister, logger *slog.Logger, observer QueryObserver) *Service {
	return &Service{
		catalog:   catalog,
		persister: persister,
		logger:    logger,
		observer:  observer,
		clock:     time.Now,
	}
}

// List runs the query pipeline over the current snapshot and returns the
// result together with the effective query.
func (service *Service) List(_ context.Context, query Query) ([]Movie, Query) {
	start := time.Now()
	effective := query.Normalize()
	movies := Apply(service.catalog.List(), effective)
	if service.observer != nil {
		service.observer.ObserveQuery(time.Since(start))
	}
	return movies, effective
}

// Get returns the record with id or a NOT_FOUND error.
func (service *Service) Get(_ context.Context, id string) (Movie, error) {
	record, ok := service.catalog.Get(id)
	if !ok {
		return Movie{}, apperr.NotFound("Movie")
	}
	return record, nil
}

// Create adds a new record.
func (service *Service) Create(ctx context.Context, input MovieInput) (Movie, error) {
	record, err := service.catalog.Add(input)
	if err != nil {
		return Movie{}, err
	}

	service.logger.InfoContext(ctx, "movie_created",
		slog.String("movie_id", record.ID),
		slog.String("title", record.Title),
	)
	return record, nil
}

// Update applies a partial update to the record with id.
func (service *Service) Update(ctx context.Context, id string, patch MoviePatch) (Movie, error) {
	record, err := service.catalog.Update(id, patch)
	if err != nil {
		return Movie{}, err
	}

	service.logger.InfoContext(ctx, "movie_updated", slog.String("movie_id", id))
	return record, nil
}

// Delete removes the record with id; unknown ids are accepted silently.
func (service *Service) Delete(ctx context.Context, id string) {
	_, existed := service.catalog.Get(id)
	service.catalog.Delete(id)

	if existed {
		service.logger.WarnContext(ctx, "movie_deleted", slog.String("movie_id", id))
	}
}

// Featured returns the carousel selection.
func (service *Service) Featured(_ context.Context) []Movie {
	return Featured(service.catalog.List(), constants.FeaturedCount)
}

// Genres returns the distinct genres for the filter bar.
func (service *Service) Genres(_ context.Context) []string {
	return Genres(service.catalog.List())
}

// Stats computes the dashboard summary.
func (service *Service) Stats(_ context.Context) Stats {
	return ComputeStats(service.catalog.List(), service.clock())
}

// Flush saves the full catalog through the persister.
func (service *Service) Flush(ctx context.Context) (FlushResult, error) {
	if service.persister == nil {
		return FlushResult{}, apperr.ServiceUnavailable("Persistence is not configured")
	}

	movies, version := service.catalog.Snapshot()
	saved, err := service.persister.SaveVersion(ctx, movies, version)
	if err != nil {
		return FlushResult{}, apperr.Internal(err)
	}
	if !saved {
		// A newer snapshot already landed; report what the store holds.
		version, _ = service.persister.LastSaved()
		movies = nil
	}

	service.logger.InfoContext(ctx, "catalog_flushed",
		slog.Int("saved", len(movies)),
		slog.Uint64("version", version),
		slog.Bool("superseded", !saved),
	)
	return FlushResult{Saved: len(movies), Version: version}, nil
}
