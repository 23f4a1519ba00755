// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/kinora/internal/platform/constants"
)

// PersistObserver receives the outcome of every snapshot save.
type PersistObserver interface {
	ObservePersist(err error, duration time.Duration)
}

// Persister writes catalog snapshots through to a [SnapshotRepository].
// Persistence is best-effort: a failed save is logged and counted, and the
// in-memory catalog stays authoritative.
type Persister struct {
	repository SnapshotRepository
	logger     *slog.Logger
	observer   PersistObserver
	timeout    time.Duration

	// mu serialises versioned saves; lastSaved is only read under it.
	mu        sync.Mutex
	lastSaved uint64
	hasSaved  bool
}

// NewPersister builds a persister. observer may be nil.
func NewPersister(repository SnapshotRepository, logger *slog.Logger, observer PersistObserver) *Persister {
	return &Persister{
		repository: repository,
		logger:     logger,
		observer:   observer,
		timeout:    constants.CollaboratorTimeout,
	}
}

// OnChange is a [Catalog] subscriber that saves the change's snapshot.
func (p *Persister) OnChange(change Change) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if _, err := p.SaveVersion(ctx, change.Snapshot, change.Version); err != nil {
		p.logger.Error("catalog_persist_failed",
			slog.String("kind", string(change.Kind)),
			slog.Uint64("version", change.Version),
			slog.Any("error", err),
		)
	}
}

// SaveVersion saves movies taken at catalog version. A snapshot older than
// the last one saved is skipped and reported with saved false, so a slow
// writer never overwrites newer state.
func (p *Persister) SaveVersion(ctx context.Context, movies []Movie, version uint64) (saved bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasSaved && version < p.lastSaved {
		p.logger.WarnContext(ctx, "catalog_persist_stale",
			slog.Uint64("version", version),
			slog.Uint64("last_saved", p.lastSaved),
		)
		return false, nil
	}

	if err := p.Flush(ctx, movies); err != nil {
		return false, err
	}
	p.lastSaved, p.hasSaved = version, true
	return true, nil
}

// LastSaved returns the newest version written by [Persister.SaveVersion].
func (p *Persister) LastSaved() (version uint64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSaved, p.hasSaved
}

// Flush saves movies immediately without version ordering.
func (p *Persister) Flush(ctx context.Context, movies []Movie) error {
	start := time.Now()
	err := p.repository.Save(ctx, movies)
	if p.observer != nil {
		p.observer.ObservePersist(err, time.Since(start))
	}
	return err
}
