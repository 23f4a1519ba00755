// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/taibuivan/kinora/internal/platform/apperr"
	"github.com/taibuivan/kinora/pkg/uuid"
)

// maxIDAttempts bounds identifier regeneration on collision.
const maxIDAttempts = 8

// ChangeKind names the mutation behind a [Change].
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangeSeeded  ChangeKind = "seeded"
)

// Change is delivered to subscribers after every published mutation.
type Change struct {
	Kind ChangeKind

	// Movie is the record that was created, updated or deleted.
	// It is the zero value for [ChangeSeeded].
	Movie Movie

	// Snapshot is the full collection after the change, in store order.
	Snapshot []Movie

	// Version is the catalog version this change produced.
	Version uint64
}

// SeedRejection describes a record refused by [Catalog.Seed].
type SeedRejection struct {
	Index  int
	ID     string
	Title  string
	Fields map[string]string
}

// CatalogOption configures a [Catalog].
type CatalogOption func(*Catalog)

// WithClock replaces the wall clock used for creation timestamps.
func WithClock(clock func() time.Time) CatalogOption {
	return func(c *Catalog) { c.clock = clock }
}

// WithIDGenerator replaces the UUIDv7 identifier source.
func WithIDGenerator(generate func() string) CatalogOption {
	return func(c *Catalog) { c.newID = generate }
}

type subscriber struct {
	id uint64
	fn func(Change)
}

/*
Catalog is the authoritative in-memory movie collection.

Records are kept most-recent-first. Every value returned is a deep copy,
so callers can never reach catalog state.

# Concurrency

Mutations are serialised: each one, including delivery of its [Change] to
every subscriber, completes before the next starts. Subscribers run after
the collection lock is released and may read the catalog, but calling a
mutating method from a subscriber deadlocks.
*/
type Catalog struct {
	// dispatch serialises mutation plus notification.
	dispatch sync.Mutex

	mu      sync.RWMutex
	movies  []Movie
	issued  map[string]struct{}
	version uint64

	subMu       sync.Mutex
	subscribers []subscriber
	nextSubID   uint64

	clock func() time.Time
	newID func() string
}

// NewCatalog returns an empty catalog.
func NewCatalog(opts ...CatalogOption) *Catalog {
	catalog := &Catalog{
		movies: make([]Movie, 0),
		issued: make(map[string]struct{}),
		clock:  time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(catalog)
	}
	return catalog
}

// # Mutations

// Add validates input and prepends a new record with a fresh identifier.
func (c *Catalog) Add(input MovieInput) (Movie, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return Movie{}, err
	}

	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	id, err := c.issueIDLocked()
	if err != nil {
		c.mu.Unlock()
		return Movie{}, err
	}

	record := Movie{ID: id, CreatedAt: c.clock().UTC()}.withInput(input)
	c.movies = slices.Insert(c.movies, 0, record)
	change := c.publishLocked(ChangeCreated, record)
	c.mu.Unlock()

	c.notify(change)
	return record.clone(), nil
}

// Update merges the provided patch fields into the record with id.
//
// The merged record is re-validated; on failure nothing changes. A patch
// that leaves the record identical publishes no change.
func (c *Catalog) Update(id string, patch MoviePatch) (Movie, error) {
	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	index := c.indexLocked(id)
	if index < 0 {
		c.mu.Unlock()
		return Movie{}, apperr.NotFound("Movie")
	}

	current := c.movies[index]
	merged := patch.applyTo(current.Input()).Normalize()
	if err := merged.Validate(); err != nil {
		c.mu.Unlock()
		return Movie{}, err
	}

	record := current.withInput(merged)
	if record.equal(current) {
		c.mu.Unlock()
		return current.clone(), nil
	}

	c.movies[index] = record
	change := c.publishLocked(ChangeUpdated, record)
	c.mu.Unlock()

	c.notify(change)
	return record.clone(), nil
}

// Delete removes the record with id. An unknown id is a no-op.
func (c *Catalog) Delete(id string) {
	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	index := c.indexLocked(id)
	if index < 0 {
		c.mu.Unlock()
		return
	}

	removed := c.movies[index]
	c.movies = slices.Delete(c.movies, index, index+1)
	change := c.publishLocked(ChangeDeleted, removed)
	c.mu.Unlock()

	c.notify(change)
}

// Seed replaces the collection with pre-identified records, keeping their
// order, identifiers and timestamps. A zero timestamp is set to now.
//
// Records with an invalid body, an empty identifier or an identifier seen
// earlier in the batch are skipped and reported. Seeding always publishes
// one [ChangeSeeded], even when every record was rejected.
func (c *Catalog) Seed(records []Movie) []SeedRejection {
	accepted := make([]Movie, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	var rejections []SeedRejection

	for index, candidate := range records {
		fields := map[string]string{}

		input := candidate.Input().Normalize()
		if err := input.Validate(); err != nil {
			if appError := apperr.As(err); appError != nil {
				fields = appError.Fields()
			} else {
				fields[FieldID] = err.Error()
			}
		}

		if candidate.ID == "" {
			fields[FieldID] = "Identifier is required"
		} else if _, dup := seen[candidate.ID]; dup {
			fields[FieldID] = "Duplicate identifier"
		}

		if len(fields) > 0 {
			rejections = append(rejections, SeedRejection{
				Index:  index,
				ID:     candidate.ID,
				Title:  candidate.Title,
				Fields: fields,
			})
			continue
		}

		seen[candidate.ID] = struct{}{}
		record := candidate.withInput(input)
		if record.CreatedAt.IsZero() {
			record.CreatedAt = c.clock()
		}
		record.CreatedAt = record.CreatedAt.UTC()
		accepted = append(accepted, record)
	}

	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	c.movies = accepted
	for id := range seen {
		c.issued[id] = struct{}{}
	}
	change := c.publishLocked(ChangeSeeded, Movie{})
	c.mu.Unlock()

	c.notify(change)
	return rejections
}

// # Reads

// Get returns a copy of the record with id.
func (c *Catalog) Get(id string) (Movie, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	index := c.indexLocked(id)
	if index < 0 {
		return Movie{}, false
	}
	return c.movies[index].clone(), true
}

// List returns a deep-copied snapshot in store order (most recent first).
func (c *Catalog) List() []Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.movies)
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.movies)
}

// Snapshot returns a deep copy of the records together with the version
// they belong to, read under one lock.
func (c *Catalog) Snapshot() ([]Movie, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.movies), c.version
}

// Version returns the number of changes published so far.
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// # Subscriptions

// Subscribe registers fn for every future change, in mutation order.
// The returned function removes the subscription; calling it twice is safe.
func (c *Catalog) Subscribe(fn func(Change)) (unsubscribe func()) {
	c.subMu.Lock()
	c.nextSubID++
	id := c.nextSubID
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			c.subscribers = slices.DeleteFunc(c.subscribers, func(s subscriber) bool { return s.id == id })
		})
	}
}

// notify delivers change to a copy of the subscriber list.
// Callers hold dispatch but not mu.
func (c *Catalog) notify(change Change) {
	c.subMu.Lock()
	targets := slices.Clone(c.subscribers)
	c.subMu.Unlock()

	for _, target := range targets {
		delivered := change
		delivered.Movie = change.Movie.clone()
		delivered.Snapshot = cloneAll(change.Snapshot)
		target.fn(delivered)
	}
}

// # Internals

// publishLocked bumps the version and builds the change. Callers hold mu.
func (c *Catalog) publishLocked(kind ChangeKind, record Movie) Change {
	c.version++
	return Change{
		Kind:     kind,
		Movie:    record.clone(),
		Snapshot: cloneAll(c.movies),
		Version:  c.version,
	}
}

func (c *Catalog) indexLocked(id string) int {
	return slices.IndexFunc(c.movies, func(m Movie) bool { return m.ID == id })
}

// issueIDLocked returns an identifier never issued or seeded before.
func (c *Catalog) issueIDLocked() (string, error) {
	for range maxIDAttempts {
		id := c.newID()
		if id == "" {
			continue
		}
		if _, taken := c.issued[id]; taken {
			continue
		}
		c.issued[id] = struct{}{}
		return id, nil
	}
	return "", apperr.Internal(fmt.Errorf("movie: %w after %d attempts", errUniqueID, maxIDAttempts))
}

var errUniqueID = errors.New("could not generate a unique identifier")
