// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/kinora/internal/platform/constants"
	"github.com/taibuivan/kinora/internal/platform/event"
)

// PublishObserver receives the outcome of every event publish.
type PublishObserver interface {
	ObservePublish(eventType string, err error)
}

// ChangeEvent is the payload of a single-record change event.
type ChangeEvent struct {
	Version uint64 `json:"version"`
	Movie   Movie  `json:"movie"`
}

// SeedEvent is the payload of a catalog replacement event.
type SeedEvent struct {
	Version uint64 `json:"version"`
	Count   int    `json:"count"`
}

// EventType returns the envelope type for kind, e.g. "movie.created".
func EventType(kind ChangeKind) string {
	return "movie." + string(kind)
}

// EventSubject returns the subject for kind, e.g. "kinora.movies.created".
func EventSubject(kind ChangeKind) string {
	return constants.EventSubjectPrefix + string(kind)
}

// ChangePublisher forwards catalog changes to an [event.Publisher].
type ChangePublisher struct {
	publisher event.Publisher
	logger    *slog.Logger
	observer  PublishObserver
	timeout   time.Duration
}

// NewChangePublisher builds the forwarding subscriber. observer may be nil.
func NewChangePublisher(publisher event.Publisher, logger *slog.Logger, observer PublishObserver) *ChangePublisher {
	return &ChangePublisher{
		publisher: publisher,
		logger:    logger,
		observer:  observer,
		timeout:   constants.CollaboratorTimeout,
	}
}

// OnChange is a [Catalog] subscriber.
func (p *ChangePublisher) OnChange(change Change) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	var payload any = ChangeEvent{Version: change.Version, Movie: change.Movie}
	if change.Kind == ChangeSeeded {
		payload = SeedEvent{Version: change.Version, Count: len(change.Snapshot)}
	}

	eventType := EventType(change.Kind)
	err := p.publisher.Publish(ctx, EventSubject(change.Kind), eventType, payload)
	if p.observer != nil {
		p.observer.ObservePublish(eventType, err)
	}
	if err != nil {
		p.logger.Warn("catalog_event_publish_failed",
			slog.String("event_type", eventType),
			slog.Uint64("version", change.Version),
			slog.Any("error", err),
		)
	}
}
