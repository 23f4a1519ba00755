// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package event publishes catalog change events to NATS JetStream.
//
// When no NATS URL is configured, or the connection cannot be established,
// a no-op publisher is returned and the service runs without event streaming.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/taibuivan/kinora/internal/platform/constants"
	"github.com/taibuivan/kinora/pkg/uuid"
)

// envelopeVersion is the schema version stamped on every envelope.
const envelopeVersion = "1.0.0"

// Publisher defines the event publishing operations used by the catalog.
type Publisher interface {
	// Publish wraps payload in an [Envelope] and sends it on subject.
	Publish(ctx context.Context, subject, eventType string, payload any) error

	// Ping reports whether the underlying connection is usable.
	Ping(ctx context.Context) error

	// Close closes the publisher connection.
	Close() error
}

// Envelope represents the standard event envelope structure.
type Envelope struct {
	Type          string    `json:"type"`
	Version       string    `json:"version"`
	OccurredAt    time.Time `json:"occurredAt"`
	CorrelationID string    `json:"correlationId"`
	Payload       any       `json:"payload"`
}

// NewEnvelope stamps payload with type, version, time and a fresh correlation ID.
func NewEnvelope(eventType string, payload any) Envelope {
	return Envelope{
		Type:          eventType,
		Version:       envelopeVersion,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: uuid.New(),
		Payload:       payload,
	}
}

// # No-op Publisher

// noop is used when NATS is not configured.
type noop struct{}

// NewNoop returns a publisher that discards every event.
func NewNoop() Publisher { return noop{} }

func (noop) Publish(context.Context, string, string, any) error { return nil }
func (noop) Ping(context.Context) error                         { return nil }
func (noop) Close() error                                       { return nil }

// # JetStream Publisher

// natsPublisher is the NATS JetStream implementation of Publisher.
type natsPublisher struct {
	conn      *nats.Conn
	jetStream nats.JetStreamContext
}

// NewPublisher connects to url and ensures the catalog stream exists.
//
// An empty url yields the no-op publisher. Connection and stream failures
// are logged and also fall back to the no-op publisher.
func NewPublisher(url string, logger *slog.Logger) Publisher {
	if url == "" {
		return NewNoop()
	}

	conn, err := nats.Connect(url, nats.Name(constants.AppName))
	if err != nil {
		logger.Warn("nats_connect_failed_using_noop", slog.Any("error", err))
		return NewNoop()
	}

	jetStream, err := conn.JetStream()
	if err != nil {
		logger.Warn("nats_jetstream_unavailable_using_noop", slog.Any("error", err))
		conn.Close()
		return NewNoop()
	}

	if err := ensureStream(jetStream); err != nil {
		logger.Warn("nats_stream_init_failed_using_noop", slog.Any("error", err))
		conn.Close()
		return NewNoop()
	}

	logger.Info("nats publisher connected",
		slog.String("url", conn.ConnectedUrlRedacted()),
		slog.String("stream", constants.EventStream),
	)

	return &natsPublisher{conn: conn, jetStream: jetStream}
}

// ensureStream creates the catalog stream if it is not there yet.
func ensureStream(jetStream nats.JetStreamContext) error {
	if _, err := jetStream.StreamInfo(constants.EventStream); err == nil {
		return nil
	}

	_, err := jetStream.AddStream(&nats.StreamConfig{
		Name:      constants.EventStream,
		Subjects:  []string{constants.EventSubjectPrefix + "*"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Discard:   nats.DiscardOld,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("event: failed to create %s stream: %w", constants.EventStream, err)
	}
	return nil
}

// Publish implements [Publisher]. The correlation ID doubles as the
// JetStream message ID so server-side deduplication applies to retries.
func (p *natsPublisher) Publish(ctx context.Context, subject, eventType string, payload any) error {
	envelope := NewEnvelope(eventType, payload)

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("event: failed to encode %s: %w", eventType, err)
	}

	if _, err := p.jetStream.Publish(subject, body, nats.Context(ctx), nats.MsgId(envelope.CorrelationID)); err != nil {
		return fmt.Errorf("event: failed to publish %s: %w", eventType, err)
	}
	return nil
}

// Ping implements [Publisher].
func (p *natsPublisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("event: nats connection status %s", p.conn.Status())
	}
	return p.conn.FlushWithContext(ctx)
}

// Close implements [Publisher]; buffered messages are flushed first.
func (p *natsPublisher) Close() error {
	return p.conn.Drain()
}
