// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package event_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kinora/internal/platform/event"
)

/*
TestNewPublisher_EmptyURL returns a publisher that accepts and drops events.
*/
func TestNewPublisher_EmptyURL(t *testing.T) {
	publisher := event.NewPublisher("", slog.Default())

	assert.NoError(t, publisher.Publish(context.Background(), "kinora.movies.created", "movie.created", map[string]string{"id": "1"}))
	assert.NoError(t, publisher.Ping(context.Background()))
	assert.NoError(t, publisher.Close())
}

/*
TestNewEnvelope checks the envelope stamp and its wire names.
*/
func TestNewEnvelope(t *testing.T) {
	envelope := event.NewEnvelope("movie.deleted", map[string]string{"id": "4"})

	assert.Equal(t, "movie.deleted", envelope.Type)
	assert.Equal(t, "1.0.0", envelope.Version)
	assert.NotEmpty(t, envelope.CorrelationID)
	assert.False(t, envelope.OccurredAt.IsZero())

	body, err := json.Marshal(envelope)
	require.NoError(t, err)
	for _, key := range []string{`"type"`, `"version"`, `"occurredAt"`, `"correlationId"`, `"payload"`} {
		assert.Contains(t, string(body), key)
	}
}
