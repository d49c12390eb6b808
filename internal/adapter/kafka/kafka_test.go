package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/task-trek/internal/config"
	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	evt := domain.ActivityEvent{
		ID:         "evt-1",
		Type:       domain.ActivityThemeChanged,
		VisitorID:  "visitor-1",
		Attributes: map[string]string{"theme": "dark", "source": "explicit"},
		OccurredAt: now,
	}

	msg, err := serializeToMessage(evt)
	require.NoError(t, err)

	assert.Equal(t, []byte("visitor-1"), msg.Key)
	assert.Equal(t, now, msg.Time)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("theme_changed"), msg.Headers[0].Value)
	assert.Equal(t, "occurred_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.ActivityEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt, decoded)
}

func TestSerializeToMessage_KeyFallsBackToEventID(t *testing.T) {
	msg, err := serializeToMessage(domain.ActivityEvent{ID: "evt-2", Type: domain.ActivitySignedOut})
	require.NoError(t, err)
	assert.Equal(t, []byte("evt-2"), msg.Key)
}

func TestLoadBatch_EmptyIsNoop(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaActivityTopic: "unused"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	assert.NoError(t, w.LoadBatch(context.Background(), nil))
}
