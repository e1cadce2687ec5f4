package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

func TestNewEnvelope(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.FixedZone("ART", -3*3600))
	payload := domain.SlotChanged{SlotID: 7, CourtID: 1, Status: domain.SlotReserved}

	env := NewEnvelope("court-slot-service", domain.TopicSlotReserved, payload, now)

	_, err := uuid.Parse(env.ID)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, env.OccurredAt.Location())

	body, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "slot.reserved", decoded["type"])
	assert.Equal(t, "RESERVADO", decoded["payload"].(map[string]any)["status"])
	assert.NotContains(t, decoded["payload"], "client_phone")
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), domain.TopicSlotCancelled, nil))
}
