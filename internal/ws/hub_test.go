package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishQueuesEvent(t *testing.T) {
	h := NewHub()

	h.Publish("cycle_state_changed", "Ciclo 2026 fechado", map[string]string{"to": "fechado"})

	select {
	case msg := <-h.Broadcast:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, "cycle_state_changed", ev.Type)
		assert.Equal(t, "Ciclo 2026 fechado", ev.Message)
	default:
		t.Fatal("expected queued event")
	}
}

func TestHub_PublishDropsWhenFull(t *testing.T) {
	h := NewHub()
	for i := 0; i < cap(h.Broadcast)+10; i++ {
		h.Publish("evaluation_submitted", "", nil)
	}
	assert.Equal(t, cap(h.Broadcast), len(h.Broadcast))
	assert.Zero(t, h.ClientCount())
}
