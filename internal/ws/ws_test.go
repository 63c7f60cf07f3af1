package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newBuffer(t *testing.T, maxLen int) *EventBuffer {
	t.Helper()
	eb := NewEventBuffer(maxLen, time.Hour)
	t.Cleanup(eb.Stop)
	return eb
}

func TestEventBuffer_SinceMergesEntitiesInOrder(t *testing.T) {
	eb := newBuffer(t, 10)
	now := time.Now()

	eb.Append(&Event{ID: 1, Entity: "item", Time: now})
	eb.Append(&Event{ID: 2, Entity: "role", Time: now})
	eb.Append(&Event{ID: 3, Entity: "item", Time: now})
	eb.Append(&Event{ID: 4, Entity: "user", Time: now})

	got := eb.Since([]string{"item", "role"}, 1)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].ID)
	assert.Equal(t, uint64(3), got[1].ID)

	all := eb.Since(nil, 0)
	require.Len(t, all, 4)
	for i, evt := range all {
		assert.Equal(t, uint64(i+1), evt.ID)
	}

	assert.Empty(t, eb.Since([]string{"item"}, 3))
	assert.Empty(t, eb.Since([]string{"missing"}, 0))
}

func TestEventBuffer_MaxLenEvictsOldest(t *testing.T) {
	eb := newBuffer(t, 2)
	now := time.Now()

	for i := uint64(1); i <= 3; i++ {
		eb.Append(&Event{ID: i, Entity: "item", Time: now})
	}

	assert.Equal(t, uint64(2), eb.OldestID([]string{"item"}))
	assert.Equal(t, uint64(0), eb.OldestID([]string{"role"}))
}

func TestEventBuffer_AppendDropsExpired(t *testing.T) {
	eb := newBuffer(t, 10)
	now := time.Now()

	eb.Append(&Event{ID: 1, Entity: "item", Time: now.Add(-2 * time.Hour)})
	eb.Append(&Event{ID: 2, Entity: "item", Time: now})

	got := eb.Since([]string{"item"}, 0)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].ID)
}

func TestClient_Wants(t *testing.T) {
	hub := NewHub(quietLogger())

	all := NewClient(hub, nil, nil)
	assert.True(t, all.Wants("item"))
	assert.True(t, all.Wants("user"))

	some := NewClient(hub, nil, []string{"item", "role"})
	assert.True(t, some.Wants("role"))
	assert.False(t, some.Wants("user"))
}

func TestEventSequence_Monotonic(t *testing.T) {
	seq := NewEventSequence()
	assert.Equal(t, uint64(1), seq.Next())
	assert.Equal(t, uint64(2), seq.Next())
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.send:
		var evt Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_BroadcastRoutesByEntity(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	items := NewClient(hub, nil, []string{"item"})
	everything := NewClient(hub, nil, nil)
	hub.Register(items)
	hub.Register(everything)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.BroadcastEvent(EventTypeAudit, "role", json.RawMessage(`{"entityName":"role"}`))
	hub.BroadcastEvent(EventTypeAudit, "item", json.RawMessage(`{"entityName":"item"}`))

	first := receive(t, everything)
	assert.Equal(t, "role", first.Entity)
	assert.Equal(t, EventTypeAudit, first.Type)
	assert.Equal(t, uint64(1), first.ID)

	second := receive(t, everything)
	assert.Equal(t, "item", second.Entity)

	onlyItem := receive(t, items)
	assert.Equal(t, "item", onlyItem.Entity)
	assert.Equal(t, uint64(2), onlyItem.ID)
	assert.JSONEq(t, `{"entityName":"item"}`, string(onlyItem.Data))
}

func TestHub_ReplayEvents(t *testing.T) {
	hub := NewHub(quietLogger())
	t.Cleanup(hub.buffer.Stop)

	hub.BroadcastEvent(EventTypeAudit, "item", json.RawMessage(`{}`))
	hub.BroadcastEvent(EventTypeAudit, "item", json.RawMessage(`{}`))

	c := NewClient(hub, nil, []string{"item"})
	require.True(t, hub.ReplayEvents(c, 1))

	evt := receive(t, c)
	assert.Equal(t, uint64(2), evt.ID)
}

func TestHub_ReplayTooOldRequestsReset(t *testing.T) {
	hub := NewHub(quietLogger())
	hub.buffer.Stop()
	hub.buffer = NewEventBuffer(1, time.Hour)
	t.Cleanup(hub.buffer.Stop)

	for range 4 {
		hub.BroadcastEvent(EventTypeAudit, "item", json.RawMessage(`{}`))
	}

	c := NewClient(hub, nil, []string{"item"})
	assert.False(t, hub.ReplayEvents(c, 1))

	c.handleMessage([]byte(`{"type":"subscribe","last_event_id":1}`))

	select {
	case msg := <-c.send:
		var reset ResetMsg
		require.NoError(t, json.Unmarshal(msg, &reset))
		assert.Equal(t, "reset", reset.Type)
	case <-time.After(time.Second):
		t.Fatal("expected reset message")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub(quietLogger())
	go hub.Run(context.Background())

	c := NewClient(hub, nil, nil)
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	go func() {
		// Consume the shutdown frame so the drain completes promptly.
		for range c.send {
		}
	}()

	hub.Shutdown()
	assert.Equal(t, 0, hub.ClientCount())
}
