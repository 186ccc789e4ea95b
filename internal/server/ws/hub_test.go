package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dmitrijs2005/duochat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestHub() *Hub {
	return NewHub(testLogger())
}

func newTestClient(h *Hub, userID int64) *Client {
	return newClient(h, nil, userID, testLogger())
}

func TestHub_RegisterUnregisterLookup(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, 1)

	h.Register(c)
	require.Len(t, h.Lookup(1), 1)

	h.Unregister(c)
	assert.Empty(t, h.Lookup(1))
	assert.False(t, h.Online(1))
}

func TestHub_MultipleConnectionsPerUser(t *testing.T) {
	h := newTestHub()
	c1 := newTestClient(h, 7)
	c2 := newTestClient(h, 7)

	h.Register(c1)
	h.Register(c2)
	assert.Len(t, h.Lookup(7), 2)

	h.Unregister(c1)
	conns := h.Lookup(7)
	require.Len(t, conns, 1)
	assert.Same(t, c2, conns[0].(*Client))

	h.Unregister(c2)
	assert.Empty(t, h.Lookup(7))
}

func TestHub_UnregisterRemovesEmptyEntry(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, 3)

	h.Register(c)
	h.Unregister(c)

	h.mu.RLock()
	_, exists := h.clients[3]
	h.mu.RUnlock()
	assert.False(t, exists, "empty entry must be removed entirely")
}

func TestHub_UnregisterUnknownClientIsNoop(t *testing.T) {
	h := newTestHub()
	registered := newTestClient(h, 5)
	stranger := newTestClient(h, 5)

	h.Register(registered)
	h.Unregister(stranger)

	assert.Len(t, h.Lookup(5), 1)
}

func TestHub_LookupUnknownUserIsEmpty(t *testing.T) {
	h := newTestHub()
	assert.Empty(t, h.Lookup(42))
}

func TestHub_ConcurrentRegisterUnregister(t *testing.T) {
	h := newTestHub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			c := newTestClient(h, userID%5)
			h.Register(c)
			h.Lookup(userID % 5)
			h.Unregister(c)
		}(int64(i))
	}
	wg.Wait()

	for id := int64(0); id < 5; id++ {
		assert.Empty(t, h.Lookup(id))
	}
}

func TestClient_SendQueuesEnvelope(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, 1)

	c.Send("message:new", map[string]string{"text": "hi"})

	select {
	case data := <-c.send:
		var ev pushEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, "message:new", ev.Type)
	default:
		t.Fatal("expected a queued push")
	}
}

func TestClient_SendDropsWhenBufferFull(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, 1)
	c.send = make(chan []byte) // unbuffered and never drained

	// must not block
	c.Send("message:new", "x")
}
