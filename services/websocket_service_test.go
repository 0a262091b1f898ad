package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newHubForTest(t *testing.T) *WebSocketService {
	t.Helper()
	ws := NewWebSocketService()
	go ws.run()
	t.Cleanup(func() { close(ws.stopChan) })
	return ws
}

func newFakeClient(ws *WebSocketService, userID string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Hub:    ws,
		Send:   make(chan []byte, 256),
	}
}

func waitOnline(t *testing.T, ws *WebSocketService, userID string) {
	t.Helper()
	assert.Eventually(t, func() bool { return ws.IsOnline(userID) },
		time.Second, 5*time.Millisecond)
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	ws := newHubForTest(t)
	userID := uuid.New().String()

	assert.False(t, ws.IsOnline(userID))

	client := newFakeClient(ws, userID)
	ws.register <- client
	waitOnline(t, ws, userID)

	ws.unregister <- client
	assert.Eventually(t, func() bool { return !ws.IsOnline(userID) },
		time.Second, 5*time.Millisecond)
}

func TestHub_LastWriterWins(t *testing.T) {
	ws := newHubForTest(t)
	userID := uuid.New().String()

	first := newFakeClient(ws, userID)
	ws.register <- first
	waitOnline(t, ws, userID)

	second := newFakeClient(ws, userID)
	ws.register <- second
	assert.Eventually(t, func() bool {
		ws.clientsMutex.RLock()
		defer ws.clientsMutex.RUnlock()
		return ws.clients[userID] == second
	}, time.Second, 5*time.Millisecond)

	// The replaced connection's send channel is closed.
	_, open := <-first.Send
	assert.False(t, open)

	// Delivery lands on the newest connection only.
	assert.True(t, ws.SendToUser(userID, []byte("hello")))
	select {
	case msg := <-second.Send:
		assert.Equal(t, []byte("hello"), msg)
	case <-time.After(time.Second):
		t.Fatal("message never reached the replacement connection")
	}
}

func TestHub_StaleUnregisterKeepsReplacement(t *testing.T) {
	ws := newHubForTest(t)
	userID := uuid.New().String()

	first := newFakeClient(ws, userID)
	ws.register <- first
	waitOnline(t, ws, userID)

	second := newFakeClient(ws, userID)
	ws.register <- second

	// The first connection's teardown races in after the takeover; it must
	// not evict the replacement.
	ws.unregister <- first

	// A later hub operation confirms both earlier ones were processed.
	probe := newFakeClient(ws, uuid.New().String())
	ws.register <- probe
	waitOnline(t, ws, probe.UserID)

	assert.True(t, ws.IsOnline(userID))
}

func TestHub_SendToUserOffline(t *testing.T) {
	ws := newHubForTest(t)
	assert.False(t, ws.SendToUser(uuid.New().String(), []byte("nobody home")))
}

func TestHub_SendToUsersCountsDelivered(t *testing.T) {
	ws := newHubForTest(t)

	alice := newFakeClient(ws, uuid.New().String())
	bob := newFakeClient(ws, uuid.New().String())
	ws.register <- alice
	ws.register <- bob
	waitOnline(t, ws, alice.UserID)
	waitOnline(t, ws, bob.UserID)

	offline := uuid.New().String()
	delivered := ws.SendToUsers([]string{alice.UserID, bob.UserID, offline}, []byte("m"))
	assert.Equal(t, 2, delivered)
	assert.Len(t, alice.Send, 1)
	assert.Len(t, bob.Send, 1)
}

func TestHub_Broadcast(t *testing.T) {
	ws := newHubForTest(t)

	alice := newFakeClient(ws, uuid.New().String())
	bob := newFakeClient(ws, uuid.New().String())
	ws.register <- alice
	ws.register <- bob
	waitOnline(t, ws, alice.UserID)
	waitOnline(t, ws, bob.UserID)

	ws.BroadcastMessage([]byte("to everyone"))

	for _, client := range []*Client{alice, bob} {
		select {
		case msg := <-client.Send:
			assert.Equal(t, []byte("to everyone"), msg)
		case <-time.After(time.Second):
			t.Fatal("broadcast never arrived")
		}
	}
}

func TestHub_FullBufferEvictsClient(t *testing.T) {
	ws := newHubForTest(t)
	userID := uuid.New().String()

	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Hub:    ws,
		Send:   make(chan []byte), // unbuffered, nothing draining it
	}
	ws.register <- client
	waitOnline(t, ws, userID)

	// A stalled consumer is dropped instead of blocking the hub.
	assert.False(t, ws.SendToUser(userID, []byte("m")))
	assert.False(t, ws.IsOnline(userID))
}
