package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"presence-service/internal/presence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(presence.NewRegistry(), nil, nil)
}

// newTestClient builds an admitted-but-pumpless client; messages queued
// for it are read straight from its send buffer.
func newTestClient(hub *Hub, userID string) *Client {
	return NewClient(hub, nil, userID)
}

func receivedMessages(t *testing.T, c *Client) []*Message {
	t.Helper()
	var msgs []*Message
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return msgs
			}
			var m Message
			require.NoError(t, json.Unmarshal(data, &m))
			msgs = append(msgs, &m)
		default:
			return msgs
		}
	}
}

func drain(t *testing.T, clients ...*Client) {
	t.Helper()
	for _, c := range clients {
		receivedMessages(t, c)
	}
}

func signal(c *Client, msgType MessageType, to string) *ClientMessage {
	return &ClientMessage{
		Client:  c,
		Message: NewMessage("m1", msgType, map[string]interface{}{"to": to}),
	}
}

func TestAdmissionBroadcastsOnlineOnce(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, "u1")

	hub.registerClient(a)

	msgs := receivedMessages(t, a)
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageTypeUserOnline, msgs[0].Type)
	assert.Equal(t, "u1", msgs[0].Data["user_id"])

	conn, ok := hub.registry.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, a.ID(), conn.ID())
}

func TestTypingRelayIsUnicast(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, "u1")
	b := newTestClient(hub, "u2")
	c := newTestClient(hub, "u3")

	hub.registerClient(a)
	hub.registerClient(b)
	hub.registerClient(c)
	drain(t, a, b, c)

	hub.handleClientMessage(signal(a, MessageTypeTyping, "u2"))

	bMsgs := receivedMessages(t, b)
	require.Len(t, bMsgs, 1)
	assert.Equal(t, MessageTypeTyping, bMsgs[0].Type)
	assert.Equal(t, "u1", bMsgs[0].Data["from"])
	_, hasTo := bMsgs[0].Data["to"]
	assert.False(t, hasTo)

	// Typing activity must not leak to uninvolved connections
	assert.Empty(t, receivedMessages(t, a))
	assert.Empty(t, receivedMessages(t, c))
}

func TestStopTypingRelay(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, "u1")
	b := newTestClient(hub, "u2")

	hub.registerClient(a)
	hub.registerClient(b)
	drain(t, a, b)

	hub.handleClientMessage(signal(a, MessageTypeStopTyping, "u2"))

	bMsgs := receivedMessages(t, b)
	require.Len(t, bMsgs, 1)
	assert.Equal(t, MessageTypeStopTyping, bMsgs[0].Type)
	assert.Equal(t, "u1", bMsgs[0].Data["from"])
}

func TestTypingToOfflineRecipientIsDropped(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, "u1")

	hub.registerClient(a)
	drain(t, a)

	hub.handleClientMessage(signal(a, MessageTypeTyping, "ghost"))

	// No delivery anywhere and no error surfaced to the sender
	assert.Empty(t, receivedMessages(t, a))
}

func TestSignalWithoutRecipientGetsError(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, "u1")

	hub.registerClient(a)
	drain(t, a)

	hub.handleClientMessage(&ClientMessage{
		Client:  a,
		Message: NewMessage("m1", MessageTypeTyping, nil),
	})

	msgs := receivedMessages(t, a)
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageTypeError, msgs[0].Type)
	assert.Equal(t, "INVALID_MESSAGE", msgs[0].Data["code"])
}

func TestUnsupportedTypeGetsError(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, "u1")

	hub.registerClient(a)
	drain(t, a)

	hub.handleClientMessage(&ClientMessage{
		Client:  a,
		Message: NewMessage("m1", MessageTypeUserOnline, nil),
	})

	msgs := receivedMessages(t, a)
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageTypeError, msgs[0].Type)
}

func TestDisconnectBroadcastsOfflineOnce(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, "u1")
	b := newTestClient(hub, "u2")

	hub.registerClient(a)
	hub.registerClient(b)
	drain(t, a, b)

	hub.unregisterClient(b)

	msgs := receivedMessages(t, a)
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageTypeUserOffline, msgs[0].Type)
	assert.Equal(t, "u2", msgs[0].Data["user_id"])

	_, ok := hub.registry.Lookup("u2")
	assert.False(t, ok)

	// A duplicate lifecycle notification must not broadcast again
	hub.unregisterClient(b)
	assert.Empty(t, receivedMessages(t, a))
}

func TestDuplicateLoginSupersedesEarlierConnection(t *testing.T) {
	hub := newTestHub()
	first := newTestClient(hub, "u1")
	second := newTestClient(hub, "u1")
	observer := newTestClient(hub, "u2")

	hub.registerClient(observer)
	hub.registerClient(first)
	hub.registerClient(second)
	drain(t, first, second, observer)

	conn, ok := hub.registry.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, second.ID(), conn.ID())

	// The stale connection closes after the newer one registered:
	// compare-and-delete blocks the offline broadcast.
	hub.unregisterClient(first)

	assert.Empty(t, receivedMessages(t, observer))

	conn, ok = hub.registry.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, second.ID(), conn.ID())
}

func TestTwoUserSession(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, "u1")
	b := newTestClient(hub, "u2")

	hub.registerClient(a)

	// A sees its own admission
	aMsgs := receivedMessages(t, a)
	require.Len(t, aMsgs, 1)
	assert.Equal(t, MessageTypeUserOnline, aMsgs[0].Type)

	hub.registerClient(b)

	// Both connections see B come online
	for _, c := range []*Client{a, b} {
		msgs := receivedMessages(t, c)
		require.Len(t, msgs, 1)
		assert.Equal(t, MessageTypeUserOnline, msgs[0].Type)
		assert.Equal(t, "u2", msgs[0].Data["user_id"])
	}

	hub.handleClientMessage(signal(a, MessageTypeTyping, "u2"))

	bMsgs := receivedMessages(t, b)
	require.Len(t, bMsgs, 1)
	assert.Equal(t, MessageTypeTyping, bMsgs[0].Type)
	assert.Equal(t, "u1", bMsgs[0].Data["from"])
	assert.Empty(t, receivedMessages(t, a))

	hub.unregisterClient(b)

	aMsgs = receivedMessages(t, a)
	require.Len(t, aMsgs, 1)
	assert.Equal(t, MessageTypeUserOffline, aMsgs[0].Type)
	assert.Equal(t, "u2", aMsgs[0].Data["user_id"])

	_, ok := hub.registry.Lookup("u2")
	assert.False(t, ok)
}

func TestHubRunProcessesRegistrations(t *testing.T) {
	hub := newTestHub()
	go hub.Run()
	defer hub.Stop()

	a := newTestClient(hub, "u1")

	select {
	case hub.register <- a:
	case <-time.After(time.Second):
		t.Fatal("timeout registering client")
	}

	select {
	case data := <-a.send:
		var m Message
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, MessageTypeUserOnline, m.Type)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for online broadcast")
	}

	select {
	case hub.unregister <- a:
	case <-time.After(time.Second):
		t.Fatal("timeout unregistering client")
	}
}

func TestSlowRecipientDoesNotBlockBroadcast(t *testing.T) {
	hub := newTestHub()
	slow := newTestClient(hub, "u1")
	healthy := newTestClient(hub, "u2")

	hub.registerClient(slow)
	hub.registerClient(healthy)
	drain(t, healthy)

	// Fill the slow client's buffer completely
	for {
		if err := slow.enqueue([]byte(`{}`)); err != nil {
			break
		}
	}

	done := make(chan struct{})
	go func() {
		hub.broadcast(NewPresenceMessage("m1", MessageTypeUserOnline, "u3"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow recipient")
	}

	msgs := receivedMessages(t, healthy)
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageTypeUserOnline, msgs[0].Type)
}
