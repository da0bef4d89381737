package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id string
}

func (f *fakeConn) ID() string { return f.id }

func TestRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{id: "conn-1"}

	registry.Register("u1", conn)

	got, ok := registry.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "conn-1", got.ID())
}

func TestLookupUnknownUser(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Lookup("nobody")
	assert.False(t, ok)
}

func TestRegisterOverwritesPreviousConnection(t *testing.T) {
	registry := NewRegistry()
	first := &fakeConn{id: "conn-1"}
	second := &fakeConn{id: "conn-2"}

	registry.Register("u1", first)
	registry.Register("u1", second)

	got, ok := registry.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "conn-2", got.ID())
	assert.Equal(t, 1, registry.Len())
}

func TestUnregisterRemovesCurrentMapping(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{id: "conn-1"}

	registry.Register("u1", conn)

	assert.True(t, registry.Unregister("u1", conn))
	_, ok := registry.Lookup("u1")
	assert.False(t, ok)
}

func TestUnregisterStaleConnectionIsNoOp(t *testing.T) {
	registry := NewRegistry()
	stale := &fakeConn{id: "conn-1"}
	current := &fakeConn{id: "conn-2"}

	// A newer connection for the same identity has already registered;
	// the stale connection's disconnect must not clear the mapping.
	registry.Register("u1", stale)
	registry.Register("u1", current)

	assert.False(t, registry.Unregister("u1", stale))

	got, ok := registry.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "conn-2", got.ID())
}

func TestUnregisterUnknownUserIsNoOp(t *testing.T) {
	registry := NewRegistry()
	assert.False(t, registry.Unregister("nobody", &fakeConn{id: "conn-1"}))
}

func TestOnlineUsers(t *testing.T) {
	registry := NewRegistry()
	registry.Register("u1", &fakeConn{id: "conn-1"})
	registry.Register("u2", &fakeConn{id: "conn-2"})

	users := registry.OnlineUsers()
	assert.ElementsMatch(t, []string{"u1", "u2"}, users)
}

func TestConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", n)
			conn := &fakeConn{id: fmt.Sprintf("conn-%d", n)}
			registry.Register(userID, conn)
			registry.Lookup(userID)
			registry.OnlineUsers()
			registry.Unregister(userID, conn)
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 0, registry.Len())
}
