package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingConn struct {
	mu     sync.Mutex
	wrote  []interface{}
	closed bool
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wrote = append(c.wrote, v)
	return nil
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestHubPushTargetsOneUser(t *testing.T) {
	hub := NewNotificationHub()
	a := &recordingConn{}
	b := &recordingConn{}
	hub.Register("alice", a)
	hub.Register("bob", b)

	hub.Push("alice", "hello")

	assert.Len(t, a.wrote, 1)
	assert.Empty(t, b.wrote)
}

func TestHubBroadcastReachesEveryone(t *testing.T) {
	hub := NewNotificationHub()
	a := &recordingConn{}
	b1 := &recordingConn{}
	b2 := &recordingConn{}
	hub.Register("alice", a)
	hub.Register("bob", b1)
	hub.Register("bob", b2)

	hub.Broadcast("ping")

	assert.Len(t, a.wrote, 1)
	assert.Len(t, b1.wrote, 1)
	assert.Len(t, b2.wrote, 1)
	assert.Equal(t, 3, hub.ConnCount())
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewNotificationHub()
	a := &recordingConn{}
	hub.Register("alice", a)
	hub.Unregister("alice", a)

	hub.Push("alice", "gone")
	hub.Broadcast("gone")

	assert.Empty(t, a.wrote)
	assert.True(t, a.closed)
	assert.Equal(t, 0, hub.ConnCount())
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewNotificationHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &recordingConn{}
			hub.Register("user", c)
			hub.Broadcast("x")
			hub.Unregister("user", c)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.ConnCount())
}
