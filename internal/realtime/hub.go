package realtime

import "sync"

// pusher is what the hub needs from a connection; *Conn satisfies it and
// tests plug in fakes.
type pusher interface {
	WriteJSON(v interface{}) error
	Close() error
}

// NotificationHub fans notifications out to connected clients. Every
// connection belongs to one user and to the implicit broadcast group.
type NotificationHub struct {
	mu    sync.RWMutex
	users map[string]map[pusher]struct{}
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		users: make(map[string]map[pusher]struct{}),
	}
}

func (h *NotificationHub) Register(userID string, conn pusher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[pusher]struct{})
	}
	h.users[userID][conn] = struct{}{}
}

func (h *NotificationHub) Unregister(userID string, conn pusher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
	_ = conn.Close()
}

// Push delivers to every connection of one user.
func (h *NotificationHub) Push(userID string, v interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.users[userID] {
		_ = conn.WriteJSON(v)
	}
}

// Broadcast delivers to every connected client.
func (h *NotificationHub) Broadcast(v interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conns := range h.users {
		for conn := range conns {
			_ = conn.WriteJSON(v)
		}
	}
}

func (h *NotificationHub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.users {
		n += len(conns)
	}
	return n
}
