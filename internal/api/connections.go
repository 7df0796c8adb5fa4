package api

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// connRegistry tracks the open ask sockets of signed-in users so that they
// can be closed on logout.
type connRegistry struct {
	mu     sync.Mutex
	active map[string]map[*websocket.Conn]struct{}
}

func newConnRegistry() *connRegistry {
	return &connRegistry{active: make(map[string]map[*websocket.Conn]struct{})}
}

func (m *connRegistry) Register(email string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.active[email]; !ok {
		m.active[email] = make(map[*websocket.Conn]struct{})
	}
	m.active[email][conn] = struct{}{}
}

func (m *connRegistry) Unregister(email string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.active[email]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(m.active, email)
	}
}

// Count returns the number of open sockets for email.
func (m *connRegistry) Count(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active[email])
}

// CloseUser closes every open socket of email.
func (m *connRegistry) CloseUser(email string) {
	m.mu.Lock()
	conns := m.active[email]
	delete(m.active, email)
	m.mu.Unlock()

	// Close waits for the peer's close frame, so do not hold up the caller.
	for conn := range conns {
		go func() { _ = conn.Close(websocket.StatusNormalClosure, "logged out") }()
	}
	if len(conns) > 0 {
		slog.Info("closed ask sockets on logout", "user", email, "count", len(conns))
	}
}
