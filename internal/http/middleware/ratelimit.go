package middleware

import (
	"sync"
	"time"
)

type clientInfo struct {
	last  time.Time
	count int64
}

// memoryWindow is the single-instance fixed window used when Redis is not
// configured.
type memoryWindow struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
}

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{clients: make(map[string]*clientInfo)}
}

func (m *memoryWindow) incr(key string, window time.Duration) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	ci, ok := m.clients[key]
	if !ok || now.Sub(ci.last) > window {
		m.clients[key] = &clientInfo{last: now, count: 1}
		m.sweep(now, window)
		return 1
	}
	ci.count++
	return ci.count
}

// sweep drops windows that have long expired so the map stays bounded.
func (m *memoryWindow) sweep(now time.Time, window time.Duration) {
	if len(m.clients) < 10000 {
		return
	}
	for k, ci := range m.clients {
		if now.Sub(ci.last) > window {
			delete(m.clients, k)
		}
	}
}
