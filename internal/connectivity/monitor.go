// Package connectivity tracks whether the backend can reach its upstream AI
// services. Components that need to degrade gracefully when the network drops
// subscribe to transitions instead of probing on every request.
package connectivity

import "sync"

// Listener is called with the new state whenever connectivity changes.
type Listener func(online bool)

// Monitor holds the current connectivity state and notifies subscribers on
// transitions. The state is set externally, either by a probe loop or by
// tests, so the components that consume it never depend on real network
// conditions.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	listeners []Listener
}

// NewMonitor creates a Monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online}
}

// Online reports the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline updates the state. Listeners are notified only when the state
// actually changes.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(online)
	}
}

// Subscribe registers a listener and immediately invokes it with the current
// state so subscribers never start out stale.
func (m *Monitor) Subscribe(fn Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	current := m.online
	m.mu.Unlock()

	fn(current)
}
