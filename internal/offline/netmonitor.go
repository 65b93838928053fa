package offline

import (
	"sync"
	"time"
)

// transitionBuffer is the per-subscriber channel capacity. Transitions are
// dropped for slow subscribers rather than blocking the publisher.
const transitionBuffer = 16

// Transition is a single online/offline status change.
type Transition struct {
	Online bool      `json:"online"`
	At     time.Time `json:"at"`
}

// Subscription is a scoped handle on network transition delivery.
// Cancel releases the listener on all exit paths and is safe to call
// multiple times.
type Subscription struct {
	C      <-chan Transition
	ch     chan Transition
	cancel func()
	once   sync.Once
}

// Cancel removes the subscription from the monitor and closes its channel.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// NetworkMonitor tracks the portal's online/offline status as reported by
// clients and fans transitions out to subscribers.
type NetworkMonitor struct {
	online bool
	subs   map[*Subscription]struct{}
	mu     sync.Mutex
}

// NewNetworkMonitor creates a monitor that starts in the online state.
func NewNetworkMonitor() *NetworkMonitor {
	return &NetworkMonitor{
		online: true,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Online returns the current status.
func (m *NetworkMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline updates the status. A change is broadcast to all subscribers;
// setting the same status twice is a no-op.
func (m *NetworkMonitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.online == online {
		return
	}
	m.online = online

	t := Transition{Online: online, At: time.Now()}
	for sub := range m.subs {
		select {
		case sub.ch <- t:
		default:
			// Subscriber not keeping up, drop rather than block.
		}
	}
}

// Subscribe registers a transition listener and returns its handle.
func (m *NetworkMonitor) Subscribe() *Subscription {
	ch := make(chan Transition, transitionBuffer)
	sub := &Subscription{C: ch, ch: ch}
	sub.cancel = func() {
		m.mu.Lock()
		delete(m.subs, sub)
		m.mu.Unlock()
		close(ch)
	}

	m.mu.Lock()
	m.subs[sub] = struct{}{}
	m.mu.Unlock()
	return sub
}

// Close cancels every active subscription. Subscribers observe their
// channel closing. Called on server shutdown so no observation window
// goroutine outlives the monitor.
func (m *NetworkMonitor) Close() {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subs))
	for sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// SubscriberCount returns the number of active subscriptions.
func (m *NetworkMonitor) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
