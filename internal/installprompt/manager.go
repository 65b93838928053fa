package installprompt

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// controllerTTL is how long an idle session keeps its controller before
	// it is evicted and closed.
	controllerTTL = 30 * time.Minute
	// controllerSweepInterval is how often expired controllers are reaped.
	controllerSweepInterval = 5 * time.Minute
)

// ControllerFactory builds a controller for a session.
type ControllerFactory func(sessionID string) *Controller

// Manager holds one Controller per browsing session. Controllers are
// created lazily on first access and closed when the session goes idle,
// is removed, or the manager shuts down.
type Manager struct {
	controllers *gocache.Cache
	factory     ControllerFactory
}

// NewManager creates a Manager using factory for new sessions.
func NewManager(factory ControllerFactory) *Manager {
	c := gocache.New(controllerTTL, controllerSweepInterval)
	c.OnEvicted(func(_ string, v any) {
		if ctrl, ok := v.(*Controller); ok {
			ctrl.Close()
		}
	})
	return &Manager{controllers: c, factory: factory}
}

// Get returns the session's controller, creating it if absent.
// Access refreshes the idle TTL.
func (m *Manager) Get(sessionID string) *Controller {
	if v, found := m.controllers.Get(sessionID); found {
		if ctrl, ok := v.(*Controller); ok {
			m.controllers.Set(sessionID, ctrl, controllerTTL)
			return ctrl
		}
	}

	ctrl := m.factory(sessionID)
	// Two concurrent first requests can race here; Add keeps the winner and
	// the loser's controller is closed immediately.
	if err := m.controllers.Add(sessionID, ctrl, controllerTTL); err != nil {
		ctrl.Close()
		if v, found := m.controllers.Get(sessionID); found {
			if existing, ok := v.(*Controller); ok {
				return existing
			}
		}
	}
	return ctrl
}

// Remove closes and forgets the session's controller. Called on logout,
// when the session storage scope ends.
func (m *Manager) Remove(sessionID string) {
	m.controllers.Delete(sessionID) // OnEvicted closes the controller
}

// Close shuts down all controllers.
func (m *Manager) Close() {
	for id := range m.controllers.Items() {
		m.controllers.Delete(id)
	}
}
