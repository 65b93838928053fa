package offline

import (
	"sync"
	"time"
)

// Service worker lifecycle states as reported by clients.
const (
	WorkerStateInstalling = "installing"
	WorkerStateWaiting    = "waiting"
	WorkerStateActive     = "active"
)

// Registration is a client-reported service worker registration.
type Registration struct {
	Scope       string    `json:"scope"`
	State       string    `json:"state"`
	SyncCapable bool      `json:"syncCapable"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RegistrationRegistry tracks service worker registrations reported by
// connected clients, keyed by scope.
type RegistrationRegistry struct {
	regs map[string]Registration
	mu   sync.RWMutex
}

// NewRegistrationRegistry creates an empty registry.
func NewRegistrationRegistry() *RegistrationRegistry {
	return &RegistrationRegistry{regs: make(map[string]Registration)}
}

// Register records or updates a registration for its scope.
func (r *RegistrationRegistry) Register(reg Registration) {
	if reg.UpdatedAt.IsZero() {
		reg.UpdatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs[reg.Scope] = reg
}

// Lookup returns the registration for scope, if any.
func (r *RegistrationRegistry) Lookup(scope string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[scope]
	return reg, ok
}

// Remove deletes the registration for scope. Returns true if it existed.
func (r *RegistrationRegistry) Remove(scope string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.regs[scope]
	delete(r.regs, scope)
	return ok
}

// List returns all registrations.
func (r *RegistrationRegistry) List() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Registration, 0, len(r.regs))
	for _, reg := range r.regs {
		out = append(out, reg)
	}
	return out
}

// AnySyncCapable reports whether any registration advertises background sync.
func (r *RegistrationRegistry) AnySyncCapable() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, reg := range r.regs {
		if reg.SyncCapable {
			return true
		}
	}
	return false
}
