package offline

import (
	"context"
	"time"
)

// StatusReport is the answer to the offline service status query.
type StatusReport struct {
	Online        bool      `json:"online"`
	Registrations int       `json:"registrations"`
	CacheCount    int       `json:"cacheCount"`
	SyncCapable   bool      `json:"syncCapable"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// Service bundles the offline platform subsystems behind a single
// integration point. It is passed explicitly to consumers (probe suite,
// API controller) instead of living in ambient global state.
type Service struct {
	KV       KeyValueStore
	Caches   *CacheStorage
	Registry *RegistrationRegistry
	Network  *NetworkMonitor
}

// NewService creates a Service with fresh in-memory subsystems.
func NewService() *Service {
	return &Service{
		KV:       NewKeyValueStore(),
		Caches:   NewCacheStorage(),
		Registry: NewRegistrationRegistry(),
		Network:  NewNetworkMonitor(),
	}
}

// Status reports the current state of the offline subsystems.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &StatusReport{
		Online:        s.Network.Online(),
		Registrations: len(s.Registry.List()),
		CacheCount:    len(s.Caches.Names()),
		SyncCapable:   s.Registry.AnySyncCapable(),
		CheckedAt:     time.Now(),
	}, nil
}
