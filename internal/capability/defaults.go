package capability

import (
	"time"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
)

// SuiteConfig wires the default probe battery.
type SuiteConfig struct {
	Service           *offline.Service
	WorkerScope       string
	ManifestURL       string
	ObservationWindow time.Duration
	ScratchDir        string
	Log               logger.Logger
}

// NewDefaultSuite builds the standard eight-probe suite in report order.
// A nil Service leaves the dependent probes in place; they fail with an
// "unavailable" detail rather than being skipped, so the report always
// has the full battery.
func NewDefaultSuite(cfg SuiteConfig) *Suite {
	var (
		registry *offline.RegistrationRegistry
		kv       offline.KeyValueStore
		caches   *offline.CacheStorage
		network  *offline.NetworkMonitor
	)
	if cfg.Service != nil {
		registry = cfg.Service.Registry
		kv = cfg.Service.KV
		caches = cfg.Service.Caches
		network = cfg.Service.Network
	}

	return NewSuite(cfg.Log,
		&ServiceWorkerProbe{Registry: registry, Scope: cfg.WorkerScope},
		&TransientStoreProbe{Dir: cfg.ScratchDir},
		&KeyValueProbe{Store: kv},
		&NetworkStatusProbe{Monitor: network, Window: cfg.ObservationWindow},
		&ContentCacheProbe{Caches: caches},
		&BackgroundSyncProbe{Registry: registry},
		&OfflineServiceProbe{Service: cfg.Service},
		&ManifestProbe{URL: cfg.ManifestURL},
	)
}
