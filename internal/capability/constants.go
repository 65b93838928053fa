// Package capability runs the offline-capability probe suite: a battery
// of independent checks against the portal's platform subsystems, each
// producing a pass/fail result with diagnostic detail.
package capability

// Probe names identify the individual capability checks.
const (
	ProbeServiceWorker  = "service_worker"
	ProbeTransientStore = "transient_store"
	ProbeKeyValue       = "key_value"
	ProbeNetworkStatus  = "network_status"
	ProbeContentCache   = "content_cache"
	ProbeBackgroundSync = "background_sync"
	ProbeOfflineService = "offline_service"
	ProbeManifest       = "manifest"
)

// Verdict tiers classify a report by its pass ratio.
const (
	VerdictFull    = "full"    // every probe passed
	VerdictPartial = "partial" // ratio >= 0.75
	VerdictFailing = "failing" // ratio < 0.75
)

// partialThreshold is the minimum pass ratio for the partial verdict.
// Exactly 0.75 classifies as partial, not failing.
const partialThreshold = 0.75
