package capability

// Probe check kinds for the UI.
const (
	KindRoundTrip        = "round_trip"
	KindFeatureDetection = "feature_detection"
	KindStatus           = "status"
)

// ProbeSchema describes one probe for the diagnostics UI.
type ProbeSchema struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// GetSchema returns the probe catalog in report order.
func GetSchema() []ProbeSchema {
	return []ProbeSchema{
		{Name: ProbeServiceWorker, Label: "Service Worker", Kind: KindStatus,
			Description: "A service worker registration covers the portal scope"},
		{Name: ProbeTransientStore, Label: "Transient Store", Kind: KindRoundTrip,
			Description: "A scratch database can be opened, written, read and deleted"},
		{Name: ProbeKeyValue, Label: "Key-Value Persistence", Kind: KindRoundTrip,
			Description: "A scratch key reads back exactly the written value"},
		{Name: ProbeNetworkStatus, Label: "Network Status", Kind: KindStatus,
			Description: "Online/offline transition listeners can be registered"},
		{Name: ProbeContentCache, Label: "Content Cache", Kind: KindRoundTrip,
			Description: "A scratch named cache stores and retrieves a synthetic response"},
		{Name: ProbeBackgroundSync, Label: "Background Sync", Kind: KindFeatureDetection,
			Description: "A sync-capable service worker registration is advertised"},
		{Name: ProbeOfflineService, Label: "Offline Storage Service", Kind: KindStatus,
			Description: "The offline storage integration answers its status query"},
		{Name: ProbeManifest, Label: "Web App Manifest", Kind: KindRoundTrip,
			Description: "The manifest is reachable and declares name and display mode"},
	}
}
