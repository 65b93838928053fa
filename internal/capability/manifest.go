package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// manifestFetchTimeout bounds the manifest request when the caller's
// context has no earlier deadline.
const manifestFetchTimeout = 5 * time.Second

// maxManifestSize caps how much of the manifest body is read.
const maxManifestSize = 64 * 1024

// webManifest is the subset of the manifest document the probe reports.
type webManifest struct {
	Name    string `json:"name"`
	Display string `json:"display"`
}

// ManifestProbe fetches the application manifest at its well-known URL,
// requires a successful response that parses as JSON, and reports the
// declared app name and display mode.
type ManifestProbe struct {
	URL string
	// Client overrides http.DefaultClient when set.
	Client *http.Client
}

// Name implements Probe.
func (p *ManifestProbe) Name() string { return ProbeManifest }

// Run implements Probe.
func (p *ManifestProbe) Run(ctx context.Context) Result {
	if p.URL == "" {
		return Result{Name: p.Name(), Passed: false, Detail: "manifest URL not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, manifestFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, http.NoBody)
	if err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("bad manifest URL: %v", err)}
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("fetch failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("fetch returned %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("read failed: %v", err)}
	}

	var manifest webManifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("parse failed: %v", err)}
	}

	return Result{
		Name:   p.Name(),
		Passed: true,
		Detail: fmt.Sprintf("name=%q display=%q", manifest.Name, manifest.Display),
	}
}
