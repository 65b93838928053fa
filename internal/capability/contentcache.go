package capability

import (
	"bytes"
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
)

// Synthetic entry for the cache round-trip. The URL is never fetched.
const (
	syntheticCacheURL  = "https://examportal.invalid/capability-probe"
	syntheticCacheBody = "capability probe payload"
)

// ContentCacheProbe stores a synthetic response under a synthetic URL in
// a scratch named cache, requires a non-absent match on retrieval, and
// deletes the scratch cache regardless of outcome.
type ContentCacheProbe struct {
	Caches *offline.CacheStorage
}

// Name implements Probe.
func (p *ContentCacheProbe) Name() string { return ProbeContentCache }

// Run implements Probe.
func (p *ContentCacheProbe) Run(_ context.Context) Result {
	if p.Caches == nil {
		return Result{Name: p.Name(), Passed: false, Detail: "cache storage unavailable"}
	}

	cacheName := "capability_probe_" + uuid.New().String()
	defer p.Caches.DeleteCache(cacheName)

	p.Caches.Put(cacheName, &offline.CachedResponse{
		URL:         syntheticCacheURL,
		Status:      http.StatusOK,
		ContentType: "text/plain",
		Body:        []byte(syntheticCacheBody),
	})

	match := p.Caches.Match(cacheName, syntheticCacheURL)
	if match == nil {
		return Result{Name: p.Name(), Passed: false, Detail: "stored entry not retrievable"}
	}
	if !bytes.Equal(match.Body, []byte(syntheticCacheBody)) {
		return Result{Name: p.Name(), Passed: false, Detail: "retrieved entry body mismatch"}
	}
	return Result{Name: p.Name(), Passed: true, Detail: "cache put/match/delete round-trip ok"}
}
