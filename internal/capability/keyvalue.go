package capability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
)

// scratchValue is the payload used for the key-value round-trip.
const scratchValue = "offline_test_value"

// KeyValueProbe writes a scratch key, requires exact read-back equality
// and removes the key regardless of outcome.
type KeyValueProbe struct {
	Store offline.KeyValueStore
}

// Name implements Probe.
func (p *KeyValueProbe) Name() string { return ProbeKeyValue }

// Run implements Probe.
func (p *KeyValueProbe) Run(_ context.Context) Result {
	if p.Store == nil {
		return Result{Name: p.Name(), Passed: false, Detail: "key-value store unavailable"}
	}

	key := "capability_probe_" + uuid.New().String()
	defer p.Store.Delete(key)

	if err := p.Store.Set(key, scratchValue); err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("write failed: %v", err)}
	}

	got, err := p.Store.Get(key)
	if err != nil {
		if errors.Is(err, offline.ErrKeyNotFound) {
			return Result{Name: p.Name(), Passed: false, Detail: "written key not readable"}
		}
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("read failed: %v", err)}
	}
	if got != scratchValue {
		return Result{
			Name:   p.Name(),
			Passed: false,
			Detail: fmt.Sprintf("round-trip mismatch: wrote %q, read %q", scratchValue, got),
		}
	}
	return Result{Name: p.Name(), Passed: true, Detail: "write/read/delete round-trip ok"}
}
