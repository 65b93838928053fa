package capability

import (
	"context"
	"fmt"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
)

// ServiceWorkerProbe passes iff an active service worker registration is
// associated with the portal scope. A registration still installing or
// waiting does not control the page yet and fails the check.
type ServiceWorkerProbe struct {
	Registry *offline.RegistrationRegistry
	Scope    string
}

// Name implements Probe.
func (p *ServiceWorkerProbe) Name() string { return ProbeServiceWorker }

// Run implements Probe.
func (p *ServiceWorkerProbe) Run(_ context.Context) Result {
	if p.Registry == nil {
		return Result{Name: p.Name(), Passed: false, Detail: "registration registry unavailable"}
	}
	reg, ok := p.Registry.Lookup(p.Scope)
	if !ok {
		return Result{
			Name:   p.Name(),
			Passed: false,
			Detail: fmt.Sprintf("no registration for scope %q", p.Scope),
		}
	}
	if reg.State != offline.WorkerStateActive {
		return Result{
			Name:   p.Name(),
			Passed: false,
			Detail: fmt.Sprintf("worker for scope %q is %s, not active", reg.Scope, reg.State),
		}
	}
	return Result{
		Name:   p.Name(),
		Passed: true,
		Detail: fmt.Sprintf("active worker registered for scope %q", reg.Scope),
	}
}

// BackgroundSyncProbe passes iff any registration advertises background
// sync capability. Feature detection only: exercising sync would queue
// real work, so no round-trip is attempted.
type BackgroundSyncProbe struct {
	Registry *offline.RegistrationRegistry
}

// Name implements Probe.
func (p *BackgroundSyncProbe) Name() string { return ProbeBackgroundSync }

// Run implements Probe.
func (p *BackgroundSyncProbe) Run(_ context.Context) Result {
	if p.Registry == nil {
		return Result{Name: p.Name(), Passed: false, Detail: "registration registry unavailable"}
	}
	if !p.Registry.AnySyncCapable() {
		return Result{Name: p.Name(), Passed: false, Detail: "no sync-capable registration"}
	}
	return Result{Name: p.Name(), Passed: true, Detail: "background sync supported"}
}
