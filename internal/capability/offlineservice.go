package capability

import (
	"context"
	"fmt"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
)

// OfflineServiceProbe passes iff the external offline storage service is
// reachable. When present, its status query is invoked and the returned
// status reported as detail.
type OfflineServiceProbe struct {
	Service *offline.Service
}

// Name implements Probe.
func (p *OfflineServiceProbe) Name() string { return ProbeOfflineService }

// Run implements Probe.
func (p *OfflineServiceProbe) Run(ctx context.Context) Result {
	if p.Service == nil {
		return Result{Name: p.Name(), Passed: false, Detail: "offline storage service not reachable"}
	}

	status, err := p.Service.Status(ctx)
	if err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("status query failed: %v", err)}
	}

	online := "offline"
	if status.Online {
		online = "online"
	}
	return Result{
		Name:   p.Name(),
		Passed: true,
		Detail: fmt.Sprintf("reachable: %s, %d registrations, %d caches, sync=%t",
			online, status.Registrations, status.CacheCount, status.SyncCapable),
	}
}
