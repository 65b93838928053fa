package capability

import (
	"context"
	"time"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
)

// DefaultObservationWindow bounds how long the transition listeners stay
// registered after the probe returns.
const DefaultObservationWindow = 30 * time.Second

// NetworkStatusProbe always reports the current online/offline status as
// detail and registers transition listeners for a bounded observation
// window, after which they are released. The pass condition is that
// listener registration succeeded, not that a transition was observed.
type NetworkStatusProbe struct {
	Monitor *offline.NetworkMonitor
	// Window overrides DefaultObservationWindow when positive.
	Window time.Duration
}

// Name implements Probe.
func (p *NetworkStatusProbe) Name() string { return ProbeNetworkStatus }

// Run implements Probe. The observation window deliberately outlives the
// suite run; teardown happens when the window expires or the monitor
// shuts down and closes the subscription.
func (p *NetworkStatusProbe) Run(_ context.Context) Result {
	if p.Monitor == nil {
		return Result{Name: p.Name(), Passed: false, Detail: "network monitor unavailable"}
	}

	status := "offline"
	if p.Monitor.Online() {
		status = "online"
	}

	window := p.Window
	if window <= 0 {
		window = DefaultObservationWindow
	}

	sub := p.Monitor.Subscribe()
	go observe(sub, window)

	return Result{
		Name:   p.Name(),
		Passed: true,
		Detail: "currently " + status + ", transition listeners registered",
	}
}

// observe drains transitions until the window expires or the subscription
// is closed from the monitor side, then releases it.
func observe(sub *offline.Subscription, window time.Duration) {
	defer sub.Cancel()
	timer := time.NewTimer(window)
	defer timer.Stop()

	for {
		select {
		case _, ok := <-sub.C:
			if !ok {
				return
			}
		case <-timer.C:
			return
		}
	}
}
