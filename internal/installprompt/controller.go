package installprompt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
)

// DefaultRevealDelay is how long after arming the custom prompt is revealed.
const DefaultRevealDelay = 3 * time.Second

// ErrNoVisiblePrompt indicates an accept or dismiss action arrived while
// no prompt was showing.
var ErrNoVisiblePrompt = errors.New("no install prompt is visible")

// StandaloneQuery reports whether the client is already running as an
// installed app (display-mode media query, platform standalone flag or
// referrer heuristic, as reported by the client).
type StandaloneQuery func() bool

// DismissalStore persists the session-scoped dismissal flag. Written once
// on explicit dismissal, read on every arming attempt and at reveal time.
type DismissalStore interface {
	Dismissed() bool
	SetDismissed()
}

// Snapshot is a point-in-time view of the controller state.
type Snapshot struct {
	State         string `json:"state"`
	Visible       bool   `json:"visible"`
	Installed     bool   `json:"installed"`
	Standalone    bool   `json:"standalone"`
	Dismissed     bool   `json:"dismissed"`
	HasInvitation bool   `json:"hasInvitation"`
}

// Config wires a Controller's collaborators. All state the original
// design kept in ambient globals is passed in here explicitly.
type Config struct {
	SessionID   string
	RevealDelay time.Duration
	Standalone  StandaloneQuery
	Dismissal   DismissalStore
	Bus         *EventBus // optional; receives state transition events
	OnInstalled func()
	OnDismissed func()
	Log         logger.Logger
}

// Controller owns the lifecycle of one session's deferred install prompt:
// it captures platform invitations, reveals the custom call-to-action
// after a delay, and records the user's choice or dismissal.
//
// State transitions are serialized by the controller mutex; callbacks and
// bus publishes always run outside it.
type Controller struct {
	mu          sync.Mutex
	state       string
	visible     bool
	installed   bool
	invitation  *Invitation
	revealTimer *time.Timer
	closed      bool

	sessionID   string
	revealDelay time.Duration
	standalone  StandaloneQuery
	dismissal   DismissalStore
	bus         *EventBus
	onInstalled func()
	onDismissed func()
	log         logger.Logger
}

// NewController creates a controller in the Idle state.
func NewController(cfg Config) *Controller {
	if cfg.RevealDelay <= 0 {
		cfg.RevealDelay = DefaultRevealDelay
	}
	if cfg.Standalone == nil {
		cfg.Standalone = func() bool { return false }
	}
	return &Controller{
		state:       StateIdle,
		sessionID:   cfg.SessionID,
		revealDelay: cfg.RevealDelay,
		standalone:  cfg.Standalone,
		dismissal:   cfg.Dismissal,
		bus:         cfg.Bus,
		onInstalled: cfg.OnInstalled,
		onDismissed: cfg.OnDismissed,
		log:         cfg.Log,
	}
}

// dismissed reads the session dismissal flag. Callers hold c.mu.
func (c *Controller) dismissed() bool {
	return c.dismissal != nil && c.dismissal.Dismissed()
}

// suppressed reports whether the prompt must never show: already
// installed, running standalone, or dismissed this session.
// Callers hold c.mu.
func (c *Controller) suppressed() bool {
	return c.installed || c.standalone() || c.dismissed()
}

// HandleInvitation captures a platform install invitation and arms the
// delayed reveal. The invitation is discarded immediately if the prompt
// is suppressed for this session.
func (c *Controller) HandleInvitation(inv *Invitation) {
	c.mu.Lock()
	if c.closed || c.suppressed() {
		c.mu.Unlock()
		return
	}

	// A newer invitation replaces any stale captured one. The prompt hides
	// again until the fresh reveal timer fires.
	c.invitation = inv
	c.visible = false
	c.state = StateArmed
	if c.revealTimer != nil {
		c.revealTimer.Stop()
	}
	c.revealTimer = time.AfterFunc(c.revealDelay, c.reveal)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publishState(snap)
}

// reveal fires when the arm delay elapses. Preconditions are re-evaluated
// fresh here: the check at fire time is authoritative, not state captured
// at arm time.
func (c *Controller) reveal() {
	c.mu.Lock()
	if c.closed || c.state != StateArmed || c.invitation == nil {
		c.mu.Unlock()
		return
	}
	if c.suppressed() {
		c.invitation = nil
		c.state = StateIdle
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.publishState(snap)
		return
	}

	c.visible = true
	c.state = StateVisible
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publishState(snap)
}

// Accept invokes the captured invitation's prompt action and awaits the
// user's choice. The invitation is consumed either way; a failed prompt
// drops the controller back to the non-visible state and a fresh
// invitation is required to re-arm.
func (c *Controller) Accept(ctx context.Context) (Choice, error) {
	c.mu.Lock()
	if !c.visible || c.invitation == nil {
		c.mu.Unlock()
		return "", ErrNoVisiblePrompt
	}
	inv := c.invitation
	c.invitation = nil // single use: cleared before prompting
	c.mu.Unlock()

	choice, err := inv.Prompt(ctx)

	c.mu.Lock()
	c.visible = false
	if err != nil {
		c.state = StateIdle
		snap := c.snapshotLocked()
		c.mu.Unlock()
		if c.log != nil {
			c.log.Error("install prompt invocation failed",
				logger.String("session_id", c.sessionID),
				logger.Error(err))
		}
		c.publishState(snap)
		return "", err
	}

	c.state = StateResolved
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publishState(snap)
	switch choice {
	case ChoiceAccepted:
		c.publish(EventInstalled, map[string]any{PropertyChoice: string(choice)})
		if c.onInstalled != nil {
			c.onInstalled()
		}
	case ChoiceDismissed:
		c.publish(EventDismissed, map[string]any{PropertyChoice: string(choice)})
		if c.onDismissed != nil {
			c.onDismissed()
		}
	}
	return choice, nil
}

// Dismiss records an explicit dismissal of the custom prompt. The session
// dismissal flag suppresses the prompt for the rest of the session even
// if new invitations arrive.
func (c *Controller) Dismiss() error {
	c.mu.Lock()
	if !c.visible {
		c.mu.Unlock()
		return ErrNoVisiblePrompt
	}
	c.visible = false
	c.invitation = nil
	c.state = StateResolved
	if c.dismissal != nil {
		c.dismissal.SetDismissed()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publishState(snap)
	c.publish(EventDismissed, nil)
	if c.onDismissed != nil {
		c.onDismissed()
	}
	return nil
}

// HandleInstalled processes the platform install confirmation, which can
// arrive from any state (the user may install via browser UI). The prompt
// is forcibly hidden and can never show again this session.
func (c *Controller) HandleInstalled() {
	c.mu.Lock()
	if c.closed || c.installed {
		c.mu.Unlock()
		return
	}
	c.installed = true
	c.visible = false
	c.invitation = nil
	c.state = StateResolved
	if c.revealTimer != nil {
		c.revealTimer.Stop()
		c.revealTimer = nil
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publishState(snap)
	c.publish(EventInstalled, nil)
	if c.onInstalled != nil {
		c.onInstalled()
	}
}

// Snapshot returns the current controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// snapshotLocked builds a Snapshot. Callers hold c.mu.
func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:         c.state,
		Visible:       c.visible,
		Installed:     c.installed,
		Standalone:    c.standalone(),
		Dismissed:     c.dismissed(),
		HasInvitation: c.invitation != nil,
	}
}

// Close cancels the pending reveal timer so no callback can act on a
// defunct controller.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.revealTimer != nil {
		c.revealTimer.Stop()
		c.revealTimer = nil
	}
	c.invitation = nil
}

func (c *Controller) publishState(snap Snapshot) {
	c.publish(EventState, map[string]any{
		PropertyState:   snap.State,
		PropertyVisible: snap.Visible,
	})
}

func (c *Controller) publish(name string, props map[string]any) {
	if c.bus == nil {
		return
	}
	if props == nil {
		props = make(map[string]any, 1)
	}
	props[PropertySession] = c.sessionID
	c.bus.Publish(&Event{Name: name, Properties: props, Timestamp: time.Now()})
}
