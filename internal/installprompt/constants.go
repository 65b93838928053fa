// Package installprompt mediates between platform install-invitation
// signals and the portal's custom install call-to-action.
package installprompt

// Controller states.
const (
	StateIdle     = "idle"
	StateArmed    = "armed"
	StateVisible  = "visible"
	StateResolved = "resolved"
)

// Event names published on the prompt event bus.
const (
	EventInvitation = "prompt.invitation"
	EventState      = "prompt.state"
	EventInstalled  = "prompt.installed"
	EventDismissed  = "prompt.dismissed"
)

// Event properties available on prompt events.
const (
	PropertySession = "session_id"
	PropertyState   = "state"
	PropertyVisible = "visible"
	PropertyChoice  = "choice"
)
