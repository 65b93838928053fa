package installprompt

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Choice is the user's outcome of the native install prompt.
type Choice string

const (
	ChoiceAccepted  Choice = "accepted"
	ChoiceDismissed Choice = "dismissed"
)

// ErrInvitationConsumed indicates Prompt was invoked on an already
// consumed invitation. Invitations are single use.
var ErrInvitationConsumed = errors.New("install invitation already consumed")

// Invitation is the captured platform install invitation: a single-use
// capability token. Prompt consumes it and awaits the user's choice,
// which the client reports asynchronously via Resolve.
type Invitation struct {
	id         string
	capturedAt time.Time
	consumed   atomic.Bool
	resolve    sync.Once
	choiceCh   chan Choice
}

// NewInvitation creates an unconsumed invitation.
func NewInvitation(id string) *Invitation {
	return &Invitation{
		id:         id,
		capturedAt: time.Now(),
		choiceCh:   make(chan Choice, 1),
	}
}

// ID returns the invitation identifier.
func (i *Invitation) ID() string { return i.id }

// CapturedAt returns when the invitation was captured.
func (i *Invitation) CapturedAt() time.Time { return i.capturedAt }

// Consumed reports whether Prompt has been invoked.
func (i *Invitation) Consumed() bool { return i.consumed.Load() }

// Resolve records the user's choice from the native prompt.
// Only the first call takes effect.
func (i *Invitation) Resolve(choice Choice) {
	i.resolve.Do(func() {
		i.choiceCh <- choice
	})
}

// Prompt consumes the invitation and blocks until the choice is resolved
// or ctx expires. A second invocation returns ErrInvitationConsumed
// without blocking.
func (i *Invitation) Prompt(ctx context.Context) (Choice, error) {
	if !i.consumed.CompareAndSwap(false, true) {
		return "", ErrInvitationConsumed
	}
	select {
	case choice := <-i.choiceCh:
		return choice, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
