// Package session manages browsing-session state: the session identity
// cookie plus the server-side per-session flags (install prompt
// dismissal, standalone display mode, active view).
//
// The cookie holds only the session ID. The flags live server-side so
// components without a request in hand (the install prompt reveal timer)
// can read them; they are cleared when the session ends.
package session

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	gocache "github.com/patrickmn/go-cache"
)

// The closed enumeration of portal views.
const (
	ViewDashboard = "dashboard"
	ViewExams     = "exams"
	ViewMarks     = "marks"
	ViewResults   = "results"
	ViewAdmin     = "admin"
)

// Views lists all valid view identifiers.
var Views = []string{ViewDashboard, ViewExams, ViewMarks, ViewResults, ViewAdmin}

// ValidView reports whether v is in the view enumeration.
func ValidView(v string) bool {
	return slices.Contains(Views, v)
}

const (
	sessionIDKey = "session_id"

	// dataTTL is how long idle session data survives server side.
	dataTTL           = 30 * time.Minute
	dataSweepInterval = 5 * time.Minute
)

// Data is the server-side state of one browsing session.
// It implements the install prompt's DismissalStore.
type Data struct {
	mu         sync.Mutex
	dismissed  bool
	standalone bool
	activeView string
}

// Dismissed reports whether the install prompt was dismissed this session.
func (d *Data) Dismissed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dismissed
}

// SetDismissed records the explicit dismissal. Write-once: there is no
// way to clear it short of ending the session.
func (d *Data) SetDismissed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dismissed = true
}

// Standalone reports the client's last-reported standalone display mode.
func (d *Data) Standalone() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.standalone
}

// SetStandalone records the client-reported display mode.
func (d *Data) SetStandalone(standalone bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.standalone = standalone
}

// ActiveView returns the current view, defaulting to the dashboard.
func (d *Data) ActiveView() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.activeView == "" {
		return ViewDashboard
	}
	return d.activeView
}

// SetActiveView switches the current view. The identifier must be valid.
func (d *Data) SetActiveView(view string) error {
	if !ValidView(view) {
		return fmt.Errorf("unknown view %q", view)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.activeView = view
	return nil
}

// Manager issues session identity cookies and owns the server-side
// per-session data.
type Manager struct {
	store      *sessions.CookieStore
	cookieName string
	data       *gocache.Cache
}

// NewManager creates a Manager. An empty secret gets a random one, which
// means sessions do not survive a server restart. That is acceptable for
// state that is session-scoped anyway.
func NewManager(secret, cookieName string) *Manager {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	store := sessions.NewCookieStore(key)
	// MaxAge 0 makes it a browser-session cookie, matching the
	// session-scoped suppression contract.
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{
		store:      store,
		cookieName: cookieName,
		data:       gocache.New(dataTTL, dataSweepInterval),
	}
}

// SessionID returns the request's session ID, minting and setting a new
// one when the request carries none.
func (m *Manager) SessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := m.store.Get(r, m.cookieName)
	if err != nil {
		// A corrupt or re-keyed cookie falls back to a fresh session.
		sess, _ = m.store.New(r, m.cookieName)
	}

	if id, ok := sess.Values[sessionIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.New().String()
	sess.Values[sessionIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session cookie: %w", err)
	}
	return id, nil
}

// Data returns the server-side data for the session, creating it if
// absent. Access refreshes the idle TTL.
func (m *Manager) Data(sessionID string) *Data {
	if v, found := m.data.Get(sessionID); found {
		if d, ok := v.(*Data); ok {
			m.data.Set(sessionID, d, dataTTL)
			return d
		}
	}

	d := &Data{}
	if err := m.data.Add(sessionID, d, dataTTL); err != nil {
		// Lost a concurrent create; use the winner.
		if v, found := m.data.Get(sessionID); found {
			if existing, ok := v.(*Data); ok {
				return existing
			}
		}
	}
	return d
}

// End terminates the session: server-side data is dropped and the
// identity cookie expired. The dismissal flag dies with the session.
func (m *Manager) End(w http.ResponseWriter, r *http.Request, sessionID string) error {
	m.data.Delete(sessionID)

	sess, err := m.store.Get(r, m.cookieName)
	if err != nil {
		sess, _ = m.store.New(r, m.cookieName)
	}
	sess.Values = make(map[any]any)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to expire session cookie: %w", err)
	}
	return nil
}
