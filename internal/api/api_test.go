package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/capability"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/conf"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/repository"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/installprompt"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/session"
)

// testRevealDelay keeps prompt timing fast in handler tests.
const testRevealDelay = 15 * time.Millisecond

// testHarness is an in-process portal with a cookie-keeping client.
type testHarness struct {
	ctrl    *Controller
	cookies []*http.Cookie
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	db, err := datastore.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = datastore.Close(db) })

	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
	settings := &conf.Settings{
		WebServer:     conf.WebServerSettings{Host: "127.0.0.1", Port: 0},
		InstallPrompt: conf.InstallPromptSettings{RevealDelay: conf.Duration(testRevealDelay)},
		Diagnostics: conf.DiagnosticsSettings{
			ObservationWindow: conf.Duration(100 * time.Millisecond),
		},
		Session: conf.SessionSettings{CookieName: "examportal_test"},
	}

	sessions := session.NewManager("", settings.Session.CookieName)
	svc := offline.NewService()
	t.Cleanup(svc.Network.Close)

	bus := installprompt.NewEventBus()
	t.Cleanup(bus.Stop)

	prompts := installprompt.NewManager(func(sessionID string) *installprompt.Controller {
		data := sessions.Data(sessionID)
		return installprompt.NewController(installprompt.Config{
			SessionID:   sessionID,
			RevealDelay: testRevealDelay,
			Standalone:  data.Standalone,
			Dismissal:   data,
			Bus:         bus,
			Log:         log,
		})
	})
	t.Cleanup(prompts.Close)

	manifestSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"AIC Exam Portal","display":"standalone"}`))
	}))
	t.Cleanup(manifestSrv.Close)

	probeRuns := repository.NewProbeRunRepository(db)
	ctrl := New(Config{
		Settings: settings,
		Sessions: sessions,
		Offline:  svc,
		Prompts:  prompts,
		Bus:      bus,
		Suite: capability.NewDefaultSuite(capability.SuiteConfig{
			Service:           svc,
			WorkerScope:       "/",
			ManifestURL:       manifestSrv.URL,
			ObservationWindow: 100 * time.Millisecond,
			ScratchDir:        t.TempDir(),
			Log:               log,
		}),
		Recorder:      capability.NewRecorder(probeRuns, log),
		ProbeRuns:     probeRuns,
		InstallEvents: repository.NewInstallEventRepository(db),
		Registry:      prometheus.NewRegistry(),
		Log:           log,
	})
	return &testHarness{ctrl: ctrl}
}

// do performs a request carrying the harness cookies and absorbs any the
// response sets.
func (h *testHarness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ctrl.Echo.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		h.cookies = cookies
	}
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (h *testHarness) snapshot(t *testing.T) installprompt.Snapshot {
	t.Helper()
	rec := h.do(t, http.MethodGet, "/api/v1/install/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeJSON[installprompt.Snapshot](t, rec)
}

func (h *testHarness) waitVisible(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.snapshot(t).Visible
	}, 2*time.Second, 2*time.Millisecond, "prompt never became visible")
}

func TestServerStartAndGracefulShutdown(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	errCh := make(chan error, 1)
	go func() { errCh <- h.ctrl.Start() }()

	require.Eventually(t, func() bool {
		return h.ctrl.Echo.ListenerAddr() != nil
	}, 2*time.Second, 5*time.Millisecond, "server never started listening")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.ctrl.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err, "graceful shutdown must not surface as a start error")
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}

func TestServeManifest(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodGet, "/manifest.webmanifest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/manifest+json")
	assert.Contains(t, rec.Body.String(), `"AIC Exam Portal"`)
	assert.Contains(t, rec.Body.String(), `"standalone"`)
}

func TestServeServiceWorker(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodGet, "/sw.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Service-Worker-Allowed"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestInstallStateInitial(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	snap := h.snapshot(t)
	assert.Equal(t, installprompt.StateIdle, snap.State)
	assert.False(t, snap.Visible)
}

func TestInstallInvitationArmsAndReveals(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/install/invitation", `{"platforms":["web"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[invitationResponse](t, rec)
	assert.NotEmpty(t, resp.InvitationID)
	assert.Equal(t, installprompt.StateArmed, resp.Snapshot.State)
	assert.False(t, resp.Snapshot.Visible)

	h.waitVisible(t)
}

func TestInstallAcceptFlow(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/install/invitation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	inv := decodeJSON[invitationResponse](t, rec)
	h.waitVisible(t)

	// The platform outcome arrives first; the buffered resolution lets
	// accept pick it up without a race.
	rec = h.do(t, http.MethodPost, "/api/v1/install/choice",
		`{"invitationId":"`+inv.InvitationID+`","choice":"accepted"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/install/accept", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[acceptResponse](t, rec)
	assert.Equal(t, "accepted", resp.Choice)
	assert.Equal(t, installprompt.StateResolved, resp.Snapshot.State)
}

func TestInstallAcceptWithoutVisiblePrompt(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/install/accept", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInstallChoiceValidation(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/install/choice", `{"choice":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/install/choice", `{"choice":"accepted"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no pending invitation")
}

func TestInstallDismissSuppressesSession(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	h.do(t, http.MethodPost, "/api/v1/install/invitation", "")
	h.waitVisible(t)

	rec := h.do(t, http.MethodPost, "/api/v1/install/dismiss", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeJSON[installprompt.Snapshot](t, rec)
	assert.True(t, snap.Dismissed)
	assert.False(t, snap.Visible)

	// Later invitations in the same session never resurface the prompt.
	h.do(t, http.MethodPost, "/api/v1/install/invitation", "")
	time.Sleep(3 * testRevealDelay)
	assert.False(t, h.snapshot(t).Visible)
}

func TestInstallDismissWithoutVisiblePrompt(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/install/dismiss", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInstallInstalledReport(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/install/installed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeJSON[installprompt.Snapshot](t, rec)
	assert.True(t, snap.Installed)

	h.do(t, http.MethodPost, "/api/v1/install/invitation", "")
	time.Sleep(3 * testRevealDelay)
	assert.False(t, h.snapshot(t).Visible)
}

func TestInstallStandaloneSuppressesReveal(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/install/display-mode", `{"standalone":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	h.do(t, http.MethodPost, "/api/v1/install/invitation", "")
	time.Sleep(3 * testRevealDelay)
	snap := h.snapshot(t)
	assert.False(t, snap.Visible)
	assert.True(t, snap.Standalone)
}

func TestDiagnosticsRun(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	// Make the worker probes pass so the battery exercises both outcomes.
	rec := h.do(t, http.MethodPost, "/api/v1/sw/register",
		`{"scope":"/","state":"active","syncCapable":true}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/diagnostics/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[runResponse](t, rec)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 8, resp.Report.Total)
	assert.Equal(t, 8, resp.Report.Passed, "%+v", resp.Report.Results)
	assert.Equal(t, capability.VerdictFull, resp.Report.Verdict)
	assert.NotZero(t, resp.ID, "run must be persisted")
}

func TestDiagnosticsSchema(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/diagnostics/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	schema := decodeJSON[[]capability.ProbeSchema](t, rec)
	assert.Len(t, schema, 8)
}

func TestDiagnosticsHistory(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/diagnostics/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	run := decodeJSON[runResponse](t, rec)

	rec = h.do(t, http.MethodGet, "/api/v1/diagnostics/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeJSON[historyResponse](t, rec)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Runs, 1)
	assert.Equal(t, run.ID, page.Runs[0].ID)
	assert.Len(t, page.Runs[0].Results, 8)

	rec = h.do(t, http.MethodGet, "/api/v1/diagnostics/history/"+strconv.FormatUint(uint64(run.ID), 10), "")
	require.Equal(t, http.StatusOK, rec.Code)
	entry := decodeJSON[historyEntry](t, rec)
	assert.Equal(t, run.ID, entry.ID)
}

func TestDiagnosticsHistoryValidation(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	assert.Equal(t, http.StatusBadRequest,
		h.do(t, http.MethodGet, "/api/v1/diagnostics/history?limit=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		h.do(t, http.MethodGet, "/api/v1/diagnostics/history?offset=x", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		h.do(t, http.MethodGet, "/api/v1/diagnostics/history/abc", "").Code)
	assert.Equal(t, http.StatusNotFound,
		h.do(t, http.MethodGet, "/api/v1/diagnostics/history/99999", "").Code)
}

func TestWorkerRegistrationLifecycle(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/sw/register", `{"scope":"/","state":"active"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/sw/registrations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	regs := decodeJSON[[]offline.Registration](t, rec)
	require.Len(t, regs, 1)
	assert.Equal(t, "/", regs[0].Scope)

	rec = h.do(t, http.MethodDelete, "/api/v1/sw/register?scope=/", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(t, http.MethodDelete, "/api/v1/sw/register?scope=/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkerRegistrationValidation(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	assert.Equal(t, http.StatusBadRequest,
		h.do(t, http.MethodPost, "/api/v1/sw/register", `{"state":"active"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		h.do(t, http.MethodPost, "/api/v1/sw/register", `{"scope":"/","state":"hibernating"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		h.do(t, http.MethodDelete, "/api/v1/sw/register", "").Code)
}

func TestNetworkStatusReporting(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/network/status", `{"online":false}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/offline/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeJSON[offline.StatusReport](t, rec)
	assert.False(t, status.Online)
}

func TestNavigationView(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/navigation/view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeJSON[viewResponse](t, rec)
	assert.Equal(t, session.ViewDashboard, view.View)
	assert.Equal(t, session.Views, view.Views)

	rec = h.do(t, http.MethodPut, "/api/v1/navigation/view", `{"view":"marks"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeJSON[viewResponse](t, rec)
	assert.Equal(t, session.ViewMarks, view.View)

	rec = h.do(t, http.MethodPut, "/api/v1/navigation/view", `{"view":"settings"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutResetsSessionState(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	h.do(t, http.MethodPost, "/api/v1/install/invitation", "")
	h.waitVisible(t)
	rec := h.do(t, http.MethodPost, "/api/v1/install/dismiss", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	h.cookies = nil

	// A fresh session is not bound by the old dismissal.
	h.do(t, http.MethodPost, "/api/v1/install/invitation", "")
	h.waitVisible(t)
}

func TestInstallEventStream(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	// Establish a session first so the stream filter has an ID to match.
	sessionID := func() string {
		h.snapshot(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range h.cookies {
			req.AddCookie(c)
		}
		id, err := h.ctrl.sessions.SessionID(httptest.NewRecorder(), req)
		require.NoError(t, err)
		return id
	}()

	events, cancel := h.ctrl.bus.SubscribeChan()
	defer cancel()

	h.do(t, http.MethodPost, "/api/v1/install/invitation", "")

	select {
	case event := <-events:
		require.NotNil(t, event)
		assert.Equal(t, sessionID, event.Properties[installprompt.PropertySession])
	case <-time.After(2 * time.Second):
		t.Fatal("no event published for invitation")
	}
}
