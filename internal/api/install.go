package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/installprompt"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
)

const (
	// pendingInvitationTTL bounds how long an unresolved invitation is
	// retained for the choice endpoint.
	pendingInvitationTTL = 30 * time.Minute
	pendingSweepInterval = 5 * time.Minute
	sseHeartbeatInterval = 30 * time.Second
	sseMaxStreamDuration = 30 * time.Minute
)

// invitationRequest reports a captured beforeinstallprompt event.
type invitationRequest struct {
	Platforms []string `json:"platforms"`
}

// invitationResponse acknowledges a captured invitation.
type invitationResponse struct {
	InvitationID string                 `json:"invitationId"`
	Snapshot     installprompt.Snapshot `json:"snapshot"`
}

// choiceRequest reports the user's decision on the native prompt.
type choiceRequest struct {
	InvitationID string `json:"invitationId"`
	Choice       string `json:"choice"`
}

// acceptResponse carries the resolved outcome of the native prompt.
type acceptResponse struct {
	Choice   string                 `json:"choice"`
	Snapshot installprompt.Snapshot `json:"snapshot"`
}

// displayModeRequest reports the client's display-mode media query result.
type displayModeRequest struct {
	Standalone bool `json:"standalone"`
}

func (c *Controller) registerInstallRoutes() {
	g := c.Group.Group("/install")
	g.GET("/state", c.getInstallState)
	g.POST("/invitation", c.captureInvitation)
	g.POST("/accept", c.acceptInstallPrompt)
	g.POST("/choice", c.resolveInstallChoice)
	g.POST("/dismiss", c.dismissInstallPrompt)
	g.POST("/installed", c.reportInstalled)
	g.POST("/display-mode", c.reportDisplayMode)
	g.GET("/stream", c.streamInstallEvents)
	g.GET("/history", c.listInstallHistory)
}

// getInstallState returns the session's current prompt state.
func (c *Controller) getInstallState(ctx echo.Context) error {
	id, _, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	return ctx.JSON(http.StatusOK, c.prompts.Get(id).Snapshot())
}

// captureInvitation handles a client-reported platform install invitation.
// It mints a single-use invitation token and arms the delayed reveal.
func (c *Controller) captureInvitation(ctx echo.Context) error {
	id, _, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	var req invitationRequest
	// Body is optional; platforms are informational only.
	_ = ctx.Bind(&req)

	inv := installprompt.NewInvitation(uuid.New().String())
	c.pending.Set(id, inv, pendingInvitationTTL)

	ctrl := c.prompts.Get(id)
	ctrl.HandleInvitation(inv)

	if c.bus != nil {
		c.bus.Publish(&installprompt.Event{
			Name: installprompt.EventInvitation,
			Properties: map[string]any{
				installprompt.PropertySession: id,
			},
		})
	}
	c.logDebugIfEnabled("install invitation captured",
		logger.String("session_id", id),
		logger.String("invitation_id", inv.ID()))

	return ctx.JSON(http.StatusOK, invitationResponse{
		InvitationID: inv.ID(),
		Snapshot:     ctrl.Snapshot(),
	})
}

// acceptInstallPrompt invokes the captured invitation and blocks until
// the client reports the user's choice or the request context expires.
func (c *Controller) acceptInstallPrompt(ctx echo.Context) error {
	id, _, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	ctrl := c.prompts.Get(id)
	choice, err := ctrl.Accept(ctx.Request().Context())
	switch {
	case err == nil:
	case errors.Is(err, installprompt.ErrNoVisiblePrompt):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, installprompt.ErrInvitationConsumed):
		return echo.NewHTTPError(http.StatusGone, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusRequestTimeout, "prompt resolution timed out")
	default:
		c.logErrorIfEnabled("accept failed",
			logger.String("session_id", id), logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "accept failed")
	}

	c.pending.Delete(id)
	return ctx.JSON(http.StatusOK, acceptResponse{
		Choice:   string(choice),
		Snapshot: ctrl.Snapshot(),
	})
}

// resolveInstallChoice records the outcome the platform reported for the
// native prompt, unblocking a concurrent accept call.
func (c *Controller) resolveInstallChoice(ctx echo.Context) error {
	id, _, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	var req choiceRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	choice := installprompt.Choice(req.Choice)
	if choice != installprompt.ChoiceAccepted && choice != installprompt.ChoiceDismissed {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("invalid choice %q", req.Choice))
	}

	v, found := c.pending.Get(id)
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "no pending invitation")
	}
	inv, ok := v.(*installprompt.Invitation)
	if !ok || (req.InvitationID != "" && req.InvitationID != inv.ID()) {
		return echo.NewHTTPError(http.StatusNotFound, "invitation not found")
	}

	inv.Resolve(choice)
	return ctx.NoContent(http.StatusNoContent)
}

// dismissInstallPrompt records an explicit dismissal of the custom
// call-to-action. The session never shows the prompt again.
func (c *Controller) dismissInstallPrompt(ctx echo.Context) error {
	id, _, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	ctrl := c.prompts.Get(id)
	if err := ctrl.Dismiss(); err != nil {
		if errors.Is(err, installprompt.ErrNoVisiblePrompt) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "dismiss failed")
	}
	c.pending.Delete(id)
	return ctx.JSON(http.StatusOK, ctrl.Snapshot())
}

// reportInstalled handles the platform's appinstalled confirmation.
func (c *Controller) reportInstalled(ctx echo.Context) error {
	id, _, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	ctrl := c.prompts.Get(id)
	ctrl.HandleInstalled()
	c.pending.Delete(id)
	return ctx.JSON(http.StatusOK, ctrl.Snapshot())
}

// reportDisplayMode records the client's standalone display mode. A
// standalone client suppresses the prompt at the next precondition check.
func (c *Controller) reportDisplayMode(ctx echo.Context) error {
	id, data, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	var req displayModeRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	data.SetStandalone(req.Standalone)
	return ctx.JSON(http.StatusOK, c.prompts.Get(id).Snapshot())
}

// listInstallHistory returns the session's persisted prompt events,
// newest first.
func (c *Controller) listInstallHistory(ctx echo.Context) error {
	if c.installEvents == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "history unavailable")
	}
	id, _, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	limit := defaultHistoryLimit
	if v := ctx.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		if parsed > maxHistoryLimit {
			parsed = maxHistoryLimit
		}
		limit = parsed
	}

	events, err := c.installEvents.ListBySession(ctx.Request().Context(), id, limit)
	if err != nil {
		c.logErrorIfEnabled("failed to list install events",
			logger.String("session_id", id), logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list install events")
	}
	return ctx.JSON(http.StatusOK, events)
}

// sseEvent is the wire form of a prompt event on the SSE stream.
type sseEvent struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// streamInstallEvents streams the session's prompt lifecycle events as
// Server-Sent Events. The stream carries heartbeats so intermediaries do
// not drop the connection, and is capped to a maximum duration after
// which the client reconnects.
func (c *Controller) streamInstallEvents(ctx echo.Context) error {
	id, _, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	if c.bus == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event stream unavailable")
	}

	clientID := uuid.New().String()[:8]
	c.logDebugIfEnabled("SSE client connected",
		logger.String("client_id", clientID),
		logger.String("session_id", id))

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.Header().Set("X-Accel-Buffering", "no")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	events, cancel := c.bus.SubscribeChan()
	defer cancel()

	if c.metrics != nil {
		c.metrics.SSEConnections.Inc()
		defer c.metrics.SSEConnections.Dec()
	}

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()
	maxDuration := time.NewTimer(sseMaxStreamDuration)
	defer maxDuration.Stop()

	reqCtx := ctx.Request().Context()
	for {
		select {
		case <-reqCtx.Done():
			c.logDebugIfEnabled("SSE client disconnected",
				logger.String("client_id", clientID))
			return nil
		case <-maxDuration.C:
			// Force periodic reconnection so stale streams do not
			// accumulate behind proxies.
			fmt.Fprintf(resp, "event: reconnect\ndata: {}\n\n")
			resp.Flush()
			return nil
		case <-heartbeat.C:
			fmt.Fprintf(resp, ": heartbeat\n\n")
			resp.Flush()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !eventForSession(event, id) {
				continue
			}
			if err := writeSSEEvent(resp, event); err != nil {
				c.logErrorIfEnabled("SSE write failed",
					logger.String("client_id", clientID), logger.Error(err))
				return nil
			}
			resp.Flush()
		}
	}
}

// eventForSession reports whether the event belongs to the session.
func eventForSession(event *installprompt.Event, sessionID string) bool {
	if event == nil || event.Properties == nil {
		return false
	}
	sid, ok := event.Properties[installprompt.PropertySession].(string)
	return ok && sid == sessionID
}

func writeSSEEvent(w *echo.Response, event *installprompt.Event) error {
	payload, err := json.Marshal(sseEvent{
		Name:       event.Name,
		Properties: event.Properties,
		Timestamp:  event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, payload)
	return err
}
