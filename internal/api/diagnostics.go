package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/capability"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/entities"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/repository"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// runResponse is a completed suite run with its persisted ID, when
// persistence is wired.
type runResponse struct {
	ID     uint               `json:"id,omitempty"`
	Report *capability.Report `json:"report"`
}

// historyEntry is one persisted probe run with results decoded.
type historyEntry struct {
	ID        uint                `json:"id"`
	StartedAt time.Time           `json:"startedAt"`
	ElapsedMS int64               `json:"elapsedMs"`
	Passed    int                 `json:"passed"`
	Total     int                 `json:"total"`
	Verdict   string              `json:"verdict"`
	Results   []capability.Result `json:"results"`
}

// historyResponse is a page of probe run history.
type historyResponse struct {
	Runs   []historyEntry `json:"runs"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func (c *Controller) registerDiagnosticsRoutes() {
	g := c.Group.Group("/diagnostics")
	g.POST("/run", c.runDiagnostics)
	g.GET("/schema", c.getDiagnosticsSchema)
	g.GET("/history", c.listDiagnosticsHistory)
	g.GET("/history/:id", c.getDiagnosticsRun)
}

// runDiagnostics executes the capability probe suite and persists the
// report. A persistence failure does not fail the request; the client
// still gets the report.
func (c *Controller) runDiagnostics(ctx echo.Context) error {
	if c.suite == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "probe suite unavailable")
	}

	report := c.suite.Run(ctx.Request().Context())

	if c.metrics != nil {
		outcomes := make(map[string]bool, len(report.Results))
		for _, r := range report.Results {
			outcomes[r.Name] = r.Passed
		}
		c.metrics.RecordReport(report.Verdict, outcomes)
	}

	resp := runResponse{Report: report}
	if c.recorder != nil {
		run, err := c.recorder.Persist(ctx.Request().Context(), report)
		if err != nil {
			c.logErrorIfEnabled("failed to persist probe run", logger.Error(err))
		} else {
			resp.ID = run.ID
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

// getDiagnosticsSchema returns the probe catalog for the diagnostics UI.
func (c *Controller) getDiagnosticsSchema(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, capability.GetSchema())
}

// listDiagnosticsHistory returns a page of persisted probe runs,
// newest first, optionally filtered by verdict.
func (c *Controller) listDiagnosticsHistory(ctx echo.Context) error {
	if c.probeRuns == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "history unavailable")
	}

	filter := repository.ProbeRunFilter{
		Verdict: ctx.QueryParam("verdict"),
		Limit:   defaultHistoryLimit,
	}
	if v := ctx.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}
		filter.Limit = limit
	}
	if v := ctx.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid offset")
		}
		filter.Offset = offset
	}

	runs, total, err := c.probeRuns.List(ctx.Request().Context(), filter)
	if err != nil {
		c.logErrorIfEnabled("failed to list probe runs", logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list probe runs")
	}

	entries := make([]historyEntry, 0, len(runs))
	for i := range runs {
		entries = append(entries, toHistoryEntry(&runs[i]))
	}
	return ctx.JSON(http.StatusOK, historyResponse{
		Runs:   entries,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// getDiagnosticsRun returns a single persisted probe run.
func (c *Controller) getDiagnosticsRun(ctx echo.Context) error {
	if c.probeRuns == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "history unavailable")
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid probe run ID")
	}

	run, err := c.probeRuns.Get(ctx.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrProbeRunNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "probe run not found")
		}
		c.logErrorIfEnabled("failed to load probe run", logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load probe run")
	}
	return ctx.JSON(http.StatusOK, toHistoryEntry(run))
}

func toHistoryEntry(run *entities.ProbeRun) historyEntry {
	var results []capability.Result
	if err := json.Unmarshal([]byte(run.Results), &results); err != nil {
		results = nil
	}
	return historyEntry{
		ID:        run.ID,
		StartedAt: run.StartedAt,
		ElapsedMS: run.ElapsedMS,
		Passed:    run.Passed,
		Total:     run.Total,
		Verdict:   run.Verdict,
		Results:   results,
	}
}
