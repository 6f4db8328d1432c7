package main

import (
	"context"
	"net/http"
	"time"
)

const healthPingTimeout = 2 * time.Second

// HealthResponse is the body of /healthcheck
type HealthResponse struct {
	Status       string        `json:"status"`
	Version      string        `json:"version"`
	Uptime       string        `json:"uptime"`
	Database     string        `json:"database"`
	HasSnapshot  bool          `json:"hasSnapshot"`
	LastRunID    string        `json:"lastRunId,omitempty"`
	LastRunTime  time.Time     `json:"lastRunTime,omitempty"`
	NextRunTime  time.Time     `json:"nextRunTime,omitempty"`
	RunCount     int           `json:"runCount"`
	FailureCount int           `json:"failureCount"`
	LastError    string        `json:"lastError,omitempty"`
	ErrorCount   int           `json:"errorCount"`
	RecentErrors []ErrorRecord `json:"recentErrors"`
	SourceCount  int           `json:"sourceCount"`
	ArticleCount int           `json:"articleCount"`
	Metrics      Metrics       `json:"metrics"`
}

func (a *App) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, a.health(r.Context()))
}

// health reports degraded when the database is unreachable or the last run
// failed after the last success
func (a *App) health(ctx context.Context) HealthResponse {
	state := a.state.Get()
	_, hasSnapshot := a.runner.Latest()

	resp := HealthResponse{
		Status:       StatusOK,
		Version:      AppVersion,
		Uptime:       FormatDuration(time.Since(a.started)),
		Database:     a.store.Driver(),
		HasSnapshot:  hasSnapshot,
		LastRunID:    state.LastRunID,
		LastRunTime:  state.LastRunTime,
		NextRunTime:  state.NextRunTime,
		RunCount:     state.RunCount,
		FailureCount: state.FailureCount,
		LastError:    state.LastError,
		ErrorCount:   a.errors.Total(),
		RecentErrors: a.errors.Recent(5),
		SourceCount:  a.registry.Len(),
		Metrics:      a.collectMetrics(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := a.store.Ping(pingCtx); err != nil {
		resp.Status = StatusDegraded
		return resp
	}
	if n, err := a.store.CountArticles(pingCtx); err == nil {
		resp.ArticleCount = n
	}
	if state.LastErrorTime.After(state.LastRunTime) {
		resp.Status = StatusDegraded
	}
	return resp
}
