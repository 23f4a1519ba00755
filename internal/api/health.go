// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/taibuivan/kinora/internal/platform/constants"
	"github.com/taibuivan/kinora/internal/platform/respond"
)

// HealthCheck is one named dependency check for the /ready endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type checkResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type healthReport struct {
	Status  string        `json:"status"`
	App     string        `json:"app"`
	Version string        `json:"version"`
	Checks  []checkResult `json:"checks,omitempty"`
}

// NewHealthHandlers returns the /health (liveness) and /ready (readiness) handlers.
//
// Liveness never touches dependencies. Readiness runs every check in
// parallel, each bounded by [constants.CollaboratorTimeout], and answers 503
// "degraded" if any fails.
func NewHealthHandlers(checks []HealthCheck, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	liveness = func(writer http.ResponseWriter, _ *http.Request) {
		respond.OK(writer, healthReport{Status: "ok", App: constants.AppName, Version: constants.AppVersion})
	}

	readiness = func(writer http.ResponseWriter, request *http.Request) {
		results := runChecks(request.Context(), checks)

		report := healthReport{Status: "ready", App: constants.AppName, Version: constants.AppVersion, Checks: results}
		status := http.StatusOK
		for _, result := range results {
			if !result.OK {
				report.Status = "degraded"
				status = http.StatusServiceUnavailable
				logger.Error("readiness_check_failed",
					slog.String("dependency", result.Name),
					slog.String("error", result.Error),
				)
			}
		}

		respond.JSON(writer, status, respond.SuccessEnvelope{Data: report})
	}
	return liveness, readiness
}

// runChecks runs checks concurrently and returns results in input order.
func runChecks(ctx context.Context, checks []HealthCheck) []checkResult {
	results := make([]checkResult, len(checks))

	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, constants.CollaboratorTimeout)
			defer cancel()

			results[i] = checkResult{Name: check.Name, OK: true}
			if err := check.Check(checkCtx); err != nil {
				results[i] = checkResult{Name: check.Name, Error: err.Error()}
			}
		}()
	}
	wg.Wait()
	return results
}
