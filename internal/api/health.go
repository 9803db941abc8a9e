// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/verbum/internal/platform/constants"
	"github.com/taibuivan/verbum/internal/platform/respond"
)

// checkTimeout bounds each readiness check.
const checkTimeout = 2 * time.Second

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
//
// The translation provider is not checked. Its outages surface as item errors
// in migration reports.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func(ctx context.Context) error

	// CheckCache pings the Redis client.
	CheckCache func(ctx context.Context) error
}

type dependencyCheck struct {
	name  string
	check func(ctx context.Context) error
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type healthHandler struct {
	checks []dependencyCheck
	logger *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{logger: logger}
	if deps.CheckDatabase != nil {
		handler.checks = append(handler.checks, dependencyCheck{name: "postgres", check: deps.CheckDatabase})
	}
	if deps.CheckCache != nil {
		handler.checks = append(handler.checks, dependencyCheck{name: "redis", check: deps.CheckCache})
	}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health.
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready. Any failing check turns the answer into 503.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handler.checks))
	isReady := true

	for _, dep := range handler.checks {
		ctx, cancel := context.WithTimeout(request.Context(), checkTimeout)
		err := dep.check(ctx)
		cancel()

		result := checkResult{Name: dep.name, IsOK: err == nil}
		if err != nil {
			result.Error = err.Error()
			isReady = false
			handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", dep.name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	status, code := "ready", http.StatusOK
	if !isReady {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	respond.JSON(writer, code, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: results,
	}})
}
