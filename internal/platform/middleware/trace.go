// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/verbum/internal/platform/constants"
	"github.com/taibuivan/verbum/internal/platform/ctxutil"
	"github.com/taibuivan/verbum/pkg/uuid"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
//
// A client supplied X-Request-ID is kept; otherwise a UUIDv7 is minted so IDs
// sort by arrival time in the logs.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			requestID := request.Header.Get(constants.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New()
			}

			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Activity Logging

// traceWriter captures what the access log needs once the handler returns.
// [Authenticate] runs further down the chain and reports the operator here,
// since its context never travels back up.
type traceWriter struct {
	http.ResponseWriter
	status     int
	operatorID string
}

func (writer *traceWriter) WriteHeader(code int) {
	writer.status = code
	writer.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (writer *traceWriter) Unwrap() http.ResponseWriter {
	return writer.ResponseWriter
}

// StructuredLogger logs one line per request and injects a request-scoped
// logger into the context.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			startTime := time.Now()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)

			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			trace := &traceWriter{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(trace, request.WithContext(ctx))

			level := slog.LevelInfo
			switch {
			case trace.status >= 500:
				level = slog.LevelError
			case trace.status >= 400:
				level = slog.LevelWarn
			}

			attrs := []any{
				slog.Int("status", trace.status),
				slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			}
			if trace.operatorID != "" {
				attrs = append(attrs, slog.String("operator_id", trace.operatorID))
			}

			requestLogger.Log(ctx, level, "http_request_finished", attrs...)
		})
	}
}

// noteOperator records the authenticated operator on the enclosing trace, if any.
func noteOperator(writer http.ResponseWriter, operatorID string) {
	if trace, ok := writer.(*traceWriter); ok {
		trace.operatorID = operatorID
	}
}
