// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the cross-cutting HTTP processing chain.

Chain order, as registered by the api package:

  - RequestID, then StructuredLogger: correlation and one access log line per request.
  - RateLimit: per-IP token buckets.
  - PanicRecovery: a panicking handler answers 500 instead of dropping the connection.
  - Authenticate, RequireRole: operator tokens and the editor gate on migrations.
  - CORS: the editor console origin.
*/
package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strings"

	"github.com/taibuivan/verbum/internal/platform/apperr"
	"github.com/taibuivan/verbum/internal/platform/constants"
	"github.com/taibuivan/verbum/internal/platform/ctxutil"
	"github.com/taibuivan/verbum/internal/platform/respond"
)

// # Reliability & Safety

// PanicRecovery recovers from panics, logs the stack and answers 500.
//
// http.ErrAbortHandler is re-raised so net/http can abort the response as intended.
func PanicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				stack := make([]byte, 4096)
				stack = stack[:runtime.Stack(stack, false)]

				logger.ErrorContext(request.Context(), "panic_recovered",
					slog.String("request_id", ctxutil.GetRequestID(request.Context())),
					slog.Any("error", recovered),
					slog.String("stack", string(stack)),
				)

				respond.Error(writer, request, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Cross-Origin Resource Sharing

// AppConfig defines the behavior needed by the CORS middleware.
type AppConfig interface {
	IsDevelopment() bool
	AllowedOrigins() []string
}

// CORS admits the editor console. Development accepts any origin; otherwise
// *.verbum.app and the configured extras.
func CORS(cfg AppConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			if originAllowed(cfg, origin) {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", "Location, X-Request-ID")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
				header.Add("Vary", constants.HeaderOrigin)
			}

			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

func originAllowed(cfg AppConfig, origin string) bool {
	if cfg.IsDevelopment() || strings.HasSuffix(origin, ".verbum.app") {
		return true
	}
	for _, allowed := range cfg.AllowedOrigins() {
		if origin == allowed {
			return true
		}
	}
	return false
}

// # Middleware Helpers

// RealIP extracts the client IP, respecting common proxy headers.
func RealIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
