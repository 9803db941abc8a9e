// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/verbum/internal/platform/constants"
	"github.com/taibuivan/verbum/internal/platform/ctxutil"
	"github.com/taibuivan/verbum/internal/platform/middleware"
	"github.com/taibuivan/verbum/internal/platform/sec"
)

type stubVerifier struct {
	claims map[string]*sec.AuthClaims
}

func (verifier stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, ok := verifier.claims[token]; ok {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

func okHandler(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
}

func TestAuthenticate_RequireRole(t *testing.T) {
	verifier := stubVerifier{claims: map[string]*sec.AuthClaims{
		"admin-token":  {UserID: "1", Role: string(sec.RoleAdmin)},
		"editor-token": {UserID: "2", Role: string(sec.RoleEditor)},
		"viewer-token": {UserID: "3", Role: string(sec.RoleViewer)},
	}}

	chain := middleware.Authenticate(verifier)(
		middleware.RequireRole(sec.RoleEditor)(http.HandlerFunc(okHandler)),
	)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"bad_scheme", "Basic abc", http.StatusUnauthorized},
		{"empty_token", "Bearer ", http.StatusUnauthorized},
		{"unknown_token", "Bearer nope", http.StatusUnauthorized},
		{"viewer", "Bearer viewer-token", http.StatusForbidden},
		{"editor", "Bearer editor-token", http.StatusOK},
		{"admin", "bearer admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			chain.ServeHTTP(recorder, request)
			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}

func TestAuthenticate_InjectsClaims(t *testing.T) {
	verifier := stubVerifier{claims: map[string]*sec.AuthClaims{
		"t": {UserID: "op-7", Username: "maria", Role: string(sec.RoleEditor)},
	}}

	var seen *sec.AuthClaims
	chain := middleware.Authenticate(verifier)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetAuthUser(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer t")
	chain.ServeHTTP(httptest.NewRecorder(), request)

	require.NotNil(t, seen)
	assert.Equal(t, "op-7", seen.UserID)
}

func TestRequestID(t *testing.T) {
	var seen string
	chain := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		chain.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("propagated", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRequestID, "req-42")
		recorder := httptest.NewRecorder()
		chain.ServeHTTP(recorder, request)

		assert.Equal(t, "req-42", seen)
		assert.Equal(t, "req-42", recorder.Header().Get(constants.HeaderXRequestID))
	})
}

func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	chain := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	chain.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.9:5555"
	assert.Equal(t, "10.0.0.9", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chain := middleware.RateLimitWith(ctx, 0.5, 2)(http.HandlerFunc(okHandler))

	send := func(ip string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRealIP, ip)
		recorder := httptest.NewRecorder()
		chain.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1").Code)
	assert.Equal(t, http.StatusOK, send("198.51.100.1").Code)

	throttled := send("198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, throttled.Code)
	assert.Equal(t, "2", throttled.Header().Get("Retry-After"))
	assert.Contains(t, throttled.Body.String(), "TOO_MANY_REQUESTS")

	assert.Equal(t, http.StatusOK, send("198.51.100.2").Code, "buckets are per client")
}

func TestStructuredLogger_RecordsOperator(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buffer, nil))

	verifier := stubVerifier{claims: map[string]*sec.AuthClaims{
		"t": {UserID: "op-9", Role: string(sec.RoleEditor)},
	}}
	chain := middleware.RequestID()(
		middleware.StructuredLogger(logger)(
			middleware.Authenticate(verifier)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				writer.WriteHeader(http.StatusAccepted)
			})),
		),
	)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/migrations", nil)
	request.Header.Set("Authorization", "Bearer t")
	chain.ServeHTTP(httptest.NewRecorder(), request)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))
	assert.Equal(t, "http_request_finished", line["msg"])
	assert.Equal(t, "op-9", line["operator_id"])
	assert.Equal(t, float64(http.StatusAccepted), line["status"])
	assert.NotEmpty(t, line["request_id"])
}

type corsConfig struct {
	development bool
	extra       []string
}

func (c corsConfig) IsDevelopment() bool { return c.development }
func (c corsConfig) AllowedOrigins() []string { return c.extra }

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		cfg     corsConfig
		origin  string
		allowed bool
	}{
		{"development_any", corsConfig{development: true}, "http://localhost:5173", true},
		{"console_subdomain", corsConfig{}, "https://console.verbum.app", true},
		{"extra_origin", corsConfig{extra: []string{"https://staging.example.org"}}, "https://staging.example.org", true},
		{"foreign", corsConfig{}, "https://evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := middleware.CORS(tt.cfg)(http.HandlerFunc(okHandler))

			request := httptest.NewRequest(http.MethodOptions, "/api/v1/migrations", nil)
			request.Header.Set(constants.HeaderOrigin, tt.origin)
			recorder := httptest.NewRecorder()
			chain.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
