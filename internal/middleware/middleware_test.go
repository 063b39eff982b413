package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "quizreport/internal/errors"
	"quizreport/internal/infrastructure"
	"quizreport/internal/shared/testutil"
)

func newErrorHandler(t *testing.T) (*apierrors.ErrorHandler, *testutil.BufferedSlogHandler) {
	logger, handler := testutil.NewTestLogger(t)
	return apierrors.NewErrorHandler(logger, false).WithTraceIDFunc(TraceID), handler
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generates id", incoming: ""},
		{name: "keeps caller id", incoming: "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenReqID, seenTraceID string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenReqID = GetReqID(r.Context())
				seenTraceID = infrastructure.GetTraceID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seenReqID)
			assert.Equal(t, seenReqID, rec.Header().Get(RequestIDHeader))
			assert.Equal(t, seenReqID, seenTraceID)
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, seenReqID)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	errorHandler, logs := newErrorHandler(t)
	h := RequestID(Recoverer(errorHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/consolidate", nil)
	req.Header.Set(RequestIDHeader, "trace-1")
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() { h.ServeHTTP(rec, req) })

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "trace-1", body["trace_id"])
	assert.Equal(t, apierrors.TypeInternal, body["type"])
	testutil.AssertLogContains(t, logs, "panic recovered")
}

func TestStructuredLogger(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	testutil.AssertLogContains(t, logs, "request completed")
	assert.True(t, logs.ContainsAttr("status", int64(http.StatusTeapot)))
	assert.Len(t, logs.RecordsByLevel(slog.LevelWarn), 1)
}

func TestRateLimiter(t *testing.T) {
	errorHandler, logs := newErrorHandler(t)
	logger, _ := testutil.NewTestLogger(t)
	rl := NewRateLimiter(1, 2, errorHandler, logger)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/consolidate", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	limited := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", decodeProblem(t, limited)["error_code"])
	testutil.AssertLogContains(t, logs, "request failed")

	// Buckets are per client
	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	errorHandler, _ := newErrorHandler(t)
	logger, _ := testutil.NewTestLogger(t)
	rl := NewRateLimiter(1, 1, errorHandler, logger)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	now = now.Add(time.Hour)
	assert.True(t, rl.Allow("b"))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "a")
	assert.Contains(t, rl.limiters, "b")
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"http://localhost:8080"})
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed string
	}{
		{name: "allowed origin", method: http.MethodPost, origin: "http://localhost:8080", wantStatus: http.StatusOK, wantAllowed: "http://localhost:8080"},
		{name: "foreign origin", method: http.MethodPost, origin: "http://evil.example", wantStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:8080", preflight: true, wantStatus: http.StatusNoContent, wantAllowed: "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/consolidate", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllowed, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestMaxBodySize(t *testing.T) {
	var readErr error
	h := MaxBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))

	var maxErr *http.MaxBytesError
	require.ErrorAs(t, readErr, &maxErr)
	assert.Equal(t, int64(4), maxErr.Limit)
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded for", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, remote: "10.0.0.9:1", want: "1.2.3.4"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "5.6.7.8"}, remote: "10.0.0.9:1", want: "5.6.7.8"},
		{name: "remote addr", remote: "10.0.0.9:1234", want: "10.0.0.9"},
		{name: "remote without port", remote: "10.0.0.9", want: "10.0.0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetRealIP(req))
		})
	}
}
