// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kinora/internal/platform/ctxutil"
	"github.com/taibuivan/kinora/internal/platform/middleware"
	"github.com/taibuivan/kinora/internal/platform/sec"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

/*
TestRequestID checks generation and propagation of the correlation header.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.RequestID(request.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
	})

	t.Run("propagated", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Request-ID", "client-id")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "client-id", seen)
		assert.Equal(t, "client-id", recorder.Header().Get("X-Request-ID"))
	})

	t.Run("unsafe_replaced", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Request-ID", "two words")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.NotEqual(t, "two words", seen)
		assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
	})
}

type devConfig bool

func (d devConfig) IsDevelopment() bool { return bool(d) }

/*
TestCORS covers the origin allow-list in each environment.
*/
func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		dev     bool
		origin  string
		allowed bool
	}{
		{"dev_any_origin", true, "http://localhost:5173", true},
		{"prod_matching_suffix", false, "https://admin.kinora.app", true},
		{"prod_foreign_origin", false, "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(devConfig(tt.dev), ".kinora.app")(okHandler)
			request := httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, "Origin", recorder.Header().Get("Vary"))
			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}

	t.Run("preflight", func(t *testing.T) {
		handler := middleware.CORS(devConfig(false), ".kinora.app")(okHandler)
		request := httptest.NewRequest(http.MethodOptions, "/api/v1/movies/1", nil)
		request.Header.Set("Origin", "https://admin.kinora.app")
		request.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
	})
}

type stubVerifier struct {
	claims *sec.AuthClaims
}

func (s stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return s.claims, nil
}

/*
TestAuthorization exercises Authenticate together with RequireRole.
*/
func TestAuthorization(t *testing.T) {
	tests := []struct {
		name   string
		header string
		role   sec.UserRole
		status int
	}{
		{"anonymous", "", sec.RoleAdmin, http.StatusUnauthorized},
		{"malformed_header", "Token good", sec.RoleAdmin, http.StatusUnauthorized},
		{"invalid_token", "Bearer bad", sec.RoleAdmin, http.StatusUnauthorized},
		{"viewer_forbidden", "Bearer good", sec.RoleViewer, http.StatusForbidden},
		{"empty_token", "Bearer ", sec.RoleAdmin, http.StatusUnauthorized},
		{"unknown_role", "Bearer good", "superuser", http.StatusForbidden},
		{"admin_allowed", "Bearer good", sec.RoleAdmin, http.StatusOK},
		{"lowercase_scheme", "bearer good", sec.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := stubVerifier{claims: &sec.AuthClaims{UserID: "admin", Role: string(tt.role)}}
			handler := middleware.Authenticate(verifier)(middleware.RequireRole(sec.RoleAdmin)(okHandler))

			request := httptest.NewRequest(http.MethodDelete, "/api/v1/movies/1", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}

/*
TestRateLimit rejects requests beyond the burst for a single client.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 1, 2)(okHandler)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "203.0.113.7:4242"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, request)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "1", last.Header().Get("Retry-After"))
}

/*
TestRateLimit_IgnoresSpoofedHeaders verifies a direct caller rotating
forwarding headers still drains a single bucket.
*/
func TestRateLimit_IgnoresSpoofedHeaders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	handler := middleware.RealIP(trusted)(middleware.RateLimit(ctx, 1, 2)(okHandler))

	codes := make([]int, 0, 3)
	for i := range 3 {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "203.0.113.7:4242"
		request.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		request.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

/*
TestRateLimit_TrustedProxyForwardsClients verifies clients behind a trusted
proxy get their own buckets.
*/
func TestRateLimit_TrustedProxyForwardsClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	handler := middleware.RealIP(trusted)(middleware.RateLimit(ctx, 1, 1)(okHandler))

	for _, client := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.2:4242"
		request.Header.Set("X-Forwarded-For", client)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code, client)
	}
}

/*
TestClientIP covers header handling for trusted and untrusted peers.
*/
func TestClientIP(t *testing.T) {
	trusted := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.0.1/32"),
	}

	tests := []struct {
		name      string
		remote    string
		forwarded string
		realIP    string
		want      string
	}{
		{"untrusted_peer_ignores_headers", "203.0.113.7:4242", "198.51.100.1", "198.51.100.2", "203.0.113.7"},
		{"trusted_peer_uses_forwarded", "10.0.0.2:4242", "198.51.100.1", "", "198.51.100.1"},
		{"skips_trusted_hops", "10.0.0.2:4242", "198.51.100.9, 198.51.100.1, 192.168.0.1", "", "198.51.100.1"},
		{"spoofed_leftmost_hop", "10.0.0.2:4242", "1.2.3.4, 198.51.100.1", "", "198.51.100.1"},
		{"falls_back_to_real_ip", "10.0.0.2:4242", "", "198.51.100.5", "198.51.100.5"},
		{"garbage_headers", "10.0.0.2:4242", "not-an-ip", "also-not", "10.0.0.2"},
		{"no_port", "203.0.113.7", "", "", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				request.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				request.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, middleware.ClientIP(request, trusted))
		})
	}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.2:4242"
	request.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "10.0.0.2", middleware.ClientIP(request, nil))
}

/*
TestPanicRecovery turns a handler panic into a 500 envelope.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

type observation struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{method, route, status})
}

/*
TestMetrics labels observations with the chi route pattern.
*/
func TestMetrics(t *testing.T) {
	observer := &recordingObserver{}

	router := chi.NewRouter()
	router.Use(middleware.Metrics(observer))
	router.Get("/api/v1/movies/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/movies/42", nil))

	require.Len(t, observer.seen, 1)
	assert.Equal(t, observation{http.MethodGet, "/api/v1/movies/{id}", http.StatusNotFound}, observer.seen[0])
}
