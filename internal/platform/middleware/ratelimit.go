// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/kinora/internal/platform/apperr"
	"github.com/taibuivan/kinora/internal/platform/constants"
	"github.com/taibuivan/kinora/internal/platform/respond"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterTable holds one token bucket per client IP.
type limiterTable struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
}

// reserve takes a token for ip. It returns 0 when the request may proceed,
// otherwise how long the client must wait.
func (t *limiterTable) reserve(ip string, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	client, ok := t.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(t.rps, t.burst)}
		t.clients[ip] = client
	}
	client.lastSeen = now

	reservation := client.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
	}
	return delay
}

func (t *limiterTable) evictIdle(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ip, client := range t.clients {
		if now.Sub(client.lastSeen) > constants.RateLimitClientTTL {
			delete(t.clients, ip)
		}
	}
}

// RateLimit applies a per-client token bucket of rps with burst, keyed on
// the connection's remote host. Mount [RealIP] ahead of it behind a proxy. Rejected
// requests get 429 with a Retry-After in whole seconds. The idle-client
// sweeper stops when ctx is done.
func RateLimit(ctx context.Context, rps float64, burst int) func(http.Handler) http.Handler {
	table := &limiterTable{clients: make(map[string]*clientLimiter), rps: rate.Limit(rps), burst: burst}

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				table.evictIdle(now)
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if delay := table.reserve(remoteHost(request), time.Now()); delay > 0 {
				respond.Error(writer, request, apperr.RateLimited(max(1, int(math.Ceil(delay.Seconds())))))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// RealIP rewrites RemoteAddr to the forwarded client address when the
// connection comes from one of trusted. Other peers keep their RemoteAddr,
// so a direct caller cannot pick its own rate limit bucket with headers.
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if len(trusted) > 0 {
				if ip := ClientIP(request, trusted); ip != remoteHost(request) {
					request.RemoteAddr = ip
				}
			}
			next.ServeHTTP(writer, request)
		})
	}
}

/*
ClientIP resolves the originating client of request.

The forwarding headers are honoured only when the direct peer is inside
trusted. X-Forwarded-For is walked right to left and the first hop that is
not itself a trusted proxy wins; X-Real-IP is the fallback.

Returns:
  - string: The client address, or the peer host when nothing better is known
*/
func ClientIP(request *http.Request, trusted []netip.Prefix) string {
	peer := remoteHost(request)
	if !isTrusted(peer, trusted) {
		return peer
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !isTrusted(addr.String(), trusted) {
				return addr.Unmap().String()
			}
		}
	}

	if addr, err := netip.ParseAddr(strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP))); err == nil {
		return addr.Unmap().String()
	}
	return peer
}

func isTrusted(host string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteHost strips the port from RemoteAddr.
func remoteHost(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
