// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxClients is the number of tracked clients beyond which idle clients get
// forgotten.
const maxClients = 10_000

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter applies per-client request limits.
type Limiter struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	rps        rate.Limit
	burst      int
	trustProxy bool // identify clients by X-Forwarded-For instead of the peer.
}

// LimiterOption sets optional properties at the time of creating a Limiter.
type LimiterOption func(*Limiter)

// WithTrustedProxy identifies clients by the first X-Forwarded-For entry. Only
// use it when a proxy in front sets this header, as clients otherwise pick
// any identity they like.
func WithTrustedProxy() LimiterOption {
	return func(l *Limiter) {
		l.trustProxy = true
	}
}

// NewLimiter returns a new per-client limiter. Clients are identified by
// their peer address unless WithTrustedProxy is given.
func NewLimiter(rps float64, burst int, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		clients: map[string]*clientLimiter{},
		rps:     rate.Limit(rps),
		burst:   burst,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Middleware rejects requests of clients exceeding their limit with 429.
func (l *Limiter) Middleware(metrics *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r, l.trustProxy), time.Now()) {
			if metrics != nil {
				metrics.RateLimitDropped.Inc()
			}
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.clients[ip]
	if !ok {
		item = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = item
	}
	item.lastSeen = now
	if len(l.clients) > maxClients {
		l.cleanupLocked(now.Add(-10 * time.Minute))
	}
	return item.limiter.AllowN(now, 1)
}

func (l *Limiter) cleanupLocked(threshold time.Time) {
	for ip, entry := range l.clients {
		if entry.lastSeen.Before(threshold) {
			delete(l.clients, ip)
		}
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwardedFor != "" {
			first, _, _ := strings.Cut(forwardedFor, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
