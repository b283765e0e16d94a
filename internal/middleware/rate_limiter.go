package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
	"github.com/fakhrymubarak/places-weather-search/internal/model"
	"github.com/fakhrymubarak/places-weather-search/internal/service"
	"golang.org/x/time/rate"
)

// visitor holds a limiter and when its key was last seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limit is a per-minute rate with a burst.
type Limit struct {
	PerMinute float64
	Burst     int
}

func (l Limit) newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(l.PerMinute/60.0), l.Burst)
}

// RateLimiter enforces a per-IP limit and a per-IP-and-parameter limit.
type RateLimiter struct {
	global   Limit
	param    Limit
	paramKey string
	idle     time.Duration

	mu             sync.Mutex
	globalVisitors map[string]*visitor            // ip
	paramVisitors  map[string]map[string]*visitor // ip -> key=value
}

// NewRateLimiter builds a limiter keyed on the paramKey query parameter.
// MiddlewareFor applies the same limits keyed on another parameter.
func NewRateLimiter(paramKey string, global, param Limit, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		global:         global,
		param:          param,
		paramKey:       paramKey,
		idle:           idle,
		globalVisitors: make(map[string]*visitor),
		paramVisitors:  make(map[string]map[string]*visitor),
	}
}

// NewRateLimiterFromConfig reads limits from the rate_limiter config section.
func NewRateLimiterFromConfig(paramKey string) *RateLimiter {
	gRate, gBurst := config.GetGlobalRateLimiterConfig()
	pRate, pBurst := config.GetParamRateLimiterConfig()
	return NewRateLimiter(paramKey,
		Limit{PerMinute: gRate, Burst: gBurst},
		Limit{PerMinute: pRate, Burst: pBurst},
		config.GetRateLimiterCleanupTimeout(),
	)
}

func (rl *RateLimiter) limiters(ip, param string) (global, perParam *rate.Limiter) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()

	g, ok := rl.globalVisitors[ip]
	if !ok {
		g = &visitor{limiter: rl.global.newLimiter()}
		rl.globalVisitors[ip] = g
	}
	g.lastSeen = now

	if _, ok := rl.paramVisitors[ip]; !ok {
		rl.paramVisitors[ip] = make(map[string]*visitor)
	}
	p, ok := rl.paramVisitors[ip][param]
	if !ok {
		p = &visitor{limiter: rl.param.newLimiter()}
		rl.paramVisitors[ip][param] = p
	}
	p.lastSeen = now
	return g.limiter, p.limiter
}

// Cleanup removes visitors idle for longer than the configured timeout.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.globalVisitors {
		if time.Since(v.lastSeen) > rl.idle {
			delete(rl.globalVisitors, ip)
		}
	}
	for ip, paramMap := range rl.paramVisitors {
		for param, v := range paramMap {
			if time.Since(v.lastSeen) > rl.idle {
				delete(paramMap, param)
			}
		}
		if len(paramMap) == 0 {
			delete(rl.paramVisitors, ip)
		}
	}
}

// StartCleanup sweeps idle visitors every minute until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}

// Reset clears all visitor state. Used primarily for testing.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	rl.globalVisitors = make(map[string]*visitor)
	rl.paramVisitors = make(map[string]map[string]*visitor)
	rl.mu.Unlock()
}

// getIP extracts the client's IP address from the HTTP request, considering X-Forwarded-For headers.
func getIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

// writeTooManyRequests answers 429. The user sees the generic search failure;
// the limit that tripped goes in the message.
func writeTooManyRequests(w http.ResponseWriter, message string) {
	errMsg := service.MsgSearchFailed
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.Response{
		Error:   &errMsg,
		Message: message,
	})
}

// Middleware limits on the limiter's own parameter.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return rl.MiddlewareFor(rl.paramKey)(next)
}

// MiddlewareFor responds 429 with a JSON error once either limit is exhausted.
// Requests with a blank paramKey value pass untouched: they never reach the
// upstream services and must keep their validation answer.
func (rl *RateLimiter) MiddlewareFor(paramKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			param := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(paramKey)))
			if param == "" {
				next.ServeHTTP(w, r)
				return
			}
			globalLimiter, paramLimiter := rl.limiters(getIP(r), paramKey+"="+param)
			if !globalLimiter.Allow() {
				writeTooManyRequests(w,
					fmt.Sprintf("Too Many Requests (global limit): max %g requests per minute per user/IP", rl.global.PerMinute))
				return
			}
			if !paramLimiter.Allow() {
				writeTooManyRequests(w,
					fmt.Sprintf("Too Many Requests (per-param limit): max %g requests per minute per %s per user/IP", rl.param.PerMinute, paramKey))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
