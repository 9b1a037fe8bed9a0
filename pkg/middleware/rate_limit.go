package middleware

import (
	"net/http"
	"sync"
	"time"

	apperrors "clinicsched/pkg/errors"
	httputil "clinicsched/pkg/http"
	"clinicsched/pkg/logger"
)

const TenantHeader = "X-Tenant-ID"

type TenantExtractor func(r *http.Request) string

// TenantRateLimiter applies a sliding window per tenant.
type TenantRateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor TenantExtractor
	log       *logger.Logger
	stopCh    chan struct{}
	now       func() time.Time
}

func NewTenantRateLimiter(limit int, window time.Duration, extractor TenantExtractor, log *logger.Logger) *TenantRateLimiter {
	if extractor == nil {
		extractor = DefaultTenantExtractor
	}
	limiter := &TenantRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}

	go limiter.cleanup()

	return limiter
}

func (rl *TenantRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for tenant, timestamps := range rl.requests {
				if len(timestamps) == 0 || rl.now().Sub(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, tenant)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *TenantRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *TenantRateLimiter) Allow(tenant string) bool {
	if tenant == "" {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	timestamps := rl.requests[tenant]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[tenant] = valid
		return false
	}

	rl.requests[tenant] = append(valid, now)
	return true
}

func TenantRateLimit(limiter *TenantRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant := limiter.extractor(r)
			if tenant != "" && !limiter.Allow(tenant) {
				rejectRateLimited(w, limiter.log, r, tenant)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, tenant string) {
	log.Warn("Rate limit exceeded",
		"request_id", RequestID(r.Context()),
		"tenant_id", tenant,
		"path", r.URL.Path,
	)

	_ = httputil.WriteError(w, apperrors.TooManyRequests("Rate limit exceeded"))
}

// DefaultTenantExtractor reads the tenant header, falling back to the
// tenant_id query parameter.
func DefaultTenantExtractor(r *http.Request) string {
	if tenant := r.Header.Get(TenantHeader); tenant != "" {
		return tenant
	}
	return r.URL.Query().Get("tenant_id")
}
