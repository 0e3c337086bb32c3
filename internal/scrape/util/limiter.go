package util

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter rate-limits per hostname (www.linkedin.com, ...). Detail pages
// and search pages share one host, so every navigation draws from one bucket.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

// NewHostLimiter returns a limiter; reqPerSec <= 0 disables limiting.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if burst <= 0 {
		burst = 1
	}
	r := rate.Limit(reqPerSec)
	if reqPerSec <= 0 {
		r = rate.Inf
	}
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: r,
		b: burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}
