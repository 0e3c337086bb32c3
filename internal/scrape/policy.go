package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"jobhunt-scout/internal/scrape/util"
)

// FetchPolicy loads one page through a Session with jitter, rate-limit
// detection and a bounded readiness wait. It retries at most once per
// failure kind and never makes a single page fatal to the run.
type FetchPolicy struct {
	Session Session
	Limiter *util.HostLimiter

	ReadySelector string
	ReadyTimeout  time.Duration
	PollInterval  time.Duration

	JitterMin time.Duration
	JitterMax time.Duration

	RateLimitMarker   string
	RateLimitCooldown time.Duration
	NotReadyCooldown  time.Duration

	// Sleep defaults to a context-aware timer; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
	// Jitter picks a duration in [min, max); defaults to math/rand.
	Jitter func(min, max time.Duration) time.Duration

	Logger *slog.Logger
}

// Policy defaults, matching how the listing site behaves.
const (
	DefaultReadySelector     = ".ui-label--accent-3"
	DefaultReadyTimeout      = 10 * time.Second
	DefaultPollInterval      = 500 * time.Millisecond
	DefaultJitterMin         = 100 * time.Millisecond
	DefaultJitterMax         = 2 * time.Second
	DefaultRateLimitMarker   = "Too Many Requests"
	DefaultRateLimitCooldown = 30 * time.Second
	DefaultNotReadyCooldown  = 10 * time.Second
)

func NewFetchPolicy(s Session, log *slog.Logger) *FetchPolicy {
	return &FetchPolicy{
		Session:           s,
		ReadySelector:     DefaultReadySelector,
		ReadyTimeout:      DefaultReadyTimeout,
		PollInterval:      DefaultPollInterval,
		JitterMin:         DefaultJitterMin,
		JitterMax:         DefaultJitterMax,
		RateLimitMarker:   DefaultRateLimitMarker,
		RateLimitCooldown: DefaultRateLimitCooldown,
		NotReadyCooldown:  DefaultNotReadyCooldown,
		Logger:            log,
	}
}

// Fetch navigates to url and returns the page markup once the page is
// ready, or once the readiness retry has been spent. Only ErrNavigate and
// context errors are returned.
func (p *FetchPolicy) Fetch(ctx context.Context, url string) (string, error) {
	log := p.logger().With("url", url)

	if err := p.navigate(ctx, url); err != nil {
		return "", err
	}

	if err := p.sleep(ctx, p.jitter()); err != nil {
		return "", err
	}

	if p.RateLimitMarker != "" {
		src, err := p.Session.PageSource(ctx)
		if err == nil && strings.Contains(src, p.RateLimitMarker) {
			log.Warn("rate limited", "cooldown", p.RateLimitCooldown)
			if err := p.sleep(ctx, p.RateLimitCooldown); err != nil {
				return "", err
			}
			if err := p.navigate(ctx, url); err != nil {
				return "", err
			}
		}
	}

	ready, err := p.waitReady(ctx)
	if err != nil {
		return "", err
	}
	if !ready {
		log.Warn("page not ready, reloading once", "cooldown", p.NotReadyCooldown)
		if err := p.sleep(ctx, p.NotReadyCooldown); err != nil {
			return "", err
		}
		if err := p.navigate(ctx, url); err != nil {
			return "", err
		}
		// proceed with whatever rendered; extraction tolerates missing fields
	}

	src, err := p.Session.PageSource(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: page source: %v", ErrNavigate, err)
	}
	return src, nil
}

// navigate tries once, cools down, tries again.
func (p *FetchPolicy) navigate(ctx context.Context, url string) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			p.logger().Warn("navigate failed, retrying", "url", url, "err", err)
			if serr := p.sleep(ctx, p.NotReadyCooldown); serr != nil {
				return serr
			}
		}
		if werr := p.Limiter.WaitURL(ctx, url); werr != nil {
			return werr
		}
		if err = p.Session.Navigate(ctx, url); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrNavigate, url, err)
}

// waitReady polls the ready selector until it matches or the timeout's
// worth of polls is spent. Lookup errors count as not ready.
func (p *FetchPolicy) waitReady(ctx context.Context) (bool, error) {
	if p.ReadySelector == "" {
		return true, nil
	}
	interval := p.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	polls := int(p.ReadyTimeout / interval)
	if polls < 1 {
		polls = 1
	}

	for i := 0; i < polls; i++ {
		found, err := p.Session.Find(ctx, p.ReadySelector)
		if err == nil && len(found) > 0 {
			return true, nil
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if i < polls-1 {
			if err := p.sleep(ctx, interval); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

func (p *FetchPolicy) jitter() time.Duration {
	if p.Jitter != nil {
		return p.Jitter(p.JitterMin, p.JitterMax)
	}
	if p.JitterMax <= p.JitterMin {
		return p.JitterMin
	}
	return p.JitterMin + rand.N(p.JitterMax-p.JitterMin)
}

func (p *FetchPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

func (p *FetchPolicy) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
