// Package browser drives a Chrome instance through chromedp and exposes it
// as the scrape.Session every stage shares.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

type Options struct {
	BaseURL     string
	Headless    bool
	ExecPath    string
	UserDataDir string
	CookiesFile string

	User     string
	Password string
	// LoginWait is slept after submitting the login form.
	LoginWait time.Duration

	// NavTimeout bounds a single navigation or script call.
	NavTimeout time.Duration

	Logger *slog.Logger
}

// Session is one browser tab. It is not safe for concurrent use; the
// pipeline drives it from a single goroutine.
type Session struct {
	opts Options
	log  *slog.Logger

	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// Open starts the browser and authenticates, from saved cookies when the
// cookies file exists, otherwise through the login form.
func Open(ctx context.Context, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "browser")
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 60 * time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("start-maximized", true),
		chromedp.WindowSize(1440, 900),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
	)

	s := &Session{
		opts:        opts,
		log:         log,
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}

	// starts the browser process
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	if err := s.authenticate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) authenticate(ctx context.Context) error {
	if s.opts.CookiesFile != "" {
		cookies, err := ReadCookies(s.opts.CookiesFile)
		switch {
		case err == nil:
			return s.restoreCookies(ctx, cookies)
		case errors.Is(err, os.ErrNotExist):
		default:
			s.log.Warn("read cookies, logging in instead", "file", s.opts.CookiesFile, "err", err)
		}
	}
	return s.login(ctx)
}

func (s *Session) restoreCookies(ctx context.Context, cookies []Cookie) error {
	if err := s.Navigate(ctx, s.opts.BaseURL); err != nil {
		return err
	}
	host := hostOf(s.opts.BaseURL)
	params := cookieParams(ForHost(cookies, host))
	if err := s.run(ctx, setCookies(params)); err != nil {
		return fmt.Errorf("restore cookies: %w", err)
	}
	if err := s.Navigate(ctx, s.opts.BaseURL); err != nil {
		return err
	}
	s.log.Info("session restored from cookies", "count", len(params))
	return s.saveCookies(ctx)
}

func (s *Session) login(ctx context.Context) error {
	if s.opts.User == "" || s.opts.Password == "" {
		return errors.New("no saved cookies and no credentials to log in with")
	}
	if err := s.Navigate(ctx, s.opts.BaseURL+"/login"); err != nil {
		return err
	}
	err := s.run(ctx,
		chromedp.WaitVisible("#username", chromedp.ByQuery),
		chromedp.SendKeys("#username", s.opts.User, chromedp.ByQuery),
		chromedp.SendKeys("#password", s.opts.Password+kb.Enter, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("login form: %w", err)
	}
	if err := sleep(ctx, s.opts.LoginWait); err != nil {
		return err
	}
	s.log.Info("logged in", "user", s.opts.User)
	return s.saveCookies(ctx)
}

func (s *Session) saveCookies(ctx context.Context) error {
	if s.opts.CookiesFile == "" {
		return nil
	}
	var cookies []Cookie
	if err := s.run(ctx, getCookies(&cookies)); err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}
	return WriteCookies(s.opts.CookiesFile, cookies)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Find returns the rendered text of every element matching selector.
// Missing elements are an empty result, not an error.
func (s *Session) Find(ctx context.Context, selector string) ([]string, error) {
	sel, err := json.Marshal(selector)
	if err != nil {
		return nil, err
	}
	var out []string
	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(e => e.innerText)`, sel)
	if err := s.run(ctx, chromedp.Evaluate(script, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) Execute(ctx context.Context, script string, out any) error {
	return s.run(ctx, chromedp.Evaluate(script, out))
}

// run executes actions on the tab, bounded by NavTimeout and by ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Close shuts the tab and the browser process.
func (s *Session) Close() error {
	if s.cancelTab != nil {
		s.cancelTab()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
