package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gofrs/flock"

	"jobhunt-scout/internal/browser"
	"jobhunt-scout/internal/config"
	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/langdetect"
	"jobhunt-scout/internal/logging"
	"jobhunt-scout/internal/scrape"
	"jobhunt-scout/internal/scrape/util"
	"jobhunt-scout/internal/secrets"
	"jobhunt-scout/internal/store"
)

const (
	defaultConfigPath = "scout.yml"
	lockFileName      = "scout.lock"
)

var classifier scrape.Classifier = langdetect.Detector{}

// searchFlags hold the raw command-line search overrides; empty means unset.
type searchFlags struct {
	keywords    string
	location    string
	onlyRemote  string
	moreRecents string
}

// commandContext owns everything a command opens, so main can release it
// whatever the outcome.
type commandContext struct {
	configPath string
	flags      searchFlags

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg      *config.Config
	log      *slog.Logger
	logClose func() error

	lock *flock.Flock
	db   *store.DB
	sess scrape.Session

	// openSession is replaced in tests.
	openSession func(ctx context.Context, cfg config.Config, log *slog.Logger) (scrape.Session, error)
}

func newCommandContext(stdin io.Reader, stdout, stderr io.Writer) *commandContext {
	c := &commandContext{
		configPath: defaultConfigPath,
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
	}
	c.openSession = c.openBrowser
	return c
}

// ensureConfig loads the config once, writing the defaults on first use,
// applies the flag overrides and sets up logging.
func (c *commandContext) ensureConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}

	created, err := config.EnsureUserConfig(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config load: %w", err)
	}
	if err := c.applyFlags(&cfg); err != nil {
		return config.Config{}, err
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	if err := vr.Err(); err != nil {
		return config.Config{}, usageError{fmt.Errorf("%s: %w", c.configPath, err)}
	}

	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		return config.Config{}, fmt.Errorf("data dir: %w", err)
	}
	level, _ := logging.ParseLevel(cfg.App.LogLevel)
	c.log, c.logClose = logging.Setup(c.stderr, cfg.LogPath(), level)
	slog.SetDefault(c.log)

	if created {
		c.log.Info("wrote default config", "path", c.configPath)
	}
	for _, w := range vr.Warnings {
		c.log.Warn("config", "warning", w)
	}

	c.cfg = &cfg
	return cfg, nil
}

func (c *commandContext) applyFlags(cfg *config.Config) error {
	if v := strings.TrimSpace(c.flags.keywords); v != "" {
		cfg.Search.Keywords = v
	}
	if v := strings.TrimSpace(c.flags.location); v != "" {
		cfg.Search.Location = v
	}
	if c.flags.onlyRemote != "" {
		b, err := parseBoolish("only_remote", c.flags.onlyRemote)
		if err != nil {
			return err
		}
		cfg.Search.OnlyRemote = b
	}
	if c.flags.moreRecents != "" {
		b, err := parseBoolish("more_recents", c.flags.moreRecents)
		if err != nil {
			return err
		}
		cfg.Search.MoreRecents = b
	}
	return nil
}

// searchParams returns the immutable inputs of one run. Discovery cannot
// run without keywords.
func (c *commandContext) searchParams(needKeywords bool) (domain.SearchParams, error) {
	cfg := *c.cfg
	if needKeywords && cfg.Search.Keywords == "" {
		return domain.SearchParams{}, usagef("--keywords is required (or set search.keywords in %s)", c.configPath)
	}
	return domain.SearchParams{
		Keywords:   cfg.Search.Keywords,
		Location:   cfg.Search.Location,
		OnlyRemote: cfg.Search.OnlyRemote,
		MoreRecent: cfg.Search.MoreRecents,
		MaxPages:   cfg.Search.MaxPages,
	}, nil
}

func (c *commandContext) logger() *slog.Logger {
	if c.log != nil {
		return c.log
	}
	return slog.Default()
}

// lockDataDir makes sure only one session drives the browser and writes
// the store at a time.
func (c *commandContext) lockDataDir() error {
	if c.lock != nil {
		return nil
	}
	path := c.cfg.Path(lockFileName)
	lk := flock.New(path)
	ok, err := lk.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("another scout session holds %s", path)
	}
	c.lock = lk
	return nil
}

func (c *commandContext) openStore() (*store.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	db, err := store.Open(c.cfg.DBPath())
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

// session opens the shared browser session on first use.
func (c *commandContext) session(ctx context.Context) (scrape.Session, error) {
	if c.sess != nil {
		return c.sess, nil
	}
	s, err := c.openSession(ctx, *c.cfg, c.logger())
	if err != nil {
		return nil, err
	}
	c.sess = s
	return s, nil
}

func (c *commandContext) openBrowser(ctx context.Context, cfg config.Config, log *slog.Logger) (scrape.Session, error) {
	pw, err := secrets.ResolvePassword(cfg)
	if err != nil && !errors.Is(err, secrets.ErrNoPassword) {
		log.Warn("password lookup failed", "err", err)
	}
	s, err := browser.Open(ctx, browser.Options{
		BaseURL:     cfg.App.BaseURL,
		Headless:    cfg.Browser.Headless,
		ExecPath:    cfg.Browser.ExecPath,
		UserDataDir: cfg.Browser.UserDataDir,
		CookiesFile: cfg.CookiesPath(),
		User:        cfg.Credentials.User,
		Password:    pw,
		LoginWait:   cfg.Browser.LoginWait,
		Logger:      log.With("component", "browser"),
	})
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	return s, nil
}

func (c *commandContext) newPipeline(sess scrape.Session, db *store.DB) *scrape.Pipeline {
	cfg := *c.cfg
	log := c.logger()
	limiter := util.NewHostLimiter(cfg.Fetch.RequestsPerSecond, 1)

	policy := scrape.NewFetchPolicy(sess, log)
	policy.Limiter = limiter
	policy.ReadySelector = cfg.Fetch.ReadySelector
	policy.ReadyTimeout = cfg.Fetch.ReadyTimeout
	policy.PollInterval = cfg.Fetch.PollInterval
	policy.JitterMin = cfg.Fetch.JitterMin
	policy.JitterMax = cfg.Fetch.JitterMax
	policy.RateLimitMarker = cfg.Fetch.RateLimitMarker
	policy.RateLimitCooldown = cfg.Fetch.RateLimitCooldown
	policy.NotReadyCooldown = cfg.Fetch.NotReadyCooldown

	return &scrape.Pipeline{
		Discoverer: &scrape.Discoverer{
			Session:      sess,
			Store:        db,
			Limiter:      limiter,
			BaseURL:      cfg.App.BaseURL,
			ScrollSettle: cfg.Fetch.ScrollSettle,
			MaxScrolls:   cfg.Fetch.MaxScrolls,
			Logger:       log,
		},
		Details: &scrape.DetailStage{
			Policy:     policy,
			Store:      db,
			Classifier: classifier,
			BaseURL:    cfg.App.BaseURL,
			Logger:     log,
		},
		Runs:   db,
		Logger: log,
	}
}

func (c *commandContext) close() {
	if cl, ok := c.sess.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			c.logger().Warn("close browser", "err", err)
		}
	}
	c.sess = nil
	if c.db != nil {
		_ = c.db.Close()
		c.db = nil
	}
	if c.lock != nil {
		_ = c.lock.Unlock()
		c.lock = nil
	}
	if c.logClose != nil {
		_ = c.logClose()
		c.logClose = nil
	}
}
