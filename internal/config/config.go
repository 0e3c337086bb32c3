package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"jobhunt-scout/internal/review"
	"jobhunt-scout/internal/scrape"
)

type Config struct {
	App struct {
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		DBFile   string `yaml:"db_file" json:"db_file"`
		LogFile  string `yaml:"log_file" json:"log_file"`
		LogLevel string `yaml:"log_level" json:"log_level"`
		HTTPAddr string `yaml:"http_addr" json:"http_addr"`
		BaseURL  string `yaml:"base_url" json:"base_url"`
	} `yaml:"app" json:"app"`

	// Password is only read from here when the keyring has none.
	Credentials struct {
		User     string `yaml:"user" json:"user"`
		Password string `yaml:"password,omitempty" json:"password,omitempty"`
	} `yaml:"credentials" json:"credentials"`

	Search struct {
		Keywords    string `yaml:"keywords" json:"keywords"`
		Location    string `yaml:"location" json:"location"`
		OnlyRemote  bool   `yaml:"only_remote" json:"only_remote"`
		MoreRecents bool   `yaml:"more_recents" json:"more_recents"`
		MaxPages    int    `yaml:"max_pages" json:"max_pages"`
	} `yaml:"search" json:"search"`

	Browser struct {
		Headless    bool          `yaml:"headless" json:"headless"`
		ExecPath    string        `yaml:"exec_path" json:"exec_path"`
		UserDataDir string        `yaml:"user_data_dir" json:"user_data_dir"`
		CookiesFile string        `yaml:"cookies_file" json:"cookies_file"`
		LoginWait   time.Duration `yaml:"login_wait" json:"login_wait"`
	} `yaml:"browser" json:"browser"`

	Fetch struct {
		ReadySelector     string        `yaml:"ready_selector" json:"ready_selector"`
		ReadyTimeout      time.Duration `yaml:"ready_timeout" json:"ready_timeout"`
		PollInterval      time.Duration `yaml:"poll_interval" json:"poll_interval"`
		JitterMin         time.Duration `yaml:"jitter_min" json:"jitter_min"`
		JitterMax         time.Duration `yaml:"jitter_max" json:"jitter_max"`
		RateLimitMarker   string        `yaml:"rate_limit_marker" json:"rate_limit_marker"`
		RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown" json:"rate_limit_cooldown"`
		NotReadyCooldown  time.Duration `yaml:"not_ready_cooldown" json:"not_ready_cooldown"`
		ScrollSettle      time.Duration `yaml:"scroll_settle" json:"scroll_settle"`
		MaxScrolls        int           `yaml:"max_scrolls" json:"max_scrolls"`
		RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	} `yaml:"fetch" json:"fetch"`

	Review struct {
		Languages       []string `yaml:"languages" json:"languages"`
		MaxAgeDays      int      `yaml:"max_age_days" json:"max_age_days"`
		WorkModes       []string `yaml:"work_modes" json:"work_modes"`
		ExcludedLevels  []string `yaml:"excluded_levels" json:"excluded_levels"`
		ExcludedSectors []string `yaml:"excluded_sectors" json:"excluded_sectors"`
		ExcludedTitle   string   `yaml:"excluded_title" json:"excluded_title"`
		ExcludedFit     string   `yaml:"excluded_fit" json:"excluded_fit"`
	} `yaml:"review" json:"review"`

	Watch struct {
		Every time.Duration `yaml:"every" json:"every"`
	} `yaml:"watch" json:"watch"`
}

// Default returns a complete config. Load overlays the file on top of it,
// so keys missing from the file keep these values.
func Default() Config {
	var c Config

	c.App.DataDir = "."
	c.App.DBFile = "jobs.db"
	c.App.LogFile = "scout.log"
	c.App.LogLevel = "info"
	c.App.HTTPAddr = "127.0.0.1:38471"
	c.App.BaseURL = scrape.DefaultBaseURL

	c.Search.OnlyRemote = true
	c.Search.MoreRecents = true

	c.Browser.CookiesFile = "cookies.json"
	c.Browser.LoginWait = 5 * time.Second

	c.Fetch.ReadySelector = scrape.DefaultReadySelector
	c.Fetch.ReadyTimeout = scrape.DefaultReadyTimeout
	c.Fetch.PollInterval = scrape.DefaultPollInterval
	c.Fetch.JitterMin = scrape.DefaultJitterMin
	c.Fetch.JitterMax = scrape.DefaultJitterMax
	c.Fetch.RateLimitMarker = scrape.DefaultRateLimitMarker
	c.Fetch.RateLimitCooldown = scrape.DefaultRateLimitCooldown
	c.Fetch.NotReadyCooldown = scrape.DefaultNotReadyCooldown
	c.Fetch.ScrollSettle = scrape.DefaultScrollSettle
	c.Fetch.MaxScrolls = scrape.DefaultMaxScrolls
	c.Fetch.RequestsPerSecond = 0.5

	p := review.DefaultPolicy()
	c.Review.Languages = p.Languages
	c.Review.MaxAgeDays = p.MaxAgeDays
	c.Review.WorkModes = p.WorkModes
	c.Review.ExcludedLevels = p.ExcludedLevels
	c.Review.ExcludedSectors = p.ExcludedSectors
	c.Review.ExcludedTitle = p.ExcludedTitle
	c.Review.ExcludedFit = p.ExcludedFit

	c.Watch.Every = 12 * time.Hour

	return c
}

// Load reads path over Default. A missing file is an error; callers that
// want defaults run EnsureUserConfig first.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Path resolves a data-dir relative file name.
func (c Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.App.DataDir, name)
}

func (c Config) DBPath() string      { return c.Path(c.App.DBFile) }
func (c Config) LogPath() string     { return c.Path(c.App.LogFile) }
func (c Config) CookiesPath() string { return c.Path(c.Browser.CookiesFile) }

// ReviewPolicy converts the review section.
func (c Config) ReviewPolicy() review.Policy {
	return review.Policy{
		Languages:       c.Review.Languages,
		MaxAgeDays:      c.Review.MaxAgeDays,
		WorkModes:       c.Review.WorkModes,
		ExcludedLevels:  c.Review.ExcludedLevels,
		ExcludedSectors: c.Review.ExcludedSectors,
		ExcludedTitle:   c.Review.ExcludedTitle,
		ExcludedFit:     c.Review.ExcludedFit,
	}
}

// Redacted returns a copy safe to print or serve.
func (c Config) Redacted() Config {
	if c.Credentials.Password != "" {
		c.Credentials.Password = "********"
	}
	return c
}
