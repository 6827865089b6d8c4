// Package config handles application configuration loading and management.
//
// Configuration comes from a YAML file; environment variables override file
// values after parsing. A loaded Config is immutable: reloading produces a
// fresh snapshot instead of mutating the one in use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DmitriyLyalyuev/ytsync/internal/errs"
	"github.com/DmitriyLyalyuev/ytsync/pkg/urls"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultQuality is the yt-dlp format selector used when download.quality is unset.
const DefaultQuality = "bestvideo[height<=1080]+bestaudio/best[height<=720]/best"

// Config holds the application configuration.
type Config struct {
	YouTube   YouTube   `yaml:"youtube"`
	Download  Download  `yaml:"download"`
	Cookies   Cookies   `yaml:"cookies"`
	Database  Database  `yaml:"database"`
	Scheduler Scheduler `yaml:"scheduler"`
	Logging   Logging   `yaml:"logging"`
	Metrics   Metrics   `yaml:"metrics"`
	Deps      Deps      `yaml:"deps"`
}

// SourceEntry is one configured channel or playlist. In YAML it is either a
// bare URL string or a mapping with url, period_days, output_dir. Absent
// period_days/output_dir inherit the download defaults at enumeration time;
// an explicit period_days of 0 disables the date filter for that source.
type SourceEntry struct {
	URL        string `yaml:"url"`
	PeriodDays *int   `yaml:"period_days"`
	OutputDir  string `yaml:"output_dir"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (e *SourceEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&e.URL)
	}

	type plain SourceEntry

	return value.Decode((*plain)(e))
}

// YouTube lists the sources to synchronize.
type YouTube struct {
	Channels  []SourceEntry `yaml:"channels"`
	Playlists []SourceEntry `yaml:"playlists"`
}

// Download holds download behavior configuration.
type Download struct {
	OutputDir          string `yaml:"output_dir"            env:"YTSYNC_DOWNLOAD_OUTPUT_DIR"`
	DefaultPeriodDays  int    `yaml:"default_period_days"   env:"YTSYNC_DOWNLOAD_DEFAULT_PERIOD_DAYS"`
	Quality            string `yaml:"quality"               env:"YTSYNC_DOWNLOAD_QUALITY"`
	MaxVideosPerSource int    `yaml:"max_videos_per_source" env:"YTSYNC_DOWNLOAD_MAX_VIDEOS_PER_SOURCE"`
	MaxFileSize        int    `yaml:"max_file_size"         env:"YTSYNC_DOWNLOAD_MAX_FILE_SIZE"` // MB, 0 = unlimited
	MaxDuration        int    `yaml:"max_duration"          env:"YTSYNC_DOWNLOAD_MAX_DURATION"`  // seconds, 0 = unlimited
	Proxy              string `yaml:"proxy"                 env:"YTSYNC_DOWNLOAD_PROXY"`
}

// Cookies holds cookie configuration.
//
// CookieString is what the cookiedump helper emits; the downloader itself
// consumes CookieFile only.
// See: https://github.com/yt-dlp/yt-dlp/wiki/FAQ#how-do-i-pass-cookies-to-yt-dlp
type Cookies struct {
	Enabled      bool   `yaml:"enabled"       env:"YTSYNC_COOKIES_ENABLED"`
	CookieFile   string `yaml:"cookie_file"   env:"YTSYNC_COOKIES_FILE"`
	CookieString string `yaml:"cookie_string"`
}

// Database holds the ledger location.
type Database struct {
	Path string `yaml:"path" env:"YTSYNC_DATABASE_PATH"`
}

// Scheduler holds trigger configuration.
type Scheduler struct {
	SyncIntervalHours int    `yaml:"sync_interval_hours" env:"YTSYNC_SCHEDULER_SYNC_INTERVAL_HOURS"`
	FirstRunTime      string `yaml:"first_run_time"      env:"YTSYNC_SCHEDULER_FIRST_RUN_TIME"` // HH:MM
}

// DailyAt parses FirstRunTime into hour and minute.
func (s Scheduler) DailyAt() (hour, minute int, err error) {
	t, err := time.Parse("15:04", s.FirstRunTime)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", errs.ErrInvalidRunTime, s.FirstRunTime)
	}

	return t.Hour(), t.Minute(), nil
}

// Logging holds logging configuration.
type Logging struct {
	Level  string `yaml:"level"  env:"YTSYNC_LOG_LEVEL"`
	Format string `yaml:"format" env:"YTSYNC_LOG_FORMAT"` // json|text
}

// Metrics holds the Prometheus endpoint configuration.
type Metrics struct {
	Enabled bool   `yaml:"enabled" env:"YTSYNC_METRICS_ENABLED"`
	Address string `yaml:"address" env:"YTSYNC_METRICS_ADDRESS"`
}

// Deps holds binary dependency configuration.
type Deps struct {
	AutoInstall bool   `yaml:"auto_install" env:"YTSYNC_DEPS_AUTO_INSTALL"`
	BinsDir     string `yaml:"bins_dir"     env:"YTSYNC_DEPS_BINS_DIR"`
	YTdlpURL    string `yaml:"ytdlp_url"    env:"YTSYNC_DEPS_YTDLP_URL"`
	FFmpegURL   string `yaml:"ffmpeg_url"   env:"YTSYNC_DEPS_FFMPEG_URL"` // .tar.xz archive
}

// Default returns the configuration used when keys are absent from the file.
func Default() *Config {
	return &Config{
		Download: Download{
			OutputDir:         "./downloads",
			DefaultPeriodDays: 30,
			Quality:           DefaultQuality,
		},
		Database: Database{
			Path: "./db/ytsync.db",
		},
		Scheduler: Scheduler{
			SyncIntervalHours: 6,
			FirstRunTime:      "08:00",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Metrics: Metrics{
			Enabled: true,
			Address: ":9090",
		},
		Deps: Deps{
			BinsDir: "./bins",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides, resolves paths and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errs.ErrConfigNotFound, path)
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.SetAbsPaths(); err != nil {
		return nil, fmt.Errorf("set absolute paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SetAbsPaths converts all configured paths to absolute paths.
func (c *Config) SetAbsPaths() error {
	var err error
	if c.Download.OutputDir, err = filepath.Abs(c.Download.OutputDir); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	if c.Database.Path, err = filepath.Abs(c.Database.Path); err != nil {
		return fmt.Errorf("database path: %w", err)
	}

	if c.Deps.BinsDir, err = filepath.Abs(c.Deps.BinsDir); err != nil {
		return fmt.Errorf("bins dir: %w", err)
	}

	if c.Cookies.CookieFile != "" {
		if c.Cookies.CookieFile, err = filepath.Abs(c.Cookies.CookieFile); err != nil {
			return fmt.Errorf("cookie file: %w", err)
		}
	}

	return nil
}

// Validate checks source URLs and scheduler settings.
func (c *Config) Validate() error {
	for _, entry := range c.AllEntries() {
		fixed := urls.FixURL(urls.Normalize(entry.URL))
		if !urls.IsURLValid(fixed) {
			return fmt.Errorf("%w: %q", errs.ErrInvalidSourceURL, entry.URL)
		}

		if entry.PeriodDays != nil && *entry.PeriodDays < 0 {
			return fmt.Errorf("negative period_days for %q", entry.URL)
		}
	}

	if c.Scheduler.SyncIntervalHours < 1 {
		return errs.ErrInvalidInterval
	}

	if _, _, err := c.Scheduler.DailyAt(); err != nil {
		return err
	}

	return nil
}

// AllEntries returns channels followed by playlists, preserving file order.
func (c *Config) AllEntries() []SourceEntry {
	entries := make([]SourceEntry, 0, len(c.YouTube.Channels)+len(c.YouTube.Playlists))
	entries = append(entries, c.YouTube.Channels...)
	entries = append(entries, c.YouTube.Playlists...)

	return entries
}
