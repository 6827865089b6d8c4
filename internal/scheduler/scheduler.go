// Package scheduler drives the sync orchestrator: one run immediately at
// start, then on a fixed interval and once daily at a configured time. A
// cooperative poll loop also watches the config file and swaps in a fresh
// snapshot when it changes.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/DmitriyLyalyuev/ytsync/internal/config"
)

const (
	defaultPollInterval = time.Minute

	// defaultReloadEvery is how many polls pass between config mtime checks.
	defaultReloadEvery = 10
)

// Syncer is the orchestrator surface the scheduler drives.
type Syncer interface {
	SyncAll(ctx context.Context) error
}

// BuildFunc rebuilds the orchestrator from a freshly loaded configuration
// snapshot. It is called on hot reload; returning an error keeps the
// previous snapshot in use.
type BuildFunc func(cfg *config.Config) (Syncer, error)

// Options tunes the scheduler. Watcher and Build are optional; without
// them hot reload is disabled.
type Options struct {
	PollInterval time.Duration
	ReloadEvery  int
	Watcher      *config.Watcher
	Build        BuildFunc
}

// Scheduler owns the trigger loop.
type Scheduler struct {
	log     *slog.Logger
	cfg     *config.Config
	syncer  Syncer
	watcher *config.Watcher
	build   BuildFunc

	poll        time.Duration
	reloadEvery int

	interval     time.Duration
	hour, minute int
}

// New creates a scheduler for the given configuration snapshot.
func New(log *slog.Logger, cfg *config.Config, syn Syncer, opts Options) (*Scheduler, error) {
	hour, minute, err := cfg.Scheduler.DailyAt()
	if err != nil {
		return nil, err
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	if opts.ReloadEvery <= 0 {
		opts.ReloadEvery = defaultReloadEvery
	}

	return &Scheduler{
		log:         log.With(slog.String("package", "scheduler")),
		cfg:         cfg,
		syncer:      syn,
		watcher:     opts.Watcher,
		build:       opts.Build,
		poll:        opts.PollInterval,
		reloadEvery: opts.ReloadEvery,
		interval:    time.Duration(cfg.Scheduler.SyncIntervalHours) * time.Hour,
		hour:        hour,
		minute:      minute,
	}, nil
}

// Run blocks until ctx is cancelled. No sync error ever stops the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.InfoContext(ctx, "scheduler started",
		slog.Duration("interval", s.interval),
		slog.String("daily_at", time.Date(0, 1, 1, s.hour, s.minute, 0, 0, time.UTC).Format("15:04")))

	s.runSync(ctx)

	nextInterval := time.Now().Add(s.interval)
	nextDaily := nextDailyAfter(time.Now(), s.hour, s.minute)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	polls := 0

	for {
		select {
		case <-ctx.Done():
			s.log.InfoContext(ctx, "scheduler stopping", slog.Any("error", ctx.Err()))

			return ctx.Err()
		case now := <-ticker.C:
			polls++

			if s.watcher != nil && s.build != nil && polls%s.reloadEvery == 0 {
				if s.maybeReload(ctx) {
					nextInterval = now.Add(s.interval)
					nextDaily = nextDailyAfter(now, s.hour, s.minute)
				}
			}

			due := false

			if !now.Before(nextInterval) {
				due = true
				nextInterval = now.Add(s.interval)
			}

			if !now.Before(nextDaily) {
				due = true
				nextDaily = nextDailyAfter(now, s.hour, s.minute)
			}

			// Both triggers landing in one poll still run once.
			if due {
				s.runSync(ctx)
			}
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	if err := s.syncer.SyncAll(ctx); err != nil && ctx.Err() == nil {
		s.log.ErrorContext(ctx, "sync run failed", slog.Any("error", err))
	}
}

// maybeReload checks the config file's mtime and, when it changed, loads a
// new snapshot and rebuilds the orchestrator. Any failure keeps the
// previous snapshot in place.
func (s *Scheduler) maybeReload(ctx context.Context) bool {
	changed, err := s.watcher.Changed()
	if err != nil {
		s.log.WarnContext(ctx, "config watch", slog.Any("error", err))

		return false
	}

	if !changed {
		return false
	}

	cfg, err := config.Load(s.watcher.Path())
	if err != nil {
		s.log.ErrorContext(ctx, "config reload failed, keeping previous snapshot", slog.Any("error", err))

		return false
	}

	hour, minute, err := cfg.Scheduler.DailyAt()
	if err != nil {
		s.log.ErrorContext(ctx, "config reload failed, keeping previous snapshot", slog.Any("error", err))

		return false
	}

	syn, err := s.build(cfg)
	if err != nil {
		s.log.ErrorContext(ctx, "rebuild failed, keeping previous snapshot", slog.Any("error", err))

		return false
	}

	s.cfg = cfg
	s.syncer = syn
	s.interval = time.Duration(cfg.Scheduler.SyncIntervalHours) * time.Hour
	s.hour = hour
	s.minute = minute

	s.log.InfoContext(ctx, "configuration reloaded",
		slog.Duration("interval", s.interval),
		slog.Int("sources", len(cfg.AllEntries())))

	return true
}

// nextDailyAfter returns the next occurrence of hour:minute strictly after
// now, in now's location.
func nextDailyAfter(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
