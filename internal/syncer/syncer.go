// Package syncer orchestrates one sync pass: per source, list candidates,
// filter already-handled and out-of-window videos, download the rest one at
// a time and record every outcome in the ledger.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/DmitriyLyalyuev/ytsync/internal/config"
	"github.com/DmitriyLyalyuev/ytsync/internal/entity"
	"github.com/DmitriyLyalyuev/ytsync/internal/errs"
	"github.com/DmitriyLyalyuev/ytsync/internal/extractor"
	"github.com/DmitriyLyalyuev/ytsync/internal/filter"
	"github.com/DmitriyLyalyuev/ytsync/internal/ledger"
	"github.com/DmitriyLyalyuev/ytsync/internal/observability"
	"github.com/DmitriyLyalyuev/ytsync/internal/source"
	"github.com/DmitriyLyalyuev/ytsync/pkg/netscape"
	"github.com/DmitriyLyalyuev/ytsync/pkg/urls"

	"github.com/google/uuid"
)

const (
	// maxListAttempts caps the source-level listing retry loop.
	maxListAttempts = 3

	// preDelay bounds for the randomized pause before each source's first
	// request. Burstiness reduction, not a correctness mechanism.
	preDelayMin = 2 * time.Second
	preDelayMax = 8 * time.Second

	// backoff bounds for rate-limit-like listing failures; the delay is
	// multiplied by the attempt number.
	rateBackoffMin = 10 * time.Second
	rateBackoffMax = 30 * time.Second

	// backoff bounds for unexpected listing failures.
	genericBackoffMin = 5 * time.Second
	genericBackoffMax = 15 * time.Second

	dirPerm = 0o755
)

// Syncer runs sync passes over an immutable configuration snapshot.
// Reloading configuration builds a new Syncer rather than mutating one.
type Syncer struct {
	log     *slog.Logger
	cfg     *config.Config
	sources []entity.Source
	rec     ledger.Recorder
	ext     extractor.Extractor
	metrics *observability.Metrics
}

// New builds a Syncer for the given configuration snapshot.
func New(log *slog.Logger, cfg *config.Config, rec ledger.Recorder, ext extractor.Extractor, metrics *observability.Metrics) *Syncer {
	sources := source.Expand(cfg)
	metrics.SetSourcesConfigured(len(sources))

	return &Syncer{
		log:     log.With(slog.String("package", "syncer")),
		cfg:     cfg,
		sources: sources,
		rec:     rec,
		ext:     ext,
		metrics: metrics,
	}
}

// SyncAll processes every configured source sequentially. Source failures
// are logged and never abort the pass; the only returned error is ctx
// cancellation.
func (s *Syncer) SyncAll(ctx context.Context) error {
	log := s.log.With(slog.String("run_id", uuid.NewString()))

	s.metrics.RecordRun()
	log.InfoContext(ctx, "sync pass started", slog.Int("sources", len(s.sources)))

	for _, src := range s.sources {
		if err := s.syncSource(ctx, log, src); err != nil {
			if ctx.Err() != nil {
				log.WarnContext(ctx, "sync pass interrupted", slog.Any("error", ctx.Err()))

				return ctx.Err()
			}

			log.ErrorContext(ctx, "source abandoned for this run", "source", src, slog.Any("error", err))
		}
	}

	s.metrics.RecordRunCompleted()
	log.InfoContext(ctx, "sync pass finished")

	return nil
}

func (s *Syncer) syncSource(ctx context.Context, log *slog.Logger, src entity.Source) error {
	log = log.With("source", src)

	done := s.metrics.SourceTimer()
	defer done()

	log.InfoContext(ctx, "starting synchronization")

	if err := os.MkdirAll(src.OutputDir, dirPerm); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := sleepCtx(ctx, jitter(preDelayMin, preDelayMax)); err != nil {
		return err
	}

	s.logCookiePosture(ctx, log)

	limit := extractor.MaxVideos(s.cfg.Download.MaxVideosPerSource, src.PeriodDays)
	log.DebugContext(ctx, "listing candidates", slog.Int("limit", limit))

	entries, err := s.listWithRetry(ctx, log, src.URL, limit)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "listing obtained", slog.Int("candidates", len(entries)))

	accept := filter.Chain(
		filter.MaxAge(time.Now(), src.PeriodDays),
		filter.MaxDuration(s.cfg.Download.MaxDuration),
	)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.syncVideo(ctx, log, src, entry, accept)
	}

	log.InfoContext(ctx, "synchronization completed")

	return nil
}

// listWithRetry fetches the flat listing, retrying rate-limit-like and
// unexpected failures up to maxListAttempts. A plain extraction failure
// aborts the source immediately.
func (s *Syncer) listWithRetry(ctx context.Context, log *slog.Logger, url string, limit int) ([]entity.FlatEntry, error) {
	var lastErr error

	for attempt := 1; attempt <= maxListAttempts; attempt++ {
		entries, err := s.ext.List(ctx, url, limit)
		if err == nil {
			return entries, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err

		var backoff time.Duration

		switch {
		case errors.Is(err, errs.ErrRateLimited):
			s.metrics.RecordSourceError(observability.ErrorKindRateLimited)
			backoff = jitter(rateBackoffMin, rateBackoffMax) * time.Duration(attempt)
		case errors.Is(err, errs.ErrExtraction):
			s.metrics.RecordSourceError(observability.ErrorKindDownload)
			log.ErrorContext(ctx, "listing failed", slog.Any("error", err))

			return nil, err
		default:
			s.metrics.RecordSourceError(observability.ErrorKindOther)
			backoff = jitter(genericBackoffMin, genericBackoffMax)
		}

		if attempt == maxListAttempts {
			break
		}

		s.metrics.RecordListingRetry()
		log.WarnContext(ctx, "listing failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxListAttempts),
			slog.Duration("backoff", backoff),
			slog.Any("error", err))

		if err := sleepCtx(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("listing failed after %d attempts: %w", maxListAttempts, lastErr)
}

// syncVideo runs one candidate through the skip/probe/filter/download
// pipeline. Failures never propagate; a video that went unrecorded is
// simply picked up again on the next pass.
func (s *Syncer) syncVideo(ctx context.Context, log *slog.Logger, src entity.Source, entry entity.FlatEntry, accept filter.Filter) {
	log = log.With(slog.String("video_id", entry.ID))

	processed, err := s.rec.IsProcessed(ctx, entry.ID)
	if err != nil {
		log.ErrorContext(ctx, "ledger lookup", slog.Any("error", err))

		return
	}

	if processed {
		log.DebugContext(ctx, "skipping already processed video")

		return
	}

	prior, err := s.rec.Status(ctx, entry.ID)
	if err != nil {
		log.ErrorContext(ctx, "ledger status", slog.Any("error", err))

		return
	}

	videoURL := entry.URL
	if videoURL == "" {
		videoURL = urls.Watch(entry.ID)
	}

	meta, err := s.ext.Probe(ctx, videoURL)
	if err != nil {
		// Not recorded: the video stays eligible for the next pass.
		log.WarnContext(ctx, "metadata fetch failed, will retry next run", slog.Any("error", err))

		return
	}

	if reason := accept(*meta); reason != "" {
		log.DebugContext(ctx, "video filtered out", slog.String("reason", reason))

		if err := s.rec.MarkSkipped(ctx, *meta, src.URL, reason); err != nil {
			log.ErrorContext(ctx, "mark skipped", slog.Any("error", err))

			return
		}

		s.metrics.RecordVideo(observability.OutcomeSkipped)

		return
	}

	if prior != nil && prior.Failed() {
		log.InfoContext(ctx, "retrying previously failed video", "previous", *prior)
	} else {
		log.InfoContext(ctx, "downloading", "video", *meta)
	}

	opts := extractor.DownloadOptions{
		Format: extractor.BuildFormat(s.cfg.Download.Quality, s.cfg.Download.MaxFileSize),
		Output: extractor.OutputTemplate(src.OutputDir),
		Proxy:  s.cfg.Download.Proxy,
	}

	if s.cfg.Cookies.Enabled {
		opts.CookieFile = s.cfg.Cookies.CookieFile
	}

	downloadDone := s.metrics.DownloadTimer()
	result, err := s.ext.Download(ctx, meta.URL, opts)
	downloadDone()

	if err != nil {
		log.ErrorContext(ctx, "download failed", slog.Any("error", err))

		if markErr := s.rec.MarkFailed(ctx, *meta, src.URL, err.Error()); markErr != nil {
			log.ErrorContext(ctx, "mark failed", slog.Any("error", markErr))
		}

		s.metrics.RecordVideo(observability.OutcomeFailed)

		return
	}

	if err := s.rec.MarkDownloaded(ctx, *meta, src.URL); err != nil {
		log.ErrorContext(ctx, "mark downloaded", slog.Any("error", err))

		return
	}

	s.metrics.RecordVideo(observability.OutcomeDownloaded)
	log.InfoContext(ctx, "video downloaded",
		slog.String("filename", result.Filename),
		slog.Int64("file_size", result.FileSize))
}

// logCookiePosture reports whether downloads will authenticate with
// cookies and how many relevant cookies the configured file holds.
func (s *Syncer) logCookiePosture(ctx context.Context, log *slog.Logger) {
	cookies := s.cfg.Cookies

	if !cookies.Enabled {
		log.DebugContext(ctx, "cookies disabled, requests are unauthenticated")

		return
	}

	if cookies.CookieFile == "" {
		log.WarnContext(ctx, "cookies enabled but no cookie_file configured")

		return
	}

	parsed, err := netscape.ParseFile(cookies.CookieFile)
	if err != nil {
		log.ErrorContext(ctx, "cookie file unreadable", slog.String("path", cookies.CookieFile), slog.Any("error", err))

		return
	}

	relevant := netscape.FilterYouTube(parsed)
	if len(relevant) == 0 {
		log.WarnContext(ctx, "cookie file holds no YouTube cookies", slog.String("path", cookies.CookieFile))

		return
	}

	log.InfoContext(ctx, "using cookie file",
		slog.String("path", cookies.CookieFile),
		slog.Int("youtube_cookies", len(relevant)))
}

// jitter returns a random duration in [min, max).
func jitter(minD, maxD time.Duration) time.Duration {
	if maxD <= minD {
		return minD
	}

	return minD + rand.N(maxD-minD)
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
