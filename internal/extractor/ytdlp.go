package extractor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/DmitriyLyalyuev/ytsync/internal/config"
	"github.com/DmitriyLyalyuev/ytsync/internal/entity"
	"github.com/DmitriyLyalyuev/ytsync/internal/errs"
	"github.com/DmitriyLyalyuev/ytsync/pkg/maths"
	"github.com/DmitriyLyalyuev/ytsync/pkg/shellquote"
	"github.com/DmitriyLyalyuev/ytsync/pkg/urls"

	"github.com/lrstanley/go-ytdlp"
	"golang.org/x/time/rate"
)

var (
	maxJSONSize = 10 * 1024 * 1024                                       // 10 MiB scanner buffer
	bufSize     = 4096                                                   // 4 KiB buffer size
	reFilepath  = regexp.MustCompile(`(?i)^[^\{\[\n].*\.[a-z0-9]{1,6}$`) // file path

	// changing this may break ParseDownloadOutput().
	defaultPrintAfterMove = "after_move:filepath"

	// rateLimitSignatures mark listing failures worth retrying with backoff.
	rateLimitSignatures = []string{"HTTP Error 400", "Precondition check failed"}
)

// YTdlp is the yt-dlp backed Extractor.
type YTdlp struct {
	log     *slog.Logger
	cfg     *config.Config
	limiter *rate.Limiter
}

// NewYTdlp creates a yt-dlp backed extractor.
func NewYTdlp(log *slog.Logger, cfg *config.Config) *YTdlp {
	return &YTdlp{
		log:     log.With(slog.String("package", "extractor")),
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(probeInterval), 1),
	}
}

// List fetches a flat listing for the source URL, capped at limit entries.
func (e *YTdlp) List(ctx context.Context, url string, limit int) ([]entity.FlatEntry, error) {
	log := e.log.With(slog.String("url", url))

	command := ytdlp.New().
		FlatPlaylist().
		DumpSingleJSON().
		SkipDownload().
		Quiet().
		NoWarnings().
		PlaylistItems(fmt.Sprintf("1:%d", limit))

	command = e.withAuth(command)

	res, err := command.Run(ctx, url)
	if err != nil {
		return nil, e.classify(ctx, "list", err, res)
	}

	log.DebugContext(ctx, "listing fetched", slog.String("command", shellquote.Join(res.Executable, res.Args)))

	var listing listJSON
	if err := json.Unmarshal([]byte(res.Stdout), &listing); err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	if listing.Type != "playlist" || listing.Entries == nil {
		// Single-video source.
		if listing.ID == "" {
			return nil, fmt.Errorf("%w: %s", errs.ErrNoEntries, url)
		}

		return []entity.FlatEntry{{ID: listing.ID, URL: listing.URL, Title: listing.Title}}, nil
	}

	entries := make([]entity.FlatEntry, 0, len(listing.Entries))

	for _, entry := range listing.Entries {
		if entry.ID == "" {
			continue
		}

		entryURL := entry.URL
		if entryURL == "" {
			entryURL = urls.Watch(entry.ID)
		}

		entries = append(entries, entity.FlatEntry{ID: entry.ID, URL: entryURL, Title: entry.Title})
	}

	return entries, nil
}

// Probe fetches a single video's metadata. Probes pass through a rate
// limiter so back-to-back metadata requests stay polite.
func (e *YTdlp) Probe(ctx context.Context, videoURL string) (*entity.VideoMeta, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("probe limiter: %w", err)
	}

	command := ytdlp.New().
		DumpSingleJSON().
		SkipDownload().
		Quiet().
		NoWarnings().
		NoPlaylist()

	command = e.withAuth(command)

	res, err := command.Run(ctx, videoURL)
	if err != nil {
		return nil, e.classify(ctx, "probe", err, res)
	}

	var probe probeJSON
	if err := json.Unmarshal([]byte(res.Stdout), &probe); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	if probe.ID == "" {
		return nil, fmt.Errorf("%w: %s", errs.ErrEmptyMetadata, videoURL)
	}

	meta := &entity.VideoMeta{
		ID:         probe.ID,
		URL:        probe.WebpageURL,
		Title:      probe.Title,
		UploadDate: probe.UploadDate,
		Duration:   maths.RoundFloat64ToInt(probe.Duration),
		Uploader:   probe.Uploader,
	}

	if meta.URL == "" {
		meta.URL = videoURL
	}

	e.log.DebugContext(ctx, "metadata probed", "video", *meta)

	return meta, nil
}

// Download fetches one video into the templated output path.
func (e *YTdlp) Download(ctx context.Context, videoURL string, opts DownloadOptions) (*DownloadResult, error) {
	log := e.log.With(slog.String("url", videoURL))

	progressFn := func(prog ytdlp.ProgressUpdate) {
		log.DebugContext(ctx, "ytdlp progress", "progress_update", ProgressUpdate{&prog})
	}

	command := ytdlp.New().
		Format(opts.Format).
		Output(opts.Output).
		NoPlaylist().
		MergeOutputFormat("mp4").
		RecodeVideo("mp4").
		EmbedMetadata().
		Retries(downloadRetries).
		FragmentRetries(fragmentRetries).
		SkipUnavailableFragments().
		SleepInterval(sleepIntervalMin).
		MaxSleepInterval(sleepIntervalMax).
		IgnoreErrors().
		ProgressFunc(defaultProgressFreq, progressFn).
		PrintJSON().
		Print(defaultPrintAfterMove)

	if opts.CookieFile != "" {
		command = command.Cookies(opts.CookieFile)
	}

	if opts.Proxy != "" {
		command = command.Proxy(opts.Proxy)
	}

	res, err := command.Run(ctx, videoURL)
	if err != nil {
		log.ErrorContext(ctx, "ytdlp run", slog.Any("error", err), slog.Any("result", Result{res}))

		return nil, e.classify(ctx, "download", err, res)
	}

	log.DebugContext(ctx, "ytdlp finished", slog.String("command", shellquote.Join(res.Executable, res.Args)))

	info, filename, err := ParseDownloadOutput(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("parse download output: %w", err)
	}

	result := &DownloadResult{
		ID:       info.ID,
		Title:    info.Title,
		Uploader: info.Uploader,
		Filename: filename,
		Duration: maths.RoundFloat64ToInt(info.Duration),
	}

	if filename != "" {
		if fi, err := os.Stat(filename); err == nil {
			result.FileSize = fi.Size()
		}
	}

	return result, nil
}

// withAuth applies the configured cookie file and proxy to a command.
func (e *YTdlp) withAuth(command *ytdlp.Command) *ytdlp.Command {
	if e.cfg.Cookies.Enabled && e.cfg.Cookies.CookieFile != "" {
		command = command.Cookies(e.cfg.Cookies.CookieFile)
	}

	if e.cfg.Download.Proxy != "" {
		command = command.Proxy(e.cfg.Download.Proxy)
	}

	return command
}

// classify wraps a yt-dlp failure so callers can tell rate-limit-like
// rejections apart from ordinary extraction failures.
func (e *YTdlp) classify(ctx context.Context, op string, err error, res *ytdlp.Result) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}

	text := err.Error()
	if res != nil {
		text += "\n" + res.Stderr
	}

	if IsRateLimited(text) {
		return fmt.Errorf("%s: %w: %v", op, errs.ErrRateLimited, err)
	}

	return fmt.Errorf("%s: %w: %v", op, errs.ErrExtraction, err)
}

// IsRateLimited reports whether the error text carries one of the upstream
// rate-limit signatures.
func IsRateLimited(text string) bool {
	for _, sig := range rateLimitSignatures {
		if strings.Contains(text, sig) {
			return true
		}
	}

	return false
}

// ParseDownloadOutput scans yt-dlp stdout for the per-video JSON line and
// the after_move:filepath line that follows it.
func ParseDownloadOutput(stdout string) (info DownloadInfo, filename string, err error) {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, bufSize), maxJSONSize)

	seen := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var parsed DownloadInfo
		if jsonErr := json.Unmarshal([]byte(line), &parsed); jsonErr == nil && parsed.ID != "" {
			info = parsed
			seen = true

			continue
		}

		if reFilepath.MatchString(line) {
			filename = line
		}
	}

	if !seen {
		return info, filename, fmt.Errorf("no video info in yt-dlp output")
	}

	if filename == "" {
		filename = info.Filename
	}

	return info, filename, nil
}
