// Package extractor wraps yt-dlp behind a small collaborator interface:
// list the videos of a channel or playlist, probe one video's metadata,
// download one video. Everything hard lives on the other side of it.
package extractor

import (
	"context"
	"time"

	"github.com/DmitriyLyalyuev/ytsync/internal/entity"
)

const (
	defaultProgressFreq = 200 * time.Millisecond

	// probeInterval spaces back-to-back metadata requests.
	probeInterval = 2 * time.Second

	// retry counts handed to yt-dlp for the download itself.
	downloadRetries = "3"
	fragmentRetries = "3"

	sleepIntervalMin = 1.0
	sleepIntervalMax = 5.0
)

// DownloadOptions is the per-download options bundle.
type DownloadOptions struct {
	Format     string // yt-dlp format selector
	Output     string // output path template
	CookieFile string // Netscape cookie file, empty to disable
	Proxy      string // proxy URL, empty to disable
}

// DownloadResult describes a finished download.
type DownloadResult struct {
	ID       string
	Title    string
	Uploader string
	Filename string
	FileSize int64
	Duration int // seconds
}

// Extractor lists, inspects and downloads videos.
type Extractor interface {
	// List returns up to limit candidate entries for a channel or
	// playlist URL without fetching per-video metadata. A URL that
	// resolves to a single video yields one entry.
	List(ctx context.Context, url string, limit int) ([]entity.FlatEntry, error)

	// Probe fetches metadata for a single video without downloading it.
	Probe(ctx context.Context, videoURL string) (*entity.VideoMeta, error)

	// Download fetches one video, writing to the templated output path.
	Download(ctx context.Context, videoURL string, opts DownloadOptions) (*DownloadResult, error)
}
