// Package ledger persists per-video processing outcomes in a single SQLite
// table, making sync runs idempotent across restarts.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/DmitriyLyalyuev/ytsync/internal/entity"
	"github.com/DmitriyLyalyuev/ytsync/internal/errs"

	_ "modernc.org/sqlite"
)

const (
	// maxErrorLen caps the error text stored in a failed status.
	maxErrorLen = 200

	// timeFormat is how processed_date is stored.
	timeFormat = "2006-01-02 15:04:05"

	schema = `CREATE TABLE IF NOT EXISTS processed_videos (
		video_id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		title TEXT,
		upload_date TEXT,
		processed_date TEXT,
		status TEXT DEFAULT 'downloaded',
		source_url TEXT
	)`

	upsert = `INSERT OR REPLACE INTO processed_videos
		(video_id, url, title, upload_date, processed_date, status, source_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
)

// Recorder is the ledger surface the orchestrator depends on.
type Recorder interface {
	IsProcessed(ctx context.Context, videoID string) (bool, error)
	Status(ctx context.Context, videoID string) (*entity.ProcessedVideo, error)
	MarkDownloaded(ctx context.Context, meta entity.VideoMeta, sourceURL string) error
	MarkSkipped(ctx context.Context, meta entity.VideoMeta, sourceURL, reason string) error
	MarkFailed(ctx context.Context, meta entity.VideoMeta, sourceURL, errMsg string) error
}

// Ledger is the SQLite-backed Recorder. There is exactly one writer by
// construction, so the pool is capped at a single connection.
type Ledger struct {
	log  *slog.Logger
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path and applies the schema.
func New(ctx context.Context, log *slog.Logger, path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Ledger{
		log:  log.With(slog.String("package", "ledger")),
		db:   db,
		path: path,
	}, nil
}

// Path returns the database file backing this ledger.
func (l *Ledger) Path() string {
	return l.path
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// IsProcessed reports whether the video is already handled: its stored
// status is "downloaded" or starts with "skipped". Failed videos report
// false so they are retried on every run.
func (l *Ledger) IsProcessed(ctx context.Context, videoID string) (bool, error) {
	var status string

	err := l.db.QueryRowContext(ctx,
		"SELECT status FROM processed_videos WHERE video_id = ?", videoID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("query status: %w", err)
	}

	return entity.StatusHandled(status), nil
}

// Status returns the stored row for the video, or nil when absent.
func (l *Ledger) Status(ctx context.Context, videoID string) (*entity.ProcessedVideo, error) {
	var (
		status    string
		processed string
	)

	err := l.db.QueryRowContext(ctx,
		"SELECT status, processed_date FROM processed_videos WHERE video_id = ?", videoID).
		Scan(&status, &processed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("query status: %w", err)
	}

	row := &entity.ProcessedVideo{
		VideoID: videoID,
		Status:  status,
	}

	if ts, err := time.ParseInLocation(timeFormat, processed, time.Local); err == nil {
		row.ProcessedDate = ts
	}

	return row, nil
}

// MarkDownloaded records a successful download.
func (l *Ledger) MarkDownloaded(ctx context.Context, meta entity.VideoMeta, sourceURL string) error {
	return l.record(ctx, meta, sourceURL, entity.StatusDownloaded)
}

// MarkSkipped records a filtered-out video so it is not re-inspected.
func (l *Ledger) MarkSkipped(ctx context.Context, meta entity.VideoMeta, sourceURL, reason string) error {
	return l.record(ctx, meta, sourceURL, entity.StatusSkippedPrefix+": "+reason)
}

// MarkFailed records a download failure; the error text is truncated to 200
// characters. Failed rows do not count as handled.
func (l *Ledger) MarkFailed(ctx context.Context, meta entity.VideoMeta, sourceURL, errMsg string) error {
	return l.record(ctx, meta, sourceURL, entity.StatusFailedPrefix+": "+truncate(errMsg, maxErrorLen))
}

func (l *Ledger) record(ctx context.Context, meta entity.VideoMeta, sourceURL, status string) error {
	if l.db == nil {
		return errs.ErrLedgerClosed
	}

	_, err := l.db.ExecContext(ctx, upsert,
		meta.ID,
		meta.URL,
		meta.Title,
		meta.UploadDate,
		time.Now().Format(timeFormat),
		status,
		sourceURL,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", meta.ID, err)
	}

	l.log.DebugContext(ctx, "ledger updated",
		slog.String("video_id", meta.ID),
		slog.String("status", status))

	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
