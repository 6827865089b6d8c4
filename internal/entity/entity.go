// Package entity defines the core entities used in the application.
package entity

import (
	"log/slog"
	"strings"
	"time"
)

// SourceType distinguishes configured channels from playlists.
type SourceType string

const (
	// SourceTypeChannel is a YouTube channel URL.
	SourceTypeChannel SourceType = "channel"
	// SourceTypePlaylist is a YouTube playlist URL.
	SourceTypePlaylist SourceType = "playlist"
)

// Source is a normalized sync target: a channel or playlist URL together
// with its retention window and destination directory.
type Source struct {
	URL        string     `json:"url"`
	Type       SourceType `json:"type"`
	PeriodDays int        `json:"periodDays"`
	OutputDir  string     `json:"outputDir"`
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (s Source) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", s.URL),
		slog.String("type", string(s.Type)),
		slog.Int("period_days", s.PeriodDays),
		slog.String("output_dir", s.OutputDir),
	)
}

// FlatEntry is one candidate from a flat playlist listing: no metadata
// beyond what the listing itself carries.
type FlatEntry struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// VideoMeta is the probed per-video metadata used by filters and the ledger.
type VideoMeta struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	UploadDate string `json:"uploadDate"` // YYYYMMDD, may be empty
	Duration   int    `json:"duration"`   // seconds, 0 when unknown
	Uploader   string `json:"uploader"`
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (m VideoMeta) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", m.ID),
		slog.String("title", m.Title),
		slog.String("upload_date", m.UploadDate),
		slog.Int("duration", m.Duration),
	)
}

// Status values stored in the processed_videos ledger. Skipped and failed
// statuses carry a suffix: "skipped: <reason>", "failed: <error>".
const (
	StatusDownloaded    = "downloaded"
	StatusSkippedPrefix = "skipped"
	StatusFailedPrefix  = "failed"
)

// ProcessedVideo is one ledger row.
type ProcessedVideo struct {
	VideoID       string    `json:"videoId"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	UploadDate    string    `json:"uploadDate"`
	ProcessedDate time.Time `json:"processedDate"`
	Status        string    `json:"status"`
	SourceURL     string    `json:"sourceUrl"`
}

// Handled reports whether the row closes the video for future runs: true
// for downloaded and skipped statuses, false for failed ones, which stay
// eligible for retry on every subsequent sync.
func (p ProcessedVideo) Handled() bool {
	return StatusHandled(p.Status)
}

// Failed reports whether the row records a download failure.
func (p ProcessedVideo) Failed() bool {
	return strings.HasPrefix(p.Status, StatusFailedPrefix)
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (p ProcessedVideo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("video_id", p.VideoID),
		slog.String("title", p.Title),
		slog.String("status", p.Status),
		slog.Time("processed_date", p.ProcessedDate),
	)
}

// StatusHandled reports whether a raw status string counts as handled.
func StatusHandled(status string) bool {
	return status == StatusDownloaded || strings.HasPrefix(status, StatusSkippedPrefix)
}
