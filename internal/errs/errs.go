// Package errs defines common error variables used across the application.
package errs

import "errors"

// Configuration errors.
var (
	// ErrConfigNotFound indicates that the configuration file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrNoSources indicates that the configuration declares no channels or playlists.
	ErrNoSources = errors.New("no sources configured")
	// ErrInvalidSourceURL indicates that a configured source URL is not a valid http(s) URL.
	ErrInvalidSourceURL = errors.New("invalid source url")
	// ErrInvalidRunTime indicates that scheduler.first_run_time is not HH:MM.
	ErrInvalidRunTime = errors.New("invalid first_run_time, expected HH:MM")
	// ErrInvalidInterval indicates that scheduler.sync_interval_hours is below one hour.
	ErrInvalidInterval = errors.New("sync_interval_hours must be at least 1")
)

// Extraction errors.
var (
	// ErrRateLimited indicates a rate-limit-like upstream rejection of a listing request.
	ErrRateLimited = errors.New("rate limited by upstream")
	// ErrExtraction indicates a yt-dlp run failure that is not rate-limit-like.
	ErrExtraction = errors.New("extraction failed")
	// ErrNoEntries indicates that a listing yielded no candidate videos.
	ErrNoEntries = errors.New("no entries in listing")
	// ErrEmptyMetadata indicates that a metadata probe produced no usable output.
	ErrEmptyMetadata = errors.New("empty metadata output")
)

// Ledger errors.
var (
	// ErrLedgerClosed indicates an operation on a closed ledger.
	ErrLedgerClosed = errors.New("ledger is closed")
)

// Dependency errors.
var (
	// ErrBinaryNotFound indicates that the required binary was not found.
	ErrBinaryNotFound = errors.New("binary not found")
	// ErrUnsupportedPlatform indicates that the current platform is not supported.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// Cookie helper errors.
var (
	// ErrUnsupportedBrowser indicates a browser outside chrome, firefox, safari.
	ErrUnsupportedBrowser = errors.New("unsupported browser")
	// ErrNoCookies indicates that no YouTube cookies were found in the export.
	ErrNoCookies = errors.New("no YouTube cookies found")
)
