// Package filter decides which probed videos get downloaded. Filters are
// independent predicates run in order; the first rejection wins and its
// reason is recorded in the ledger.
package filter

import (
	"fmt"
	"time"

	"github.com/DmitriyLyalyuev/ytsync/internal/entity"
)

// Filter inspects probed metadata and returns a rejection reason, or the
// empty string to accept the video.
type Filter func(entity.VideoMeta) string

// Chain runs filters in order and short-circuits on the first rejection.
func Chain(filters ...Filter) Filter {
	return func(meta entity.VideoMeta) string {
		for _, f := range filters {
			if reason := f(meta); reason != "" {
				return reason
			}
		}

		return ""
	}
}

// MaxAge rejects videos with a missing upload date, and videos uploaded
// before now minus periodDays. Upload dates are compared in their YYYYMMDD
// form, where lexicographic order is chronological order. A periodDays of
// zero or less disables the filter.
func MaxAge(now time.Time, periodDays int) Filter {
	if periodDays <= 0 {
		return accept
	}

	cutoff := now.AddDate(0, 0, -periodDays)
	cutoffCompact := cutoff.Format("20060102")
	cutoffHuman := cutoff.Format("2006-01-02")

	return func(meta entity.VideoMeta) string {
		if meta.UploadDate == "" {
			return "no upload date"
		}

		if meta.UploadDate < cutoffCompact {
			return "old video (before " + cutoffHuman + ")"
		}

		return ""
	}
}

// MaxDuration rejects videos longer than limit seconds. A limit of zero or
// less disables the filter; unknown durations are accepted.
func MaxDuration(limit int) Filter {
	if limit <= 0 {
		return accept
	}

	return func(meta entity.VideoMeta) string {
		if meta.Duration > limit {
			return fmt.Sprintf("too long (%ds, limit %ds)", meta.Duration, limit)
		}

		return ""
	}
}

func accept(entity.VideoMeta) string { return "" }
