package extractor

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// listing caps when download.max_videos_per_source is unset.
	minListLimit     = 10
	perDayListFactor = 3
	defaultListLimit = 50
)

// MaxVideos returns the listing cap for a source. An explicit configured
// value wins; otherwise the cap grows with the retention window, assuming
// at most a few uploads per day.
func MaxVideos(cfgMax, periodDays int) int {
	switch {
	case cfgMax > 0:
		return cfgMax
	case periodDays > 0:
		return max(minListLimit, periodDays*perDayListFactor)
	default:
		return defaultListLimit
	}
}

// BuildFormat appends a filesize ceiling to the format selector. Combined
// selectors get the clause on their bestvideo parts so the audio stream is
// not counted against the limit; plain selectors get it appended whole.
// A maxFileSizeMB of zero or less leaves the selector untouched.
func BuildFormat(quality string, maxFileSizeMB int) string {
	if maxFileSizeMB <= 0 {
		return quality
	}

	clause := fmt.Sprintf("[filesize<%dM]", maxFileSizeMB)

	if !strings.Contains(quality, "+") {
		return quality + clause
	}

	alternatives := strings.Split(quality, "/")
	for i, alt := range alternatives {
		parts := strings.Split(alt, "+")
		for j, part := range parts {
			if strings.HasPrefix(part, "bestvideo") {
				parts[j] = part + clause
			}
		}

		alternatives[i] = strings.Join(parts, "+")
	}

	return strings.Join(alternatives, "/")
}

// OutputTemplate builds the yt-dlp output path template under outputDir.
// The layout follows the Plex date-based show convention:
// Season <year>/<uploader> - <date> - <title>.<ext>.
func OutputTemplate(outputDir string) string {
	return filepath.Join(
		outputDir,
		"Season %(upload_date>%Y)s",
		"%(uploader)s - %(upload_date>%Y-%m-%d)s - %(title)s.%(ext)s",
	)
}
