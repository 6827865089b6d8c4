package extractor_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/DmitriyLyalyuev/ytsync/internal/config"
	"github.com/DmitriyLyalyuev/ytsync/internal/extractor"
)

func TestMaxVideos(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfgMax     int
		periodDays int
		want       int
	}{
		{name: "explicit config wins", cfgMax: 5, periodDays: 30, want: 5},
		{name: "derived from period", cfgMax: 0, periodDays: 7, want: 21},
		{name: "short period hits floor", cfgMax: 0, periodDays: 2, want: 10},
		{name: "no period falls back", cfgMax: 0, periodDays: 0, want: 50},
		{name: "negative period falls back", cfgMax: 0, periodDays: -1, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := extractor.MaxVideos(tt.cfgMax, tt.periodDays); got != tt.want {
				t.Errorf("MaxVideos(%d, %d) = %d; want %d", tt.cfgMax, tt.periodDays, got, tt.want)
			}
		})
	}
}

func TestBuildFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		quality string
		maxMB   int
		want    string
	}{
		{
			name:    "zero leaves selector untouched",
			quality: config.DefaultQuality,
			maxMB:   0,
			want:    config.DefaultQuality,
		},
		{
			name:    "plain selector gets clause appended",
			quality: "best",
			maxMB:   500,
			want:    "best[filesize<500M]",
		},
		{
			name:    "combined selector clauses bestvideo parts only",
			quality: "bestvideo[height<=1080]+bestaudio/best[height<=720]/best",
			maxMB:   500,
			want:    "bestvideo[height<=1080][filesize<500M]+bestaudio/best[height<=720]/best",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := extractor.BuildFormat(tt.quality, tt.maxMB); got != tt.want {
				t.Errorf("BuildFormat(%q, %d) = %q; want %q", tt.quality, tt.maxMB, got, tt.want)
			}
		})
	}
}

func TestOutputTemplate(t *testing.T) {
	t.Parallel()

	got := extractor.OutputTemplate("/media/youtube")

	if !strings.HasPrefix(got, "/media/youtube"+string(filepath.Separator)) {
		t.Errorf("template %q not rooted in output dir", got)
	}

	for _, part := range []string{"Season %(upload_date>%Y)s", "%(uploader)s", "%(title)s.%(ext)s"} {
		if !strings.Contains(got, part) {
			t.Errorf("template %q missing %q", got, part)
		}
	}
}
