package deps

import (
	"fmt"

	"github.com/DmitriyLyalyuev/ytsync/internal/errs"
)

// URL base paths for binary downloads.
const (
	ytdlpBase  = "https://github.com/yt-dlp/yt-dlp/releases/latest/download/"
	ffmpegBase = "https://github.com/yt-dlp/FFmpeg-Builds/releases/download/latest/"
)

// defaultYTdlpURLs contains default download URLs for yt-dlp per platform.
var defaultYTdlpURLs = map[string]string{
	"darwin/arm64": ytdlpBase + "yt-dlp_macos",
	"darwin/amd64": ytdlpBase + "yt-dlp_macos",
	"linux/arm64":  ytdlpBase + "yt-dlp_linux_aarch64",
	"linux/amd64":  ytdlpBase + "yt-dlp_linux",
}

// defaultFFmpegURLs contains default download URLs for ffmpeg per platform.
// All of them are .tar.xz archives carrying ffmpeg and ffprobe.
var defaultFFmpegURLs = map[string]string{
	"darwin/arm64": ffmpegBase + "ffmpeg-master-latest-macos64-gpl.tar.xz",
	"darwin/amd64": ffmpegBase + "ffmpeg-master-latest-macos64-gpl.tar.xz",
	"linux/arm64":  ffmpegBase + "ffmpeg-master-latest-linuxarm64-gpl.tar.xz",
	"linux/amd64":  ffmpegBase + "ffmpeg-master-latest-linux64-gpl.tar.xz",
}

// binaryURL resolves the download URL for a binary: configured override
// first, then the per-platform default.
func (m *Manager) binaryURL(name Binary) (string, error) {
	switch name {
	case BinaryYTdlp:
		if m.cfg.Deps.YTdlpURL != "" {
			return m.cfg.Deps.YTdlpURL, nil
		}

		if url, ok := defaultYTdlpURLs[m.platform.String()]; ok {
			return url, nil
		}
	case BinaryFFmpeg, BinaryFFprobe:
		if m.cfg.Deps.FFmpegURL != "" {
			return m.cfg.Deps.FFmpegURL, nil
		}

		if url, ok := defaultFFmpegURLs[m.platform.String()]; ok {
			return url, nil
		}
	}

	return "", fmt.Errorf("%w: no %s download for %s", errs.ErrUnsupportedPlatform, name, m.platform)
}
