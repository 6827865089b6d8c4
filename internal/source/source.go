// Package source expands the configured channels and playlists into a flat
// ordered list of sync targets. No network I/O happens here.
package source

import (
	"github.com/DmitriyLyalyuev/ytsync/internal/config"
	"github.com/DmitriyLyalyuev/ytsync/internal/entity"
	"github.com/DmitriyLyalyuev/ytsync/pkg/urls"
)

// Expand flattens youtube.channels followed by youtube.playlists, applying
// download.default_period_days and download.output_dir where an entry does
// not set its own.
func Expand(cfg *config.Config) []entity.Source {
	sources := make([]entity.Source, 0, len(cfg.YouTube.Channels)+len(cfg.YouTube.Playlists))

	for _, entry := range cfg.YouTube.Channels {
		sources = append(sources, fromEntry(entry, entity.SourceTypeChannel, cfg))
	}

	for _, entry := range cfg.YouTube.Playlists {
		sources = append(sources, fromEntry(entry, entity.SourceTypePlaylist, cfg))
	}

	return sources
}

func fromEntry(entry config.SourceEntry, typ entity.SourceType, cfg *config.Config) entity.Source {
	src := entity.Source{
		URL:        urls.FixURL(urls.Normalize(entry.URL)),
		Type:       typ,
		PeriodDays: cfg.Download.DefaultPeriodDays,
		OutputDir:  cfg.Download.OutputDir,
	}

	if entry.PeriodDays != nil {
		src.PeriodDays = *entry.PeriodDays
	}

	if entry.OutputDir != "" {
		src.OutputDir = entry.OutputDir
	}

	return src
}
