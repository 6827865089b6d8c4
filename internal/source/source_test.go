package source_test

import (
	"testing"

	"github.com/DmitriyLyalyuev/ytsync/internal/config"
	"github.com/DmitriyLyalyuev/ytsync/internal/entity"
	"github.com/DmitriyLyalyuev/ytsync/internal/source"
	"github.com/DmitriyLyalyuev/ytsync/pkg/ptr"
)

func baseConfig() *config.Config {
	cfg := config.Default()
	cfg.Download.OutputDir = "/media/youtube"
	cfg.Download.DefaultPeriodDays = 30

	return cfg
}

func TestExpandSingleChannel(t *testing.T) {
	cfg := baseConfig()
	cfg.YouTube.Channels = []config.SourceEntry{
		{URL: "https://www.youtube.com/@somechannel", PeriodDays: ptr.Of(7)},
	}

	got := source.Expand(cfg)
	if len(got) != 1 {
		t.Fatalf("expanded %d sources; want 1", len(got))
	}

	want := entity.Source{
		URL:        "https://www.youtube.com/@somechannel",
		Type:       entity.SourceTypeChannel,
		PeriodDays: 7,
		OutputDir:  "/media/youtube",
	}

	if got[0] != want {
		t.Fatalf("source = %+v; want %+v", got[0], want)
	}
}

func TestExpandDefaultsAndOverrides(t *testing.T) {
	cfg := baseConfig()
	cfg.YouTube.Channels = []config.SourceEntry{
		{URL: "https://www.youtube.com/@first"},
		{URL: "https://www.youtube.com/@second", PeriodDays: ptr.Of(0), OutputDir: "/media/archive"},
	}
	cfg.YouTube.Playlists = []config.SourceEntry{
		{URL: "https://www.youtube.com/playlist?list=PL123"},
	}

	got := source.Expand(cfg)
	if len(got) != 3 {
		t.Fatalf("expanded %d sources; want 3", len(got))
	}

	// Channels come before playlists, in file order.
	if got[0].URL != "https://www.youtube.com/@first" || got[0].Type != entity.SourceTypeChannel {
		t.Fatalf("unexpected first source: %+v", got[0])
	}

	if got[0].PeriodDays != 30 || got[0].OutputDir != "/media/youtube" {
		t.Fatalf("defaults not inherited: %+v", got[0])
	}

	// Explicit zero disables the retention window instead of inheriting.
	if got[1].PeriodDays != 0 || got[1].OutputDir != "/media/archive" {
		t.Fatalf("overrides not applied: %+v", got[1])
	}

	if got[2].Type != entity.SourceTypePlaylist {
		t.Fatalf("playlist type lost: %+v", got[2])
	}
}

func TestExpandNormalizesURL(t *testing.T) {
	cfg := baseConfig()
	cfg.YouTube.Playlists = []config.SourceEntry{
		{URL: "  youtube.com/playlist?list=PL42  "},
	}

	got := source.Expand(cfg)
	if len(got) != 1 {
		t.Fatalf("expanded %d sources; want 1", len(got))
	}

	if got[0].URL != "https://youtube.com/playlist?list=PL42" {
		t.Fatalf("url = %q; want normalized https form", got[0].URL)
	}
}

func TestExpandEmpty(t *testing.T) {
	if got := source.Expand(baseConfig()); len(got) != 0 {
		t.Fatalf("expanded %d sources from empty config; want 0", len(got))
	}
}
