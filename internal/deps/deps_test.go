//nolint:testpackage // using internal package access to cover private helpers
package deps

import (
	"archive/tar"
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DmitriyLyalyuev/ytsync/internal/config"
	"github.com/DmitriyLyalyuev/ytsync/internal/errs"

	"github.com/ulikunitz/xz"
)

// makeTarXZ builds a .tar.xz archive holding the given files under a
// top-level directory, the way ffmpeg release archives are laid out.
func makeTarXZ(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer

	xzWriter, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz.NewWriter: %v", err)
	}

	tarWriter := tar.NewWriter(xzWriter)

	for name, content := range files {
		hdr := &tar.Header{
			Name: "ffmpeg-master-latest-linux64-gpl/bin/" + name,
			Mode: 0o755,
			Size: int64(len(content)),
		}

		if err := tarWriter.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header: %v", err)
		}

		if _, err := tarWriter.Write([]byte(content)); err != nil {
			t.Fatalf("write tar body: %v", err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}

	if err := xzWriter.Close(); err != nil {
		t.Fatalf("close xz: %v", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
}

func TestExtractTarXZ(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := filepath.Join(dir, "ffmpeg.tar.xz")

	makeTarXZ(t, archive, map[string]string{
		"ffmpeg":  "ffmpeg binary",
		"ffprobe": "ffprobe binary",
		"LICENSE": "not wanted",
	})

	destDir := t.TempDir()

	targets := targetsFor(BinaryFFmpeg)
	if err := extractTarXZ(archive, destDir, targets); err != nil {
		t.Fatalf("extractTarXZ: %v", err)
	}

	for name, want := range map[string]string{"ffmpeg": "ffmpeg binary", "ffprobe": "ffprobe binary"} {
		data, err := os.ReadFile(filepath.Join(destDir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}

		if string(data) != want {
			t.Errorf("%s content = %q; want %q", name, data, want)
		}
	}

	if _, err := os.Stat(filepath.Join(destDir, "LICENSE")); !os.IsNotExist(err) {
		t.Error("non-target archive member was extracted")
	}
}

func TestExtractTarXZNoTargets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := filepath.Join(dir, "other.tar.xz")

	makeTarXZ(t, archive, map[string]string{"README": "nothing useful"})

	err := extractTarXZ(archive, t.TempDir(), targetsFor(BinaryFFmpeg))
	if err == nil {
		t.Fatal("expected error when archive holds no targets")
	}
}

func TestBinaryURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		binary   Binary
		platform Platform
		override config.Deps
		want     string
		wantErr  bool
	}{
		{
			name:     "ytdlp linux amd64 default",
			binary:   BinaryYTdlp,
			platform: Platform{OS: "linux", Arch: "amd64"},
			want:     ytdlpBase + "yt-dlp_linux",
		},
		{
			name:     "ytdlp linux arm64 default",
			binary:   BinaryYTdlp,
			platform: Platform{OS: "linux", Arch: "arm64"},
			want:     ytdlpBase + "yt-dlp_linux_aarch64",
		},
		{
			name:     "ffmpeg darwin default",
			binary:   BinaryFFmpeg,
			platform: Platform{OS: "darwin", Arch: "arm64"},
			want:     ffmpegBase + "ffmpeg-master-latest-macos64-gpl.tar.xz",
		},
		{
			name:     "configured override wins",
			binary:   BinaryYTdlp,
			platform: Platform{OS: "linux", Arch: "amd64"},
			override: config.Deps{YTdlpURL: "https://mirror.example/yt-dlp"},
			want:     "https://mirror.example/yt-dlp",
		},
		{
			name:     "unsupported platform",
			binary:   BinaryYTdlp,
			platform: Platform{OS: "plan9", Arch: "386"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mgr := New(slog.Default(), &config.Config{Deps: tt.override})
			mgr.platform = tt.platform

			got, err := mgr.binaryURL(tt.binary)
			if tt.wantErr {
				if !errors.Is(err, errs.ErrUnsupportedPlatform) {
					t.Fatalf("err = %v; want ErrUnsupportedPlatform", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("binaryURL: %v", err)
			}

			if got != tt.want {
				t.Errorf("binaryURL = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestEnsureMissingBinaryWithoutAutoInstall(t *testing.T) {
	t.Setenv("PATH", t.TempDir()) // nothing on PATH

	cfg := &config.Config{Deps: config.Deps{BinsDir: t.TempDir()}}

	err := New(slog.Default(), cfg).Ensure(t.Context())
	if !errors.Is(err, errs.ErrBinaryNotFound) {
		t.Fatalf("err = %v; want ErrBinaryNotFound", err)
	}
}

func TestEnsureAutoInstalls(t *testing.T) {
	emptyPath := t.TempDir()
	t.Setenv("PATH", emptyPath)

	binsDir := t.TempDir()
	archive := filepath.Join(t.TempDir(), "ffmpeg.tar.xz")
	makeTarXZ(t, archive, map[string]string{"ffmpeg": "ffmpeg bin", "ffprobe": "ffprobe bin"})

	archiveData, err := os.ReadFile(archive)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/yt-dlp":
			_, _ = w.Write([]byte("yt-dlp bin"))
		case "/ffmpeg.tar.xz":
			_, _ = w.Write(archiveData)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := &config.Config{Deps: config.Deps{
		AutoInstall: true,
		BinsDir:     binsDir,
		YTdlpURL:    srv.URL + "/yt-dlp",
		FFmpegURL:   srv.URL + "/ffmpeg.tar.xz",
	}}

	if err := New(slog.Default(), cfg).Ensure(t.Context()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	for _, name := range []string{"yt-dlp", "ffmpeg", "ffprobe"} {
		info, err := os.Stat(filepath.Join(binsDir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}

		if info.Mode().Perm()&0o111 == 0 {
			t.Errorf("%s is not executable", name)
		}
	}

	if got := os.Getenv("PATH"); !strings.HasPrefix(got, binsDir) {
		t.Errorf("PATH = %q; want prefix %q", got, binsDir)
	}
}
