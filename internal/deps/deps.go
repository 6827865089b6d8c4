// Package deps verifies that the yt-dlp and ffmpeg binaries driving the
// extractor are reachable, optionally installing them into a local bins
// directory when they are not.
package deps

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/DmitriyLyalyuev/ytsync/internal/config"
	"github.com/DmitriyLyalyuev/ytsync/internal/errs"

	"github.com/ulikunitz/xz"
)

// Binary is the name of a required external tool.
type Binary string

// Required binaries.
const (
	BinaryYTdlp   Binary = "yt-dlp"
	BinaryFFmpeg  Binary = "ffmpeg"
	BinaryFFprobe Binary = "ffprobe"
)

const (
	// downloadTimeout is the HTTP client timeout for downloading binaries.
	downloadTimeout = 10 * time.Minute
	// filePermExecutable is the file permission for executable binaries.
	filePermExecutable = 0o755
)

// Platform represents the OS and architecture combination.
type Platform struct {
	OS   string
	Arch string
}

// String returns the platform string in format "os/arch".
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// Manager checks and installs binary dependencies.
type Manager struct {
	log      *slog.Logger
	cfg      *config.Config
	platform Platform
	client   *http.Client
}

// New creates a new dependency manager.
func New(log *slog.Logger, cfg *config.Config) *Manager {
	return &Manager{
		log: log.With(slog.String("package", "deps")),
		cfg: cfg,
		platform: Platform{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		client: &http.Client{
			Timeout: downloadTimeout,
		},
	}
}

// Ensure verifies every required binary is reachable. Binaries on PATH are
// used as-is; missing ones are installed into the bins directory when
// auto-install is enabled and are a fatal error otherwise. When the bins
// directory ends up holding any binary, it is prepended to PATH so yt-dlp
// subprocesses resolve it.
func (m *Manager) Ensure(ctx context.Context) error {
	usedBinsDir := false

	for _, binary := range []Binary{BinaryYTdlp, BinaryFFmpeg} {
		if path, err := exec.LookPath(string(binary)); err == nil {
			m.log.DebugContext(ctx, "binary found on PATH",
				slog.String("binary", string(binary)),
				slog.String("path", path))

			continue
		}

		if m.isInstalled(binary) {
			m.log.DebugContext(ctx, "binary already installed",
				slog.String("binary", string(binary)),
				slog.String("path", m.installedPath(binary)))

			usedBinsDir = true

			continue
		}

		if !m.cfg.Deps.AutoInstall {
			return fmt.Errorf("%w: %s (enable deps.auto_install or install it manually)", errs.ErrBinaryNotFound, binary)
		}

		if err := m.install(ctx, binary); err != nil {
			return fmt.Errorf("install %s: %w", binary, err)
		}

		usedBinsDir = true
	}

	if usedBinsDir {
		if err := m.prependPath(); err != nil {
			return err
		}
	}

	return nil
}

// installedPath is where a binary lives inside the bins directory.
func (m *Manager) installedPath(name Binary) string {
	return filepath.Join(m.cfg.Deps.BinsDir, string(name))
}

// isInstalled reports whether the binary exists in the bins directory with
// non-zero size.
func (m *Manager) isInstalled(name Binary) bool {
	info, err := os.Stat(m.installedPath(name))

	return err == nil && info.Size() > 0
}

func (m *Manager) install(ctx context.Context, name Binary) error {
	log := m.log.With(slog.String("binary", string(name)))

	if err := os.MkdirAll(m.cfg.Deps.BinsDir, filePermExecutable); err != nil {
		return fmt.Errorf("create bins directory: %w", err)
	}

	url, err := m.binaryURL(name)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "downloading binary", slog.String("url", url))

	archivePath, err := m.download(ctx, url)
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)

	var installed []string

	if strings.HasSuffix(url, ".tar.xz") {
		targets := targetsFor(name)

		if err := extractTarXZ(archivePath, m.cfg.Deps.BinsDir, targets); err != nil {
			return fmt.Errorf("extract: %w", err)
		}

		for target := range targets {
			installed = append(installed, filepath.Join(m.cfg.Deps.BinsDir, target))
		}
	} else {
		dest := m.installedPath(name)
		if err := os.Rename(archivePath, dest); err != nil {
			return fmt.Errorf("rename: %w", err)
		}

		installed = append(installed, dest)
	}

	for _, path := range installed {
		if err := os.Chmod(path, filePermExecutable); err != nil {
			return fmt.Errorf("chmod: %w", err)
		}
	}

	log.InfoContext(ctx, "binary installed", slog.Any("paths", installed))

	return nil
}

// download fetches url into a temp file in the bins directory and returns
// the temp file's path.
func (m *Manager) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(m.cfg.Deps.BinsDir, "download-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmpFile.Name()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)

		return "", fmt.Errorf("write file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)

		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tmpPath, nil
}

// targetsFor returns the archive members needed for a binary.
func targetsFor(name Binary) map[string]struct{} {
	if name == BinaryFFmpeg {
		return map[string]struct{}{
			string(BinaryFFmpeg):  {},
			string(BinaryFFprobe): {},
		}
	}

	return map[string]struct{}{string(name): {}}
}

// prependPath puts the bins directory in front of PATH for this process so
// spawned yt-dlp subprocesses resolve the installed binaries.
func (m *Manager) prependPath() error {
	path := m.cfg.Deps.BinsDir + string(os.PathListSeparator) + os.Getenv("PATH")
	if err := os.Setenv("PATH", path); err != nil {
		return fmt.Errorf("prepend PATH: %w", err)
	}

	return nil
}

// extractTarXZ extracts the target members of a .tar.xz archive into
// destDir, flattening any directory structure.
func extractTarXZ(archivePath, destDir string, targets map[string]struct{}) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open tar.xz: %w", err)
	}
	defer file.Close()

	xzReader, err := xz.NewReader(file)
	if err != nil {
		return fmt.Errorf("create xz reader: %w", err)
	}

	tarReader := tar.NewReader(xzReader)
	extracted := 0

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		filename := filepath.Base(header.Name)
		if _, ok := targets[filename]; !ok {
			continue
		}

		destPath := filepath.Join(destDir, filename)

		outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermExecutable)
		if err != nil {
			return fmt.Errorf("create dest file: %w", err)
		}

		_, err = io.Copy(outFile, tarReader)
		outFile.Close()

		if err != nil {
			return fmt.Errorf("extract file: %w", err)
		}

		extracted++

		if extracted == len(targets) {
			return nil
		}
	}

	if extracted == 0 {
		return fmt.Errorf("no target files found in tar archive")
	}

	return nil
}
