// cookiedump exports YouTube cookies from a local browser via yt-dlp and
// prints a config.yaml fragment for the cookies section. It is meant to be
// run on the operator's desktop, not on the sync host.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/DmitriyLyalyuev/ytsync/internal/errs"
	"github.com/DmitriyLyalyuev/ytsync/pkg/netscape"

	"github.com/lrstanley/go-ytdlp"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const exportTimeout = 30 * time.Second

var supportedBrowsers = []string{"chrome", "firefox", "safari"}

// fragment is the YAML shape pasted into config.yaml.
type fragment struct {
	Cookies struct {
		Enabled      bool   `yaml:"enabled"`
		CookieString string `yaml:"cookie_string"`
	} `yaml:"cookies"`
}

func main() {
	cmd := &cli.Command{
		Name:      "cookiedump",
		Usage:     "export YouTube cookies from a browser as a ytsync config fragment",
		ArgsUsage: "<" + strings.Join(supportedBrowsers, "|") + ">",
		Action:    run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cookiedump:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	browser := strings.ToLower(cmd.Args().First())

	supported := false

	for _, b := range supportedBrowsers {
		if browser == b {
			supported = true

			break
		}
	}

	if !supported {
		return fmt.Errorf("%w: %q (expected one of %s)", errs.ErrUnsupportedBrowser, browser, strings.Join(supportedBrowsers, ", "))
	}

	tmpFile, err := os.CreateTemp("", "cookies-*.txt")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmpFile.Name()
	tmpFile.Close()

	defer os.Remove(tmpPath)

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	_, err = ytdlp.New().
		CookiesFromBrowser(browser).
		Cookies(tmpPath).
		SkipDownload().
		Simulate().
		Quiet().
		NoWarnings().
		Run(ctx, "https://youtube.com")
	if err != nil {
		return fmt.Errorf("export cookies from %s: %w", browser, err)
	}

	cookies, err := netscape.ParseFile(tmpPath)
	if err != nil {
		return fmt.Errorf("parse exported cookies: %w", err)
	}

	relevant := netscape.FilterYouTube(cookies)
	if len(relevant) == 0 {
		fmt.Println("# no YouTube cookies found")

		return nil
	}

	var out fragment
	out.Cookies.Enabled = true
	out.Cookies.CookieString = netscape.Join(relevant)

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal fragment: %w", err)
	}

	_, _ = os.Stdout.Write(data)

	return nil
}
