// Package netscape parses Netscape-format cookie files as written by
// browsers and yt-dlp's --cookies export.
package netscape

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// fieldCount is the number of tab-separated fields in a cookie line:
// domain, flag, path, secure, expiry, name, value.
const fieldCount = 7

// Cookie is a single cookie-file row.
type Cookie struct {
	Domain string
	Flag   string
	Path   string
	Secure string
	Expiry string
	Name   string
	Value  string
}

// Pair renders the cookie as "name=value".
func (c Cookie) Pair() string {
	return c.Name + "=" + c.Value
}

// YouTubeRelated reports whether the cookie belongs to YouTube or the Google
// account infrastructure backing it.
func (c Cookie) YouTubeRelated() bool {
	return strings.Contains(c.Domain, "youtube.com") || strings.Contains(c.Domain, "google.com")
}

// Parse reads cookies from r. Comment and blank lines are ignored, as are
// rows with fewer than seven tab-separated fields.
func Parse(r io.Reader) ([]Cookie, error) {
	var cookies []Cookie

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < fieldCount {
			continue
		}

		cookies = append(cookies, Cookie{
			Domain: parts[0],
			Flag:   parts[1],
			Path:   parts[2],
			Secure: parts[3],
			Expiry: parts[4],
			Name:   parts[5],
			Value:  parts[6],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan cookie file: %w", err)
	}

	return cookies, nil
}

// ParseFile reads cookies from the file at path.
func ParseFile(path string) ([]Cookie, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookie file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// FilterYouTube keeps only cookies relevant to YouTube.
func FilterYouTube(cookies []Cookie) []Cookie {
	var out []Cookie

	for _, c := range cookies {
		if c.YouTubeRelated() {
			out = append(out, c)
		}
	}

	return out
}

// Pairs renders cookies as "name=value" strings.
func Pairs(cookies []Cookie) []string {
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Pair())
	}

	return pairs
}

// Join renders cookies as a single "; "-separated header-style string.
func Join(cookies []Cookie) string {
	return strings.Join(Pairs(cookies), "; ")
}
