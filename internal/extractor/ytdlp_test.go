package extractor_test

import (
	"testing"

	"github.com/DmitriyLyalyuev/ytsync/internal/extractor"
)

func TestIsRateLimited(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "http 400",
			text: "ERROR: unable to download webpage: HTTP Error 400: Bad Request",
			want: true,
		},
		{
			name: "precondition check",
			text: "ERROR: [youtube] Precondition check failed",
			want: true,
		},
		{
			name: "plain download failure",
			text: "ERROR: [youtube] xyz: Video unavailable",
			want: false,
		},
		{
			name: "empty",
			text: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := extractor.IsRateLimited(tt.text); got != tt.want {
				t.Errorf("IsRateLimited(%q) = %v; want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseDownloadOutput(t *testing.T) {
	t.Parallel()

	stdout := `{"id":"abc123","title":"Some Video","uploader":"Chan","upload_date":"20260810","duration":634.0,"filename":"partial.mp4"}
/media/youtube/Season 2026/Chan - 2026-08-10 - Some Video.mp4
`

	info, filename, err := extractor.ParseDownloadOutput(stdout)
	if err != nil {
		t.Fatalf("ParseDownloadOutput: %v", err)
	}

	if info.ID != "abc123" || info.Title != "Some Video" || info.Uploader != "Chan" {
		t.Errorf("unexpected info: %+v", info)
	}

	if want := "/media/youtube/Season 2026/Chan - 2026-08-10 - Some Video.mp4"; filename != want {
		t.Errorf("filename = %q; want %q", filename, want)
	}
}

func TestParseDownloadOutputFallsBackToJSONFilename(t *testing.T) {
	t.Parallel()

	stdout := `{"id":"abc123","title":"Some Video","filename":"from-json.mp4"}`

	_, filename, err := extractor.ParseDownloadOutput(stdout)
	if err != nil {
		t.Fatalf("ParseDownloadOutput: %v", err)
	}

	if filename != "from-json.mp4" {
		t.Errorf("filename = %q; want %q", filename, "from-json.mp4")
	}
}

func TestParseDownloadOutputNoInfo(t *testing.T) {
	t.Parallel()

	if _, _, err := extractor.ParseDownloadOutput("noise\nmore noise\n"); err == nil {
		t.Fatal("expected error for output without video info")
	}
}
