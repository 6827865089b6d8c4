package urls

import "testing"

func TestIsURLValid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"https", "https://www.youtube.com/@somechannel", true},
		{"http", "http://youtube.com/playlist?list=PL123", true},
		{"no_scheme", "youtube.com/@somechannel", false},
		{"ftp", "ftp://example.com/file", false},
		{"empty", "", false},
		{"garbage", "://nope", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsURLValid(tc.raw); got != tc.want {
				t.Fatalf("IsURLValid(%q) = %v; want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestFixURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"adds_scheme", "youtube.com/@somechannel", "https://youtube.com/@somechannel"},
		{"keeps_https", "https://youtube.com/@somechannel", "https://youtube.com/@somechannel"},
		{"keeps_http", "http://youtube.com/@somechannel", "http://youtube.com/@somechannel"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := FixURL(tc.raw); got != tc.want {
				t.Fatalf("FixURL(%q) = %q; want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  https://www.youtube.com/watch?v=abc123  ")
	want := "https://www.youtube.com/watch?v=abc123"

	if got != want {
		t.Fatalf("Normalize = %q; want %q", got, want)
	}
}

func TestWatch(t *testing.T) {
	got := Watch("dQw4w9WgXcQ")
	want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	if got != want {
		t.Fatalf("Watch = %q; want %q", got, want)
	}
}
