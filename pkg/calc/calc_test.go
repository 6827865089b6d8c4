package calc

import (
	"testing"
	"time"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name              string
		downloaded, total int
		want              int
	}{
		{"total_zero", 512, 0, 0},
		{"nothing_yet", 0, 2048, 0},
		{"half", 1024, 2048, 50},
		{"rounds_up", 2, 3, 67},
		{"rounds_down", 1, 3, 33},
		{"complete", 2048, 2048, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Progress(tc.downloaded, tc.total)
			if got != tc.want {
				t.Fatalf("Progress(%d, %d) = %d; want %d", tc.downloaded, tc.total, got, tc.want)
			}
		})
	}
}

func TestETA(t *testing.T) {
	t.Run("zero_total", func(t *testing.T) {
		if got := ETA(10, 0, time.Now()); got != 0 {
			t.Fatalf("ETA with zero total = %v; want 0", got)
		}
	})

	t.Run("zero_downloaded", func(t *testing.T) {
		if got := ETA(0, 100, time.Now().Add(-time.Second)); got != 0 {
			t.Fatalf("ETA with zero downloaded = %v; want 0", got)
		}
	})

	t.Run("overshoot_clamped", func(t *testing.T) {
		if got := ETA(150, 100, time.Now().Add(-time.Second)); got != 0 {
			t.Fatalf("ETA past total = %v; want 0", got)
		}
	})

	t.Run("half_done", func(t *testing.T) {
		const tolerance = 50 * time.Millisecond

		elapsed := 2 * time.Second
		got := ETA(50, 100, time.Now().Add(-elapsed))

		if got < elapsed-tolerance || got > elapsed+tolerance {
			t.Fatalf("ETA at half = %v; want about %v", got, elapsed)
		}
	})
}
