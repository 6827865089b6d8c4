package filter_test

import (
	"strings"
	"testing"
	"time"

	"github.com/DmitriyLyalyuev/ytsync/internal/entity"
	"github.com/DmitriyLyalyuev/ytsync/internal/filter"
)

var now = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func metaUploaded(daysAgo int) entity.VideoMeta {
	return entity.VideoMeta{
		ID:         "vid",
		UploadDate: now.AddDate(0, 0, -daysAgo).Format("20060102"),
	}
}

func TestMaxAge(t *testing.T) {
	f := filter.MaxAge(now, 30)

	tests := []struct {
		name string
		meta entity.VideoMeta
		want string
	}{
		{"inside_window", metaUploaded(29), ""},
		{"on_cutoff", metaUploaded(30), ""},
		{"outside_window", metaUploaded(31), "old video (before 2026-07-25)"},
		{"missing_date", entity.VideoMeta{ID: "vid"}, "no upload date"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f(tc.meta); got != tc.want {
				t.Fatalf("reason = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestMaxAgeDisabled(t *testing.T) {
	f := filter.MaxAge(now, 0)

	if got := f(entity.VideoMeta{}); got != "" {
		t.Fatalf("disabled filter rejected with %q", got)
	}

	if got := f(metaUploaded(10000)); got != "" {
		t.Fatalf("disabled filter rejected with %q", got)
	}
}

func TestMaxDuration(t *testing.T) {
	f := filter.MaxDuration(600)

	if got := f(entity.VideoMeta{Duration: 599}); got != "" {
		t.Fatalf("short video rejected with %q", got)
	}

	if got := f(entity.VideoMeta{Duration: 600}); got != "" {
		t.Fatalf("video at the limit rejected with %q", got)
	}

	got := f(entity.VideoMeta{Duration: 601})
	if !strings.HasPrefix(got, "too long") {
		t.Fatalf("reason = %q; want a too-long rejection", got)
	}

	// Unknown duration is not a rejection.
	if got := f(entity.VideoMeta{}); got != "" {
		t.Fatalf("unknown duration rejected with %q", got)
	}
}

func TestChainOrderAndShortCircuit(t *testing.T) {
	calls := make([]string, 0, 2)

	first := func(entity.VideoMeta) string {
		calls = append(calls, "first")
		return "stop here"
	}
	second := func(entity.VideoMeta) string {
		calls = append(calls, "second")
		return "never seen"
	}

	got := filter.Chain(first, second)(entity.VideoMeta{})
	if got != "stop here" {
		t.Fatalf("reason = %q; want first filter's reason", got)
	}

	if len(calls) != 1 || calls[0] != "first" {
		t.Fatalf("calls = %v; want only the first filter to run", calls)
	}
}

func TestChainAcceptsWhenAllPass(t *testing.T) {
	f := filter.Chain(
		filter.MaxAge(now, 30),
		filter.MaxDuration(3600),
	)

	meta := metaUploaded(5)
	meta.Duration = 1200

	if got := f(meta); got != "" {
		t.Fatalf("accepted video rejected with %q", got)
	}
}
