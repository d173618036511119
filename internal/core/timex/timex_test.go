package timex

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	utc := time.UTC
	want := time.Date(2024, 1, 15, 14, 30, 22, 0, utc)

	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2024-01-15T14:30:22Z", want},
		{"rfc3339 fraction", "2024-01-15T14:30:22.000Z", want},
		{"offset", "2024-01-15T22:30:22+08:00", want},
		{"naive iso", "2024-01-15T14:30:22", want},
		{"naive space", "2024-01-15 14:30:22", want},
		{"epoch seconds", "1705329022", want},
		{"epoch millis", "1705329022000", want},
		{"padded", "  2024-01-15 14:30:22 ", want},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseInLocation(tc.in, utc)
			if err != nil {
				t.Fatalf("ParseInLocation(%q) err = %v", tc.in, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseInLocation(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-45 99:99:99", "-5"} {
		if _, err := Parse(in); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Parse(%q) err = %v, want ErrMalformed", in, err)
		}
	}
	if p := ParsePtr("garbage", time.UTC); p != nil {
		t.Fatalf("ParsePtr(garbage) = %v, want nil", p)
	}
}

func TestParseFilename(t *testing.T) {
	want := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)
	for _, name := range []string{
		"2024-01-15T14-30-22.mp4",
		"cam1/2024-01-15_14-30-22.mp4",
		"20240115_143022.mp4",
		"front20240115T143022x.mkv",
	} {
		got, ok := ParseFilename(name, time.UTC)
		if !ok || !got.Equal(want) {
			t.Fatalf("ParseFilename(%q) = %v %v, want %v", name, got, ok, want)
		}
	}
	if _, ok := ParseFilename("clip.mp4", time.UTC); ok {
		t.Fatal("ParseFilename(clip.mp4) should fail")
	}
	if _, ok := ParseFilename("2024-19-15T14-30-22.mp4", time.UTC); ok {
		t.Fatal("month 19 should be rejected")
	}
}

func TestFormatRaw(t *testing.T) {
	if got := FormatRaw("not a time"); got != "not a time" {
		t.Fatalf("FormatRaw kept %q", got)
	}
	ts := time.Date(2024, 1, 15, 14, 30, 22, 0, time.Local)
	if got := FormatRaw(ts.Format(time.RFC3339)); got != "2024-01-15 14:30:22" {
		t.Fatalf("FormatRaw = %q", got)
	}
	if got := FormatPtr(nil); got != "" {
		t.Fatalf("FormatPtr(nil) = %q", got)
	}
}

func TestTruncateSecond(t *testing.T) {
	ts := time.Date(2024, 1, 15, 14, 30, 22, 999_000_000, time.UTC)
	if got := TruncateSecond(ts); got.Nanosecond() != 0 || got.Second() != 22 {
		t.Fatalf("TruncateSecond = %v", got)
	}
}
