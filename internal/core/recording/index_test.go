package recording

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := t0.Add(d)
	return &t
}

func TestContaining(t *testing.T) {
	idx := NewIndex([]Recording{
		{Filename: "no-start.mp4"},
		{Filename: "a.mp4", StartTime: at(0), EndTime: at(10 * time.Minute)},
		{Filename: "open.mp4", StartTime: at(time.Hour)},
	})

	cases := []struct {
		name  string
		t     time.Time
		index int
		found bool
	}{
		{"start boundary", t0, 1, true},
		{"inside", t0.Add(3 * time.Minute), 1, true},
		{"end boundary", t0.Add(10 * time.Minute), 1, true},
		{"gap", t0.Add(30 * time.Minute), -1, false},
		{"assumed window", t0.Add(time.Hour + 12*time.Minute), 2, true},
		{"assumed boundary", t0.Add(time.Hour + 15*time.Minute), 2, true},
		{"past assumed window", t0.Add(time.Hour + 16*time.Minute), -1, false},
		{"before everything", t0.Add(-time.Second), -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, i, ok := idx.Containing(tc.t)
			if ok != tc.found || i != tc.index {
				t.Fatalf("Containing(%v) = %d %v, want %d %v", tc.t, i, ok, tc.index, tc.found)
			}
		})
	}
}

func TestContainingAssumedSegmentOverride(t *testing.T) {
	idx := NewIndex([]Recording{{Filename: "open.mp4", StartTime: at(0)}}, WithAssumedSegment(5*time.Minute))
	if _, _, ok := idx.Containing(t0.Add(6 * time.Minute)); ok {
		t.Fatal("6m should be outside a 5m assumed segment")
	}
	if idx.AssumedSegment() != 5*time.Minute {
		t.Fatalf("AssumedSegment = %v", idx.AssumedSegment())
	}
}

func TestContainingFirstOverlapWins(t *testing.T) {
	idx := NewIndex([]Recording{
		{Filename: "late.mp4", StartTime: at(2 * time.Minute), EndTime: at(20 * time.Minute)},
		{Filename: "early.mp4", StartTime: at(0), EndTime: at(10 * time.Minute)},
	})
	r, i, ok := idx.Containing(t0.Add(5 * time.Minute))
	if !ok || i != 0 || r.Filename != "late.mp4" {
		t.Fatalf("Containing = %s %d %v", r.Filename, i, ok)
	}
}

func TestNearest(t *testing.T) {
	idx := NewIndex([]Recording{
		{Filename: "no-start.mp4"},
		{Filename: "a.mp4", StartTime: at(0)},
		{Filename: "b.mp4", StartTime: at(2 * time.Hour)},
	})
	r, i, d, ok := idx.Nearest(t0.Add(20 * time.Minute))
	if !ok || i != 1 || r.Filename != "a.mp4" || d != 20*time.Minute {
		t.Fatalf("Nearest = %s %d %v %v", r.Filename, i, d, ok)
	}
	_, i, d, _ = idx.Nearest(t0.Add(-10 * time.Minute))
	if i != 1 || d != 10*time.Minute {
		t.Fatalf("Nearest before = %d %v", i, d)
	}
}

func TestNearestTieKeepsFirst(t *testing.T) {
	idx := NewIndex([]Recording{
		{Filename: "b.mp4", StartTime: at(2 * time.Hour)},
		{Filename: "a.mp4", StartTime: at(0)},
	})
	_, i, _, _ := idx.Nearest(t0.Add(time.Hour))
	if i != 0 {
		t.Fatalf("tie resolved to %d, want 0", i)
	}
}

func TestNearestEmpty(t *testing.T) {
	idx := NewIndex([]Recording{{Filename: "no-start.mp4"}})
	if _, i, _, ok := idx.Nearest(t0); ok || i != -1 {
		t.Fatalf("Nearest on index without starts = %d %v", i, ok)
	}
}

func TestSanitizeDropsInvertedEnd(t *testing.T) {
	idx := NewIndex([]Recording{{Filename: "bad.mp4", StartTime: at(time.Hour), EndTime: at(0), SizeBytes: -1}})
	r, _ := idx.At(0)
	if r.EndTime != nil || r.SizeBytes != 0 {
		t.Fatalf("Sanitize kept %+v", r)
	}
	if _, ok := idx.At(1); ok {
		t.Fatal("At out of range should fail")
	}
}

func TestNewIndexCopies(t *testing.T) {
	items := []Recording{{Filename: "a.mp4"}}
	idx := NewIndex(items)
	items[0].Filename = "changed.mp4"
	if r, _ := idx.At(0); r.Filename != "a.mp4" {
		t.Fatalf("index aliased input slice: %s", r.Filename)
	}
}

func TestHasEvent(t *testing.T) {
	closed := Recording{StartTime: at(0), EndTime: at(10 * time.Minute)}
	open := Recording{StartTime: at(0)}

	a := NewAnnotator([]time.Time{t0.Add(10*time.Minute + 500*time.Millisecond)})
	if !a.HasEvent(closed) {
		t.Fatal("event truncated to the end second should count")
	}
	if a.HasEvent(open) {
		t.Fatal("recording without end never reports events")
	}
	if NewAnnotator([]time.Time{t0.Add(11 * time.Minute)}).HasEvent(closed) {
		t.Fatal("event after end should not count")
	}
	if NewAnnotator(nil).HasEvent(closed) {
		t.Fatal("no events")
	}
}

func TestAnnotateAndTimeline(t *testing.T) {
	idx := NewIndex([]Recording{
		{Filename: "a.mp4", StartTime: at(0), EndTime: at(10 * time.Minute)},
		{Filename: "b.mp4"},
		{Filename: "c.mp4", StartTime: at(time.Hour)},
	})
	a := NewAnnotator([]time.Time{t0.Add(time.Minute), t0.Add(time.Hour + time.Minute)})

	flags := idx.Annotate(a)
	if len(flags) != 3 || !flags[0] || flags[1] || flags[2] {
		t.Fatalf("Annotate = %v", flags)
	}

	tl := idx.Timeline(a)
	if len(tl) != 2 {
		t.Fatalf("Timeline len = %d", len(tl))
	}
	if tl[1].Index != 2 || !tl[1].Assumed || tl[1].EndMs-tl[1].StartMs != (15*time.Minute).Milliseconds() {
		t.Fatalf("Timeline[1] = %+v", tl[1])
	}
}
