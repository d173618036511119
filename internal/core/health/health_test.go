package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type scripted struct {
	results []bool
	calls   atomic.Int32
}

func (s *scripted) HealthCheck(context.Context) bool {
	n := int(s.calls.Add(1)) - 1
	if n >= len(s.results) {
		return s.results[len(s.results)-1]
	}
	return s.results[n]
}

func TestPollNoHysteresis(t *testing.T) {
	c := scripted{results: []bool{true, false, true, true}}
	m := NewMonitor(&c)

	if m.Connected() || !m.CheckedAt().IsZero() {
		t.Fatal("monitor should start disconnected and unchecked")
	}
	want := []bool{true, false, true, true}
	for i, w := range want {
		if got := m.Poll(context.Background()); got != w || m.Connected() != w {
			t.Fatalf("poll %d = %v, connected %v, want %v", i, got, m.Connected(), w)
		}
	}
	if m.CheckedAt().IsZero() {
		t.Fatal("CheckedAt not updated")
	}
}

func TestStartPollsImmediately(t *testing.T) {
	c := scripted{results: []bool{true}}
	m := NewMonitor(&c, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	if !m.Connected() {
		t.Fatal("first poll should run synchronously")
	}

	deadline := time.Now().Add(time.Second)
	for c.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if c.calls.Load() < 3 {
		t.Fatalf("calls = %d, want periodic polling", c.calls.Load())
	}
}

type slowChecker struct{}

func (slowChecker) HealthCheck(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Second):
		return true
	}
}

func TestPollTimeout(t *testing.T) {
	m := NewMonitor(slowChecker{}, WithTimeout(10*time.Millisecond))
	if m.Poll(context.Background()) {
		t.Fatal("slow check should time out as disconnected")
	}
}
