package sim

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestManualSchedulerDefersNestedRequests(t *testing.T) {
	m := NewManualScheduler()
	calls := 0
	var frame func()
	frame = func() {
		calls++
		m.RequestFrame(frame)
	}
	m.RequestFrame(frame)

	if ran := m.Advance(3); ran != 3 {
		t.Errorf("Advance(3) ran %d frames", ran)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if m.Pending() != 1 {
		t.Errorf("pending = %d, want 1", m.Pending())
	}
}

func TestManualSchedulerEmpty(t *testing.T) {
	if ran := NewManualScheduler().Advance(5); ran != 0 {
		t.Errorf("empty scheduler ran %d frames", ran)
	}
}

func TestTickerSchedulerRunsFramesAndPosts(t *testing.T) {
	ts := NewTickerScheduler(200)
	var frames, posts atomic.Int32

	var frame func()
	frame = func() {
		frames.Add(1)
		ts.RequestFrame(frame)
	}
	ts.RequestFrame(frame)
	ts.Post(func() { posts.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := ts.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Run returned %v", err)
	}
	if frames.Load() == 0 {
		t.Error("no frames fired")
	}
	if posts.Load() != 1 {
		t.Errorf("posts = %d, want 1", posts.Load())
	}
}
