package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStop(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Resolving Gemfile")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("Spinner should not be cancelled after Stop")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var out syncBuffer
	s := newSpinner(ctx, &out, "Resolving Gemfile")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
	if !s.Cancelled() {
		t.Error("Stop after cancellation should still report it")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out syncBuffer
	s := newSpinner(ctx, &out, "Resolving Gemfile")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Resolving Gemfile")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Resolving Gemfile")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Resolved 12 gems")

	if !strings.Contains(out.String(), "Resolved 12 gems") {
		t.Errorf("output %q should contain the success message", out.String())
	}
	if s.Cancelled() {
		t.Error("a finished spinner should not report cancellation")
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Resolving Gemfile")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("gem rack not found")

	if !strings.Contains(out.String(), "gem rack not found") {
		t.Errorf("output %q should contain the error message", out.String())
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Resolving Gemfile")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.SetMessage("Resolving 3/12 rack")
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Resolving Gemfile") {
		t.Errorf("output %q should contain the initial message", got)
	}
	if !strings.Contains(got, "Resolving 3/12 rack") {
		t.Errorf("output %q should contain the updated message", got)
	}
}
