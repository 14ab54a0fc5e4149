package inventory

import (
	"context"
	"testing"
	"time"
)

func TestNewSweeperClampsInterval(t *testing.T) {
	e := NewEngine(&fakeStore{}, nil, nil)
	s := NewSweeper(e, 10*time.Millisecond)
	if s.interval != time.Second {
		t.Fatalf("interval: got %v, want clamp to 1s", s.interval)
	}
	s = NewSweeper(e, 30*time.Second)
	if s.interval != 30*time.Second {
		t.Fatalf("interval: got %v, want 30s", s.interval)
	}
}

func TestSweeperStopsOnCancel(t *testing.T) {
	e := NewEngine(&fakeStore{}, nil, nil)
	s := NewSweeper(e, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
