package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunRecordsOutcome(t *testing.T) {
	s := New(nil)
	var calls atomic.Int32
	s.Register(Job{Name: "ok", Interval: time.Hour, Fn: func(context.Context) error {
		calls.Add(1)
		return nil
	}})
	s.Register(Job{Name: "bad", Interval: time.Hour, Fn: func(context.Context) error {
		return errors.New("boom")
	}})

	if err := s.Run(context.Background(), "ok"); err != nil {
		t.Fatalf("Run(ok): %v", err)
	}
	if err := s.Run(context.Background(), "bad"); err == nil || err.Error() != "boom" {
		t.Fatalf("Run(bad) = %v, want boom", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}

	items := s.List()
	if len(items) != 2 || items[0].Name != "bad" || items[1].Name != "ok" {
		t.Fatalf("unexpected list %+v", items)
	}
	if items[0].Status != StatusReject || items[0].Message != "boom" {
		t.Fatalf("bad job state = %+v", items[0])
	}
	if items[1].Status != StatusFulfill || items[1].LastRunAt.IsZero() {
		t.Fatalf("ok job state = %+v", items[1])
	}
}

func TestRunUnknownJob(t *testing.T) {
	if err := New(nil).Run(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestStartRunsOnInterval(t *testing.T) {
	s := New(nil)
	done := make(chan struct{}, 1)
	s.Register(Job{Name: "tick", Interval: 10 * time.Millisecond, Fn: func(context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestRunRefusesOverlap(t *testing.T) {
	s := New(nil)
	started := make(chan struct{})
	release := make(chan struct{})
	s.Register(Job{Name: "slow", Interval: time.Hour, Fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}})

	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background(), "slow") }()
	<-started
	if err := s.Run(context.Background(), "slow"); !errors.Is(err, ErrJobRunning) {
		t.Fatalf("overlapping Run = %v, want ErrJobRunning", err)
	}
	close(release)
	if err := <-errc; err != nil {
		t.Fatalf("first Run: %v", err)
	}
}
