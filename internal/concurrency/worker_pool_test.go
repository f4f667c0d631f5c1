package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunVisitsEveryTask(t *testing.T) {
	var seen [50]int32
	err := Run(context.Background(), 4, len(seen), func(_ context.Context, task int) error {
		atomic.AddInt32(&seen[task], 1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, n := range seen {
		if n != 1 {
			t.Errorf("task %d ran %d times", i, n)
		}
	}
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var ran int32
	err := Run(context.Background(), 1, 100, func(_ context.Context, task int) error {
		atomic.AddInt32(&ran, 1)
		if task == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if n := atomic.LoadInt32(&ran); n == 100 {
		t.Error("expected remaining tasks to be skipped")
	}
}

func TestRunNoTasks(t *testing.T) {
	called := false
	err := Run(context.Background(), 3, 0, func(context.Context, int) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Errorf("expected no-op, got err=%v called=%v", err, called)
	}
}
