package async

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunParallel_Success(t *testing.T) {
	var count atomic.Int32

	tasks := make([]Task, 0, 5)
	for i := 0; i < 5; i++ {
		tasks = append(tasks, Task{Name: "task", Func: func(_ context.Context) error {
			count.Add(1)
			return nil
		}})
	}

	if err := RunParallel(context.Background(), tasks, 0); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if count.Load() != 5 {
		t.Errorf("expected 5 tasks to run, got %d", count.Load())
	}
}

func TestRunParallel_EmptyTasks(t *testing.T) {
	if err := RunParallel(context.Background(), nil, 4); err != nil {
		t.Errorf("expected no error for empty tasks, got: %v", err)
	}
}

func TestRunParallel_ErrorDoesNotStopOthers(t *testing.T) {
	expectedErr := errors.New("probe failed")
	var completed atomic.Int32

	tasks := []Task{
		{Name: "failing", Func: func(_ context.Context) error {
			return expectedErr
		}},
		{Name: "slow", Func: func(_ context.Context) error {
			time.Sleep(20 * time.Millisecond)
			completed.Add(1)
			return nil
		}},
		{Name: "fast", Func: func(_ context.Context) error {
			completed.Add(1)
			return nil
		}},
	}

	err := RunParallel(context.Background(), tasks, 0)
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected wrapped %v, got %v", expectedErr, err)
	}
	if !strings.Contains(err.Error(), "failing") {
		t.Errorf("expected error to name the task, got %q", err.Error())
	}
	if completed.Load() != 2 {
		t.Errorf("expected other tasks to finish, got %d", completed.Load())
	}
}

func TestRunParallel_RespectsLimit(t *testing.T) {
	var running, peak atomic.Int32

	tasks := make([]Task, 0, 10)
	for i := 0; i < 10; i++ {
		tasks = append(tasks, Task{Name: "task", Func: func(_ context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		}})
	}

	if err := RunParallel(context.Background(), tasks, 3); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if peak.Load() > 3 {
		t.Errorf("expected at most 3 concurrent tasks, saw %d", peak.Load())
	}
}

func TestRunParallel_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	tasks := []Task{{Name: "never", Func: func(_ context.Context) error {
		ran.Store(true)
		return nil
	}}}

	err := RunParallel(ctx, tasks, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if ran.Load() {
		t.Error("task should not run after cancellation")
	}
}
