package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var jobs = schema.GroupResource{Group: "batch", Resource: "jobs"}

// failing returns fn that fails n times with err and then succeeds.
func failing(n int, err error) (func(context.Context) error, *int) {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls <= n {
			return err
		}
		return nil
	}, &calls
}

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	t.Parallel()
	fn, calls := failing(0, nil)

	require.NoError(t, Do(context.Background(), fn))
	assert.Equal(t, 1, *calls)
}

func TestDo_RecoversFromTransientFailures(t *testing.T) {
	t.Parallel()
	fn, calls := failing(2, errors.New("connection refused"))

	require.NoError(t, Do(context.Background(), fn, Delay(time.Millisecond)))
	assert.Equal(t, 3, *calls)
}

func TestDo_GivesUp(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection refused")
	fn, calls := failing(10, cause)

	err := Do(context.Background(), fn, Attempts(3), Delay(time.Millisecond))
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
	assert.Equal(t, 3, *calls)
}

func TestDo_SingleAttempt(t *testing.T) {
	t.Parallel()
	fn, calls := failing(10, errors.New("down"))

	assert.Error(t, Do(context.Background(), fn, Attempts(0)))
	assert.Equal(t, 1, *calls)
}

func TestDo_DelayIsCapped(t *testing.T) {
	t.Parallel()
	fn, calls := failing(4, errors.New("down"))

	start := time.Now()
	require.NoError(t, Do(context.Background(), fn, Delay(5*time.Millisecond), MaxDelay(10*time.Millisecond)))
	assert.Equal(t, 5, *calls, "reaching the cap does not end the retries")
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fn, calls := failing(10, errors.New("down"))

	err := Do(ctx, fn, Delay(time.Millisecond))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, *calls)
}

func TestDo_DeadlineDuringBackoff(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	cause := errors.New("down")
	fn, calls := failing(10, cause)

	err := Do(ctx, fn, Delay(time.Second), Attempts(10))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, cause, "the last failure is kept")
	assert.Equal(t, 1, *calls)
}

func TestDo_OnlyIf(t *testing.T) {
	t.Parallel()

	t.Run("rejected error is returned unchanged", func(t *testing.T) {
		t.Parallel()
		notFound := apierrors.NewNotFound(jobs, "pool-workload-1")
		fn, calls := failing(10, notFound)

		err := Do(context.Background(), fn, OnlyIf(IsRetryable), Delay(time.Millisecond))
		assert.Same(t, notFound, err)
		assert.Equal(t, 1, *calls)
	})

	t.Run("accepted error is retried", func(t *testing.T) {
		t.Parallel()
		conflict := apierrors.NewConflict(schema.GroupResource{Resource: "hotstandbyjobs"}, "pool", errors.New("modified"))
		fn, calls := failing(2, conflict)

		require.NoError(t, Do(context.Background(), fn, OnlyIf(IsRetryable), Delay(time.Millisecond)))
		assert.Equal(t, 3, *calls)
	})
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"conflict", apierrors.NewConflict(jobs, "x", errors.New("stale")), true},
		{"server timeout", apierrors.NewServerTimeout(jobs, "create", 1), true},
		{"timeout", apierrors.NewTimeoutError("slow", 1), true},
		{"throttled", apierrors.NewTooManyRequests("slow down", 1), true},
		{"unavailable", apierrors.NewServiceUnavailable("down"), true},
		{"internal", apierrors.NewInternalError(errors.New("boom")), true},
		{"deadline", fmt.Errorf("list: %w", context.DeadlineExceeded), true},
		{"not found", apierrors.NewNotFound(jobs, "x"), false},
		{"forbidden", apierrors.NewForbidden(jobs, "x", errors.New("quota")), false},
		{"plain", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
