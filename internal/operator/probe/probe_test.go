package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
)

// MockRunner records exec calls and returns a configurable exit code.
type MockRunner struct {
	mu       sync.Mutex
	ExecFunc func(ctx context.Context, namespace, pod, container string, command []string) (int, error)
	Calls    []execCall
}

type execCall struct {
	Namespace   string
	Pod         string
	Container   string
	Command     []string
	HasDeadline bool
}

func (m *MockRunner) Exec(ctx context.Context, namespace, pod, container string, command []string) (int, error) {
	_, hasDeadline := ctx.Deadline()
	m.mu.Lock()
	m.Calls = append(m.Calls, execCall{namespace, pod, container, command, hasDeadline})
	m.mu.Unlock()
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, namespace, pod, container, command)
	}
	return 0, nil
}

func testPod(name string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: "main"}, {Name: "sidecar"}},
		},
		Status: corev1.PodStatus{Phase: corev1.PodRunning, PodIP: "127.0.0.1"},
	}
}

func TestExecutor_Exec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		code       int
		err        error
		polarity   *bool
		want       Result
		wantReason string
	}{
		{name: "success is busy", code: 0, want: Busy},
		{name: "failure is idle", code: 1, want: Idle},
		{name: "inverted success is idle", code: 0, polarity: ptr.To(false), want: Idle},
		{name: "inverted failure is busy", code: 2, polarity: ptr.To(false), want: Busy},
		{name: "transport error", code: -1, err: errors.New("connection refused"), want: Unknown, wantReason: ReasonError},
		{name: "deadline", code: -1, err: context.DeadlineExceeded, want: Unknown, wantReason: ReasonTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runner := &MockRunner{ExecFunc: func(context.Context, string, string, string, []string) (int, error) {
				return tt.code, tt.err
			}}
			e := NewExecutor(WithRunner(runner))
			spec := &hsjv1alpha1.BusyProbeSpec{SuccessIsBusy: tt.polarity}

			got, err := e.Probe(context.Background(), testPod("pool-workload-1-x"), spec)
			assert.Equal(t, tt.want, got)
			if tt.wantReason == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantReason, Reason(err))
			}
		})
	}
}

func TestExecutor_ExecTarget(t *testing.T) {
	t.Parallel()

	t.Run("defaults to first container and default command", func(t *testing.T) {
		t.Parallel()
		runner := &MockRunner{}
		e := NewExecutor(WithRunner(runner))

		_, err := e.Probe(context.Background(), testPod("p"), &hsjv1alpha1.BusyProbeSpec{})
		require.NoError(t, err)
		require.Len(t, runner.Calls, 1)
		assert.Equal(t, "default", runner.Calls[0].Namespace)
		assert.Equal(t, "main", runner.Calls[0].Container)
		assert.Equal(t, []string{"cat", "/tmp/healthy"}, runner.Calls[0].Command)
		assert.True(t, runner.Calls[0].HasDeadline, "exec must run under the probe timeout")
	})

	t.Run("explicit container and command", func(t *testing.T) {
		t.Parallel()
		runner := &MockRunner{}
		e := NewExecutor(WithRunner(runner))
		spec := &hsjv1alpha1.BusyProbeSpec{
			Exec: &hsjv1alpha1.ExecProbe{Command: []string{"/check"}, Container: "sidecar"},
		}

		_, err := e.Probe(context.Background(), testPod("p"), spec)
		require.NoError(t, err)
		assert.Equal(t, "sidecar", runner.Calls[0].Container)
		assert.Equal(t, []string{"/check"}, runner.Calls[0].Command)
	})

	t.Run("blocked runner times out", func(t *testing.T) {
		t.Parallel()
		runner := &MockRunner{ExecFunc: func(ctx context.Context, _, _, _ string, _ []string) (int, error) {
			<-ctx.Done()
			return -1, errors.New("stream closed")
		}}
		e := NewExecutor(WithRunner(runner))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		got, err := e.Probe(ctx, testPod("p"), &hsjv1alpha1.BusyProbeSpec{})
		assert.Equal(t, Unknown, got)
		assert.Equal(t, ReasonTimeout, Reason(err))
	})

	t.Run("no runner", func(t *testing.T) {
		t.Parallel()
		got, err := NewExecutor().Probe(context.Background(), testPod("p"), &hsjv1alpha1.BusyProbeSpec{})
		assert.Equal(t, Unknown, got)
		assert.Equal(t, ReasonUnavailable, Reason(err))
	})

	t.Run("pod without containers", func(t *testing.T) {
		t.Parallel()
		pod := testPod("p")
		pod.Spec.Containers = nil
		got, err := NewExecutor(WithRunner(&MockRunner{})).Probe(context.Background(), pod, &hsjv1alpha1.BusyProbeSpec{})
		assert.Equal(t, Unknown, got)
		assert.Error(t, err)
	})
}

func serverPort(t *testing.T, srv *httptest.Server) int32 {
	t.Helper()
	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return int32(port)
}

func TestExecutor_HTTP(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	status := map[string]int{"/busy": http.StatusOK, "/idle": http.StatusServiceUnavailable}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		code, ok := status[r.URL.Path]
		mu.Unlock()
		if !ok {
			code = http.StatusNotFound
		}
		w.WriteHeader(code)
		_, _ = fmt.Fprintln(w, "ok")
	}))
	defer srv.Close()
	port := serverPort(t, srv)

	httpSpec := func(path string) *hsjv1alpha1.BusyProbeSpec {
		return &hsjv1alpha1.BusyProbeSpec{
			Mode: hsjv1alpha1.ProbeModeHTTP,
			HTTP: &hsjv1alpha1.HTTPProbe{Port: port, Path: path},
		}
	}
	e := NewExecutor(WithHTTPClient(srv.Client()))

	got, err := e.Probe(context.Background(), testPod("p"), httpSpec("/busy"))
	require.NoError(t, err)
	assert.Equal(t, Busy, got)

	got, err = e.Probe(context.Background(), testPod("p"), httpSpec("/idle"))
	require.NoError(t, err)
	assert.Equal(t, Idle, got, "non-2xx is probe failure, not unknown")

	noIP := testPod("p")
	noIP.Status.PodIP = ""
	got, err = e.Probe(context.Background(), noIP, httpSpec("/busy"))
	assert.Equal(t, Unknown, got)
	assert.ErrorIs(t, err, ErrNoPodIP)
}

func TestExecutor_HTTPUnreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	port := serverPort(t, srv)
	srv.Close()

	spec := &hsjv1alpha1.BusyProbeSpec{
		Mode: hsjv1alpha1.ProbeModeHTTP,
		HTTP: &hsjv1alpha1.HTTPProbe{Port: port},
	}
	got, err := NewExecutor().Probe(context.Background(), testPod("p"), spec)
	assert.Equal(t, Unknown, got)
	assert.Error(t, err)
}

func TestExecutor_Annotation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		annotations map[string]string
		key         string
		want        Result
	}{
		{name: "true", annotations: map[string]string{"paia.tech/busy": "true"}, want: Busy},
		{name: "mixed case", annotations: map[string]string{"paia.tech/busy": "TRUE"}, want: Busy},
		{name: "false", annotations: map[string]string{"paia.tech/busy": "false"}, want: Idle},
		{name: "missing", want: Idle},
		{name: "custom key", annotations: map[string]string{"example.com/working": "True"}, key: "example.com/working", want: Busy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pod := testPod("p")
			pod.Annotations = tt.annotations
			spec := &hsjv1alpha1.BusyProbeSpec{Mode: hsjv1alpha1.ProbeModeAnnotation, AnnotationKey: tt.key}

			got, err := NewExecutor().Probe(context.Background(), pod, spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecutor_UnsupportedMode(t *testing.T) {
	t.Parallel()
	got, err := NewExecutor().Probe(context.Background(), testPod("p"), &hsjv1alpha1.BusyProbeSpec{Mode: "grpc"})
	assert.Equal(t, Unknown, got)
	assert.Error(t, err)
}

func TestReason(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", Reason(nil))
	assert.Equal(t, ReasonTimeout, Reason(fmt.Errorf("exec: %w", context.DeadlineExceeded)))
	assert.Equal(t, ReasonUnavailable, Reason(fmt.Errorf("redis: %w", ErrNotConfigured)))
	assert.Equal(t, ReasonNotReported, Reason(ErrNotReported))
	assert.Equal(t, ReasonStaleReport, Reason(ErrStaleReport))
	assert.Equal(t, ReasonReportedState, Reason(fmt.Errorf("redis: %w", &ReportedStatusError{Status: "error"})))
	assert.Equal(t, ReasonError, Reason(errors.New("boom")))
}
