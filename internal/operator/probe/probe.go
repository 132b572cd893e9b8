package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/clock"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
)

// Result is the tri-state outcome of a busy probe.
type Result string

const (
	Idle    Result = "idle"
	Busy    Result = "busy"
	Unknown Result = "unknown"
)

var (
	// ErrNotConfigured is returned when the probe mode needs a transport the executor was built without.
	ErrNotConfigured = errors.New("probe transport not configured")
	// ErrNoPodIP is returned by the http probe for pods without an assigned IP.
	ErrNoPodIP = errors.New("pod has no IP")
	// ErrNotReported is returned by the redis probe when the pod has no entry.
	ErrNotReported = errors.New("pod has not reported a status")
	// ErrStaleReport is returned by the redis probe when the entry is older than the staleness window.
	ErrStaleReport = errors.New("reported status is stale")
)

// Unknown-reason values surfaced on member status.
const (
	ReasonTimeout       = "ProbeTimeout"
	ReasonUnavailable   = "ProbeUnavailable"
	ReasonNotReported   = "NotReported"
	ReasonStaleReport   = "StaleReport"
	ReasonReportedState = "ReportedState"
	ReasonError         = "ProbeError"
)

// ReportedStatusError is returned by the redis probe for statuses other than idle and busy.
type ReportedStatusError struct {
	Status string
}

func (e *ReportedStatusError) Error() string {
	return fmt.Sprintf("pod reported status %q", e.Status)
}

// Reason maps a probe error to a short CamelCase reason.
func Reason(err error) string {
	var reported *ReportedStatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, ErrNotConfigured):
		return ReasonUnavailable
	case errors.Is(err, ErrNotReported):
		return ReasonNotReported
	case errors.Is(err, ErrStaleReport):
		return ReasonStaleReport
	case errors.As(err, &reported):
		return ReasonReportedState
	default:
		return ReasonError
	}
}

// Prober classifies a single pod.
type Prober interface {
	Probe(ctx context.Context, pod *corev1.Pod, spec *hsjv1alpha1.BusyProbeSpec) (Result, error)
}

// Executor implements Prober for all probe modes.
type Executor struct {
	runner     Runner
	httpClient *http.Client
	redis      *RedisStore
	clock      clock.PassiveClock
}

// Option is a functional option for Executor.
type Option func(*Executor)

// WithRunner sets the remote command transport used by exec probes.
func WithRunner(r Runner) Option {
	return func(e *Executor) {
		e.runner = r
	}
}

// WithHTTPClient sets the client used by http probes.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) {
		e.httpClient = c
	}
}

// WithRedis sets the status store used by redis probes.
func WithRedis(s *RedisStore) Option {
	return func(e *Executor) {
		e.redis = s
	}
}

// WithClock sets the clock used to judge report staleness.
func WithClock(c clock.PassiveClock) Option {
	return func(e *Executor) {
		e.clock = c
	}
}

// NewExecutor creates an executor. Modes whose transport is missing resolve to Unknown.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		httpClient: &http.Client{},
		clock:      clock.RealClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Probe runs the configured check against pod within the probe timeout.
func (e *Executor) Probe(ctx context.Context, pod *corev1.Pod, spec *hsjv1alpha1.BusyProbeSpec) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, spec.Timeout())
	defer cancel()

	var (
		success bool
		err     error
	)
	switch mode := spec.EffectiveMode(); mode {
	case hsjv1alpha1.ProbeModeExec:
		success, err = e.probeExec(ctx, pod, spec)
	case hsjv1alpha1.ProbeModeHTTP:
		success, err = e.probeHTTP(ctx, pod, spec)
	case hsjv1alpha1.ProbeModeAnnotation:
		success = probeAnnotation(pod, spec)
	case hsjv1alpha1.ProbeModeRedis:
		// Self-reported status carries its own polarity.
		return e.probeRedis(ctx, pod, spec)
	default:
		return Unknown, fmt.Errorf("unsupported probe mode %q", mode)
	}
	if err != nil {
		return Unknown, err
	}
	return classify(success, spec.BusyOnSuccess()), nil
}

// Release drops any per-pod state a probe mode keeps outside the cluster.
// Only the redis mode keeps such state.
func (e *Executor) Release(ctx context.Context, spec *hsjv1alpha1.BusyProbeSpec, pods ...string) error {
	if spec.EffectiveMode() != hsjv1alpha1.ProbeModeRedis || e.redis == nil || len(pods) == 0 {
		return nil
	}
	key, _ := spec.RedisTarget()
	return e.redis.Remove(ctx, key, pods...)
}

func classify(success, busyOnSuccess bool) Result {
	if success == busyOnSuccess {
		return Busy
	}
	return Idle
}
