package controller

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/operator/pool"
)

var (
	// Reconciliation metrics
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hsj",
			Subsystem: "controller",
			Name:      "reconcile_total",
			Help:      "Total number of reconciliations by result",
		},
		[]string{"resource", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hsj",
			Subsystem: "controller",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"resource"},
	)

	// Pool metrics
	poolMembers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hsj",
			Subsystem: "pool",
			Name:      "members",
			Help:      "Number of pool members by status",
		},
		[]string{"resource", "status"},
	)

	poolIdleTarget = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hsj",
			Subsystem: "pool",
			Name:      "idle_target",
			Help:      "Configured idle target of the pool",
		},
		[]string{"resource"},
	)

	// Probe metrics
	probeResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hsj",
			Subsystem: "probe",
			Name:      "results_total",
			Help:      "Total number of busy probes by mode and result",
		},
		[]string{"mode", "result"},
	)

	probeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hsj",
			Subsystem: "probe",
			Name:      "duration_seconds",
			Help:      "Duration of busy probes in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"mode"},
	)

	// Provisioner metrics
	provisionerOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hsj",
			Subsystem: "provisioner",
			Name:      "operations_total",
			Help:      "Total number of member create and delete calls by result",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	// Register metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDuration,
		poolMembers,
		poolIdleTarget,
		probeResultsTotal,
		probeDuration,
		provisionerOperationsTotal,
	)
}

// recordReconcileMetric records a reconciliation result.
func recordReconcileMetric(resource, result string, duration float64) {
	reconcileTotal.WithLabelValues(resource, result).Inc()
	reconcileDuration.WithLabelValues(resource).Observe(duration)
}

// recordPoolMetric records the member counts and idle target of a pool.
func recordPoolMetric(resource string, state *pool.State, idleTarget int32) {
	counts := map[hsjv1alpha1.MemberPhase]int32{
		hsjv1alpha1.MemberIdle:        state.Idle,
		hsjv1alpha1.MemberBusy:        state.Busy,
		hsjv1alpha1.MemberPending:     state.Pending,
		hsjv1alpha1.MemberUnknown:     state.Unknown,
		hsjv1alpha1.MemberTerminating: state.Terminating,
	}
	for phase, n := range counts {
		poolMembers.WithLabelValues(resource, string(phase)).Set(float64(n))
	}
	poolIdleTarget.WithLabelValues(resource).Set(float64(idleTarget))
}

// forgetPoolMetric drops the series of a deleted pool.
func forgetPoolMetric(resource string) {
	poolMembers.DeletePartialMatch(prometheus.Labels{"resource": resource})
	poolIdleTarget.DeleteLabelValues(resource)
}

// recordProbeMetric records a single busy probe.
func recordProbeMetric(mode, result string, duration float64) {
	probeResultsTotal.WithLabelValues(mode, result).Inc()
	probeDuration.WithLabelValues(mode).Observe(duration)
}

// recordProvisionerMetric records a create or delete call.
func recordProvisionerMetric(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	provisionerOperationsTotal.WithLabelValues(operation, result).Inc()
}

// Metrics helper methods that check enableMetrics before recording.

func (r *HotStandbyJobReconciler) recordReconcile(resource, result string, duration float64) {
	if r.enableMetrics {
		recordReconcileMetric(resource, result, duration)
	}
}

func (r *HotStandbyJobReconciler) recordPool(resource string, state *pool.State, idleTarget int32) {
	if r.enableMetrics {
		recordPoolMetric(resource, state, idleTarget)
	}
}

func (r *HotStandbyJobReconciler) forgetPool(resource string) {
	if r.enableMetrics {
		forgetPoolMetric(resource)
	}
}

func (r *HotStandbyJobReconciler) recordProbe(mode, result string, duration float64) {
	if r.enableMetrics {
		recordProbeMetric(mode, result, duration)
	}
}

// metricsObserver feeds provisioner outcomes into the metrics.
type metricsObserver struct{}

// Observe implements provisioning.Observer.
func (metricsObserver) Observe(_ context.Context, operation, _ string, err error) {
	recordProvisionerMetric(operation, err)
}
