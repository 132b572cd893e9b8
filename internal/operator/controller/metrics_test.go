package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/operator/pool"
	"github.com/paia-tech/hsj-operator/internal/operator/probe"
	"github.com/paia-tech/hsj-operator/internal/operator/provisioning"
	hsjtesting "github.com/paia-tech/hsj-operator/internal/testing"
)

func TestRecordReconcileMetric(t *testing.T) {
	// Reset metrics for testing
	reconcileTotal.Reset()
	reconcileDuration.Reset()

	recordReconcileMetric("default/pool", "success", 0.2)

	counter, err := reconcileTotal.GetMetricWithLabelValues("default/pool", "success")
	assert.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))

	recordReconcileMetric("default/pool", "error", 0.1)

	errorCounter, err := reconcileTotal.GetMetricWithLabelValues("default/pool", "error")
	assert.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(errorCounter))
	assert.Equal(t, 1, testutil.CollectAndCount(reconcileDuration))
}

func TestRecordPoolMetric(t *testing.T) {
	poolMembers.Reset()
	poolIdleTarget.Reset()

	state := &pool.State{Idle: 2, Busy: 3, Pending: 1, Terminating: 1}
	recordPoolMetric("default/pool", state, 4)

	assert.Equal(t, float64(2), testutil.ToFloat64(poolMembers.WithLabelValues("default/pool", "Idle")))
	assert.Equal(t, float64(3), testutil.ToFloat64(poolMembers.WithLabelValues("default/pool", "Busy")))
	assert.Equal(t, float64(1), testutil.ToFloat64(poolMembers.WithLabelValues("default/pool", "Pending")))
	assert.Equal(t, float64(0), testutil.ToFloat64(poolMembers.WithLabelValues("default/pool", "Unknown")))
	assert.Equal(t, float64(4), testutil.ToFloat64(poolIdleTarget.WithLabelValues("default/pool")))

	forgetPoolMetric("default/pool")
	assert.Equal(t, 0, testutil.CollectAndCount(poolMembers))
	assert.Equal(t, 0, testutil.CollectAndCount(poolIdleTarget))
}

func TestRecordProbeMetric(t *testing.T) {
	probeResultsTotal.Reset()
	probeDuration.Reset()

	recordProbeMetric("exec", "idle", 0.01)
	recordProbeMetric("exec", "idle", 0.02)
	recordProbeMetric("redis", "unknown", 0.5)

	assert.Equal(t, float64(2), testutil.ToFloat64(probeResultsTotal.WithLabelValues("exec", "idle")))
	assert.Equal(t, float64(1), testutil.ToFloat64(probeResultsTotal.WithLabelValues("redis", "unknown")))
	assert.Equal(t, 2, testutil.CollectAndCount(probeDuration))
}

func TestRecordProvisionerMetric(t *testing.T) {
	provisionerOperationsTotal.Reset()

	obs := metricsObserver{}
	obs.Observe(t.Context(), provisioning.OperationCreate, "pool-workload-1", nil)
	obs.Observe(t.Context(), provisioning.OperationCreate, "pool-workload-2", errors.New("quota"))
	obs.Observe(t.Context(), provisioning.OperationDelete, "pool-workload-1", nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(provisionerOperationsTotal.WithLabelValues("create", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(provisionerOperationsTotal.WithLabelValues("create", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(provisionerOperationsTotal.WithLabelValues("delete", "success")))
}

func TestReconcile_RecordsMetrics(t *testing.T) {
	reconcileTotal.Reset()
	poolMembers.Reset()
	poolIdleTarget.Reset()
	probeResultsTotal.Reset()
	provisionerOperationsTotal.Reset()

	hsj := hsjtesting.NewPoolBuilder("metrics").WithIdleTarget(1).Build()
	objs := hsjtesting.NewMemberBuilder(hsj, 1).CreatedAt(epoch).Ready().Objects()
	e := newPoolEnv(t, hsj, objs, nil, WithMetrics(true))
	e.prober.Set(member("metrics", 1), probe.Busy)

	e.mustReconcile()

	assert.Equal(t, float64(1), testutil.ToFloat64(reconcileTotal.WithLabelValues("default/metrics", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(poolMembers.WithLabelValues("default/metrics", string(hsjv1alpha1.MemberBusy))))
	assert.Equal(t, float64(1), testutil.ToFloat64(poolMembers.WithLabelValues("default/metrics", string(hsjv1alpha1.MemberPending))))
	assert.Equal(t, float64(1), testutil.ToFloat64(poolIdleTarget.WithLabelValues("default/metrics")))
	assert.Equal(t, float64(1), testutil.ToFloat64(probeResultsTotal.WithLabelValues("exec", "busy")))

	require.NoError(t, e.client.Delete(e.ctx, e.pool()))
	e.mustReconcile()
	assert.Equal(t, 0, testutil.CollectAndCount(poolIdleTarget), "series of deleted pools are dropped")
}

func TestReconcile_MetricsDisabled(t *testing.T) {
	reconcileTotal.Reset()
	provisionerOperationsTotal.Reset()

	hsj := hsjtesting.NewPoolBuilder("quiet").WithIdleTarget(1).Build()
	e := newPoolEnv(t, hsj, nil, nil)

	e.mustReconcile()
	e.advance(time.Second)
	e.mustReconcile()

	assert.Equal(t, 0, testutil.CollectAndCount(reconcileTotal))
	assert.Equal(t, 0, testutil.CollectAndCount(provisionerOperationsTotal))
	assert.Len(t, e.jobs(), 1)
}
