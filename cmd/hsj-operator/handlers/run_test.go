package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	k8slabels "k8s.io/apimachinery/pkg/labels"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/config"
	"github.com/paia-tech/hsj-operator/internal/operator/probe"
	"github.com/paia-tech/hsj-operator/internal/util/labels"
)

func TestManagerOptions(t *testing.T) {
	cfg := config.Default()
	cfg.MetricsBindAddress = ":9090"
	cfg.LeaderElection.Enabled = false

	opts := managerOptions(cfg)

	assert.Same(t, hsjv1alpha1.Scheme, opts.Scheme)
	assert.Equal(t, ":9090", opts.Metrics.BindAddress)
	assert.Equal(t, ":8081", opts.HealthProbeBindAddress)
	assert.False(t, opts.LeaderElection)
	assert.Equal(t, "hsj-operator", opts.LeaderElectionID)
	assert.Nil(t, opts.Cache.DefaultNamespaces, "all namespaces by default")
	assert.NotEmpty(t, opts.Cache.ByObject)
}

func TestManagerOptions_WatchNamespace(t *testing.T) {
	cfg := config.Default()
	cfg.WatchNamespace = "inference"

	opts := managerOptions(cfg)

	require.Len(t, opts.Cache.DefaultNamespaces, 1)
	assert.Contains(t, opts.Cache.DefaultNamespaces, "inference")
}

func TestManagerOptions_CachesOnlyMembers(t *testing.T) {
	opts := managerOptions(config.Default())
	require.Len(t, opts.Cache.ByObject, 2)

	member := k8slabels.Set{labels.KeyName: "pool", labels.KeyMember: "pool-workload-1"}
	unrelated := k8slabels.Set{"app": "web"}

	for obj, scope := range opts.Cache.ByObject {
		switch obj.(type) {
		case *batchv1.Job, *corev1.Pod:
		default:
			t.Fatalf("unexpected cache scope for %T", obj)
		}
		require.NotNil(t, scope.Label)
		assert.True(t, scope.Label.Matches(member), "%T", obj)
		assert.False(t, scope.Label.Matches(unrelated), "%T", obj)
	}
}

func TestRedisCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	store := probe.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	check := redisCheck(store)
	req := httptest.NewRequest("GET", "/readyz", nil)

	assert.NoError(t, check(req))

	mr.Close()
	assert.Error(t, check(req))
}
