// Package handlers implements the operator's CLI commands.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/go-redis/redis/v8"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	k8slabels "k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/config"
	"github.com/paia-tech/hsj-operator/internal/k8s"
	"github.com/paia-tech/hsj-operator/internal/operator/controller"
	"github.com/paia-tech/hsj-operator/internal/operator/probe"
	"github.com/paia-tech/hsj-operator/internal/util/labels"
	"github.com/paia-tech/hsj-operator/internal/util/retry"
)

const eventRecorderName = "hotstandbyjob-controller"

// Run starts the manager with the HotStandbyJob controller and blocks until
// ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger logr.Logger, version string) error {
	ctrl.SetLogger(logger)
	setupLog := logger.WithName("setup")

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	mgr, err := ctrl.NewManager(restConfig, managerOptions(cfg))
	if err != nil {
		return fmt.Errorf("unable to create manager: %w", err)
	}

	kc, err := k8s.NewClient(restConfig)
	if err != nil {
		return fmt.Errorf("unable to create exec client: %w", err)
	}
	probeOpts := []probe.Option{probe.WithRunner(kc)}

	var store *probe.RedisStore
	if cfg.Redis.Addr != "" {
		store, err = probe.DialRedis(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, retry.Attempts(6))
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		probeOpts = append(probeOpts, probe.WithRedis(store))
		setupLog.Info("redis probe mode enabled", "addr", cfg.Redis.Addr)
	}

	if err := controller.NewHotStandbyJobReconciler(
		mgr.GetClient(),
		mgr.GetScheme(),
		mgr.GetEventRecorderFor(eventRecorderName),
		controller.WithMetrics(cfg.Metrics.Enabled),
		controller.WithProber(probe.NewExecutor(probeOpts...)),
		controller.WithResyncInterval(cfg.ResyncInterval),
		controller.WithMaxConcurrentProbes(cfg.MaxConcurrentProbes),
		controller.WithMaxConcurrentReconciles(cfg.MaxConcurrentReconciles),
		controller.WithRateLimiter(cfg.RateLimiter.BaseDelay, cfg.RateLimiter.MaxDelay),
	).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("unable to create controller HotStandbyJob: %w", err)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up health check: %w", err)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up ready check: %w", err)
	}
	if store != nil {
		if err := mgr.AddReadyzCheck("redis", redisCheck(store)); err != nil {
			return fmt.Errorf("unable to set up redis check: %w", err)
		}
	}

	setupLog.Info("starting manager",
		"version", version,
		"namespace", cfg.WatchNamespace,
		"leaderElection", cfg.LeaderElection.Enabled)
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("problem running manager: %w", err)
	}
	return nil
}

// managerOptions maps the operator configuration onto manager options.
func managerOptions(cfg *config.Config) ctrl.Options {
	opts := ctrl.Options{
		Scheme: hsjv1alpha1.Scheme,
		Metrics: metricsserver.Options{
			BindAddress: cfg.MetricsBindAddress,
		},
		HealthProbeBindAddress: cfg.HealthProbeBindAddress,
		LeaderElection:         cfg.LeaderElection.Enabled,
		LeaderElectionID:       cfg.LeaderElection.ID,
		// Safe because the process exits as soon as the manager stops.
		LeaderElectionReleaseOnCancel: true,
	}
	opts.Cache = cache.Options{
		ByObject: memberCacheScope(),
	}
	if cfg.WatchNamespace != "" {
		opts.Cache.DefaultNamespaces = map[string]cache.Config{cfg.WatchNamespace: {}}
	}
	return opts
}

// memberCacheScope limits the Job and Pod informers to pool members.
func memberCacheScope() map[client.Object]cache.ByObject {
	req, err := k8slabels.NewRequirement(labels.KeyName, selection.Exists, nil)
	if err != nil {
		panic(err)
	}
	selector := k8slabels.NewSelector().Add(*req)
	return map[client.Object]cache.ByObject{
		&batchv1.Job{}: {Label: selector},
		&corev1.Pod{}:  {Label: selector},
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// redisCheck reports not ready while the status registry is unreachable.
func redisCheck(p pinger) healthz.Checker {
	return func(req *http.Request) error {
		return p.Ping(req.Context())
	}
}
