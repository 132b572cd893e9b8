package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	corev1 "k8s.io/api/core/v1"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/util/retry"
)

// Statuses a workload may report about itself.
const (
	ReportStarting = "starting"
	ReportIdle     = "idle"
	ReportBusy     = "busy"
	ReportError    = "error"
)

// Report is the JSON value stored per pod in the status hash.
type Report struct {
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

// RedisStore reads and prunes the hash that workloads report their status into.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects to Redis and verifies the connection, retrying transient failures.
func DialRedis(ctx context.Context, opts *redis.Options, retryOpts ...retry.Option) (*RedisStore, error) {
	client := redis.NewClient(opts)

	err := retry.Do(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, retryOpts...)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return NewRedisStore(client), nil
}

// Lookup returns the report stored for pod under key.
func (s *RedisStore) Lookup(ctx context.Context, key, pod string) (Report, error) {
	raw, err := s.client.HGet(ctx, key, pod).Result()
	if errors.Is(err, redis.Nil) {
		return Report{}, ErrNotReported
	}
	if err != nil {
		return Report{}, fmt.Errorf("failed to read %s[%s]: %w", key, pod, err)
	}

	var report Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return Report{}, fmt.Errorf("malformed report for %s: %w", pod, err)
	}
	return report, nil
}

// Remove deletes the entries of pods that are no longer pool members.
func (s *RedisStore) Remove(ctx context.Context, key string, pods ...string) error {
	if err := s.client.HDel(ctx, key, pods...).Err(); err != nil {
		return fmt.Errorf("failed to remove %d entries from %s: %w", len(pods), key, err)
	}
	return nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (e *Executor) probeRedis(ctx context.Context, pod *corev1.Pod, spec *hsjv1alpha1.BusyProbeSpec) (Result, error) {
	if e.redis == nil {
		return Unknown, fmt.Errorf("redis: %w", ErrNotConfigured)
	}

	key, staleAfter := spec.RedisTarget()
	report, err := e.redis.Lookup(ctx, key, pod.Name)
	if err != nil {
		return Unknown, fmt.Errorf("redis: %w", err)
	}

	age := e.clock.Since(time.Unix(report.UpdatedAt, 0))
	if age > staleAfter {
		return Unknown, fmt.Errorf("redis: %w (%s old)", ErrStaleReport, age.Truncate(time.Second))
	}

	switch report.Status {
	case ReportIdle:
		return Idle, nil
	case ReportBusy:
		return Busy, nil
	default:
		return Unknown, fmt.Errorf("redis: %w", &ReportedStatusError{Status: report.Status})
	}
}
