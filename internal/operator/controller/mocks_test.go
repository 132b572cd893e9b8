package controller

import (
	"context"
	"sync"

	batchv1 "k8s.io/api/batch/v1"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
)

// MockProvisioner is a mock implementation of memberProvisioner for testing.
// Calls without a configured Func go to Delegate when set.
type MockProvisioner struct {
	mu sync.Mutex

	Delegate memberProvisioner

	// Configurable responses
	CreateFunc func(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, ordinal int64) (string, error)
	DeleteFunc func(ctx context.Context, job *batchv1.Job) error

	// Call tracking
	CreateCalls []int64
	DeleteCalls []string
}

func (m *MockProvisioner) Create(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, ordinal int64) (string, error) {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, ordinal)
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, hsj, ordinal)
	}
	if m.Delegate != nil {
		return m.Delegate.Create(ctx, hsj, ordinal)
	}
	return "", nil
}

func (m *MockProvisioner) Delete(ctx context.Context, job *batchv1.Job) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, job.Name)
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, job)
	}
	if m.Delegate != nil {
		return m.Delegate.Delete(ctx, job)
	}
	return nil
}

// Reset clears the configured responses and call tracking.
func (m *MockProvisioner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateFunc, m.DeleteFunc = nil, nil
	m.CreateCalls, m.DeleteCalls = nil, nil
}
