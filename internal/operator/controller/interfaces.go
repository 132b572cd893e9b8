package controller

import (
	"context"

	batchv1 "k8s.io/api/batch/v1"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/operator/probe"
)

// memberProber classifies member pods and drops their self-reported state
// once they are deleted.
type memberProber interface {
	probe.Prober

	// Release forgets whatever the probe backend holds for the given pods.
	Release(ctx context.Context, spec *hsjv1alpha1.BusyProbeSpec, pods ...string) error
}

// memberProvisioner creates and deletes member Jobs.
type memberProvisioner interface {
	// Create creates the member with the given ordinal and returns its name.
	Create(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, ordinal int64) (string, error)

	// Delete deletes a member Job. An absent Job is not an error.
	Delete(ctx context.Context, job *batchv1.Job) error
}
