package probe

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
)

// Runner executes a command inside a container and returns its exit code.
// It is implemented by k8s.Client.
type Runner interface {
	Exec(ctx context.Context, namespace, pod, container string, command []string) (int, error)
}

func (e *Executor) probeExec(ctx context.Context, pod *corev1.Pod, spec *hsjv1alpha1.BusyProbeSpec) (bool, error) {
	if e.runner == nil {
		return false, fmt.Errorf("exec: %w", ErrNotConfigured)
	}

	container := spec.ExecContainer()
	if container == "" {
		if len(pod.Spec.Containers) == 0 {
			return false, errors.New("exec: pod has no containers")
		}
		container = pod.Spec.Containers[0].Name
	}

	code, err := e.runner.Exec(ctx, pod.Namespace, pod.Name, container, spec.ExecCommand())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return false, fmt.Errorf("exec: %w: %w", ctxErr, err)
		}
		return false, fmt.Errorf("exec: %w", err)
	}
	return code == 0, nil
}
