package k8s

import (
	"time"

	corev1 "k8s.io/api/core/v1"
)

// IsPodReady reports whether the pod is running and its Ready condition is true.
func IsPodReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}

	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}

	return false
}

// IsPodTerminal reports whether the pod has finished and will never become ready again.
func IsPodTerminal(pod *corev1.Pod) bool {
	return pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed
}

// PodReadySince returns when the pod last became ready, or the zero time if it is not ready.
func PodReadySince(pod *corev1.Pod) time.Time {
	if !IsPodReady(pod) {
		return time.Time{}
	}
	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady {
			return condition.LastTransitionTime.Time
		}
	}
	return time.Time{}
}
