package probe

import (
	"strings"

	corev1 "k8s.io/api/core/v1"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
)

// probeAnnotation succeeds when the annotation is "true" in any letter case.
// A missing annotation counts as failure.
func probeAnnotation(pod *corev1.Pod, spec *hsjv1alpha1.BusyProbeSpec) bool {
	return strings.EqualFold(pod.Annotations[spec.EffectiveAnnotationKey()], "true")
}
