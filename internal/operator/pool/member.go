package pool

import (
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/k8s"
	"github.com/paia-tech/hsj-operator/internal/operator/probe"
)

// ReasonNotReady marks a member whose pod never became ready within the startup grace.
const ReasonNotReady = "NotReady"

// Member is one pool member as seen in the current pass.
type Member struct {
	Name      string
	UID       types.UID
	Ordinal   int64
	CreatedAt time.Time
	Job       *batchv1.Job
	Pods      []*corev1.Pod

	Phase  hsjv1alpha1.MemberPhase
	Reason string
	// Since is when the member entered Phase.
	Since time.Time

	LastProbe  time.Time
	LastResult probe.Result
	// SurplusSince is zero unless the member is idle while the pool is over target.
	SurplusSince time.Time
}

// ReadyPods returns the member's pods that can be probed.
func (m *Member) ReadyPods() []*corev1.Pod {
	var ready []*corev1.Pod
	for _, pod := range m.Pods {
		if k8s.IsPodReady(pod) {
			ready = append(ready, pod)
		}
	}
	return ready
}

// PodNames returns the names of all pods the member currently has.
func (m *Member) PodNames() []string {
	names := make([]string, 0, len(m.Pods))
	for _, pod := range m.Pods {
		names = append(names, pod.Name)
	}
	return names
}

// NeedsProbe reports whether the member is ready and has no result fresher than period.
func (m *Member) NeedsProbe(now time.Time, period time.Duration) bool {
	if m.Phase == hsjv1alpha1.MemberTerminating || len(m.ReadyPods()) == 0 {
		return false
	}
	if m.LastProbe.IsZero() || m.LastResult == "" {
		return true
	}
	return now.Sub(m.LastProbe) >= period
}

// ApplyProbe records a probe outcome and moves the member to the matching phase.
func (m *Member) ApplyProbe(result probe.Result, reason string, now time.Time) {
	m.LastProbe = now
	m.LastResult = result
	m.SetPhase(phaseFor(result), reason, now)
}

// SetPhase moves the member to phase, restarting Since on an actual change.
func (m *Member) SetPhase(phase hsjv1alpha1.MemberPhase, reason string, now time.Time) {
	if m.Phase != phase {
		m.Since = now
	}
	m.Phase = phase
	m.Reason = reason
	if phase != hsjv1alpha1.MemberIdle {
		m.SurplusSince = time.Time{}
	}
}

// Aggregate folds the results of a member's pods into one:
// any busy pod makes the member busy, otherwise any unknown pod makes it unknown.
func Aggregate(results []probe.Result) probe.Result {
	if len(results) == 0 {
		return probe.Unknown
	}
	out := probe.Idle
	for _, r := range results {
		switch r {
		case probe.Busy:
			return probe.Busy
		case probe.Unknown:
			out = probe.Unknown
		}
	}
	return out
}

func phaseFor(result probe.Result) hsjv1alpha1.MemberPhase {
	switch result {
	case probe.Idle:
		return hsjv1alpha1.MemberIdle
	case probe.Busy:
		return hsjv1alpha1.MemberBusy
	default:
		return hsjv1alpha1.MemberUnknown
	}
}
