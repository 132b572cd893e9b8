package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/client"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/k8s"
	"github.com/paia-tech/hsj-operator/internal/operator/probe"
	"github.com/paia-tech/hsj-operator/internal/util/labels"
	"github.com/paia-tech/hsj-operator/internal/util/naming"
)

// inFlightTTL bounds how long a create or delete the cache has not caught up
// with is trusted over the cache.
const inFlightTTL = time.Minute

// memory is what the tracker keeps about a member between passes.
type memory struct {
	uid          types.UID
	inFlight     bool
	phase        hsjv1alpha1.MemberPhase
	reason       string
	since        time.Time
	lastProbe    time.Time
	lastResult   probe.Result
	surplusSince time.Time
}

// Tracker holds the per-pool member memory. It is safe for concurrent use
// across pools; passes for the same pool are serialized by the work queue.
type Tracker struct {
	reader client.Reader
	clock  clock.PassiveClock

	mu    sync.Mutex
	pools map[types.NamespacedName]map[string]memory
}

// NewTracker creates a tracker reading Jobs and Pods through reader.
func NewTracker(reader client.Reader, clk clock.PassiveClock) *Tracker {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Tracker{
		reader: reader,
		clock:  clk,
		pools:  make(map[types.NamespacedName]map[string]memory),
	}
}

// Refresh lists the live members of hsj and merges them with remembered state.
func (t *Tracker) Refresh(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob) (*State, error) {
	key := client.ObjectKeyFromObject(hsj)
	selector := client.MatchingLabels(labels.SelectorForPool(hsj.Name))

	jobList := &batchv1.JobList{}
	if err := t.reader.List(ctx, jobList, client.InNamespace(hsj.Namespace), selector); err != nil {
		return nil, fmt.Errorf("failed to list member jobs: %w", err)
	}
	podList := &corev1.PodList{}
	if err := t.reader.List(ctx, podList, client.InNamespace(hsj.Namespace), selector); err != nil {
		return nil, fmt.Errorf("failed to list member pods: %w", err)
	}

	podsByMember := make(map[string][]*corev1.Pod)
	for i := range podList.Items {
		pod := &podList.Items[i]
		if pod.DeletionTimestamp != nil || k8s.IsPodTerminal(pod) {
			continue
		}
		if member := pod.Labels[labels.KeyMember]; member != "" {
			podsByMember[member] = append(podsByMember[member], pod)
		}
	}

	now := t.clock.Now()
	grace := hsj.Spec.BusyProbe.StartupGrace()
	persisted := persistedMembers(hsj)

	t.mu.Lock()
	remembered := t.pools[key]
	t.mu.Unlock()

	state := &State{Key: key}
	listed := make(map[string]bool, len(jobList.Items))
	for i := range jobList.Items {
		job := &jobList.Items[i]
		if !metav1.IsControlledBy(job, hsj) {
			continue
		}
		// Finished Jobs still hold their name until their TTL expires.
		ordinal, _ := naming.ParseOrdinal(hsj.Name, job.Name)
		if ordinal > state.HighestOrdinal {
			state.HighestOrdinal = ordinal
		}
		listed[job.Name] = true
		if IsJobFinished(job) {
			continue
		}

		m := &Member{
			Name:      job.Name,
			UID:       job.UID,
			Ordinal:   ordinal,
			CreatedAt: job.CreationTimestamp.Time,
			Job:       job,
			Pods:      ownedPods(job, podsByMember[job.Name]),
		}

		if mem, ok := remembered[job.Name]; ok && (mem.uid == job.UID || mem.inFlight) {
			m.Phase, m.Reason, m.Since = mem.phase, mem.reason, mem.since
			m.LastProbe, m.LastResult, m.SurplusSince = mem.lastProbe, mem.lastResult, mem.surplusSince
			if pendingDeletion(mem, job, now) {
				state.Members = append(state.Members, m)
				continue
			}
		} else if ms, ok := persisted[job.Name]; ok {
			// First pass after a restart: keep the anti-thrash timer running.
			m.Phase = ms.Phase
			switch ms.Phase {
			case hsjv1alpha1.MemberIdle:
				m.LastResult = probe.Idle
			case hsjv1alpha1.MemberBusy:
				m.LastResult = probe.Busy
			}
			if ms.Since != nil {
				m.Since = ms.Since.Time
			}
			if ms.SurplusSince != nil {
				m.SurplusSince = ms.SurplusSince.Time
			}
		}

		t.derivePhase(m, now, grace)
		state.Members = append(state.Members, m)
	}

	// Jobs created by an earlier pass may not be in the cache yet.
	for name, mem := range remembered {
		if !mem.inFlight || listed[name] || now.Sub(mem.since) >= inFlightTTL {
			continue
		}
		ordinal, _ := naming.ParseOrdinal(hsj.Name, name)
		if ordinal > state.HighestOrdinal {
			state.HighestOrdinal = ordinal
		}
		state.Members = append(state.Members, &Member{
			Name:      name,
			Ordinal:   ordinal,
			CreatedAt: mem.since,
			Phase:     hsjv1alpha1.MemberPending,
			Since:     mem.since,
		})
	}

	state.sortMembers()
	state.Recount()
	return state, nil
}

// pendingDeletion reports whether an earlier pass deleted the member while the
// cache still shows its Job without a deletion timestamp.
func pendingDeletion(mem memory, job *batchv1.Job, now time.Time) bool {
	return mem.phase == hsjv1alpha1.MemberTerminating &&
		mem.uid == job.UID &&
		job.DeletionTimestamp == nil &&
		now.Sub(mem.since) < inFlightTTL
}

// derivePhase sets the phase implied by cluster state. Ready members keep
// their last probe verdict until the next probe replaces it.
func (t *Tracker) derivePhase(m *Member, now time.Time, grace time.Duration) {
	switch {
	case m.Job.DeletionTimestamp != nil:
		m.SetPhase(hsjv1alpha1.MemberTerminating, "", now)
	case len(m.ReadyPods()) == 0:
		m.LastResult = ""
		if !m.CreatedAt.IsZero() && now.Sub(m.CreatedAt) >= grace {
			m.SetPhase(hsjv1alpha1.MemberUnknown, ReasonNotReady, now)
		} else {
			m.SetPhase(hsjv1alpha1.MemberPending, "", now)
		}
	case m.LastResult != "":
		reason := m.Reason
		if m.LastResult != probe.Unknown {
			reason = ""
		}
		m.SetPhase(phaseFor(m.LastResult), reason, now)
	default:
		m.SetPhase(hsjv1alpha1.MemberPending, "", now)
	}
	if m.Since.IsZero() {
		m.Since = now
	}
}

// Commit stores the outcome of a pass so the next Refresh can build on it.
// Members absent from state are forgotten. Members without a Job were created
// during the pass and are kept as in flight until a Refresh lists them.
func (t *Tracker) Commit(state *State) {
	mems := make(map[string]memory, len(state.Members))
	for _, m := range state.Members {
		mems[m.Name] = memory{
			uid:          m.UID,
			inFlight:     m.Job == nil,
			phase:        m.Phase,
			reason:       m.Reason,
			since:        m.Since,
			lastProbe:    m.LastProbe,
			lastResult:   m.LastResult,
			surplusSince: m.SurplusSince,
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.pools[state.Key] = mems
}

// Forget drops everything remembered about a pool.
func (t *Tracker) Forget(key types.NamespacedName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pools, key)
}

// Tracked returns the number of pools with remembered state.
func (t *Tracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pools)
}

// IsJobFinished reports whether the Job has a true Complete or Failed condition.
func IsJobFinished(job *batchv1.Job) bool {
	for _, c := range job.Status.Conditions {
		if (c.Type == batchv1.JobComplete || c.Type == batchv1.JobFailed) && c.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

// ownedPods filters out pods whose controller is some other Job that reused the name.
func ownedPods(job *batchv1.Job, pods []*corev1.Pod) []*corev1.Pod {
	if job.UID == "" {
		return pods
	}
	out := pods[:0:0]
	for _, pod := range pods {
		if ref := metav1.GetControllerOf(pod); ref != nil && ref.UID != job.UID {
			continue
		}
		out = append(out, pod)
	}
	return out
}

func persistedMembers(hsj *hsjv1alpha1.HotStandbyJob) map[string]hsjv1alpha1.MemberStatus {
	if len(hsj.Status.Members) == 0 {
		return nil
	}
	out := make(map[string]hsjv1alpha1.MemberStatus, len(hsj.Status.Members))
	for _, ms := range hsj.Status.Members {
		out[ms.Name] = ms
	}
	return out
}
