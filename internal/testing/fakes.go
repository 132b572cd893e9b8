package testing

import (
	"context"
	"sync"

	corev1 "k8s.io/api/core/v1"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/operator/probe"
	"github.com/paia-tech/hsj-operator/internal/util/labels"
)

// FakeProber returns scripted results per member. Members without a script are idle.
type FakeProber struct {
	mu       sync.Mutex
	results  map[string]probe.Result
	errs     map[string]error
	calls    map[string]int
	released []string
}

// NewFakeProber creates a prober that reports every member idle.
func NewFakeProber() *FakeProber {
	return &FakeProber{
		results: make(map[string]probe.Result),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

// Set scripts the result for a member.
func (f *FakeProber) Set(member string, result probe.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[member] = result
	delete(f.errs, member)
}

// Fail scripts an Unknown result with err for a member.
func (f *FakeProber) Fail(member string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[member] = probe.Unknown
	f.errs[member] = err
}

// Probe implements probe.Prober.
func (f *FakeProber) Probe(_ context.Context, pod *corev1.Pod, _ *hsjv1alpha1.BusyProbeSpec) (probe.Result, error) {
	member := pod.Labels[labels.KeyMember]

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[member]++
	if err := f.errs[member]; err != nil {
		return probe.Unknown, err
	}
	if r, ok := f.results[member]; ok {
		return r, nil
	}
	return probe.Idle, nil
}

// Release records released pods.
func (f *FakeProber) Release(_ context.Context, _ *hsjv1alpha1.BusyProbeSpec, pods ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, pods...)
	return nil
}

// Calls returns how often a member was probed.
func (f *FakeProber) Calls(member string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[member]
}

// TotalCalls returns the number of probes across all members.
func (f *FakeProber) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Released returns the pods passed to Release so far.
func (f *FakeProber) Released() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.released...)
}
