package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/operator/probe"
)

func member(name string, phase hsjv1alpha1.MemberPhase) *Member {
	return &Member{Name: name, Phase: phase}
}

func TestAggregate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		results []probe.Result
		want    probe.Result
	}{
		{"none", nil, probe.Unknown},
		{"all idle", []probe.Result{probe.Idle, probe.Idle}, probe.Idle},
		{"any busy wins", []probe.Result{probe.Unknown, probe.Busy, probe.Idle}, probe.Busy},
		{"unknown over idle", []probe.Result{probe.Idle, probe.Unknown}, probe.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Aggregate(tt.results))
		})
	}
}

func TestSetPhase(t *testing.T) {
	t.Parallel()
	t0 := time.Unix(1000, 0)
	m := &Member{Phase: hsjv1alpha1.MemberIdle, Since: t0, SurplusSince: t0}

	m.SetPhase(hsjv1alpha1.MemberIdle, "", t0.Add(time.Minute))
	assert.Equal(t, t0, m.Since, "same phase keeps since")
	assert.Equal(t, t0, m.SurplusSince)

	m.SetPhase(hsjv1alpha1.MemberBusy, "", t0.Add(2*time.Minute))
	assert.Equal(t, t0.Add(2*time.Minute), m.Since)
	assert.True(t, m.SurplusSince.IsZero(), "leaving idle clears the surplus timer")
}

func TestMarkSurplus(t *testing.T) {
	t.Parallel()
	t0 := time.Unix(1000, 0)
	running := member("b", hsjv1alpha1.MemberIdle)
	running.SurplusSince = t0.Add(-time.Minute)
	s := &State{Members: []*Member{
		member("a", hsjv1alpha1.MemberIdle),
		running,
		member("c", hsjv1alpha1.MemberBusy),
	}}

	s.MarkSurplus(true, t0)
	assert.Equal(t, t0, s.Members[0].SurplusSince)
	assert.Equal(t, t0.Add(-time.Minute), s.Members[1].SurplusSince, "running timer is kept")
	assert.True(t, s.Members[2].SurplusSince.IsZero())

	s.MarkSurplus(false, t0)
	for _, m := range s.Members {
		assert.True(t, m.SurplusSince.IsZero(), m.Name)
	}
}

func TestExpiredSurplus(t *testing.T) {
	t.Parallel()
	now := time.Unix(10_000, 0)
	mk := func(name string, age time.Duration) *Member {
		m := member(name, hsjv1alpha1.MemberIdle)
		m.SurplusSince = now.Add(-age)
		return m
	}
	busy := member("busy", hsjv1alpha1.MemberBusy)
	s := &State{Members: []*Member{
		mk("young", 10*time.Second),
		mk("old-b", 90*time.Second),
		mk("old-a", 90*time.Second),
		mk("older", 120*time.Second),
		mk("edge", 60*time.Second),
		member("no-timer", hsjv1alpha1.MemberIdle),
		busy,
	}}

	expired := s.ExpiredSurplus(now, time.Minute)
	names := make([]string, 0, len(expired))
	for _, m := range expired {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"older", "old-a", "old-b", "edge"}, names)

	next, ok := s.NextSurplusExpiry(now, time.Minute)
	assert.True(t, ok)
	assert.Equal(t, 50*time.Second, next)

	_, ok = (&State{}).NextSurplusExpiry(now, time.Minute)
	assert.False(t, ok)
}

func TestRecountAndLookup(t *testing.T) {
	t.Parallel()
	s := &State{Members: []*Member{
		member("a", hsjv1alpha1.MemberIdle),
		member("b", hsjv1alpha1.MemberBusy),
		member("c", hsjv1alpha1.MemberPending),
		member("d", hsjv1alpha1.MemberUnknown),
		member("e", hsjv1alpha1.MemberTerminating),
		member("f", hsjv1alpha1.MemberIdle),
	}}
	s.Recount()

	assert.Equal(t, int32(2), s.Idle)
	assert.Equal(t, int32(1), s.Busy)
	assert.Equal(t, int32(1), s.Pending)
	assert.Equal(t, int32(1), s.Unknown)
	assert.Equal(t, int32(1), s.Terminating)
	assert.Equal(t, int32(5), s.Total())
	assert.Len(t, s.InPhase(hsjv1alpha1.MemberIdle), 2)

	m, ok := s.Lookup("d")
	assert.True(t, ok)
	assert.Equal(t, hsjv1alpha1.MemberUnknown, m.Phase)
	_, ok = s.Lookup("zz")
	assert.False(t, ok)
}
