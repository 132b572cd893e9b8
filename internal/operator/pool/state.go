package pool

import (
	"sort"
	"time"

	"k8s.io/apimachinery/pkg/types"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
)

// State is the working set of one pool for one reconcile pass.
type State struct {
	Key     types.NamespacedName
	Members []*Member

	Idle        int32
	Busy        int32
	Pending     int32
	Unknown     int32
	Terminating int32

	// HighestOrdinal is the largest ordinal among live member names.
	HighestOrdinal int64
}

// Total is the number of live, non-terminating members.
func (s *State) Total() int32 {
	return s.Idle + s.Busy + s.Pending + s.Unknown
}

// Recount recomputes the aggregate counts from member phases.
func (s *State) Recount() {
	s.Idle, s.Busy, s.Pending, s.Unknown, s.Terminating = 0, 0, 0, 0, 0
	for _, m := range s.Members {
		switch m.Phase {
		case hsjv1alpha1.MemberIdle:
			s.Idle++
		case hsjv1alpha1.MemberBusy:
			s.Busy++
		case hsjv1alpha1.MemberPending:
			s.Pending++
		case hsjv1alpha1.MemberUnknown:
			s.Unknown++
		case hsjv1alpha1.MemberTerminating:
			s.Terminating++
		}
	}
}

// InPhase returns the members currently in phase, in name order.
func (s *State) InPhase(phase hsjv1alpha1.MemberPhase) []*Member {
	var out []*Member
	for _, m := range s.Members {
		if m.Phase == phase {
			out = append(out, m)
		}
	}
	return out
}

// Lookup returns the member with the given name.
func (s *State) Lookup(name string) (*Member, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// MarkSurplus starts the surplus timer of every idle member when surplus is
// positive and clears all timers otherwise. Running timers are kept.
func (s *State) MarkSurplus(surplus bool, now time.Time) {
	for _, m := range s.Members {
		switch {
		case m.Phase != hsjv1alpha1.MemberIdle || !surplus:
			m.SurplusSince = time.Time{}
		case m.SurplusSince.IsZero():
			m.SurplusSince = now
		}
	}
}

// ExpiredSurplus returns idle members whose surplus timer is at least delay old,
// oldest timer first, ties broken by name.
func (s *State) ExpiredSurplus(now time.Time, delay time.Duration) []*Member {
	var out []*Member
	for _, m := range s.Members {
		if m.Phase == hsjv1alpha1.MemberIdle && !m.SurplusSince.IsZero() && now.Sub(m.SurplusSince) >= delay {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SurplusSince.Equal(out[j].SurplusSince) {
			return out[i].SurplusSince.Before(out[j].SurplusSince)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// NextSurplusExpiry returns when the earliest pending surplus timer reaches delay.
// ok is false when no timer is running.
func (s *State) NextSurplusExpiry(now time.Time, delay time.Duration) (time.Duration, bool) {
	var (
		next  time.Duration
		found bool
	)
	for _, m := range s.Members {
		if m.Phase != hsjv1alpha1.MemberIdle || m.SurplusSince.IsZero() {
			continue
		}
		remaining := delay - now.Sub(m.SurplusSince)
		if remaining <= 0 {
			continue
		}
		if !found || remaining < next {
			next, found = remaining, true
		}
	}
	return next, found
}

func (s *State) sortMembers() {
	sort.Slice(s.Members, func(i, j int) bool {
		if s.Members[i].Ordinal != s.Members[j].Ordinal {
			return s.Members[i].Ordinal < s.Members[j].Ordinal
		}
		return s.Members[i].Name < s.Members[j].Name
	})
}
