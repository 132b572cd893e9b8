package controller

import (
	"time"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/operator/pool"
)

// scalePlan is the outcome of one scaling decision.
type scalePlan struct {
	// Create is the number of members to create.
	Create int32
	// Delete lists the idle members to delete, oldest surplus first.
	Delete []*pool.Member
	// Limited is set when maxReplicas keeps the pool from reaching its idle target.
	Limited bool
	// DesiredTotal is busy + idleTarget clamped to [minReplicas, maxReplicas].
	DesiredTotal int32
}

// planScaling decides how many members to create or which to delete.
// It starts and clears surplus timers on state as a side effect.
// Scale-up and scale-down never happen in the same pass.
func planScaling(spec *hsjv1alpha1.HotStandbyJobSpec, state *pool.State, now time.Time) scalePlan {
	total := state.Total()
	plan := scalePlan{
		DesiredTotal: clamp(state.Busy+spec.IdleTarget, spec.MinReplicas, spec.MaxReplicas),
	}

	headroom := max(spec.MaxReplicas-(total+state.Terminating), 0)
	need := max(spec.IdleTarget-(state.Idle+state.Pending), spec.MinReplicas-total, 0)
	if need > 0 {
		state.MarkSurplus(false, now)
		plan.Create = min(need, headroom)
		plan.Limited = plan.Create < need
		return plan
	}

	surplus := state.Idle - spec.IdleTarget
	state.MarkSurplus(surplus > 0, now)
	if surplus <= 0 {
		return plan
	}

	removable := min(surplus, total-spec.MinReplicas)
	if removable <= 0 {
		return plan
	}
	expired := state.ExpiredSurplus(now, spec.ScaleDownDelay())
	if int32(len(expired)) > removable {
		expired = expired[:removable]
	}
	plan.Delete = expired
	return plan
}

// nextResync returns the requeue interval: the resync interval, shortened to
// the next surplus expiry or probe period when those come sooner.
func nextResync(spec *hsjv1alpha1.HotStandbyJobSpec, state *pool.State, now time.Time, resync time.Duration) time.Duration {
	next := resync
	if d, ok := state.NextSurplusExpiry(now, spec.ScaleDownDelay()); ok && d < next {
		next = d
	}
	if p := spec.BusyProbe.Period(); p > 0 && p < next && len(state.Members) > 0 {
		next = p
	}
	return next
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
