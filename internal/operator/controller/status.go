package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/operator/pool"
	"github.com/paia-tech/hsj-operator/internal/util/retry"
)

// Condition reasons
const (
	ReasonIdleTargetMet      = "IdleTargetMet"
	ReasonIdleTargetNotMet   = "IdleTargetNotMet"
	ReasonMaxReplicasReached = "MaxReplicasReached"
	ReasonWithinBounds       = "WithinBounds"
	ReasonCreateFailed       = "CreateFailed"
	ReasonDeleteFailed       = "DeleteFailed"
	ReasonSucceeded          = "Succeeded"
	ReasonValidationFailed   = "ValidationFailed"
	ReasonValid              = "Valid"
	ReasonProbeUnresolved    = "ProbeUnresolved"
	ReasonAllClassified      = "AllClassified"
)

// maxListedMembers caps the member names quoted in a condition message.
const maxListedMembers = 5

// passOutcome carries what one pass did for the status update.
type passOutcome struct {
	plan         scalePlan
	createErr    error
	deleteErr    error
	lastOrdinal  int64
	provisioning bool
}

// buildStatus computes the status for state. Conditions are carried over from
// current so that transition times only move on actual changes.
func buildStatus(hsj *hsjv1alpha1.HotStandbyJob, state *pool.State, out passOutcome, now time.Time) hsjv1alpha1.HotStandbyJobStatus {
	status := hsjv1alpha1.HotStandbyJobStatus{
		IdleCount:          state.Idle,
		BusyCount:          state.Busy,
		PendingCount:       state.Pending,
		UnknownCount:       state.Unknown,
		TerminatingCount:   state.Terminating,
		TotalCount:         state.Total(),
		DesiredTotal:       out.plan.DesiredTotal,
		LastOrdinal:        max(hsj.Status.LastOrdinal, out.lastOrdinal, state.HighestOrdinal),
		Conditions:         cloneConditions(hsj.Status.Conditions),
		LastReconcileTime:  hsj.Status.LastReconcileTime,
		ObservedGeneration: hsj.Generation,
	}

	for _, m := range state.Members {
		ms := hsjv1alpha1.MemberStatus{
			Name:   m.Name,
			Phase:  m.Phase,
			Since:  statusTime(m.Since),
			Reason: m.Reason,
		}
		if !m.SurplusSince.IsZero() {
			ms.SurplusSince = statusTime(m.SurplusSince)
		}
		status.Members = append(status.Members, ms)
	}

	gen := hsj.Generation
	setCondition(&status, hsjv1alpha1.ConditionInvalidSpec, false, ReasonValid, "spec is valid", gen, now)

	ready := state.Idle >= hsj.Spec.IdleTarget
	setCondition(&status, hsjv1alpha1.ConditionReady, ready,
		conditionReason(ready, ReasonIdleTargetMet, ReasonIdleTargetNotMet),
		fmt.Sprintf("%d/%d idle members", state.Idle, hsj.Spec.IdleTarget), gen, now)

	limitMsg := fmt.Sprintf("%d/%d members", state.Total()+state.Terminating, hsj.Spec.MaxReplicas)
	setCondition(&status, hsjv1alpha1.ConditionScalingLimited, out.plan.Limited,
		conditionReason(out.plan.Limited, ReasonMaxReplicasReached, ReasonWithinBounds), limitMsg, gen, now)

	switch {
	case out.createErr != nil:
		setCondition(&status, hsjv1alpha1.ConditionProvisioningFailed, true, ReasonCreateFailed, out.createErr.Error(), gen, now)
	case out.deleteErr != nil:
		setCondition(&status, hsjv1alpha1.ConditionProvisioningFailed, true, ReasonDeleteFailed, out.deleteErr.Error(), gen, now)
	case out.provisioning || meta.FindStatusCondition(status.Conditions, hsjv1alpha1.ConditionProvisioningFailed) != nil:
		setCondition(&status, hsjv1alpha1.ConditionProvisioningFailed, false, ReasonSucceeded, "last provisioning call succeeded", gen, now)
	}

	unknown := state.InPhase(hsjv1alpha1.MemberUnknown)
	if len(unknown) > 0 {
		setCondition(&status, hsjv1alpha1.ConditionMembersUnknown, true, ReasonProbeUnresolved, unknownMessage(unknown), gen, now)
	} else {
		setCondition(&status, hsjv1alpha1.ConditionMembersUnknown, false, ReasonAllClassified, "all members classified", gen, now)
	}

	return status
}

// invalidStatus records a spec violation without touching the member view.
func invalidStatus(hsj *hsjv1alpha1.HotStandbyJob, err error, now time.Time) hsjv1alpha1.HotStandbyJobStatus {
	status := *hsj.Status.DeepCopy()
	status.ObservedGeneration = hsj.Generation
	setCondition(&status, hsjv1alpha1.ConditionInvalidSpec, true, ReasonValidationFailed, err.Error(), hsj.Generation, now)
	setCondition(&status, hsjv1alpha1.ConditionReady, false, ReasonValidationFailed, "spec is invalid, scaling stopped", hsj.Generation, now)
	return status
}

// statusChanged reports whether desired differs from current, ignoring LastReconcileTime.
func statusChanged(current, desired *hsjv1alpha1.HotStandbyJobStatus) bool {
	a, b := current.DeepCopy(), desired.DeepCopy()
	a.LastReconcileTime, b.LastReconcileTime = nil, nil
	return !equality.Semantic.DeepEqual(a, b)
}

// writeStatus persists desired when it differs from the stored status.
// Conflicts are retried against a fresh copy of the resource.
func (r *HotStandbyJobReconciler) writeStatus(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, desired hsjv1alpha1.HotStandbyJobStatus) error {
	if !statusChanged(&hsj.Status, &desired) {
		return nil
	}
	desired.LastReconcileTime = statusTime(r.clock.Now())

	first := true
	return retry.Do(ctx, func(ctx context.Context) error {
		if !first {
			if err := r.Get(ctx, client.ObjectKeyFromObject(hsj), hsj); err != nil {
				return err
			}
		}
		first = false
		hsj.Status = *desired.DeepCopy()
		return r.Status().Update(ctx, hsj)
	},
		retry.Attempts(4),
		retry.Delay(50*time.Millisecond),
		retry.MaxDelay(time.Second),
		retry.OnlyIf(retry.IsRetryable),
	)
}

func setCondition(status *hsjv1alpha1.HotStandbyJobStatus, condType string, value bool, reason, message string, generation int64, now time.Time) {
	meta.SetStatusCondition(&status.Conditions, metav1.Condition{
		Type:               condType,
		Status:             conditionStatus(value),
		Reason:             reason,
		Message:            message,
		ObservedGeneration: generation,
		LastTransitionTime: *statusTime(now),
	})
}

func conditionStatus(ok bool) metav1.ConditionStatus {
	if ok {
		return metav1.ConditionTrue
	}
	return metav1.ConditionFalse
}

func conditionReason(ok bool, trueReason, falseReason string) string {
	if ok {
		return trueReason
	}
	return falseReason
}

func unknownMessage(members []*pool.Member) string {
	names := make([]string, 0, maxListedMembers)
	for i, m := range members {
		if i == maxListedMembers {
			names = append(names, fmt.Sprintf("and %d more", len(members)-maxListedMembers))
			break
		}
		names = append(names, m.Name)
	}
	return fmt.Sprintf("%d members could not be classified: %s", len(members), strings.Join(names, ", "))
}

// statusTime truncates to the second precision the API server stores.
func statusTime(t time.Time) *metav1.Time {
	mt := metav1.NewTime(t.Truncate(time.Second))
	return &mt
}

func cloneConditions(in []metav1.Condition) []metav1.Condition {
	if in == nil {
		return nil
	}
	out := make([]metav1.Condition, len(in))
	for i := range in {
		in[i].DeepCopyInto(&out[i])
	}
	return out
}
