package testing

import (
	"fmt"
	"maps"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/util/labels"
	"github.com/paia-tech/hsj-operator/internal/util/naming"
)

// PoolBuilder provides a fluent interface for constructing test HotStandbyJobs.
// Each method returns a new builder (immutable) for chaining.
type PoolBuilder struct {
	hsj hsjv1alpha1.HotStandbyJob
}

// NewPoolBuilder creates a builder for a valid pool with idleTarget 2 and bounds [0, 5].
func NewPoolBuilder(name string) *PoolBuilder {
	return &PoolBuilder{
		hsj: hsjv1alpha1.HotStandbyJob{
			TypeMeta: metav1.TypeMeta{
				APIVersion: hsjv1alpha1.GroupVersion.String(),
				Kind:       "HotStandbyJob",
			},
			ObjectMeta: metav1.ObjectMeta{
				Name:       name,
				Namespace:  "default",
				UID:        types.UID("hsj-uid-" + name),
				Generation: 1,
			},
			Spec: hsjv1alpha1.HotStandbyJobSpec{
				IdleTarget:  2,
				MinReplicas: 0,
				MaxReplicas: 5,
				JobTemplate: batchv1.JobTemplateSpec{
					ObjectMeta: metav1.ObjectMeta{
						Labels: map[string]string{"app": name},
					},
					Spec: batchv1.JobSpec{
						BackoffLimit: ptr.To[int32](0),
						Template: corev1.PodTemplateSpec{
							ObjectMeta: metav1.ObjectMeta{
								Labels: map[string]string{"app": name},
							},
							Spec: corev1.PodSpec{
								RestartPolicy: corev1.RestartPolicyNever,
								Containers: []corev1.Container{{
									Name:  "worker",
									Image: "busybox:1.36",
								}},
							},
						},
					},
				},
			},
		},
	}
}

// WithNamespace sets the namespace.
func (b *PoolBuilder) WithNamespace(ns string) *PoolBuilder {
	nb := b.clone()
	nb.hsj.Namespace = ns
	return nb
}

// WithIdleTarget sets spec.idleTarget.
func (b *PoolBuilder) WithIdleTarget(n int32) *PoolBuilder {
	nb := b.clone()
	nb.hsj.Spec.IdleTarget = n
	return nb
}

// WithBounds sets spec.minReplicas and spec.maxReplicas.
func (b *PoolBuilder) WithBounds(minReplicas, maxReplicas int32) *PoolBuilder {
	nb := b.clone()
	nb.hsj.Spec.MinReplicas = minReplicas
	nb.hsj.Spec.MaxReplicas = maxReplicas
	return nb
}

// WithScaleDownDelay sets spec.scaleDownDelaySeconds.
func (b *PoolBuilder) WithScaleDownDelay(seconds int32) *PoolBuilder {
	nb := b.clone()
	nb.hsj.Spec.ScaleDownDelaySeconds = seconds
	return nb
}

// WithProbe sets spec.busyProbe.
func (b *PoolBuilder) WithProbe(p hsjv1alpha1.BusyProbeSpec) *PoolBuilder {
	nb := b.clone()
	nb.hsj.Spec.BusyProbe = *p.DeepCopy()
	return nb
}

// WithPaused sets spec.paused.
func (b *PoolBuilder) WithPaused(paused bool) *PoolBuilder {
	nb := b.clone()
	nb.hsj.Spec.Paused = paused
	return nb
}

// WithGeneration sets metadata.generation.
func (b *PoolBuilder) WithGeneration(g int64) *PoolBuilder {
	nb := b.clone()
	nb.hsj.Generation = g
	return nb
}

// WithStatus sets the status.
func (b *PoolBuilder) WithStatus(status hsjv1alpha1.HotStandbyJobStatus) *PoolBuilder {
	nb := b.clone()
	nb.hsj.Status = *status.DeepCopy()
	return nb
}

// Build returns a copy of the HotStandbyJob.
func (b *PoolBuilder) Build() *hsjv1alpha1.HotStandbyJob {
	return b.hsj.DeepCopy()
}

func (b *PoolBuilder) clone() *PoolBuilder {
	return &PoolBuilder{hsj: *b.hsj.DeepCopy()}
}

// MemberBuilder constructs a member Job and its Pod for a pool.
// Each method returns a new builder (immutable) for chaining.
type MemberBuilder struct {
	pool        *hsjv1alpha1.HotStandbyJob
	ordinal     int64
	created     time.Time
	ready       bool
	withPod     bool
	deleting    bool
	finished    batchv1.JobConditionType
	annotations map[string]string
}

// NewMemberBuilder creates a builder for the member with the given ordinal.
// The member has a pending, not yet ready pod.
func NewMemberBuilder(pool *hsjv1alpha1.HotStandbyJob, ordinal int64) *MemberBuilder {
	return &MemberBuilder{
		pool:    pool,
		ordinal: ordinal,
		created: time.Now(),
		withPod: true,
	}
}

// Name returns the member Job name.
func (b *MemberBuilder) Name() string {
	return naming.Member(b.pool.Name, b.ordinal)
}

// CreatedAt sets the Job creation timestamp.
func (b *MemberBuilder) CreatedAt(t time.Time) *MemberBuilder {
	nb := b.clone()
	nb.created = t
	return nb
}

// Ready marks the member's pod running and ready.
func (b *MemberBuilder) Ready() *MemberBuilder {
	nb := b.clone()
	nb.ready = true
	return nb
}

// WithoutPod omits the pod, as for a Job the job controller has not acted on yet.
func (b *MemberBuilder) WithoutPod() *MemberBuilder {
	nb := b.clone()
	nb.withPod = false
	return nb
}

// Terminating marks the Job as being deleted.
func (b *MemberBuilder) Terminating() *MemberBuilder {
	nb := b.clone()
	nb.deleting = true
	return nb
}

// Finished gives the Job a true Complete or Failed condition.
func (b *MemberBuilder) Finished(condition batchv1.JobConditionType) *MemberBuilder {
	nb := b.clone()
	nb.finished = condition
	return nb
}

// WithPodAnnotations sets annotations on the member's pod.
func (b *MemberBuilder) WithPodAnnotations(annotations map[string]string) *MemberBuilder {
	nb := b.clone()
	nb.annotations = maps.Clone(annotations)
	return nb
}

// Job returns the member Job.
func (b *MemberBuilder) Job() *batchv1.Job {
	name := b.Name()
	template := b.pool.Spec.JobTemplate.DeepCopy()

	job := &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name,
			Namespace:         b.pool.Namespace,
			UID:               b.jobUID(),
			CreationTimestamp: metav1.NewTime(b.created),
			Labels:            labels.NewLabelBuilder(b.pool.Name).WithMember(name).BuildOver(template.Labels),
			OwnerReferences: []metav1.OwnerReference{{
				APIVersion:         hsjv1alpha1.GroupVersion.String(),
				Kind:               "HotStandbyJob",
				Name:               b.pool.Name,
				UID:                b.pool.UID,
				Controller:         ptr.To(true),
				BlockOwnerDeletion: ptr.To(true),
			}},
		},
		Spec: template.Spec,
	}
	job.Spec.Template.Labels = labels.NewLabelBuilder(b.pool.Name).WithMember(name).BuildOver(template.Spec.Template.Labels)

	if b.deleting {
		now := metav1.NewTime(b.created.Add(time.Second))
		job.DeletionTimestamp = &now
		job.Finalizers = []string{"batch.kubernetes.io/job-tracking"}
	}
	if b.finished != "" {
		job.Status.Conditions = []batchv1.JobCondition{{
			Type:   b.finished,
			Status: corev1.ConditionTrue,
		}}
	}
	return job
}

// Pod returns the member's pod, or nil when built WithoutPod.
func (b *MemberBuilder) Pod() *corev1.Pod {
	if !b.withPod {
		return nil
	}
	name := b.Name()
	job := b.Job()

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name + "-pod",
			Namespace:         b.pool.Namespace,
			UID:               types.UID("pod-uid-" + name),
			CreationTimestamp: metav1.NewTime(b.created),
			Labels:            maps.Clone(job.Spec.Template.Labels),
			Annotations:       maps.Clone(b.annotations),
			OwnerReferences: []metav1.OwnerReference{{
				APIVersion: "batch/v1",
				Kind:       "Job",
				Name:       name,
				UID:        job.UID,
				Controller: ptr.To(true),
			}},
		},
		Spec: *job.Spec.Template.Spec.DeepCopy(),
		Status: corev1.PodStatus{
			Phase: corev1.PodPending,
		},
	}
	if b.ready {
		pod.Status.Phase = corev1.PodRunning
		pod.Status.PodIP = fmt.Sprintf("10.0.0.%d", b.ordinal%250+1)
		pod.Status.Conditions = []corev1.PodCondition{{
			Type:               corev1.PodReady,
			Status:             corev1.ConditionTrue,
			LastTransitionTime: metav1.NewTime(b.created),
		}}
	}
	return pod
}

// Objects returns the Job and, when present, its Pod.
func (b *MemberBuilder) Objects() []client.Object {
	objs := []client.Object{b.Job()}
	if pod := b.Pod(); pod != nil {
		objs = append(objs, pod)
	}
	return objs
}

func (b *MemberBuilder) jobUID() types.UID {
	return types.UID("job-uid-" + b.Name())
}

func (b *MemberBuilder) clone() *MemberBuilder {
	nb := *b
	nb.annotations = maps.Clone(b.annotations)
	return &nb
}
