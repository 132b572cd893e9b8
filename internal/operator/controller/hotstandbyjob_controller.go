package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	"k8s.io/client-go/util/workqueue"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/operator/pool"
	"github.com/paia-tech/hsj-operator/internal/operator/probe"
	"github.com/paia-tech/hsj-operator/internal/operator/provisioning"
	"github.com/paia-tech/hsj-operator/internal/util/async"
	"github.com/paia-tech/hsj-operator/internal/util/labels"
)

const (
	defaultResyncInterval          = 10 * time.Second
	defaultMaxConcurrentProbes     = 16
	defaultMaxConcurrentReconciles = 4
	defaultRateLimiterBaseDelay    = time.Second
	defaultRateLimiterMaxDelay     = 5 * time.Minute
)

// Event reasons
const (
	EventReasonScalingUp          = "ScalingUp"
	EventReasonScalingDown        = "ScalingDown"
	EventReasonMemberCreated      = "MemberCreated"
	EventReasonMemberDeleted      = "MemberDeleted"
	EventReasonProvisioningFailed = "ProvisioningFailed"
	EventReasonInvalidSpec        = "InvalidSpec"
	EventReasonProbeUnknown       = "ProbeUnknown"
)

// HotStandbyJobReconciler reconciles a HotStandbyJob object.
type HotStandbyJobReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	tracker     *pool.Tracker
	prober      memberProber
	provisioner memberProvisioner
	clock       clock.PassiveClock

	enableMetrics           bool
	resyncInterval          time.Duration
	maxConcurrentProbes     int
	maxConcurrentReconciles int
	rateLimiterBaseDelay    time.Duration
	rateLimiterMaxDelay     time.Duration
}

// Option is a functional option for HotStandbyJobReconciler.
type Option func(*HotStandbyJobReconciler)

// WithMetrics enables or disables metrics recording.
func WithMetrics(enabled bool) Option {
	return func(r *HotStandbyJobReconciler) {
		r.enableMetrics = enabled
	}
}

// WithClock sets the clock used for phase times and surplus timers.
func WithClock(c clock.PassiveClock) Option {
	return func(r *HotStandbyJobReconciler) {
		r.clock = c
	}
}

// WithResyncInterval sets the longest time between two passes of a pool.
func WithResyncInterval(d time.Duration) Option {
	return func(r *HotStandbyJobReconciler) {
		if d > 0 {
			r.resyncInterval = d
		}
	}
}

// WithMaxConcurrentProbes bounds the probes in flight during one pass.
func WithMaxConcurrentProbes(n int) Option {
	return func(r *HotStandbyJobReconciler) {
		if n > 0 {
			r.maxConcurrentProbes = n
		}
	}
}

// WithMaxConcurrentReconciles sets how many pools are reconciled at once.
func WithMaxConcurrentReconciles(n int) Option {
	return func(r *HotStandbyJobReconciler) {
		if n > 0 {
			r.maxConcurrentReconciles = n
		}
	}
}

// WithRateLimiter sets the per-pool backoff applied after failed passes.
func WithRateLimiter(baseDelay, maxDelay time.Duration) Option {
	return func(r *HotStandbyJobReconciler) {
		r.rateLimiterBaseDelay = baseDelay
		r.rateLimiterMaxDelay = maxDelay
	}
}

// WithProber sets the busy probe implementation.
func WithProber(p memberProber) Option {
	return func(r *HotStandbyJobReconciler) {
		r.prober = p
	}
}

// WithProvisioner sets the member provisioner.
func WithProvisioner(p memberProvisioner) Option {
	return func(r *HotStandbyJobReconciler) {
		r.provisioner = p
	}
}

// WithTracker sets the pool tracker.
func WithTracker(t *pool.Tracker) Option {
	return func(r *HotStandbyJobReconciler) {
		r.tracker = t
	}
}

// NewHotStandbyJobReconciler creates a new HotStandbyJobReconciler.
// Without WithProber only the annotation probe mode works.
func NewHotStandbyJobReconciler(c client.Client, scheme *runtime.Scheme, recorder record.EventRecorder, opts ...Option) *HotStandbyJobReconciler {
	r := &HotStandbyJobReconciler{
		Client:                  c,
		Scheme:                  scheme,
		Recorder:                recorder,
		clock:                   clock.RealClock{},
		enableMetrics:           true,
		resyncInterval:          defaultResyncInterval,
		maxConcurrentProbes:     defaultMaxConcurrentProbes,
		maxConcurrentReconciles: defaultMaxConcurrentReconciles,
		rateLimiterBaseDelay:    defaultRateLimiterBaseDelay,
		rateLimiterMaxDelay:     defaultRateLimiterMaxDelay,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.tracker == nil {
		r.tracker = pool.NewTracker(c, r.clock)
	}
	if r.prober == nil {
		r.prober = probe.NewExecutor(probe.WithClock(r.clock))
	}
	if r.provisioner == nil {
		observers := provisioning.Observers{provisioning.LogObserver{}}
		if r.enableMetrics {
			observers = append(observers, metricsObserver{})
		}
		r.provisioner = provisioning.NewProvisioner(c, scheme, provisioning.WithObserver(observers))
	}
	return r
}

// +kubebuilder:rbac:groups=apps.paia.tech,resources=hotstandbyjobs,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=apps.paia.tech,resources=hotstandbyjobs/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=apps.paia.tech,resources=hotstandbyjobs/finalizers,verbs=update
// +kubebuilder:rbac:groups=batch,resources=jobs,verbs=get;list;watch;create;delete
// +kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=pods/exec,verbs=create
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch
// +kubebuilder:rbac:groups=coordination.k8s.io,resources=leases,verbs=get;create;update

// Reconcile handles one pass over a HotStandbyJob's pool.
func (r *HotStandbyJobReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	start := time.Now()
	resource := req.String()

	hsj := &hsjv1alpha1.HotStandbyJob{}
	if err := r.Get(ctx, req.NamespacedName, hsj); err != nil {
		if apierrors.IsNotFound(err) {
			// Object deleted; owner references take care of the members
			r.tracker.Forget(req.NamespacedName)
			r.forgetPool(resource)
			return ctrl.Result{}, nil
		}
		logger.Error(err, "unable to fetch HotStandbyJob")
		return ctrl.Result{}, err
	}

	if !hsj.DeletionTimestamp.IsZero() {
		logger.V(1).Info("HotStandbyJob is being deleted, skipping")
		return ctrl.Result{}, nil
	}

	result, err := r.reconcile(ctx, hsj)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.recordReconcile(resource, outcome, time.Since(start).Seconds())

	return result, err
}

// reconcile runs one pass: validate, refresh, probe, scale, report.
func (r *HotStandbyJobReconciler) reconcile(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	now := r.clock.Now()

	if err := hsj.Spec.Validate(); err != nil {
		return ctrl.Result{}, r.reconcileInvalid(ctx, hsj, err, now)
	}

	if hsj.Spec.Paused {
		logger.V(1).Info("pool is paused, skipping scaling")
		status := *hsj.Status.DeepCopy()
		status.ObservedGeneration = hsj.Generation
		if err := r.writeStatus(ctx, hsj, status); err != nil {
			return ctrl.Result{}, ignoreNotFound(err, "failed to update status")
		}
		return ctrl.Result{RequeueAfter: r.resyncInterval}, nil
	}

	// Phase 1: refresh from the cluster
	state, err := r.tracker.Refresh(ctx, hsj)
	if err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to refresh pool: %w", err)
	}

	// Phase 2: classify members
	r.probeMembers(ctx, hsj, state, now)
	state.Recount()

	// Phase 3: scale
	plan := planScaling(&hsj.Spec, state, now)
	out := passOutcome{plan: plan}
	if plan.Create > 0 {
		out.provisioning = true
		out.lastOrdinal, out.createErr = r.scaleUp(ctx, hsj, state, plan.Create, now)
	}
	if len(plan.Delete) > 0 {
		out.provisioning = true
		out.deleteErr = r.scaleDown(ctx, hsj, state, plan.Delete, now)
	}
	state.Recount()
	r.tracker.Commit(state)
	r.recordPool(state.Key.String(), state, hsj.Spec.IdleTarget)

	logger.V(1).Info("pass complete",
		"idle", state.Idle,
		"busy", state.Busy,
		"pending", state.Pending,
		"unknown", state.Unknown,
		"terminating", state.Terminating,
		"created", plan.Create,
		"deleted", len(plan.Delete),
	)

	// Phase 4: report
	status := buildStatus(hsj, state, out, now)
	if err := r.writeStatus(ctx, hsj, status); err != nil {
		return ctrl.Result{}, ignoreNotFound(err, "failed to update status")
	}

	if err := errors.Join(out.createErr, out.deleteErr); err != nil {
		return ctrl.Result{}, err
	}
	return ctrl.Result{RequeueAfter: nextResync(&hsj.Spec, state, now, r.resyncInterval)}, nil
}

// reconcileInvalid surfaces a spec violation. Nothing is scaled until the
// spec changes, which triggers a new pass through the generation predicate.
func (r *HotStandbyJobReconciler) reconcileInvalid(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, cause error, now time.Time) error {
	log.FromContext(ctx).Info("spec is invalid, not scaling", "error", cause.Error())

	status := invalidStatus(hsj, cause, now)
	if statusChanged(&hsj.Status, &status) {
		r.Recorder.Event(hsj, corev1.EventTypeWarning, EventReasonInvalidSpec, cause.Error())
	}
	if err := r.writeStatus(ctx, hsj, status); err != nil {
		return ignoreNotFound(err, "failed to update status")
	}
	return nil
}

// probeMembers probes every member that is due, in parallel. A member's probe
// failure only affects that member.
func (r *HotStandbyJobReconciler) probeMembers(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, state *pool.State, now time.Time) {
	period := hsj.Spec.BusyProbe.Period()

	var tasks []async.Task
	for _, m := range state.Members {
		if !m.NeedsProbe(now, period) {
			continue
		}
		tasks = append(tasks, async.Task{
			Name: m.Name,
			Func: func(ctx context.Context) error {
				r.probeMember(ctx, hsj, m, now)
				return nil
			},
		})
	}

	if err := async.RunParallel(ctx, tasks, r.maxConcurrentProbes); err != nil {
		log.FromContext(ctx).Error(err, "probing interrupted")
	}
}

// probeMember probes all ready pods of m and applies the aggregated result.
func (r *HotStandbyJobReconciler) probeMember(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, m *pool.Member, now time.Time) {
	logger := log.FromContext(ctx).WithValues("member", m.Name)
	spec := &hsj.Spec.BusyProbe
	mode := string(spec.EffectiveMode())

	pods := m.ReadyPods()
	results := make([]probe.Result, 0, len(pods))
	var firstErr error
	for _, pod := range pods {
		start := time.Now()
		result, err := r.prober.Probe(ctx, pod, spec)
		if err != nil {
			result = probe.Unknown
			if firstErr == nil {
				firstErr = err
			}
			logger.V(1).Info("probe did not resolve", "pod", pod.Name, "error", err.Error())
		}
		r.recordProbe(mode, string(result), time.Since(start).Seconds())
		results = append(results, result)
	}

	result := pool.Aggregate(results)
	reason := ""
	if result == probe.Unknown {
		reason = probe.Reason(firstErr)
		if reason == "" {
			reason = probe.ReasonError
		}
	}

	previous := m.Phase
	m.ApplyProbe(result, reason, now)
	if m.Phase == hsjv1alpha1.MemberUnknown && previous != hsjv1alpha1.MemberUnknown {
		r.Recorder.Eventf(hsj, corev1.EventTypeWarning, EventReasonProbeUnknown,
			"Member %s could not be classified: %s", m.Name, reason)
	}
}

// scaleUp creates count members and adds them to state as Pending. It stops
// at the first failure. The returned ordinal is the highest one handed out.
func (r *HotStandbyJobReconciler) scaleUp(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, state *pool.State, count int32, now time.Time) (int64, error) {
	logger := log.FromContext(ctx)
	ordinal := max(hsj.Status.LastOrdinal, state.HighestOrdinal)
	used := ordinal

	r.Recorder.Eventf(hsj, corev1.EventTypeNormal, EventReasonScalingUp,
		"Creating %d members (idle %d/%d, total %d)", count, state.Idle, hsj.Spec.IdleTarget, state.Total())

	for range count {
		ordinal++
		name, err := r.provisioner.Create(ctx, hsj, ordinal)
		if err != nil {
			if errors.Is(err, provisioning.ErrNameTaken) {
				used = ordinal
			}
			r.Recorder.Eventf(hsj, corev1.EventTypeWarning, EventReasonProvisioningFailed,
				"Failed to create member %s: %v", name, err)
			return used, fmt.Errorf("failed to create member %s: %w", name, err)
		}
		used = ordinal

		logger.Info("created member", "member", name)
		r.Recorder.Eventf(hsj, corev1.EventTypeNormal, EventReasonMemberCreated, "Created member %s", name)
		state.Members = append(state.Members, &pool.Member{
			Name:      name,
			Ordinal:   ordinal,
			CreatedAt: now,
			Phase:     hsjv1alpha1.MemberPending,
			Since:     now,
		})
	}
	return used, nil
}

// scaleDown deletes the given idle members. Failures are collected and do not
// stop the remaining deletions.
func (r *HotStandbyJobReconciler) scaleDown(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, state *pool.State, members []*pool.Member, now time.Time) error {
	logger := log.FromContext(ctx)

	r.Recorder.Eventf(hsj, corev1.EventTypeNormal, EventReasonScalingDown,
		"Deleting %d surplus members (idle %d/%d)", len(members), state.Idle, hsj.Spec.IdleTarget)

	var errs []error
	for _, m := range members {
		if m.Phase != hsjv1alpha1.MemberIdle {
			continue
		}
		if err := r.provisioner.Delete(ctx, m.Job); err != nil {
			r.Recorder.Eventf(hsj, corev1.EventTypeWarning, EventReasonProvisioningFailed,
				"Failed to delete member %s: %v", m.Name, err)
			errs = append(errs, fmt.Errorf("failed to delete member %s: %w", m.Name, err))
			continue
		}

		if pods := m.PodNames(); len(pods) > 0 {
			if err := r.prober.Release(ctx, &hsj.Spec.BusyProbe, pods...); err != nil {
				logger.Error(err, "failed to release probe state", "member", m.Name)
			}
		}

		logger.Info("deleted surplus member", "member", m.Name, "surplusSince", m.SurplusSince)
		r.Recorder.Eventf(hsj, corev1.EventTypeNormal, EventReasonMemberDeleted, "Deleted surplus member %s", m.Name)
		m.SetPhase(hsjv1alpha1.MemberTerminating, "", now)
	}
	return errors.Join(errs...)
}

// SetupWithManager sets up the controller with the Manager.
func (r *HotStandbyJobReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&hsjv1alpha1.HotStandbyJob{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		Owns(&batchv1.Job{}).
		// Pod readiness and annotations change without touching the Job
		Watches(&corev1.Pod{}, &podEventHandler{}).
		WithOptions(controller.Options{
			MaxConcurrentReconciles: r.maxConcurrentReconciles,
			RateLimiter: workqueue.NewTypedItemExponentialFailureRateLimiter[reconcile.Request](
				r.rateLimiterBaseDelay, r.rateLimiterMaxDelay),
		}).
		Named("hotstandbyjob").
		Complete(r)
}

func ignoreNotFound(err error, msg string) error {
	if apierrors.IsNotFound(err) {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// podEventHandler maps member pod events to their HotStandbyJob.
type podEventHandler struct{}

func (h *podEventHandler) Create(_ context.Context, e event.CreateEvent, q workqueue.TypedRateLimitingInterface[reconcile.Request]) {
	h.enqueuePool(e.Object, q)
}

func (h *podEventHandler) Update(_ context.Context, e event.UpdateEvent, q workqueue.TypedRateLimitingInterface[reconcile.Request]) {
	h.enqueuePool(e.ObjectNew, q)
}

func (h *podEventHandler) Delete(_ context.Context, e event.DeleteEvent, q workqueue.TypedRateLimitingInterface[reconcile.Request]) {
	h.enqueuePool(e.Object, q)
}

func (h *podEventHandler) Generic(_ context.Context, e event.GenericEvent, q workqueue.TypedRateLimitingInterface[reconcile.Request]) {
	h.enqueuePool(e.Object, q)
}

func (h *podEventHandler) enqueuePool(obj client.Object, q workqueue.TypedRateLimitingInterface[reconcile.Request]) {
	if obj == nil {
		return
	}
	name, ok := labels.PoolOf(obj.GetLabels())
	if !ok {
		return
	}
	q.Add(reconcile.Request{
		NamespacedName: types.NamespacedName{
			Namespace: obj.GetNamespace(),
			Name:      name,
		},
	})
}
