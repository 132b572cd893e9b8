package provisioning

import (
	"context"
	"errors"
	"fmt"
	"maps"

	batchv1 "k8s.io/api/batch/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
	"github.com/paia-tech/hsj-operator/internal/util/labels"
	"github.com/paia-tech/hsj-operator/internal/util/naming"
)

// ErrNameTaken is returned when a member name is held by a Job the pool does not own.
var ErrNameTaken = errors.New("member name is taken by a job not owned by this pool")

// Provisioner creates and deletes member Jobs.
type Provisioner struct {
	client   client.Client
	scheme   *runtime.Scheme
	observer Observer
}

// Option is a functional option for Provisioner.
type Option func(*Provisioner)

// WithObserver sets the observer notified after every call.
func WithObserver(o Observer) Option {
	return func(p *Provisioner) {
		p.observer = o
	}
}

// NewProvisioner creates a provisioner. The scheme must know HotStandbyJob.
func NewProvisioner(c client.Client, scheme *runtime.Scheme, opts ...Option) *Provisioner {
	p := &Provisioner{
		client:   c,
		scheme:   scheme,
		observer: LogObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Create creates the member with the given ordinal and returns its name.
// A Job of that name already owned by hsj counts as created.
func (p *Provisioner) Create(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, ordinal int64) (string, error) {
	name := naming.Member(hsj.Name, ordinal)
	err := p.create(ctx, hsj, name)
	p.observer.Observe(ctx, OperationCreate, name, err)
	return name, err
}

func (p *Provisioner) create(ctx context.Context, hsj *hsjv1alpha1.HotStandbyJob, name string) error {
	if len(name) > naming.MaxNameLength {
		return fmt.Errorf("member name %q exceeds %d characters", name, naming.MaxNameLength)
	}

	job, err := p.BuildJob(hsj, name)
	if err != nil {
		return err
	}

	err = p.client.Create(ctx, job)
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}

	existing := &batchv1.Job{}
	if err := p.client.Get(ctx, client.ObjectKeyFromObject(job), existing); err != nil {
		// The cache only holds labelled member Jobs, so an unlabelled holder of the name is invisible.
		if apierrors.IsNotFound(err) {
			return fmt.Errorf("%s: %w", name, ErrNameTaken)
		}
		return fmt.Errorf("failed to get existing job %s: %w", name, err)
	}
	if !metav1.IsControlledBy(existing, hsj) {
		return fmt.Errorf("%s: %w", name, ErrNameTaken)
	}
	return nil
}

// BuildJob renders the member Job from the pool's template.
func (p *Provisioner) BuildJob(hsj *hsjv1alpha1.HotStandbyJob, name string) (*batchv1.Job, error) {
	template := hsj.Spec.JobTemplate.DeepCopy()
	lb := labels.NewLabelBuilder(hsj.Name).WithMember(name)

	job := &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   hsj.Namespace,
			Labels:      lb.BuildOver(template.Labels),
			Annotations: maps.Clone(template.Annotations),
		},
		Spec: template.Spec,
	}
	job.Spec.Template.Labels = lb.BuildOver(template.Spec.Template.Labels)

	if err := controllerutil.SetControllerReference(hsj, job, p.scheme); err != nil {
		return nil, fmt.Errorf("failed to set owner reference on %s: %w", name, err)
	}
	return job, nil
}

// Delete deletes a member Job and lets the garbage collector remove its pods.
// A Job that is already gone, or was replaced by one with another UID, counts as deleted.
func (p *Provisioner) Delete(ctx context.Context, job *batchv1.Job) error {
	err := p.delete(ctx, job)
	p.observer.Observe(ctx, OperationDelete, job.Name, err)
	return err
}

func (p *Provisioner) delete(ctx context.Context, job *batchv1.Job) error {
	opts := []client.DeleteOption{client.PropagationPolicy(metav1.DeletePropagationBackground)}
	if job.UID != "" {
		uid := job.UID
		opts = append(opts, client.Preconditions{UID: &uid})
	}

	err := p.client.Delete(ctx, job, opts...)
	switch {
	case err == nil, apierrors.IsNotFound(err):
		return nil
	case apierrors.IsConflict(err) && job.UID != "":
		// UID precondition failed: the target no longer exists.
		return nil
	default:
		return fmt.Errorf("failed to delete job %s: %w", job.Name, err)
	}
}
