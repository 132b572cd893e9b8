package v1alpha1

import (
	batchv1 "k8s.io/api/batch/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// HotStandbyJobSpec defines the desired state of a pool of warm standby Jobs.
type HotStandbyJobSpec struct {
	// IdleTarget is the desired number of idle pool members
	// +kubebuilder:validation:Minimum=0
	IdleTarget int32 `json:"idleTarget"`

	// MinReplicas is the lower bound on the total pool size (idle + busy)
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:default=0
	// +optional
	MinReplicas int32 `json:"minReplicas,omitempty"`

	// MaxReplicas is the upper bound on the total pool size (idle + busy)
	// +kubebuilder:validation:Minimum=0
	MaxReplicas int32 `json:"maxReplicas"`

	// JobTemplate is used verbatim to create each pool member
	JobTemplate batchv1.JobTemplateSpec `json:"jobTemplate"`

	// BusyProbe classifies pool members as idle or busy
	// +optional
	BusyProbe BusyProbeSpec `json:"busyProbe,omitempty"`

	// ScaleDownDelaySeconds is how long a member must stay idle and surplus before deletion
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:default=30
	// +optional
	ScaleDownDelaySeconds int32 `json:"scaleDownDelaySeconds,omitempty"`

	// Paused stops the operator from scaling this pool
	// +optional
	Paused bool `json:"paused,omitempty"`
}

// ProbeMode selects how a pool member is probed.
// +kubebuilder:validation:Enum=exec;http;annotation;redis
type ProbeMode string

const (
	// ProbeModeExec runs a command inside the member's container
	ProbeModeExec ProbeMode = "exec"
	// ProbeModeHTTP issues an HTTP GET against the member's pod IP
	ProbeModeHTTP ProbeMode = "http"
	// ProbeModeAnnotation reads a pod annotation maintained by the workload
	ProbeModeAnnotation ProbeMode = "annotation"
	// ProbeModeRedis reads the status the workload reports into a Redis hash
	ProbeModeRedis ProbeMode = "redis"
)

// BusyProbeSpec configures the busy/idle check.
type BusyProbeSpec struct {
	// Mode selects the probe transport (default: exec)
	// +kubebuilder:default=exec
	// +optional
	Mode ProbeMode `json:"mode,omitempty"`

	// Exec configures the exec probe
	// +optional
	Exec *ExecProbe `json:"exec,omitempty"`

	// HTTP configures the http probe
	// +optional
	HTTP *HTTPProbe `json:"http,omitempty"`

	// AnnotationKey is the pod annotation read by the annotation probe
	// +optional
	AnnotationKey string `json:"annotationKey,omitempty"`

	// Redis configures the redis probe
	// +optional
	Redis *RedisProbe `json:"redis,omitempty"`

	// TimeoutSeconds bounds a single probe call
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:default=1
	// +optional
	TimeoutSeconds int32 `json:"timeoutSeconds,omitempty"`

	// PeriodSeconds is the minimum age of a result before the member is probed again
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:default=10
	// +optional
	PeriodSeconds *int32 `json:"periodSeconds,omitempty"`

	// StartupGraceSeconds is how long a member may stay not ready before it is Unknown
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:default=300
	// +optional
	StartupGraceSeconds *int32 `json:"startupGraceSeconds,omitempty"`

	// SuccessIsBusy sets the polarity: probe success means busy when true, idle when false
	// +kubebuilder:default=true
	// +optional
	SuccessIsBusy *bool `json:"successIsBusy,omitempty"`
}

// ExecProbe runs a command inside the member's container.
type ExecProbe struct {
	// Command is the command vector (default: cat /tmp/healthy)
	// +optional
	Command []string `json:"command,omitempty"`

	// Container is the target container (default: first container)
	// +optional
	Container string `json:"container,omitempty"`
}

// HTTPProbe issues a GET request against the member's pod.
type HTTPProbe struct {
	// Port is the target port
	// +kubebuilder:default=8080
	// +optional
	Port int32 `json:"port,omitempty"`

	// Path is the request path
	// +kubebuilder:default="/busy"
	// +optional
	Path string `json:"path,omitempty"`
}

// RedisProbe reads self-reported member status from a Redis hash.
type RedisProbe struct {
	// Key is the Redis hash holding one field per pod
	// +kubebuilder:default="pod-status"
	// +optional
	Key string `json:"key,omitempty"`

	// StaleAfterSeconds is the age after which a reported status is ignored
	// +kubebuilder:default=600
	// +optional
	StaleAfterSeconds int32 `json:"staleAfterSeconds,omitempty"`
}

// HotStandbyJobStatus defines the observed state of HotStandbyJob.
type HotStandbyJobStatus struct {
	// IdleCount is the number of idle members
	IdleCount int32 `json:"idleCount"`

	// BusyCount is the number of busy members
	BusyCount int32 `json:"busyCount"`

	// PendingCount is the number of members not yet ready
	// +optional
	PendingCount int32 `json:"pendingCount,omitempty"`

	// UnknownCount is the number of members whose probe did not resolve
	// +optional
	UnknownCount int32 `json:"unknownCount,omitempty"`

	// TerminatingCount is the number of members being deleted
	// +optional
	TerminatingCount int32 `json:"terminatingCount,omitempty"`

	// TotalCount is the number of live members (idle + busy + pending + unknown)
	TotalCount int32 `json:"totalCount"`

	// DesiredTotal is busy + idleTarget clamped to [minReplicas, maxReplicas]
	// +optional
	DesiredTotal int32 `json:"desiredTotal,omitempty"`

	// LastOrdinal is the highest member ordinal handed out so far
	// +optional
	LastOrdinal int64 `json:"lastOrdinal,omitempty"`

	// Members is the per-member view from the last pass
	// +optional
	Members []MemberStatus `json:"members,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`

	// LastReconcileTime is when the operator last changed this status
	// +optional
	LastReconcileTime *metav1.Time `json:"lastReconcileTime,omitempty"`

	// ObservedGeneration is the last observed generation
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// MemberPhase is the lifecycle state of a pool member.
type MemberPhase string

const (
	// MemberPending means the member exists but is not ready or not yet probed
	MemberPending MemberPhase = "Pending"
	// MemberIdle means the member is ready and not serving work
	MemberIdle MemberPhase = "Idle"
	// MemberBusy means the member is serving work
	MemberBusy MemberPhase = "Busy"
	// MemberUnknown means the last probe failed or timed out
	MemberUnknown MemberPhase = "Unknown"
	// MemberTerminating means the member is being deleted
	MemberTerminating MemberPhase = "Terminating"
)

// MemberStatus is the observed state of a single pool member.
type MemberStatus struct {
	// Name is the Job name
	Name string `json:"name"`

	// Phase is the member's current phase
	Phase MemberPhase `json:"phase"`

	// Since is when the member entered its current phase
	// +optional
	Since *metav1.Time `json:"since,omitempty"`

	// SurplusSince is when the member became idle while the pool was over target
	// +optional
	SurplusSince *metav1.Time `json:"surplusSince,omitempty"`

	// Reason explains an Unknown phase
	// +optional
	Reason string `json:"reason,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=hsj
// +kubebuilder:printcolumn:name="Idle",type=integer,JSONPath=`.status.idleCount`
// +kubebuilder:printcolumn:name="Busy",type=integer,JSONPath=`.status.busyCount`
// +kubebuilder:printcolumn:name="Total",type=integer,JSONPath=`.status.totalCount`
// +kubebuilder:printcolumn:name="Target",type=integer,JSONPath=`.spec.idleTarget`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// HotStandbyJob is the Schema for the hotstandbyjobs API.
type HotStandbyJob struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   HotStandbyJobSpec   `json:"spec,omitempty"`
	Status HotStandbyJobStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// HotStandbyJobList contains a list of HotStandbyJob.
type HotStandbyJobList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []HotStandbyJob `json:"items"`
}

// Condition types for HotStandbyJob
const (
	// ConditionReady indicates the idle target is met
	ConditionReady = "Ready"
	// ConditionScalingLimited indicates maxReplicas prevents meeting the idle target
	ConditionScalingLimited = "ScalingLimited"
	// ConditionProvisioningFailed indicates the last create or delete attempt failed
	ConditionProvisioningFailed = "ProvisioningFailed"
	// ConditionInvalidSpec indicates the spec violates an invariant; no scaling until fixed
	ConditionInvalidSpec = "InvalidSpec"
	// ConditionMembersUnknown indicates at least one member could not be classified
	ConditionMembersUnknown = "MembersUnknown"
)
