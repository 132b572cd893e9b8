package v1alpha1

import (
	"errors"
	"fmt"
	"time"
)

// Probe defaults applied when the corresponding field is unset.
const (
	DefaultProbeTimeoutSeconds    = 1
	DefaultProbePeriodSeconds     = 10
	DefaultStartupGraceSeconds    = 300
	DefaultHTTPPort               = 8080
	DefaultHTTPPath               = "/busy"
	DefaultAnnotationKey          = "paia.tech/busy"
	DefaultRedisKey               = "pod-status"
	DefaultRedisStaleAfterSeconds = 600
	DefaultScaleDownDelaySeconds  = 30
	defaultSuccessIsBusy          = true
)

// DefaultExecCommand is run by the exec probe when no command is configured.
var DefaultExecCommand = []string{"cat", "/tmp/healthy"}

// EffectiveMode returns the probe mode, defaulting to exec.
func (p *BusyProbeSpec) EffectiveMode() ProbeMode {
	if p.Mode == "" {
		return ProbeModeExec
	}
	return p.Mode
}

// Timeout returns the per-call probe timeout.
func (p *BusyProbeSpec) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return DefaultProbeTimeoutSeconds * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Period returns the minimum age of a probe result before it is refreshed.
func (p *BusyProbeSpec) Period() time.Duration {
	if p.PeriodSeconds == nil {
		return DefaultProbePeriodSeconds * time.Second
	}
	return time.Duration(*p.PeriodSeconds) * time.Second
}

// StartupGrace returns how long a member may stay not ready before it becomes Unknown.
func (p *BusyProbeSpec) StartupGrace() time.Duration {
	if p.StartupGraceSeconds == nil {
		return DefaultStartupGraceSeconds * time.Second
	}
	return time.Duration(*p.StartupGraceSeconds) * time.Second
}

// BusyOnSuccess reports the probe polarity.
func (p *BusyProbeSpec) BusyOnSuccess() bool {
	if p.SuccessIsBusy == nil {
		return defaultSuccessIsBusy
	}
	return *p.SuccessIsBusy
}

// ExecCommand returns the configured exec command or the default one.
func (p *BusyProbeSpec) ExecCommand() []string {
	if p.Exec == nil || len(p.Exec.Command) == 0 {
		return DefaultExecCommand
	}
	return p.Exec.Command
}

// ExecContainer returns the configured exec container, empty meaning the first container.
func (p *BusyProbeSpec) ExecContainer() string {
	if p.Exec == nil {
		return ""
	}
	return p.Exec.Container
}

// HTTPTarget returns the port and path for the http probe.
func (p *BusyProbeSpec) HTTPTarget() (int32, string) {
	port, path := int32(DefaultHTTPPort), DefaultHTTPPath
	if p.HTTP != nil {
		if p.HTTP.Port > 0 {
			port = p.HTTP.Port
		}
		if p.HTTP.Path != "" {
			path = p.HTTP.Path
		}
	}
	return port, path
}

// EffectiveAnnotationKey returns the annotation read by the annotation probe.
func (p *BusyProbeSpec) EffectiveAnnotationKey() string {
	if p.AnnotationKey == "" {
		return DefaultAnnotationKey
	}
	return p.AnnotationKey
}

// RedisTarget returns the hash key and staleness window for the redis probe.
func (p *BusyProbeSpec) RedisTarget() (string, time.Duration) {
	key, stale := DefaultRedisKey, int32(DefaultRedisStaleAfterSeconds)
	if p.Redis != nil {
		if p.Redis.Key != "" {
			key = p.Redis.Key
		}
		if p.Redis.StaleAfterSeconds > 0 {
			stale = p.Redis.StaleAfterSeconds
		}
	}
	return key, time.Duration(stale) * time.Second
}

// ScaleDownDelay returns how long a member must stay idle and surplus before deletion.
func (s *HotStandbyJobSpec) ScaleDownDelay() time.Duration {
	if s.ScaleDownDelaySeconds < 0 {
		return 0
	}
	return time.Duration(s.ScaleDownDelaySeconds) * time.Second
}

// Validate checks the invariants the controller relies on.
// A violation is terminal for the resource until the spec is corrected.
func (s *HotStandbyJobSpec) Validate() error {
	var errs []error

	if s.IdleTarget < 0 {
		errs = append(errs, fmt.Errorf("idleTarget must be >= 0, got %d", s.IdleTarget))
	}
	if s.MinReplicas < 0 {
		errs = append(errs, fmt.Errorf("minReplicas must be >= 0, got %d", s.MinReplicas))
	}
	if s.MaxReplicas < 0 {
		errs = append(errs, fmt.Errorf("maxReplicas must be >= 0, got %d", s.MaxReplicas))
	}
	if s.MinReplicas > s.MaxReplicas {
		errs = append(errs, fmt.Errorf("minReplicas (%d) must not exceed maxReplicas (%d)", s.MinReplicas, s.MaxReplicas))
	}
	if s.ScaleDownDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("scaleDownDelaySeconds must be >= 0, got %d", s.ScaleDownDelaySeconds))
	}
	if len(s.JobTemplate.Spec.Template.Spec.Containers) == 0 {
		errs = append(errs, errors.New("jobTemplate must define at least one container"))
	}

	probe := &s.BusyProbe
	switch probe.EffectiveMode() {
	case ProbeModeHTTP:
		if probe.HTTP != nil && (probe.HTTP.Port < 0 || probe.HTTP.Port > 65535) {
			errs = append(errs, fmt.Errorf("busyProbe.http.port out of range: %d", probe.HTTP.Port))
		}
	case ProbeModeExec, ProbeModeAnnotation, ProbeModeRedis:
	default:
		errs = append(errs, fmt.Errorf("unsupported busyProbe.mode %q", probe.Mode))
	}
	if probe.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("busyProbe.timeoutSeconds must be >= 0, got %d", probe.TimeoutSeconds))
	}

	return errors.Join(errs...)
}
