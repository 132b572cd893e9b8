// Package config defines the operator's runtime configuration.
//
// Values are resolved in the order flags, HSJ_* environment variables, the
// optional YAML file, and finally the defaults in [Default]. Nested keys map
// to environment variables by joining the path with underscores, so
// rateLimiter.maxDelay is read from HSJ_RATELIMITER_MAXDELAY.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Config holds all operator settings.
type Config struct {
	MetricsBindAddress     string `mapstructure:"metricsBindAddress" yaml:"metricsBindAddress"`
	HealthProbeBindAddress string `mapstructure:"healthProbeBindAddress" yaml:"healthProbeBindAddress"`

	LeaderElection LeaderElection `mapstructure:"leaderElection" yaml:"leaderElection"`

	// WatchNamespace restricts the operator to one namespace. Empty watches all.
	WatchNamespace string `mapstructure:"watchNamespace" yaml:"watchNamespace"`

	MaxConcurrentReconciles int           `mapstructure:"maxConcurrentReconciles" yaml:"maxConcurrentReconciles"`
	MaxConcurrentProbes     int           `mapstructure:"maxConcurrentProbes" yaml:"maxConcurrentProbes"`
	ResyncInterval          time.Duration `mapstructure:"resyncInterval" yaml:"resyncInterval"`

	RateLimiter RateLimiter `mapstructure:"rateLimiter" yaml:"rateLimiter"`
	Redis       Redis       `mapstructure:"redis" yaml:"redis"`
	Logging     Logging     `mapstructure:"logging" yaml:"logging"`
	Metrics     Metrics     `mapstructure:"metrics" yaml:"metrics"`
}

// LeaderElection configures manager leader election.
type LeaderElection struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	ID      string `mapstructure:"id" yaml:"id"`
}

// RateLimiter bounds the per-resource backoff after failed passes.
type RateLimiter struct {
	BaseDelay time.Duration `mapstructure:"baseDelay" yaml:"baseDelay"`
	MaxDelay  time.Duration `mapstructure:"maxDelay" yaml:"maxDelay"`
}

// Redis points at the status registry used by the redis probe mode.
// The mode is unavailable when Addr is empty.
type Redis struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// Logging selects the log level and encoding.
type Logging struct {
	Level string `mapstructure:"level" yaml:"level"`
	// Format is json or console. Empty picks console on a terminal, json otherwise.
	Format string `mapstructure:"format" yaml:"format"`
}

// Metrics toggles the operator's own Prometheus series.
type Metrics struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Log levels and formats accepted by Validate.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"", "json", "console"}
)

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		MetricsBindAddress:     ":8080",
		HealthProbeBindAddress: ":8081",
		LeaderElection: LeaderElection{
			Enabled: true,
			ID:      "hsj-operator",
		},
		MaxConcurrentReconciles: 4,
		MaxConcurrentProbes:     16,
		ResyncInterval:          10 * time.Second,
		RateLimiter: RateLimiter{
			BaseDelay: time.Second,
			MaxDelay:  5 * time.Minute,
		},
		Logging: Logging{Level: "info"},
		Metrics: Metrics{Enabled: true},
	}
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.MaxConcurrentReconciles <= 0 {
		errs = append(errs, fmt.Errorf("maxConcurrentReconciles must be positive, got %d", c.MaxConcurrentReconciles))
	}
	if c.MaxConcurrentProbes <= 0 {
		errs = append(errs, fmt.Errorf("maxConcurrentProbes must be positive, got %d", c.MaxConcurrentProbes))
	}
	if c.ResyncInterval <= 0 {
		errs = append(errs, fmt.Errorf("resyncInterval must be positive, got %s", c.ResyncInterval))
	}
	if c.RateLimiter.BaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("rateLimiter.baseDelay must be positive, got %s", c.RateLimiter.BaseDelay))
	}
	if c.RateLimiter.MaxDelay < c.RateLimiter.BaseDelay {
		errs = append(errs, fmt.Errorf("rateLimiter.maxDelay (%s) must not be below baseDelay (%s)",
			c.RateLimiter.MaxDelay, c.RateLimiter.BaseDelay))
	}
	if c.LeaderElection.Enabled && c.LeaderElection.ID == "" {
		errs = append(errs, errors.New("leaderElection.id is required when leader election is enabled"))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("redis.db must not be negative, got %d", c.Redis.DB))
	}
	if !slices.Contains(LogLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of %v, got %q", LogLevels, c.Logging.Level))
	}
	if !slices.Contains(LogFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Redis.Password != "" {
		out.Redis.Password = "******"
	}
	return &out
}
