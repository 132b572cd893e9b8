package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "HSJ"

// Flag names registered by AddFlags.
const (
	FlagConfig                 = "config"
	FlagMetricsBindAddress     = "metrics-bind-address"
	FlagHealthProbeBindAddress = "health-probe-bind-address"
	FlagLeaderElect            = "leader-elect"
	FlagNamespace              = "namespace"
)

// flagKeys maps flags onto configuration keys.
var flagKeys = map[string]string{
	FlagMetricsBindAddress:     "metricsBindAddress",
	FlagHealthProbeBindAddress: "healthProbeBindAddress",
	FlagLeaderElect:            "leaderElection.enabled",
	FlagNamespace:              "watchNamespace",
}

// AddFlags registers the configuration flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, "", "Path to a YAML configuration file")
	fs.String(FlagMetricsBindAddress, d.MetricsBindAddress, "The address the metrics endpoint binds to")
	fs.String(FlagHealthProbeBindAddress, d.HealthProbeBindAddress, "The address the health probe endpoint binds to")
	fs.Bool(FlagLeaderElect, d.LeaderElection.Enabled, "Enable leader election for the operator")
	fs.String(FlagNamespace, d.WatchNamespace, "Only watch HotStandbyJobs in this namespace (default: all)")
}

// Load resolves the configuration from defaults, the file at path (if any),
// the environment and the changed flags in fs (may be nil). The result is validated.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			flag := fs.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so that environment overrides apply to
// keys absent from the file.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("metricsBindAddress", d.MetricsBindAddress)
	v.SetDefault("healthProbeBindAddress", d.HealthProbeBindAddress)
	v.SetDefault("leaderElection.enabled", d.LeaderElection.Enabled)
	v.SetDefault("leaderElection.id", d.LeaderElection.ID)
	v.SetDefault("watchNamespace", d.WatchNamespace)
	v.SetDefault("maxConcurrentReconciles", d.MaxConcurrentReconciles)
	v.SetDefault("maxConcurrentProbes", d.MaxConcurrentProbes)
	v.SetDefault("resyncInterval", d.ResyncInterval)
	v.SetDefault("rateLimiter.baseDelay", d.RateLimiter.BaseDelay)
	v.SetDefault("rateLimiter.maxDelay", d.RateLimiter.MaxDelay)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
}
