// Package config loads the orchestration core's runtime configuration from a
// YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// SchedulerConfig controls the DAG scheduler's dispatch behavior (spec §4.3, §5).
type SchedulerConfig struct {
	ParallelismCap     int           `yaml:"parallelism_cap" env:"PARALLELISM_CAP" envDefault:"3"`
	MaxRetries         int           `yaml:"max_retries" env:"MAX_RETRIES" envDefault:"3"`
	RetryBaseDelay     time.Duration `yaml:"retry_base_delay" env:"RETRY_BASE_DELAY" envDefault:"1s"`
	RetryBackoffFactor float64       `yaml:"retry_backoff_factor" env:"RETRY_BACKOFF_FACTOR" envDefault:"2"`
	RetryJitter        float64       `yaml:"retry_jitter" env:"RETRY_JITTER" envDefault:"0.25"`
	CancelGracePeriod  time.Duration `yaml:"cancel_grace_period" env:"CANCEL_GRACE_PERIOD" envDefault:"5s"`
	DefaultTaskTimeout time.Duration `yaml:"default_task_timeout" env:"DEFAULT_TASK_TIMEOUT" envDefault:"30s"`
}

// WorkflowRetentionConfig controls the retention sweep (spec §3 lifecycle).
type WorkflowRetentionConfig struct {
	// Cron is evaluated on every orchestrator tick to decide whether a sweep
	// of completed workflows past their retention window should run.
	Cron   string        `yaml:"cron" env:"RETENTION_CRON" envDefault:"*/5 * * * *"`
	MaxAge time.Duration `yaml:"max_age" env:"RETENTION_MAX_AGE" envDefault:"168h"`
}

// BackendConfig selects and configures the Generation Backend adapter (spec §6.2).
type BackendConfig struct {
	Provider       string        `yaml:"provider" env:"BACKEND_PROVIDER" envDefault:"mock"`
	Model          string        `yaml:"model" env:"BACKEND_MODEL" envDefault:"claude-sonnet-4-5"`
	APIKey         string        `yaml:"api_key" env:"BACKEND_API_KEY"`
	Timeout        time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT" envDefault:"30s"`
	BreakerRatio   float64       `yaml:"breaker_failure_ratio" env:"BACKEND_BREAKER_RATIO" envDefault:"0.5"`
	BreakerMinReqs uint32        `yaml:"breaker_min_requests" env:"BACKEND_BREAKER_MIN_REQUESTS" envDefault:"5"`
}

// GuardrailsConfig supplies defaults for the guardrail pipeline (spec §4.4-§4.6).
type GuardrailsConfig struct {
	DefaultVerificationLevel string `yaml:"default_verification_level" env:"VERIFICATION_LEVEL" envDefault:"standard"`
	VerificationCacheSize    int    `yaml:"verification_cache_size" env:"VERIFICATION_CACHE_SIZE" envDefault:"10000"`
}

// ServerConfig configures the optional §6.3 submission surface adapter and
// the ambient /metrics exposition listener, matching the teacher's own
// internal/config.ServerConfig shape (Addr + MetricsPort).
type ServerConfig struct {
	Addr        string `yaml:"addr" env:"SERVER_ADDR" envDefault:":8080"`
	MetricsPort string `yaml:"metrics_port" env:"METRICS_PORT" envDefault:"9090"`
}

// PermissionConfig controls risk-to-permission mapping policy (spec §9 open question).
type PermissionConfig struct {
	// ElevateOnDestructiveIntent forces `assistant` for any destructive-intent
	// request regardless of the computed risk level. The spec resolves this
	// open question in favor of elevation but leaves it configurable.
	ElevateOnDestructiveIntent bool `yaml:"elevate_on_destructive_intent" env:"ELEVATE_ON_DESTRUCTIVE" envDefault:"true"`
}

// Config is the root configuration object.
type Config struct {
	Server      ServerConfig            `yaml:"server"`
	Scheduler   SchedulerConfig         `yaml:"scheduler"`
	Retention   WorkflowRetentionConfig `yaml:"retention"`
	Backend     BackendConfig           `yaml:"backend"`
	Guardrails  GuardrailsConfig        `yaml:"guardrails"`
	Permissions PermissionConfig        `yaml:"permissions"`
	LogLevel    string                  `yaml:"log_level" env:"LOG_LEVEL" envDefault:"info"`
}

// Default returns the zero-config defaults, equivalent to loading an empty file.
func Default() *Config {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "WRITECREW_"}); err != nil {
		// env.Parse fails on an unparsable envDefault tag (a programmer
		// error caught by config_test.go) or an unparsable WRITECREW_*
		// environment value, since Default also reads the environment.
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load reads a YAML config file at path and overlays WRITECREW_* environment
// variables on top of it. A missing file is not an error: defaults apply, as
// with the teacher's own internal/config.Load contract.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{UseFieldNameByDefault: false, Prefix: "WRITECREW_"}); err != nil {
		return nil, fmt.Errorf("config: applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks invariants that cannot be expressed as struct tags.
func (c *Config) Validate() error {
	if c.Scheduler.ParallelismCap < 1 {
		return fmt.Errorf("scheduler.parallelism_cap must be >= 1, got %d", c.Scheduler.ParallelismCap)
	}
	if c.Scheduler.MaxRetries < 0 {
		return fmt.Errorf("scheduler.max_retries must be >= 0, got %d", c.Scheduler.MaxRetries)
	}
	switch c.Guardrails.DefaultVerificationLevel {
	case "basic", "standard", "comprehensive", "critical":
	default:
		return fmt.Errorf("guardrails.default_verification_level invalid: %s", c.Guardrails.DefaultVerificationLevel)
	}
	return nil
}
