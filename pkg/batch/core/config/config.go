package config

// Package config provides structures and utilities for managing application configuration.

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// LogLevel defines the logging level for the application.
type LogLevel string

const (
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelFatal  LogLevel = "FATAL"
	LogLevelSilent LogLevel = "SILENT"
)

// RetryConfig holds the retry-with-backoff policy of the risk-modeling API client.
type RetryConfig struct {
	MaxAttempts     int     `yaml:"max_attempts"`     // MaxAttempts is the maximum number of attempts, including the first call.
	InitialInterval int     `yaml:"initial_interval"` // InitialInterval is the initial backoff interval in milliseconds.
	MaxInterval     int     `yaml:"max_interval"`     // MaxInterval is the maximum backoff interval in milliseconds.
	Factor          float64 `yaml:"factor"`           // Factor is the multiplier applied to the interval after each attempt.
}

// RiskAPIConfig holds the settings of the external risk-modeling execution system.
type RiskAPIConfig struct {
	// BaseURL is the root URL of the workflow API.
	BaseURL string `yaml:"base_url"`
	// APIKey is sent in the Authorization header.
	APIKey string `yaml:"api_key"`
	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// DryRun replaces the HTTP client with one that fabricates workflow ids and reports them finished.
	DryRun bool `yaml:"dry_run"`
	// Retry is the transient-failure retry policy.
	Retry RetryConfig `yaml:"retry"`
}

// StoreConfig selects the relational store used for workflow state.
type StoreConfig struct {
	// ConnectionRef is the name of the entry under irp.database used by the repository (e.g., "irp").
	ConnectionRef string `yaml:"connection_ref"`
	// MigrateOnStart applies pending schema migrations when the application starts.
	MigrateOnStart bool `yaml:"migrate_on_start"`
}

// WorkflowConfig describes where notebooks live on disk.
type WorkflowConfig struct {
	// RootDir is the directory holding the per-cycle notebook trees.
	RootDir string `yaml:"root_dir"`
}

// MonitorConfig configures the polling loop.
type MonitorConfig struct {
	// PollingIntervalSeconds is the delay between two monitor passes.
	PollingIntervalSeconds int `yaml:"polling_interval_seconds"`
}

// MetricsConfig configures metric collection.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector. Empty disables export.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
	ServiceName  string `yaml:"service_name"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
	// GormLevel is the log level applied to SQL statements ("SILENT", "ERROR", "WARN", "INFO").
	GormLevel string `yaml:"gorm_level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// IRPConfig holds all configuration under the "irp" top-level key.
type IRPConfig struct {
	System   SystemConfig   `yaml:"system"`
	Store    StoreConfig    `yaml:"store"`
	Workflow WorkflowConfig `yaml:"workflow"`
	RiskAPI  RiskAPIConfig  `yaml:"risk_api"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	// DatabaseConfigs holds the raw connection blocks keyed by connection name.
	// Each block is decoded into a DatabaseConfig by the database providers.
	DatabaseConfigs map[string]interface{} `yaml:"database"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	IRP IRPConfig `yaml:"irp"`
	// EmbeddedConfig holds configuration loaded from an embedded source, not from YAML.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	cfg := &Config{
		IRP: IRPConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO", GormLevel: string(LogLevelSilent)},
			},
			Store: StoreConfig{
				ConnectionRef: "irp",
			},
			Workflow: WorkflowConfig{
				RootDir: "workflows",
			},
			RiskAPI: RiskAPIConfig{
				TimeoutSeconds: 60,
				Retry: RetryConfig{
					MaxAttempts:     3,
					InitialInterval: 500,
					MaxInterval:     10000,
					Factor:          2.0,
				},
			},
			Monitor: MonitorConfig{
				PollingIntervalSeconds: 30,
			},
			Metrics: MetricsConfig{
				Enabled:   true,
				Namespace: "irp",
			},
			Tracing: TracingConfig{
				ServiceName: "irp-workflow",
			},
		},
	}

	// Populated by YAML or by mergeConfig.
	cfg.IRP.DatabaseConfigs = map[string]interface{}{}
	return cfg
}
