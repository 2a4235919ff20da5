package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"

	"go.uber.org/fx"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig // EmbeddedConfig contains the raw bytes of the configuration file.
	EnvFilePath    string         `name:"envFilePath" optional:"true"`
}

// loadConfig loads configuration from the embedded YAML and environment variables.
//
// Order of precedence (lowest first): NewConfig defaults, embedded YAML, environment.
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	var yamlConfig Config
	expanded := []byte(os.ExpandEnv(string(embeddedConfig)))
	if err := yaml.Unmarshal(expanded, &yamlConfig); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to unmarshal embedded config", err)
	}

	mergeConfig(cfg, &yamlConfig)

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load config from environment variables", err)
	}
	cfg.EmbeddedConfig = embeddedConfig
	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads and provides *Config.
// It also applies the configured log level to the global logger.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.IRP.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.IRP.System.Logging.Level)

	if err := validate(cfg); err != nil {
		return nil, exception.NewBatchError(moduleName, "invalid configuration", err)
	}
	return cfg, nil
}

// LoadConfig loads configuration from the embedded YAML, an optional .env file and the environment.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig)
}

func validate(cfg *Config) error {
	if cfg.IRP.Store.ConnectionRef == "" {
		return fmt.Errorf("irp.store.connection_ref must not be empty")
	}
	if _, ok := cfg.IRP.DatabaseConfigs[cfg.IRP.Store.ConnectionRef]; !ok {
		return fmt.Errorf("irp.store.connection_ref '%s' has no entry under irp.database", cfg.IRP.Store.ConnectionRef)
	}
	if !cfg.IRP.RiskAPI.DryRun && cfg.IRP.RiskAPI.BaseURL == "" {
		return fmt.Errorf("irp.risk_api.base_url is required unless dry_run is enabled")
	}
	if cfg.IRP.Monitor.PollingIntervalSeconds <= 0 {
		return fmt.Errorf("irp.monitor.polling_interval_seconds must be positive")
	}
	return nil
}

// mergeConfig performs a deep merge from sourceConfig into destConfig.
// Values in sourceConfig overwrite those in destConfig when they are not zero values.
func mergeConfig(destConfig, sourceConfig *Config) {
	dest, source := &destConfig.IRP, &sourceConfig.IRP

	mergeSystemConfig(&dest.System, &source.System)

	if source.Store.ConnectionRef != "" {
		dest.Store.ConnectionRef = source.Store.ConnectionRef
	}
	if source.Store.MigrateOnStart {
		dest.Store.MigrateOnStart = true
	}
	if source.Workflow.RootDir != "" {
		dest.Workflow.RootDir = source.Workflow.RootDir
	}

	mergeRiskAPIConfig(&dest.RiskAPI, &source.RiskAPI)

	if source.Monitor.PollingIntervalSeconds != 0 {
		dest.Monitor.PollingIntervalSeconds = source.Monitor.PollingIntervalSeconds
	}
	if source.Metrics.Namespace != "" {
		dest.Metrics.Namespace = source.Metrics.Namespace
	}
	// A YAML file that declares a metrics block controls the flag explicitly.
	if source.Metrics != (MetricsConfig{}) {
		dest.Metrics.Enabled = source.Metrics.Enabled
	}

	if source.Tracing.OTLPEndpoint != "" {
		dest.Tracing.OTLPEndpoint = source.Tracing.OTLPEndpoint
		dest.Tracing.Insecure = source.Tracing.Insecure
	}
	if source.Tracing.ServiceName != "" {
		dest.Tracing.ServiceName = source.Tracing.ServiceName
	}

	if source.DatabaseConfigs != nil {
		if dest.DatabaseConfigs == nil {
			dest.DatabaseConfigs = make(map[string]interface{})
		}
		for key, value := range source.DatabaseConfigs {
			dest.DatabaseConfigs[key] = value
		}
	}
}

func mergeRiskAPIConfig(dest, source *RiskAPIConfig) {
	if source.BaseURL != "" {
		dest.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		dest.APIKey = source.APIKey
	}
	if source.TimeoutSeconds != 0 {
		dest.TimeoutSeconds = source.TimeoutSeconds
	}
	if source.DryRun {
		dest.DryRun = true
	}
	mergeRetryConfig(&dest.Retry, &source.Retry)
}

func mergeRetryConfig(dest, source *RetryConfig) {
	if source.MaxAttempts != 0 {
		dest.MaxAttempts = source.MaxAttempts
	}
	if source.InitialInterval != 0 {
		dest.InitialInterval = source.InitialInterval
	}
	if source.MaxInterval != 0 {
		dest.MaxInterval = source.MaxInterval
	}
	if source.Factor != 0 {
		dest.Factor = source.Factor
	}
}

func mergeSystemConfig(dest, source *SystemConfig) {
	if source.Timezone != "" {
		dest.Timezone = source.Timezone
	}
	if source.Logging.Level != "" {
		dest.Logging.Level = source.Logging.Level
	}
	if source.Logging.GormLevel != "" {
		dest.Logging.GormLevel = source.Logging.GormLevel
	}
}

// loadStructFromEnv recursively loads configuration values into a struct from environment variables.
// It uses the "yaml" tag to determine the environment variable name, e.g. IRP_RISK_API_API_KEY.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		if field.Kind() == reflect.Map && field.Type().Key().Kind() == reflect.String && field.Type().Elem().Kind() == reflect.Interface {
			// IRP_DATABASE_IRP_PASSWORD sets irp.database.irp.password.
			loadRawMapFromEnv(field, envVarName+"_")
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// loadRawMapFromEnv overrides keys of nested raw maps (map[string]interface{} of map[string]interface{})
// from environment variables of the form <PREFIX><KEY>_<FIELD>. Only keys already present in the map
// are considered, so connection names containing underscores stay unambiguous.
func loadRawMapFromEnv(mapField reflect.Value, prefix string) {
	if mapField.IsNil() {
		return
	}
	for _, key := range mapField.MapKeys() {
		nested, ok := mapField.MapIndex(key).Interface().(map[string]interface{})
		if !ok {
			continue
		}
		keyPrefix := prefix + strings.ToUpper(key.String()) + "_"
		for _, env := range os.Environ() {
			if !strings.HasPrefix(env, keyPrefix) {
				continue
			}
			parts := strings.SplitN(strings.TrimPrefix(env, keyPrefix), "=", 2)
			if len(parts) != 2 || parts[0] == "" {
				continue
			}
			nested[strings.ToLower(parts[0])] = parts[1]
		}
	}
}

// setField sets the value of a reflect.Value field based on its kind.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
