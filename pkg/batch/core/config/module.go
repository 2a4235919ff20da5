// Package config provides core configuration structures and utilities for the workflow core.
// This module defines Fx providers for configuration-related components.
package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts and provides *LoggingConfig from *Config.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.IRP.System.Logging
}

// NewRiskAPIConfigProvider extracts and provides *RiskAPIConfig from *Config.
func NewRiskAPIConfigProvider(cfg *Config) *RiskAPIConfig {
	return &cfg.IRP.RiskAPI
}

// Module provides configuration-related components to Fx.
// The EmbeddedConfig itself is supplied by the application.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
	fx.Provide(NewLoggingConfigProvider),
	fx.Provide(NewRiskAPIConfigProvider),
)
