// Package config builds component configurations from CLI inputs.
package config

import (
	"financial-audit-service/internal/exporter"
	"financial-audit-service/internal/extractor"
	"financial-audit-service/internal/session"
	"financial-audit-service/pkg/logger"
)

// CreateLoggerConfig creates the logger configuration for CLI usage.
// Logs go to stderr so stdout stays clean for the audit summary.
func CreateLoggerConfig(verbose bool) *logger.Config {
	config := logger.DefaultConfig()
	if verbose {
		config.Level = logger.DebugLevel
	} else {
		config.Level = logger.WarnLevel
	}
	return config
}

// CreateGeminiConfig creates the extraction client configuration with
// CLI overrides applied
func CreateGeminiConfig(apiKey, model string) *extractor.GeminiConfig {
	config := extractor.DefaultGeminiConfig()
	config.APIKey = apiKey
	if model != "" {
		config.Model = model
	}
	return config
}

// CreateSessionConfig creates the orchestration configuration
func CreateSessionConfig(showProgress bool) *session.Config {
	config := session.DefaultConfig()
	config.ShowProgress = showProgress
	return config
}

// CreateExporter creates the PDF report exporter with default layout
func CreateExporter() (*exporter.Exporter, error) {
	return exporter.NewExporter(exporter.DefaultConfig())
}
