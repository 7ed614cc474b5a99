package config

import (
	"testing"

	"financial-audit-service/pkg/logger"
)

func TestCreateLoggerConfig(t *testing.T) {
	config := CreateLoggerConfig(false)
	if config.Level != logger.WarnLevel {
		t.Errorf("expected warn level by default, got '%s'", config.Level)
	}

	config = CreateLoggerConfig(true)
	if config.Level != logger.DebugLevel {
		t.Errorf("expected debug level when verbose, got '%s'", config.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("logger config should be valid: %v", err)
	}
}

func TestCreateGeminiConfig(t *testing.T) {
	config := CreateGeminiConfig("test-key", "")
	if config.APIKey != "test-key" {
		t.Errorf("expected APIKey 'test-key', got '%s'", config.APIKey)
	}
	if config.Model == "" {
		t.Error("expected a default model")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("gemini config should be valid: %v", err)
	}

	config = CreateGeminiConfig("test-key", "custom-model")
	if config.Model != "custom-model" {
		t.Errorf("expected model override 'custom-model', got '%s'", config.Model)
	}
}

func TestCreateSessionConfig(t *testing.T) {
	config := CreateSessionConfig(true)
	if !config.ShowProgress {
		t.Error("expected ShowProgress to be true")
	}

	config = CreateSessionConfig(false)
	if config.ShowProgress {
		t.Error("expected ShowProgress to be false")
	}
}

func TestCreateExporter(t *testing.T) {
	exp, err := CreateExporter()
	if err != nil {
		t.Fatalf("failed to create exporter: %v", err)
	}
	if exp == nil {
		t.Fatal("expected an exporter")
	}
}
