// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the explainer command's configuration.
//
// Sources are applied in order, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file (--config)
//  3. Environment variables
//  4. Command-line flags (applied by the command itself)
//
// Secrets (HF_TOKEN, OPENAI_API_KEY) are read from the environment only.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/CodeExplainer/pkg/logging"
	"github.com/AleutianAI/CodeExplainer/services/explainer"
	"github.com/AleutianAI/CodeExplainer/services/explainer/middleware"
	"github.com/AleutianAI/CodeExplainer/services/explainer/telemetry"
	"github.com/AleutianAI/CodeExplainer/services/llm"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk and in-memory configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`

	// Secrets, never read from or written to the YAML file.
	HFToken      string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	GinMode         string        `yaml:"gin_mode,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type ModelConfig struct {
	Backend       string        `yaml:"backend"`
	Name          string        `yaml:"name"`
	LoadTimeout   time.Duration `yaml:"load_timeout"`
	HFEndpoint    string        `yaml:"hf_endpoint"`
	OpenAIBaseURL string        `yaml:"openai_base_url,omitempty"`
	OllamaBaseURL string        `yaml:"ollama_base_url"`
	KeepAlive     string        `yaml:"keep_alive,omitempty"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type TelemetryConfig struct {
	Traces       string `yaml:"traces"`
	Metrics      string `yaml:"metrics"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Environment  string `yaml:"environment"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	tel := telemetry.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			AllowedOrigins:  append([]string(nil), middleware.DefaultAllowedOrigins...),
			ShutdownTimeout: 10 * time.Second,
		},
		Model: ModelConfig{
			Backend:       string(llm.BackendNone),
			Name:          llm.DefaultModelName,
			LoadTimeout:   llm.DefaultLoadTimeout,
			HFEndpoint:    "https://huggingface.co",
			OllamaBaseURL: "http://localhost:11434",
		},
		RateLimit: RateLimitConfig{Burst: 10},
		Telemetry: TelemetryConfig{
			Traces:       tel.TraceExporter,
			Metrics:      tel.MetricExporter,
			OTLPEndpoint: tel.OTLPEndpoint,
			Environment:  tel.Environment,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment as seen through getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read the config file: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML rejects unknown keys so typos surface instead of being ignored.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString("EXPLAINER_HOST", &c.Server.Host)
	setString("GIN_MODE", &c.Server.GinMode)
	if v := getenv("EXPLAINER_ALLOWED_ORIGINS"); strings.TrimSpace(v) != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	setString("MODEL_BACKEND", &c.Model.Backend)
	setString("MODEL_NAME", &c.Model.Name)
	setString("HF_ENDPOINT", &c.Model.HFEndpoint)
	setString("HF_TOKEN", &c.HFToken)
	setString("OPENAI_API_KEY", &c.OpenAIAPIKey)
	setString("OPENAI_BASE_URL", &c.Model.OpenAIBaseURL)
	setString("OLLAMA_BASE_URL", &c.Model.OllamaBaseURL)

	setString("OTEL_TRACES_EXPORTER", &c.Telemetry.Traces)
	setString("OTEL_METRICS_EXPORTER", &c.Telemetry.Metrics)
	setString("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint)

	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_DIR", &c.Log.Dir)

	var errs []error
	if v := getenv("EXPLAINER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("EXPLAINER_PORT: %w", err))
		}
		c.Server.Port = port
	}
	if v := getenv("MODEL_LOAD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MODEL_LOAD_TIMEOUT: %w", err))
		}
		c.Model.LoadTimeout = d
	}
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: %w", err))
		}
		c.RateLimit.RPS = rps
	}
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST: %w", err))
		}
		c.RateLimit.Burst = burst
	}
	if v := getenv("LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOG_JSON: %w", err))
		}
		c.Log.JSON = b
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the values that would otherwise only fail at startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if _, err := llm.ParseBackend(c.Model.Backend); err != nil {
		errs = append(errs, fmt.Errorf("model.backend: %w", err))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Telemetry.Traces {
	case telemetry.ExporterNone, telemetry.ExporterOTLP, telemetry.ExporterStdout:
	default:
		errs = append(errs, fmt.Errorf("telemetry.traces: %w: %s", telemetry.ErrUnknownExporter, c.Telemetry.Traces))
	}
	switch c.Telemetry.Metrics {
	case telemetry.ExporterNone, telemetry.ExporterPrometheus, telemetry.ExporterStdout:
	default:
		errs = append(errs, fmt.Errorf("telemetry.metrics: %w: %s", telemetry.ErrUnknownExporter, c.Telemetry.Metrics))
	}
	return errors.Join(errs...)
}

// Logging returns the logger configuration for service.
func (c *Config) Logging(service string) logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.Config{
		Level:   level,
		LogDir:  c.Log.Dir,
		Service: service,
		JSON:    c.Log.JSON,
	}
}

// Service returns the explainer.Config for this configuration.
func (c *Config) Service(version string) explainer.Config {
	backend, _ := llm.ParseBackend(c.Model.Backend)
	return explainer.Config{
		Host:           c.Server.Host,
		Port:           c.Server.Port,
		AllowedOrigins: c.Server.AllowedOrigins,
		Model: llm.Config{
			Backend:       backend,
			ModelName:     c.Model.Name,
			HFEndpoint:    c.Model.HFEndpoint,
			HFToken:       c.HFToken,
			OpenAIAPIKey:  c.OpenAIAPIKey,
			OpenAIBaseURL: c.Model.OpenAIBaseURL,
			OllamaBaseURL: c.Model.OllamaBaseURL,
			KeepAlive:     c.Model.KeepAlive,
		},
		ModelLoadTimeout: c.Model.LoadTimeout,
		Telemetry: telemetry.Config{
			ServiceName:    "code-explainer",
			ServiceVersion: version,
			Environment:    c.Telemetry.Environment,
			TraceExporter:  c.Telemetry.Traces,
			MetricExporter: c.Telemetry.Metrics,
			OTLPEndpoint:   c.Telemetry.OTLPEndpoint,
		},
		RateLimitRPS:    c.RateLimit.RPS,
		RateLimitBurst:  c.RateLimit.Burst,
		ShutdownTimeout: c.Server.ShutdownTimeout,
		GinMode:         c.Server.GinMode,
	}
}

// WriteDefault writes the default configuration as YAML to path, creating
// parent directories. An existing file is left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
