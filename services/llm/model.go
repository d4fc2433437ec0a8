// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Model
// =============================================================================

// Model is a loaded summarization model.
//
// # Description
//
// The explainer never reads output from the model. A Model only proves that
// the configured backend could produce a usable handle, and owns whatever
// that backend needs released on shutdown.
type Model interface {
	// Name is the model identifier as reported by the backend.
	Name() string

	// Backend is the backend that produced this model.
	Backend() Backend

	// Close releases backend resources. It is safe to call more than once.
	Close(ctx context.Context) error
}

// Loader produces a Model. It is invoked at most once per successful load
// by a Handle.
type Loader func(ctx context.Context) (Model, error)

// Backend selects where models are loaded from.
type Backend string

const (
	// BackendNone loads an in-process placeholder. No network access.
	BackendNone Backend = "none"

	// BackendHuggingFace resolves the model on the Hugging Face Hub.
	BackendHuggingFace Backend = "huggingface"

	// BackendOpenAI resolves the model through an OpenAI-compatible API.
	BackendOpenAI Backend = "openai"

	// BackendOllama pulls the model into memory on an Ollama server.
	BackendOllama Backend = "ollama"
)

// DefaultModelName is the summarization model requested when none is set.
const DefaultModelName = "facebook/bart-large-cnn"

const (
	defaultHFEndpoint     = "https://huggingface.co"
	defaultOllamaBaseURL  = "http://localhost:11434"
	defaultKeepAlive      = "10m"
	defaultRequestTimeout = 60 * time.Second
	openAISecretPath      = "/run/secrets/openai_api_key"
)

var (
	// ErrUnknownBackend is returned by NewLoader for an unsupported backend.
	ErrUnknownBackend = errors.New("unknown model backend")

	// ErrHandleClosed is returned by Handle.Get after Close.
	ErrHandleClosed = errors.New("model handle closed")

	// ErrMissingAPIKey is returned when the openai backend has no key.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable not set")

	errNoModel = errors.New("loader returned no model")
)

// =============================================================================
// Configuration
// =============================================================================

// Config selects and parameterizes a backend.
//
// All fields are optional; NewLoader fills defaults.
type Config struct {
	Backend   Backend
	ModelName string

	// HFEndpoint is the Hugging Face Hub base URL. HFToken is sent as a
	// bearer token when set.
	HFEndpoint string
	HFToken    string

	// OpenAIAPIKey falls back to /run/secrets/openai_api_key when empty.
	OpenAIAPIKey  string
	OpenAIBaseURL string

	OllamaBaseURL string

	// KeepAlive is how long Ollama keeps the model resident.
	KeepAlive string

	// HTTPClient is shared by the HTTP-based backends.
	HTTPClient *http.Client
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendNone
	}
	if c.ModelName == "" {
		c.ModelName = DefaultModelName
	}
	if c.HFEndpoint == "" {
		c.HFEndpoint = defaultHFEndpoint
	}
	if c.OllamaBaseURL == "" {
		c.OllamaBaseURL = defaultOllamaBaseURL
	}
	if c.KeepAlive == "" {
		c.KeepAlive = defaultKeepAlive
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	c.HFEndpoint = strings.TrimRight(c.HFEndpoint, "/")
	c.OllamaBaseURL = strings.TrimRight(c.OllamaBaseURL, "/")
}

// NewLoader returns the Loader for cfg.Backend.
//
// # Description
//
// NewLoader validates the configuration but performs no I/O. The returned
// Loader does the actual work when a Handle first needs a model.
//
// # Outputs
//
//   - Loader: Ready to pass to NewHandle.
//   - error: ErrUnknownBackend, or ErrMissingAPIKey for openai.
func NewLoader(cfg Config) (Loader, error) {
	cfg.applyDefaults()

	switch cfg.Backend {
	case BackendNone:
		return func(context.Context) (Model, error) {
			return &placeholderModel{name: cfg.ModelName}, nil
		}, nil

	case BackendHuggingFace:
		return newHubLoader(cfg), nil

	case BackendOpenAI:
		key := cfg.OpenAIAPIKey
		if key == "" {
			raw, err := os.ReadFile(openAISecretPath)
			if err != nil {
				slog.Error("OPENAI_API_KEY not set and secret not found", "path", openAISecretPath)
				return nil, ErrMissingAPIKey
			}
			key = strings.TrimSpace(string(raw))
			slog.Info("Read the OpenAI API key from secrets")
		}
		return newOpenAILoader(cfg, key), nil

	case BackendOllama:
		return newOllamaLoader(cfg), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// ParseBackend maps a config string to a Backend. Matching is case
// insensitive and "hf" is accepted for huggingface.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BackendNone, nil
	case "huggingface", "hf":
		return BackendHuggingFace, nil
	case "openai":
		return BackendOpenAI, nil
	case "ollama":
		return BackendOllama, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownBackend, s)
	}
}

// placeholderModel is produced by BackendNone.
type placeholderModel struct {
	name string
}

func (m *placeholderModel) Name() string                { return m.name }
func (m *placeholderModel) Backend() Backend            { return BackendNone }
func (m *placeholderModel) Close(context.Context) error { return nil }
