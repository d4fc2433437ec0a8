// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedRequest keeps the last request path and auth header seen by a
// test server.
type capturedRequest struct {
	mu   sync.Mutex
	path string
	auth string
}

func (c *capturedRequest) record(r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = r.URL.Path
	c.auth = r.Header.Get("Authorization")
}

func (c *capturedRequest) get() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path, c.auth
}

// =============================================================================
// NewLoader / ParseBackend
// =============================================================================

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
	}{
		{"", BackendNone},
		{"none", BackendNone},
		{"HF", BackendHuggingFace},
		{"huggingface", BackendHuggingFace},
		{" OpenAI ", BackendOpenAI},
		{"ollama", BackendOllama},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseBackend("llamafile")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestNewLoader_UnknownBackend(t *testing.T) {
	_, err := NewLoader(Config{Backend: "carrier-pigeon"})

	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestNewLoader_None(t *testing.T) {
	load, err := NewLoader(Config{})
	require.NoError(t, err)

	m, err := load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DefaultModelName, m.Name())
	assert.Equal(t, BackendNone, m.Backend())
	assert.NoError(t, m.Close(context.Background()))
}

// =============================================================================
// Hugging Face Hub
// =============================================================================

func TestHubLoader(t *testing.T) {
	var seen capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.record(r)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           "facebook/bart-large-cnn",
			"sha":          "abc123",
			"pipeline_tag": "summarization",
		})
	}))
	defer srv.Close()

	load, err := NewLoader(Config{
		Backend:    BackendHuggingFace,
		HFEndpoint: srv.URL + "/",
		HFToken:    "hf_secret",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	m, err := load(context.Background())
	require.NoError(t, err)

	path, auth := seen.get()
	assert.Equal(t, "/api/models/facebook/bart-large-cnn", path)
	assert.Equal(t, "Bearer hf_secret", auth)
	require.IsType(t, &HubModel{}, m)
	hub := m.(*HubModel)
	assert.Equal(t, "facebook/bart-large-cnn", hub.Name())
	assert.Equal(t, "abc123", hub.Revision())
	assert.Equal(t, "summarization", hub.Pipeline())
	assert.Equal(t, BackendHuggingFace, hub.Backend())
}

func TestHubLoader_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Repository not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	load, err := NewLoader(Config{
		Backend:    BackendHuggingFace,
		ModelName:  "nobody/nothing",
		HFEndpoint: srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	_, err = load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "nobody/nothing")
}

// =============================================================================
// OpenAI
// =============================================================================

func TestOpenAILoader(t *testing.T) {
	var seen capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.record(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gpt-4o-mini","object":"model","owned_by":"openai","created":1}`))
	}))
	defer srv.Close()

	load, err := NewLoader(Config{
		Backend:       BackendOpenAI,
		ModelName:     "gpt-4o-mini",
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: srv.URL + "/v1",
		HTTPClient:    srv.Client(),
	})
	require.NoError(t, err)

	m, err := load(context.Background())
	require.NoError(t, err)

	path, auth := seen.get()
	assert.Equal(t, "/v1/models/gpt-4o-mini", path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o-mini", m.Name())
	assert.Equal(t, BackendOpenAI, m.Backend())
	assert.Equal(t, "openai", m.(*OpenAIModel).OwnedBy())
}

func TestOpenAILoader_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"The model does not exist","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	load, err := NewLoader(Config{
		Backend:       BackendOpenAI,
		ModelName:     "missing",
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: srv.URL + "/v1",
		HTTPClient:    srv.Client(),
	})
	require.NoError(t, err)

	_, err = load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI model lookup failed")
}

// =============================================================================
// Ollama
// =============================================================================

func TestOllamaLoader_WarmAndUnload(t *testing.T) {
	// Arrange
	var mu sync.Mutex
	var requests []ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req ollamaChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		requests = append(requests, req)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"done":true}`))
	}))
	defer srv.Close()

	load, err := NewLoader(Config{
		Backend:       BackendOllama,
		ModelName:     "bart",
		OllamaBaseURL: srv.URL,
		KeepAlive:     "5m",
		HTTPClient:    srv.Client(),
	})
	require.NoError(t, err)

	// Act
	m, err := load(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Close(context.Background()))
	require.NoError(t, m.Close(context.Background()))

	// Assert
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 2, "second Close must not unload again")
	assert.Equal(t, "bart", requests[0].Model)
	assert.Equal(t, "5m", requests[0].KeepAlive)
	assert.False(t, requests[0].Stream)
	assert.Equal(t, "0", requests[1].KeepAlive)
}

func TestOllamaLoader_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	load, err := NewLoader(Config{
		Backend:       BackendOllama,
		ModelName:     "ghost",
		OllamaBaseURL: srv.URL,
		HTTPClient:    srv.Client(),
	})
	require.NoError(t, err)

	_, err = load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warming model ghost")
	assert.Contains(t, err.Error(), "status 404")
}
