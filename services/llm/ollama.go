// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
)

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model     string          `json:"model"`
	Messages  []ollamaMessage `json:"messages"`
	Stream    bool            `json:"stream"`
	KeepAlive string          `json:"keep_alive,omitempty"`
}

// OllamaModel is a model held resident by an Ollama server.
//
// Close asks the server to evict it.
type OllamaModel struct {
	name       string
	baseURL    string
	httpClient *http.Client

	closeOnce sync.Once
	closeErr  error
}

func (m *OllamaModel) Name() string     { return m.name }
func (m *OllamaModel) Backend() Backend { return BackendOllama }

func (m *OllamaModel) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		slog.Info("Unloading model", slog.String("model", m.name))
		m.closeErr = postOllamaChat(ctx, m.httpClient, m.baseURL, ollamaChatRequest{
			Model:     m.name,
			Messages:  []ollamaMessage{{Role: "user", Content: "bye"}},
			KeepAlive: "0",
		})
		if m.closeErr != nil {
			m.closeErr = fmt.Errorf("unloading model: %w", m.closeErr)
		}
	})
	return m.closeErr
}

func newOllamaLoader(cfg Config) Loader {
	return func(ctx context.Context) (Model, error) {
		slog.Info("Warming model",
			slog.String("model", cfg.ModelName),
			slog.String("keep_alive", cfg.KeepAlive),
		)

		err := postOllamaChat(ctx, cfg.HTTPClient, cfg.OllamaBaseURL, ollamaChatRequest{
			Model:     cfg.ModelName,
			Messages:  []ollamaMessage{{Role: "user", Content: "ping"}},
			KeepAlive: cfg.KeepAlive,
		})
		if err != nil {
			return nil, fmt.Errorf("warming model %s: %w", cfg.ModelName, err)
		}

		return &OllamaModel{
			name:       cfg.ModelName,
			baseURL:    cfg.OllamaBaseURL,
			httpClient: cfg.HTTPClient,
		}, nil
	}
}

// postOllamaChat sends a non-streaming chat request and discards the reply.
func postOllamaChat(ctx context.Context, client *http.Client, baseURL string, body ollamaChatRequest) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
