// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// OpenAIModel is a model confirmed to exist on an OpenAI-compatible API.
type OpenAIModel struct {
	id      string
	ownedBy string
}

func (m *OpenAIModel) Name() string                { return m.id }
func (m *OpenAIModel) Backend() Backend            { return BackendOpenAI }
func (m *OpenAIModel) Close(context.Context) error { return nil }

// OwnedBy is the organization the API reports as the model owner.
func (m *OpenAIModel) OwnedBy() string { return m.ownedBy }

func newOpenAILoader(cfg Config, apiKey string) Loader {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	clientCfg.HTTPClient = cfg.HTTPClient
	client := openai.NewClientWithConfig(clientCfg)

	return func(ctx context.Context) (Model, error) {
		slog.Info("Resolving OpenAI model", "model", cfg.ModelName)

		info, err := client.GetModel(ctx, cfg.ModelName)
		if err != nil {
			return nil, fmt.Errorf("OpenAI model lookup failed: %w", err)
		}

		id := info.ID
		if id == "" {
			id = cfg.ModelName
		}
		return &OpenAIModel{id: id, ownedBy: info.OwnedBy}, nil
	}
}
