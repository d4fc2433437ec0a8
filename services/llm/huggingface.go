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
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const summarizationPipeline = "summarization"

// hubModelInfo is the subset of GET /api/models/{id} we read.
type hubModelInfo struct {
	ID          string `json:"id"`
	SHA         string `json:"sha"`
	PipelineTag string `json:"pipeline_tag"`
	LibraryName string `json:"library_name"`
}

// HubModel is a model resolved on the Hugging Face Hub.
type HubModel struct {
	info hubModelInfo
}

func (m *HubModel) Name() string                { return m.info.ID }
func (m *HubModel) Backend() Backend            { return BackendHuggingFace }
func (m *HubModel) Close(context.Context) error { return nil }

// Revision is the commit the Hub reported for the model.
func (m *HubModel) Revision() string { return m.info.SHA }

// Pipeline is the Hub's pipeline tag, e.g. "summarization".
func (m *HubModel) Pipeline() string { return m.info.PipelineTag }

func newHubLoader(cfg Config) Loader {
	return func(ctx context.Context) (Model, error) {
		url := cfg.HFEndpoint + "/api/models/" + cfg.ModelName

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating hub request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if cfg.HFToken != "" {
			req.Header.Set("Authorization", "Bearer "+cfg.HFToken)
		}

		resp, err := cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("sending hub request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("hub lookup for %s failed with status %d: %s",
				cfg.ModelName, resp.StatusCode, string(body))
		}

		var info hubModelInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("decoding hub response: %w", err)
		}
		if info.ID == "" {
			info.ID = cfg.ModelName
		}
		if info.PipelineTag != "" && info.PipelineTag != summarizationPipeline {
			slog.Warn("Configured model is not a summarization model",
				slog.String("model", info.ID),
				slog.String("pipeline_tag", info.PipelineTag),
			)
		}

		return &HubModel{info: info}, nil
	}
}
