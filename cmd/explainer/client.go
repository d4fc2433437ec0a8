// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/CodeExplainer/pkg/ux"
	"github.com/AleutianAI/CodeExplainer/services/explainer/datatypes"
	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:8000"

// apiClient talks to a running explainer.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health calls GET /api/health.
func (c *apiClient) Health(ctx context.Context) (*datatypes.HealthResponse, error) {
	var out datatypes.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Explain calls POST /api/explain.
func (c *apiClient) Explain(ctx context.Context, req *datatypes.ExplainRequest) (*datatypes.ExplainResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	var out datatypes.ExplainResponse
	if err := c.do(ctx, http.MethodPost, "/api/explain", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr datatypes.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// =============================================================================
// Commands
// =============================================================================

func newHealthCmd() *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running explainer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := newAPIClient(server, timeout)
			errOut := cmd.ErrOrStderr()

			var status string
			err := ux.WithSpinner(errOut, ux.DetectMode(errOut), "Contacting "+client.baseURL, func() error {
				resp, err := client.Health(cmd.Context())
				if err != nil {
					return err
				}
				status = resp.Status
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", envOr("EXPLAINER_URL", defaultServerURL), "explainer base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}

func newExplainCmd() *cobra.Command {
	var (
		server   string
		timeout  time.Duration
		language string
		opts     analyzeOptions
	)

	cmd := &cobra.Command{
		Use:   "explain [flags] FILE...",
		Short: "Explain files using a running explainer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPaths(args, false); err != nil {
				return err
			}
			client := newAPIClient(server, timeout)
			errOut := cmd.ErrOrStderr()
			mode := ux.DetectMode(errOut)
			include := !opts.noImprovements

			results := make([]fileResult, 0, len(args))
			for _, path := range args {
				code, err := readSource(cmd.InOrStdin(), path)
				if err != nil {
					return err
				}
				req := &datatypes.ExplainRequest{Code: &code, IncludeImprovements: datatypes.Bool(include)}
				if language != "" {
					req.Language = &language
				}

				var resp *datatypes.ExplainResponse
				err = ux.WithSpinner(errOut, mode, "Explaining "+displayName(path), func() error {
					resp, err = client.Explain(cmd.Context(), req)
					return err
				})
				if err != nil {
					return err
				}
				results = append(results, fileResult{File: displayName(path), ExplainResponse: resp})
			}
			return printResults(cmd.OutOrStdout(), results, opts.json)
		},
	}

	cmd.Flags().StringVar(&server, "server", envOr("EXPLAINER_URL", defaultServerURL), "explainer base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	cmd.Flags().StringVar(&language, "language", "", "language hint sent with the request")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON instead of a report")
	cmd.Flags().BoolVar(&opts.noImprovements, "no-improvements", false, "skip the improvement summary")
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
