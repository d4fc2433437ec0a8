// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command explainer runs the code explainer service and its local tools.
//
// # Commands
//
//   - serve: start the HTTP API (POST /api/explain, GET /api/health, /metrics)
//   - analyze: explain local files without a server, optionally re-running on change
//   - explain: send files to a running server
//   - health: check a running server
//   - config init: write a default YAML config
//   - version: print the build version
//
// # Environment Variables
//
// See cmd/explainer/config. The most common ones:
//
//   - EXPLAINER_PORT: HTTP port (default: 8000)
//   - MODEL_BACKEND: none, huggingface, openai, ollama (default: none)
//   - OTEL_TRACES_EXPORTER: otlp, stdout, none (default: none)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//
// # Usage
//
//	go build -o explainer ./cmd/explainer
//	./explainer serve --port 8000
//	./explainer analyze --watch main.py
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AleutianAI/CodeExplainer/cmd/explainer/config"
	"github.com/AleutianAI/CodeExplainer/pkg/logging"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app holds state shared by subcommands.
type app struct {
	configPath string
	cfg        config.Config
	logger     *logging.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "explainer",
		Short: "Explain source code line by line",
		Long: `explainer annotates source code line by line, estimates its complexity
and suggests improvements. Run it as an HTTP service or directly on files.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newExplainCmd(),
		newHealthCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads configuration and installs the default logger. Log output
// goes to the command's stderr.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, os.Getenv)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	lc := cfg.Logging("explainer")
	lc.Output = cmd.ErrOrStderr()
	a.logger = logging.New(lc)
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "explainer %s\n", version)
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init PATH",
		Short: "Write the default configuration to PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	})
	return cmd
}
