// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log/slog"

	"github.com/AleutianAI/CodeExplainer/services/explainer"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			slog.SetDefault(a.logger.Slog())

			svcCfg := a.cfg.Service(version)
			if cmd.Flags().Changed("host") {
				svcCfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				svcCfg.Port = port
			}
			svcCfg.Logger = a.logger.Slog()

			log := a.logger.With("command", "serve")
			log.Info("Starting explainer",
				"version", version,
				"host", svcCfg.Host,
				"port", svcCfg.Port,
				"backend", string(svcCfg.Model.Backend),
			)

			svc, err := explainer.New(svcCfg)
			if err != nil {
				return fmt.Errorf("create explainer: %w", err)
			}
			if err := svc.Run(cmd.Context()); err != nil {
				log.Error("explainer stopped", "error", err)
				return err
			}
			log.Info("explainer stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind address (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	return cmd
}
