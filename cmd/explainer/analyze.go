// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/AleutianAI/CodeExplainer/pkg/logging"
	"github.com/AleutianAI/CodeExplainer/services/explainer/analysis"
	"github.com/AleutianAI/CodeExplainer/services/explainer/datatypes"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const stdinArg = "-"

type analyzeOptions struct {
	json           bool
	noImprovements bool
	watch          bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [flags] FILE...",
		Short: "Explain local files without a server",
		Long: `Explain one or more files locally. Use "-" to read from stdin.
Output is a styled report on a terminal and plain text otherwise; --json
prints one JSON object per file. The summarization model is never loaded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args, opts, a.logger.With("command", "analyze"))
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON instead of a report")
	cmd.Flags().BoolVar(&opts.noImprovements, "no-improvements", false, "skip the improvement summary")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-analyze files when they change")
	return cmd
}

// runAnalyze analyzes paths once, or keeps watching them with opts.watch.
// A nil logger means logging.Default().
func runAnalyze(ctx context.Context, stdin io.Reader, out io.Writer, paths []string, opts analyzeOptions, logger *logging.Logger) error {
	if err := checkPaths(paths, opts.watch); err != nil {
		return err
	}
	if logger == nil {
		logger = logging.Default()
	}

	analyzer := analysis.NewAnalyzer(nil)
	include := !opts.noImprovements

	if !opts.watch {
		results, err := analyzeFiles(ctx, analyzer, stdin, paths, include)
		if err != nil {
			return err
		}
		return printResults(out, results, opts.json)
	}
	return watchFiles(ctx, analyzer, out, paths, opts, logger)
}

func checkPaths(paths []string, watch bool) error {
	stdinCount := 0
	for _, p := range paths {
		if p == stdinArg {
			stdinCount++
		}
	}
	switch {
	case stdinCount > 1:
		return errors.New(`"-" may be given only once`)
	case stdinCount == 1 && watch:
		return errors.New("stdin cannot be watched")
	}
	return nil
}

// analyzeFiles reads and analyzes paths concurrently. Results keep the
// order of paths; the first read error cancels the rest.
func analyzeFiles(ctx context.Context, analyzer *analysis.Analyzer, stdin io.Reader, paths []string, include bool) ([]fileResult, error) {
	results := make([]fileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			code, err := readSource(stdin, path)
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			res := analyzer.Analyze(ctx, code, include)
			results[i] = fileResult{File: displayName(path), ExplainResponse: datatypes.NewExplainResponse(res)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readSource(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinArg {
		data, err = io.ReadAll(io.LimitReader(stdin, datatypes.MaxCodeBytes+1))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", displayName(path), err)
	}
	if len(data) > datatypes.MaxCodeBytes {
		return "", fmt.Errorf("%s: exceeds %d bytes", displayName(path), datatypes.MaxCodeBytes)
	}
	return string(data), nil
}

func displayName(path string) string {
	if path == stdinArg {
		return "<stdin>"
	}
	return path
}

// watchFiles prints an initial report, then re-analyzes a file after each
// write. Parent directories are watched so editors that replace files on
// save are still seen. Returns when ctx is cancelled.
func watchFiles(ctx context.Context, analyzer *analysis.Analyzer, out io.Writer, paths []string, opts analyzeOptions, logger *logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		targets[abs] = p
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Debug("watching directory", "dir", dir)
	}

	include := !opts.noImprovements
	results, err := analyzeFiles(ctx, analyzer, nil, paths, include)
	if err != nil {
		return err
	}
	if err := printResults(out, results, opts.json); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			name, ok := targets[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			results, err := analyzeFiles(ctx, analyzer, nil, []string{name}, include)
			if err != nil {
				logger.Warn("re-analysis failed", "file", name, "error", err)
				continue
			}
			logger.Debug("re-analyzed", "file", name, "op", ev.Op.String())
			if !opts.json {
				fmt.Fprintln(out)
			}
			if err := printResults(out, results, opts.json); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
