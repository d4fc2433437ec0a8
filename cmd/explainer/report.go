// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/AleutianAI/CodeExplainer/pkg/ux"
	"github.com/AleutianAI/CodeExplainer/services/explainer/datatypes"
)

// fileResult is one analyzed input in --json output.
type fileResult struct {
	File string `json:"file"`
	*datatypes.ExplainResponse
}

// writeJSON prints one indented object per result.
func writeJSON(w io.Writer, results []fileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode %s: %w", r.File, err)
		}
	}
	return nil
}

// renderReport prints a human-readable report for one file.
func renderReport(p *ux.Printer, r fileResult) {
	p.Title(r.File)
	p.KeyValue("Complexity", r.Complexity)
	p.KeyValue("Time complexity", r.TimeComplexity)
	p.KeyValue("Space complexity", r.SpaceComplexity)

	if len(r.Explanations) == 0 {
		p.Muted("(no code)")
	}
	for _, e := range r.Explanations {
		var body strings.Builder
		body.WriteString(strings.TrimSpace(e.Code))
		body.WriteString("\n")
		body.WriteString(e.Explanation)
		for _, s := range e.Suggestions {
			body.WriteString("\n")
			body.WriteString(string(ux.IconArrow))
			body.WriteString(" ")
			body.WriteString(s)
		}
		p.Box(fmt.Sprintf("line %d", e.LineNumber), body.String())
	}

	imp := r.Improvements
	if imp == nil {
		return
	}
	p.Title("Improvements")
	if imp.TimeComplexity != nil {
		p.Info("Time: " + *imp.TimeComplexity)
	}
	if imp.SpaceComplexity != nil {
		p.Info("Space: " + *imp.SpaceComplexity)
	}
	for _, s := range imp.BestPractices {
		p.Bullet(s)
	}
	for _, s := range imp.ErrorFixes {
		p.Warning(s)
	}
	if imp.TimeComplexity == nil && imp.SpaceComplexity == nil &&
		len(imp.BestPractices) == 0 && len(imp.ErrorFixes) == 0 {
		p.Success("Nothing to improve")
	}
}

// printResults writes results as JSON or as styled reports.
func printResults(w io.Writer, results []fileResult, asJSON bool) error {
	if asJSON {
		return writeJSON(w, results)
	}
	p := ux.NewPrinter(w)
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderReport(p, r)
	}
	return nil
}
