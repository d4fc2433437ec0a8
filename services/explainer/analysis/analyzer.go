// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"context"
	"strings"
)

// =============================================================================
// Observer
// =============================================================================

// Observer receives callbacks while an Analyzer runs.
//
// # Description
//
// Observers let callers count what the pipeline did without the pipeline
// knowing about metrics or logging. ObserveLine fires once per explained
// line with the name of the classifier rule that matched. ObserveImprovements
// fires only when the improvement summary was computed.
//
// # Thread Safety
//
// One Observer may be shared by concurrent Analyze calls, so implementations
// must be safe for concurrent use.
type Observer interface {
	ObserveLine(ctx context.Context, rule string)
	ObserveImprovements(ctx context.Context)
}

// NopObserver ignores all callbacks.
type NopObserver struct{}

func (NopObserver) ObserveLine(context.Context, string) {}
func (NopObserver) ObserveImprovements(context.Context) {}

// =============================================================================
// Analyzer
// =============================================================================

// Analyzer composes the classifier, suggestion, complexity and improvement
// heuristics into one pass over a submission.
//
// # Thread Safety
//
// Safe for concurrent use. Analyzer holds no mutable state.
type Analyzer struct {
	observer Observer
}

// NewAnalyzer returns an Analyzer reporting to observer. A nil observer is
// replaced with NopObserver.
func NewAnalyzer(observer Observer) *Analyzer {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Analyzer{observer: observer}
}

// Analyze runs the full pipeline over code.
//
// # Description
//
// Lines are split on "\n" and numbered from 1. Blank lines still advance the
// line number but produce no explanation. The complexity estimate always
// covers the whole text. The improvement summary is computed only when
// includeImprovements is true; otherwise Result.Improvements is nil.
//
// # Outputs
//
//   - Result: Never fails. Explanations is empty (not nil) for blank input.
func (a *Analyzer) Analyze(ctx context.Context, code string, includeImprovements bool) Result {
	result := Result{
		Explanations: a.explainLines(ctx, code),
		Complexity:   EstimateComplexity(code),
	}

	if includeImprovements {
		report := SummarizeImprovements(code)
		result.Improvements = &report
		a.observer.ObserveImprovements(ctx)
	}

	return result
}

func (a *Analyzer) explainLines(ctx context.Context, code string) []LineExplanation {
	lines := strings.Split(code, "\n")
	out := make([]LineExplanation, 0, len(lines))

	for i, line := range lines {
		if IsBlank(line) {
			continue
		}
		rule, sentence := classify(line)
		a.observer.ObserveLine(ctx, rule)
		out = append(out, LineExplanation{
			LineNumber:  i + 1,
			Source:      line,
			Explanation: sentence,
			Suggestions: Suggest(line),
		})
	}
	return out
}
