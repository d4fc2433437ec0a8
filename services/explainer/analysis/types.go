// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

// Level is the coarse complexity label attached to a submission.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Big-O notations reported for time and space.
const (
	NotationConstant = "O(1)"
	NotationLinear   = "O(n)"
)

// LineExplanation describes one non-blank source line.
type LineExplanation struct {
	// LineNumber is 1-based and counts blank lines too.
	LineNumber int

	// Source is the raw line, leading and trailing whitespace preserved.
	Source string

	Explanation string

	// Suggestions is empty (never nil) when no advisory rule fired.
	Suggestions []string
}

// ComplexityReport is the outcome of EstimateComplexity.
type ComplexityReport struct {
	Level Level
	Time  string
	Space string

	// Raw keyword counts the label was derived from.
	LoopCount        int
	ConditionalCount int
}

// ImprovementReport holds whole-submission hints.
//
// TimeNote and SpaceNote are nil when the corresponding heuristic did not
// fire. BestPractices and ErrorFixes are never nil.
type ImprovementReport struct {
	TimeNote      *string
	SpaceNote     *string
	BestPractices []string
	ErrorFixes    []string
}

// Result is the full analysis of one submission.
type Result struct {
	Complexity   ComplexityReport
	Explanations []LineExplanation

	// Improvements is nil unless improvements were requested.
	Improvements *ImprovementReport
}
