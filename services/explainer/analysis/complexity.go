// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"regexp"
	"strings"
)

// Keyword counts deliberately have no word boundaries: "format" counts as a
// loop and "verify" as a conditional.
var (
	loopPattern        = regexp.MustCompile(`for|while`)
	conditionalPattern = regexp.MustCompile(`if|else|elif|switch|case`)
)

// Thresholds for the complexity label.
const (
	highLoopThreshold        = 2
	highConditionalThreshold = 3
	mediumConditionalFloor   = 1
)

// EstimateComplexity labels the whole submission from keyword counts.
func EstimateComplexity(code string) ComplexityReport {
	loops := len(loopPattern.FindAllStringIndex(code, -1))
	conditionals := len(conditionalPattern.FindAllStringIndex(code, -1))

	report := ComplexityReport{
		Level:            LevelLow,
		Time:             NotationConstant,
		Space:            NotationConstant,
		LoopCount:        loops,
		ConditionalCount: conditionals,
	}

	switch {
	case loops > highLoopThreshold || conditionals > highConditionalThreshold:
		report.Level = LevelHigh
	case loops > 0 || conditionals > mediumConditionalFloor:
		report.Level = LevelMedium
	}

	if loops > 0 {
		report.Time = NotationLinear
	}
	if allocatesCollection(code) {
		report.Space = NotationLinear
	}
	return report
}

// allocatesCollection reports whether the text contains an empty list or
// map literal.
func allocatesCollection(code string) bool {
	return strings.Contains(code, "[]") || strings.Contains(code, "{}")
}
