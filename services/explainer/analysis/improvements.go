// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import "strings"

// Whole-submission hints.
const (
	NoteGenerators          = "Consider using generators or iterators to reduce memory usage"
	PracticeAddComments     = "Add comments to explain complex logic"
	FixAddInputValidation   = "Add input validation to prevent unexpected errors"
	commentPrefix           = "#"
	unvalidatedInputPattern = "input()"
)

// SummarizeImprovements inspects the whole text and returns time, space,
// best-practice and error-handling hints.
func SummarizeImprovements(code string) ImprovementReport {
	report := ImprovementReport{
		BestPractices: []string{},
		ErrorFixes:    []string{},
	}

	if strings.Contains(code, "for") && strings.Contains(code, "range") {
		note := SuggestComprehension
		report.TimeNote = &note
	}
	if allocatesCollection(code) {
		note := NoteGenerators
		report.SpaceNote = &note
	}

	if !hasCommentLine(code) {
		report.BestPractices = append(report.BestPractices, PracticeAddComments)
	}
	if strings.Contains(code, "print") {
		report.BestPractices = append(report.BestPractices, SuggestLogging)
	}

	if strings.Contains(code, "try") && !strings.Contains(code, "except") {
		report.ErrorFixes = append(report.ErrorFixes, SuggestExceptionHandling)
	}
	if strings.Contains(code, unvalidatedInputPattern) {
		report.ErrorFixes = append(report.ErrorFixes, FixAddInputValidation)
	}

	return report
}

func hasCommentLine(code string) bool {
	for _, line := range strings.Split(code, "\n") {
		if strings.HasPrefix(TrimSpace(line), commentPrefix) {
			return true
		}
	}
	return false
}
