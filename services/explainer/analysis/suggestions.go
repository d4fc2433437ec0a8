// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"strings"
	"unicode/utf8"
)

// MaxLineLength is the longest line (in code points) that does not draw a
// readability suggestion.
const MaxLineLength = 80

// Advisory strings shared by the per-line and whole-text heuristics.
const (
	SuggestBreakLongLine     = "Consider breaking this long line into multiple lines for better readability"
	SuggestElseClause        = "Consider adding an else clause to handle the alternative case"
	SuggestComprehension     = "Consider using list comprehension or built-in functions for better performance"
	SuggestLogging           = "Consider using proper logging instead of print statements"
	SuggestExceptionHandling = "Add proper exception handling"
)

type suggestionRule struct {
	match   func(line string) bool
	message string
}

// suggestionRules are all evaluated; every match contributes its message.
var suggestionRules = []suggestionRule{
	{
		match:   func(line string) bool { return utf8.RuneCountInString(line) > MaxLineLength },
		message: SuggestBreakLongLine,
	},
	{
		match: func(line string) bool {
			return strings.Contains(line, "if ") && !strings.Contains(line, "else")
		},
		message: SuggestElseClause,
	},
	{
		match: func(line string) bool {
			return strings.Contains(line, "for ") && strings.Contains(line, "range(")
		},
		message: SuggestComprehension,
	},
	{
		match:   func(line string) bool { return strings.Contains(line, "print(") },
		message: SuggestLogging,
	},
	{
		match: func(line string) bool {
			return strings.Contains(line, "try") && !strings.Contains(line, "except")
		},
		message: SuggestExceptionHandling,
	},
}

// Suggest returns the advisories for one raw (untrimmed) line in rule order.
// The result is empty, not nil, when nothing fires.
func Suggest(line string) []string {
	out := []string{}
	for _, r := range suggestionRules {
		if r.match(line) {
			out = append(out, r.message)
		}
	}
	return out
}
