// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"fmt"
	"strings"
)

// Explanation sentences produced by the classifier.
const (
	ExplainFunction    = "This defines a function named %s"
	ExplainConditional = "This is a conditional statement that checks a condition"
	ExplainLoop        = "This is a loop that iterates over a sequence or continues while a condition is true"
	ExplainReturn      = "This statement returns a value from the function"
	ExplainPrint       = "This statement outputs text to the console"
	ExplainAssignment  = "This assigns a value to a variable"
	ExplainImport      = "This imports a module or specific components from a module"
	ExplainClass       = "This defines a class named %s"
	ExplainDefault     = "This line contains code that performs an operation"
)

// Rule is one entry of the classifier table.
//
// Match and Explain both receive the trimmed line.
type Rule struct {
	Name    string
	Match   func(line string) bool
	Explain func(line string) string
}

func fixed(sentence string) func(string) string {
	return func(string) string { return sentence }
}

func containsAny(line string, tokens ...string) bool {
	for _, tok := range tokens {
		if strings.Contains(line, tok) {
			return true
		}
	}
	return false
}

// classifierRules is evaluated top to bottom; the first match wins.
var classifierRules = []Rule{
	{
		Name: "function",
		Match: func(line string) bool {
			return strings.HasPrefix(line, "def ") || strings.HasPrefix(line, "function ")
		},
		Explain: func(line string) string {
			return fmt.Sprintf(ExplainFunction, definedName(line))
		},
	},
	{
		Name:    "conditional",
		Match:   func(line string) bool { return strings.Contains(line, "if ") },
		Explain: fixed(ExplainConditional),
	},
	{
		Name:    "loop",
		Match:   func(line string) bool { return containsAny(line, "for ", "while ") },
		Explain: fixed(ExplainLoop),
	},
	{
		Name:    "return",
		Match:   func(line string) bool { return strings.Contains(line, "return ") },
		Explain: fixed(ExplainReturn),
	},
	{
		Name:    "print",
		Match:   func(line string) bool { return strings.Contains(line, "print(") },
		Explain: fixed(ExplainPrint),
	},
	{
		Name:    "assignment",
		Match:   func(line string) bool { return strings.Contains(line, "=") },
		Explain: fixed(ExplainAssignment),
	},
	{
		Name:    "import",
		Match:   func(line string) bool { return strings.Contains(line, "import ") },
		Explain: fixed(ExplainImport),
	},
	{
		Name: "class",
		Match: func(line string) bool {
			return strings.Contains(line, "class ")
		},
		Explain: func(line string) string {
			return fmt.Sprintf(ExplainClass, definedName(line))
		},
	},
	{
		Name:    "default",
		Match:   func(string) bool { return true },
		Explain: fixed(ExplainDefault),
	},
}

// Rules returns a copy of the classifier table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(classifierRules))
	copy(out, classifierRules)
	return out
}

// Classify returns the explanation sentence for a single line.
//
// The line is trimmed before matching, so indentation never affects the
// outcome. Classify always returns a sentence.
func Classify(line string) string {
	_, sentence := classify(line)
	return sentence
}

func classify(line string) (string, string) {
	trimmed := TrimSpace(line)
	for _, r := range classifierRules {
		if r.Match(trimmed) {
			return r.Name, r.Explain(trimmed)
		}
	}
	return "default", ExplainDefault
}

// definedName extracts the identifier of a definition: the last
// whitespace-separated token before the first "(". It returns "" when there
// is no such token.
func definedName(line string) string {
	head, _, _ := strings.Cut(line, "(")
	tokens := fields(head)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}
