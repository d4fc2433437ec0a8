// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Rule table
// =============================================================================

func TestRules_Order(t *testing.T) {
	var names []string
	for _, r := range Rules() {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{
		"function", "conditional", "loop", "return", "print",
		"assignment", "import", "class", "default",
	}, names)
}

func TestRules_ReturnsCopy(t *testing.T) {
	rules := Rules()
	rules[0] = Rule{Name: "mutated"}

	assert.Equal(t, "function", Rules()[0].Name)
}

// Every rule must be reachable: a representative line for each one has to be
// classified by that rule and not by anything earlier in the table.
func TestRules_EveryRuleReachable(t *testing.T) {
	samples := map[string]string{
		"function":    "def foo(x):",
		"conditional": "if x == 1:",
		"loop":        "while True:",
		"return":      "return total",
		"print":       "print(total)",
		"assignment":  "total = 0",
		"import":      "import os",
		"class":       "class Foo(Base):",
		"default":     "pass",
	}

	rules := Rules()
	require.Len(t, samples, len(rules))

	for _, r := range rules {
		t.Run(r.Name, func(t *testing.T) {
			line, ok := samples[r.Name]
			require.True(t, ok, "no sample for rule %q", r.Name)

			got, _ := classify(line)
			assert.Equal(t, r.Name, got)
		})
	}
}

// =============================================================================
// Classify
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"python def", "def foo(x):", "This defines a function named foo"},
		{"js function", "function bar() {", "This defines a function named bar"},
		{"indented def", "    def  baz ( a ):", "This defines a function named baz"},
		{"def without parens", "def lonely", "This defines a function named lonely"},
		{"if", "if x == 1:", ExplainConditional},
		{"elif", "elif y > 2:", ExplainConditional},
		{"for", "for i in range(10):", ExplainLoop},
		{"while", "while queue:", ExplainLoop},
		{"return", "return a + b", ExplainReturn},
		{"print", "print('hello')", ExplainPrint},
		{"assignment", "x = 5", ExplainAssignment},
		{"import", "import os", ExplainImport},
		{"from import", "from typing import List", ExplainImport},
		{"class with base", "class Foo(Base):", "This defines a class named Foo"},
		{"class without parens keeps colon", "class Foo:", "This defines a class named Foo:"},
		{"default", "pass", ExplainDefault},
		{"empty", "", ExplainDefault},
		{"whitespace only", "   \t", ExplainDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestClassify_Priority(t *testing.T) {
	tests := []struct {
		name string
		line string
		rule string
	}{
		{"function beats assignment", "def check(x=1):", "function"},
		{"conditional beats loop", "for x in xs: if x: break", "conditional"},
		{"conditional beats assignment", "if x == 1:", "conditional"},
		{"loop beats return", "while x: return y", "loop"},
		{"return beats print", "return print(x)", "return"},
		{"print beats assignment", "print(a == b)", "print"},
		{"assignment beats import", "mod = import foo", "assignment"},
		{"assignment beats class", "class A: x = 1", "assignment"},
		{"import beats class", "import class stuff", "import"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, _ := classify(tt.line)
			assert.Equal(t, tt.rule, rule)
		})
	}
}

func TestClassify_TrimsBeforeMatching(t *testing.T) {
	assert.Equal(t, "This defines a function named run", Classify("\t\tdef run():"))
	assert.Equal(t, ExplainReturn, Classify("        return x"))
}

func TestClassify_EmptyNameDoesNotFail(t *testing.T) {
	// "class " appears only after the first "(", so nothing precedes it.
	got := Classify("(class x)")

	assert.Equal(t, fmt.Sprintf(ExplainClass, ""), got)
}

func TestDefinedName(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"def foo(x):", "foo"},
		{"async def fetch(url):", "fetch"},
		{"class Foo:", "Foo:"},
		{"(x)", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, definedName(tt.line))
		})
	}
}
