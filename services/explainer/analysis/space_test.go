// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", true},
		{"ascii whitespace", " \t\r\v\f", true},
		{"file separator", "\x1c", true},
		{"all information separators", "\x1c\x1d\x1e\x1f", true},
		{"no-break space", "\u00a0", true},
		{"unit separator around code", "\x1fx\x1f", false},
		{"other control character", "\x1b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBlank(tt.in))
		})
	}
}

func TestTrimSpace_Separators(t *testing.T) {
	assert.Equal(t, "def f():", TrimSpace("\x1e  def f():\x1c"))
}

func TestAnalyze_SeparatorOnlyLineIsSkipped(t *testing.T) {
	code := "def (:\nclass\n\x1c\nx"

	got := NewAnalyzer(nil).Analyze(context.Background(), code, false)

	require.Len(t, got.Explanations, 3)
	var lines []int
	for _, e := range got.Explanations {
		lines = append(lines, e.LineNumber)
	}
	assert.Equal(t, []int{1, 2, 4}, lines)
}

func TestClassify_SeparatorPrefixedDefinition(t *testing.T) {
	assert.Equal(t, "This defines a function named run", Classify("\x1cdef run():"))
	assert.Equal(t, "run", definedName("def\x1frun():"))
}
