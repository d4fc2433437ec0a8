// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"no rules fire", "x = 1", []string{}},
		{"if without else", "if x:", []string{SuggestElseClause}},
		{"if with else", "if x: a() else: b()", []string{}},
		{"for over range", "for i in range(10):", []string{SuggestComprehension}},
		{"for without range", "for item in items:", []string{}},
		{"print", "print(x)", []string{SuggestLogging}},
		{"try without except", "try:", []string{SuggestExceptionHandling}},
		{"try with except", "try: x() except: pass", []string{}},
		{
			name: "several rules in table order",
			line: "    if ready: print(value)",
			want: []string{SuggestElseClause, SuggestLogging},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.line)

			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggest_LineLength(t *testing.T) {
	t.Run("exactly the limit", func(t *testing.T) {
		assert.Empty(t, Suggest(strings.Repeat("a", MaxLineLength)))
	})

	t.Run("one over the limit", func(t *testing.T) {
		assert.Equal(t, []string{SuggestBreakLongLine}, Suggest(strings.Repeat("a", MaxLineLength+1)))
	})

	t.Run("counts code points not bytes", func(t *testing.T) {
		// 80 two-byte characters is 160 bytes but still within the limit.
		assert.Empty(t, Suggest(strings.Repeat("é", MaxLineLength)))
		assert.Equal(t, []string{SuggestBreakLongLine}, Suggest(strings.Repeat("é", MaxLineLength+1)))
	})

	t.Run("indentation counts", func(t *testing.T) {
		line := strings.Repeat(" ", 4) + strings.Repeat("b", MaxLineLength-2)

		assert.Equal(t, []string{SuggestBreakLongLine}, Suggest(line))
	})
}
