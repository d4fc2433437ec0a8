// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeImprovements_LoopWithPrint(t *testing.T) {
	got := SummarizeImprovements("for i in range(10):\n    print(i)")

	require.NotNil(t, got.TimeNote)
	assert.Equal(t, SuggestComprehension, *got.TimeNote)
	assert.Nil(t, got.SpaceNote)
	assert.Equal(t, []string{PracticeAddComments, SuggestLogging}, got.BestPractices)
	assert.Equal(t, []string{}, got.ErrorFixes)
}

func TestSummarizeImprovements_CommentedCollection(t *testing.T) {
	got := SummarizeImprovements("# cache of results\nresults = []")

	assert.Nil(t, got.TimeNote)
	require.NotNil(t, got.SpaceNote)
	assert.Equal(t, NoteGenerators, *got.SpaceNote)
	assert.Equal(t, []string{}, got.BestPractices)
	assert.Equal(t, []string{}, got.ErrorFixes)
}

func TestSummarizeImprovements_ErrorFixes(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{
			name: "try and input",
			code: "try:\n    value = input()\n",
			want: []string{SuggestExceptionHandling, FixAddInputValidation},
		},
		{
			name: "try with except",
			code: "try:\n    x = 1\nexcept:\n    x = 2",
			want: []string{},
		},
		{
			name: "input only",
			code: "name = input()",
			want: []string{FixAddInputValidation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeImprovements(tt.code).ErrorFixes)
		})
	}
}

func TestSummarizeImprovements_IndentedCommentCounts(t *testing.T) {
	got := SummarizeImprovements("def f():\n    # explain\n    return 1")

	assert.NotContains(t, got.BestPractices, PracticeAddComments)
}

func TestSummarizeImprovements_NeverNilSlices(t *testing.T) {
	got := SummarizeImprovements("# nothing to see")

	assert.NotNil(t, got.BestPractices)
	assert.NotNil(t, got.ErrorFixes)
	assert.Empty(t, got.BestPractices)
	assert.Empty(t, got.ErrorFixes)
}
