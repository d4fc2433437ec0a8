// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analysis turns a block of source text into line explanations, a
// complexity estimate and improvement hints.
//
// Everything here is substring and regular-expression matching. There is no
// parser and no notion of a source language; a line containing "if " is a
// conditional whether it is Python, JavaScript or prose.
//
// # Components
//
//   - Classify: one trimmed line to one sentence, ordered rule table, first
//     match wins.
//   - Suggest: one raw line to zero or more advisories, every rule evaluated.
//   - EstimateComplexity: whole text to a Low/Medium/High label with time
//     and space notations.
//   - SummarizeImprovements: whole text to an ImprovementReport.
//   - Analyzer: runs all of the above for one submission.
//
// # Thread Safety
//
// All functions are pure and safe for concurrent use.
package analysis
