// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"strings"
	"unicode"
)

// IsSpace reports whether r counts as whitespace when trimming and
// splitting lines. It extends unicode.IsSpace with the ASCII information
// separators U+001C..U+001F, which editors and scripting languages also
// strip from line ends.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// TrimSpace trims IsSpace runes from both ends of s.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// IsBlank reports whether s holds nothing but IsSpace runes.
func IsBlank(s string) bool {
	return TrimSpace(s) == ""
}

func fields(s string) []string {
	return strings.FieldsFunc(s, IsSpace)
}
