// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"strings"
	"testing"
)

func TestIsTerminal_NonFile(t *testing.T) {
	var buf bytes.Buffer
	if IsTerminal(&buf) {
		t.Error("bytes.Buffer should not be a terminal")
	}
	if DetectMode(&buf) != ModePlain {
		t.Error("non-terminal writer should get ModePlain")
	}
}

func TestDetectMode_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	if DetectMode(&buf) != ModePlain {
		t.Error("NO_COLOR should force ModePlain")
	}
}

func TestPrinter_PlainMode(t *testing.T) {
	tests := []struct {
		name string
		fn   func(p *Printer)
		want string
	}{
		{"title", func(p *Printer) { p.Title("report") }, "== report ==\n"},
		{"success", func(p *Printer) { p.Success("done") }, "OK: done\n"},
		{"warning", func(p *Printer) { p.Warning("careful") }, "WARN: careful\n"},
		{"error", func(p *Printer) { p.Error("broken") }, "ERROR: broken\n"},
		{"info", func(p *Printer) { p.Info("note") }, "note\n"},
		{"bullet", func(p *Printer) { p.Bullet("item") }, "  - item\n"},
		{"muted", func(p *Printer) { p.Muted("quiet") }, "quiet\n"},
		{"key value", func(p *Printer) { p.KeyValue("Complexity", "Low") }, "Complexity: Low\n"},
		{"box", func(p *Printer) { p.Box("line 1", "a\nb") }, "line 1: a\nline 1: b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.fn(NewPrinterWithMode(&buf, ModePlain))
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrinter_StyledModeKeepsText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithMode(&buf, ModeStyled)

	p.Success("analysis complete")
	p.Box("main.py", "This defines a function named main")

	out := buf.String()
	for _, want := range []string{"analysis complete", string(IconSuccess), "main.py", "function named main"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconArrow, IconBullet} {
		if !strings.Contains(icon.Render(), string(icon)) {
			t.Errorf("Render(%q) lost the glyph", icon)
		}
	}
}
