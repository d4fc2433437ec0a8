// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSpinner_PlainMode(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, ModePlain, "Contacting server")

	s.Start()
	s.Start()
	s.StopWithSuccess("Server healthy")
	s.Stop()

	want := "PROGRESS: Contacting server\nOK: Server healthy\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSpinner_UpdateMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, ModePlain, "first")
	s.UpdateMessage("second")
	s.Start()
	s.Stop()

	if got := buf.String(); got != "PROGRESS: second\n" {
		t.Errorf("got %q", got)
	}
}

func TestWithSpinner(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		err := WithSpinner(&buf, ModePlain, "Loading", func() error { return nil })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(buf.String(), "OK: Loading\n") {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("failure", func(t *testing.T) {
		var buf bytes.Buffer
		boom := errors.New("boom")
		err := WithSpinner(&buf, ModePlain, "Loading", func() error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("got %v, want %v", err, boom)
		}
		if !strings.HasSuffix(buf.String(), "ERROR: Loading: boom\n") {
			t.Errorf("got %q", buf.String())
		}
	})
}

func TestSpinner_StyledStopStatus(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, ModeStyled, "ignored")

	s.StopWithError("failed to connect")

	if !strings.Contains(buf.String(), "failed to connect") {
		t.Errorf("got %q", buf.String())
	}
}
