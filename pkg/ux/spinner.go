// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner provides an animated loading indicator. In ModePlain it prints
// the message once instead of animating.
type Spinner struct {
	w       io.Writer
	mode    Mode
	message string
	spin    *spinner.Spinner

	mu      sync.Mutex
	running bool
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, mode Mode, message string) *Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Spinner{w: w, mode: mode, message: message, spin: s}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	if s.mode == ModePlain {
		fmt.Fprintf(s.w, "PROGRESS: %s\n", s.message)
		return
	}
	s.spin.Start()
}

// Stop halts the spinner animation
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false

	if s.mode == ModeStyled {
		s.spin.Stop()
	}
}

// UpdateMessage changes the spinner message while running
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.spin.Lock()
	s.spin.Suffix = " " + message
	s.spin.Unlock()
}

// StopWithSuccess stops and prints a success message
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	s.status(color.FgGreen, IconSuccess, "OK", message)
}

// StopWithError stops and prints an error message
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	s.status(color.FgRed, IconError, "ERROR", message)
}

func (s *Spinner) status(attr color.Attribute, icon Icon, plain, message string) {
	if s.mode == ModePlain {
		fmt.Fprintf(s.w, "%s: %s\n", plain, message)
		return
	}
	color.New(attr).Fprintf(s.w, "%s %s\n", icon, message)
}

// WithSpinner runs fn behind a spinner and reports its outcome.
func WithSpinner(w io.Writer, mode Mode, message string, fn func() error) error {
	spin := NewSpinner(w, mode, message)
	spin.Start()

	if err := fn(); err != nil {
		spin.StopWithError(fmt.Sprintf("%s: %v", message, err))
		return err
	}

	spin.StopWithSuccess(message)
	return nil
}
