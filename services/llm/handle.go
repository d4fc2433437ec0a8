// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a single load attempt.
const DefaultLoadTimeout = 2 * time.Minute

const loadKey = "model"

// LoadObserver is told about every load attempt.
type LoadObserver func(ctx context.Context, elapsed time.Duration, err error)

// HandleOption configures a Handle.
type HandleOption func(*Handle)

// WithLoadTimeout overrides DefaultLoadTimeout.
func WithLoadTimeout(d time.Duration) HandleOption {
	return func(h *Handle) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithLogger sets the logger used for load events.
func WithLogger(l *slog.Logger) HandleOption {
	return func(h *Handle) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithLoadObserver registers fn to be called after each load attempt.
func WithLoadObserver(fn LoadObserver) HandleOption {
	return func(h *Handle) {
		if fn != nil {
			h.observe = fn
		}
	}
}

// Handle lazily loads one Model and shares it across requests.
//
// # Description
//
// The first Get triggers the Loader. Concurrent first callers share that
// single load. Once a model is stored, Get returns it under a read lock with
// no further coordination. A failed load is not remembered, so the next Get
// tries again.
//
// # Thread Safety
//
// Safe for concurrent use.
type Handle struct {
	load    Loader
	timeout time.Duration
	logger  *slog.Logger
	observe LoadObserver

	mu     sync.RWMutex
	model  Model
	closed bool

	group singleflight.Group
}

// NewHandle returns an unloaded Handle.
func NewHandle(load Loader, opts ...HandleOption) *Handle {
	h := &Handle{
		load:    load,
		timeout: DefaultLoadTimeout,
		logger:  slog.Default(),
		observe: func(context.Context, time.Duration, error) {},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Get returns the loaded model, loading it first if needed.
//
// # Description
//
// The load itself is detached from ctx cancellation so that one impatient
// caller cannot fail a load other callers are waiting on. ctx still bounds
// how long this caller waits.
//
// # Outputs
//
//   - Model: The shared model.
//   - error: Load failure, ctx expiry while waiting, or ErrHandleClosed.
func (h *Handle) Get(ctx context.Context) (Model, error) {
	h.mu.RLock()
	m, closed := h.model, h.closed
	h.mu.RUnlock()

	if closed {
		return nil, ErrHandleClosed
	}
	if m != nil {
		return m, nil
	}

	ch := h.group.DoChan(loadKey, func() (any, error) {
		loaded, err := h.loadShared(ctx)
		if err != nil {
			return nil, err
		}
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for model load: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Model), nil
	}
}

// loadShared runs inside the singleflight group.
func (h *Handle) loadShared(ctx context.Context) (Model, error) {
	// A previous flight may have stored the model between our read-locked
	// check in Get and joining the group.
	h.mu.RLock()
	m, closed := h.model, h.closed
	h.mu.RUnlock()
	if closed {
		return nil, ErrHandleClosed
	}
	if m != nil {
		return m, nil
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	start := time.Now()
	m, err := h.load(loadCtx)
	if err == nil && m == nil {
		err = errNoModel
	}
	elapsed := time.Since(start)
	h.observe(ctx, elapsed, err)

	if err != nil {
		h.logger.Error("Model load failed",
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("load model: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		_ = m.Close(loadCtx)
		return nil, ErrHandleClosed
	}
	h.model = m

	h.logger.Info("Model loaded",
		slog.String("model", m.Name()),
		slog.String("backend", string(m.Backend())),
		slog.Duration("elapsed", elapsed),
	)
	return m, nil
}

// Loaded reports whether a model is currently held.
func (h *Handle) Loaded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.model != nil
}

// Close releases the model, if any. Later Get calls return ErrHandleClosed.
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	m := h.model
	h.model = nil
	h.closed = true
	h.mu.Unlock()

	if m == nil {
		return nil
	}
	if err := m.Close(ctx); err != nil {
		return fmt.Errorf("close model %s: %w", m.Name(), err)
	}
	return nil
}
