// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// fakeModel records Close calls.
type fakeModel struct {
	name   string
	closed atomic.Int32
}

func (m *fakeModel) Name() string     { return m.name }
func (m *fakeModel) Backend() Backend { return BackendNone }
func (m *fakeModel) Close(context.Context) error {
	m.closed.Add(1)
	return nil
}

// =============================================================================
// Get
// =============================================================================

func TestHandle_LoadsLazily(t *testing.T) {
	var calls atomic.Int32
	h := NewHandle(func(context.Context) (Model, error) {
		calls.Add(1)
		return &fakeModel{name: "m"}, nil
	})

	assert.False(t, h.Loaded())
	assert.Equal(t, int32(0), calls.Load())

	m, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "m", m.Name())
	assert.True(t, h.Loaded())

	again, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHandle_ConcurrentFirstCallsLoadOnce(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	release := make(chan struct{})
	h := NewHandle(func(context.Context) (Model, error) {
		calls.Add(1)
		<-release
		return &fakeModel{name: "shared"}, nil
	})

	const callers = 20
	models := make([]Model, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup

	// Act
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			models[i], errs[i] = h.Get(context.Background())
		}(i)
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Assert
	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, models[0], models[i])
	}
}

func TestHandle_FailedLoadIsRetried(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("weights missing")
	h := NewHandle(func(context.Context) (Model, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return &fakeModel{name: "second try"}, nil
	})

	_, err := h.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "weights missing")
	assert.False(t, h.Loaded())

	m, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second try", m.Name())
	assert.Equal(t, int32(2), calls.Load())
}

func TestHandle_NilModelIsAnError(t *testing.T) {
	h := NewHandle(func(context.Context) (Model, error) { return nil, nil })

	_, err := h.Get(context.Background())

	assert.ErrorIs(t, err, errNoModel)
	assert.False(t, h.Loaded())
}

func TestHandle_CallerContextCancelled(t *testing.T) {
	release := make(chan struct{})
	h := NewHandle(func(context.Context) (Model, error) {
		<-release
		return &fakeModel{name: "slow"}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The load keeps going for other callers.
	close(release)
	m, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "slow", m.Name())
}

func TestHandle_LoadTimeout(t *testing.T) {
	h := NewHandle(func(ctx context.Context) (Model, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, WithLoadTimeout(10*time.Millisecond))

	_, err := h.Get(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandle_ObserverSeesEveryAttempt(t *testing.T) {
	var mu sync.Mutex
	var outcomes []error
	boom := errors.New("boom")
	var calls atomic.Int32

	h := NewHandle(func(context.Context) (Model, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return &fakeModel{name: "ok"}, nil
	}, WithLoadObserver(func(_ context.Context, _ time.Duration, err error) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, err)
	}))

	_, _ = h.Get(context.Background())
	_, _ = h.Get(context.Background())
	_, _ = h.Get(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, outcomes, 2)
	assert.ErrorIs(t, outcomes[0], boom)
	assert.NoError(t, outcomes[1])
}

// =============================================================================
// Close
// =============================================================================

func TestHandle_Close(t *testing.T) {
	fm := &fakeModel{name: "m"}
	h := NewHandle(func(context.Context) (Model, error) { return fm, nil })

	_, err := h.Get(context.Background())
	require.NoError(t, err)

	require.NoError(t, h.Close(context.Background()))
	assert.Equal(t, int32(1), fm.closed.Load())
	assert.False(t, h.Loaded())

	_, err = h.Get(context.Background())
	assert.ErrorIs(t, err, ErrHandleClosed)
}

func TestHandle_CloseBeforeLoad(t *testing.T) {
	var calls atomic.Int32
	h := NewHandle(func(context.Context) (Model, error) {
		calls.Add(1)
		return &fakeModel{}, nil
	})

	require.NoError(t, h.Close(context.Background()))

	_, err := h.Get(context.Background())
	assert.ErrorIs(t, err, ErrHandleClosed)
	assert.Equal(t, int32(0), calls.Load())
}

func TestHandle_CloseDuringLoadReleasesModel(t *testing.T) {
	fm := &fakeModel{name: "late"}
	started := make(chan struct{})
	release := make(chan struct{})
	h := NewHandle(func(context.Context) (Model, error) {
		close(started)
		<-release
		return fm, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := h.Get(context.Background())
		done <- err
	}()

	<-started
	require.NoError(t, h.Close(context.Background()))
	close(release)

	assert.ErrorIs(t, <-done, ErrHandleClosed)
	assert.Equal(t, int32(1), fm.closed.Load())
}
