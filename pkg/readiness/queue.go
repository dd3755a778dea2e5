// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package readiness buffers subscribers waiting for a one-time readiness event.
package readiness

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jllopis/surveyshell/pkg/errors"
)

// Queue is an ordered buffer of callbacks waiting for a value of type T.
// It is safe for concurrent use.
type Queue[T any] struct {
	mu      sync.Mutex
	pending []func(T)
	logger  *slog.Logger
}

// NewQueue creates an empty queue. A nil logger falls back to slog.Default().
func NewQueue[T any](logger *slog.Logger) *Queue[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue[T]{logger: logger}
}

// Enqueue appends cb to the tail. Nil callbacks are ignored.
func (q *Queue[T]) Enqueue(cb func(T)) {
	if cb == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, cb)
	q.mu.Unlock()
}

// Len returns the number of pending callbacks.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush invokes every queued callback with value in insertion order and
// clears the queue. A panicking callback is logged and skipped; the rest of
// the batch still runs. Callbacks enqueued while flushing wait for the next
// flush. Flush returns the number of callbacks that failed.
func (q *Queue[T]) Flush(value T) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	failed := 0
	for i, cb := range batch {
		if err := invoke(cb, value); err != nil {
			failed++
			q.logger.Error("readiness.callback.failed",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
		}
	}
	return failed
}

func invoke[T any](cb func(T), value T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.CodeCallbackFailure, "readiness callback panicked", fmt.Errorf("%v", r))
		}
	}()
	cb(value)
	return nil
}
