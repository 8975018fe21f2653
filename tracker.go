// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrTracking is returned by Tracker.Start when tracking is already active.
var ErrTracking = errors.New("tracker already started")

// Tracker decorates a Stream with periodic length-change detection. Read and
// Seek pass through to the wrapped stream untouched; a background check cycle
// re-reads the length every interval and notifies subscribers when it differs
// from the last observed value.
//
// The timer is armed only between cycles: it is dropped before a cycle runs
// and re-armed after the cycle, subscriber callbacks included, has finished.
// At most one cycle is ever in flight.
type Tracker struct {
	Stream

	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	tracking  bool
	timer     *time.Timer
	lastLen   int64
	observers []func(length int64)

	closeOnce sync.Once
	closeErr  error
}

// NewTracker wraps s. The recheck interval defaults to one second, see
// WithInterval.
func NewTracker(s Stream, opts ...TrackerOption) (*Tracker, error) {
	if s == nil {
		return nil, errors.New("nil stream to track")
	}

	var o trackerOptions
	for _, p := range [][]TrackerOption{withDefaultTrackerOptions(), opts} {
		for _, opt := range p {
			opt(&o)
		}
	}

	return &Tracker{
		Stream:   s,
		interval: o.interval,
		logger:   o.logger,
	}, nil
}

// Subscribe registers a callback invoked synchronously from the check cycle
// whenever the observed length changes.
func (t *Tracker) Subscribe(notify func(length int64)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, notify)
}

// LastLength reports the length observed by the most recent check cycle.
func (t *Tracker) LastLength() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastLen
}

// Start runs an immediate check cycle and arms the timer for the following
// ones. It returns ErrTracking when tracking is already active.
func (t *Tracker) Start() error {
	t.mu.Lock()
	if t.tracking {
		t.mu.Unlock()
		return ErrTracking
	}
	t.tracking = true
	t.mu.Unlock()

	t.cycle()
	return nil
}

// Stop disables further check cycles. Safe to call repeatedly; a cycle that is
// already in flight finishes but does not re-arm.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracking = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Close stops tracking and closes the wrapped stream, exactly once.
func (t *Tracker) Close() error {
	t.closeOnce.Do(func() {
		t.Stop()
		t.closeErr = t.Stream.Close()
	})
	return t.closeErr
}

// cycle is one execution of the length check. A length read failure is
// treated as transient: the cycle is skipped and the timer re-armed anyway.
func (t *Tracker) cycle() {
	t.mu.Lock()
	if !t.tracking {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()

	length, err := t.Stream.Length()
	if err != nil {
		t.logger.Debug("skipping check cycle", "err", err)
	} else {
		t.mu.Lock()
		changed := length != t.lastLen
		if changed {
			t.lastLen = length
		}
		observers := slices.Clone(t.observers)
		t.mu.Unlock()

		if changed {
			t.logger.Debug("stream length changed", "length", length)
			for _, notify := range observers {
				notify(length)
			}
		}
	}

	t.mu.Lock()
	if t.tracking {
		t.timer = time.AfterFunc(t.interval, t.cycle)
	}
	t.mu.Unlock()
}
