// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrRunning is returned by Follower.Run when the follower is already running.
var ErrRunning = errors.New("follower already running")

// Line represents a line produced by a Follower.
type Line struct {
	fileName string
	text     string
}

// FileName returns the file name of the line.
func (l Line) FileName() string {
	return l.fileName
}

// Text returns the decoded line without terminator.
func (l Line) Text() string {
	return l.text
}

// Follower wires File, Tracker and Reader together into the classic tail:
// it follows a single path across delete/recreate and produces decoded lines
// and errors through channels until the context is cancelled.
type Follower struct {
	path string

	opts followerOptions

	lines chan Line
	errs  chan error

	// stats
	lag int64

	working int32
}

// NewFollower prepares a follower for path. It merges default options with
// the given options.
func NewFollower(path string, opts ...FollowerOption) *Follower {
	f := &Follower{
		path: path,
	}

	for _, p := range [][]FollowerOption{withDefaultFollowerOptions(), opts} {
		for _, o := range p {
			o(&f.opts)
		}
	}

	return f
}

// FileName returns the followed path.
func (f *Follower) FileName() string {
	return f.path
}

// Run starts following the file.
// 1. Binds a resilient stream to the path and seeks to the end (see
// WithFollowFromStart).
// 2. Starts a length tracker whose notifications wake the read loop.
// 3. Reads new lines lazily and sends them to the Lines channel until ctx is
// cancelled, after which both channels are closed.
// If the file is deleted and recreated the stream recovers by itself.
func (f *Follower) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&f.working, 0, 1) {
		return ErrRunning
	}

	failFinalizer := func(s Stream) {
		if s != nil {
			_ = s.Close()
		}
		atomic.StoreInt32(&f.working, 0)
	}

	file, err := NewFile(f.path, WithFileLogger(f.opts.logger))
	if err != nil {
		failFinalizer(nil)
		return errors.Wrap(err, "can't bind file for following")
	}

	if !f.opts.fromStart {
		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			failFinalizer(file)
			return errors.Wrap(err, "can't seek to file end")
		}
	}

	tracker, err := NewTracker(file,
		WithInterval(f.opts.interval),
		WithTrackerLogger(f.opts.logger),
	)
	if err != nil {
		failFinalizer(file)
		return errors.Wrap(err, "can't track file length")
	}

	reader, err := NewReader(tracker,
		WithEncoding(f.opts.encoding),
		WithMaxLineLength(f.opts.maxLineLen),
	)
	if err != nil {
		failFinalizer(tracker)
		return errors.Wrap(err, "can't read file lines")
	}

	wake := make(chan struct{}, 1)
	tracker.Subscribe(func(int64) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})

	if err := tracker.Start(); err != nil {
		failFinalizer(tracker)
		return err
	}

	f.lines = make(chan Line)
	f.errs = make(chan error)

	go f.readLoop(ctx, tracker, reader, wake)

	return nil
}

// Lines returns the channel of followed lines. Valid after Run.
func (f *Follower) Lines() <-chan Line {
	return f.lines
}

// Errors returns the channel of errors raised while following. Valid after
// Run.
func (f *Follower) Errors() <-chan error {
	return f.errs
}

// Lag returns the approximate number of observed bytes not yet resolved into
// emitted lines, updated as lines are read.
func (f *Follower) Lag() int64 {
	return atomic.LoadInt64(&f.lag)
}

// updateLag recomputes the distance between the tracker's observed length and
// the reader's resolved position. Called from the read loop only.
func (f *Follower) updateLag(tracker *Tracker, reader *Reader) {
	lag := tracker.LastLength() - reader.Position()
	if lag < 0 {
		lag = 0
	}
	atomic.StoreInt64(&f.lag, lag)
}

func (f *Follower) readLoop(ctx context.Context, tracker *Tracker, reader *Reader, wake <-chan struct{}) {
	defer func() {
		if err := tracker.Close(); err != nil {
			f.opts.logger.Debug("error closing followed stream", "path", f.path, "err", err)
		}
		close(f.lines)
		close(f.errs)

		if f.opts.rateLimiter != nil {
			f.opts.rateLimiter.Close()
		}

		atomic.StoreInt32(&f.working, 0)
	}()

	for {
		for line, err := range reader.Lines() {
			if err != nil {
				select {
				case f.errs <- errors.Wrap(err, "error reading line"):
				case <-ctx.Done():
				}
				return
			}

			f.updateLag(tracker, reader)

			if f.opts.rateLimiter != nil && !f.opts.rateLimiter.Allow() {
				continue
			}

			out := Line{fileName: f.path, text: line}

			if f.opts.leakyBucket {
				select {
				case f.lines <- out:
				default:
				}
				continue
			}

			select {
			case f.lines <- out:
			case <-ctx.Done():
				return
			}
		}

		f.updateLag(tracker, reader)

		// drained for now, wait for the tracker to observe growth
		select {
		case <-wake:
		case <-ctx.Done():
			return
		}
	}
}
