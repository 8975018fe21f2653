// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe

import (
	"log/slog"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

const (
	defaultBlockSize = 65535
	defaultInterval  = time.Second
)

type fileOptions struct {
	logger *slog.Logger
}

type FileOption func(options *fileOptions)

func withDefaultFileOptions() []FileOption {
	return []FileOption{
		WithFileLogger(slog.New(slog.DiscardHandler)),
	}
}

// WithFileLogger is used to log handle bind/unbind transitions and watcher
// events at debug level. Logging is discarded by default.
func WithFileLogger(logger *slog.Logger) FileOption {
	return func(options *fileOptions) {
		options.logger = logger
	}
}

type trackerOptions struct {
	interval time.Duration
	logger   *slog.Logger
}

type TrackerOption func(options *trackerOptions)

func withDefaultTrackerOptions() []TrackerOption {
	return []TrackerOption{
		WithInterval(defaultInterval),
		WithTrackerLogger(slog.New(slog.DiscardHandler)),
	}
}

// WithInterval is used to set the delay between check cycles.
func WithInterval(interval time.Duration) TrackerOption {
	return func(options *trackerOptions) {
		options.interval = interval
	}
}

// WithTrackerLogger is used to log skipped cycles and observed changes at
// debug level. Logging is discarded by default.
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(options *trackerOptions) {
		options.logger = logger
	}
}

type readerOptions struct {
	encoding   encoding.Encoding
	blockSize  int
	maxLineLen int
}

type ReaderOption func(options *readerOptions)

func withDefaultReaderOptions() []ReaderOption {
	return []ReaderOption{
		WithEncoding(unicode.UTF8),
		WithBlockSize(defaultBlockSize),
	}
}

// WithEncoding is used to set the text encoding of the source. The line
// terminator searched for is the encoding's representation of '\n'.
func WithEncoding(enc encoding.Encoding) ReaderOption {
	return func(options *readerOptions) {
		options.encoding = enc
	}
}

// WithBlockSize is used to set how many bytes are read from the source per
// read call.
func WithBlockSize(size int) ReaderOption {
	return func(options *readerOptions) {
		options.blockSize = size
	}
}

// WithMaxLineLength is used to chunk decoded lines longer than max into
// consecutive pieces of at most max characters. Zero means unlimited.
func WithMaxLineLength(max int) ReaderOption {
	return func(options *readerOptions) {
		options.maxLineLen = max
	}
}

type followerOptions struct {
	interval    time.Duration
	encoding    encoding.Encoding
	maxLineLen  int
	fromStart   bool
	rateLimiter RateLimiter
	leakyBucket bool
	logger      *slog.Logger
}

type FollowerOption func(options *followerOptions)

func withDefaultFollowerOptions() []FollowerOption {
	return []FollowerOption{
		WithFollowInterval(defaultInterval),
		WithFollowEncoding(unicode.UTF8),
		WithFollowLogger(slog.New(slog.DiscardHandler)),
	}
}

// WithFollowInterval is used to set the length-recheck delay of the
// underlying tracker.
func WithFollowInterval(interval time.Duration) FollowerOption {
	return func(options *followerOptions) {
		options.interval = interval
	}
}

// WithFollowEncoding is used to set the text encoding of the followed file.
func WithFollowEncoding(enc encoding.Encoding) FollowerOption {
	return func(options *followerOptions) {
		options.encoding = enc
	}
}

// WithFollowMaxLineLength is used to chunk over-long lines, see
// WithMaxLineLength.
func WithFollowMaxLineLength(max int) FollowerOption {
	return func(options *followerOptions) {
		options.maxLineLen = max
	}
}

// WithFollowFromStart is used to read the file from the beginning instead of
// only the data appended after Run.
func WithFollowFromStart() FollowerOption {
	return func(options *followerOptions) {
		options.fromStart = true
	}
}

// WithFollowRateLimiter is used to rate limit output lines. Watch the
// RateLimiter interface. The limiter is closed when following stops.
func WithFollowRateLimiter(rl RateLimiter) FollowerOption {
	return func(options *followerOptions) {
		options.rateLimiter = rl
	}
}

// WithFollowLeakyBucket is used to skip read lines when the listener is full.
func WithFollowLeakyBucket() FollowerOption {
	return func(options *followerOptions) {
		options.leakyBucket = true
	}
}

// WithFollowLogger is used to pass a logger down to the file stream and the
// tracker. Logging is discarded by default.
func WithFollowLogger(logger *slog.Logger) FollowerOption {
	return func(options *followerOptions) {
		options.logger = logger
	}
}
