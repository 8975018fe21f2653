// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe

// RateLimiter provides methods to create a custom rate limiter for the lines
// emitted by a Follower.
type RateLimiter interface {
	// Allow says that a line should be sent to a receiver of the lines.
	Allow() bool

	// Close finalizes the rate limiter.
	Close()
}
