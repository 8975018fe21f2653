// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tailsafe provides primitives for reading a file that another process
// may delete, recreate or append to at any moment. File is a read-only stream
// that reports zero bytes instead of failing while the file is gone and
// reopens it lazily when it comes back, Tracker polls a stream's length and
// notifies on changes, Reader splits any stream into decoded text lines across
// read boundaries, and Follower wires the three into the classic tail.
package tailsafe
