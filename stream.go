// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Stream is the surface shared by File, its decorators and Reader. Length
// reports the current size of the backing resource.
type Stream interface {
	io.ReadSeeker
	io.Closer
	Length() (int64, error)
}

// ErrReadOnly is returned by mutating operations on a read-only stream.
var ErrReadOnly = errors.New("stream is read-only")

// File is a readable, seekable view of a single file path that tolerates the
// file being deleted, recreated or truncated by other processes. While the
// file is absent, reads report 0 bytes and Length/Position report 0 instead of
// failing; the handle is reopened lazily once the file comes back.
//
// A File never rebinds to a different path. It owns at most one open handle at
// any time, plus a filesystem watcher on the parent directory that drops the
// handle as soon as the path is created or removed externally.
type File struct {
	path string

	mu     sync.Mutex
	file   *os.File
	closed bool

	watcher *fsnotify.Watcher
	done    chan struct{}

	logger *slog.Logger
}

var _ Stream = (*File)(nil)

// NewFile binds a resilient stream to path. The file itself does not have to
// exist yet, but its parent directory does: the directory is watched for
// create/remove events on the exact path.
func NewFile(path string, opts ...FileOption) (*File, error) {
	if path == "" {
		return nil, errors.New("empty file path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolving file path")
	}

	var o fileOptions
	for _, p := range [][]FileOption{withDefaultFileOptions(), opts} {
		for _, opt := range p {
			opt(&o)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating filesystem watcher")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrap(err, "watching parent directory")
	}

	f := &File{
		path:    abs,
		watcher: watcher,
		done:    make(chan struct{}),
		logger:  o.logger,
	}
	go f.watchLoop()

	return f, nil
}

// Name returns the bound path.
func (f *File) Name() string {
	return f.path
}

// Read reads up to len(p) bytes. When the file is absent, inaccessible or has
// nothing more to offer it reports (0, nil); a zero-byte read also drops the
// current handle so the next call re-checks existence, which folds truncation
// and delete/recreate races into a single recovery path. Errors outside the
// not-found/permission family propagate unchanged.
func (f *File) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, nil
	}
	if err := f.bindLocked(); err != nil {
		if unavailable(err) {
			return 0, nil
		}
		return 0, err
	}

	n, err := f.file.Read(p)
	switch {
	case unavailable(err):
		f.unbindLocked()
		return 0, nil
	case err != nil && err != io.EOF:
		return n, errors.Wrap(err, "reading resilient stream")
	case n == 0:
		f.unbindLocked()
		return 0, nil
	}

	return n, nil
}

// Seek delegates to the underlying handle. While the file is unavailable it
// reports (0, nil) rather than failing.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, nil
	}
	if err := f.bindLocked(); err != nil {
		if unavailable(err) {
			return 0, nil
		}
		return 0, err
	}

	pos, err := f.file.Seek(offset, whence)
	if err != nil {
		if unavailable(err) {
			f.unbindLocked()
			return 0, nil
		}
		return 0, errors.Wrap(err, "seeking resilient stream")
	}

	return pos, nil
}

// Length reports the current file size, or 0 while the file is unavailable.
func (f *File) Length() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, nil
	}
	if err := f.bindLocked(); err != nil {
		if unavailable(err) {
			return 0, nil
		}
		return 0, err
	}

	fi, err := f.file.Stat()
	if err != nil {
		if unavailable(err) {
			f.unbindLocked()
			return 0, nil
		}
		return 0, errors.Wrap(err, "stating resilient stream")
	}

	return fi.Size(), nil
}

// Position reports the current read offset, or 0 while the file is
// unavailable.
func (f *File) Position() (int64, error) {
	return f.Seek(0, io.SeekCurrent)
}

// Write always fails: the stream is a read-only view.
func (f *File) Write([]byte) (int, error) {
	return 0, ErrReadOnly
}

// Truncate always fails: the stream is a read-only view.
func (f *File) Truncate(int64) error {
	return ErrReadOnly
}

// Sync is a no-op, a read-only view has nothing to flush.
func (f *File) Sync() error {
	return nil
}

// Close releases the watcher subscription and any open handle. It is
// idempotent; a closed File behaves like one bound to an absent file.
func (f *File) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.unbindLocked()
	f.mu.Unlock()

	close(f.done)
	return f.watcher.Close()
}

// bindLocked opens the handle if there is none. Callers must hold f.mu.
func (f *File) bindLocked() error {
	if f.file != nil {
		return nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		if unavailable(err) {
			return err
		}
		return errors.Wrap(err, "opening file for resilient reading")
	}

	f.file = file
	f.logger.Debug("bound file handle", "path", f.path)
	return nil
}

// unbindLocked drops the handle, if any. Callers must hold f.mu.
func (f *File) unbindLocked() {
	if f.file == nil {
		return
	}
	_ = f.file.Close()
	f.file = nil
	f.logger.Debug("unbound file handle", "path", f.path)
}

// unavailable reports whether err belongs to the transient "file not there
// right now" family that File swallows.
func unavailable(err error) bool {
	return err != nil && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission))
}
