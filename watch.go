// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchLoop drains the directory watcher until Close. Events for other
// entries of the directory are ignored; create/remove/rename of the bound
// path invalidates the handle under the same mutex the readers take, so a
// transition never interleaves with an in-flight read.
func (f *File) watchLoop() {
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			f.handleEvent(event)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Debug("filesystem watcher error", "path", f.path, "err", err)
		case <-f.done:
			return
		}
	}
}

func (f *File) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != f.path {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	f.mu.Lock()
	f.unbindLocked()
	f.mu.Unlock()

	f.logger.Debug("backing file changed externally", "path", f.path, "op", event.Op.String())
}
