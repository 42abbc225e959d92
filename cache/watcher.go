// Copyright 2026 The Waymark Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the cache record file and reports when another
// process replaces or removes it, so long-running workers can notice a
// stale in-memory table and schedule a rebuild.
//
// The watcher is advisory only: matching always runs against the
// process's own frozen table, and the callback merely signals that a
// newer record exists on disk.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch starts observing the cache's directory. onChange is invoked
// from the watcher goroutine for every write, rename, or removal of the
// record file; it must not block for long.
func (c *Cache) Watch(onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create cache watcher: %w", err)
	}

	// Watch the directory, not the file: the atomic rename publish
	// replaces the file's inode, and a file-level watch would go stale
	// after the first store.
	if err := fsw.Add(c.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch cache directory %q: %w", c.dir, err)
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}

	go func() {
		for {
			select {
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != FileName {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
					onChange()
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				c.log.Warn("route cache watcher error", "error", err)
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
