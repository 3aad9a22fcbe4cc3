//go:build !js

package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
	"github.com/fsnotify/fsnotify"
)

// watchSources calls notify from a background goroutine whenever one of the shader sources in paths
// is written, created or renamed. A path that is a directory matches every shader source inside it.
// Parent directories are watched rather than the files, so editors that save by replacing the file
// keep triggering.
//
// Parameters:
//   - paths: the files and directories to watch
//   - notify: called once per matching event
//
// Returns:
//   - func(): stops the watcher
//   - error: an error if the watcher cannot be created or a directory cannot be added
func watchSources(paths []string, notify func(name string)) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		dir := filepath.Dir(p)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dir = p
			dirs[p] = true
		} else {
			files[p] = true
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	matches := func(name string) bool {
		name = filepath.Clean(name)
		if files[name] {
			return true
		}
		ext := strings.ToLower(filepath.Ext(name))
		return dirs[filepath.Dir(name)] &&
			(slices.Contains(shader.FragmentExtensions, ext) || slices.Contains(shader.VertexExtensions, ext))
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 && matches(ev.Name) {
					notify(ev.Name)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("shader watcher error", "err", err)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			w.Close()
		})
	}, nil
}
