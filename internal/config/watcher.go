package config

import (
	"fmt"
	"os"
	"time"
)

// Watcher tracks the config file's modification time so the scheduler can
// detect edits between polls without re-parsing the file every time.
type Watcher struct {
	path    string
	modTime time.Time
}

// NewWatcher stats the file at path and remembers its current mtime.
func NewWatcher(path string) (*Watcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	return &Watcher{path: path, modTime: info.ModTime()}, nil
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// Changed reports whether the file's mtime differs from the last observation
// and, when it does, records the new mtime.
func (w *Watcher) Changed() (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return false, fmt.Errorf("stat config: %w", err)
	}

	if info.ModTime().Equal(w.modTime) {
		return false, nil
	}

	w.modTime = info.ModTime()

	return true, nil
}
