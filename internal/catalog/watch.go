package catalog

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileWatcher polls the YAML files under a directory and calls onChange for
// every file whose modification time moved forward or that newly appeared.
type FileWatcher struct {
	Dir      string
	Interval time.Duration

	onChange func(string)
	stopCh   chan struct{}
	stopOnce sync.Once
	seen     map[string]time.Time
}

// NewFileWatcher creates a watcher for dir. A non-positive interval defaults to 2s.
func NewFileWatcher(dir string, interval time.Duration, onChange func(string)) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &FileWatcher{
		Dir:      dir,
		Interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		seen:     make(map[string]time.Time),
	}
}

// Start begins polling in a goroutine.
func (w *FileWatcher) Start() {
	w.Scan(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Scan walks Dir once. With prime set it only records modification times.
// It returns the paths reported as changed.
func (w *FileWatcher) Scan(prime bool) []string {
	var changed []string
	_ = filepath.WalkDir(w.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			return nil
		}
		if d.IsDir() || !isYAML(p) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		mt := fi.ModTime()
		last, ok := w.seen[p]
		w.seen[p] = mt
		if prime || (ok && !mt.After(last)) {
			return nil
		}
		changed = append(changed, p)
		if w.onChange != nil {
			w.onChange(p)
		}
		return nil
	})
	return changed
}

func isYAML(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".yaml" || ext == ".yml"
}
