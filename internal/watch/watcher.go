// Package watch polls directories for tree document changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ChangeType classifies a changed file.
type ChangeType int

const (
	ChangeDocument ChangeType = iota
	ChangeConfig
	ChangeOther
)

// Op is what happened to a file.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
)

// Change is a detected file change.
type Change struct {
	Path string
	Type ChangeType
	Op   Op
}

// Config configures a Watcher.
type Config struct {
	// Paths are the directories to watch.
	Paths []string

	// Ignore holds base-name globs and path segments to skip.
	Ignore []string

	// Interval is the polling interval (default 250ms).
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	"*.tmp",
	"*.swp",
	"*~",
	".*.html.*",
}

// Watcher reports changed files to a callback. Changes found in one poll
// are delivered together, sorted by path.
type Watcher struct {
	cfg        Config
	mu         sync.Mutex
	onChange   func([]Change)
	timestamps map[string]time.Time
}

// New creates a Watcher.
func New(cfg Config) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.Ignore == nil {
		cfg.Ignore = DefaultIgnore
	}
	return &Watcher{cfg: cfg}
}

// OnChange sets the callback.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Run records the current state of the watched paths and polls until ctx
// is done. It returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	w.timestamps = w.scan()
	w.mu.Unlock()

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll compares the watched paths with the previous poll and reports the
// differences. The first call only records state.
func (w *Watcher) Poll() []Change {
	current := w.scan()

	w.mu.Lock()
	previous := w.timestamps
	w.timestamps = current
	callback := w.onChange
	w.mu.Unlock()

	if previous == nil {
		return nil
	}

	var changes []Change
	for p, mod := range current {
		last, ok := previous[p]
		switch {
		case !ok:
			changes = append(changes, Change{Path: p, Type: classify(p), Op: OpCreate})
		case mod.After(last):
			changes = append(changes, Change{Path: p, Type: classify(p), Op: OpWrite})
		}
	}
	for p := range previous {
		if _, ok := current[p]; !ok {
			changes = append(changes, Change{Path: p, Type: classify(p), Op: OpRemove})
		}
	}
	if len(changes) == 0 {
		return nil
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	if callback != nil {
		callback(changes)
	}
	return changes
}

func (w *Watcher) scan() map[string]time.Time {
	out := make(map[string]time.Time)
	for _, root := range w.cfg.Paths {
		filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(p) {
				if d.IsDir() && p != root {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if info, err := d.Info(); err == nil {
				out[p] = info.ModTime()
			}
			return nil
		})
	}
	return out
}

// shouldIgnore matches base-name globs and exact path segments.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	for _, pattern := range w.cfg.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.ContainsAny(pattern, "*?[") {
			if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}
		for _, seg := range strings.Split(filepath.ToSlash(fullPath), "/") {
			if seg == pattern {
				return true
			}
		}
	}
	return false
}

func classify(p string) ChangeType {
	base := strings.ToLower(filepath.Base(p))
	if base == "tessera.yaml" || base == "tessera.json" {
		return ChangeConfig
	}
	switch filepath.Ext(base) {
	case ".yaml", ".yml":
		return ChangeDocument
	}
	return ChangeOther
}
