// Package watch implements the poll-based glob watcher that drives restarts.
//
// Detection is modification-time based: each tick resolves the configured
// patterns to a set of regular files and compares their mtimes against the
// previous tick. Added, touched and removed files all count as a change.
// Paths with a segment containing "__" are excluded, which keeps cache and
// build directories (__pycache__ and friends) from triggering restarts.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"molt/internal/logging"
)

// DefaultInterval is the sleep between poll ticks.
const DefaultInterval = 500 * time.Millisecond

// pattern pairs a compiled glob with the walk root derived from its
// longest static prefix.
type pattern struct {
	raw  string
	g    glob.Glob
	root string
}

// Watcher polls a set of glob patterns and reports mtime changes through
// a callback. It is not safe for concurrent use; Run owns it once started.
type Watcher struct {
	patterns []pattern
	records  map[string]time.Time
	interval time.Duration
	onChange func()
	logger   *slog.Logger
}

// New compiles the given patterns and records the baseline file set, so
// the first poll tick only reports changes made after construction.
// Patterns use "/" separators; "*" stays within one path segment, "**"
// crosses segments.
func New(globs []string, interval time.Duration, onChange func()) (*Watcher, error) {
	if len(globs) == 0 {
		return nil, errors.New("watch: no glob patterns")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	w := &Watcher{
		records:  make(map[string]time.Time),
		interval: interval,
		onChange: onChange,
		logger:   logging.GetLogger("watch"),
	}

	for _, raw := range globs {
		g, err := glob.Compile(filepath.ToSlash(raw), '/')
		if err != nil {
			return nil, fmt.Errorf("watch: bad pattern %q: %w", raw, err)
		}
		w.patterns = append(w.patterns, pattern{raw: raw, g: g, root: staticRoot(raw)})
	}

	w.Refresh() // baseline, deliberately not a change
	return w, nil
}

// Refresh resolves all patterns and updates the per-file mtime records.
// It reports whether anything changed: a new match, a strictly newer
// mtime, or a recorded file that is gone. A file vanishing between
// enumeration and stat counts as removed, never as an error.
func (w *Watcher) Refresh() bool {
	resolved := w.resolve()
	changed := false

	for path := range resolved {
		info, err := os.Stat(path)
		if err != nil {
			if _, ok := w.records[path]; ok {
				delete(w.records, path)
				changed = true
			}
			continue
		}
		mtime := info.ModTime()
		prev, seen := w.records[path]
		if !seen || mtime.After(prev) {
			w.records[path] = mtime
			changed = true
		}
	}

	for path := range w.records {
		if _, ok := resolved[path]; !ok {
			delete(w.records, path)
			changed = true
		}
	}

	return changed
}

// Run polls until ctx is canceled, invoking the change callback after any
// tick whose Refresh reports a change. Cancellation is observed once per
// tick, so shutdown latency is bounded by one interval.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Debug("Watching for changes", "patterns", w.Patterns(), "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Watcher stopped")
			return
		case <-time.After(w.interval):
		}
		if w.Refresh() {
			w.logger.Debug("Change detected", "files", len(w.records))
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}

// Patterns returns the raw pattern strings.
func (w *Watcher) Patterns() []string {
	out := make([]string, len(w.patterns))
	for i, p := range w.patterns {
		out[i] = p.raw
	}
	return out
}

// Paths returns the currently recorded file paths, sorted.
func (w *Watcher) Paths() []string {
	out := make([]string, 0, len(w.records))
	for path := range w.records {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// resolve walks each pattern's root and collects matching regular files.
func (w *Watcher) resolve() map[string]struct{} {
	found := make(map[string]struct{})
	for i := range w.patterns {
		matchPattern(&w.patterns[i], found)
	}
	return found
}

func matchPattern(p *pattern, found map[string]struct{}) {
	if _, err := os.Stat(p.root); err != nil {
		return // missing root matches nothing this tick
	}
	_ = filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if strings.Contains(d.Name(), "__") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		slashed := filepath.ToSlash(path)
		if excluded(slashed) {
			return nil
		}
		if p.g.Match(slashed) {
			found[path] = struct{}{}
		}
		return nil
	})
}

// excluded reports whether any path segment contains "__".
func excluded(slashed string) bool {
	for _, seg := range strings.Split(slashed, "/") {
		if strings.Contains(seg, "__") {
			return true
		}
	}
	return false
}

// Resolve returns the regular files a single pattern currently matches,
// applying the same exclusion rules as a running watcher.
func Resolve(raw string) ([]string, error) {
	g, err := glob.Compile(filepath.ToSlash(raw), '/')
	if err != nil {
		return nil, fmt.Errorf("watch: bad pattern %q: %w", raw, err)
	}
	p := pattern{raw: raw, g: g, root: staticRoot(raw)}

	found := make(map[string]struct{})
	matchPattern(&p, found)

	out := make([]string, 0, len(found))
	for path := range found {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

// staticRoot returns the longest meta-free directory prefix of a pattern,
// the directory the walk starts from.
func staticRoot(pat string) string {
	pat = filepath.ToSlash(pat)
	segs := strings.Split(pat, "/")

	i := 0
	for ; i < len(segs); i++ {
		if strings.ContainsAny(segs[i], "*?[{") {
			break
		}
	}
	if i == len(segs) {
		// Literal path: walk its parent directory
		i--
	}

	root := strings.Join(segs[:i], "/")
	if root == "" {
		if strings.HasPrefix(pat, "/") {
			return "/"
		}
		return "."
	}
	return root
}
