package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newTestWatcher(t *testing.T, globs ...string) *Watcher {
	t.Helper()
	w, err := New(globs, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestRefreshDetectsNewFile(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, filepath.Join(dir, "*.txt"))

	if w.Refresh() {
		t.Error("refresh with no changes should report false")
	}

	writeFile(t, filepath.Join(dir, "a.txt"), "hello")

	if !w.Refresh() {
		t.Fatal("refresh after file creation should report true")
	}
	paths := w.Paths()
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "a.txt") {
		t.Errorf("Paths = %v, want the created file", paths)
	}

	if w.Refresh() {
		t.Error("refresh with no further changes should report false")
	}
}

func TestRefreshDetectsModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "v1")

	// Baseline includes the existing file
	w := newTestWatcher(t, filepath.Join(dir, "*.txt"))
	if w.Refresh() {
		t.Fatal("baseline file should not count as a change")
	}

	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if !w.Refresh() {
		t.Fatal("forward mtime should report a change")
	}
	if w.Refresh() {
		t.Error("unchanged mtime should not report a change")
	}
}

func TestRefreshDetectsDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "v1")

	w := newTestWatcher(t, filepath.Join(dir, "*.txt"))

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if !w.Refresh() {
		t.Fatal("deletion should report a change")
	}
	if len(w.Paths()) != 0 {
		t.Errorf("deleted file still recorded: %v", w.Paths())
	}
	if w.Refresh() {
		t.Error("second refresh after deletion should report false")
	}
}

func TestRefreshRecursive(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, filepath.Join(dir, "**"))

	writeFile(t, filepath.Join(dir, "sub", "deep", "b.txt"), "x")

	if !w.Refresh() {
		t.Fatal("nested file should be matched by **")
	}
	paths := w.Paths()
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "sub", "deep", "b.txt") {
		t.Errorf("Paths = %v", paths)
	}
}

func TestRefreshExcludesDunderPaths(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, filepath.Join(dir, "**"))

	writeFile(t, filepath.Join(dir, "__cache__", "x.txt"), "x")
	writeFile(t, filepath.Join(dir, "a__b.txt"), "x")
	writeFile(t, filepath.Join(dir, "keep.txt"), "x")

	if !w.Refresh() {
		t.Fatal("expected a change from the kept file")
	}
	paths := w.Paths()
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "keep.txt") {
		t.Errorf("Paths = %v, want only keep.txt", paths)
	}
}

func TestRefreshMultiplePatternsDedup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")

	w := newTestWatcher(t, filepath.Join(dir, "*.txt"), filepath.Join(dir, "**"))

	if len(w.Paths()) != 1 {
		t.Errorf("overlapping patterns should dedup, got %v", w.Paths())
	}
	if w.Refresh() {
		t.Error("no changes expected after baseline")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(nil, time.Second, nil); err == nil {
		t.Error("empty pattern list should fail")
	}
	if _, err := New([]string{"[unclosed"}, time.Second, nil); err == nil {
		t.Error("malformed pattern should fail")
	}
}

func TestRunInvokesCallback(t *testing.T) {
	dir := t.TempDir()

	changes := make(chan struct{}, 1)
	w, err := New([]string{filepath.Join(dir, "*.txt")}, 10*time.Millisecond, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	writeFile(t, filepath.Join(dir, "a.txt"), "x")

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked after file creation")
	}

	// No further changes: the callback must stay quiet
	select {
	case <-changes:
		t.Fatal("spurious callback without a change")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "x")
	writeFile(t, filepath.Join(dir, "sub", "b.go"), "x")
	writeFile(t, filepath.Join(dir, "c.txt"), "x")

	got, err := Resolve(filepath.Join(dir, "**.go"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{filepath.Join(dir, "a.go"), filepath.Join(dir, "sub", "b.go")}
	if len(got) != len(want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resolve[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStaticRoot(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"web/**", "web"},
		{"*.txt", "."},
		{"src/*/deep/*.go", "src"},
		{"/abs/dir/*.go", "/abs/dir"},
		{"web/index.html", "web"},
		{"serve.py", "."},
		{"/*.conf", "/"},
	}
	for _, tt := range tests {
		if got := staticRoot(tt.pattern); got != tt.want {
			t.Errorf("staticRoot(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}
