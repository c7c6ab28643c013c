package index

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

type changeRecorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *changeRecorder) record(_ context.Context, paths []string) {
	r.mu.Lock()
	r.calls = append(r.calls, paths)
	r.mu.Unlock()
}

func (r *changeRecorder) seen(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if slices.Contains(c, path) {
			return true
		}
	}
	return false
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, root string) *changeRecorder {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rec := &changeRecorder{}
	go Watch(ctx, root, 50*time.Millisecond, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)
	return rec
}

func TestWatcher_NewFile(t *testing.T) {
	root := t.TempDir()
	rec := startWatch(t, root)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("new.md")
	}, "new file not reported")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	rec := startWatch(t, root)

	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, ".hidden.md"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)

	if n := rec.count(); n != 0 {
		t.Errorf("got %d callbacks for ignored files", n)
	}
}

func TestWatcher_BurstIsDebounced(t *testing.T) {
	root := t.TempDir()
	rec := startWatch(t, root)

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		_ = os.WriteFile(filepath.Join(root, name), []byte("# "+name), 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("a.md") && rec.seen("b.md") && rec.seen("c.md")
	}, "burst not reported")
	if n := rec.count(); n > 2 {
		t.Errorf("burst produced %d callbacks", n)
	}
}

func TestWatcher_DeleteAndNewDir(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.md")
	_ = os.WriteFile(path, []byte("# Gone"), 0o644)
	rec := startWatch(t, root)

	_ = os.Remove(path)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("gone.md")
	}, "delete not reported")

	sub := filepath.Join(root, "week2")
	_ = os.Mkdir(sub, 0o755)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("week2")
	}, "new dir not reported")

	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "inner.md"), []byte("# Inner"), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("week2/inner.md")
	}, "file in new dir not reported")
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, root, 0, quietLogger(), func(context.Context, []string) {}) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
