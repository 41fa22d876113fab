package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/neko233-com/theme233-go/pkg/theme233"
	"github.com/neko233-com/theme233-go/pkg/theme233/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Banner struct {
	Text string `theme233:""`
}

type recordingReloader struct {
	mu    sync.Mutex
	calls int
	last  map[string]string
}

func (r *recordingReloader) Reload(sources ...store.Source) error {
	s := store.NewMapStore()
	if err := s.Load(sources...); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = map[string]string{}
	for _, k := range s.Keys() {
		r.last[k], _ = s.Get(k)
	}
	return nil
}

func (r *recordingReloader) snapshot() (int, map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.last
}

func TestWatcher_BatchesChanges(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.properties")
	b := filepath.Join(dir, "b.properties")
	require.NoError(t, os.WriteFile(a, []byte("k=a1\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("k2=b1\n"), 0644))

	r := &recordingReloader{}
	w := New(r, a, b)
	w.BatchDelay = 200 * time.Millisecond
	w.Cooldown = 0
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(a, []byte("k=a2\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("k2=b2\n"), 0644))

	require.Eventually(t, func() bool {
		_, last := r.snapshot()
		return last["k"] == "a2" && last["k2"] == "b2"
	}, 5*time.Second, 20*time.Millisecond)

	calls, _ := r.snapshot()
	assert.Equal(t, 1, calls)
}

func TestWatcher_ReloadsHive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Banner:\n  Text: first\n"), 0644))

	h := theme233.NewHive[Banner](t.Name())
	t.Cleanup(h.Injector().Dispose)

	w := New(h, path)
	w.BatchDelay = 100 * time.Millisecond
	w.Cooldown = 0
	sources, err := w.Sources()
	require.NoError(t, err)
	require.NoError(t, h.Load(sources...))

	banner := &Banner{}
	require.NoError(t, h.Inject(false, false, banner))
	assert.Equal(t, "first", banner.Text)

	reloaded := make(chan error, 4)
	w.OnReload = func(_ []string, err error) { reloaded <- err }
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(path, []byte("Banner:\n  Text: second\n"), 0644))
	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("等待热重载超时")
	}
	assert.Equal(t, "second", banner.Text)
}

func TestWatcher_RejectsUnsupportedFiles(t *testing.T) {
	w := New(&recordingReloader{}, filepath.Join(t.TempDir(), "theme.ini"))
	assert.Error(t, w.Start())
}
