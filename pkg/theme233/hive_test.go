package theme233

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Widget struct {
	name  string
	title string
	Note  string `theme233:""`
}

func (w *Widget) ComponentName() string {
	return w.name
}

func newTestHive[T any](t *testing.T) *Hive[T] {
	t.Helper()
	h := NewHive[T](t.Name())
	t.Cleanup(h.Injector().Dispose)
	return h
}

func TestHive_ReloadPropagation(t *testing.T) {
	h := newTestHive[Dialog](t)
	require.NoError(t, h.Load(mapSource(map[string]string{"Dialog.title": "A"})))

	d := &Dialog{}
	require.NoError(t, h.Inject(false, false, d))
	assert.Equal(t, "A", d.title)
	assert.Equal(t, 1, h.Tracked())

	require.NoError(t, h.Load(mapSource(map[string]string{"Dialog.title": "B"})))
	assert.Equal(t, "B", d.title)

	require.NoError(t, h.Reload(mapSource(map[string]string{"*.title": "C"})))
	assert.Equal(t, "C", d.title)
}

func TestHive_TracksDuplicatesOnce(t *testing.T) {
	h := newTestHive[Dialog](t)
	require.NoError(t, h.Load(mapSource(map[string]string{"*.title": "x"})))
	d := &Dialog{}
	require.NoError(t, h.Inject(false, false, d, d))
	require.NoError(t, h.Inject(false, false, d))
	assert.Equal(t, 1, h.Tracked())

	h.Remove(d)
	assert.Equal(t, 0, h.Tracked())
}

func TestHive_FailedComponentsRecoverOnReload(t *testing.T) {
	h := newTestHive[Broken](t)
	b := &Broken{}
	err := h.Inject(false, false, b)
	var agg *AggregateError
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Errs, 1)

	require.NoError(t, h.Load(mapSource(map[string]string{"Broken.Missing": "found"})))
	assert.Equal(t, "found", b.Missing)
}

func TestHive_HierarchyRememberedOnReload(t *testing.T) {
	h := newTestHive[Panel](t)
	require.NoError(t, h.Load(mapSource(map[string]string{"*.Label": "l", "*.Background": "a"})))
	p := &Panel{}
	require.NoError(t, h.Inject(true, false, p))
	assert.Equal(t, "a", p.Background)

	require.NoError(t, h.Load(mapSource(map[string]string{"*.Background": "b"})))
	assert.Equal(t, "b", p.Background)
}

// injectDetached 组件只被 Hive 弱引用
func injectDetached(t *testing.T, h *Hive[Widget]) {
	require.NoError(t, h.Inject(false, false, &Widget{name: "detached", title: "padding"}))
}

func TestHive_PrunesCollectedComponents(t *testing.T) {
	h := newTestHive[Widget](t)
	require.NoError(t, h.Load(mapSource(map[string]string{"*.Note": "n"})))

	kept := &Widget{name: "kept"}
	require.NoError(t, h.Inject(false, false, kept))
	injectDetached(t, h)
	require.Equal(t, 2, h.Tracked())

	require.Eventually(t, func() bool {
		runtime.GC()
		return h.Refresh() == nil && h.Tracked() == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, h.Load(mapSource(map[string]string{"*.Note": "m"})))
	assert.Equal(t, "m", kept.Note)
	runtime.KeepAlive(kept)
}

// addDetachedBound 绑定组件只被 Hive 弱引用
func addDetachedBound(h *Hive[Widget]) {
	h.AddBoundInstance(&Widget{name: "main", title: "padding"})
}

func TestHive_PrunesCollectedBoundComponents(t *testing.T) {
	h := newTestHive[Widget](t)
	addDetachedBound(h)
	require.Equal(t, 1, h.Bound())

	require.Eventually(t, func() bool {
		runtime.GC()
		return h.Refresh() == nil && h.Bound() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHive_LoadSkipsCollectedBoundComponents(t *testing.T) {
	AddDefinition("test-bound", NewDefinition(map[string]FieldSpec{
		"title": {Name: "heading"},
	}))
	t.Cleanup(func() { RemoveDefinition("test-bound") })

	h := newTestHive[Widget](t)
	h.Bind("main", "test-bound")
	kept := &Widget{name: "main"}
	h.AddBoundInstance(kept)
	addDetachedBound(h)
	require.Equal(t, 2, h.Bound())
	require.NoError(t, h.Load(mapSource(map[string]string{"Widget.heading": "First"})))
	require.NoError(t, h.Inject(false, false, kept))
	assert.Equal(t, "First", kept.title)

	require.Eventually(t, func() bool {
		runtime.GC()
		return h.Load(mapSource(map[string]string{"Widget.heading": "Loaded"})) == nil && h.Bound() == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Loaded", kept.title)
	runtime.KeepAlive(kept)
}

func TestHive_BoundComponentsUseBindings(t *testing.T) {
	AddDefinition("test-widget", NewDefinition(map[string]FieldSpec{
		"title": {Name: "heading"},
	}))
	t.Cleanup(func() { RemoveDefinition("test-widget") })

	h := newTestHive[Widget](t)
	h.Bind("main", "test-widget")
	assert.Equal(t, map[string]string{"main": "test-widget"}, h.Bindings())
	require.NoError(t, h.Load(mapSource(map[string]string{"Widget.heading": "Main Window"})))

	main := &Widget{name: "main"}
	other := &Widget{name: "other"}
	h.AddBoundInstance(main)
	h.AddBoundInstance(other)
	h.AddBoundInstance(main)
	assert.Equal(t, 2, h.Bound())

	require.NoError(t, h.Inject(false, false, main, other))
	assert.Equal(t, "Main Window", main.title)
	assert.Empty(t, main.Note, "绑定组件不按标签注入")
	assert.Empty(t, other.title)

	require.NoError(t, h.Load(mapSource(map[string]string{"Widget.heading": "Renamed"})))
	assert.Equal(t, "Renamed", main.title)
}

func TestHive_Events(t *testing.T) {
	h := newTestHive[Dialog](t)

	var mu sync.Mutex
	var order []string
	var injected [][]*Dialog
	h.AddLoadListener(LoadListenerFunc(func(e LoadEvent) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "load:"+e.Key)
	}))
	cancel := h.AddInjectionListener(InjectionListenerFunc[Dialog](func(e InjectionEvent[Dialog]) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "inject")
		injected = append(injected, e.Components)
	}))

	d := &Dialog{}
	require.NoError(t, h.Load(mapSource(map[string]string{"*.title": "x"})))
	require.NoError(t, h.Inject(false, true, d))
	require.NoError(t, h.Inject(false, false, d))
	require.NoError(t, h.Load(mapSource(map[string]string{"*.title": "y"})))

	key := t.Name()
	assert.Equal(t, []string{"load:" + key, "inject", "inject", "load:" + key, "inject"}, order)
	assert.Empty(t, injected[0])
	assert.Equal(t, []*Dialog{d}, injected[1])
	assert.Equal(t, []*Dialog{d}, injected[2])

	cancel()
	require.NoError(t, h.Refresh())
	assert.Len(t, order, 5)
}

func TestHive_ConcurrentInjectAndLoad(t *testing.T) {
	h := newTestHive[Dialog](t)
	require.NoError(t, h.Load(mapSource(map[string]string{"*.title": "0"})))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.Inject(false, false, &Dialog{}))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, h.Load(mapSource(map[string]string{"*.title": "1"})))
		}()
	}
	wg.Wait()
}
