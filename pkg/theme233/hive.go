package theme233

import (
	"sort"
	"sync"
	"time"

	"github.com/neko233-com/theme233-go/pkg/theme233/store"
)

// Named 绑定组件通过名称查找注入定义
type Named interface {
	ComponentName() string
}

// Hive 管理一个注入器作用域内的组件
//
// Hive 以弱引用跟踪注入过的组件，资源重新加载后自动再次注入所有仍存活的组件，
// 已被回收的组件在下一次重新注入时清除。绑定组件通过 ComponentName 查找注入定义注入。
type Hive[T any] struct {
	key string

	mu      sync.Mutex
	tracked arena[T]
	bound   arena[T]

	bindingsMu sync.RWMutex
	bindings   map[string]string

	listenersMu        sync.RWMutex
	nextListenerID     int
	loadListeners      map[int]LoadListener
	injectionListeners map[int]InjectionListener[T]
}

// NewHive 创建 Hive，key 为使用的注入器 key
func NewHive[T any](key string) *Hive[T] {
	return &Hive[T]{
		key:                key,
		bindings:           make(map[string]string),
		loadListeners:      make(map[int]LoadListener),
		injectionListeners: make(map[int]InjectionListener[T]),
	}
}

// Injector 当前作用域的注入器
func (h *Hive[T]) Injector() *Injector {
	return Get(h.key)
}

// Load 加载资源并重新注入所有组件
// 依次触发加载事件与注入事件
func (h *Hive[T]) Load(sources ...store.Source) error {
	inj := h.Injector()
	if err := inj.Load(sources...); err != nil {
		return err
	}
	h.fireLoad(LoadEvent{Key: h.key, Store: inj.Store()})
	return h.performInjection()
}

// Reload 清空后重新加载资源并重新注入所有组件，加载失败时不注入
func (h *Hive[T]) Reload(sources ...store.Source) error {
	inj := h.Injector()
	if err := inj.Reload(sources...); err != nil {
		return err
	}
	h.fireLoad(LoadEvent{Key: h.key, Store: inj.Store()})
	return h.performInjection()
}

// Refresh 不加载资源，重新注入所有组件
func (h *Hive[T]) Refresh() error {
	return h.performInjection()
}

// Inject 注入组件并开始跟踪
// 注入失败的组件同样会被跟踪，资源修正后的重新加载会再次注入它们
func (h *Hive[T]) Inject(populateHierarchy, fireEvent bool, components ...*T) error {
	var errs []error
	for _, c := range components {
		if c == nil {
			continue
		}
		errs = appendErrors(errs, h.injectComponent(c, populateHierarchy))

		h.mu.Lock()
		h.tracked.add(c, populateHierarchy)
		h.mu.Unlock()

		if fireEvent {
			h.fireInjection(InjectionEvent[T]{Key: h.key, Components: []*T{c}})
		}
	}
	return aggregate(errs)
}

// AddBoundInstance 将组件标记为绑定组件，绑定组件按 Bind 登记的注入定义注入
func (h *Hive[T]) AddBoundInstance(c *T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.bound.contains(c) {
		h.bound.add(c, true)
	}
}

// Bind 登记组件名称对应的注入定义 id
func (h *Hive[T]) Bind(componentName, definitionID string) {
	h.bindingsMu.Lock()
	defer h.bindingsMu.Unlock()
	h.bindings[componentName] = definitionID
}

// Bindings 组件名称到注入定义 id 的映射副本
func (h *Hive[T]) Bindings() map[string]string {
	h.bindingsMu.RLock()
	defer h.bindingsMu.RUnlock()
	out := make(map[string]string, len(h.bindings))
	for k, v := range h.bindings {
		out[k] = v
	}
	return out
}

// Remove 停止跟踪组件
func (h *Hive[T]) Remove(c *T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ref := weakRef(c)
	h.tracked.removeRef(ref)
	h.bound.removeRef(ref)
}

// Tracked 跟踪中的组件数量，包括已被回收但尚未清除的
func (h *Hive[T]) Tracked() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tracked.len()
}

// Bound 绑定组件数量
func (h *Hive[T]) Bound() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bound.len()
}

// AddLoadListener 添加加载监听器，返回取消函数
func (h *Hive[T]) AddLoadListener(l LoadListener) func() {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	id := h.nextListenerID
	h.nextListenerID++
	h.loadListeners[id] = l
	return func() {
		h.listenersMu.Lock()
		defer h.listenersMu.Unlock()
		delete(h.loadListeners, id)
	}
}

// AddInjectionListener 添加注入监听器，返回取消函数
func (h *Hive[T]) AddInjectionListener(l InjectionListener[T]) func() {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	id := h.nextListenerID
	h.nextListenerID++
	h.injectionListeners[id] = l
	return func() {
		h.listenersMu.Lock()
		defer h.listenersMu.Unlock()
		delete(h.injectionListeners, id)
	}
}

func (h *Hive[T]) injectComponent(c *T, populateHierarchy bool) error {
	h.mu.Lock()
	bound := h.bound.contains(c)
	h.mu.Unlock()
	if bound {
		return h.injectBound(c)
	}
	return h.Injector().InjectHierarchy(populateHierarchy, c)
}

// injectBound 绑定组件没有名称或名称没有登记时不注入
func (h *Hive[T]) injectBound(c *T) error {
	named, ok := any(c).(Named)
	if !ok {
		return nil
	}
	h.bindingsMu.RLock()
	definitionID, ok := h.bindings[named.ComponentName()]
	h.bindingsMu.RUnlock()
	if !ok {
		return nil
	}
	return h.Injector().InjectWithDefinition(definitionID, c)
}

// performInjection 重新注入所有仍存活的组件
// 遍历时不持有锁，已回收的组件先标记，遍历结束后统一清除
func (h *Hive[T]) performInjection() error {
	start := time.Now()
	h.mu.Lock()
	entries := h.tracked.snapshot()
	h.mu.Unlock()

	var (
		errs     []error
		expired  []handle
		survived = make([]*T, 0, len(entries))
	)
	for _, e := range entries {
		c := e.ref.Value()
		if c == nil {
			expired = append(expired, e.h)
			continue
		}
		errs = appendErrors(errs, h.injectComponent(c, e.hierarchy))
		survived = append(survived, c)
	}

	h.mu.Lock()
	for _, eh := range expired {
		h.tracked.remove(eh)
	}
	h.bound.pruneExpired()
	h.mu.Unlock()

	reloadTimer.UpdateSince(start)
	getLogger().Info("重新注入组件", "key", h.key, "components", len(survived), "expired", len(expired), "errors", len(errs))
	h.fireInjection(InjectionEvent[T]{Key: h.key, Components: survived})
	return aggregate(errs)
}

func (h *Hive[T]) fireLoad(event LoadEvent) {
	for _, l := range h.sortedLoadListeners() {
		l.OnResourcesLoaded(event)
	}
}

func (h *Hive[T]) fireInjection(event InjectionEvent[T]) {
	h.listenersMu.RLock()
	ids := make([]int, 0, len(h.injectionListeners))
	for id := range h.injectionListeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]InjectionListener[T], 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, h.injectionListeners[id])
	}
	h.listenersMu.RUnlock()

	for _, l := range listeners {
		l.OnResourcesInjected(event)
	}
}

func (h *Hive[T]) sortedLoadListeners() []LoadListener {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()
	ids := make([]int, 0, len(h.loadListeners))
	for id := range h.loadListeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]LoadListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, h.loadListeners[id])
	}
	return listeners
}
