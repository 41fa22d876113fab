package theme233

// LoadEvent 资源加载完成事件
type LoadEvent struct {
	// Key 注入器 key
	Key   string
	Store Store
}

// InjectionEvent 注入完成事件
type InjectionEvent[T any] struct {
	Key string
	// Components 本次注入的组件，重新注入时为所有仍存活的组件
	Components []*T
}

// LoadListener 资源加载监听器
type LoadListener interface {
	OnResourcesLoaded(event LoadEvent)
}

// InjectionListener 注入监听器
type InjectionListener[T any] interface {
	OnResourcesInjected(event InjectionEvent[T])
}

// LoadListenerFunc 函数形式的加载监听器
type LoadListenerFunc func(event LoadEvent)

func (f LoadListenerFunc) OnResourcesLoaded(event LoadEvent) { f(event) }

// InjectionListenerFunc 函数形式的注入监听器
type InjectionListenerFunc[T any] func(event InjectionEvent[T])

func (f InjectionListenerFunc[T]) OnResourcesInjected(event InjectionEvent[T]) { f(event) }
