package theme233

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"weak"

	"golang.org/x/sync/singleflight"
)

// Converter 把字符串资源转换为某个 Go 类型
//
// 转换结果总是 *E，E 为 ElemType。类型为 E 的字段得到结果的副本，类型为 *E 的字段共享结果。
// 转换结果按去除首尾空白后的原始值缓存，缓存只弱引用结果。
type Converter interface {
	// Tag 转换器标签，字段标签 converter=<tag> 通过它选择转换器
	Tag() string

	// ElemType 转换结果指向的类型
	ElemType() reflect.Type

	// SupportsType 是否能为该类型的字段提供值
	SupportsType(t reflect.Type) bool

	// LoadWithCaching 转换资源值，返回 *E
	// 参数:
	//   key: 资源 key，用于错误信息
	//   raw: 已展开引用的资源值
	//   target: 被注入的组件类型
	//   props: 注入器属性
	LoadWithCaching(key, raw string, target reflect.Type, props Properties) (any, error)

	// ChildKeys 组合类型的子资源名，返回空表示不是组合类型
	ChildKeys(value any) []string

	// Configure 用子资源覆盖组合类型的部分属性，children 只包含存在的子资源
	// 返回新的 *E，缓存中的转换结果保持不变
	Configure(value any, children map[string]string, target reflect.Type, props Properties) (any, error)
}

// ConvertFunc 转换函数，value 已去除首尾空白
type ConvertFunc[E any] func(key, value string, target reflect.Type, props Properties) (*E, error)

// TypeConverter 基于泛型的转换器实现，带弱引用缓存
type TypeConverter[E any] struct {
	tag       string
	elem      reflect.Type
	convert   ConvertFunc[E]
	childKeys []string
	configure func(value *E, children map[string]string, target reflect.Type, props Properties) error
	cacheKey  func(value string, props Properties) string

	mu    sync.RWMutex
	cache map[string]weak.Pointer[E]
	group singleflight.Group
}

// NewConverter 创建转换器
func NewConverter[E any](tag string, convert ConvertFunc[E]) *TypeConverter[E] {
	return &TypeConverter[E]{
		tag:     tag,
		elem:    reflect.TypeFor[E](),
		convert: convert,
		cache:   make(map[string]weak.Pointer[E]),
	}
}

// WithChildren 声明组合类型的子资源
// 资源 "Type.attr" 存在时，"Type.attr.<child>" 会在转换后交给 configure 处理
func (c *TypeConverter[E]) WithChildren(keys []string, configure func(value *E, children map[string]string, target reflect.Type, props Properties) error) *TypeConverter[E] {
	c.childKeys = keys
	c.configure = configure
	return c
}

// WithCacheKey 转换结果依赖注入器属性时，用 fn 生成包含属性的缓存 key
func (c *TypeConverter[E]) WithCacheKey(fn func(value string, props Properties) string) *TypeConverter[E] {
	c.cacheKey = fn
	return c
}

func (c *TypeConverter[E]) Tag() string {
	return c.tag
}

func (c *TypeConverter[E]) ElemType() reflect.Type {
	return c.elem
}

// SupportsType 只匹配 E 与 *E，不考虑可赋值性
func (c *TypeConverter[E]) SupportsType(t reflect.Type) bool {
	return t == c.elem || (t.Kind() == reflect.Ptr && t.Elem() == c.elem)
}

// Load 转换并缓存
// 缓存中仍存活的结果直接返回，同一个值的并发转换只执行一次
func (c *TypeConverter[E]) Load(key, raw string, target reflect.Type, props Properties) (*E, error) {
	value := strings.TrimSpace(raw)
	cacheKey := value
	if c.cacheKey != nil {
		cacheKey = c.cacheKey(value, props)
	}

	c.mu.RLock()
	wp, ok := c.cache[cacheKey]
	c.mu.RUnlock()
	if ok {
		if p := wp.Value(); p != nil {
			converterCacheHits.Inc(1)
			return p, nil
		}
	}

	converterCacheMisses.Inc(1)
	v, err, _ := c.group.Do(cacheKey, func() (any, error) {
		p, err := c.convert(key, value, target, props)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, &ConversionError{Key: key, Hint: fmt.Sprintf("转换器 %s 没有返回值", c.tag)}
		}
		ref := weak.Make(p)
		c.mu.Lock()
		c.cache[cacheKey] = ref
		c.mu.Unlock()
		runtime.AddCleanup(p, c.prune, cacheSlot[E]{key: cacheKey, ref: ref})
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*E), nil
}

type cacheSlot[E any] struct {
	key string
	ref weak.Pointer[E]
}

// prune 结果被回收后删除对应的缓存项，已被新结果替换的缓存项保留
func (c *TypeConverter[E]) prune(slot cacheSlot[E]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache[slot.key] == slot.ref {
		delete(c.cache, slot.key)
	}
}

// cached 缓存项数量
func (c *TypeConverter[E]) cached() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *TypeConverter[E]) LoadWithCaching(key, raw string, target reflect.Type, props Properties) (any, error) {
	p, err := c.Load(key, raw, target, props)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *TypeConverter[E]) ChildKeys(value any) []string {
	return c.childKeys
}

func (c *TypeConverter[E]) Configure(value any, children map[string]string, target reflect.Type, props Properties) (any, error) {
	p, ok := value.(*E)
	if !ok {
		return nil, fmt.Errorf("转换器 %s 无法配置 %T", c.tag, value)
	}
	if c.configure == nil || len(children) == 0 {
		return p, nil
	}
	configured := *p
	if err := c.configure(&configured, children, target, props); err != nil {
		return nil, err
	}
	return &configured, nil
}
