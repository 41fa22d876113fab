package theme233

import "sync"

// Properties 转换器可读取的属性集合
// 实例属性优先，未设置时回退到全局公共属性
type Properties interface {
	Get(key string) (any, bool)
}

// PropertyString 读取字符串属性，不存在或类型不符时返回 def
func PropertyString(props Properties, key, def string) string {
	if props == nil {
		return def
	}
	v, ok := props.Get(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

type propertyMap struct {
	mu       sync.RWMutex
	values   map[string]any
	fallback *propertyMap
}

func newPropertyMap(fallback *propertyMap) *propertyMap {
	return &propertyMap{values: make(map[string]any), fallback: fallback}
}

func (p *propertyMap) Get(key string) (any, bool) {
	p.mu.RLock()
	v, ok := p.values[key]
	p.mu.RUnlock()
	if ok {
		return v, true
	}
	if p.fallback != nil {
		return p.fallback.Get(key)
	}
	return nil, false
}

func (p *propertyMap) set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if value == nil {
		delete(p.values, key)
		return
	}
	p.values[key] = value
}

var commonProperties = newPropertyMap(nil)

// SetCommonProperty 设置所有注入器共享的公共属性，value 为 nil 时删除
func SetCommonProperty(key string, value any) {
	commonProperties.set(key, value)
}
