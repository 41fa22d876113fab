package theme233

import (
	"fmt"
	"reflect"
	"sync"
)

// Bundle 转换器扩展包
type Bundle interface {
	// Name 扩展包名称，同名扩展包只安装一次
	Name() string
	// RequiredVersion 要求的核心版本表达式，见 IsVersionCompatible
	RequiredVersion() string
	// StopNamespaces 字段收集时不进入的包路径模式
	StopNamespaces() []string
	// Init 向注册表添加转换器
	Init(r *Registrar) error
}

// Registrar 进程级转换器注册表
// 拥有独立的读写锁，安装扩展包不会阻塞各注入器正在进行的解析
type Registrar struct {
	mu         sync.RWMutex
	bundles    []Bundle
	converters []Converter
	factories  map[string]func() Converter
	instances  map[string]Converter
}

var registrar = newRegistrar()

func newRegistrar() *Registrar {
	return &Registrar{
		factories: map[string]func() Converter{},
		instances: map[string]Converter{},
	}
}

// AddConverter 添加默认转换器，按添加顺序参与类型匹配
// 同时可以通过标签 converter=<tag> 显式选择
func (r *Registrar) AddConverter(c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters = append(r.converters, c)
	if _, ok := r.instances[c.Tag()]; !ok {
		r.instances[c.Tag()] = c
	}
}

// AddConverterFactory 添加只能通过标签显式选择的转换器
// 工厂在第一次使用时调用，之后同一标签复用同一个实例
func (r *Registrar) AddConverterFactory(tag string, factory func() Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[tag] = factory
	delete(r.instances, tag)
}

// converterFor 返回第一个支持该类型的默认转换器
func (r *Registrar) converterFor(t reflect.Type) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.converters {
		if c.SupportsType(t) {
			return c, true
		}
	}
	return nil, false
}

// converterForTag 返回标签对应的转换器，工厂转换器按需实例化
func (r *Registrar) converterForTag(tag string) (Converter, error) {
	r.mu.RLock()
	c, ok := r.instances[tag]
	factory, hasFactory := r.factories[tag]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}
	if !hasFactory {
		return nil, fmt.Errorf("未注册的转换器 %q", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.instances[tag]; ok {
		return c, nil
	}
	c = factory()
	if c == nil {
		return nil, fmt.Errorf("转换器 %q 实例化失败", tag)
	}
	r.instances[tag] = c
	return c, nil
}

// Bundles 已安装的扩展包名称
func Bundles() []string {
	registrar.mu.RLock()
	defer registrar.mu.RUnlock()
	names := make([]string, 0, len(registrar.bundles))
	for _, b := range registrar.bundles {
		names = append(names, b.Name())
	}
	return names
}

// AddBundle 安装扩展包
// 版本不兼容时返回 CompatibilityError，重复安装同名扩展包不做任何事
func AddBundle(b Bundle) error {
	ok, err := IsVersionCompatible(b.RequiredVersion())
	if err != nil {
		return &CompatibilityError{Bundle: b.Name(), Required: b.RequiredVersion(), Core: CoreVersion, Err: err}
	}
	if !ok {
		return &CompatibilityError{Bundle: b.Name(), Required: b.RequiredVersion(), Core: CoreVersion}
	}

	if installed(b.Name()) {
		return nil
	}
	// Init 成功后才提交到全局登记器
	staged := newRegistrar()
	if err := b.Init(staged); err != nil {
		return fmt.Errorf("初始化扩展包 %s 失败: %w", b.Name(), err)
	}

	registrar.mu.Lock()
	for _, existing := range registrar.bundles {
		if existing.Name() == b.Name() {
			registrar.mu.Unlock()
			return nil
		}
	}
	registrar.commit(staged)
	registrar.bundles = append(registrar.bundles, b)
	registrar.mu.Unlock()

	AddStopNamespaces(b.StopNamespaces()...)
	getLogger().Info("安装扩展包", "bundle", b.Name(), "required", b.RequiredVersion())
	return nil
}

func installed(name string) bool {
	registrar.mu.RLock()
	defer registrar.mu.RUnlock()
	for _, existing := range registrar.bundles {
		if existing.Name() == name {
			return true
		}
	}
	return false
}

// commit 合并暂存登记器，调用方持有 r.mu
// 先合并工厂再合并实例，与在 r 上依次调用 AddConverterFactory / AddConverter 的结果一致
func (r *Registrar) commit(staged *Registrar) {
	for tag, factory := range staged.factories {
		r.factories[tag] = factory
		delete(r.instances, tag)
	}
	for tag, c := range staged.instances {
		if _, ok := r.instances[tag]; !ok {
			r.instances[tag] = c
		}
	}
	r.converters = append(r.converters, staged.converters...)
}

// selectConverter 为字段类型选择转换器，显式标签优先
func selectConverter(key string, fieldType reflect.Type, tag string) (Converter, error) {
	if tag != "" {
		c, err := registrar.converterForTag(tag)
		if err != nil {
			return nil, &ConversionError{Key: key, Err: err}
		}
		if !c.SupportsType(fieldType) {
			return nil, &ConversionError{Key: key, Hint: fmt.Sprintf("转换器 %s 不支持类型 %s", tag, fieldType)}
		}
		return c, nil
	}
	c, ok := registrar.converterFor(fieldType)
	if !ok {
		return nil, &ConversionError{Key: key, Hint: fmt.Sprintf("没有支持类型 %s 的转换器", fieldType)}
	}
	return c, nil
}
