package theme233

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/neko233-com/theme233-go/pkg/theme233/store"
)

// Store 注入器使用的资源存储
type Store interface {
	Load(sources ...store.Source) error
	Get(key string) (string, bool)
	Keys() []string
	Clear()
}

// Injector 资源注入器
// 每个 key 对应一个进程级单例，空 key 对应默认注入器
//
// 注入与取值持有读锁，可以并发进行；加载、重置与替换存储持有写锁
type Injector struct {
	key        string
	mu         sync.RWMutex
	store      Store
	props      *propertyMap
	useSetters bool
}

var (
	injectorsMu sync.Mutex
	injectors   = map[string]*Injector{}
)

func newInjector(key string) *Injector {
	return &Injector{
		key:   key,
		store: store.NewMapStore(),
		props: newPropertyMap(commonProperties),
	}
}

// Default 默认注入器
func Default() *Injector {
	return Get("")
}

// Get 获取 key 对应的注入器，不存在时创建
func Get(key string) *Injector {
	injectorsMu.Lock()
	defer injectorsMu.Unlock()
	inj, ok := injectors[key]
	if !ok {
		inj = newInjector(key)
		injectors[key] = inj
	}
	return inj
}

// Key 注入器的 key
func (inj *Injector) Key() string {
	return inj.key
}

// Dispose 清空存储并从单例表中移除，之后 Get 同一个 key 会得到新的注入器
func (inj *Injector) Dispose() {
	injectorsMu.Lock()
	if injectors[inj.key] == inj {
		delete(injectors, inj.key)
	}
	injectorsMu.Unlock()
	inj.Reset()
}

// Load 从资源来源加载资源，与已有资源合并
func (inj *Injector) Load(sources ...store.Source) error {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	return inj.store.Load(sources...)
}

// Reload 清空后重新加载，加载失败时保留原有资源
func (inj *Injector) Reload(sources ...store.Source) error {
	fresh := store.NewMapStore()
	if err := fresh.Load(sources...); err != nil {
		return err
	}
	inj.mu.Lock()
	defer inj.mu.Unlock()
	inj.store.Clear()
	return inj.store.Load(store.ReaderSource("reload", fresh))
}

// Reset 清空存储
func (inj *Injector) Reset() {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	inj.store.Clear()
}

// Store 当前使用的资源存储
func (inj *Injector) Store() Store {
	inj.mu.RLock()
	defer inj.mu.RUnlock()
	return inj.store
}

// SetStore 替换资源存储
func (inj *Injector) SetStore(s Store) *Injector {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	inj.store = s
	return inj
}

// SetProperty 设置注入器属性，value 为 nil 时删除，未设置的属性回退到公共属性
func (inj *Injector) SetProperty(key string, value any) *Injector {
	inj.props.set(key, value)
	return inj
}

// Property 读取注入器属性
func (inj *Injector) Property(key string) (any, bool) {
	return inj.props.Get(key)
}

// SetUseSetters 是否优先通过 SetXxx 方法注入
func (inj *Injector) SetUseSetters(use bool) *Injector {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	inj.useSetters = use
	return inj
}

// InstallBundle 安装扩展包，期间阻塞本注入器的注入
func (inj *Injector) InstallBundle(b Bundle) error {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	return AddBundle(b)
}

// Keys 存储中的全部 key
func (inj *Injector) Keys() []string {
	inj.mu.RLock()
	defer inj.mu.RUnlock()
	return inj.store.Keys()
}

// Inject 注入组件，只考虑组件类型直接声明的字段
// 参数:
//
//	components: 指向结构体的指针
//
// 返回值:
//
//	error: 所有组件尝试完成后汇总的 AggregateError
func (inj *Injector) Inject(components ...any) error {
	return inj.InjectHierarchy(false, components...)
}

// InjectHierarchy 注入组件，populateHierarchy 为 true 时同时注入嵌入类型上的字段
// 单个字段失败不影响其余字段与其余组件
func (inj *Injector) InjectHierarchy(populateHierarchy bool, components ...any) error {
	inj.mu.RLock()
	defer inj.mu.RUnlock()
	var errs []error
	for _, component := range components {
		errs = append(errs, inj.injectComponent(component, populateHierarchy)...)
	}
	return aggregate(errs)
}

// InjectWithDefinition 使用已注册的注入定义注入组件的全部字段
// 字段收集会穿过嵌入类型且忽略停止命名空间
func (inj *Injector) InjectWithDefinition(definitionID string, component any) error {
	inj.mu.RLock()
	defer inj.mu.RUnlock()
	def, ok := GetDefinition(definitionID)
	if !ok {
		return aggregate([]error{fmt.Errorf("注入定义 %s 未注册", definitionID)})
	}
	holder, err := structValue(component)
	if err != nil {
		return aggregate([]error{err})
	}
	return aggregate(inj.injectWithDefinition(holder, holder.Type(), def))
}

func (inj *Injector) injectComponent(component any, populateHierarchy bool) []error {
	holder, err := structValue(component)
	if err != nil {
		return []error{err}
	}
	target := holder.Type()
	var errs []error
	for _, attr := range selectAttributes(target, populateHierarchy, false, false) {
		if attr.tagErr != nil {
			errs = append(errs, fieldError(target, attr, attr.tagErr))
			injectionFailures.Inc(1)
			continue
		}
		if attr.tag.Definition != "" {
			errs = append(errs, inj.injectDefinitionField(holder, target, attr)...)
			continue
		}
		if err := inj.injectAttribute(holder, target, attr, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// injectDefinitionField 字段本身是结构体，按注入定义填充它的字段
func (inj *Injector) injectDefinitionField(holder reflect.Value, target reflect.Type, attr Attribute) []error {
	def, ok := GetDefinition(attr.tag.Definition)
	if !ok {
		injectionFailures.Inc(1)
		return []error{fieldError(target, attr, fmt.Errorf("注入定义 %s 未注册", attr.tag.Definition))}
	}
	field, err := holder.FieldByIndexErr(attr.Index)
	if err != nil {
		injectionFailures.Inc(1)
		return []error{fieldError(target, attr, err)}
	}
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			injectionFailures.Inc(1)
			return []error{fieldError(target, attr, fmt.Errorf("字段为 nil"))}
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.Struct {
		injectionFailures.Inc(1)
		return []error{fieldError(target, attr, fmt.Errorf("使用注入定义的字段必须是结构体"))}
	}
	return inj.injectWithDefinition(field, target, def)
}

func (inj *Injector) injectWithDefinition(holder reflect.Value, target reflect.Type, def Definition) []error {
	var errs []error
	for _, attr := range selectAttributes(holder.Type(), true, true, true) {
		if !def.IsInjectedField(attr.Name) {
			continue
		}
		if err := inj.injectAttribute(holder, target, attr, def); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// injectAttribute 查找、转换并写入单个字段
func (inj *Injector) injectAttribute(holder reflect.Value, target reflect.Type, attr Attribute, def Definition) error {
	err := inj.doInjectAttribute(holder, target, attr, def)
	if err != nil {
		injectionFailures.Inc(1)
		return fieldError(target, attr, err)
	}
	injectedAttributes.Inc(1)
	return nil
}

func (inj *Injector) doInjectAttribute(holder reflect.Value, target reflect.Type, attr Attribute, def Definition) error {
	key, raw, err := inj.resolveKey(target, attr, def)
	if err != nil {
		return err
	}
	tag := attr.tag.Converter
	if def != nil {
		if t := def.ConverterTag(attr.Name); t != "" {
			tag = t
		}
	}
	value, err := inj.convert(key, raw, target, attr.Type, tag)
	if err != nil {
		return err
	}
	if err := inj.setValue(holder, attr, value); err != nil {
		return err
	}
	getLogger().V(1).Info("注入主题资源", "type", simpleName(target), "field", attr.Name, "key", key)
	return nil
}

// convert 把资源值转换为字段类型的值
// 切片与数组字段按逗号拆分，每段按元素类型转换
func (inj *Injector) convert(key, raw string, target, fieldType reflect.Type, tag string) (reflect.Value, error) {
	if (fieldType.Kind() == reflect.Slice || fieldType.Kind() == reflect.Array) && tag == "" {
		if _, ok := registrar.converterFor(fieldType); !ok {
			return inj.convertList(key, raw, target, fieldType)
		}
	}

	c, err := selectConverter(key, fieldType, tag)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := c.LoadWithCaching(key, raw, target, inj.props)
	if err != nil {
		return reflect.Value{}, err
	}
	if children := c.ChildKeys(v); len(children) > 0 {
		present := make(map[string]string, len(children))
		for _, child := range children {
			s, found, err := inj.getValue(key + "." + child)
			if err != nil {
				return reflect.Value{}, err
			}
			if found {
				present[child] = s
			}
		}
		if v, err = c.Configure(v, present, target, inj.props); err != nil {
			return reflect.Value{}, &ConversionError{Key: key, Err: err}
		}
	}
	return adapt(key, reflect.ValueOf(v), fieldType)
}

func (inj *Injector) convertList(key, raw string, target, fieldType reflect.Type) (reflect.Value, error) {
	elemType := fieldType.Elem()
	if k := elemType.Kind(); k == reflect.Slice || k == reflect.Array {
		return reflect.Value{}, &ConversionError{Key: key, Hint: "不支持嵌套的切片或数组"}
	}
	var segments []string
	if strings.TrimSpace(raw) != "" {
		segments = strings.Split(raw, ",")
	}

	var list reflect.Value
	if fieldType.Kind() == reflect.Array {
		if len(segments) > fieldType.Len() {
			return reflect.Value{}, &ConversionError{Key: key, Hint: fmt.Sprintf("最多 %d 个元素", fieldType.Len())}
		}
		list = reflect.New(fieldType).Elem()
	} else {
		list = reflect.MakeSlice(fieldType, len(segments), len(segments))
	}
	for i, segment := range segments {
		elem, err := inj.convert(fmt.Sprintf("%s[%d]", key, i), segment, target, elemType, "")
		if err != nil {
			return reflect.Value{}, err
		}
		list.Index(i).Set(elem)
	}
	return list, nil
}

// adapt 转换结果为 *E，字段类型为 E 时取值，为 *E 时直接使用
func adapt(key string, v reflect.Value, fieldType reflect.Type) (reflect.Value, error) {
	if v.Type() == fieldType {
		return v, nil
	}
	if v.Kind() == reflect.Ptr && v.Type().Elem() == fieldType {
		return v.Elem(), nil
	}
	return reflect.Value{}, &ConversionError{Key: key, Hint: fmt.Sprintf("%s 无法赋值给 %s", v.Type(), fieldType)}
}

func structValue(component any) (reflect.Value, error) {
	v := reflect.ValueOf(component)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("注入目标必须是非 nil 的结构体指针，实际为 %T", component)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("注入目标必须是非 nil 的结构体指针，实际为 %T", component)
	}
	return v, nil
}

func fieldError(target reflect.Type, attr Attribute, err error) error {
	return fmt.Errorf("注入 %s.%s 失败: %w", simpleName(target), attr.Name, err)
}
