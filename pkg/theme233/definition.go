package theme233

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Definition 注入定义
// 在不修改目标类型的情况下描述哪些字段需要注入以及如何命名
type Definition interface {
	// IsInjectedField 字段是否参与注入
	IsInjectedField(field string) bool
	// Name 字段的资源名称，空字符串表示未指定
	Name(field string) string
	// Key 字段的完整资源 key，空字符串表示未指定
	Key(field string) string
	// ConverterTag 字段使用的转换器标签，空字符串表示未指定
	ConverterTag(field string) string
}

// FieldSpec 单个字段的注入参数
type FieldSpec struct {
	Name      string `yaml:"name"`
	Key       string `yaml:"key"`
	Converter string `yaml:"converter"`
}

// MapDefinition 基于字段表的注入定义
type MapDefinition struct {
	fields map[string]FieldSpec
}

// NewDefinition 由字段表创建注入定义
func NewDefinition(fields map[string]FieldSpec) *MapDefinition {
	copied := make(map[string]FieldSpec, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &MapDefinition{fields: copied}
}

// ParseMapDefinition 解析字符串形式的注入定义
// 每个字段的参数为逗号分隔的 name=[x]、key=[y]、converter=[z]，值两侧的包裹字符会被去掉
// 参数为空字符串表示该字段使用默认命名
func ParseMapDefinition(source string, params map[string]string) (*MapDefinition, error) {
	fields := make(map[string]FieldSpec, len(params))
	for field, raw := range params {
		var spec FieldSpec
		for _, token := range strings.Split(raw, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			opt, value, ok := strings.Cut(token, "=")
			if !ok {
				return nil, &DefinitionLoadError{Source: source, Err: fmt.Errorf("字段 %s 的参数 %q 缺少 '='", field, token)}
			}
			unwrapped, err := unwrapValue(strings.TrimSpace(value))
			if err != nil {
				return nil, &DefinitionLoadError{Source: source, Err: fmt.Errorf("字段 %s: %w", field, err)}
			}
			switch strings.TrimSpace(opt) {
			case "name":
				spec.Name = unwrapped
			case "key":
				spec.Key = unwrapped
			case "converter":
				spec.Converter = unwrapped
			default:
				return nil, &DefinitionLoadError{Source: source, Err: fmt.Errorf("字段 %s 的参数 %q 未知", field, opt)}
			}
		}
		fields[field] = spec
	}
	return &MapDefinition{fields: fields}, nil
}

func unwrapValue(value string) (string, error) {
	if len(value) < 2 {
		return "", fmt.Errorf("值 %q 缺少包裹字符", value)
	}
	first, last := value[0], value[len(value)-1]
	if (first == '[' && last == ']') || (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		return value[1 : len(value)-1], nil
	}
	return "", fmt.Errorf("值 %q 缺少包裹字符", value)
}

func (d *MapDefinition) IsInjectedField(field string) bool {
	_, ok := d.fields[field]
	return ok
}

func (d *MapDefinition) Name(field string) string {
	return d.fields[field].Name
}

func (d *MapDefinition) Key(field string) string {
	return d.fields[field].Key
}

func (d *MapDefinition) ConverterTag(field string) string {
	return d.fields[field].Converter
}

// Fields 返回定义中的字段名
func (d *MapDefinition) Fields() []string {
	names := make([]string, 0, len(d.fields))
	for name := range d.fields {
		names = append(names, name)
	}
	return names
}

// TypeDefinition 以另一个结构体类型的 theme233 标签作为注入定义
// 只考虑该类型直接声明的字段
type TypeDefinition struct {
	fields map[string]fieldTag
}

// NewTypeDefinition 由结构体类型创建注入定义
func NewTypeDefinition(t reflect.Type) (*TypeDefinition, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &DefinitionLoadError{Source: t.String(), Err: fmt.Errorf("不是结构体类型")}
	}
	fields := make(map[string]fieldTag)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		raw, ok := f.Tag.Lookup(TagName)
		if !ok || raw == "-" {
			continue
		}
		tag, err := parseTag(raw)
		if err != nil {
			return nil, &DefinitionLoadError{Source: t.String(), Err: fmt.Errorf("字段 %s: %w", f.Name, err)}
		}
		fields[f.Name] = tag
	}
	return &TypeDefinition{fields: fields}, nil
}

func (d *TypeDefinition) IsInjectedField(field string) bool {
	_, ok := d.fields[field]
	return ok
}

func (d *TypeDefinition) Name(field string) string {
	return d.fields[field].Name
}

func (d *TypeDefinition) Key(field string) string {
	return d.fields[field].Key
}

func (d *TypeDefinition) ConverterTag(field string) string {
	return d.fields[field].Converter
}

var (
	definitionsMu sync.RWMutex
	definitions   = map[string]Definition{}
)

// AddDefinition 注册注入定义，字段标签 definition=<id> 与组件绑定通过 id 引用
func AddDefinition(id string, def Definition) {
	definitionsMu.Lock()
	defer definitionsMu.Unlock()
	definitions[id] = def
}

// RemoveDefinition 移除注入定义
func RemoveDefinition(id string) {
	definitionsMu.Lock()
	defer definitionsMu.Unlock()
	delete(definitions, id)
}

// GetDefinition 获取注入定义
func GetDefinition(id string) (Definition, bool) {
	definitionsMu.RLock()
	defer definitionsMu.RUnlock()
	def, ok := definitions[id]
	return def, ok
}
