package theme233

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// TagName 字段注入标记使用的结构体标签名
//
//	Title string `theme233:""`                        // 默认命名: Dialog.Title 或 *.Title
//	Caption string `theme233:"name=title"`           // 指定名称: Dialog.title 或 *.title
//	Color color.RGBA `theme233:"key=Common.color"`   // 指定完整 key，不回退
//	Accent color.RGBA `theme233:"converter=hexcolor"` // 指定转换器
//	Inner Panel `theme233:"definition=panel"`        // 使用注入定义填充嵌套对象
const TagName = "theme233"

// fieldTag 字段上声明的注入元数据
type fieldTag struct {
	Key        string
	Name       string
	Converter  string
	Definition string
}

func parseTag(raw string) (fieldTag, error) {
	var tag fieldTag
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		opt, value, ok := strings.Cut(part, "=")
		if !ok {
			return tag, fmt.Errorf("无效的标签选项 %q", part)
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(opt) {
		case "key":
			tag.Key = value
		case "name":
			tag.Name = value
		case "converter":
			tag.Converter = value
		case "definition":
			tag.Definition = value
		default:
			return tag, fmt.Errorf("未知的标签选项 %q", opt)
		}
	}
	return tag, nil
}

// Attribute 可注入的字段描述
type Attribute struct {
	// Name Go 字段名，默认命名时作为 key 的最后一段
	Name string
	// Index 相对于被注入结构体的字段索引路径，可穿过嵌入字段
	Index []int
	Type  reflect.Type
	// Declaring 直接声明该字段的结构体类型
	Declaring reflect.Type

	tag    fieldTag
	tagErr error
}

type selectorKey struct {
	t           reflect.Type
	hierarchy   bool
	ignoreStops bool
	all         bool
}

var (
	attributeCacheMu sync.RWMutex
	attributeCache   = map[selectorKey][]Attribute{}
)

// Attributes 返回结构体类型上带有 theme233 标签的字段
// populateHierarchy 为 true 时沿嵌入字段向上收集，遇到停止命名空间中的类型时停止
func Attributes(t reflect.Type, populateHierarchy bool) []Attribute {
	return selectAttributes(t, populateHierarchy, false, false)
}

// selectAttributes 按声明顺序收集字段，先本类型再嵌入类型
// all 为 true 时收集所有字段（注入定义使用），否则只收集带标签的字段
func selectAttributes(t reflect.Type, hierarchy, ignoreStops, all bool) []Attribute {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	key := selectorKey{t: t, hierarchy: hierarchy, ignoreStops: ignoreStops, all: all}

	attributeCacheMu.RLock()
	attrs, ok := attributeCache[key]
	attributeCacheMu.RUnlock()
	if ok {
		return attrs
	}

	attrs = []Attribute{}
	collectAttributes(t, nil, key, &attrs)

	attributeCacheMu.Lock()
	attributeCache[key] = attrs
	attributeCacheMu.Unlock()
	return attrs
}

func collectAttributes(t reflect.Type, prefix []int, key selectorKey, out *[]Attribute) {
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				embedded = append(embedded, f)
				continue
			}
		}
		raw, tagged := f.Tag.Lookup(TagName)
		if raw == "-" || (!tagged && !key.all) {
			continue
		}
		attr := Attribute{
			Name:      f.Name,
			Index:     appendIndex(prefix, i),
			Type:      f.Type,
			Declaring: t,
		}
		if tagged {
			attr.tag, attr.tagErr = parseTag(raw)
		}
		*out = append(*out, attr)
	}

	if !key.hierarchy {
		return
	}
	for _, f := range embedded {
		et := f.Type
		if et.Kind() == reflect.Ptr {
			et = et.Elem()
		}
		if !key.ignoreStops && stops.match(et.PkgPath()) {
			continue
		}
		collectAttributes(et, appendIndex(prefix, f.Index...), key, out)
	}
}

func appendIndex(prefix []int, idx ...int) []int {
	out := make([]int, 0, len(prefix)+len(idx))
	out = append(out, prefix...)
	return append(out, idx...)
}

// stopSet 停止命名空间
// 模式 "a/b/*" 或 "a/b/..." 匹配 a/b 及其子包，"*" 匹配所有包，其余为精确匹配
type stopSet struct {
	mu       sync.RWMutex
	patterns []string
	memo     map[string]bool
}

var stops = &stopSet{memo: map[string]bool{}}

// AddStopNamespaces 添加停止命名空间，字段收集不会进入这些包中的嵌入类型
func AddStopNamespaces(patterns ...string) {
	if len(patterns) == 0 {
		return
	}
	stops.mu.Lock()
	stops.patterns = append(stops.patterns, patterns...)
	stops.memo = map[string]bool{}
	stops.mu.Unlock()

	attributeCacheMu.Lock()
	attributeCache = map[selectorKey][]Attribute{}
	attributeCacheMu.Unlock()
}

func (s *stopSet) match(pkgPath string) bool {
	s.mu.RLock()
	hit, ok := s.memo[pkgPath]
	s.mu.RUnlock()
	if ok {
		return hit
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	hit = false
	for _, p := range s.patterns {
		if matchNamespace(p, pkgPath) {
			hit = true
			break
		}
	}
	s.memo[pkgPath] = hit
	return hit
}

func matchNamespace(pattern, pkgPath string) bool {
	if pattern == "*" {
		return true
	}
	for _, suffix := range []string{"/*", "/..."} {
		if base, ok := strings.CutSuffix(pattern, suffix); ok {
			return pkgPath == base || strings.HasPrefix(pkgPath, base+"/")
		}
	}
	return pkgPath == pattern
}
