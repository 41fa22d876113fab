package theme233

import (
	"reflect"
	"slices"
)

// Wildcard 全局作用域前缀，"*.attr" 对所有类型生效
const Wildcard = "*"

// keyPlan 字段的 key 生成方式
// explicit 非空时直接使用完整 key，不做任何回退
// 否则以 leaf 为最后一段，依次尝试 "类型名.leaf" 与 "*.leaf"
type keyPlan struct {
	explicit string
	leaf     string
}

// planKey 依次按照: 定义的 key、定义的名称、标签的 key、标签的名称、字段名 生成 key
func planKey(attr Attribute, def Definition) keyPlan {
	if def != nil {
		if k := def.Key(attr.Name); k != "" {
			return keyPlan{explicit: k}
		}
		if n := def.Name(attr.Name); n != "" {
			return keyPlan{leaf: n}
		}
	}
	if attr.tag.Key != "" {
		return keyPlan{explicit: attr.tag.Key}
	}
	if attr.tag.Name != "" {
		return keyPlan{leaf: attr.tag.Name}
	}
	return keyPlan{leaf: attr.Name}
}

// simpleName 类型的简单名称，不含包路径
func simpleName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// lookupPlan 按计划查找值，返回命中的 key 与已解析的值
func (inj *Injector) lookupPlan(scope reflect.Type, plan keyPlan) (string, string, []string, error) {
	var candidates []string
	if plan.explicit != "" {
		candidates = []string{plan.explicit}
	} else {
		candidates = []string{simpleName(scope) + "." + plan.leaf, Wildcard + "." + plan.leaf}
	}
	for _, key := range candidates {
		value, found, err := inj.getValue(key)
		if err != nil {
			return key, "", candidates, err
		}
		if found {
			return key, value, candidates, nil
		}
	}
	return "", "", candidates, nil
}

// resolveKey 为字段查找资源
// 以目标类型命名的查找失败且字段声明在其他类型上时，再以声明类型命名重试
func (inj *Injector) resolveKey(target reflect.Type, attr Attribute, def Definition) (string, string, error) {
	plan := planKey(attr, def)
	key, value, attempted, err := inj.lookupPlan(target, plan)
	if err != nil || key != "" {
		return key, value, err
	}
	if plan.explicit == "" && attr.Declaring != nil && simpleName(attr.Declaring) != simpleName(target) {
		var more []string
		key, value, more, err = inj.lookupPlan(attr.Declaring, plan)
		if err != nil || key != "" {
			return key, value, err
		}
		for _, k := range more {
			if !slices.Contains(attempted, k) {
				attempted = append(attempted, k)
			}
		}
	}
	return "", "", &LookupError{Attempted: attempted}
}
