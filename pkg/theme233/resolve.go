package theme233

import (
	"fmt"
	"strings"
)

// GetValue 获取 key 对应的值并展开其中的 {ref} 引用
// 返回值:
//
//	string: 展开后的值
//	bool: key 是否存在
//	error: 引用不存在或存在循环引用
func (inj *Injector) GetValue(key string) (string, bool, error) {
	inj.mu.RLock()
	defer inj.mu.RUnlock()
	return inj.getValue(key)
}

// getValue 调用方需持有读锁
// 每次顶层调用使用独立的解析中集合，并发调用互不影响
func (inj *Injector) getValue(key string) (string, bool, error) {
	return inj.resolve(key, make(map[string]struct{}))
}

func (inj *Injector) resolve(key string, inFlight map[string]struct{}) (string, bool, error) {
	if _, ok := inFlight[key]; ok {
		return "", false, &CycleError{Key: key}
	}
	raw, ok := inj.store.Get(key)
	if !ok {
		return "", false, nil
	}
	inFlight[key] = struct{}{}
	defer delete(inFlight, key)

	value, err := inj.interpolate(key, raw, inFlight)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// interpolate 展开 raw 中的引用
//
//	"\{" 与 "\}" 输出字面括号，"\\" 输出一个反斜杠，"\x" 原样保留
//	引用之外单独的 "}" 被丢弃，末尾单独的 "\" 被丢弃
//	未闭合的引用原样输出其内容（不含 "{"）
//	引用中再次出现 "{" 时重新开始收集
func (inj *Injector) interpolate(key, raw string, inFlight map[string]struct{}) (string, error) {
	if !strings.ContainsAny(raw, "{}\\") {
		return raw, nil
	}

	var out, ref strings.Builder
	inRef, escaped := false, false
	for _, c := range raw {
		w := &out
		if inRef {
			w = &ref
		}
		switch {
		case escaped:
			escaped = false
			switch c {
			case '{', '}', '\\':
				w.WriteRune(c)
			default:
				w.WriteRune('\\')
				w.WriteRune(c)
			}
		case c == '\\':
			escaped = true
		case c == '{':
			inRef = true
			ref.Reset()
		case c == '}' && inRef:
			inRef = false
			name := ref.String()
			value, found, err := inj.resolve(name, inFlight)
			if err != nil {
				return "", fmt.Errorf("解析主题资源 %s 失败: %w", key, err)
			}
			if !found {
				return "", fmt.Errorf("解析主题资源 %s 失败: %w", key, &LookupError{Attempted: []string{name}})
			}
			out.WriteString(value)
		case c == '}':
		default:
			w.WriteRune(c)
		}
	}
	if inRef {
		out.WriteString(ref.String())
	}
	return out.String(), nil
}
