package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JsonHandler JSON 格式处理器
// 顶层必须是对象，嵌套对象按 "." 展开，数组以 ", " 连接
type JsonHandler struct{}

// TypeName 返回处理器类型名
// 返回值:
//
//	string: "json"
func (h *JsonHandler) TypeName() string {
	return "json"
}

// Parse 解析 JSON 内容
func (h *JsonHandler) Parse(name string, data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root map[string]interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("解析 JSON %s 失败: %w", name, err)
	}
	out := make(map[string]string)
	for k, v := range root {
		if err := flatten(k, v, out); err != nil {
			return nil, fmt.Errorf("解析 JSON %s 失败: %w", name, err)
		}
	}
	return out, nil
}

func flatten(key string, v interface{}, out map[string]string) error {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, child := range val {
			if err := flatten(key+"."+k, child, out); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, err := scalar(key, item)
			if err != nil {
				return err
			}
			parts = append(parts, s)
		}
		out[key] = strings.Join(parts, ", ")
		return nil
	default:
		s, err := scalar(key, val)
		if err != nil {
			return err
		}
		out[key] = s
		return nil
	}
}

func scalar(key string, v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("%s 的数组元素必须是标量", key)
	}
}
