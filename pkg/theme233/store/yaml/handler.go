package yaml

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YamlHandler YAML 格式处理器
// 嵌套映射按 "." 展开为扁平 key，序列以 ", " 连接成一个值
// 顶层的 "*" 映射表示全局作用域，需要加引号书写
type YamlHandler struct{}

// TypeName 返回处理器类型名
func (h *YamlHandler) TypeName() string {
	return "yaml"
}

// Parse 解析 YAML 内容
func (h *YamlHandler) Parse(name string, data []byte) (map[string]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析 YAML %s 失败: %w", name, err)
	}
	out := make(map[string]string)
	if len(doc.Content) == 0 {
		return out, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("YAML %s 的顶层必须是映射", name)
	}
	if err := flatten("", root, out); err != nil {
		return nil, fmt.Errorf("解析 YAML %s 失败: %w", name, err)
	}
	return out, nil
}

func flatten(prefix string, n *yaml.Node, out map[string]string) error {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if err := flatten(join(prefix, n.Content[i].Value), n.Content[i+1], out); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind == yaml.AliasNode {
				item = item.Alias
			}
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("第 %d 行: %s 的序列元素必须是标量", item.Line, prefix)
			}
			parts = append(parts, item.Value)
		}
		out[prefix] = strings.Join(parts, ", ")
	case yaml.AliasNode:
		return flatten(prefix, n.Alias, out)
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			out[prefix] = ""
		} else {
			out[prefix] = n.Value
		}
	}
	return nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
