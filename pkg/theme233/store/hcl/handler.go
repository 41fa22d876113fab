package hcl

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// HclHandler HCL 格式处理器
//
//	global {
//	  foreground = "#000000"
//	}
//	type "Dialog" {
//	  title = "Hello"
//	}
//
// 带标签的块以标签作为 key 前缀，无标签的块使用块类型，"global" 块对应 "*"
// 列表与元组以 ", " 连接
type HclHandler struct{}

// TypeName 返回处理器类型名
func (h *HclHandler) TypeName() string {
	return "hcl"
}

// Parse 解析 HCL 内容
func (h *HclHandler) Parse(name string, data []byte) (map[string]string, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("解析 HCL %s 失败: %w", name, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("HCL %s 不是原生语法", name)
	}
	out := make(map[string]string)
	if err := flatten("", body, out); err != nil {
		return nil, fmt.Errorf("解析 HCL %s 失败: %w", name, err)
	}
	return out, nil
}

func flatten(prefix string, body *hclsyntax.Body, out map[string]string) error {
	for attrName, attr := range body.Attributes {
		key := join(prefix, attrName)
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("属性 %s 求值失败: %w", key, diags)
		}
		s, err := toString(v)
		if err != nil {
			return fmt.Errorf("属性 %s: %w", key, err)
		}
		out[key] = s
	}
	for _, block := range body.Blocks {
		segment := block.Type
		switch {
		case len(block.Labels) > 0:
			segment = strings.Join(block.Labels, ".")
		case prefix == "" && block.Type == "global":
			segment = "*"
		}
		if err := flatten(join(prefix, segment), block.Body, out); err != nil {
			return err
		}
	}
	return nil
}

func toString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	if !v.IsKnown() {
		return "", fmt.Errorf("值未知")
	}
	t := v.Type()
	if t.IsTupleType() || t.IsListType() || t.IsSetType() {
		parts := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			s, err := toString(elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), nil
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("无法转换为字符串: %w", err)
	}
	return s.AsString(), nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
