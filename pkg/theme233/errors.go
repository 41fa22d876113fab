package theme233

import (
	"fmt"
	"strings"
)

// LookupError 主题资源不存在
// Attempted 按顺序记录了所有尝试过的 key
type LookupError struct {
	Attempted []string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("主题资源 %s 不存在", strings.Join(e.Attempted, " 和 "))
}

// CycleError 引用解析过程中检测到依赖循环
type CycleError struct {
	Key string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("主题资源 %s 存在循环引用", e.Key)
}

// ConversionError 字符串值无法转换为目标类型
type ConversionError struct {
	Key  string
	Hint string // 期望的格式说明
	Err  error
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "主题资源 %s 类型转换失败", e.Key)
	if e.Hint != "" {
		fmt.Fprintf(&b, ": %s", e.Hint)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// DefinitionLoadError 注入定义无法解析
type DefinitionLoadError struct {
	Source string
	Err    error
}

func (e *DefinitionLoadError) Error() string {
	return fmt.Sprintf("加载注入定义 %s 失败: %v", e.Source, e.Err)
}

func (e *DefinitionLoadError) Unwrap() error {
	return e.Err
}

// CompatibilityError 扩展包要求的核心版本与当前版本不兼容
type CompatibilityError struct {
	Bundle   string
	Required string
	Core     float64
	Err      error // 版本表达式无法解析时非空
}

func (e *CompatibilityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("扩展包 %s 的版本要求 %q 无效: %v", e.Bundle, e.Required, e.Err)
	}
	return fmt.Sprintf("扩展包 %s 要求核心版本 %s，当前版本为 %v", e.Bundle, e.Required, e.Core)
}

func (e *CompatibilityError) Unwrap() error {
	return e.Err
}

// AggregateError 批量注入时收集的全部错误
type AggregateError struct {
	Errs []error
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "注入过程中出现 %d 个错误:", len(e.Errs))
	for _, err := range e.Errs {
		b.WriteString("\n\t\t")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error {
	return e.Errs
}

// appendErrors 将 err 追加到 errs，AggregateError 会被展开
func appendErrors(errs []error, err error) []error {
	if err == nil {
		return errs
	}
	if agg, ok := err.(*AggregateError); ok {
		return append(errs, agg.Errs...)
	}
	return append(errs, err)
}

func aggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errs: errs}
}
