package converters

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/neko233-com/theme233-go/pkg/theme233"
)

// FontStyle 字体样式
type FontStyle int

const (
	Plain FontStyle = iota
	Bold
	Italic
	BoldItalic
)

var fontStyles = map[string]FontStyle{
	"PLAIN":      Plain,
	"BOLD":       Bold,
	"ITALIC":     Italic,
	"BOLDITALIC": BoldItalic,
}

var fontStyleNames = [...]string{"PLAIN", "BOLD", "ITALIC", "BOLDITALIC"}

func (s FontStyle) String() string {
	if s >= 0 && int(s) < len(fontStyleNames) {
		return fontStyleNames[s]
	}
	return strconv.Itoa(int(s))
}

// ParseFontStyle 样式名不区分大小写
func ParseFontStyle(s string) (FontStyle, error) {
	style, ok := fontStyles[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return Plain, fmt.Errorf("未知的字体样式 %q", s)
	}
	return style, nil
}

// DefaultFontSize 未指定字号时使用的字号
const DefaultFontSize = 12

// Font 字体
type Font struct {
	Face  string
	Style FontStyle
	Size  float64
}

// ParseFont 解析 "face-STYLE-size"，样式与字号可以省略，如 "Arial"、"Arial-BOLD"、"Arial-BOLD-14"
// 字体名本身可以包含 "-"，只有末尾可识别的样式与字号会被拆分
func ParseFont(value string) (Font, error) {
	f := Font{Face: strings.TrimSpace(value), Style: Plain, Size: DefaultFontSize}
	if f.Face == "" {
		return f, fmt.Errorf("字体名为空")
	}
	if i := strings.LastIndex(f.Face, "-"); i > 0 {
		if size, err := strconv.ParseFloat(f.Face[i+1:], 64); err == nil {
			f.Size = size
			f.Face = f.Face[:i]
		}
	}
	if i := strings.LastIndex(f.Face, "-"); i > 0 {
		if style, err := ParseFontStyle(f.Face[i+1:]); err == nil {
			f.Style = style
			f.Face = f.Face[:i]
		}
	}
	return f, nil
}

func newFontConverter() *theme233.TypeConverter[Font] {
	return theme233.NewConverter("font", func(key, value string, _ reflect.Type, _ theme233.Properties) (*Font, error) {
		f, err := ParseFont(value)
		if err != nil {
			return nil, &theme233.ConversionError{Key: key, Hint: `必须为 "face-STYLE-size"`, Err: err}
		}
		return &f, nil
	}).WithChildren([]string{"face", "style", "size"}, configureFont)
}

// configureFont 子资源 face、style、size 覆盖对应属性
func configureFont(f *Font, children map[string]string, _ reflect.Type, _ theme233.Properties) error {
	if face, ok := children["face"]; ok {
		f.Face = strings.TrimSpace(face)
	}
	if s, ok := children["style"]; ok {
		style, err := ParseFontStyle(s)
		if err != nil {
			return err
		}
		f.Style = style
	}
	if s, ok := children["size"]; ok {
		size, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("字号 %q 无效: %w", s, err)
		}
		f.Size = size
	}
	return nil
}
