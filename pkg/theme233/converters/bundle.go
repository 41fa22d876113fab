// Package converters 界面相关的转换器扩展包：颜色、字体、几何尺寸与渐变
package converters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/neko233-com/theme233-go/pkg/theme233"
)

// Bundle 界面转换器扩展包
type Bundle struct{}

func (Bundle) Name() string { return "display" }

func (Bundle) RequiredVersion() string { return ">=0.3" }

func (Bundle) StopNamespaces() []string {
	return []string{"image/*"}
}

func (Bundle) Init(r *theme233.Registrar) error {
	r.AddConverter(newColorConverter())
	r.AddConverter(newFontConverter())
	r.AddConverter(newPointConverter())
	r.AddConverter(newRectangleConverter())
	r.AddConverter(newDimensionConverter())
	r.AddConverter(newInsetsConverter())
	r.AddConverter(newGradientConverter())
	r.AddConverterFactory("hexcolor", func() theme233.Converter {
		return newHexColorConverter()
	})
	return nil
}

// Install 安装到进程级注册表，重复调用无副作用
func Install() error {
	return theme233.AddBundle(Bundle{})
}

// parseInts 解析逗号分隔的整数列表，要求恰好 n 个
func parseInts(key, value string, n int, hint string) ([]int, error) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, &theme233.ConversionError{Key: key, Hint: hint}
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, &theme233.ConversionError{Key: key, Hint: hint, Err: err}
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(key, value string, n int, hint string) ([]float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, &theme233.ConversionError{Key: key, Hint: hint}
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, &theme233.ConversionError{Key: key, Hint: hint, Err: fmt.Errorf("第 %d 项: %w", i+1, err)}
		}
		out[i] = v
	}
	return out, nil
}
