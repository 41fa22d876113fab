package converters

import (
	"fmt"
	"image/color"
	"reflect"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/neko233-com/theme233-go/pkg/theme233"
)

const colorHint = `必须为 "#RRGGBB"、"#AARRGGBB"、"R, G, B" 或 "R, G, B, A"`

// ParseColor 解析颜色
//
//	"#RRGGBB"     不透明颜色
//	"#AARRGGBB"   前两位为 alpha
//	"R, G, B"     0-255 的分量
//	"R, G, B, A"  0-255 的分量与 alpha
func ParseColor(value string) (color.RGBA, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "#") {
		switch len(value) {
		case 7:
			return hexRGB(value, 0xff)
		case 9:
			a, err := strconv.ParseUint(value[1:3], 16, 8)
			if err != nil {
				return color.RGBA{}, err
			}
			return hexRGB("#"+value[3:], uint8(a))
		default:
			return color.RGBA{}, fmt.Errorf("颜色 %q 长度无效", value)
		}
	}

	parts := strings.Split(value, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("颜色 %q 分量数量无效", value)
	}
	comps := [4]uint8{0, 0, 0, 0xff}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("颜色分量 %q 无效: %w", p, err)
		}
		comps[i] = uint8(v)
	}
	return color.RGBA{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}

// hexRGB 使用 go-colorful 解析 "#RRGGBB"，alpha 单独指定
// color.RGBA 为预乘 alpha 格式
func hexRGB(hex string, alpha uint8) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	if alpha == 0xff {
		return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
	}
	return color.RGBA{R: premultiply(r, alpha), G: premultiply(g, alpha), B: premultiply(b, alpha), A: alpha}, nil
}

func premultiply(v, alpha uint8) uint8 {
	return uint8(uint32(v) * uint32(alpha) / 0xff)
}

func newColorConverter() *theme233.TypeConverter[color.RGBA] {
	return theme233.NewConverter("color", func(key, value string, _ reflect.Type, _ theme233.Properties) (*color.RGBA, error) {
		c, err := ParseColor(value)
		if err != nil {
			return nil, &theme233.ConversionError{Key: key, Hint: colorHint, Err: err}
		}
		return &c, nil
	})
}

// newHexColorConverter 只接受 "#RRGGBB"，通过 converter=hexcolor 选择
func newHexColorConverter() *theme233.TypeConverter[color.RGBA] {
	return theme233.NewConverter("hexcolor", func(key, value string, _ reflect.Type, _ theme233.Properties) (*color.RGBA, error) {
		if len(value) != 7 || value[0] != '#' {
			return nil, &theme233.ConversionError{Key: key, Hint: `必须为 "#RRGGBB"`}
		}
		c, err := hexRGB(value, 0xff)
		if err != nil {
			return nil, &theme233.ConversionError{Key: key, Hint: `必须为 "#RRGGBB"`, Err: err}
		}
		return &c, nil
	})
}
