package converters

import (
	"image/color"
	"reflect"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/neko233-com/theme233-go/pkg/theme233"
)

const gradientHint = `必须为 "x1, y1 | x2, y2 | color1 | color2"`

// Point2D 浮点坐标
type Point2D struct {
	X, Y float64
}

// Gradient 两点之间的线性渐变
type Gradient struct {
	Start, End Point2D
	From, To   color.RGBA
}

// At 返回 t (0..1) 处的颜色，在 Lab 空间插值
func (g Gradient) At(t float64) color.RGBA {
	from, _ := colorful.MakeColor(opaque(g.From))
	to, _ := colorful.MakeColor(opaque(g.To))
	r, gr, b := from.BlendLab(to, t).Clamped().RGB255()
	a := float64(g.From.A) + (float64(g.To.A)-float64(g.From.A))*t
	return color.RGBA{R: r, G: gr, B: b, A: uint8(a + 0.5)}
}

// opaque colorful.MakeColor 不接受 alpha 为 0 的颜色
func opaque(c color.RGBA) color.RGBA {
	c.A = 0xff
	return c
}

// ParseGradient 解析 "x1, y1 | x2, y2 | color1 | color2"
func ParseGradient(key, value string) (Gradient, error) {
	parts := strings.Split(value, "|")
	if len(parts) != 4 {
		return Gradient{}, &theme233.ConversionError{Key: key, Hint: gradientHint}
	}
	start, err := parseFloats(key, parts[0], 2, gradientHint)
	if err != nil {
		return Gradient{}, err
	}
	end, err := parseFloats(key, parts[1], 2, gradientHint)
	if err != nil {
		return Gradient{}, err
	}
	from, err := ParseColor(parts[2])
	if err != nil {
		return Gradient{}, &theme233.ConversionError{Key: key, Hint: gradientHint, Err: err}
	}
	to, err := ParseColor(parts[3])
	if err != nil {
		return Gradient{}, &theme233.ConversionError{Key: key, Hint: gradientHint, Err: err}
	}
	return Gradient{
		Start: Point2D{X: start[0], Y: start[1]},
		End:   Point2D{X: end[0], Y: end[1]},
		From:  from,
		To:    to,
	}, nil
}

func newGradientConverter() *theme233.TypeConverter[Gradient] {
	return theme233.NewConverter("gradient", func(key, value string, _ reflect.Type, _ theme233.Properties) (*Gradient, error) {
		g, err := ParseGradient(key, value)
		if err != nil {
			return nil, err
		}
		return &g, nil
	})
}
