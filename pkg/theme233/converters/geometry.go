package converters

import (
	"image"
	"reflect"

	"github.com/neko233-com/theme233-go/pkg/theme233"
)

// Dimension 宽高
type Dimension struct {
	Width, Height int
}

// Insets 四边留白
type Insets struct {
	Top, Left, Bottom, Right int
}

func newPointConverter() *theme233.TypeConverter[image.Point] {
	return theme233.NewConverter("point", func(key, value string, _ reflect.Type, _ theme233.Properties) (*image.Point, error) {
		v, err := parseInts(key, value, 2, `必须为 "x, y"`)
		if err != nil {
			return nil, err
		}
		return &image.Point{X: v[0], Y: v[1]}, nil
	})
}

// newRectangleConverter "x, y, width, height"
func newRectangleConverter() *theme233.TypeConverter[image.Rectangle] {
	return theme233.NewConverter("rectangle", func(key, value string, _ reflect.Type, _ theme233.Properties) (*image.Rectangle, error) {
		v, err := parseInts(key, value, 4, `必须为 "x, y, width, height"`)
		if err != nil {
			return nil, err
		}
		r := image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3])
		return &r, nil
	})
}

func newDimensionConverter() *theme233.TypeConverter[Dimension] {
	return theme233.NewConverter("dimension", func(key, value string, _ reflect.Type, _ theme233.Properties) (*Dimension, error) {
		v, err := parseInts(key, value, 2, `必须为 "width, height"`)
		if err != nil {
			return nil, err
		}
		return &Dimension{Width: v[0], Height: v[1]}, nil
	})
}

func newInsetsConverter() *theme233.TypeConverter[Insets] {
	return theme233.NewConverter("insets", func(key, value string, _ reflect.Type, _ theme233.Properties) (*Insets, error) {
		v, err := parseInts(key, value, 4, `必须为 "top, left, bottom, right"`)
		if err != nil {
			return nil, err
		}
		return &Insets{Top: v[0], Left: v[1], Bottom: v[2], Right: v[3]}, nil
	})
}
