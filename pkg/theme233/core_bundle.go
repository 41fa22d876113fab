package theme233

import (
	"net/url"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	uuid "github.com/nu7hatch/gouuid"
)

// FilePath 文件路径资源
// 相对路径以注入器属性 "file.base" 为基准解析
type FilePath string

// FileBaseProperty 解析 FilePath 使用的属性名
const FileBaseProperty = "file.base"

type coreBundle struct{}

func (coreBundle) Name() string { return "core" }

func (coreBundle) RequiredVersion() string { return ">=0.1" }

func (coreBundle) StopNamespaces() []string {
	return []string{"sync/*", "time/*", "reflect/*"}
}

func (coreBundle) Init(r *Registrar) error {
	r.AddConverter(NewConverter("string", func(_, value string, _ reflect.Type, _ Properties) (*string, error) {
		return &value, nil
	}))
	r.AddConverter(NewConverter("bool", parseBool))
	r.AddConverter(intConverter[int]("int", strconv.IntSize))
	r.AddConverter(intConverter[int8]("int8", 8))
	r.AddConverter(intConverter[int16]("int16", 16))
	r.AddConverter(intConverter[int32]("int32", 32))
	r.AddConverter(NewConverter("duration", parseDuration))
	r.AddConverter(intConverter[int64]("int64", 64))
	r.AddConverter(uintConverter[uint]("uint", strconv.IntSize))
	r.AddConverter(uintConverter[uint8]("uint8", 8))
	r.AddConverter(uintConverter[uint16]("uint16", 16))
	r.AddConverter(uintConverter[uint32]("uint32", 32))
	r.AddConverter(uintConverter[uint64]("uint64", 64))
	r.AddConverter(floatConverter[float32]("float32", 32))
	r.AddConverter(floatConverter[float64]("float64", 64))
	r.AddConverter(NewConverter("time", parseTime))
	r.AddConverter(NewConverter("url", parseURL))
	r.AddConverter(NewConverter("uuid", parseUUID))
	r.AddConverter(NewConverter("file", parseFilePath).WithCacheKey(func(value string, props Properties) string {
		return PropertyString(props, FileBaseProperty, "") + "\x00" + value
	}))
	return nil
}

func init() {
	if err := AddBundle(coreBundle{}); err != nil {
		panic(err)
	}
}

func parseBool(key, value string, _ reflect.Type, _ Properties) (*bool, error) {
	var b bool
	switch strings.ToLower(value) {
	case "true", "yes", "on", "1":
		b = true
	case "false", "no", "off", "0":
		b = false
	default:
		return nil, &ConversionError{Key: key, Hint: `必须为 "true" 或 "false"`}
	}
	return &b, nil
}

func intConverter[E int | int8 | int16 | int32 | int64](tag string, bits int) *TypeConverter[E] {
	return NewConverter(tag, func(key, value string, _ reflect.Type, _ Properties) (*E, error) {
		n, err := strconv.ParseInt(value, 0, bits)
		if err != nil {
			return nil, &ConversionError{Key: key, Hint: "必须为整数", Err: err}
		}
		v := E(n)
		return &v, nil
	})
}

func uintConverter[E uint | uint8 | uint16 | uint32 | uint64](tag string, bits int) *TypeConverter[E] {
	return NewConverter(tag, func(key, value string, _ reflect.Type, _ Properties) (*E, error) {
		n, err := strconv.ParseUint(value, 0, bits)
		if err != nil {
			return nil, &ConversionError{Key: key, Hint: "必须为非负整数", Err: err}
		}
		v := E(n)
		return &v, nil
	})
}

func floatConverter[E float32 | float64](tag string, bits int) *TypeConverter[E] {
	return NewConverter(tag, func(key, value string, _ reflect.Type, _ Properties) (*E, error) {
		f, err := strconv.ParseFloat(value, bits)
		if err != nil {
			return nil, &ConversionError{Key: key, Hint: "必须为数字", Err: err}
		}
		v := E(f)
		return &v, nil
	})
}

func parseDuration(key, value string, _ reflect.Type, _ Properties) (*time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, &ConversionError{Key: key, Hint: `必须为时长，如 "150ms"`, Err: err}
	}
	return &d, nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(key, value string, _ reflect.Type, _ Properties) (*time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, &ConversionError{Key: key, Hint: `必须为 RFC3339、"2006-01-02 15:04:05" 或 "2006-01-02" 格式`}
}

func parseURL(key, value string, _ reflect.Type, _ Properties) (*url.URL, error) {
	u, err := url.Parse(value)
	if err != nil {
		return nil, &ConversionError{Key: key, Hint: "必须为 URL", Err: err}
	}
	return u, nil
}

func parseUUID(key, value string, _ reflect.Type, _ Properties) (*uuid.UUID, error) {
	id, err := uuid.ParseHex(value)
	if err != nil {
		return nil, &ConversionError{Key: key, Hint: "必须为 UUID", Err: err}
	}
	return id, nil
}

func parseFilePath(_, value string, _ reflect.Type, props Properties) (*FilePath, error) {
	p := filepath.FromSlash(value)
	if base := PropertyString(props, FileBaseProperty, ""); base != "" && !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	fp := FilePath(p)
	return &fp, nil
}
