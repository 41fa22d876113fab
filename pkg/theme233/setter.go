package theme233

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
	"unsafe"
)

var errorType = reflect.TypeFor[error]()

// setValue 写入字段
// 开启 useSetters 时优先调用 holder 上的 SetXxx(v) 方法，可返回 error
// 否则直接写入字段，未导出字段同样可以写入
func (inj *Injector) setValue(holder reflect.Value, attr Attribute, value reflect.Value) error {
	if inj.useSetters && holder.CanAddr() && holder.CanInterface() {
		if m := holder.Addr().MethodByName("Set" + exportedName(attr.Name)); m.IsValid() {
			mt := m.Type()
			if mt.NumIn() == 1 && value.Type().AssignableTo(mt.In(0)) {
				out := m.Call([]reflect.Value{value})
				if len(out) == 1 && out[0].Type() == errorType && !out[0].IsNil() {
					return fmt.Errorf("调用 Set%s 失败: %w", exportedName(attr.Name), out[0].Interface().(error))
				}
				return nil
			}
		}
	}

	field, err := holder.FieldByIndexErr(attr.Index)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		if !field.CanAddr() {
			return fmt.Errorf("字段 %s 不可写", attr.Name)
		}
		field = reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
	}
	field.Set(value)
	return nil
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
