// Package theme233 把扁平 key/value 主题资源注入到结构体字段中
//
// 资源 key 的形式为 "类型名.属性"，"*.属性" 对所有类型生效。值中可以使用 {other.key}
// 引用其他资源，引用在取值时展开。字段通过 theme233 结构体标签声明：
//
//	type Dialog struct {
//	    Title      string      `theme233:""`
//	    Foreground color.RGBA  `theme233:"name=foreground"`
//	    Font       *Font       `theme233:"key=Common.font"`
//	}
//
//	inj := theme233.Default()
//	_ = inj.Load(store.MapSource(map[string]string{
//	    "Dialog.Title":     "Hello {user}",
//	    "user":             "World",
//	    "*.foreground":     "#000000",
//	}))
//	err := inj.Inject(&dialog)
//
// Hive 在此基础上以弱引用跟踪组件，资源重新加载后自动再次注入。
package theme233
