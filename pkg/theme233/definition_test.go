package theme233

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Inner struct {
	Name    string
	Color   string
	Skipped string
}

type Outer struct {
	Inner Inner `theme233:"definition=test-inner"`
}

type OuterPtr struct {
	Inner *Inner `theme233:"definition=test-inner"`
}

type OuterUnknown struct {
	Inner Inner `theme233:"definition=test-unregistered"`
}

func TestParseMapDefinition(t *testing.T) {
	def, err := ParseMapDefinition("test", map[string]string{
		"title":      "name=[caption]",
		"background": `key="Common.bg", converter='hexcolor'`,
		"border":     "",
	})
	require.NoError(t, err)
	assert.True(t, def.IsInjectedField("border"))
	assert.False(t, def.IsInjectedField("other"))
	assert.Equal(t, "caption", def.Name("title"))
	assert.Equal(t, "Common.bg", def.Key("background"))
	assert.Equal(t, "hexcolor", def.ConverterTag("background"))
	assert.Empty(t, def.Key("border"))

	for _, bad := range []string{"name=caption", "name", "colour=[x]"} {
		_, err := ParseMapDefinition("bad", map[string]string{"title": bad})
		var loadErr *DefinitionLoadError
		require.True(t, errors.As(err, &loadErr), bad)
		assert.Equal(t, "bad", loadErr.Source)
	}
}

func TestLoadYAMLDefinition(t *testing.T) {
	def, err := LoadYAMLDefinition("inline", strings.NewReader(`
fields:
  title:
    name: caption
  background:
    key: Common.bg
    converter: hexcolor
  border:
`))
	require.NoError(t, err)
	assert.Equal(t, "caption", def.Name("title"))
	assert.Equal(t, "hexcolor", def.ConverterTag("background"))
	assert.True(t, def.IsInjectedField("border"))
	assert.ElementsMatch(t, []string{"title", "background", "border"}, def.Fields())

	_, err = LoadYAMLDefinition("unknown", strings.NewReader("fields:\n  title:\n    colour: red\n"))
	var loadErr *DefinitionLoadError
	assert.True(t, errors.As(err, &loadErr))

	_, err = LoadYAMLDefinition("empty", strings.NewReader(""))
	assert.True(t, errors.As(err, &loadErr))

	path := filepath.Join(t.TempDir(), "def.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  title: {}\n"), 0644))
	def, err = LoadYAMLDefinitionFile(path)
	require.NoError(t, err)
	assert.True(t, def.IsInjectedField("title"))
}

func TestNewTypeDefinition(t *testing.T) {
	def, err := NewTypeDefinition(reflect.TypeFor[Labeled]())
	require.NoError(t, err)
	assert.True(t, def.IsInjectedField("Caption"))
	assert.Equal(t, "caption", def.Name("Caption"))
	assert.Equal(t, "Common.border", def.Key("Border"))

	_, err = NewTypeDefinition(reflect.TypeFor[int]())
	assert.Error(t, err)
}

func TestInject_DefinitionField(t *testing.T) {
	AddDefinition("test-inner", NewDefinition(map[string]FieldSpec{
		"Name":  {Name: "label"},
		"Color": {Key: "Palette.primary"},
	}))
	t.Cleanup(func() { RemoveDefinition("test-inner") })

	t.Run("按定义注入嵌套结构体", func(t *testing.T) {
		inj := newTestInjector(t, map[string]string{
			"Outer.label":     "L",
			"Palette.primary": "blue",
			"Outer.Skipped":   "nope",
		})
		var o Outer
		require.NoError(t, inj.Inject(&o))
		assert.Equal(t, Inner{Name: "L", Color: "blue"}, o.Inner)
	})

	t.Run("回退到嵌套类型名称", func(t *testing.T) {
		inj := newTestInjector(t, map[string]string{
			"Inner.label":     "from inner",
			"Palette.primary": "blue",
		})
		o := OuterPtr{Inner: &Inner{}}
		require.NoError(t, inj.Inject(&o))
		assert.Equal(t, "from inner", o.Inner.Name)
	})

	t.Run("nil 指针字段", func(t *testing.T) {
		inj := newTestInjector(t, nil)
		assert.Error(t, inj.Inject(&OuterPtr{}))
	})

	t.Run("未注册的定义", func(t *testing.T) {
		inj := newTestInjector(t, nil)
		err := inj.Inject(&OuterUnknown{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "test-unregistered")
	})

	t.Run("直接使用定义注入", func(t *testing.T) {
		inj := newTestInjector(t, map[string]string{
			"Inner.label":     "direct",
			"Palette.primary": "red",
		})
		var in Inner
		require.NoError(t, inj.InjectWithDefinition("test-inner", &in))
		assert.Equal(t, Inner{Name: "direct", Color: "red"}, in)
		assert.Error(t, inj.InjectWithDefinition("test-missing", &in))
	})
}
