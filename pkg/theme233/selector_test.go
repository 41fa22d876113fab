package theme233

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locked struct {
	sync.Mutex
	Value string `theme233:""`
}

type middle struct {
	Base
	Middle string `theme233:"name=mid"`
}

type leaf struct {
	*middle
	Own    string `theme233:""`
	plain  string
	Hidden string `theme233:"-"`
}

func attributeNames(attrs []Attribute) []string {
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name)
	}
	return names
}

func TestAttributes(t *testing.T) {
	typ := reflect.TypeFor[leaf]()

	assert.Equal(t, []string{"Own"}, attributeNames(Attributes(typ, false)))

	attrs := Attributes(typ, true)
	assert.Equal(t, []string{"Own", "Middle", "Background"}, attributeNames(attrs))
	assert.Equal(t, []int{0, 0, 0}, attrs[2].Index)
	assert.Equal(t, reflect.TypeFor[Base](), attrs[2].Declaring)
	assert.Equal(t, "mid", attrs[1].tag.Name)

	all := selectAttributes(typ, false, true, true)
	assert.Equal(t, []string{"Own", "plain"}, attributeNames(all))

	assert.Equal(t, []string{"Value"}, attributeNames(Attributes(reflect.TypeFor[*locked](), true)))
	assert.Nil(t, Attributes(reflect.TypeFor[int](), true))
}

type stoppedInner struct {
	Inner string `theme233:""`
}

type stoppedOuter struct {
	stoppedInner
	Own string `theme233:""`
}

// useStops 在测试期间替换全局停止命名空间
func useStops(t *testing.T, patterns ...string) {
	t.Helper()
	saved := stops
	stops = &stopSet{memo: map[string]bool{}}
	AddStopNamespaces(patterns...)
	t.Cleanup(func() {
		stops = saved
		attributeCacheMu.Lock()
		attributeCache = map[selectorKey][]Attribute{}
		attributeCacheMu.Unlock()
	})
}

func TestAttributes_StopNamespaces(t *testing.T) {
	typ := reflect.TypeFor[stoppedOuter]()
	useStops(t)
	assert.Equal(t, []string{"Own", "Inner"}, attributeNames(Attributes(typ, true)))

	AddStopNamespaces(reflect.TypeFor[stoppedInner]().PkgPath())
	assert.Equal(t, []string{"Own"}, attributeNames(Attributes(typ, true)))
	assert.Equal(t, []string{"Own", "Inner"}, attributeNames(selectAttributes(typ, true, true, false)))

	inj := newTestInjector(t, map[string]string{"*.Own": "own", "*.Inner": "inner"})
	var v stoppedOuter
	require.NoError(t, inj.InjectHierarchy(true, &v))
	assert.Equal(t, "own", v.Own)
	assert.Empty(t, v.Inner)
}

func TestMatchNamespace(t *testing.T) {
	cases := []struct {
		pattern, pkg string
		want         bool
	}{
		{"image/*", "image", true},
		{"image/*", "image/color", true},
		{"image/...", "image/color/palette", true},
		{"image/*", "imagex", false},
		{"image", "image", true},
		{"image", "image/color", false},
		{"*", "anything/at/all", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, matchNamespace(c.pattern, c.pkg), "%s ~ %s", c.pattern, c.pkg)
	}
}

func TestStopSet_Memo(t *testing.T) {
	s := &stopSet{patterns: []string{"example.com/ui/*"}, memo: map[string]bool{}}
	assert.True(t, s.match("example.com/ui/widgets"))
	assert.False(t, s.match("example.com/app"))
	assert.Len(t, s.memo, 2)
	assert.True(t, s.memo["example.com/ui/widgets"])
}

func TestParseTag(t *testing.T) {
	tag, err := parseTag("key=A.b, name=c ,converter=hexcolor,definition=d")
	assert.NoError(t, err)
	assert.Equal(t, fieldTag{Key: "A.b", Name: "c", Converter: "hexcolor", Definition: "d"}, tag)

	tag, err = parseTag("")
	assert.NoError(t, err)
	assert.Equal(t, fieldTag{}, tag)

	_, err = parseTag("name")
	assert.Error(t, err)
}
