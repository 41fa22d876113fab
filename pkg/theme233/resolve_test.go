package theme233

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/neko233-com/theme233-go/pkg/theme233/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetValue(t *testing.T) {
	inj := newTestInjector(t, map[string]string{
		"plain":      "value",
		"X":          "foo {Y} bar",
		"Y":          "baz",
		"chain":      "{b}-{c}",
		"b":          "{c}",
		"c":          "1",
		"escaped":    `\{literal\}`,
		"backslash":  `a\b`,
		"double":     `a\\b`,
		"trailing":   `abc\`,
		"stray":      "a}b",
		"open":       "x{abc",
		"restart":    "{zz{Y}",
		"escapedRef": `{Y}\{Y\}`,
		"a}b":        "brace",
		"braceInRef": `<{a\}b}>`,
	})

	cases := map[string]string{
		"plain":      "value",
		"X":          "foo baz bar",
		"chain":      "1-1",
		"escaped":    "{literal}",
		"backslash":  `a\b`,
		"double":     `a\b`,
		"trailing":   "abc",
		"stray":      "ab",
		"open":       "xabc",
		"restart":    "baz",
		"escapedRef": "baz{Y}",
		"braceInRef": "<brace>",
	}
	for key, want := range cases {
		t.Run(key, func(t *testing.T) {
			got, found, err := inj.GetValue(key)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, want, got)
		})
	}
}

func TestGetValue_MissingKey(t *testing.T) {
	inj := newTestInjector(t, nil)
	v, found, err := inj.GetValue("nothing")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v)
}

func TestGetValue_MissingReference(t *testing.T) {
	inj := newTestInjector(t, map[string]string{"a": "x {nope} y"})
	_, _, err := inj.GetValue("a")
	require.Error(t, err)

	var lookup *LookupError
	require.True(t, errors.As(err, &lookup))
	assert.Equal(t, []string{"nope"}, lookup.Attempted)
	assert.Contains(t, err.Error(), "a")
}

func TestGetValue_Cycle(t *testing.T) {
	inj := newTestInjector(t, map[string]string{
		"a":    "{b}",
		"b":    "{a}",
		"self": "x{self}",
	})

	_, _, err := inj.GetValue("a")
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, "a", cycle.Key)

	_, _, err = inj.GetValue("self")
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, "self", cycle.Key)
}

func TestGetValue_ConcurrentDiamond(t *testing.T) {
	inj := newTestInjector(t, map[string]string{
		"top":   "{left}|{right}",
		"left":  "{leaf}",
		"right": "{leaf}",
		"leaf":  "v",
	})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := inj.GetValue("top")
			if err == nil && v != "v|v" {
				err = errors.New("unexpected value " + v)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestGetValue_Properties(t *testing.T) {
	s := store.NewMapStore()
	inj := Get(t.Name()).SetStore(s)
	t.Cleanup(inj.Dispose)

	noSpecials := gen.AlphaString().SuchThat(func(v string) bool {
		return !strings.ContainsAny(v, `{}\`)
	})

	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	properties.Property("没有特殊字符的值原样返回", prop.ForAll(
		func(v string) bool {
			s.Put("k", v)
			got, found, err := inj.GetValue("k")
			return err == nil && found && got == v
		},
		noSpecials,
	))
	properties.Property("转义的括号输出字面括号", prop.ForAll(
		func(v string) bool {
			s.Put("k", `\{`+v+`\}`)
			got, _, err := inj.GetValue("k")
			return err == nil && got == "{"+v+"}"
		},
		noSpecials,
	))
	properties.Property("引用展开为被引用的值", prop.ForAll(
		func(v string) bool {
			s.Put("target", v)
			s.Put("k", "<{target}>")
			got, _, err := inj.GetValue("k")
			return err == nil && got == "<"+v+">"
		},
		noSpecials,
	))
	properties.TestingRun(t)
}
