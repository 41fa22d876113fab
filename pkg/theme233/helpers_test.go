package theme233

import (
	"testing"

	"github.com/neko233-com/theme233-go/pkg/theme233/store"
	"github.com/stretchr/testify/require"
)

// newTestInjector 每个测试使用以测试名命名的独立注入器
func newTestInjector(t *testing.T, values map[string]string) *Injector {
	t.Helper()
	inj := Get(t.Name())
	t.Cleanup(inj.Dispose)
	require.NoError(t, inj.Load(store.MapSource(values)))
	return inj
}

func mapSource(values map[string]string) store.Source {
	return store.MapSource(values)
}

func bytesSource(name, suffix, content string) (store.Source, error) {
	return store.Bytes(name, suffix, []byte(content))
}
