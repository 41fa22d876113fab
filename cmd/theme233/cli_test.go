package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOutput(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTheme(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "base.properties")
	require.NoError(t, os.WriteFile(base, []byte("*.foreground=#000000\nDialog.title=Hello {user}\nuser=World\n"), 0644))
	extra := filepath.Join(dir, "extra.yaml")
	require.NoError(t, os.WriteFile(extra, []byte("user: Gopher\nbroken: \"{nope}\"\n"), 0644))
	return dir, base
}

func TestGet(t *testing.T) {
	_, base := writeTheme(t)
	out, err := run(t, "get", "-f", base, "Dialog.title")
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n", out)

	out, err = run(t, "get", "-f", base, "Dialog.title", "user")
	require.NoError(t, err)
	assert.Equal(t, "Dialog.title=Hello World\nuser=World\n", out)

	_, err = run(t, "get", "-f", base, "missing")
	assert.Error(t, err)
}

func TestDirMergesInPathOrder(t *testing.T) {
	dir, _ := writeTheme(t)
	out, err := run(t, "get", "--dir", dir, "Dialog.title")
	require.NoError(t, err)
	assert.Equal(t, "Hello Gopher\n", out)
}

func TestDirFromEnvironment(t *testing.T) {
	dir, _ := writeTheme(t)
	t.Setenv(DirEnv, dir)
	out, err := run(t, "keys", "--prefix", "Dialog.")
	require.NoError(t, err)
	assert.Equal(t, "Dialog.title\n", out)
}

func TestCheck(t *testing.T) {
	dir, base := writeTheme(t)
	out, err := run(t, "check", "-f", base)
	require.NoError(t, err)
	assert.Contains(t, out, "3 个资源，0 个错误")

	out, err = run(t, "check", "--dir", dir, "--metrics")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL broken")
	assert.Contains(t, out, "converter.cache.hit")
}

func TestNoSources(t *testing.T) {
	t.Setenv(DirEnv, "")
	_, err := run(t, "keys")
	assert.Error(t, err)
}
