package llio

import (
	"bytes"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const module = `define i32 @answer() {
entry:
  ret i32 42
}
`

func TestLoadModule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answer.ll")
	require.NoError(t, ioutil.WriteFile(path, []byte(module), 0644))

	m, err := LoadModule(path)
	require.NoError(t, err)
	require.Len(t, m.Funcs, 1)
	assert.Equal(t, "answer", m.Funcs[0].Name())
}

func TestLoadModuleErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "missing.ll")
		_, err := LoadModule(path)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, path, parseErr.Path)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("malformed IR", func(t *testing.T) {
		_, err := ParseModule("bad.ll", strings.NewReader("define i32 @f( {"))

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "bad.ll", parseErr.Path)
	})

	t.Run("bitcode", func(t *testing.T) {
		buff := append([]byte{'B', 'C', 0xC0, 0xDE}, 0, 0, 0, 0)
		_, err := ParseModule("-", bytes.NewReader(buff))

		assert.ErrorIs(t, err, ErrBitcode)
		assert.Contains(t, err.Error(), "<stdin>")
	})
}

func TestWriteModule(t *testing.T) {
	m, err := ParseModule("answer.ll", strings.NewReader(module))
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "out.ll")
	require.NoError(t, ioutil.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, WriteModule(m, path))

	buff, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.String(), string(buff))

	// the temporary file was renamed away
	entries, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	finfo, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), finfo.Mode().Perm())
}

func TestWriteFileAtomicFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.ll")

	err := writeFileAtomic(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("write failed")
	})
	require.Error(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	entries, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
