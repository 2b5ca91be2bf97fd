package fileutils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomicSameDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dst := filepath.Join(dir, "out", "records.tsv")

	err := WriteFileAtomicSameDir(dst, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	require.NoError(t, err)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	// A failing writer leaves the previous content and no temp files behind.
	err = WriteFileAtomicSameDir(dst, 0o644, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("boom")
	})
	require.Error(t, err)

	b, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	ents, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	for _, e := range ents {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp_talklog_"), "leftover temp file %s", e.Name())
	}
}

func TestEnsureWritable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "pairs.tsv")

	require.NoError(t, EnsureWritable(p, false), "missing file is writable")

	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	require.Error(t, EnsureWritable(p, false))
	require.NoError(t, EnsureWritable(p, true))
	require.Error(t, EnsureWritable("", true))
}

func TestTruncate_CountsRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "こんに…", Truncate("  こんにちは ", 3))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestWriteJSONFileAtomic(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, WriteJSONFileAtomic(p, map[string]int{"a": 1}, false))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(b))
	assert.True(t, FileExists(p))
}
