package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteJSONAtomicCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents", "doc1", "analysis.json")
	require.NoError(t, WriteJSONAtomic(path, map[string]string{"status": "success"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"status": "success"}`, string(data))
}

func TestWriteTextAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text.txt")
	require.NoError(t, WriteTextAtomic(path, "extracted text"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "extracted text", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
