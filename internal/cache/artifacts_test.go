package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slot", "seq_results.txt")

	require.NoError(t, writeArtifact(path, []byte("first")))
	require.NoError(t, writeArtifact(path, []byte("second")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	// No temporary files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRemoveArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")

	assert.NoError(t, removeArtifact(path), "missing file is not an error")

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	require.NoError(t, removeArtifact(path))
	assert.NoFileExists(t, path)
}

func TestArtifactExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.txt")

	assert.False(t, artifactExists(path))
	assert.False(t, artifactExists(dir), "directories are not artifacts")

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.True(t, artifactExists(path))
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "one"), []byte("12345"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "two"), []byte("123"), 0o644))

	assert.Equal(t, int64(8), dirSize(dir))
	assert.Equal(t, int64(0), dirSize(filepath.Join(dir, "missing")))
}

func TestPendingSet(t *testing.T) {
	set := NewPendingSet("vcf::b", "vcf::a", "vcf::b")

	assert.True(t, set.Has("vcf::a"))
	assert.False(t, set.Has("vcf::c"))
	assert.Equal(t, []string{"vcf::a", "vcf::b"}, set.IDs())

	data, err := encodePending(set)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 1`)

	decoded, err := decodePending(data)
	require.NoError(t, err)
	assert.Equal(t, set, decoded)
}

func TestDecodePending_DropsFalseMarkers(t *testing.T) {
	set, err := decodePending([]byte(`{"version":1,"failed":{"fasta::a":true,"fasta::b":false,"":true}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"fasta::a"}, set.IDs())
}
