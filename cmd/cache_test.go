package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomics-tools/datacheck/internal/codes"
	"github.com/genomics-tools/datacheck/internal/fingerprint"
)

func TestCacheCommands(t *testing.T) {
	cacheDir := setupCLI(t)

	empty := execute(t, runCacheList, "--cache-dir", cacheDir)
	require.NoError(t, empty.err)
	assert.Contains(t, empty.stdout, "No cached results")

	clean := writeInput(t, "clean.fa", ">seq\nACGT\n")
	broken := writeInput(t, "broken.fa", ">seq\nAC1T\n")

	require.NoError(t, execute(t, runChecks, "--file", clean, "--cache-dir", cacheDir).err)
	require.Error(t, execute(t, runChecks, "--file", broken, "--cache-dir", cacheDir).err)

	list := execute(t, runCacheList, "--cache-dir", cacheDir)
	require.NoError(t, list.err)
	assert.Contains(t, list.stdout, "STATUS")
	assert.Contains(t, list.stdout, clean)
	assert.Contains(t, list.stdout, broken)
	assert.Contains(t, list.stdout, "failed")

	fp, err := fingerprint.File(broken)
	require.NoError(t, err)

	show := execute(t, runCacheShow, "--cache-dir", cacheDir, fp.Digest)
	require.NoError(t, show.err)
	assert.Contains(t, show.stdout, "Status: failed")
	assert.Contains(t, show.stdout, "Input: "+broken)
	assert.Contains(t, show.stdout, "  fasta::check_allowed_character\n")

	missing := execute(t, runCacheShow, "--cache-dir", cacheDir, "ffffffffffffffff")
	assert.ErrorIs(t, missing.err, codes.ErrNotFound)

	stats := execute(t, runCacheStats, "--cache-dir", cacheDir)
	require.NoError(t, stats.err)
	assert.Contains(t, stats.stdout, "Entries: 2")

	notes := filepath.Join(cacheDir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("keep"), 0o644))

	cleared := execute(t, runCacheClear, "--cache-dir", cacheDir)
	require.NoError(t, cleared.err)
	assert.Contains(t, cleared.stdout, "Cleared")
	assert.FileExists(t, notes, "files outside the slots tree survive a clear")

	stats = execute(t, runCacheStats, "--cache-dir", cacheDir)
	require.NoError(t, stats.err)
	assert.Contains(t, stats.stdout, "Entries: 0")
}
