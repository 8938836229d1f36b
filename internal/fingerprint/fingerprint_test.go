package fingerprint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomics-tools/datacheck/internal/codes"
)

type fakeSource struct {
	server string
	name   string
	last   time.Time
	err    error
}

func (f *fakeSource) Server() string { return f.server }
func (f *fakeSource) Name() string   { return f.name }
func (f *fakeSource) LastModified(context.Context) (time.Time, error) {
	return f.last, f.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.fa", ">seq1\nACGT\n")
	b := writeFile(t, dir, "b.fa", ">seq1\nACGT\n")

	fpA, err := File(a)
	require.NoError(t, err)
	fpA2, err := File(a)
	require.NoError(t, err)
	fpB, err := File(b)
	require.NoError(t, err)

	assert.Equal(t, KindFile, fpA.Kind)
	assert.Len(t, fpA.Digest, 16)
	assert.Equal(t, fpA.Digest, fpA2.Digest, "Hash should be consistent")
	assert.Equal(t, fpA.Digest, fpB.Digest, "Identical content should hash identically")
	assert.Equal(t, a, fpA.Path)
	assert.Equal(t, fpA.Digest, fpA.String())
}

func TestFile_SingleByteChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seq.fa", ">seq1\nACGT\n")

	before, err := File(path)
	require.NoError(t, err)

	writeFile(t, dir, "seq.fa", ">seq1\nACGA\n")

	after, err := File(path)
	require.NoError(t, err)

	assert.NotEqual(t, before.Digest, after.Digest, "Different content should produce different hash")
}

func TestFile_HashesWholeContent(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, 4<<20)
	for i := range big {
		big[i] = 'A'
	}

	path := filepath.Join(dir, "big.fa")
	require.NoError(t, os.WriteFile(path, big, 0o644))
	first, err := File(path)
	require.NoError(t, err)

	big[len(big)-1] = 'C'
	require.NoError(t, os.WriteFile(path, big, 0o644))
	second, err := File(path)
	require.NoError(t, err)

	assert.NotEqual(t, first.Digest, second.Digest, "A change in the last byte must change the digest")
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.fa"))
	require.Error(t, err)
	assert.ErrorIs(t, err, codes.ErrUnavailableInput)
}

func TestDatabase(t *testing.T) {
	src := &fakeSource{
		server: "mysql-ens-meta:4483",
		name:   "ensembl_genome_metadata",
		last:   time.Date(2024, 3, 1, 12, 0, 5, 999, time.UTC),
	}

	fp, err := Database(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, KindDatabase, fp.Kind)
	assert.Equal(t, "mysql-ens-meta:4483/ensembl_genome_metadata/20240301120005", fp.String())
	assert.Equal(t, 0, fp.UpdatedAt.Nanosecond())
}

func TestDatabase_Unreachable(t *testing.T) {
	src := &fakeSource{err: errors.Join(codes.ErrUnavailableInput, errors.New("connection refused"))}

	_, err := Database(context.Background(), src)
	assert.ErrorIs(t, err, codes.ErrUnavailableInput)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seq.fa", ">seq1\nACGT\n")
	src := &fakeSource{server: "localhost", name: "meta", last: time.Unix(1700000000, 0)}

	tests := []struct {
		name     string
		input    Input
		ds       DataSource
		wantKind Kind
		wantErr  error
	}{
		{"file", Input{File: path}, nil, KindFile, nil},
		{"database", Input{Database: "sqlite:///meta.db"}, src, KindDatabase, nil},
		{"neither", Input{}, nil, "", codes.ErrConfiguration},
		{"both", Input{File: path, Database: "sqlite:///meta.db"}, src, "", codes.ErrConfiguration},
		{"database not open", Input{Database: "sqlite:///meta.db"}, nil, "", codes.ErrUnavailableInput},
		{"unreadable file", Input{File: filepath.Join(dir, "nope.fa")}, nil, "", codes.ErrUnavailableInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp, err := Resolve(context.Background(), tt.input, tt.ds)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, fp.Kind)
		})
	}
}
