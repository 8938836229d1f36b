package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomics-tools/datacheck/internal/codes"
)

func pass(context.Context, *Env, Warn) error { return nil }

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "passed", Passed.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "verdict(9)", Verdict(9).String())
}

func TestCheck_ID(t *testing.T) {
	c := Check{Suite: "fasta", Name: "check_line_length"}
	assert.Equal(t, "fasta::check_line_length", c.ID())
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		checks  []Check
		wantErr string
	}{
		{
			name:   "distinct checks",
			checks: []Check{{Suite: "s", Name: "a", Run: pass}, {Suite: "s", Name: "b", Run: pass}},
		},
		{
			name:    "duplicate identifier",
			checks:  []Check{{Suite: "s", Name: "a", Run: pass}, {Suite: "s", Name: "a", Run: pass}},
			wantErr: "duplicate check",
		},
		{
			name:    "missing function",
			checks:  []Check{{Suite: "s", Name: "a"}},
			wantErr: "invalid check",
		},
		{
			name:    "missing suite",
			checks:  []Check{{Name: "a", Run: pass}},
			wantErr: "invalid check",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.checks...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRegistry_SuiteKeepsOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(
		Check{Suite: "s", Name: "zeta", Run: pass},
		Check{Suite: "s", Name: "alpha", Run: pass},
		Check{Suite: "other", Name: "x", Run: pass},
	))

	checks, err := r.Suite("s")
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.Equal(t, "zeta", checks[0].Name)
	assert.Equal(t, "alpha", checks[1].Name)

	assert.Equal(t, []string{"other", "s"}, r.Suites())
}

func TestRegistry_UnknownSuite(t *testing.T) {
	_, err := NewRegistry().Suite("bam")
	require.Error(t, err)
	assert.ErrorIs(t, err, codes.ErrConfiguration)
}

func TestDefault(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{MetadataSuite, FastaSuite, VCFSuite}, r.Suites())

	fasta, err := r.Suite(FastaSuite)
	require.NoError(t, err)

	var ids []string
	for _, c := range fasta {
		ids = append(ids, c.ID())
	}

	assert.Equal(t, []string{
		"fasta::check_if_text_file",
		"fasta::check_line_length",
		"fasta::check_allowed_character",
		"fasta::check_ends_with_newline",
	}, ids)

	meta, err := r.Suite(MetadataSuite)
	require.NoError(t, err)
	assert.Len(t, meta, 6)
}
