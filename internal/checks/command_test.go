package checks

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomics-tools/datacheck/internal/config"
)

// mockCommander implements Commander interface for testing
type mockCommander struct {
	output []byte
	err    error
}

func (m *mockCommander) CombinedOutput() ([]byte, error) {
	return m.output, m.err
}

func TestNewCommandRunner(t *testing.T) {
	cr := NewCommandRunner()
	assert.NotNil(t, cr)
	assert.NotNil(t, cr.execCommand)
}

func TestCommandRunner_Checks(t *testing.T) {
	cr := NewCommandRunner()

	checks := cr.Checks([]config.CommandCheck{
		{Suite: "fasta", Name: "check_seqkit_stats", Path: "seqkit"},
		{Suite: "vcf", Name: "check_bcftools", Path: "bcftools"},
	})

	require.Len(t, checks, 2)
	assert.Equal(t, "fasta::check_seqkit_stats", checks[0].ID())
	assert.Equal(t, "vcf::check_bcftools", checks[1].ID())
}

func TestCommandRunner_ExpandsPlaceholders(t *testing.T) {
	cr := NewCommandRunner()

	var gotName string
	var gotArgs []string
	cr.execCommand = func(_ context.Context, name string, args ...string) Commander {
		gotName = name
		gotArgs = args
		return &mockCommander{}
	}

	checks := cr.Checks([]config.CommandCheck{
		{Suite: "fasta", Name: "check_seqkit_stats", Path: "seqkit", Args: []string{"stats", "{file}"}},
	})

	err := checks[0].Run(context.Background(), &Env{File: "/data/seq.fa"}, func(string) {})
	assert.NoError(t, err)
	assert.Equal(t, "seqkit", gotName)
	assert.Equal(t, []string{"stats", "/data/seq.fa"}, gotArgs)
}

func TestCommandRunner_NonExitError(t *testing.T) {
	cr := NewCommandRunner()

	cr.execCommand = func(context.Context, string, ...string) Commander {
		return &mockCommander{err: errors.New("executable file not found")}
	}

	checks := cr.Checks([]config.CommandCheck{{Suite: "fasta", Name: "check_missing", Path: "nope"}})

	err := checks[0].Run(context.Background(), &Env{}, func(string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run nope")
	assert.Contains(t, err.Error(), "executable file not found")
}

func TestCommandRunner_ExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	cr := NewCommandRunner()

	cr.execCommand = func(ctx context.Context, _ string, _ ...string) Commander {
		return exec.CommandContext(ctx, "sh", "-c", "echo checking; echo 2 records malformed; exit 3")
	}

	checks := cr.Checks([]config.CommandCheck{{Suite: "vcf", Name: "check_validator", Path: "vcf-validator"}})

	err := checks[0].Run(context.Background(), &Env{}, func(string) {})
	require.Error(t, err)
	assert.Equal(t, "vcf-validator exited with status 3: 2 records malformed", err.Error())
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "", lastLine(nil))
	assert.Equal(t, "last", lastLine([]byte("first\nlast\n\n")))
}
