package logging

import (
	"bytes"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
)

func TestNew_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	level.Debug(logger).Log("msg", "hidden")
	level.Info(logger).Log("msg", "created cache directory", "dir", "/tmp/dc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, `msg="created cache directory"`)
	assert.Contains(t, out, "dir=/tmp/dc")
	assert.Contains(t, out, "ts=")
}

func TestNew_VerboseAllowsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	level.Debug(logger).Log("msg", "fingerprint resolved")

	assert.Contains(t, buf.String(), "level=debug")
}
