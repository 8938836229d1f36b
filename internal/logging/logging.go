// Package logging builds the process logger: logfmt on the given writer,
// filtered to info level unless verbose output was requested.
package logging

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// New returns a leveled logfmt logger writing to w
func New(w io.Writer, verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	allow := level.AllowInfo()
	if verbose {
		allow = level.AllowDebug()
	}

	return level.NewFilter(logger, allow)
}
