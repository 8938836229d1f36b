// Package checks defines the check contract and the built-in check suites.
//
// A check is a function that returns nil to pass, an error to fail with the
// error text as its message, and may call warn any number of times to raise
// non-fatal warnings. Checks are grouped into suites in a Registry built at
// startup.
package checks

import (
	"context"
	"fmt"
	"sort"

	"github.com/genomics-tools/datacheck/internal/codes"
	"github.com/genomics-tools/datacheck/internal/source"
	"github.com/genomics-tools/datacheck/internal/utils"
)

// Verdict is the outcome of a single check
type Verdict int

const (
	Passed Verdict = iota
	Failed
	Skipped
)

func (v Verdict) String() string {
	switch v {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Result is what running a check produced
type Result struct {
	ID       string
	Verdict  Verdict
	Message  string
	Warnings []string
}

// Env is the input handed to every check
type Env struct {
	// File is the absolute path of the file under test (file mode)
	File string

	// Database is the URL of the database under test (database mode)
	Database string

	// Source is the open database (database mode)
	Source *source.Source

	// MaxLineLength bounds line length checks
	MaxLineLength int
}

// Warn raises a non-fatal warning from a running check
type Warn func(message string)

// Func is the body of a check
type Func func(ctx context.Context, env *Env, warn Warn) error

// Check is a named check within a suite
type Check struct {
	Suite string
	Name  string
	Run   Func
}

// ID returns the check identifier
func (c Check) ID() string {
	return utils.CheckID(c.Suite, c.Name)
}

// Registry maps suite names to their checks in registration order
type Registry struct {
	suites map[string][]Check
	ids    map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		suites: make(map[string][]Check),
		ids:    make(map[string]bool),
	}
}

// Register adds checks to their suites; identifiers must be unique
func (r *Registry) Register(checks ...Check) error {
	for _, c := range checks {
		if c.Suite == "" || c.Name == "" || c.Run == nil {
			return fmt.Errorf("invalid check %q: suite, name and function are required", c.ID())
		}

		if r.ids[c.ID()] {
			return fmt.Errorf("duplicate check %q", c.ID())
		}

		r.ids[c.ID()] = true
		r.suites[c.Suite] = append(r.suites[c.Suite], c)
	}

	return nil
}

// Suite returns the checks of the named suite
func (r *Registry) Suite(name string) ([]Check, error) {
	checks, ok := r.suites[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown check suite %q (available: %v)", codes.ErrConfiguration, name, r.Suites())
	}

	return append([]Check(nil), checks...), nil
}

// Suites lists the registered suite names in sorted order
func (r *Registry) Suites() []string {
	names := make([]string, 0, len(r.suites))
	for name := range r.suites {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Default returns a registry holding the built-in suites
func Default() *Registry {
	r := NewRegistry()

	for _, suite := range [][]Check{fastaChecks(), vcfChecks(), metadataChecks()} {
		if err := r.Register(suite...); err != nil {
			panic(err)
		}
	}

	return r
}
