// Package runner executes a suite of checks and reports each outcome to a
// Lifecycle, which decides up front which checks run at all.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/genomics-tools/datacheck/internal/checks"
)

// Mode is how much of the suite a run executes
type Mode int

const (
	// ModeFull runs every check
	ModeFull Mode = iota

	// ModeRestricted runs only the selected checks
	ModeRestricted

	// ModeShortCircuit runs nothing
	ModeShortCircuit
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeRestricted:
		return "restricted"
	case ModeShortCircuit:
		return "short-circuit"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Plan is the decision returned from OnStart
type Plan struct {
	Mode Mode

	// Selected holds the check identifiers to run in ModeRestricted
	Selected map[string]bool
}

// Includes reports whether the check id runs under the plan
func (p Plan) Includes(id string) bool {
	switch p.Mode {
	case ModeFull:
		return true
	case ModeRestricted:
		return p.Selected[id]
	default:
		return false
	}
}

// Lifecycle receives the events of a run in order: OnStart once, OnCheckResult
// once per check, then OnFinish once unless the run was cancelled.
type Lifecycle interface {
	OnStart(ctx context.Context, available []string) (Plan, error)
	OnCheckResult(result checks.Result)
	OnFinish(ctx context.Context) error
}

// Summary describes a completed run
type Summary struct {
	Plan     Plan
	Executed int
	Skipped  int
	Duration time.Duration
}

// Runner drives one run of a suite
type Runner struct {
	checks    []checks.Check
	env       *checks.Env
	lifecycle Lifecycle
	logger    log.Logger
}

// New creates a runner for the given checks
func New(cs []checks.Check, env *checks.Env, lc Lifecycle, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	if env == nil {
		env = &checks.Env{}
	}

	return &Runner{checks: cs, env: env, lifecycle: lc, logger: logger}
}

// Run executes the planned checks sequentially.
// A cancelled context stops the run before OnFinish and returns the context error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	available := make([]string, len(r.checks))
	for i, c := range r.checks {
		available[i] = c.ID()
	}

	plan, err := r.lifecycle.OnStart(ctx, available)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Plan: plan}
	level.Debug(r.logger).Log("msg", "starting run", "mode", plan.Mode, "checks", len(r.checks))

	if plan.Mode != ModeShortCircuit {
		for _, c := range r.checks {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			if !plan.Includes(c.ID()) {
				summary.Skipped++
				r.lifecycle.OnCheckResult(checks.Result{ID: c.ID(), Verdict: checks.Skipped})
				continue
			}

			res := r.execute(ctx, c)

			// Outcomes observed after cancellation are not trustworthy
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			summary.Executed++
			r.lifecycle.OnCheckResult(res)
		}
	}

	summary.Duration = time.Since(start)

	if err := r.lifecycle.OnFinish(ctx); err != nil {
		return summary, err
	}

	return summary, nil
}

func (r *Runner) execute(ctx context.Context, c checks.Check) (res checks.Result) {
	res.ID = c.ID()
	level.Debug(r.logger).Log("msg", "running check", "check", res.ID)

	defer func() {
		if p := recover(); p != nil {
			level.Error(r.logger).Log("msg", "check panicked", "check", res.ID, "panic", p)
			res.Verdict = checks.Failed
			res.Message = fmt.Sprintf("panic: %v", p)
		}
	}()

	warn := func(msg string) {
		res.Warnings = append(res.Warnings, msg)
	}

	if err := c.Run(ctx, r.env, warn); err != nil {
		res.Verdict = checks.Failed
		res.Message = err.Error()
		return res
	}

	res.Verdict = checks.Passed
	return res
}
