// Package coordinator decides, per run, whether a cached result is replayed,
// the previously failed checks are rerun, or the whole suite runs, and
// persists the outcome when the run completes.
package coordinator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/genomics-tools/datacheck/internal/cache"
	"github.com/genomics-tools/datacheck/internal/checks"
	"github.com/genomics-tools/datacheck/internal/codes"
	"github.com/genomics-tools/datacheck/internal/fingerprint"
	"github.com/genomics-tools/datacheck/internal/report"
	"github.com/genomics-tools/datacheck/internal/runner"
)

// State is a step of the coordinator's run
type State int

const (
	StateStart State = iota
	StateShortCircuited
	StateRestricted
	StateFull
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateShortCircuited:
		return "short-circuited"
	case StateRestricted:
		return "restricted"
	case StateFull:
		return "full"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a coordinator
type Options struct {
	// Input selects the file or database under test
	Input fingerprint.Input

	// Source is the open database in database mode
	Source fingerprint.DataSource

	// Store persists results; unused when NoCache is set
	Store *cache.Store

	// Aggregator collects the outcomes of the run
	Aggregator *report.Aggregator

	// Out receives the console summary or the replayed report
	Out io.Writer

	Logger log.Logger

	// NoCache bypasses the store and always runs the full suite
	NoCache bool

	// LoadResults replays the stored report without running checks
	LoadResults bool
}

// Coordinator implements runner.Lifecycle on top of the cache store
type Coordinator struct {
	opts   Options
	logger log.Logger

	state    State
	slot     *cache.Slot
	locked   bool
	replayed bool
	pending  bool
}

var _ runner.Lifecycle = (*Coordinator)(nil)

// New validates opts and returns a coordinator in StateStart
func New(opts Options) (*Coordinator, error) {
	if opts.NoCache && opts.LoadResults {
		return nil, fmt.Errorf("%w: --load-test-results requires the result cache", codes.ErrConfiguration)
	}

	if !opts.NoCache && opts.Store == nil {
		return nil, fmt.Errorf("%w: no cache store configured", codes.ErrConfiguration)
	}

	if opts.Aggregator == nil {
		opts.Aggregator = report.NewAggregator(nil)
	}

	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &Coordinator{opts: opts, logger: logger, state: StateStart}, nil
}

// State returns the current state
func (c *Coordinator) State() State {
	return c.state
}

// Slot returns the located cache slot, nil before OnStart or without caching
func (c *Coordinator) Slot() *cache.Slot {
	return c.slot
}

// OnStart resolves the input fingerprint and plans the run
func (c *Coordinator) OnStart(ctx context.Context, available []string) (runner.Plan, error) {
	if c.state != StateStart {
		return runner.Plan{}, fmt.Errorf("run already started (state %s)", c.state)
	}

	fp, err := fingerprint.Resolve(ctx, c.opts.Input, c.opts.Source)
	if err != nil {
		return runner.Plan{}, err
	}

	level.Debug(c.logger).Log("msg", "resolved fingerprint", "key", fp.String())

	if c.opts.NoCache {
		level.Info(c.logger).Log("msg", "result cache disabled, running all checks")
		c.state = StateFull
		return runner.Plan{Mode: runner.ModeFull}, nil
	}

	slot, err := c.opts.Store.Locate(fp)
	if err != nil {
		return runner.Plan{}, err
	}
	c.slot = slot

	if c.opts.LoadResults {
		return c.loadResults(ctx)
	}

	if ok, err := c.tryReplay(ctx, true); err != nil || ok {
		return runner.Plan{Mode: runner.ModeShortCircuit}, err
	}

	// Hold the slot from here until the outcome is finalized
	if err := slot.Lock(ctx); err != nil {
		return runner.Plan{}, err
	}
	c.locked = true

	// Another run may have finalized the slot while we waited
	if ok, err := c.tryReplay(ctx, false); err != nil || ok {
		c.unlock()
		return runner.Plan{Mode: runner.ModeShortCircuit}, err
	}

	if pending, ok := c.opts.Store.LoadPendingFailures(slot); ok {
		selected := make(map[string]bool)
		for _, id := range available {
			if pending.Has(id) {
				selected[id] = true
			}
		}

		if len(selected) > 0 {
			level.Info(c.logger).Log("msg", "rerunning previously failed checks", "checks", len(selected), "of", len(available))
			c.state = StateRestricted
			return runner.Plan{Mode: runner.ModeRestricted, Selected: selected}, nil
		}

		level.Info(c.logger).Log("msg", "previous failures do not match this suite, running all checks")
	}

	c.state = StateFull
	return runner.Plan{Mode: runner.ModeFull}, nil
}

// tryReplay writes the stored report to the output if the slot is finalized-clean.
// shared takes the slot's read lock around the probe.
func (c *Coordinator) tryReplay(ctx context.Context, shared bool) (bool, error) {
	if shared {
		if err := c.slot.RLock(ctx); err != nil {
			return false, err
		}
		defer c.slot.Unlock()
	}

	stored, ok := c.opts.Store.TryShortCircuit(c.slot)
	if !ok {
		return false, nil
	}

	level.Info(c.logger).Log("msg", "input unchanged since last clean run, replaying results", "slot", c.slot.Key)

	c.state = StateShortCircuited
	c.replayed = true

	if _, err := io.WriteString(c.opts.Out, stored); err != nil {
		return true, fmt.Errorf("failed to write results: %w", err)
	}

	return true, nil
}

func (c *Coordinator) loadResults(ctx context.Context) (runner.Plan, error) {
	if err := c.slot.RLock(ctx); err != nil {
		return runner.Plan{}, err
	}
	defer c.slot.Unlock()

	stored, err := c.opts.Store.LoadReport(c.slot)
	if err != nil {
		return runner.Plan{}, err
	}

	_, c.pending = c.opts.Store.LoadPendingFailures(c.slot)
	c.state = StateShortCircuited
	c.replayed = true

	if _, err := io.WriteString(c.opts.Out, stored); err != nil {
		return runner.Plan{}, fmt.Errorf("failed to write results: %w", err)
	}

	return runner.Plan{Mode: runner.ModeShortCircuit}, nil
}

// OnCheckResult records one check outcome and its warnings
func (c *Coordinator) OnCheckResult(res checks.Result) {
	for _, w := range res.Warnings {
		c.opts.Aggregator.RecordWarning(report.FormatWarning(res.ID, w))
	}

	c.opts.Aggregator.RecordOutcome(res.ID, res.Verdict, res.Message)
}

// OnFinish persists the outcome and prints the console summary.
// Persistence failures are logged; the summary is always printed.
func (c *Coordinator) OnFinish(ctx context.Context) error {
	switch c.state {
	case StateShortCircuited:
		c.state = StateFinalized
		return nil
	case StateRestricted, StateFull:
	default:
		return fmt.Errorf("cannot finish run in state %s", c.state)
	}

	defer c.unlock()

	if !c.opts.NoCache {
		result := cache.RunResult{
			Report: c.opts.Aggregator.RenderFile(),
			Failed: c.opts.Aggregator.Failed(),
		}

		if err := c.opts.Store.Finalize(c.slot, result); err != nil {
			level.Error(c.logger).Log("msg", "failed to store results", "slot", c.slot.Dir, "err", err)
		} else {
			level.Debug(c.logger).Log("msg", "stored results", "report", c.slot.ReportPath, "failures", len(result.Failed))
		}
	}

	c.state = StateFinalized

	if _, err := io.WriteString(c.opts.Out, c.opts.Aggregator.RenderConsole()); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	return nil
}

// Failed reports whether the run, or the replayed run, had failing checks
func (c *Coordinator) Failed() bool {
	if c.replayed {
		return c.pending
	}

	return len(c.opts.Aggregator.Failed()) > 0
}

// Close releases the slot lock if a run was abandoned before OnFinish
func (c *Coordinator) Close() error {
	c.unlock()
	return nil
}

func (c *Coordinator) unlock() {
	if !c.locked {
		return
	}

	if err := c.slot.Unlock(); err != nil {
		level.Warn(c.logger).Log("msg", "failed to release cache slot", "err", err)
	}
	c.locked = false
}
