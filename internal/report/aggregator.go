// Package report collects check outcomes and renders the run summary.
package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/genomics-tools/datacheck/internal/checks"
	"github.com/genomics-tools/datacheck/internal/utils"
)

// Counts tallies the outcomes of a run
type Counts struct {
	Passed   int
	Failed   int
	Skipped  int
	Warnings int
}

// Aggregator accumulates the outcomes of one run in insertion order
type Aggregator struct {
	renderer *Renderer

	warnings  []string
	failures  []string
	passes    []string
	failedIDs []string
	skipped   int
}

// NewAggregator creates an empty aggregator rendering through r
func NewAggregator(r *Renderer) *Aggregator {
	if r == nil {
		r = NewRenderer(DefaultWidth, false, false)
	}

	return &Aggregator{renderer: r}
}

// FormatWarning renders a warning raised by the check id
func FormatWarning(id, message string) string {
	suite, name := utils.SplitCheckID(id)
	return fmt.Sprintf("Warning::%s::%s: %s", suite, name, message)
}

// RecordOutcome records the verdict of check id
func (a *Aggregator) RecordOutcome(id string, verdict checks.Verdict, message string) {
	suite, name := utils.SplitCheckID(id)

	switch verdict {
	case checks.Passed:
		a.passes = append(a.passes, fmt.Sprintf("Pass::%s::%s", suite, name))
	case checks.Failed:
		a.failures = append(a.failures, fmt.Sprintf("FAILED::%s::%s", name, message))
		a.failedIDs = append(a.failedIDs, id)
	case checks.Skipped:
		a.skipped++
	}
}

// RecordWarning records a formatted warning line
func (a *Aggregator) RecordWarning(message string) {
	a.warnings = append(a.warnings, message)
}

// Failed returns the identifiers of failed checks in the order they failed
func (a *Aggregator) Failed() []string {
	return append([]string(nil), a.failedIDs...)
}

func (a *Aggregator) Counts() Counts {
	return Counts{
		Passed:   len(a.passes),
		Failed:   len(a.failures),
		Skipped:  a.skipped,
		Warnings: len(a.warnings),
	}
}

type section struct {
	title    string
	singular string
	plural   string
	entries  []string
	color    *color.Color
}

func (a *Aggregator) sections() []section {
	var out []section

	if !a.renderer.NoWarnings {
		out = append(out, section{"Warnings summary", "warning", "warnings", a.warnings, a.renderer.warn})
	}

	return append(out,
		section{"Failures summary", "failure", "failures", a.failures, a.renderer.fail},
		section{"Passed summary", "passed test", "passed tests", a.passes, a.renderer.pass},
	)
}

func (s section) footer() string {
	if len(s.entries) == 1 {
		return "There is 1 " + s.singular
	}

	return fmt.Sprintf("There are %d %s", len(s.entries), s.plural)
}

// RenderConsole renders the summary for the terminal
func (a *Aggregator) RenderConsole() string {
	var b strings.Builder

	for _, s := range a.sections() {
		if len(s.entries) == 0 {
			continue
		}

		b.WriteString(s.color.Sprint(a.renderer.Sep(s.title)) + "\n")
		for _, e := range s.entries {
			b.WriteString(s.color.Sprint(e) + "\n")
		}
		b.WriteString(s.color.Sprint(a.renderer.Sep(s.footer())) + "\n")
	}

	return b.String()
}

// RenderFile renders the summary as plain text for the stored report
func (a *Aggregator) RenderFile() string {
	var b strings.Builder

	for _, s := range a.sections() {
		if len(s.entries) == 0 {
			continue
		}

		b.WriteString(s.title + "\n")
		for _, e := range s.entries {
			b.WriteString(e + "\n")
		}
		b.WriteString(s.footer() + "\n")
	}

	return b.String()
}
