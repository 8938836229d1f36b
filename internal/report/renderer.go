package report

import (
	"strings"

	"github.com/fatih/color"
)

// DefaultWidth is used when the terminal width is unknown
const DefaultWidth = 80

// Renderer holds the presentation settings of a session.
// It is built once at startup and handed to the aggregator.
type Renderer struct {
	// Width is the console width separator lines are sized to
	Width int

	// NoWarnings omits the warnings section from every rendering
	NoWarnings bool

	warn *color.Color
	fail *color.Color
	pass *color.Color
}

// NewRenderer creates a renderer; useColor toggles ANSI colors on the console
func NewRenderer(width int, useColor, noWarnings bool) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}

	r := &Renderer{
		Width:      width,
		NoWarnings: noWarnings,
		warn:       color.New(color.FgYellow),
		fail:       color.New(color.FgRed),
		pass:       color.New(color.FgGreen),
	}

	for _, c := range []*color.Color{r.warn, r.fail, r.pass} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return r
}

// Sep renders title centred in a line of '=' the width of the console
func (r *Renderer) Sep(title string) string {
	const fill = "="

	if title == "" {
		return strings.Repeat(fill, r.Width)
	}

	n := (r.Width - len(title) - 2) / 2
	if n < 1 {
		n = 1
	}

	pad := strings.Repeat(fill, n)
	line := pad + " " + title + " " + pad

	if len(line)+len(fill) <= r.Width {
		line += fill
	}

	return line
}
