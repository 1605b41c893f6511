// ABOUTME: Console output helpers with an optional ANSI color palette.
// ABOUTME: go-colorable enables escape sequences on Windows consoles; go-isatty turns color off for pipes.

package term

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Color is an ANSI SGR foreground sequence
type Color string

const (
	Reset  Color = "\x1b[0m"
	Red    Color = "\x1b[31m"
	Green  Color = "\x1b[32m"
	Yellow Color = "\x1b[33m"
)

// Palette colors the two roles used in output: errors and highlighted values.
type Palette struct {
	Enabled   bool
	Error     Color
	Highlight Color
	Fatal     Color
}

// NewPalette returns the default palette
func NewPalette(enabled bool) *Palette {
	return &Palette{
		Enabled:   enabled,
		Error:     Yellow,
		Highlight: Green,
		Fatal:     Red,
	}
}

func (p *Palette) wrap(c Color, s string) string {
	if p == nil || !p.Enabled {
		return s
	}
	return string(c) + s + string(Reset)
}

// Hi colors s as a highlighted value
func (p *Palette) Hi(s string) string { return p.wrap(p.Highlight, s) }

// Err colors s as an erroneous input
func (p *Palette) Err(s string) string { return p.wrap(p.Error, s) }

// FatalPrefix returns the prefix written before fatal messages
func (p *Palette) FatalPrefix() string {
	return p.wrap(p.Fatal, "[FATAL]") + " "
}

// Stdout returns a writer that understands ANSI sequences on every platform
func Stdout() io.Writer { return colorable.NewColorableStdout() }

// Stderr returns a writer that understands ANSI sequences on every platform
func Stderr() io.Writer { return colorable.NewColorableStderr() }

// IsTerminal reports whether f is an interactive terminal
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
