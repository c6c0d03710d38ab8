// Package output provides terminal formatting for reports
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode represents color output mode
type ColorMode int

const (
	// ColorAuto enables colors when writing to a terminal (default)
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever forces colors off
	ColorNever
)

// Printer handles formatted output to the terminal
type Printer struct {
	out       io.Writer
	useColors bool
}

// ParseColorMode parses a string into a ColorMode
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors determines whether to use colors for out based on mode and
// environment.
func ResolveColors(mode ColorMode, out io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		f, ok := out.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer, useColors bool) *Printer {
	return &Printer{out: out, useColors: useColors}
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Colors reports whether the printer emits ANSI colors
func (p *Printer) Colors() bool {
	return p.useColors
}

func (p *Printer) colored(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...interface{}) {
	p.colored(color.FgCyan).Fprintf(p.out, format+"\n", args...)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	if p.useColors {
		p.colored(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
	}
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	if p.useColors {
		p.colored(color.FgYellow).Fprintf(p.out, "⚠ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.out, "[WARN] "+format+"\n", args...)
	}
}

// Print prints a plain message
func (p *Printer) Print(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Header prints a section header
func (p *Printer) Header(title string) {
	if p.useColors {
		p.colored(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
		p.colored(color.FgWhite).Fprintf(p.out, "%s\n", repeatChar('─', len(title)))
	} else {
		fmt.Fprintf(p.out, "\n%s\n%s\n", title, repeatChar('-', len(title)))
	}
}

// Trend returns a signed percentage, green when rising and red when falling
func (p *Printer) Trend(change float64) string {
	text := fmt.Sprintf("%+.1f%%", change)
	switch {
	case change > 0:
		return p.colored(color.FgGreen).Sprint(text)
	case change < 0:
		return p.colored(color.FgRed).Sprint(text)
	default:
		return text
	}
}

// Bold returns text in bold
func (p *Printer) Bold(text string) string {
	return p.colored(color.Bold).Sprint(text)
}

// Dim returns dimmed text
func (p *Printer) Dim(text string) string {
	return p.colored(color.Faint).Sprint(text)
}

func repeatChar(char rune, count int) string {
	result := make([]rune, count)
	for i := range result {
		result[i] = char
	}
	return string(result)
}
