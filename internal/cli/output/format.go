// Package output renders command results as tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Format is an output format name.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json, yaml or yml. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string { return string(f) }

// Printer writes results in one format.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter creates a printer. Color is only used for status lines.
func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{out: out, format: format, color: color}
}

// StdoutPrinter prints to stdout, with color when stdout is a terminal.
func StdoutPrinter(format Format) *Printer {
	fd := os.Stdout.Fd()
	return NewPrinter(os.Stdout, format, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// Format returns the printer's format.
func (p *Printer) Format() Format { return p.format }

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.out }

// Print renders data. Table output needs a TableRenderer; anything else is
// printed as JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatTable:
		if r, ok := data.(TableRenderer); ok {
			return PrintTable(p.out, r)
		}
		return PrintJSON(p.out, data)
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Printf writes a formatted line fragment.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

const (
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiReset  = "\033[0m"
)

func (p *Printer) status(color, msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "%s%s%s\n", color, msg, ansiReset)
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}

// Success prints msg in green.
func (p *Printer) Success(msg string) { p.status(ansiGreen, msg) }

// Warning prints msg in yellow.
func (p *Printer) Warning(msg string) { p.status(ansiYellow, msg) }

// Error prints msg in red.
func (p *Printer) Error(msg string) { p.status(ansiRed, msg) }
