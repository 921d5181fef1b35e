// Package report collects and renders compiler diagnostics.
//
// Errors are accumulated rather than raised: one malformed declaration
// must not suppress diagnostics for the independent declarations that
// follow it.
package report

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"

	"mincc/token"
)

// CompilerError is a semantic-level diagnostic with a source range for
// caret-style reporting.
type CompilerError struct {
	Desc    string
	Range   token.Range
	Warning bool
}

func New(desc string, r token.Range) *CompilerError {
	if os.Getenv("MINCCDEBUG") == "true" {
		desc = fmt.Sprintf("%s\n%s", desc, debug.Stack())
	}
	return &CompilerError{Desc: desc, Range: r}
}

func Newf(r token.Range, format string, args ...interface{}) *CompilerError {
	return New(fmt.Sprintf(format, args...), r)
}

func (e *CompilerError) Error() string {
	kind := "error"
	if e.Warning {
		kind = "warning"
	}
	pos := e.Range.Start
	if pos.Line > 0 {
		return fmt.Sprintf("%s: %s: %s", pos, kind, e.Desc)
	}
	return fmt.Sprintf("%s: %s", kind, e.Desc)
}

// Collector accumulates diagnostics across parsing and resolution.
type Collector struct {
	issues []*CompilerError
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(e *CompilerError) {
	c.issues = append(c.issues, e)
	sort.SliceStable(c.issues, func(i, j int) bool {
		a, b := c.issues[i].Range.Start, c.issues[j].Range.Start
		if a.Line == 0 || b.Line == 0 || a.File != b.File {
			return false
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
}

// OK reports whether no fatal-class diagnostics were collected.
func (c *Collector) OK() bool {
	for _, issue := range c.issues {
		if !issue.Warning {
			return false
		}
	}
	return true
}

func (c *Collector) Issues() []*CompilerError {
	return c.issues
}

func (c *Collector) Clear() {
	c.issues = nil
}

// Err folds every fatal diagnostic into a single error value, or nil
// if compilation may proceed.
func (c *Collector) Err() error {
	var merr *multierror.Error
	for _, issue := range c.issues {
		if !issue.Warning {
			merr = multierror.Append(merr, issue)
		}
	}
	return merr.ErrorOrNil()
}

// Show renders every collected diagnostic to w with a source excerpt
// and caret underneath the offending range.
func (c *Collector) Show(w io.Writer) {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	errc := color.New(color.FgRed, color.Bold)
	warnc := color.New(color.FgYellow, color.Bold)
	for _, issue := range c.issues {
		kind, col := "error", errc
		if issue.Warning {
			kind, col = "warning", warnc
		}
		pos := issue.Range.Start
		if pos.Line > 0 {
			fmt.Fprintf(w, "%s: ", pos)
		}
		if useColor {
			col.Fprintf(w, "%s:", kind)
			fmt.Fprintf(w, " %s\n", issue.Desc)
		} else {
			fmt.Fprintf(w, "%s: %s\n", kind, issue.Desc)
		}
		writeExcerpt(w, issue.Range)
	}
}

func writeExcerpt(w io.Writer, r token.Range) {
	line := r.Start.FullLine
	if line == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", line)
	var b strings.Builder
	b.WriteString("  ")
	end := r.End.Col
	if r.End.Line != r.Start.Line || end < r.Start.Col {
		end = r.Start.Col
	}
	for i := 1; i <= len(line) && i <= end; i++ {
		switch {
		case i < r.Start.Col:
			if line[i-1] == '\t' {
				b.WriteByte('\t')
			} else {
				b.WriteByte(' ')
			}
		default:
			b.WriteByte('^')
		}
	}
	fmt.Fprintln(w, b.String())
}
