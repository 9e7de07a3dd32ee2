package diag

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

const (
	prefixVerbose = "VERBOSE: "
	prefixWarn    = "WARNING: "
	prefixError   = "ERROR:   "
	prefixInfo    = "INFO:    "
)

// Console prints diagnostics one per line with a coloured severity prefix.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	min     Severity
	colours map[Severity]*color.Color
}

// NewConsole returns a console sink writing to w. Messages below min are
// dropped. Colour output follows color.NoColor unless noColor is set.
func NewConsole(w io.Writer, min Severity, noColor bool) *Console {
	c := &Console{
		w:   w,
		min: min,
		colours: map[Severity]*color.Color{
			Verbose: color.New(color.FgCyan),
			Info:    color.New(color.FgGreen),
			Warning: color.New(color.FgYellow),
			Error:   color.New(color.FgRed),
		},
	}
	if noColor {
		for _, col := range c.colours {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) Emit(m Message) {
	if m.Severity < c.min {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var prefix string
	switch m.Severity {
	case Verbose:
		prefix = prefixVerbose
	case Info:
		prefix = prefixInfo
	case Warning:
		prefix = prefixWarn
	default:
		prefix = prefixError
	}
	col, ok := c.colours[m.Severity]
	if !ok {
		col = c.colours[Error]
	}
	col.Fprintln(c.w, prefix+m.String())
}

// Printf writes an uncoloured line, bypassing severity filtering.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}
