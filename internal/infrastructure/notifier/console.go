package notifier

import (
	"fmt"
	"io"
	"os"

	"prediction_market/internal/app/port"

	"github.com/fatih/color"
)

// Console prints toasts to a terminal.
type Console struct {
	out     io.Writer
	info    *color.Color
	success *color.Color
	fail    *color.Color
	loading *color.Color
}

var _ port.Notifier = (*Console)(nil)

// NewConsole writes to out, or stderr when out is nil.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stderr
	}
	return &Console{
		out:     out,
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
		loading: color.New(color.FgYellow),
	}
}

func (c *Console) print(col *color.Color, prefix, msg string) {
	_, _ = col.Fprintf(c.out, "%s ", prefix)
	_, _ = fmt.Fprintln(c.out, msg)
}

func (c *Console) Info(msg string)    { c.print(c.info, "ℹ", msg) }
func (c *Console) Success(msg string) { c.print(c.success, "✔", msg) }
func (c *Console) Error(msg string)   { c.print(c.fail, "✖", msg) }
func (c *Console) Loading(msg string) { c.print(c.loading, "…", msg) }
