package sinks

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/arcflow-dev/arcflow/core"
)

// levelColors maps a Level to its ANSI 256-color code. Trace, Debug and
// Info are left uncolored.
var levelColors = [...]int{
	core.TraceLevel:    0,
	core.DebugLevel:    0,
	core.InfoLevel:     0,
	core.WarnLevel:     179,
	core.ErrorLevel:    167,
	core.CriticalLevel: 196,
}

// ConsoleSink writes messages to an io.Writer, one Payload per line. When
// the writer is os.Stdout or os.Stderr and that descriptor is an
// interactive terminal, Warn and above are colorized.
type ConsoleSink struct {
	mu       sync.Mutex
	w        *bufio.Writer
	useColor bool
	level    core.Level
	fmt      core.Formatter
}

// NewConsoleSink creates a sink writing to os.Stdout.
func NewConsoleSink() *ConsoleSink {
	return NewConsoleSinkWithWriter(os.Stdout)
}

// NewConsoleSinkWithWriter creates a sink writing to an arbitrary writer.
// Color detection only applies when w is os.Stdout or os.Stderr.
func NewConsoleSinkWithWriter(w io.Writer) *ConsoleSink {
	useColor := false
	if f, ok := w.(*os.File); ok && (f == os.Stdout || f == os.Stderr) {
		fd := syscall.Stdout
		if f == os.Stderr {
			fd = syscall.Stderr
		}
		useColor = term.IsTerminal(fd)
	}
	return &ConsoleSink{
		w:        bufio.NewWriter(w),
		useColor: useColor,
		level:    core.TraceLevel,
	}
}

// Emit writes msg's rendered payload as one line, applying level coloring
// when the destination is a color-capable terminal.
func (c *ConsoleSink) Emit(msg *core.LogMessage) {
	if msg.Level < c.level {
		return
	}
	payload := c.render(msg)

	c.mu.Lock()
	defer c.mu.Unlock()

	color := 0
	if c.useColor && int(msg.Level) < len(levelColors) {
		color = levelColors[msg.Level]
	}
	if color > 0 {
		fmt.Fprintf(c.w, "\033[38;5;%dm%s\033[m\n", color, payload)
	} else {
		fmt.Fprintf(c.w, "%s\n", payload)
	}
}

func (c *ConsoleSink) render(msg *core.LogMessage) []byte {
	c.mu.Lock()
	formatter := c.fmt
	c.mu.Unlock()
	if formatter != nil {
		return formatter.Format(msg)
	}
	return msg.Payload
}

// Flush flushes the underlying buffered writer.
func (c *ConsoleSink) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Flush()
}

// SetPattern is a no-op; ConsoleSink has no built-in pattern engine and
// relies on SetFormatter for custom rendering.
func (c *ConsoleSink) SetPattern(pattern string) error { return nil }

// SetFormatter installs f; nil restores the default of writing Payload
// verbatim.
func (c *ConsoleSink) SetFormatter(f core.Formatter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fmt = f
}

// SetLevel sets the sink's minimum level.
func (c *ConsoleSink) SetLevel(level core.Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

// Level returns the sink's minimum level.
func (c *ConsoleSink) Level() core.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Close flushes any buffered output. The underlying os.Stdout/os.Stderr
// descriptor itself is never closed.
func (c *ConsoleSink) Close() error {
	return c.Flush()
}
