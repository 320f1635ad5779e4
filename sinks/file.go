package sinks

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/arcflow-dev/arcflow/core"
	"github.com/arcflow-dev/arcflow/selflog"
)

// FileSink appends messages to a file, one Payload per line, through a
// buffered writer.
type FileSink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	w      *bufio.Writer
	level  core.Level
	fmt    core.Formatter
	isOpen bool
}

// NewFileSink creates or opens path in append mode, with a 4KB write
// buffer.
func NewFileSink(path string) (*FileSink, error) {
	return NewFileSinkWithBufferSize(path, 4096)
}

// NewFileSinkWithBufferSize is like NewFileSink with an explicit buffer
// size.
func NewFileSinkWithBufferSize(path string, bufferSize int) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sinks: create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sinks: open log file: %w", err)
	}
	return &FileSink{
		path:   path,
		file:   f,
		w:      bufio.NewWriterSize(f, bufferSize),
		level:  core.TraceLevel,
		isOpen: true,
	}, nil
}

// Emit appends msg's rendered payload as one line. Write failures are
// reported through selflog rather than propagated to the caller.
func (fs *FileSink) Emit(msg *core.LogMessage) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.isOpen {
		return
	}
	if msg.Level < fs.level {
		return
	}
	payload := msg.Payload
	if fs.fmt != nil {
		payload = fs.fmt.Format(msg)
	}
	if _, err := fs.w.Write(payload); err == nil {
		_, err = fs.w.WriteString("\n")
		if err != nil && selflog.IsEnabled() {
			selflog.Printf("[file] write to %q failed: %v", fs.path, err)
		}
	} else if selflog.IsEnabled() {
		selflog.Printf("[file] write to %q failed: %v", fs.path, err)
	}
}

// Flush flushes the buffered writer and fsyncs the underlying file.
func (fs *FileSink) Flush() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.isOpen {
		return nil
	}
	if err := fs.w.Flush(); err != nil {
		return fmt.Errorf("sinks: flush %q: %w", fs.path, err)
	}
	return fs.file.Sync()
}

// SetPattern is a no-op; use SetFormatter for custom rendering.
func (fs *FileSink) SetPattern(pattern string) error { return nil }

// SetFormatter installs f; nil restores the default of writing Payload
// verbatim.
func (fs *FileSink) SetFormatter(f core.Formatter) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.fmt = f
}

// SetLevel sets the sink's minimum level.
func (fs *FileSink) SetLevel(level core.Level) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.level = level
}

// Level returns the sink's minimum level.
func (fs *FileSink) Level() core.Level {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.level
}

// Close flushes, syncs, and closes the file. Close is idempotent.
func (fs *FileSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.isOpen {
		return nil
	}
	fs.isOpen = false
	if err := fs.w.Flush(); err != nil {
		fs.file.Close()
		return fmt.Errorf("sinks: flush %q on close: %w", fs.path, err)
	}
	if err := fs.file.Sync(); err != nil {
		fs.file.Close()
		return fmt.Errorf("sinks: sync %q on close: %w", fs.path, err)
	}
	return fs.file.Close()
}
