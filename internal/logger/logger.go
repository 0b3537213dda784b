package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultPath is the log file used when none is configured, relative to the working directory.
const DefaultPath = "logs/maze.txt"

// maxLines caps the in-memory history shown by the console; the file keeps everything.
const maxLines = 500

const stampLayout = "2006-01-02 15:04:05"

// Logger keeps the session log: startup, asset resolution, resets and console output.
// Lines go to a bounded in-memory history and to an append-only file.
type Logger struct {
	mu    sync.Mutex
	path  string
	out   io.WriteCloser // nil when the file could not be opened
	lines []string
	now   func() time.Time
}

// New opens (or creates) the log file at path, DefaultPath if empty. A file that cannot be
// opened leaves the logger memory-only.
func New(path string) *Logger {
	if path == "" {
		path = DefaultPath
	}
	l := &Logger{path: path, now: time.Now}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
		if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
			l.out = f
		}
	}
	return l
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Log records line with a "[timestamp] " prefix.
func (l *Logger) Log(line string) {
	stamped := "[" + l.now().Format(stampLayout) + "] " + line

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, stamped)
	if n := len(l.lines); n > maxLines {
		l.lines = append(l.lines[:0], l.lines[n-maxLines:]...)
	}
	if l.out != nil {
		if _, err := io.WriteString(l.out, stamped+"\n"); err != nil {
			l.out.Close()
			l.out = nil
		}
	}
}

// Logf formats according to a format specifier and logs the result.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

// Lines returns a copy of the stored history, oldest first.
func (l *Logger) Lines() []string {
	return l.Tail(maxLines)
}

// Tail returns a copy of at most the last n lines.
func (l *Logger) Tail(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.lines) {
		n = len(l.lines)
	}
	if n <= 0 {
		return nil
	}
	return append([]string(nil), l.lines[len(l.lines)-n:]...)
}

// Close closes the log file. Later lines are kept in memory only.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.out == nil {
		return nil
	}
	err := l.out.Close()
	l.out = nil
	return err
}
