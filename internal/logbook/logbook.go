package logbook

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook records what each command did to the location, one line per
// event, so a later reader can reconstruct which posts were made, archived
// or transcribed.
type Logbook struct {
	path string
	now  func() time.Time
}

// New creates a logbook that writes to the provided path. The parent
// directory is created if needed.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure dir: %w", err)
	}
	return &Logbook{path: path, now: time.Now}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry. Write failures are dropped: the log must
// never turn a successful command into a failed one.
func (l *Logbook) Append(level Level, op, message string) {
	if l == nil {
		return
	}
	line := fmt.Sprintf("%s %-5s %s: %s\n",
		l.now().UTC().Format(time.RFC3339),
		string(level),
		op,
		strings.TrimSpace(message),
	)
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line)
}

// Tail returns up to maxLines of the most recent entries. A logbook that has
// never been written is empty, not an error.
func (l *Logbook) Tail(maxLines int) ([]string, error) {
	if l == nil || maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("logbook: open %s: %w", l.path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > maxLines {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("logbook: read %s: %w", l.path, err)
	}
	return lines, nil
}

// Info appends an informational entry.
func (l *Logbook) Info(op, format string, args ...any) {
	l.Append(LevelInfo, op, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(op, format string, args ...any) {
	l.Append(LevelWarn, op, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(op, format string, args ...any) {
	l.Append(LevelError, op, fmt.Sprintf(format, args...))
}
