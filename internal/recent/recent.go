// Package recent maintains the append-only list of dates shown to the user,
// so `make --recent` can pick up where `show` left off.
package recent

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// DateLayout is the on-disk format of every date in the system.
const DateLayout = "2006-01-02"

var (
	// ErrNoCache means the recent file has never been written.
	ErrNoCache = errors.New("recent: recent dates file does not exist yet")
	// ErrEmpty means the file exists but holds no valid date.
	ErrEmpty = errors.New("recent: no valid date in recent dates file")
)

// Append adds date as a new line, creating the file if needed.
func Append(path string, date time.Time) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("recent: open %s: %w", path, err)
	}
	defer file.Close()
	if _, err := fmt.Fprintln(file, date.Format(DateLayout)); err != nil {
		return fmt.Errorf("recent: append: %w", err)
	}
	return nil
}

// Last returns the last non-blank line that parses as a date. Lines that
// fail to parse are skipped.
func Last(path string) (time.Time, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ErrNoCache
		}
		return time.Time{}, fmt.Errorf("recent: open %s: %w", path, err)
	}
	defer file.Close()

	var (
		last  time.Time
		found bool
	)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		date, err := time.Parse(DateLayout, line)
		if err != nil {
			continue
		}
		last, found = date, true
	}
	if err := scanner.Err(); err != nil {
		return time.Time{}, fmt.Errorf("recent: read %s: %w", path, err)
	}
	if !found {
		return time.Time{}, ErrEmpty
	}
	return last, nil
}
