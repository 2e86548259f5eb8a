// internal/selection/selection.go
//
// Picks source comics and posts by scanning directories. There is no index:
// every call lists the directory again. The Scanner interface is the seam
// where an index could replace the scan.

package selection

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kingrea/garfutils/internal/daterange"
	"github.com/kingrea/garfutils/internal/random"
)

// DateLayout names source files and fills post date files.
const DateLayout = "2006-01-02"

// SourceFormat is the extension of every source comic.
const SourceFormat = "png"

// Scanner lists the entry names of a directory in ascending order.
type Scanner interface {
	List(dir string) ([]string, error)
}

// DirScanner lists entries straight from the filesystem.
type DirScanner struct{}

// List implements Scanner.
func (DirScanner) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("selection: read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Predicate decides whether the entry at path qualifies.
type Predicate func(path string) (bool, error)

// PickRandomSource filters every entry of dir through match, then returns one
// of the survivors chosen uniformly. ok is false when nothing passed.
func PickRandomSource(scanner Scanner, dir string, match Predicate, rng *random.Source) (path string, ok bool, err error) {
	names, err := scanner.List(dir)
	if err != nil {
		return "", false, err
	}
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		candidate := filepath.Join(dir, name)
		passed, err := match(candidate)
		if err != nil {
			return "", false, fmt.Errorf("selection: check %s: %w", name, err)
		}
		if passed {
			candidates = append(candidates, candidate)
		}
	}
	if len(candidates) == 0 {
		return "", false, nil
	}
	return candidates[rng.IntN(len(candidates))], true, nil
}

// FindFirstMatchingChild tries each predicate in turn, scanning the whole of
// dir for one before falling back to the next. It returns the name of the
// first entry (ascending) that satisfies the earliest predicate with any
// match, so predicate order expresses priority.
func FindFirstMatchingChild(scanner Scanner, dir string, predicates []Predicate) (id string, ok bool, err error) {
	for _, predicate := range predicates {
		names, err := scanner.List(dir)
		if err != nil {
			return "", false, err
		}
		for _, name := range names {
			matched, err := predicate(filepath.Join(dir, name))
			if err != nil {
				return "", false, fmt.Errorf("selection: check %s: %w", name, err)
			}
			if matched {
				return name, true, nil
			}
		}
	}
	return "", false, nil
}

// SourcePath returns where the comic for date lives. Existence is not checked.
func SourcePath(sourceDir string, date time.Time) string {
	return filepath.Join(sourceDir, date.Format(DateLayout)+"."+SourceFormat)
}

// DateFromPath parses the date in a file name such as 2024-01-07.png. The
// stem ends at the first dot.
func DateFromPath(path string) (time.Time, bool) {
	stem, _, _ := strings.Cut(filepath.Base(path), ".")
	date, err := time.Parse(DateLayout, stem)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// IsSunday reports whether date falls on a Sunday.
func IsSunday(date time.Time) bool {
	return date.Weekday() == time.Sunday
}

// MatchesDateRangeAndWeekday builds the predicate used when choosing a random
// source comic. Only regular files named <date>.png match; anything else in
// the directory is ignored.
func MatchesDateRangeAndWeekday(r daterange.DateRange, sundayOnly bool) Predicate {
	return func(path string) (bool, error) {
		base := filepath.Base(path)
		ext := filepath.Ext(base)
		if ext != "."+SourceFormat {
			return false, nil
		}
		date, err := time.Parse(DateLayout, strings.TrimSuffix(base, ext))
		if err != nil {
			return false, nil
		}
		if !r.Contains(date) {
			return false, nil
		}
		if sundayOnly && !IsSunday(date) {
			return false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("selection: stat %s: %w", path, err)
		}
		return info.Mode().IsRegular(), nil
	}
}
