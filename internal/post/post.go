// internal/post/post.go
//
// Defines the on-disk shape of a post and the read-only checks run against
// post directories. A post is a directory named by its id; the files inside
// it record how far it has progressed.

package post

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/garfutils/internal/random"
	"github.com/kingrea/garfutils/internal/selection"
)

// File names inside a post directory.
const (
	FilePrimary    = "esperanto.png" // generated derivative
	FileDuplicate  = "english.png"   // byte copy of the primary, edited in parallel
	FileVector     = "esperanto.svg" // present once the post is illustrated
	FileTitle      = "title"
	FileDate       = "date"
	FileTranscript = "transcript"
	FileProps      = "props"
	FileSpecial    = "special"
)

// Window classes given to viewer processes so they can be killed by name.
const (
	ViewerClassShow       = "garfutils-show"
	ViewerClassTranscribe = "garfutils-transcribe"
)

// approvedProp is the props line that marks a post as approved.
const approvedProp = "good"

var (
	ErrNoSource            = errors.New("post: not the date of a real comic")
	ErrNoComics            = errors.New("post: no comics found")
	ErrDuplicateGenerated  = errors.New("post: there already exists an incomplete post with that date")
	ErrDuplicateCompleted  = errors.New("post: there already exists a completed post with that date")
	ErrPostNotFound        = errors.New("post: no post exists with that id")
	ErrMissingPostFile     = errors.New("post: post is missing a required file")
	ErrAlreadyRevised      = errors.New("post: unimplemented: post already revised")
	ErrNothingToRevise     = errors.New("post: no posts to revise")
	ErrNothingToTranscribe = errors.New("post: no posts to transcribe")
	ErrIDNotNumeric        = errors.New("post: post id is not an integer")
	ErrNoWatermarks        = errors.New("post: watermarks file has no entries")
	ErrDateChoice          = errors.New("post: specify exactly one of a date or --recent")
)

// State is how far a post has progressed.
type State string

const (
	StateNoPost      State = "none"
	StateGenerated   State = "generated"
	StateCompleted   State = "completed"
	StateRevised     State = "revised"
	StateTranscribed State = "transcribed"
	StateArchived    State = "archived"
)

// IsIDSunday applies the numbering convention where every seventh id, offset
// by one, is a Sunday comic. Only numeric ids can be checked.
func IsIDSunday(id string) (bool, error) {
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrIDNotNumeric, id)
	}
	return (n+1)%7 == 0, nil
}

// GenerateName returns four random letters followed by the date. Sunday
// comics get upper-case letters.
func GenerateName(date time.Time, rng *random.Source) string {
	const codeLength = 4
	from, to := 'a', 'z'
	if selection.IsSunday(date) {
		from, to = 'A', 'Z'
	}
	var b strings.Builder
	b.Grow(codeLength + 1 + len(selection.DateLayout))
	for i := 0; i < codeLength; i++ {
		b.WriteRune(rng.Letter(from, to))
	}
	b.WriteByte(':')
	b.WriteString(date.Format(selection.DateLayout))
	return b.String()
}

// ReadDate parses the date file of the post at dir.
func ReadDate(dir string) (time.Time, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("post: read date file: %w", err)
	}
	date, err := time.Parse(selection.DateLayout, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, fmt.Errorf("post: invalid date file for post: %w", err)
	}
	return date, nil
}

// ExistsWithDate reports whether any post under dir has a date file equal to
// date. Entries with a missing or malformed date file are skipped.
func ExistsWithDate(scanner selection.Scanner, dir string, date time.Time) (bool, error) {
	names, err := scanner.List(dir)
	if err != nil {
		return false, err
	}
	want := date.Format(selection.DateLayout)
	for _, name := range names {
		datePath := filepath.Join(dir, name, FileDate)
		if !fileExists(datePath) {
			continue
		}
		data, err := os.ReadFile(datePath)
		if err != nil {
			return false, fmt.Errorf("post: read date file of %s: %w", name, err)
		}
		existing, err := time.Parse(selection.DateLayout, strings.TrimSpace(string(data)))
		if err != nil {
			continue
		}
		if existing.Format(selection.DateLayout) == want {
			return true, nil
		}
	}
	return false, nil
}

// HasVector reports whether the post at dir has been illustrated.
func HasVector(dir string) bool {
	return fileExists(filepath.Join(dir, FileVector))
}

// HasTranscript reports whether the post at dir has a transcript.
func HasTranscript(dir string) bool {
	return fileExists(filepath.Join(dir, FileTranscript))
}

// IsApproved reports whether the post's props file contains the line "good".
func IsApproved(dir string) (bool, error) {
	file, err := os.Open(filepath.Join(dir, FileProps))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("post: open %s file: %w", FileProps, err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == approvedProp {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("post: read %s file: %w", FileProps, err)
	}
	return false, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
