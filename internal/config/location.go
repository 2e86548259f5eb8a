// internal/config/location.go
//
// Resolves and validates the data directory that holds every comic, post and
// cache file. Every other package reaches the filesystem through the
// accessors on Location.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/lipgloss"
)

// DefaultLocationName is the folder created under the platform data dir.
const DefaultLocationName = "garfutils"

// Names of the entries inside a location.
const (
	SourceDir      = "source"
	GeneratedDir   = "generated"
	PostsDir       = "posts"
	OldDir         = "old"
	TempDir        = "tmp" // not /tmp, so renames stay on one mount point
	RecentFile     = "recent"
	WatermarksFile = "watermarks"
	IconFile       = "icon.png"
	SettingsFile   = "config.yaml"
	LogFile        = "garfutils.log"
)

// ErrNoStandardLocation is returned when no override was given and the
// platform data directory could not be determined.
var ErrNoStandardLocation = errors.New("config: no standard data location")

// InvalidLocationError reports a base path that is missing or not a directory.
type InvalidLocationError struct {
	Path string
	Err  error
}

func (e *InvalidLocationError) Error() string {
	msg := fmt.Sprintf("config: location is not a directory: %s", e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + "\n" + layoutDiagram(e.Path)
}

func (e *InvalidLocationError) Unwrap() error { return e.Err }

// MissingSubpathError reports the first required entry that is absent or of
// the wrong kind.
type MissingSubpathError struct {
	Base string
	Name string
	Dir  bool
}

func (e *MissingSubpathError) Error() string {
	kind := "file"
	if e.Dir {
		kind = "sub-directory"
	}
	return fmt.Sprintf("config: location is missing %s %q\n%s", kind, e.Name, layoutDiagram(e.Base))
}

// Location is a validated base directory. Paths are joined on every call so
// changes on disk are always observed.
type Location struct {
	baseDir string
}

type requiredEntry struct {
	name string
	dir  bool
}

var requiredEntries = []requiredEntry{
	{SourceDir, true},
	{GeneratedDir, true},
	{PostsDir, true},
	{OldDir, true},
	{WatermarksFile, false},
	{IconFile, false},
}

// ResolveLocation picks the base directory (override, else the platform data
// dir) and checks that every required entry exists with the right kind.
// Validation stops at the first problem.
func ResolveLocation(override string) (*Location, error) {
	base, err := baseDir(override)
	if err != nil {
		return nil, err
	}
	loc := &Location{baseDir: base}
	if err := loc.validate(); err != nil {
		return nil, err
	}
	return loc, nil
}

func baseDir(override string) (string, error) {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return filepath.Clean(trimmed), nil
	}
	if xdg.DataHome == "" {
		return "", fmt.Errorf("%w: set $XDG_DATA_HOME or $HOME, or pass --location", ErrNoStandardLocation)
	}
	return filepath.Join(xdg.DataHome, DefaultLocationName), nil
}

func (l *Location) validate() error {
	info, err := os.Stat(l.baseDir)
	if err != nil {
		return &InvalidLocationError{Path: l.baseDir, Err: err}
	}
	if !info.IsDir() {
		return &InvalidLocationError{Path: l.baseDir}
	}
	for _, entry := range requiredEntries {
		// os.Stat follows symlinks, so linked entries are accepted.
		info, err := os.Stat(l.join(entry.name))
		if err != nil || info.IsDir() != entry.dir || (!entry.dir && !info.Mode().IsRegular()) {
			return &MissingSubpathError{Base: l.baseDir, Name: entry.name, Dir: entry.dir}
		}
	}
	return nil
}

func (l *Location) join(name string) string {
	return filepath.Join(l.baseDir, name)
}

// BaseDir returns the root of the location.
func (l *Location) BaseDir() string { return l.baseDir }

// SourceDir holds the original comics, named YYYY-MM-DD.png.
func (l *Location) SourceDir() string { return l.join(SourceDir) }

// GeneratedDir holds posts that were made but not yet promoted.
func (l *Location) GeneratedDir() string { return l.join(GeneratedDir) }

// PostsDir holds completed posts.
func (l *Location) PostsDir() string { return l.join(PostsDir) }

// OldDir archives posts replaced by a revision.
func (l *Location) OldDir() string { return l.join(OldDir) }

// TempDir holds working files such as transcripts being edited.
func (l *Location) TempDir() string { return l.join(TempDir) }

// RecentFile is the append-only list of shown dates.
func (l *Location) RecentFile() string { return l.join(RecentFile) }

// WatermarksFile lists candidate watermark strings, one per line.
func (l *Location) WatermarksFile() string { return l.join(WatermarksFile) }

// IconFile is the overlay image stamped onto every post.
func (l *Location) IconFile() string { return l.join(IconFile) }

// SettingsPath is the optional config.yaml.
func (l *Location) SettingsPath() string { return l.join(SettingsFile) }

// LogPath is where the logbook is written.
func (l *Location) LogPath() string { return filepath.Join(l.TempDir(), LogFile) }

func layoutDiagram(base string) string {
	underline := lipgloss.NewStyle().Underline(true)
	var b strings.Builder
	b.WriteString("\nPlease ensure that these files and directories exist.\n")
	b.WriteString("Each item may be a symlink.\n\n")
	b.WriteString(underline.Render(base+"/") + "\n")
	for i, entry := range requiredEntries {
		branch := "├─"
		if i == len(requiredEntries)-1 {
			branch = "└─"
		}
		name := entry.name
		if entry.dir {
			name += "/"
		}
		fmt.Fprintf(&b, "\t%s %s\n", branch, name)
	}
	b.WriteString("\nAlternatively, run this program with the `--location <LOCATION>` option.")
	return b.String()
}
