package post

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kingrea/garfutils/internal/recent"
	"github.com/kingrea/garfutils/internal/selection"
)

// revisePriority lists what revise should pick up next: approved posts that
// are not illustrated yet, then any post that is not illustrated.
var revisePriority = []selection.Predicate{
	func(path string) (bool, error) {
		if HasVector(path) {
			return false, nil
		}
		return IsApproved(path)
	},
	func(path string) (bool, error) {
		return !HasVector(path), nil
	},
}

// transcribePriority picks illustrated posts that have no transcript.
var transcribePriority = []selection.Predicate{
	func(path string) (bool, error) {
		return HasVector(path) && !HasTranscript(path), nil
	},
}

// ResolveReviseID validates an explicit id, or finds the next post to revise
// when id is empty.
func (l *Lifecycle) ResolveReviseID(id string) (string, error) {
	return l.resolveID(id, revisePriority, ErrNothingToRevise)
}

// ResolveTranscribeID validates an explicit id, or finds the next post to
// transcribe when id is empty.
func (l *Lifecycle) ResolveTranscribeID(id string) (string, error) {
	return l.resolveID(id, transcribePriority, ErrNothingToTranscribe)
}

func (l *Lifecycle) resolveID(id string, priority []selection.Predicate, none error) (string, error) {
	if id != "" {
		if !dirExists(filepath.Join(l.loc.PostsDir(), id)) {
			return "", fmt.Errorf("%w: %s", ErrPostNotFound, id)
		}
		return id, nil
	}
	found, ok, err := selection.FindFirstMatchingChild(l.scanner, l.loc.PostsDir(), priority)
	if err != nil {
		return "", fmt.Errorf("post: search completed posts: %w", err)
	}
	if !ok {
		return "", none
	}
	fmt.Fprintf(l.out, "Post id: %s\n", found)
	return found, nil
}

// ResolveDate returns date, or the most recently shown date when useRecent
// is set. Exactly one of the two must be given.
func (l *Lifecycle) ResolveDate(date *time.Time, useRecent bool) (time.Time, error) {
	switch {
	case useRecent && date == nil:
		last, err := recent.Last(l.loc.RecentFile())
		if err != nil {
			return time.Time{}, fmt.Errorf("post: get recent date: %w", err)
		}
		fmt.Fprintf(l.out, "Date: %s\n", last.Format(selection.DateLayout))
		return last, nil
	case !useRecent && date != nil:
		return *date, nil
	default:
		return time.Time{}, ErrDateChoice
	}
}

// StateOf reports where post id currently sits in its lifecycle. A post
// being revised has both an archived and a generated copy; the generated
// one wins.
func (l *Lifecycle) StateOf(id string) (State, error) {
	if id == "" {
		return StateNoPost, errors.New("post: id is required")
	}
	if postDir := filepath.Join(l.loc.PostsDir(), id); dirExists(postDir) {
		switch {
		case HasVector(postDir) && HasTranscript(postDir):
			return StateTranscribed, nil
		case HasVector(postDir):
			return StateRevised, nil
		default:
			return StateCompleted, nil
		}
	}
	if dirExists(filepath.Join(l.loc.GeneratedDir(), id)) {
		return StateGenerated, nil
	}
	if dirExists(filepath.Join(l.loc.OldDir(), id)) {
		return StateArchived, nil
	}
	return StateNoPost, nil
}
