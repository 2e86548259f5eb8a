package post

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/garfutils/internal/config"
	"github.com/kingrea/garfutils/internal/daterange"
	"github.com/kingrea/garfutils/internal/logbook"
	"github.com/kingrea/garfutils/internal/prompt"
	"github.com/kingrea/garfutils/internal/random"
	"github.com/kingrea/garfutils/internal/recent"
)

type fakeConverter struct {
	calls int
}

func (f *fakeConverter) ConvertFile(sourcePath, iconPath, watermark, outputPath string) error {
	f.calls++
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, append(source, []byte("|"+watermark)...), 0o644)
}

type fakeCommands struct {
	killed  []string
	spawned [][]string
	windows [][]string
	edit    func(path string) error
}

func (f *fakeCommands) SpawnViewer(paths []string, class string, fullscreen bool) error {
	f.spawned = append(f.spawned, append([]string{class}, paths...))
	return nil
}

func (f *fakeCommands) KillViewer(class string) error {
	f.killed = append(f.killed, class)
	return nil
}

func (f *fakeCommands) SetupViewerWindow(paths []string, class string) error {
	f.windows = append(f.windows, append([]string{class}, paths...))
	return nil
}

func (f *fakeCommands) OpenEditor(path string) error {
	if f.edit != nil {
		return f.edit(path)
	}
	return nil
}

type fakeUI struct {
	questions  []string
	confirmErr error
	onWait     func()
}

func (f *fakeUI) Confirm(question string) error {
	f.questions = append(f.questions, question)
	return f.confirmErr
}

func (f *fakeUI) WaitFor(ctx context.Context, label string, interval time.Duration, done prompt.CheckFunc) error {
	if f.onWait != nil {
		f.onWait()
	}
	return prompt.Poll(ctx, interval, done)
}

type harness struct {
	base     string
	loc      *config.Location
	commands *fakeCommands
	ui       *fakeUI
	out      *bytes.Buffer
	life     *Lifecycle
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	base := t.TempDir()
	for _, dir := range []string{config.SourceDir, config.GeneratedDir, config.PostsDir, config.OldDir} {
		mustMkdir(t, filepath.Join(base, dir))
	}
	mustWrite(t, filepath.Join(base, config.WatermarksFile), "first mark\n\nsecond mark\n")
	mustWrite(t, filepath.Join(base, config.IconFile), "icon")
	loc, err := config.ResolveLocation(base)
	if err != nil {
		t.Fatalf("resolve location: %v", err)
	}
	book, err := logbook.New(loc.LogPath())
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	h := &harness{base: base, loc: loc, commands: &fakeCommands{}, ui: &fakeUI{}, out: &bytes.Buffer{}}
	h.life = NewLifecycle(loc, random.New(1), &fakeConverter{}, h.commands, h.ui,
		WithOutput(h.out), WithLogbook(book), WithPollInterval(time.Millisecond))
	return h
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func (h *harness) addSource(t *testing.T, date string) {
	mustWrite(t, filepath.Join(h.loc.SourceDir(), date+".png"), "comic "+date)
}

// addPost creates posts/<id> with a date and title and any extra files.
func (h *harness) addPost(t *testing.T, id, date string, extra ...string) string {
	dir := filepath.Join(h.loc.PostsDir(), id)
	mustWrite(t, filepath.Join(dir, FileDate), date)
	mustWrite(t, filepath.Join(dir, FileTitle), "title of "+id)
	mustWrite(t, filepath.Join(dir, FilePrimary), "old image")
	mustWrite(t, filepath.Join(dir, FileDuplicate), "old image")
	for _, name := range extra {
		content := name
		if name == FileProps {
			content = "nice\ngood\n"
		}
		mustWrite(t, filepath.Join(dir, name), content)
	}
	return dir
}

func TestMakeCreatesGeneratedPost(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "2024-01-07")

	if err := h.life.Make(day("2024-01-07"), "abcd", false); err != nil {
		t.Fatalf("Make: %v", err)
	}
	dir := filepath.Join(h.loc.GeneratedDir(), "abcd")
	if got := mustRead(t, filepath.Join(dir, FileDate)); got != "2024-01-07" {
		t.Fatalf("date file = %q", got)
	}
	if got := mustRead(t, filepath.Join(dir, FileTitle)); got != "" {
		t.Fatalf("title should be empty, got %q", got)
	}
	primary := mustRead(t, filepath.Join(dir, FilePrimary))
	duplicate := mustRead(t, filepath.Join(dir, FileDuplicate))
	if primary == "" || primary != duplicate {
		t.Fatalf("derivatives differ: %q vs %q", primary, duplicate)
	}
	if !strings.Contains(primary, "mark") {
		t.Fatalf("expected a watermark to be passed to the converter, got %q", primary)
	}
	if !strings.Contains(h.out.String(), "Created abcd") {
		t.Fatalf("missing progress output: %q", h.out.String())
	}

	err := h.life.Make(day("2024-01-07"), "efgh", false)
	if !errors.Is(err, ErrDuplicateGenerated) {
		t.Fatalf("expected ErrDuplicateGenerated, got %v", err)
	}
	if dirExists(filepath.Join(h.loc.GeneratedDir(), "efgh")) {
		t.Fatalf("rejected make must not create a directory")
	}
}

func TestMakeRequiresSource(t *testing.T) {
	h := newHarness(t)
	if err := h.life.Make(day("2024-01-08"), "abcd", false); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestMakeCompletedCheckCanBeSkipped(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "2024-01-07")
	h.addPost(t, "6", "2024-01-07")

	if err := h.life.Make(day("2024-01-07"), "abcd", false); !errors.Is(err, ErrDuplicateCompleted) {
		t.Fatalf("expected ErrDuplicateCompleted, got %v", err)
	}
	if err := h.life.Make(day("2024-01-07"), "abcd", true); err != nil {
		t.Fatalf("Make with skip: %v", err)
	}
}

func TestExistsWithDateSkipsMalformedEntries(t *testing.T) {
	h := newHarness(t)
	mustWrite(t, filepath.Join(h.loc.PostsDir(), "bad", FileDate), "not a date")
	mustMkdir(t, filepath.Join(h.loc.PostsDir(), "nodate"))
	mustWrite(t, filepath.Join(h.loc.PostsDir(), "stray-file"), "x")
	mustWrite(t, filepath.Join(h.loc.PostsDir(), "good", FileDate), "2020-05-05\n")

	found, err := ExistsWithDate(h.life.scanner, h.loc.PostsDir(), day("2020-05-05"))
	if err != nil || !found {
		t.Fatalf("expected date to be found, got %v, %v", found, err)
	}
	found, err = ExistsWithDate(h.life.scanner, h.loc.PostsDir(), day("2020-05-06"))
	if err != nil || found {
		t.Fatalf("expected date to be absent, got %v, %v", found, err)
	}
}

func TestIsIDSunday(t *testing.T) {
	cases := map[string]bool{"6": true, "0": false, "5": false, "13": true, "20": true, "21": false}
	for id, want := range cases {
		got, err := IsIDSunday(id)
		if err != nil {
			t.Fatalf("IsIDSunday(%q): %v", id, err)
		}
		if got != want {
			t.Fatalf("IsIDSunday(%q) = %v, want %v", id, got, want)
		}
	}
	for _, id := range []string{"abcd:2024-01-07", "", "-1", "6a"} {
		if _, err := IsIDSunday(id); !errors.Is(err, ErrIDNotNumeric) {
			t.Fatalf("IsIDSunday(%q) expected ErrIDNotNumeric, got %v", id, err)
		}
	}
}

func TestTranscribeTemplateWithoutEditsCreatesNothing(t *testing.T) {
	for id, lines := range map[string]int{"6": 6, "5": 2} {
		t.Run(id, func(t *testing.T) {
			h := newHarness(t)
			postDir := h.addPost(t, id, "2024-01-07", FileVector)
			var seen string
			h.commands.edit = func(path string) error {
				seen = mustRead(t, path)
				return nil
			}
			if err := h.life.Transcribe(id); err != nil {
				t.Fatalf("Transcribe: %v", err)
			}
			want := strings.TrimSuffix(strings.Repeat("---\n", lines), "\n")
			if seen != want {
				t.Fatalf("template = %q, want %q", seen, want)
			}
			if HasTranscript(postDir) {
				t.Fatalf("no transcript should be written without edits")
			}
			if len(h.ui.questions) != 0 {
				t.Fatalf("no confirmation expected, got %v", h.ui.questions)
			}
			if !strings.Contains(h.out.String(), "No changes made.") {
				t.Fatalf("missing no-change message: %q", h.out.String())
			}
			if len(h.commands.windows) != 1 || h.commands.windows[0][0] != ViewerClassTranscribe {
				t.Fatalf("expected transcribe viewer window, got %v", h.commands.windows)
			}
			if len(h.commands.killed) != 2 {
				t.Fatalf("viewer should be killed before and after editing, got %v", h.commands.killed)
			}
		})
	}
}

func TestTranscribeSavesEdits(t *testing.T) {
	h := newHarness(t)
	postDir := h.addPost(t, "5", "2024-01-06", FileVector)
	h.commands.edit = func(path string) error {
		return os.WriteFile(path, []byte("JON: hello\n---\nGARFIELD: no"), 0o644)
	}
	if err := h.life.Transcribe("5"); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got := mustRead(t, filepath.Join(postDir, FileTranscript)); got != "JON: hello\n---\nGARFIELD: no" {
		t.Fatalf("transcript = %q", got)
	}
	if fileExists(filepath.Join(h.loc.TempDir(), "transcript.5")) {
		t.Fatalf("working file should have been moved into the post")
	}
	if len(h.ui.questions) != 1 || h.ui.questions[0] != "Save transcript file?" {
		t.Fatalf("unexpected questions %v", h.ui.questions)
	}
}

func TestTranscribeUsesExistingTranscriptForAnyID(t *testing.T) {
	h := newHarness(t)
	postDir := h.addPost(t, "abcd:2024-01-07", "2024-01-07", FileVector)
	mustWrite(t, filepath.Join(postDir, FileTranscript), "already here")
	var seen string
	h.commands.edit = func(path string) error {
		seen = mustRead(t, path)
		return nil
	}
	if err := h.life.Transcribe("abcd:2024-01-07"); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if seen != "already here" {
		t.Fatalf("editor saw %q", seen)
	}
	if !strings.Contains(h.out.String(), "(transcript file already exists)") {
		t.Fatalf("missing notice: %q", h.out.String())
	}
}

func TestTranscribeNonNumericIDWithoutTranscriptFails(t *testing.T) {
	h := newHarness(t)
	h.addPost(t, "abcd:2024-01-07", "2024-01-07")
	if err := h.life.Transcribe("abcd:2024-01-07"); !errors.Is(err, ErrIDNotNumeric) {
		t.Fatalf("expected ErrIDNotNumeric, got %v", err)
	}
}

func TestTranscribeAbortKeepsPostUntouched(t *testing.T) {
	h := newHarness(t)
	postDir := h.addPost(t, "5", "2024-01-06")
	h.ui.confirmErr = prompt.ErrAborted
	h.commands.edit = func(path string) error {
		return os.WriteFile(path, []byte("changed"), 0o644)
	}
	if err := h.life.Transcribe("5"); !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if HasTranscript(postDir) {
		t.Fatalf("aborted transcribe must not write a transcript")
	}
}

func TestTranscribeMissingPost(t *testing.T) {
	h := newHarness(t)
	if err := h.life.Transcribe("42"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestReviseArchivesAndWaitsForPromotion(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "2024-01-07")
	h.addPost(t, "6", "2024-01-07", FileProps, FileTranscript, FileVector)
	generated := filepath.Join(h.loc.GeneratedDir(), "6")
	posts := filepath.Join(h.loc.PostsDir(), "6")
	h.ui.onWait = func() {
		if err := os.Rename(generated, posts); err != nil {
			t.Errorf("promote: %v", err)
		}
	}

	if err := h.life.Revise(context.Background(), "6"); err != nil {
		t.Fatalf("Revise: %v", err)
	}
	archived := filepath.Join(h.loc.OldDir(), "6")
	if got := mustRead(t, filepath.Join(archived, FilePrimary)); got != "old image" {
		t.Fatalf("archived post should keep the old image, got %q", got)
	}
	if got := mustRead(t, filepath.Join(posts, FileTitle)); got != "title of 6" {
		t.Fatalf("title not carried over: %q", got)
	}
	for _, name := range []string{FileProps, FileTranscript, FileVector} {
		if !fileExists(filepath.Join(posts, name)) {
			t.Fatalf("%s not carried over", name)
		}
	}
	if fileExists(filepath.Join(posts, FileSpecial)) {
		t.Fatalf("absent optional file must not be created")
	}
	if got := mustRead(t, filepath.Join(posts, FilePrimary)); got == "old image" {
		t.Fatalf("revised post should have a regenerated image")
	}
	if len(h.ui.questions) != 1 || h.ui.questions[0] != "Move old post to old directory?" {
		t.Fatalf("unexpected questions %v", h.ui.questions)
	}
	book, err := logbook.New(h.loc.LogPath())
	if err != nil {
		t.Fatal(err)
	}
	tail, _ := book.Tail(10)
	if len(tail) == 0 || !strings.Contains(tail[len(tail)-1], "6 promoted") {
		t.Fatalf("expected promotion to be logged, got %v", tail)
	}
}

func TestReviseRefusesSecondArchive(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "2024-01-07")
	h.addPost(t, "6", "2024-01-07")
	mustMkdir(t, filepath.Join(h.loc.OldDir(), "6"))
	if err := h.life.Revise(context.Background(), "6"); !errors.Is(err, ErrAlreadyRevised) {
		t.Fatalf("expected ErrAlreadyRevised, got %v", err)
	}
	if !dirExists(filepath.Join(h.loc.PostsDir(), "6")) {
		t.Fatalf("completed post must stay in place")
	}
}

func TestReviseRequiresTitle(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "2024-01-07")
	dir := h.addPost(t, "6", "2024-01-07")
	if err := os.Remove(filepath.Join(dir, FileTitle)); err != nil {
		t.Fatal(err)
	}
	if err := h.life.Revise(context.Background(), "6"); !errors.Is(err, ErrMissingPostFile) {
		t.Fatalf("expected ErrMissingPostFile, got %v", err)
	}
}

func TestReviseStopsWhenWaitCancelled(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "2024-01-07")
	h.addPost(t, "6", "2024-01-07")
	ctx, cancel := context.WithCancel(context.Background())
	h.ui.onWait = cancel
	if err := h.life.Revise(ctx, "6"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResolveReviseIDPriority(t *testing.T) {
	h := newHarness(t)
	h.addPost(t, "1", "2001-01-01")
	h.addPost(t, "2", "2001-01-02", FileProps)
	h.addPost(t, "3", "2001-01-03", FileVector)

	id, err := h.life.ResolveReviseID("")
	if err != nil {
		t.Fatalf("ResolveReviseID: %v", err)
	}
	if id != "2" {
		t.Fatalf("id = %s, want approved post 2 even though 1 sorts first", id)
	}

	if err := os.Remove(filepath.Join(h.loc.PostsDir(), "2", FileProps)); err != nil {
		t.Fatal(err)
	}
	id, err = h.life.ResolveReviseID("")
	if err != nil || id != "1" {
		t.Fatalf("fallback id = %s, %v; want 1", id, err)
	}

	if _, err := h.life.ResolveReviseID("99"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if got, err := h.life.ResolveReviseID("3"); err != nil || got != "3" {
		t.Fatalf("explicit id should be returned as-is, got %s, %v", got, err)
	}
}

func TestResolveTranscribeID(t *testing.T) {
	h := newHarness(t)
	h.addPost(t, "1", "2001-01-01")
	h.addPost(t, "2", "2001-01-02", FileVector, FileTranscript)
	if _, err := h.life.ResolveTranscribeID(""); !errors.Is(err, ErrNothingToTranscribe) {
		t.Fatalf("expected ErrNothingToTranscribe, got %v", err)
	}
	h.addPost(t, "3", "2001-01-03", FileVector)
	id, err := h.life.ResolveTranscribeID("")
	if err != nil || id != "3" {
		t.Fatalf("id = %s, %v; want 3", id, err)
	}
	if !strings.Contains(h.out.String(), "Post id: 3") {
		t.Fatalf("expected chosen id to be printed: %q", h.out.String())
	}
}

func TestResolveDate(t *testing.T) {
	h := newHarness(t)
	explicit := day("2010-10-10")
	if got, err := h.life.ResolveDate(&explicit, false); err != nil || !got.Equal(explicit) {
		t.Fatalf("explicit date = %v, %v", got, err)
	}
	if _, err := h.life.ResolveDate(nil, false); !errors.Is(err, ErrDateChoice) {
		t.Fatalf("expected ErrDateChoice, got %v", err)
	}
	if _, err := h.life.ResolveDate(&explicit, true); !errors.Is(err, ErrDateChoice) {
		t.Fatalf("expected ErrDateChoice, got %v", err)
	}
	if _, err := h.life.ResolveDate(nil, true); !errors.Is(err, recent.ErrNoCache) {
		t.Fatalf("expected ErrNoCache, got %v", err)
	}
	if err := recent.Append(h.loc.RecentFile(), day("1990-06-19")); err != nil {
		t.Fatal(err)
	}
	got, err := h.life.ResolveDate(nil, true)
	if err != nil || got.Format("2006-01-02") != "1990-06-19" {
		t.Fatalf("recent date = %v, %v", got, err)
	}
}

func TestShowRandomRecordsRecentAndSpawnsViewer(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "2024-01-07")
	h.addSource(t, "2024-01-08")
	mustWrite(t, filepath.Join(h.loc.SourceDir(), "notes.txt"), "not a comic")
	sundays := daterange.All()

	shown, err := h.life.Show(nil, sundays, true)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if shown.Format("2006-01-02") != "2024-01-07" {
		t.Fatalf("only the Sunday comic qualifies, got %s", shown.Format("2006-01-02"))
	}
	last, err := recent.Last(h.loc.RecentFile())
	if err != nil || !last.Equal(shown) {
		t.Fatalf("recent file not updated: %v, %v", last, err)
	}
	if len(h.commands.spawned) != 1 || h.commands.spawned[0][0] != ViewerClassShow {
		t.Fatalf("expected one show viewer, got %v", h.commands.spawned)
	}
	if len(h.commands.killed) != 1 || h.commands.killed[0] != ViewerClassShow {
		t.Fatalf("previous viewer should be killed first, got %v", h.commands.killed)
	}

	february, _ := daterange.Parse("02-01..02-28")
	if _, err := h.life.Show(nil, february, false); !errors.Is(err, ErrNoComics) {
		t.Fatalf("expected ErrNoComics, got %v", err)
	}
	missing := day("1980-01-01")
	if _, err := h.life.Show(&missing, daterange.All(), false); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestStateOf(t *testing.T) {
	h := newHarness(t)
	h.addPost(t, "1", "2001-01-01")
	h.addPost(t, "2", "2001-01-02", FileVector)
	h.addPost(t, "3", "2001-01-03", FileVector, FileTranscript)
	mustMkdir(t, filepath.Join(h.loc.GeneratedDir(), "4"))
	mustMkdir(t, filepath.Join(h.loc.OldDir(), "5"))

	cases := map[string]State{
		"1": StateCompleted,
		"2": StateRevised,
		"3": StateTranscribed,
		"4": StateGenerated,
		"5": StateArchived,
		"6": StateNoPost,
	}
	for id, want := range cases {
		got, err := h.life.StateOf(id)
		if err != nil {
			t.Fatalf("StateOf(%s): %v", id, err)
		}
		if got != want {
			t.Fatalf("StateOf(%s) = %s, want %s", id, got, want)
		}
	}
}

func TestGenerateName(t *testing.T) {
	rng := random.New(3)
	sunday := GenerateName(day("2024-01-07"), rng)
	if !strings.HasSuffix(sunday, ":2024-01-07") || len(sunday) != 4+len(":2024-01-07") {
		t.Fatalf("unexpected name %q", sunday)
	}
	if code := sunday[:4]; strings.ToUpper(code) != code {
		t.Fatalf("sunday code should be upper case, got %q", code)
	}
	weekday := GenerateName(day("2024-01-08"), rng)
	if code := weekday[:4]; strings.ToLower(code) != code {
		t.Fatalf("weekday code should be lower case, got %q", code)
	}
}

func TestRandomWatermarkSkipsBlankLines(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 50; i++ {
		mark, err := h.life.RandomWatermark()
		if err != nil {
			t.Fatal(err)
		}
		if mark != "first mark" && mark != "second mark" {
			t.Fatalf("unexpected watermark %q", mark)
		}
	}
	mustWrite(t, h.loc.WatermarksFile(), "\n  \n")
	if _, err := h.life.RandomWatermark(); !errors.Is(err, ErrNoWatermarks) {
		t.Fatalf("expected ErrNoWatermarks, got %v", err)
	}
}

func TestShowIgnoresNonComicEntries(t *testing.T) {
	h := newHarness(t)
	mustWrite(t, filepath.Join(h.loc.SourceDir(), "2024-01-07.txt"), "notes")
	mustMkdir(t, filepath.Join(h.loc.SourceDir(), "2024-01-08"))

	if _, err := h.life.Show(nil, daterange.All(), false); !errors.Is(err, ErrNoComics) {
		t.Fatalf("expected ErrNoComics, got %v", err)
	}
	if len(h.commands.spawned) != 0 {
		t.Fatalf("no viewer should be spawned, got %v", h.commands.spawned)
	}
	if _, err := recent.Last(h.loc.RecentFile()); !errors.Is(err, recent.ErrNoCache) {
		t.Fatalf("recent file should not be written, got %v", err)
	}

	h.addSource(t, "2024-01-09")
	shown, err := h.life.Show(nil, daterange.All(), false)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if got := shown.Format("2006-01-02"); got != "2024-01-09" {
		t.Fatalf("shown %s, want the only real comic", got)
	}
}
