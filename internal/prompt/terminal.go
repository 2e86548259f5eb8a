package prompt

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

type keyMap struct {
	Accept key.Binding
	Abort  key.Binding
}

var keys = keyMap{
	Accept: key.NewBinding(key.WithKeys("enter", "y"), key.WithHelp("enter", "continue")),
	Abort:  key.NewBinding(key.WithKeys("ctrl+c", "esc", "n", "q"), key.WithHelp("esc", "abort")),
}

// Terminal runs each prompt as an inline bubbletea program.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal builds a terminal UI reading keys from in.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

func (t *Terminal) program(model tea.Model) *tea.Program {
	return tea.NewProgram(model, tea.WithInput(t.in), tea.WithOutput(t.out))
}

// Confirm shows question until the user accepts or aborts.
func (t *Terminal) Confirm(question string) error {
	final, err := t.program(newConfirmModel(question)).Run()
	if err != nil {
		return fmt.Errorf("prompt: run confirmation: %w", err)
	}
	if m, ok := final.(confirmModel); ok && m.accepted {
		return nil
	}
	return ErrAborted
}

// WaitFor shows a spinner next to label while polling done every interval.
func (t *Terminal) WaitFor(ctx context.Context, label string, interval time.Duration, done CheckFunc) error {
	program := t.program(newWaitModel(label, interval, done))
	stop := context.AfterFunc(ctx, program.Quit)
	defer stop()
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("prompt: run wait: %w", err)
	}
	m, ok := final.(waitModel)
	switch {
	case !ok:
		return ErrAborted
	case m.err != nil:
		return m.err
	case m.done:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return ErrAborted
	}
}

type confirmModel struct {
	question string
	accepted bool
	finished bool
}

func newConfirmModel(question string) confirmModel {
	return confirmModel{question: question}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Accept):
			m.accepted = true
			m.finished = true
			return m, tea.Quit
		case key.Matches(msg, keys.Abort):
			m.finished = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.finished {
		answer := "yes"
		if !m.accepted {
			answer = "aborted"
		}
		return fmt.Sprintf("%s %s\n", questionStyle.Render(m.question), hintStyle.Render(answer))
	}
	hint := fmt.Sprintf("(%s · %s)", keys.Accept.Help().Key+" "+keys.Accept.Help().Desc, keys.Abort.Help().Key+" "+keys.Abort.Help().Desc)
	return fmt.Sprintf("%s %s\n", questionStyle.Render(m.question), hintStyle.Render(hint))
}

type pollMsg struct{}

type waitModel struct {
	label    string
	interval time.Duration
	check    CheckFunc
	spinner  spinner.Model
	done     bool
	aborted  bool
	err      error
}

func newWaitModel(label string, interval time.Duration, check CheckFunc) waitModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	return waitModel{label: label, interval: interval, check: check, spinner: s}
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return pollMsg{} })
}

func (m waitModel) schedulePoll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Abort) && msg.String() == "ctrl+c" {
			m.aborted = true
			return m, tea.Quit
		}
		return m, nil
	case pollMsg:
		complete, err := m.check()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		if complete {
			m.done = true
			return m, tea.Quit
		}
		return m, m.schedulePoll()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m waitModel) View() string {
	if m.done {
		return hintStyle.Render(m.label+" · done") + "\n"
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), hintStyle.Render(m.label))
}
