package recovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const previewLines = 6

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	draftStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)
)

// Terminal asks in the terminal with a small bubbletea dialog.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithInput sets the input the dialog reads keys from.
func WithInput(r io.Reader) TerminalOption {
	return func(t *Terminal) { t.in = r }
}

// WithOutput sets where the dialog is drawn.
func WithOutput(w io.Writer) TerminalOption {
	return func(t *Terminal) { t.out = w }
}

// NewTerminal creates a terminal prompt on stdin/stdout.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Confirm implements Prompt. Anything but an explicit yes is a decline.
func (t *Terminal) Confirm(ctx context.Context, req Request) (bool, error) {
	p := tea.NewProgram(newDialog(req),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
		tea.WithoutSignalHandler(),
	)

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return false, ErrUnavailable
		}
		return false, fmt.Errorf("running recovery dialog: %w", err)
	}

	d, ok := final.(dialog)
	if !ok {
		return false, fmt.Errorf("unexpected dialog model %T", final)
	}
	return d.accepted, nil
}

// dialog is the bubbletea model of the confirmation.
type dialog struct {
	req      Request
	accepted bool
	done     bool
}

func newDialog(req Request) dialog {
	return dialog{req: req}
}

// Init implements tea.Model.
func (d dialog) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (d dialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch key.String() {
	case "y", "Y":
		d.accepted = true
		d.done = true
		return d, tea.Quit
	case "n", "N", "enter", "esc", "ctrl+c", "q":
		d.accepted = false
		d.done = true
		return d, tea.Quit
	}
	return d, nil
}

// View implements tea.Model.
func (d dialog) View() string {
	if d.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Recover draft"))
	b.WriteString("\n\n")
	b.WriteString(Message(d.req))
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(draftStyle.Render(preview(d.req.Draft, previewLines))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d bytes saved, %d bytes in field", len(d.req.Draft), len(d.req.Current))))
	b.WriteString("\n\n")
	b.WriteString(keyStyle.Render("y") + dimStyle.Render(" restore  ") + keyStyle.Render("n") + dimStyle.Render(" keep current"))
	b.WriteString("\n")
	return b.String()
}

// preview returns at most n lines of text, marking truncation.
func preview(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return text
	}
	return strings.Join(lines[:n], "\n") + "\n" + fmt.Sprintf("… %d more lines", len(lines)-n)
}
