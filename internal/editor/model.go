package editor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/notedraft/internal/autosave"
	"github.com/fyrsmithlabs/notedraft/internal/manifest"
)

// SavedIndicatorDuration is how long "Draft saved" stays visible after a save.
const SavedIndicatorDuration = 2 * time.Second

const (
	defaultWidth  = 72
	defaultHeight = 6
)

// Submitter clears the drafts of a submitted form.
type Submitter interface {
	Submit(ctx context.Context, formID string) error
}

// Note is the content of a submitted form.
type Note struct {
	Form        string            `json:"form"`
	Fields      map[string]string `json:"fields"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

type fieldView struct {
	def   manifest.Field
	form  string
	text  *autosave.TextField
	input textarea.Model
}

// Model is the bubbletea model of the editor.
type Model struct {
	title     string
	fields    []fieldView
	focus     int
	submitter Submitter
	feed      Feed
	now       func() time.Time

	savedSeq   int
	savedShown bool
	lastSave   autosave.SaveEvent
	sizes      []float64

	submitted map[string]bool
	notes     []Note
	err       error
	quitting  bool
}

// Message types
type savedMsg autosave.SaveEvent
type hideSavedMsg struct{ seq int }
type submittedMsg struct {
	note Note
	err  error
}

// NewModel builds the editor for m. texts must be the fields returned by
// Registrations for the same manifest, after recovery has run.
func NewModel(title string, m *manifest.Manifest, texts []*autosave.TextField, submitter Submitter, feed Feed) Model {
	fields := make([]fieldView, 0, len(m.Fields))
	for i, f := range m.Fields {
		input := textarea.New()
		input.Placeholder = f.Placeholder
		input.ShowLineNumbers = false
		input.CharLimit = 0
		input.SetWidth(defaultWidth)
		input.SetHeight(defaultHeight)
		input.SetValue(texts[i].Value())
		if i == 0 {
			input.Focus()
		}
		fields = append(fields, fieldView{def: f, form: m.FormOf(f), text: texts[i], input: input})
	}

	return Model{
		title:     title,
		fields:    fields,
		submitter: submitter,
		feed:      feed,
		now:       time.Now,
		sizes:     make([]float64, 0, historySize),
		submitted: make(map[string]bool),
	}
}

// waitForSave blocks until a save event arrives on feed.
func waitForSave(feed Feed) tea.Cmd {
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-feed
		if !ok {
			return nil
		}
		return savedMsg(ev)
	}
}

func hideSavedAfter(seq int) tea.Cmd {
	return tea.Tick(SavedIndicatorDuration, func(time.Time) tea.Msg {
		return hideSavedMsg{seq: seq}
	})
}

// Init starts listening for save events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForSave(m.feed))
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+s":
			return m, m.submit()
		case "tab":
			return m, m.moveFocus(1)
		case "shift+tab":
			return m, m.moveFocus(-1)
		}
		return m, m.updateFocused(msg)

	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width < 20 {
			width = 20
		}
		for i := range m.fields {
			m.fields[i].input.SetWidth(width)
		}
		return m, nil

	case savedMsg:
		m.savedSeq++
		m.savedShown = true
		m.lastSave = autosave.SaveEvent(msg)
		m.sizes = appendToHistory(m.sizes, float64(msg.Bytes))
		return m, tea.Batch(waitForSave(m.feed), hideSavedAfter(m.savedSeq))

	case hideSavedMsg:
		if msg.seq == m.savedSeq {
			m.savedShown = false
		}
		return m, nil

	case submittedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.submitted[msg.note.Form] = true
		m.notes = append(m.notes, msg.note)
		if m.allSubmitted() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	return m, m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	f := &m.fields[m.focus]
	if m.submitted[f.form] {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.text.SetValue(f.input.Value())
	return cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.fields) < 2 {
		return nil
	}
	m.fields[m.focus].input.Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.fields[m.focus].input.Focus()
}

// submit snapshots the focused field's form and clears its drafts.
func (m Model) submit() tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	form := m.fields[m.focus].form
	if m.submitted[form] {
		return nil
	}
	note := Note{Form: form, Fields: make(map[string]string), SubmittedAt: m.now()}
	for _, f := range m.fields {
		if f.form == form {
			note.Fields[f.def.ID] = f.input.Value()
		}
	}
	submitter := m.submitter
	return func() tea.Msg {
		if submitter == nil {
			return submittedMsg{note: note}
		}
		return submittedMsg{note: note, err: submitter.Submit(context.Background(), form)}
	}
}

func (m Model) allSubmitted() bool {
	for _, f := range m.fields {
		if !m.submitted[f.form] {
			return false
		}
	}
	return true
}

// Notes returns the submitted notes in submission order.
func (m Model) Notes() []Note {
	return m.notes
}

// Quitting reports whether the editor asked to exit.
func (m Model) Quitting() bool {
	return m.quitting
}

// View renders the editor
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(m.title))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		label := labelStyle.Render(f.def.Title())
		if i == m.focus {
			label = focusedLabelStyle.Render("▸ " + f.def.Title())
		}
		if m.submitted[f.form] {
			label += dimStyle.Render("  (submitted)")
		}
		b.WriteString(label + "\n")
		b.WriteString(f.input.View() + "\n\n")
	}

	status := dimStyle.Render(" ")
	if m.savedShown {
		status = savedStyle.Render("✓ Draft saved") +
			dimStyle.Render(fmt.Sprintf("  %s, %d bytes", m.lastSave.FieldID, m.lastSave.Bytes))
	}
	b.WriteString(status + "\n")
	b.WriteString(dimStyle.Render("Saved sizes ") + createSparkline(m.sizes) + "\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("⚠ "+m.err.Error()) + "\n")
	}

	b.WriteString(footerStyle.Render("[ctrl+s] submit  [tab] next field  [esc] quit, keep drafts"))
	return b.String()
}
