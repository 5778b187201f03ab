package recovery

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialog_Update(t *testing.T) {
	tests := []struct {
		name     string
		key      tea.KeyMsg
		accepted bool
		done     bool
	}{
		{"y accepts", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}}, true, true},
		{"Y accepts", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Y'}}, true, true},
		{"n declines", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, false, true},
		{"enter declines", tea.KeyMsg{Type: tea.KeyEnter}, false, true},
		{"esc declines", tea.KeyMsg{Type: tea.KeyEsc}, false, true},
		{"ctrl+c declines", tea.KeyMsg{Type: tea.KeyCtrlC}, false, true},
		{"other keys ignored", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, cmd := newDialog(Request{FieldID: "notes"}).Update(tt.key)

			d := updated.(dialog)
			assert.Equal(t, tt.accepted, d.accepted)
			assert.Equal(t, tt.done, d.done)
			if tt.done {
				assert.NotNil(t, cmd)
			} else {
				assert.Nil(t, cmd)
			}
		})
	}
}

func TestDialog_View(t *testing.T) {
	d := newDialog(Request{FieldID: "notes", Draft: "Buy milk", Current: "Buy"})

	view := d.View()
	assert.Contains(t, view, "Recover draft")
	assert.Contains(t, view, "A saved draft was found for notes")
	assert.Contains(t, view, "Buy milk")
	assert.Contains(t, view, "8 bytes saved, 3 bytes in field")

	updated, _ := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Empty(t, updated.View())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a\nb", preview("a\nb", 3))
	assert.Equal(t, "a\nb\n… 2 more lines", preview("a\nb\nc\nd", 2))
}

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y", true},
		{"n", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			term := NewTerminal(WithInput(strings.NewReader(tt.input)), WithOutput(io.Discard))
			got, err := term.Confirm(ctx, Request{FieldID: "notes", Draft: "Buy milk"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminal_ConfirmCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// An input that never answers.
	r, w := io.Pipe()
	defer w.Close()

	term := NewTerminal(WithInput(r), WithOutput(io.Discard))
	got, err := term.Confirm(ctx, Request{FieldID: "notes", Draft: "Buy milk"})
	assert.False(t, got)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
