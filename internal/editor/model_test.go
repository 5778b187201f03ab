package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/notedraft/internal/autosave"
	"github.com/fyrsmithlabs/notedraft/internal/manifest"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	forms []string
	err   error
}

func (f *fakeSubmitter) Submit(_ context.Context, formID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forms = append(f.forms, formID)
	return f.err
}

func twoFormManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Form: "note",
		Fields: []manifest.Field{
			{ID: "title", Label: "Title"},
			{ID: "body", Label: "Body"},
			{ID: "comment", Form: "reply"},
		},
	}
}

func newTestModel(t *testing.T, m *manifest.Manifest, sub Submitter) (Model, []*autosave.TextField) {
	t.Helper()
	_, texts := Registrations(m)
	return NewModel("notedraft", m, texts, sub, NewFeed()), texts
}

func typeText(t *testing.T, model Model, s string) Model {
	t.Helper()
	for _, r := range s {
		updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		model = updated.(Model)
	}
	return model
}

func TestRegistrations(t *testing.T) {
	m := &manifest.Manifest{
		Form: "note",
		Fields: []manifest.Field{
			{ID: "title", Initial: "Untitled"},
			{ID: "comment", Form: "reply"},
		},
	}
	require.NoError(t, m.Fields[1].Interval.UnmarshalText([]byte("5s")))

	regs, texts := Registrations(m)
	require.Len(t, regs, 2)
	require.Len(t, texts, 2)

	assert.Equal(t, "note", regs[0].FormID)
	assert.Equal(t, "Untitled", regs[0].Field.Value())
	assert.Equal(t, time.Duration(0), regs[0].Interval)
	assert.Equal(t, "reply", regs[1].FormID)
	assert.Equal(t, 5*time.Second, regs[1].Interval)
	assert.Same(t, texts[1], regs[1].Field)
}

func TestNewModel(t *testing.T) {
	m := manifest.Default()
	_, texts := Registrations(m)
	texts[0].SetValue("recovered draft")

	model := NewModel("notedraft", m, texts, nil, nil)

	require.Len(t, model.fields, 1)
	assert.Equal(t, "recovered draft", model.fields[0].input.Value())
	assert.True(t, model.fields[0].input.Focused())
	assert.NotNil(t, model.Init())
}

func TestModel_TypingUpdatesField(t *testing.T) {
	model, texts := newTestModel(t, twoFormManifest(), nil)

	model = typeText(t, model, "hello")

	assert.Equal(t, "hello", texts[0].Value())
	assert.Equal(t, "", texts[1].Value())
}

func TestModel_TabMovesFocus(t *testing.T) {
	model, texts := newTestModel(t, twoFormManifest(), nil)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model = updated.(Model)
	assert.Equal(t, 1, model.focus)
	model = typeText(t, model, "b")
	assert.Equal(t, "b", texts[1].Value())

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	model = updated.(Model)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	model = updated.(Model)
	assert.Equal(t, 2, model.focus)
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(key.String(), func(t *testing.T) {
			model, _ := newTestModel(t, twoFormManifest(), nil)
			updated, cmd := model.Update(key)
			m := updated.(Model)
			assert.True(t, m.Quitting())
			assert.NotNil(t, cmd)
			assert.Empty(t, m.Notes())
			assert.Equal(t, "", m.View())
		})
	}
}

func TestModel_SavedIndicator(t *testing.T) {
	model, _ := newTestModel(t, twoFormManifest(), nil)

	updated, cmd := model.Update(savedMsg{FieldID: "title", Bytes: 5, At: time.Now()})
	model = updated.(Model)
	assert.NotNil(t, cmd)
	assert.True(t, model.savedShown)
	assert.Equal(t, []float64{5}, model.sizes)
	assert.Contains(t, model.View(), "Draft saved")

	updated, _ = model.Update(savedMsg{FieldID: "title", Bytes: 9})
	model = updated.(Model)

	// A hide from the first save must not hide the second.
	updated, _ = model.Update(hideSavedMsg{seq: 1})
	model = updated.(Model)
	assert.True(t, model.savedShown)

	updated, _ = model.Update(hideSavedMsg{seq: 2})
	model = updated.(Model)
	assert.False(t, model.savedShown)
	assert.NotContains(t, model.View(), "Draft saved")
	assert.Equal(t, []float64{5, 9}, model.sizes)
}

func TestModel_SizeHistoryBounded(t *testing.T) {
	model, _ := newTestModel(t, twoFormManifest(), nil)
	for i := 0; i < historySize+10; i++ {
		updated, _ := model.Update(savedMsg{FieldID: "title", Bytes: i})
		model = updated.(Model)
	}
	assert.Len(t, model.sizes, historySize)
	assert.Equal(t, float64(historySize+9), model.sizes[historySize-1])
}

func TestModel_Submit(t *testing.T) {
	sub := &fakeSubmitter{}
	model, _ := newTestModel(t, twoFormManifest(), sub)
	model.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	model = typeText(t, model, "T")
	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model = typeText(t, updated.(Model), "B")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg := cmd()
	updated, quit := model.Update(msg)
	model = updated.(Model)

	assert.Equal(t, []string{"note"}, sub.forms)
	require.Len(t, model.Notes(), 1)
	assert.Equal(t, Note{
		Form:        "note",
		Fields:      map[string]string{"title": "T", "body": "B"},
		SubmittedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, model.Notes()[0])
	assert.Nil(t, quit, "reply form is still open")
	assert.Contains(t, model.View(), "(submitted)")

	// Submitting the same form again does nothing.
	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)

	// Typing into a submitted form is ignored.
	before := model.fields[1].input.Value()
	model = typeText(t, model, "x")
	assert.Equal(t, before, model.fields[1].input.Value())

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model = updated.(Model)
	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	updated, quit = model.Update(cmd())
	model = updated.(Model)

	assert.Equal(t, []string{"note", "reply"}, sub.forms)
	assert.Len(t, model.Notes(), 2)
	assert.True(t, model.Quitting())
	assert.NotNil(t, quit)
}

func TestModel_SubmitError(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("store unavailable")}
	model, _ := newTestModel(t, manifest.Default(), sub)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	updated, quit := model.Update(cmd())
	model = updated.(Model)

	assert.Nil(t, quit)
	assert.Empty(t, model.Notes())
	assert.Contains(t, model.View(), "store unavailable")
}

func TestModel_WindowSize(t *testing.T) {
	model, _ := newTestModel(t, twoFormManifest(), nil)
	before := model.fields[0].input.Width()

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	model = updated.(Model)

	assert.Less(t, model.fields[0].input.Width(), before)
	assert.Equal(t, model.fields[0].input.Width(), model.fields[2].input.Width())
}

func TestModel_View(t *testing.T) {
	model, _ := newTestModel(t, twoFormManifest(), nil)
	view := model.View()

	assert.Contains(t, view, "notedraft")
	assert.Contains(t, view, "Title")
	assert.Contains(t, view, "Body")
	assert.Contains(t, view, "comment")
	assert.Contains(t, view, "no saves yet")
	assert.Contains(t, view, "[ctrl+s]")
	assert.Contains(t, view, "[esc]")
}

func TestFeed_Hook(t *testing.T) {
	feed := make(Feed, 1)
	feed.Hook(autosave.SaveEvent{FieldID: "a"})
	feed.Hook(autosave.SaveEvent{FieldID: "b"})

	ev := <-feed
	assert.Equal(t, "a", ev.FieldID)
	assert.Len(t, feed, 0)
}

func TestWaitForSave(t *testing.T) {
	assert.Nil(t, waitForSave(nil))

	feed := NewFeed()
	feed.Hook(autosave.SaveEvent{FieldID: "notes", Bytes: 3})
	msg := waitForSave(feed)()
	assert.Equal(t, savedMsg{FieldID: "notes", Bytes: 3}, msg)

	close(feed)
	assert.Nil(t, waitForSave(feed)())
}
