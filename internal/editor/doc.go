// Package editor is the terminal note editor.
//
// Each manifest field is a textarea backed by an autosave.TextField. Typing
// updates the field; the autosave controllers persist it on their own timers
// and report successful saves through a Feed, which the model turns into a
// transient "Draft saved" indicator and a sparkline of saved sizes.
package editor
