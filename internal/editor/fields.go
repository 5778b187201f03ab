package editor

import (
	"github.com/fyrsmithlabs/notedraft/internal/autosave"
	"github.com/fyrsmithlabs/notedraft/internal/manifest"
)

// Registrations builds one autosave registration per manifest field. The
// returned text fields are in manifest order and back the editor's textareas.
func Registrations(m *manifest.Manifest) ([]autosave.Registration, []*autosave.TextField) {
	regs := make([]autosave.Registration, 0, len(m.Fields))
	fields := make([]*autosave.TextField, 0, len(m.Fields))
	for _, f := range m.Fields {
		tf := autosave.NewTextField(f.ID, f.Initial)
		fields = append(fields, tf)
		regs = append(regs, autosave.Registration{
			Field:    tf,
			FormID:   m.FormOf(f),
			Interval: f.Interval.Duration(),
		})
	}
	return regs, fields
}
