// Package manifest loads the list of editable fields shown by the editor.
//
// A manifest is a TOML file:
//
//	form = "note"
//
//	[[field]]
//	id = "title"
//	label = "Title"
//
//	[[field]]
//	id = "body"
//	interval = "10s"
//	placeholder = "Write something..."
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fyrsmithlabs/notedraft/internal/config"
)

// Sentinel errors.
var (
	ErrInvalidTOML = errors.New("invalid manifest TOML")
	ErrInvalid     = errors.New("invalid manifest")
)

// DefaultForm is the form fields belong to when neither they nor the manifest name one.
const DefaultForm = "note"

// Manifest lists the fields of one editor page.
type Manifest struct {
	// Form is the default form of fields that do not set their own.
	Form   string  `toml:"form"`
	Fields []Field `toml:"field"`
}

// Field describes one editable field.
type Field struct {
	ID          string          `toml:"id"`
	Form        string          `toml:"form"`
	Label       string          `toml:"label"`
	Placeholder string          `toml:"placeholder"`
	Initial     string          `toml:"initial"`
	Interval    config.Duration `toml:"interval"`
}

// Default returns the single-field manifest used when no file is given.
func Default() *Manifest {
	return &Manifest{
		Form: DefaultForm,
		Fields: []Field{{
			ID:          "content",
			Label:       "Note",
			Placeholder: "Start typing. Drafts are saved automatically.",
		}},
	}
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates manifest TOML. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTOML, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if m.Form == "" {
		m.Form = DefaultForm
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the manifest has fields with unique ids.
func (m *Manifest) Validate() error {
	if len(m.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalid)
	}
	seen := make(map[string]bool, len(m.Fields))
	for i, f := range m.Fields {
		if f.ID == "" {
			return fmt.Errorf("%w: field %d has no id", ErrInvalid, i)
		}
		if strings.ContainsAny(f.ID, " \t\n/") {
			return fmt.Errorf("%w: field id %q contains whitespace or '/'", ErrInvalid, f.ID)
		}
		if seen[f.ID] {
			return fmt.Errorf("%w: duplicate field id %q", ErrInvalid, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// FormOf returns the form a field belongs to.
func (m *Manifest) FormOf(f Field) string {
	if f.Form != "" {
		return f.Form
	}
	return m.Form
}

// Title returns the label shown for a field, falling back to its id.
func (f Field) Title() string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}
