package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`
form = "post"

[[field]]
id = "title"
label = "Title"

[[field]]
id = "body"
interval = "10s"
placeholder = "Write..."

[[field]]
id = "comment"
form = "reply"
initial = "hi"
`))
	require.NoError(t, err)

	require.Len(t, m.Fields, 3)
	assert.Equal(t, "post", m.Form)
	assert.Equal(t, "Title", m.Fields[0].Title())
	assert.Equal(t, "body", m.Fields[1].Title())
	assert.Equal(t, 10*time.Second, m.Fields[1].Interval.Duration())
	assert.Equal(t, time.Duration(0), m.Fields[0].Interval.Duration())
	assert.Equal(t, "post", m.FormOf(m.Fields[0]))
	assert.Equal(t, "reply", m.FormOf(m.Fields[2]))
	assert.Equal(t, "hi", m.Fields[2].Initial)
}

func TestParse_DefaultForm(t *testing.T) {
	m, err := Parse([]byte("[[field]]\nid = \"notes\"\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultForm, m.FormOf(m.Fields[0]))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		msg     string
	}{
		{"bad toml", "[[field]\nid=", ErrInvalidTOML, ""},
		{"no fields", `form = "x"`, ErrInvalid, "no fields"},
		{"missing id", "[[field]]\nlabel = \"x\"\n", ErrInvalid, "has no id"},
		{"duplicate", "[[field]]\nid = \"a\"\n[[field]]\nid = \"a\"\n", ErrInvalid, "duplicate"},
		{"slash", "[[field]]\nid = \"a/b\"\n", ErrInvalid, "whitespace"},
		{"unknown key", "[[field]]\nid = \"a\"\ncolour = \"red\"\n", ErrInvalid, "unknown keys"},
		{"bad interval", "[[field]]\nid = \"a\"\ninterval = \"soon\"\n", ErrInvalidTOML, ""},
		{"negative interval", "[[field]]\nid = \"a\"\ninterval = \"-1s\"\n", ErrInvalidTOML, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[field]]\nid = \"notes\"\n"), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "notes", m.Fields[0].ID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefault(t *testing.T) {
	m := Default()
	require.NoError(t, m.Validate())
	assert.Equal(t, "content", m.Fields[0].ID)
	assert.Equal(t, DefaultForm, m.FormOf(m.Fields[0]))
}
