package autosave

import "sync"

// Field is an editable text surface with a stable identifier.
type Field interface {
	ID() string
	Value() string
	SetValue(string)
}

// TextField is a Field held in memory. It is safe for concurrent use.
type TextField struct {
	id string

	mu    sync.RWMutex
	value string
}

// NewTextField creates a field with initial content.
func NewTextField(id, initial string) *TextField {
	return &TextField{id: id, value: initial}
}

// ID implements Field.
func (f *TextField) ID() string {
	return f.id
}

// Value implements Field.
func (f *TextField) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// SetValue implements Field.
func (f *TextField) SetValue(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}
