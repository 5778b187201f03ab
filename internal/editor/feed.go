package editor

import (
	"github.com/fyrsmithlabs/notedraft/internal/autosave"
)

const feedBuffer = 64

// Feed carries save events from autosave controllers to the editor model.
type Feed chan autosave.SaveEvent

// NewFeed creates a buffered feed.
func NewFeed() Feed {
	return make(Feed, feedBuffer)
}

// Hook is an autosave saved-hook. Events are dropped when the buffer is full
// so a slow UI never stalls a controller.
func (f Feed) Hook(ev autosave.SaveEvent) {
	select {
	case f <- ev:
	default:
	}
}
