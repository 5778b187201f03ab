package autosave

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Form groups the controllers whose drafts are discarded together on submit.
type Form struct {
	id string

	mu          sync.Mutex
	controllers []*Controller
	submitted   bool
}

func newForm(id string) *Form {
	return &Form{id: id}
}

// ID returns the form identifier.
func (f *Form) ID() string {
	return f.id
}

// add binds c to the form. It reports false once the form was submitted.
func (f *Form) add(c *Controller) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitted {
		return false
	}
	f.controllers = append(f.controllers, c)
	return true
}

// Controllers returns the controllers bound to the form.
func (f *Form) Controllers() []*Controller {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Controller, len(f.controllers))
	copy(out, f.controllers)
	return out
}

// Submitted reports whether Submit has run.
func (f *Form) Submitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

// Submit clears the draft of every bound controller. Removal errors are
// joined. A later call retries only the drafts whose removal failed, so once
// every draft is gone it does nothing.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	f.submitted = true
	controllers := make([]*Controller, len(f.controllers))
	copy(controllers, f.controllers)
	f.mu.Unlock()

	var errs []error
	for _, c := range controllers {
		if err := c.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fields returns zap fields describing the form, for logging.
func (f *Form) fields() []zap.Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	return []zap.Field{zap.String("form.id", f.id), zap.Int("fields", len(f.controllers))}
}
