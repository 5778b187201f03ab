package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notedraft/internal/draftstore"
	"github.com/fyrsmithlabs/notedraft/internal/logging"
	"github.com/fyrsmithlabs/notedraft/internal/recovery"
)

// ErrUnknownForm is returned by Submit for a form with no registered field.
var ErrUnknownForm = errors.New("unknown form")

// Registration asks for autosave on one field.
type Registration struct {
	Field Field

	// FormID names the form whose submission clears this field's draft.
	// Empty means the draft is never cleared by a submission.
	FormID string

	// Interval overrides the registrar's tick period when positive.
	Interval time.Duration
}

// Registrar creates controllers for registered fields and groups them by form.
// It is the entry point through which the store and prompt are injected.
type Registrar struct {
	store  draftstore.Store
	prompt recovery.Prompt
	opts   options
	logger *logging.Logger
	ins    *instruments

	regMu sync.Mutex // serializes Register, and with it recovery prompts

	mu          sync.Mutex
	controllers map[string]*Controller
	order       []*Controller
	forms       map[string]*Form
	startCtx    context.Context // non-nil once Start ran
	closed      bool
}

// NewRegistrar creates a registrar. opts apply to every controller it builds.
func NewRegistrar(store draftstore.Store, prompt recovery.Prompt, opts ...Option) *Registrar {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.Nop()
	}
	o.logger = logger

	return &Registrar{
		store:       store,
		prompt:      prompt,
		opts:        o,
		logger:      logger.Named("registrar"),
		ins:         newInstruments(o, logger),
		controllers: make(map[string]*Controller),
		forms:       make(map[string]*Form),
	}
}

// Register builds a controller for each registration and returns them in
// order. Registrations without a field id, whose id is already registered, or
// whose form was already submitted are skipped. Recovery prompts run one at a time, in registration order.
// If Start already ran, the new controllers start immediately.
func (r *Registrar) Register(ctx context.Context, regs ...Registration) []*Controller {
	r.regMu.Lock()
	defer r.regMu.Unlock()

	out := make([]*Controller, 0, len(regs))

	for _, reg := range regs {
		if reg.Field == nil || reg.Field.ID() == "" {
			r.logger.Debug(ctx, "skipping field without id")
			continue
		}
		id := reg.Field.ID()
		fieldCtx := logging.WithFieldID(ctx, id)
		if reg.FormID != "" {
			fieldCtx = logging.WithFormID(fieldCtx, reg.FormID)
		}

		r.mu.Lock()
		_, dup := r.controllers[id]
		closed := r.closed
		form := r.forms[reg.FormID]
		r.mu.Unlock()
		if closed {
			r.logger.Warn(fieldCtx, "registrar closed, skipping field")
			continue
		}
		if dup {
			r.logger.Warn(fieldCtx, "field already registered, skipping")
			continue
		}
		if form != nil && form.Submitted() {
			r.logger.Warn(fieldCtx, "form already submitted, skipping field")
			continue
		}

		o := r.opts
		if reg.Interval > 0 {
			o.interval = reg.Interval
		}

		c, err := newController(fieldCtx, reg.Field, r.store, r.prompt, o, r.ins)
		if err != nil {
			r.logger.Warn(fieldCtx, "cannot autosave field", zap.Error(err))
			continue
		}

		r.mu.Lock()
		bound := true
		if reg.FormID != "" {
			f, ok := r.forms[reg.FormID]
			if !ok {
				f = newForm(reg.FormID)
				r.forms[reg.FormID] = f
			}
			bound = f.add(c)
		}
		if bound {
			r.controllers[id] = c
			r.order = append(r.order, c)
		}
		startCtx := r.startCtx
		r.mu.Unlock()

		if !bound {
			// Submitted while recovery was prompting.
			r.logger.Warn(fieldCtx, "form already submitted, skipping field")
			if err := c.Clear(fieldCtx); err != nil {
				r.logger.Warn(fieldCtx, "clearing late field failed", zap.Error(err))
			}
			continue
		}

		if startCtx != nil {
			c.Start(startCtx)
		}
		r.logger.Debug(fieldCtx, "field registered", zap.Duration("interval", c.Interval()))
		out = append(out, c)
	}

	return out
}

// Controller returns the controller of a field id.
func (r *Registrar) Controller(fieldID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[fieldID]
	return c, ok
}

// Controllers returns all controllers in registration order.
func (r *Registrar) Controllers() []*Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Controller, len(r.order))
	copy(out, r.order)
	return out
}

// Form returns the form with the given id, or nil.
func (r *Registrar) Form(id string) *Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forms[id]
}

// Submit clears the drafts of the fields bound to formID. A repeated call only
// retries removals that failed before.
func (r *Registrar) Submit(ctx context.Context, formID string) error {
	f := r.Form(formID)
	if f == nil {
		return fmt.Errorf("%w: %q", ErrUnknownForm, formID)
	}
	ctx = logging.WithFormID(ctx, formID)
	if f.Submitted() {
		r.logger.Debug(ctx, "form already submitted")
	}
	err := f.Submit(ctx)
	if err != nil {
		r.logger.Warn(ctx, "form submitted with errors", append(f.fields(), zap.Error(err))...)
		return err
	}
	r.logger.Info(ctx, "form submitted, drafts cleared", f.fields()...)
	return nil
}

// Start starts the timer of every controller, including ones registered later.
func (r *Registrar) Start(ctx context.Context) {
	r.mu.Lock()
	if r.closed || r.startCtx != nil {
		r.mu.Unlock()
		return
	}
	r.startCtx = ctx
	controllers := make([]*Controller, len(r.order))
	copy(controllers, r.order)
	r.mu.Unlock()

	for _, c := range controllers {
		c.Start(ctx)
	}
}

// Close detaches every controller that is not cleared. Stored drafts are kept.
func (r *Registrar) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	controllers := make([]*Controller, len(r.order))
	copy(controllers, r.order)
	r.mu.Unlock()

	for _, c := range controllers {
		c.Stop()
	}
}
