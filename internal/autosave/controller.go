package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notedraft/internal/draftstore"
	"github.com/fyrsmithlabs/notedraft/internal/logging"
	"github.com/fyrsmithlabs/notedraft/internal/recovery"
)

var (
	// ErrMissingID is returned for a field without an identifier.
	ErrMissingID = errors.New("field has no id")

	// ErrNilStore is returned when no store is given.
	ErrNilStore = errors.New("draft store is required")
)

// Controller autosaves one field.
type Controller struct {
	field    Field
	key      string
	store    draftstore.Store
	interval time.Duration
	logger   *logging.Logger
	ins      *instruments
	onSaved  func(SaveEvent)

	mu        sync.Mutex
	lastSaved string
	terminal  State // StateCleared or StateDetached once finished, else StateClean
	prompting bool
	prompted  bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewController binds a controller to field and runs draft recovery.
//
// A stored draft that is non-empty and differs from the field's content is
// offered to prompt exactly once. On accept the field takes the draft; on
// decline, or if the prompt fails, the field and the stored draft are left
// as they are. A nil prompt behaves like recovery.Unavailable.
//
// The returned controller does not tick until Start is called.
func NewController(ctx context.Context, field Field, store draftstore.Store, prompt recovery.Prompt, opts ...Option) (*Controller, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newController(ctx, field, store, prompt, o, nil)
}

func newController(ctx context.Context, field Field, store draftstore.Store, prompt recovery.Prompt, o options, ins *instruments) (*Controller, error) {
	if field == nil || field.ID() == "" {
		return nil, ErrMissingID
	}
	if store == nil {
		return nil, ErrNilStore
	}
	if prompt == nil {
		prompt = recovery.Unavailable{}
	}
	logger := o.logger
	if logger == nil {
		logger = logging.Nop()
	}
	if ins == nil {
		ins = newInstruments(o, logger)
	}

	c := &Controller{
		field:     field,
		key:       draftstore.Key(field.ID()),
		store:     store,
		interval:  o.interval,
		logger:    logger.Named("autosave").With(zap.String("field.id", field.ID())),
		ins:       ins,
		onSaved:   o.onSaved,
		lastSaved: field.Value(),
		terminal:  StateClean,
	}

	c.recover(ctx, prompt)
	return c, nil
}

// recover offers a stored draft to the user.
func (c *Controller) recover(ctx context.Context, prompt recovery.Prompt) {
	ctx, span := c.ins.tracer.Start(ctx, "autosave.recover")
	defer span.End()
	span.SetAttributes(attribute.String("field.id", c.field.ID()))

	draft, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		// Unreadable storage behaves like an absent draft.
		c.logger.Warn(ctx, "reading draft failed, skipping recovery", zap.Error(err))
		span.RecordError(err)
		ok = false
	}

	current := c.field.Value()
	if !ok || draft == "" || draft == current {
		span.SetAttributes(attribute.String("outcome", "none"))
		return
	}

	c.mu.Lock()
	c.prompting = true
	c.prompted = true
	c.mu.Unlock()

	accepted, err := prompt.Confirm(ctx, recovery.Request{
		FieldID: c.field.ID(),
		Draft:   draft,
		Current: current,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompting = false

	outcome := "declined"
	switch {
	case err != nil:
		outcome = "unavailable"
		c.logger.Info(ctx, "recovery prompt unavailable, keeping current content", zap.Error(err))
	case accepted:
		outcome = "accepted"
		c.field.SetValue(draft)
		c.lastSaved = draft
		c.logger.Info(ctx, "draft restored", logging.Content("draft", draft))
	default:
		c.logger.Info(ctx, "draft recovery declined")
	}

	span.SetAttributes(attribute.String("outcome", outcome))
	c.ins.countRecovery(ctx, c.field.ID(), outcome)
}

// FieldID returns the id of the bound field.
func (c *Controller) FieldID() string {
	return c.field.ID()
}

// Key returns the persistence key of the bound field.
func (c *Controller) Key() string {
	return c.key
}

// Interval returns the tick period.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// LastSaved returns the content last known to be persisted.
func (c *Controller) LastSaved() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaved
}

// Prompted reports whether recovery asked the user.
func (c *Controller) Prompted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompted
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.terminal.Terminal():
		return c.terminal
	case c.prompting:
		return StateRecovered
	case c.field.Value() != c.lastSaved:
		return StateDirty
	default:
		return StateClean
	}
}

// Tick compares the field with the last saved value and persists a change.
//
// Empty content is never written. A failed write leaves the last saved value
// unchanged so the next tick retries.
func (c *Controller) Tick(ctx context.Context) TickResult {
	c.mu.Lock()

	if c.terminal.Terminal() {
		c.mu.Unlock()
		return TickInactive
	}

	current := c.field.Value()
	if current == c.lastSaved {
		c.mu.Unlock()
		return TickClean
	}
	if current == "" {
		c.mu.Unlock()
		c.logger.Trace(ctx, "field emptied, not saving")
		return TickSkippedEmpty
	}

	ctx, span := c.ins.tracer.Start(ctx, "autosave.save")
	span.SetAttributes(
		attribute.String("field.id", c.field.ID()),
		attribute.Int("bytes", len(current)),
	)

	if err := c.store.Set(ctx, c.key, current); err != nil {
		c.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		c.ins.countSave(ctx, c.field.ID(), "failed")
		c.logger.Warn(ctx, "saving draft failed, will retry", zap.Error(err), logging.Content("content", current))
		return TickFailed
	}

	c.lastSaved = current
	onSaved := c.onSaved
	c.mu.Unlock()

	span.End()
	c.ins.countSave(ctx, c.field.ID(), "saved")
	c.logger.Debug(ctx, "draft saved", logging.Content("content", current))

	if onSaved != nil {
		onSaved(SaveEvent{FieldID: c.field.ID(), Bytes: len(current), At: time.Now()})
	}
	return TickSaved
}

// Start runs Tick every interval until ctx is done or the controller is
// cleared or stopped. Calling Start on a running or finished controller does nothing.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal.Terminal() || c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
}

func (c *Controller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Tick(ctx) == TickInactive {
				return
			}
		}
	}
}

// halt stops the timer goroutine. Caller must not hold c.mu.
func (c *Controller) halt(cancel context.CancelFunc, done chan struct{}) {
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Stop cancels the timer and keeps the stored draft. The controller is
// detached and ignores further ticks. Stop after Clear does nothing.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.terminal.Terminal() {
		c.mu.Unlock()
		return
	}
	c.terminal = StateDetached
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	c.halt(cancel, done)
	c.logger.Debug(context.Background(), "autosave detached")
}

// Clear cancels the timer and removes the stored draft. It is called when the
// field's form is submitted. Once the draft is removed later calls do nothing.
// If removal fails the controller is left detached, keeping the timer stopped,
// and the next Clear tries again.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	if c.terminal == StateCleared {
		c.mu.Unlock()
		return nil
	}
	cancel, done := c.cancel, c.done

	ctx, span := c.ins.tracer.Start(ctx, "autosave.clear")
	defer span.End()
	span.SetAttributes(attribute.String("field.id", c.field.ID()))

	err := c.store.Remove(ctx, c.key)
	if err != nil {
		c.terminal = StateDetached
	} else {
		c.terminal = StateCleared
	}
	c.mu.Unlock()

	c.halt(cancel, done)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn(ctx, "removing draft failed", zap.Error(err))
		return fmt.Errorf("clearing draft %s: %w", c.key, err)
	}

	c.ins.countClear(ctx, c.field.ID())
	c.logger.Debug(ctx, "draft cleared")
	return nil
}
