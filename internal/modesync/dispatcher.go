package modesync

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/state"
)

// Failure records a mutation the transport could not get accepted.
type Failure struct {
	Request MutationRequest
	Err     error
	At      time.Time
}

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	Logger *slog.Logger
	// OnFailure is called for every asynchronous delivery failure.
	OnFailure func(Failure)
}

// Dispatcher applies edits to the store right away and queues the matching
// mutation request. Local edits are never rolled back; a later snapshot is
// the only thing that can correct them.
type Dispatcher struct {
	store     *state.Store
	registry  *Registry
	out       Sender
	logger    *slog.Logger
	onFailure func(Failure)

	mu      sync.Mutex
	lastErr *Failure
}

// NewDispatcher wires a dispatcher to its store, registry and transport.
func NewDispatcher(store *state.Store, registry *Registry, out Sender, opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:     store,
		registry:  registry,
		out:       out,
		logger:    logger,
		onFailure: opts.OnFailure,
	}
}

// SetField edits field of the entry at index and queues the request.
//
// Unknown fields, ill-typed values and missing entries fail before anything
// changes. Once the local edit is applied it stays, even when queuing fails;
// in that case the returned error matches ErrChannelUnavailable.
func (d *Dispatcher) SetField(mode modes.Type, index int, field string, value any) error {
	setter, ok := d.registry.Lookup(mode, field)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, mode, field)
	}
	if err := setter.check(value); err != nil {
		return err
	}

	f, err := d.applyAndQueue(setter, mode, index, field, value)
	if f != nil {
		d.notify(*f)
	}
	return err
}

// applyAndQueue holds the dispatcher lock so queue order matches local apply
// order.
func (d *Dispatcher) applyAndQueue(setter Setter, mode modes.Type, index int, field string, value any) (*Failure, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.store.Edit(mode, index, func(e modes.Entry) modes.Entry {
		return setter.Apply(e, value)
	})
	switch {
	case errors.Is(err, state.ErrNoEntry):
		return nil, fmt.Errorf("%w: %s[%d]", ErrUnknownEntry, mode, index)
	case errors.Is(err, state.ErrNoMode):
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	case err != nil:
		return nil, err
	}

	req := setter.Encode(mode, index, field, value)
	if err := d.out.Enqueue(req); err != nil {
		if !errors.Is(err, ErrChannelUnavailable) {
			err = fmt.Errorf("%w: %w", ErrChannelUnavailable, err)
		}
		f := Failure{Request: req, Err: err, At: time.Now()}
		d.lastErr = &f
		return &f, err
	}
	d.logger.Debug("mutation queued", "mode", mode, "index", index, "field", field)
	return nil, nil
}

// Failed reports that the transport could not deliver req. The local edit is
// left as is.
func (d *Dispatcher) Failed(req MutationRequest, err error) {
	f := Failure{Request: req, Err: err, At: time.Now()}
	d.mu.Lock()
	d.lastErr = &f
	d.mu.Unlock()
	d.notify(f)
}

// LastFailure returns the most recent delivery failure, if any.
func (d *Dispatcher) LastFailure() (Failure, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastErr == nil {
		return Failure{}, false
	}
	return *d.lastErr, true
}

func (d *Dispatcher) notify(f Failure) {
	d.logger.Warn("mutation not delivered",
		"mode", f.Request.Mode,
		"index", f.Request.Index,
		"field", f.Request.Field,
		"err", f.Err,
	)
	if d.onFailure != nil {
		d.onFailure(f)
	}
}

// Bool returns a typed setter for a boolean field.
func (d *Dispatcher) Bool(mode modes.Type, field string) BoolField {
	return BoolField{d: d, mode: mode, field: field}
}

// String returns a typed setter for an optional string field.
func (d *Dispatcher) String(mode modes.Type, field string) StringField {
	return StringField{d: d, mode: mode, field: field}
}

// Int returns a typed setter for an optional integer field.
func (d *Dispatcher) Int(mode modes.Type, field string) IntField {
	return IntField{d: d, mode: mode, field: field}
}

// BoolField sets one boolean field.
type BoolField struct {
	d     *Dispatcher
	mode  modes.Type
	field string
}

func (f BoolField) Set(index int, v bool) error {
	return f.d.SetField(f.mode, index, f.field, v)
}

// Toggle flips the current value of the field at index.
func (f BoolField) Toggle(index int) error {
	e, ok := f.d.store.Entry(f.mode, index)
	if !ok {
		return fmt.Errorf("%w: %s[%d]", ErrUnknownEntry, f.mode, index)
	}
	return f.Set(index, !e.Bool(f.field))
}

// StringField sets one optional string field.
type StringField struct {
	d     *Dispatcher
	mode  modes.Type
	field string
}

func (f StringField) Set(index int, v string) error {
	return f.d.SetField(f.mode, index, f.field, v)
}

// Clear unsets the field.
func (f StringField) Clear(index int) error {
	return f.d.SetField(f.mode, index, f.field, nil)
}

// IntField sets one optional integer field.
type IntField struct {
	d     *Dispatcher
	mode  modes.Type
	field string
}

func (f IntField) Set(index int, v int) error {
	return f.d.SetField(f.mode, index, f.field, v)
}

// Clear unsets the field.
func (f IntField) Clear(index int) error {
	return f.d.SetField(f.mode, index, f.field, nil)
}
