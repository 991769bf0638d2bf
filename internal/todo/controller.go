// Package todo keeps an in-memory todo list in step with the remote store.
//
// The Controller never patches its list locally. Every successful create or
// delete is followed by a full Refresh, and Refresh replaces the list
// wholesale. Remote failures are handed to the error handler and otherwise
// swallowed: the list keeps its last good snapshot and the controller stays
// usable.
//
// Overlapping operations are not ordered against each other. When a create
// and a delete race, whichever trailing Refresh completes last wins.
package todo

import (
	"context"
	"log/slog"
	"sync"

	"github.com/idilsaglam/tadasync/internal/input"
	"github.com/idilsaglam/tadasync/internal/model"
	"github.com/idilsaglam/tadasync/internal/remote"
)

// ErrorHandler receives every remote failure.
type ErrorHandler func(op Op, err error)

// Prompter shows a validation message to the user.
type Prompter func(err *ValidationError)

type Controller struct {
	store  remote.Store
	logger *slog.Logger

	onError ErrorHandler
	prompt  Prompter

	mu    sync.Mutex
	items []model.Item
	form  model.FormState
}

type Option func(*Controller)

// WithLogger sets the logger used by the default error handler.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithErrorHandler replaces the default log-and-continue handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Controller) { c.onError = h }
}

func WithPrompter(p Prompter) Option {
	return func(c *Controller) { c.prompt = p }
}

func New(store remote.Store, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		logger: slog.Default(),
		items:  []model.Item{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.onError == nil {
		c.onError = LogErrors(c.logger)
	}
	if c.prompt == nil {
		c.prompt = func(*ValidationError) {}
	}
	return c
}

// LogErrors is the default ErrorHandler.
func LogErrors(l *slog.Logger) ErrorHandler {
	return func(op Op, err error) {
		l.Error("remote operation failed", "op", string(op), "error", err)
	}
}

// Items returns a copy of the current snapshot.
func (c *Controller) Items() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Form returns the pending form state.
func (c *Controller) Form() model.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetInput records a change event for field (the controlled style).
func (c *Controller) SetInput(field Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch field {
	case FieldName:
		c.form.Name = value
	case FieldDescription:
		c.form.Description = value
	}
}

// FormSource reads field from the controlled form state.
func (c *Controller) FormSource(field Field) input.Source {
	return input.Func(func() string {
		f := c.Form()
		if field == FieldDescription {
			return f.Description
		}
		return f.Name
	})
}

// Refresh replaces the list with the store's current contents, oldest
// modified first. On failure the previous list is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	items, err := c.store.List(ctx)
	if err != nil {
		return c.fail(OpList, err)
	}

	model.SortByUpdated(items)

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()

	c.logger.Debug("todos refreshed", "count", len(items))
	return nil
}

// SubmitCreate validates the pair, clears the form, creates the item and
// refreshes. The form is cleared as soon as the request is issued, whether or
// not it succeeds.
func (c *Controller) SubmitCreate(ctx context.Context, name, description string) error {
	return c.Submit(ctx, input.Value(name), input.Value(description))
}

// Submit pulls both fields from their sources at submit time and creates the
// item. Sources that can reset are cleared together with the form.
func (c *Controller) Submit(ctx context.Context, name, description input.Source) error {
	in, err := c.Stage(name, description)
	if err != nil {
		return err
	}
	return c.Create(ctx, in)
}

// Stage reads and validates both fields. On success the form and any
// resettable sources are cleared and the payload for Create is returned; on
// failure nothing is cleared and the prompter is shown the error.
func (c *Controller) Stage(name, description input.Source) (model.NewItem, error) {
	n, d := name.Read(), description.Read()
	if verr := validate(n, d); verr != nil {
		c.prompt(verr)
		return model.NewItem{}, verr
	}

	c.mu.Lock()
	c.form = model.FormState{}
	c.mu.Unlock()

	for _, s := range []input.Source{name, description} {
		if r, ok := s.(input.Resetter); ok {
			r.Reset()
		}
	}
	return model.NewItem{Name: n, Description: d}, nil
}

// Create issues the remote create for a staged item, then refreshes. A failed
// create is not retried and the form is not restored.
func (c *Controller) Create(ctx context.Context, in model.NewItem) error {
	if _, err := c.store.Create(ctx, in); err != nil {
		return c.fail(OpCreate, err)
	}
	return c.Refresh(ctx)
}

// SubmitDelete deletes item by ID and refreshes.
func (c *Controller) SubmitDelete(ctx context.Context, item model.Item) error {
	if item.ID == "" {
		err := &ValidationError{Field: FieldID}
		c.prompt(err)
		return err
	}

	if err := c.store.Delete(ctx, item.ID); err != nil {
		return c.fail(OpDelete, err)
	}
	return c.Refresh(ctx)
}

func (c *Controller) fail(op Op, err error) error {
	c.onError(op, err)
	return &RemoteOperationError{Op: op, Err: err}
}

// validate reports the first empty field. Whitespace counts as content.
func validate(name, description string) *ValidationError {
	if name == "" {
		return &ValidationError{Field: FieldName}
	}
	if description == "" {
		return &ValidationError{Field: FieldDescription}
	}
	return nil
}
