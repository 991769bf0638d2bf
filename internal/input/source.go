// Package input decouples form submission from how a field's value is held.
//
// A Controlled source is pushed on every keystroke; a Ref is pulled from the
// widget only when the form is submitted. Consumers depend on Source alone.
package input

import (
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
)

// Source yields the current value of a single form field.
type Source interface {
	Read() string
}

// Resetter is implemented by sources that can clear themselves.
type Resetter interface {
	Reset()
}

// Func adapts a plain function to Source.
type Func func() string

func (f Func) Read() string { return f() }

// Value is a fixed value, e.g. a command line argument.
type Value string

func (v Value) Read() string { return string(v) }

// Controlled holds state pushed by change events.
type Controlled struct {
	mu    sync.RWMutex
	value string
}

// Set records the latest value of the field.
func (c *Controlled) Set(v string) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
}

func (c *Controlled) Read() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Controlled) Reset() { c.Set("") }

// Ref is a handle on a text input widget; the value is pulled on Read.
type Ref struct {
	m *textinput.Model
}

// NewRef returns a handle on m. m must outlive the handle.
func NewRef(m *textinput.Model) Ref { return Ref{m: m} }

func (r Ref) Read() string {
	if r.m == nil {
		return ""
	}
	return r.m.Value()
}

func (r Ref) Reset() {
	if r.m != nil {
		r.m.Reset()
	}
}
