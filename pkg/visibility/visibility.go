// Package visibility shows, hides and toggles report sections.
//
// A section is visible unless its display property is exactly "none". The
// package keeps no state of its own: every call resolves the element again
// through the injected Resolver, so the document stays the single source of
// truth.
package visibility

import (
	"github.com/devicelab-dev/reportsections/pkg/logger"
)

// DisplayNone is the display value that marks an element hidden.
const DisplayNone = "none"

// ElementID identifies an element in the host document.
type ElementID string

// Validate reports whether the id can be used for a lookup.
func (id ElementID) Validate() error {
	if id == "" {
		return ErrEmptyID
	}
	return nil
}

func (id ElementID) String() string {
	return string(id)
}

// Style is a handle to the mutable display property of a resolved element.
type Style interface {
	Display() string
	SetDisplay(value string)
}

// Resolver looks up elements by id. The bool result is false when the element
// does not exist; implementations never return a nil Style with true.
type Resolver interface {
	Resolve(id ElementID) (Style, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(id ElementID) (Style, bool)

// Resolve calls f(id).
func (f ResolverFunc) Resolve(id ElementID) (Style, bool) {
	return f(id)
}

// Toggler exposes the four section operations over a Resolver.
type Toggler struct {
	resolver Resolver
}

// New creates a Toggler backed by r.
func New(r Resolver) *Toggler {
	return &Toggler{resolver: r}
}

func (t *Toggler) style(id ElementID) (Style, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	s, ok := t.resolver.Resolve(id)
	if !ok || s == nil {
		return nil, ErrElementNotFound.WithID(id)
	}
	return s, nil
}

// State returns whether the element is visible, or an error if the id is
// empty or no element has it.
func (t *Toggler) State(id ElementID) (bool, error) {
	s, err := t.style(id)
	if err != nil {
		return false, err
	}
	return s.Display() != DisplayNone, nil
}

// IsVisible returns true unless the element's display is "none".
// Missing elements are reported as not visible.
func (t *Toggler) IsVisible(id ElementID) bool {
	visible, err := t.State(id)
	if err != nil {
		logger.Debug("isVisible %q: %v", id, err)
		return false
	}
	return visible
}

// Show restores the element's default display.
func (t *Toggler) Show(id ElementID) {
	t.set(id, "")
}

// Hide sets the element's display to "none".
func (t *Toggler) Hide(id ElementID) {
	t.set(id, DisplayNone)
}

// Toggle inverts the element's visibility.
func (t *Toggler) Toggle(id ElementID) {
	s, err := t.style(id)
	if err != nil {
		logger.Debug("toggle %q: %v", id, err)
		return
	}
	if s.Display() != DisplayNone {
		s.SetDisplay(DisplayNone)
	} else {
		s.SetDisplay("")
	}
}

func (t *Toggler) set(id ElementID, display string) {
	s, err := t.style(id)
	if err != nil {
		logger.Debug("set display %q on %q: %v", display, id, err)
		return
	}
	s.SetDisplay(display)
}
