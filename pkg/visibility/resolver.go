package visibility

import "sync"

// FirstOf returns a Resolver that asks each resolver in order and returns the
// first hit. Nil resolvers are skipped.
func FirstOf(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(id ElementID) (Style, bool) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if s, ok := r.Resolve(id); ok && s != nil {
				return s, true
			}
		}
		return nil, false
	})
}

// MemoryStyle is an in-memory element with a display property.
type MemoryStyle struct {
	mu      sync.Mutex
	display string
}

// NewMemoryStyle creates an element with the given initial display value.
func NewMemoryStyle(display string) *MemoryStyle {
	return &MemoryStyle{display: display}
}

// Display returns the current display value.
func (m *MemoryStyle) Display() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.display
}

// SetDisplay replaces the display value.
func (m *MemoryStyle) SetDisplay(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.display = value
}

// MapResolver resolves ids against a fixed set of in-memory elements.
type MapResolver map[ElementID]*MemoryStyle

// Resolve implements Resolver.
func (m MapResolver) Resolve(id ElementID) (Style, bool) {
	s, ok := m[id]
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}
