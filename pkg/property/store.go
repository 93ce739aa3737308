package property

import (
	"sync/atomic"

	"github.com/dna-dev/dna/internal/errors"
)

// Change describes one property transition.
// The zero Change is used for update requests that carry no property.
type Change struct {
	Name string
	Old  any
	New  any
}

// IsZero reports whether c names no property.
func (c Change) IsZero() bool {
	return c.Name == ""
}

var observerID atomic.Uint64

// Observer is a callback registered against one or more properties.
// Observers are identified by pointer: registering the same *Observer
// twice for a property is a no-op.
type Observer struct {
	id uint64
	fn func(Change)
}

// NewObserver wraps fn in an Observer with a fresh identity.
func NewObserver(fn func(Change)) *Observer {
	return &Observer{id: observerID.Add(1), fn: fn}
}

// ID returns the observer's unique identifier.
func (o *Observer) ID() uint64 {
	return o.id
}

func (o *Observer) notify(c Change) {
	if o.fn != nil {
		o.fn(c)
	}
}

// HookFunc runs after observers for every effective change.
// An error aborts nothing already done but is returned from Set.
type HookFunc func(Change) error

// Store holds the current values of one element's declared properties.
type Store struct {
	specs  []Spec
	index  map[string]int
	values []any
	subs   [][]*Observer
	hook   HookFunc
}

// NewStore creates a store for the given declarations, seeded with their
// initial values. Duplicate or empty names are rejected.
func NewStore(specs []Spec) (*Store, error) {
	s := &Store{
		specs:  make([]Spec, len(specs)),
		index:  make(map[string]int, len(specs)),
		values: make([]any, len(specs)),
		subs:   make([][]*Observer, len(specs)),
	}
	copy(s.specs, specs)
	for i, spec := range s.specs {
		if spec.Name == "" {
			return nil, errors.New(errors.CodeInvalidProperty).
				WithDetail("Property declarations must have a non-empty name.")
		}
		if _, dup := s.index[spec.Name]; dup {
			return nil, errors.New(errors.CodeInvalidProperty).
				WithSubject(spec.Name).
				WithDetail("The property is declared more than once.")
		}
		s.index[spec.Name] = i
		s.values[i] = spec.InitialValue()
	}
	return s, nil
}

// SetHook installs the function called after observers on every change.
func (s *Store) SetHook(h HookFunc) {
	s.hook = h
}

func (s *Store) lookup(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, errors.New(errors.CodeInvalidProperty).WithSubject(name)
	}
	return i, nil
}

// Has reports whether name is declared.
func (s *Store) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the declared names in declaration order.
func (s *Store) Names() []string {
	names := make([]string, len(s.specs))
	for i, spec := range s.specs {
		names[i] = spec.Name
	}
	return names
}

// Spec returns the declaration for name.
func (s *Store) Spec(name string) (Spec, bool) {
	i, ok := s.index[name]
	if !ok {
		return Spec{}, false
	}
	return s.specs[i], true
}

// Get returns the current value of name.
func (s *Store) Get(name string) (any, error) {
	i, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return s.values[i], nil
}

// Set stores value under name if it differs from the current value and
// reports whether it did. A nil value restores the initial value. On change the property's observers run in
// registration order, followed by the store hook.
func (s *Store) Set(name string, value any) (bool, error) {
	i, err := s.lookup(name)
	if err != nil {
		return false, err
	}
	spec := s.specs[i]
	switch {
	case value == nil:
		value = spec.InitialValue()
	case spec.Type != Any:
		if value, err = spec.Coerce(value); err != nil {
			return false, err
		}
	}

	old := s.values[i]
	if spec.Equals(old, value) {
		return false, nil
	}
	s.values[i] = value

	change := Change{Name: name, Old: old, New: value}

	// Copy so observers may unobserve while being notified.
	subs := make([]*Observer, len(s.subs[i]))
	copy(subs, s.subs[i])
	for _, o := range subs {
		o.notify(change)
	}

	if s.hook != nil {
		if err := s.hook(change); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Seed stores value without comparing, notifying or running the hook.
// It is meant for initialization before an element goes live.
func (s *Store) Seed(name string, value any) error {
	i, err := s.lookup(name)
	if err != nil {
		return err
	}
	switch {
	case value == nil:
		value = s.specs[i].InitialValue()
	case s.specs[i].Type != Any:
		if value, err = s.specs[i].Coerce(value); err != nil {
			return err
		}
	}
	s.values[i] = value
	return nil
}

// Observe registers o for changes to name. Registering the same observer
// again is a no-op.
func (s *Store) Observe(name string, o *Observer) error {
	i, err := s.lookup(name)
	if err != nil {
		return err
	}
	if o == nil {
		return nil
	}
	for _, existing := range s.subs[i] {
		if existing == o {
			return nil
		}
	}
	s.subs[i] = append(s.subs[i], o)
	return nil
}

// Unobserve removes o from name. Unknown names and observers are ignored.
func (s *Store) Unobserve(name string, o *Observer) {
	i, ok := s.index[name]
	if !ok || o == nil {
		return
	}
	subs := s.subs[i]
	for j, existing := range subs {
		if existing == o {
			// Keep registration order for the remaining observers.
			s.subs[i] = append(subs[:j:j], subs[j+1:]...)
			return
		}
	}
}

// Observers returns how many observers are registered for name.
func (s *Store) Observers(name string) int {
	i, ok := s.index[name]
	if !ok {
		return 0
	}
	return len(s.subs[i])
}

// Reset drops every observer. Values are kept.
func (s *Store) Reset() {
	for i := range s.subs {
		s.subs[i] = nil
	}
}

// Value returns the current value of name as a T.
func Value[T any](s *Store, name string) (T, error) {
	var zero T
	v, err := s.Get(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.New(errors.CodeAttributeCast).
			WithSubject(name).
			WithDetail("The stored value has a different type than requested.")
	}
	return t, nil
}

// FromAttribute converts an attribute value for spec. A nil value means
// the attribute was removed.
func FromAttribute(spec Spec, value *string) (any, error) {
	return spec.FromAttr(value)
}

// ToAttribute converts a property value for spec. A nil result means the
// attribute should be removed.
func ToAttribute(spec Spec, value any) *string {
	return spec.ToAttr(value)
}
