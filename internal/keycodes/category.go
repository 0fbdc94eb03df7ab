package keycodes

import (
	"iter"
	"slices"
)

// Category names, in display order.
const (
	Basic     = "Basic"
	Symbol    = "Symbol"
	Functions = "Functions"
	Layer     = "Layer"
	Device    = "Device"
	Special   = "Special"
	Midi      = "Midi"
	Any       = "Any"
	BMP       = "BMP"
	Ascii     = "Ascii"
)

// CategoryMap maps category names to key lists and remembers insertion
// order. Search tie-breaks follow that order.
type CategoryMap struct {
	order []string
	keys  map[string][]*Key
}

// NewCategoryMap returns an empty map.
func NewCategoryMap() *CategoryMap {
	return &CategoryMap{keys: make(map[string][]*Key)}
}

// Set stores the keys for a category. A new category goes to the end.
func (m *CategoryMap) Set(name string, keys []*Key) {
	if _, ok := m.keys[name]; !ok {
		m.order = append(m.order, name)
	}
	m.keys[name] = keys
}

// Delete removes a category if present.
func (m *CategoryMap) Delete(name string) {
	if _, ok := m.keys[name]; !ok {
		return
	}
	delete(m.keys, name)
	m.order = slices.DeleteFunc(m.order, func(n string) bool { return n == name })
}

// Has reports whether the category exists.
func (m *CategoryMap) Has(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.keys[name]
	return ok
}

// Keys returns the category's keys, or nil when it is absent.
func (m *CategoryMap) Keys(name string) []*Key {
	if m == nil {
		return nil
	}
	return m.keys[name]
}

// Len returns the number of keys in a category.
func (m *CategoryMap) Len(name string) int {
	return len(m.Keys(name))
}

// Names returns the category names in order.
func (m *CategoryMap) Names() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.order)
}

// All yields every key, category by category.
func (m *CategoryMap) All() iter.Seq[*Key] {
	return func(yield func(*Key) bool) {
		if m == nil {
			return
		}
		for _, name := range m.order {
			for _, key := range m.keys[name] {
				if !yield(key) {
					return
				}
			}
		}
	}
}
