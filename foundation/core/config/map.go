// File: map.go
// Title: Ordered Configuration Tables
// Description: Implements Map, a string-keyed table that remembers the order in
//              which its keys were declared in the source document. Table
//              values are *Map, arrays are []any and scalars are string, int64,
//              float64, bool or time.Time.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2026-10-15
// Modified: 2026-10-15
//
// Change History:
// - 2026-10-15 v0.1.0: Initial implementation

package config

import (
	"fmt"
	"strings"
)

// Map is an ordered string-keyed table
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty Map
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores a value, appending the key to the order if it is new
func (m *Map) Set(key string, value any) *Map {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Get returns the value stored under key
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			return
		}
	}
}

// Keys returns the keys in declaration order
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a shallow copy whose key set can be modified independently
func (m *Map) Clone() *Map {
	out := NewMap()
	for _, k := range m.Keys() {
		out.Set(k, m.values[k])
	}
	return out
}

// Lookup follows a dotted path of nested tables
func (m *Map) Lookup(path ...string) (any, bool) {
	var cur any = m
	for _, p := range path {
		table, ok := cur.(*Map)
		if !ok {
			return nil, false
		}
		if cur, ok = table.Get(p); !ok {
			return nil, false
		}
	}
	return cur, true
}

// String renders the table in declaration order, mainly for diagnostics
func (m *Map) String() string {
	parts := make([]string, 0, m.Len())
	for _, k := range m.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m.values[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// TypeName describes a raw configuration value for error messages
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case *Map:
		return "table"
	case []any:
		return "array"
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
