// Package host models the host platform's typed key/value and ordered list
// abstraction used to hand structured arguments to the vendor SDK.
package host

import "fmt"

// Type is the declared type of a host value.
type Type int

const (
	TypeNull Type = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeMap
	TypeArray
	// TypeBinary is a raw byte blob. It can be stored but never converted.
	TypeBinary
	// TypeOpaque is an arbitrary platform object.
	TypeOpaque
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeBoolean:
		return "Boolean"
	case TypeNumber:
		return "Number"
	case TypeString:
		return "String"
	case TypeMap:
		return "Map"
	case TypeArray:
		return "Array"
	case TypeBinary:
		return "Binary"
	case TypeOpaque:
		return "Opaque"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Value is a single host value tagged with its declared type.
type Value struct {
	typ Type
	b   bool
	num float64
	str string
	m   *Map
	l   *List
	raw any
}

// Null returns the host null value.
func Null() Value { return Value{typ: TypeNull} }

// Boolean returns a host boolean.
func Boolean(b bool) Value { return Value{typ: TypeBoolean, b: b} }

// Number returns a host number. Host numbers are always doubles.
func Number(f float64) Value { return Value{typ: TypeNumber, num: f} }

// String returns a host string.
func String(s string) Value { return Value{typ: TypeString, str: s} }

// Binary returns a binary blob. It has no document form.
func Binary(data []byte) Value { return Value{typ: TypeBinary, raw: data} }

// Opaque wraps a platform object the bridge does not understand.
func Opaque(v any) Value { return Value{typ: TypeOpaque, raw: v} }

// MapValue wraps a nested map.
func MapValue(m *Map) Value { return Value{typ: TypeMap, m: m} }

// ListValue wraps a nested list.
func ListValue(l *List) Value { return Value{typ: TypeArray, l: l} }

// Type returns the declared type of v.
func (v Value) Type() Type { return v.typ }

func (v Value) AsBoolean() bool { return v.b }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsString() string { return v.str }
func (v Value) AsMap() *Map { return v.m }
func (v Value) AsList() *List { return v.l }

// Raw returns the payload of binary and opaque values.
func (v Value) Raw() any { return v.raw }

// Native returns the plain Go form of v: nil, bool, float64, string,
// map[string]any, []any, or the raw payload of binary and opaque values.
func (v Value) Native() any {
	switch v.typ {
	case TypeBoolean:
		return v.b
	case TypeNumber:
		return v.num
	case TypeString:
		return v.str
	case TypeMap:
		return v.m.Native()
	case TypeArray:
		return v.l.Native()
	case TypeBinary, TypeOpaque:
		return v.raw
	default:
		return nil
	}
}

type entry struct {
	key   string
	value Value
}

// Map is an insertion-ordered map of host values.
type Map struct {
	entries []entry
	index   map[string]int
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// Put stores v under key, replacing an existing value in place.
func (m *Map) Put(key string, v Value) *Map {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].value = v
		return m
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, entry{key: key, value: v})
	return m
}

// Get returns the value under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.entries[i].value, true
}

// Type returns the declared type of key. Missing keys report TypeNull.
func (m *Map) Type(key string) Type {
	v, _ := m.Get(key)
	return v.typ
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

// Native returns the map as map[string]any, the form the vendor SDK accepts.
func (m *Map) Native() map[string]any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for _, e := range m.entries {
		out[e.key] = e.value.Native()
	}
	return out
}

// List is an ordered list of host values.
type List struct {
	items []Value
}

// NewList returns a list holding items.
func NewList(items ...Value) *List {
	return &List{items: items}
}

// Append adds v at the end of the list.
func (l *List) Append(v Value) *List {
	l.items = append(l.items, v)
	return l
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// At returns the element at index i.
func (l *List) At(i int) Value { return l.items[i] }

// Type returns the declared type of the element at index i.
func (l *List) Type(i int) Type { return l.items[i].typ }

// Native returns the list as []any.
func (l *List) Native() []any {
	out := make([]any, l.Len())
	for i := 0; i < l.Len(); i++ {
		out[i] = l.items[i].Native()
	}
	return out
}
