// Package runtimeval models the cross-platform runtime's typed map and array
// abstraction: the shape of method arguments received from the runtime and of
// payloads emitted back to it.
package runtimeval

import "fmt"

// Type is the readable type of a runtime value.
type Type int

const (
	TypeNull Type = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeMap
	TypeArray
	// TypeOpaque marks a value a foreign producer stored without a
	// recognizable tag.
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
	case TypeOpaque:
		return "Opaque"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Value is a single runtime value.
type Value struct {
	typ    Type
	isInt  bool
	b      bool
	f      float64
	i      int64
	s      string
	m      *Map
	a      *Array
	opaque any
}

// Type returns the readable type.
func (v Value) Type() Type { return v.typ }

// IsInt reports whether the number was written as an integer.
func (v Value) IsInt() bool { return v.typ == TypeNumber && v.isInt }

func (v Value) AsBoolean() bool { return v.b }

// AsDouble returns the number as a double, whichever way it was written.
func (v Value) AsDouble() float64 {
	if v.isInt {
		return float64(v.i)
	}
	return v.f
}

// AsInt returns the number truncated to an integer.
func (v Value) AsInt() int64 {
	if v.isInt {
		return v.i
	}
	return int64(v.f)
}

func (v Value) AsString() string { return v.s }
func (v Value) AsMap() *Map { return v.m }
func (v Value) AsArray() *Array { return v.a }
func (v Value) OpaqueValue() any { return v.opaque }

// Interface returns the plain Go form of v: nil, bool, int64 for integers,
// float64 for doubles, string, map[string]any or []any.
func (v Value) Interface() any {
	switch v.typ {
	case TypeBoolean:
		return v.b
	case TypeNumber:
		if v.isInt {
			return v.i
		}
		return v.f
	case TypeString:
		return v.s
	case TypeMap:
		return v.m.Interface()
	case TypeArray:
		return v.a.Interface()
	case TypeOpaque:
		return v.opaque
	default:
		return nil
	}
}

func nullValue() Value { return Value{typ: TypeNull} }
func boolValue(b bool) Value { return Value{typ: TypeBoolean, b: b} }
func intValue(i int64) Value { return Value{typ: TypeNumber, isInt: true, i: i} }
func doubleValue(f float64) Value { return Value{typ: TypeNumber, f: f} }
func stringValue(s string) Value { return Value{typ: TypeString, s: s} }
func opaqueValue(v any) Value { return Value{typ: TypeOpaque, opaque: v} }

func mapValue(m *Map) Value {
	if m == nil {
		return nullValue()
	}
	return Value{typ: TypeMap, m: m}
}

func arrayValue(a *Array) Value {
	if a == nil {
		return nullValue()
	}
	return Value{typ: TypeArray, a: a}
}

type entry struct {
	key   string
	value Value
}

// Map is a writable, insertion-ordered runtime map.
type Map struct {
	entries []entry
	index   map[string]int
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

func (m *Map) put(key string, v Value) *Map {
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

func (m *Map) PutNull(key string) *Map { return m.put(key, nullValue()) }
func (m *Map) PutBoolean(key string, b bool) *Map { return m.put(key, boolValue(b)) }
func (m *Map) PutInt(key string, i int64) *Map { return m.put(key, intValue(i)) }
func (m *Map) PutDouble(key string, f float64) *Map { return m.put(key, doubleValue(f)) }
func (m *Map) PutString(key string, s string) *Map { return m.put(key, stringValue(s)) }

// PutMap stores a nested map. A nil child is stored as null.
func (m *Map) PutMap(key string, child *Map) *Map { return m.put(key, mapValue(child)) }

// PutArray stores a nested array. A nil child is stored as null.
func (m *Map) PutArray(key string, child *Array) *Map { return m.put(key, arrayValue(child)) }

// PutOpaque stores an untagged foreign value.
func (m *Map) PutOpaque(key string, v any) *Map { return m.put(key, opaqueValue(v)) }

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

// HasKey reports whether key is present.
func (m *Map) HasKey(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Type returns the readable type of key. Missing keys report TypeNull.
func (m *Map) Type(key string) Type {
	v, _ := m.Get(key)
	return v.typ
}

func (m *Map) GetBoolean(key string) bool {
	v, _ := m.Get(key)
	return v.b
}

func (m *Map) GetDouble(key string) float64 {
	v, _ := m.Get(key)
	return v.AsDouble()
}

func (m *Map) GetInt(key string) int64 {
	v, _ := m.Get(key)
	return v.AsInt()
}

func (m *Map) GetString(key string) string {
	v, _ := m.Get(key)
	return v.s
}

func (m *Map) GetMap(key string) *Map {
	v, _ := m.Get(key)
	return v.m
}

func (m *Map) GetArray(key string) *Array {
	v, _ := m.Get(key)
	return v.a
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

// Interface returns the map as map[string]any.
func (m *Map) Interface() map[string]any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for _, e := range m.entries {
		out[e.key] = e.value.Interface()
	}
	return out
}

// Array is a writable runtime array.
type Array struct {
	items []Value
}

// NewArray returns an empty array.
func NewArray() *Array {
	return &Array{}
}

func (a *Array) push(v Value) *Array {
	a.items = append(a.items, v)
	return a
}

func (a *Array) PushNull() *Array { return a.push(nullValue()) }
func (a *Array) PushBoolean(b bool) *Array { return a.push(boolValue(b)) }
func (a *Array) PushInt(i int64) *Array { return a.push(intValue(i)) }
func (a *Array) PushDouble(f float64) *Array { return a.push(doubleValue(f)) }
func (a *Array) PushString(s string) *Array { return a.push(stringValue(s)) }
func (a *Array) PushMap(m *Map) *Array { return a.push(mapValue(m)) }
func (a *Array) PushArray(child *Array) *Array { return a.push(arrayValue(child)) }
func (a *Array) PushOpaque(v any) *Array { return a.push(opaqueValue(v)) }

func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// At returns the element at index i.
func (a *Array) At(i int) Value { return a.items[i] }

// Type returns the readable type of the element at index i.
func (a *Array) Type(i int) Type { return a.items[i].typ }

// Interface returns the array as []any.
func (a *Array) Interface() []any {
	out := make([]any, a.Len())
	for i := 0; i < a.Len(); i++ {
		out[i] = a.items[i].Interface()
	}
	return out
}
