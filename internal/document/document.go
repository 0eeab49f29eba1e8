// Package document holds the generic, JSON-like tree used as the neutral
// interchange format between the host and runtime representations.
package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	// KindLabel is an enumerated value carried by its canonical text label.
	KindLabel
	// KindOpaque is a foreign value with no document representation.
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindLabel:
		return "label"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NumberKind records the numeric subtype a number was read or built as.
type NumberKind int

const (
	NumberDouble NumberKind = iota
	NumberInt
	NumberLong
	NumberFloat
)

func (n NumberKind) String() string {
	switch n {
	case NumberInt:
		return "int"
	case NumberLong:
		return "long"
	case NumberFloat:
		return "float"
	default:
		return "double"
	}
}

// Array is an ordered sequence of nodes.
type Array []Node

// Node is a single value of the document tree. The zero Node is null.
type Node struct {
	kind    Kind
	numKind NumberKind
	b       bool
	f       float64
	i       int64
	s       string
	arr     Array
	obj     *Object
	opaque  any
}

// Null returns a null node.
func Null() Node { return Node{kind: KindNull} }

// Bool returns a boolean node.
func Bool(b bool) Node { return Node{kind: KindBool, b: b} }

// Double returns a double-precision number node.
func Double(f float64) Node { return Node{kind: KindNumber, numKind: NumberDouble, f: f} }

// Float returns a single-precision number node.
func Float(f float32) Node { return Node{kind: KindNumber, numKind: NumberFloat, f: float64(f)} }

// Int returns a 32-bit integral number node.
func Int(i int32) Node {
	return Node{kind: KindNumber, numKind: NumberInt, i: int64(i), f: float64(i)}
}

// Long returns a 64-bit integral number node.
func Long(i int64) Node {
	return Node{kind: KindNumber, numKind: NumberLong, i: i, f: float64(i)}
}

// NumberFromText builds a number node from a JSON numeric literal. Literals
// with a fraction or exponent are doubles; integers in the 32-bit range are
// NumberInt, wider ones NumberLong, and integers beyond 64 bits fall back to
// double.
func NumberFromText(text string) (Node, error) {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return Int(int32(i)), nil
			}
			return Long(i), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Node{}, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return Double(f), nil
}

// String returns a string node.
func String(s string) Node { return Node{kind: KindString, s: s} }

// Label returns an enumerated value node.
func Label(label string) Node { return Node{kind: KindLabel, s: label} }

// ArrayOf returns an array node holding elems.
func ArrayOf(elems ...Node) Node {
	if elems == nil {
		elems = Array{}
	}
	return Node{kind: KindArray, arr: elems}
}

// FromArray returns an array node wrapping arr.
func FromArray(arr Array) Node { return ArrayOf(arr...) }

// FromObject returns an object node wrapping obj. A nil obj yields an empty object.
func FromObject(obj *Object) Node {
	if obj == nil {
		obj = NewObject()
	}
	return Node{kind: KindObject, obj: obj}
}

// Opaque wraps a foreign value.
func Opaque(v any) Node { return Node{kind: KindOpaque, opaque: v} }

// Kind returns the variant tag.
func (n Node) Kind() Kind { return n.kind }

// NumberKind returns the numeric subtype. Only meaningful for KindNumber.
func (n Node) NumberKind() NumberKind { return n.numKind }

// IsNull reports whether n is the null node.
func (n Node) IsNull() bool { return n.kind == KindNull }

// IsIntegral reports whether n is a number that was built as a 32-bit integer.
func (n Node) IsIntegral() bool { return n.kind == KindNumber && n.numKind == NumberInt }

// AsBool returns the boolean value.
func (n Node) AsBool() bool { return n.b }

// AsFloat64 returns the number widened to double precision.
func (n Node) AsFloat64() float64 { return n.f }

// AsInt64 returns the integral value for NumberInt and NumberLong nodes and
// the truncated value otherwise.
func (n Node) AsInt64() int64 {
	if n.numKind == NumberInt || n.numKind == NumberLong {
		return n.i
	}
	return int64(n.f)
}

// AsString returns the string or label text.
func (n Node) AsString() string { return n.s }

// AsArray returns the array elements, nil for non-array nodes.
func (n Node) AsArray() Array { return n.arr }

// AsObject returns the object, nil for non-object nodes.
func (n Node) AsObject() *Object { return n.obj }

// OpaqueValue returns the wrapped foreign value.
func (n Node) OpaqueValue() any { return n.opaque }

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Node
}

// Object is an insertion-ordered map of unique string keys.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v Node) *Object {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = v
		return o
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Node, bool) {
	if o == nil {
		return Node{}, false
	}
	i, ok := o.index[key]
	if !ok {
		return Node{}, false
	}
	return o.members[i].Value, true
}

// Len returns the number of members. A nil object has none.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns the members in insertion order.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	return o.members
}
