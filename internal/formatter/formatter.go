package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mcncl/smtbridge/internal/document"
	"github.com/mcncl/smtbridge/internal/host"
	"github.com/mcncl/smtbridge/internal/runtimeval"
)

// DefaultIndent is the indentation used by NewFormatter.
const DefaultIndent = "  "

// Formatter renders structured values as JSON text. Keys are written in the
// order the tree holds them, never sorted.
type Formatter struct {
	// Indent is repeated once per nesting level. Empty means compact output.
	Indent string
}

// NewFormatter creates a Formatter producing indented output
func NewFormatter() *Formatter {
	return &Formatter{Indent: DefaultIndent}
}

// NewCompactFormatter creates a Formatter producing single-line output
func NewCompactFormatter() *Formatter {
	return &Formatter{}
}

// Document renders a document node.
func (f *Formatter) Document(n document.Node) (string, error) {
	w := f.newWriter()
	if err := w.document(n); err != nil {
		return "", err
	}
	return w.String(), nil
}

// Runtime renders a runtime map.
func (f *Formatter) Runtime(m *runtimeval.Map) (string, error) {
	w := f.newWriter()
	if err := w.runtimeMap(m); err != nil {
		return "", err
	}
	return w.String(), nil
}

// RuntimeArray renders a runtime array.
func (f *Formatter) RuntimeArray(a *runtimeval.Array) (string, error) {
	w := f.newWriter()
	if err := w.runtimeArray(a); err != nil {
		return "", err
	}
	return w.String(), nil
}

// Host renders a host map.
func (f *Formatter) Host(m *host.Map) (string, error) {
	w := f.newWriter()
	if err := w.hostMap(m); err != nil {
		return "", err
	}
	return w.String(), nil
}

// HostList renders a host list.
func (f *Formatter) HostList(l *host.List) (string, error) {
	w := f.newWriter()
	if err := w.hostList(l); err != nil {
		return "", err
	}
	return w.String(), nil
}

func (f *Formatter) newWriter() *writer {
	return &writer{indent: f.Indent}
}

type writer struct {
	strings.Builder
	indent string
	depth  int
}

func (w *writer) newline() {
	if w.indent == "" {
		return
	}
	w.WriteByte('\n')
	w.WriteString(strings.Repeat(w.indent, w.depth))
}

func (w *writer) open(c byte) {
	w.WriteByte(c)
	w.depth++
}

func (w *writer) close(c byte, count int) {
	w.depth--
	if count > 0 {
		w.newline()
	}
	w.WriteByte(c)
}

func (w *writer) item(i int) {
	if i > 0 {
		w.WriteByte(',')
	}
	w.newline()
}

func (w *writer) key(k string) {
	w.quote(k)
	w.WriteByte(':')
	if w.indent != "" {
		w.WriteByte(' ')
	}
}

func (w *writer) quote(s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	w.Write(bytes.TrimRight(buf.Bytes(), "\n"))
}

func (w *writer) document(n document.Node) error {
	switch n.Kind() {
	case document.KindNull:
		w.WriteString("null")
	case document.KindBool:
		w.WriteString(strconv.FormatBool(n.AsBool()))
	case document.KindNumber:
		switch n.NumberKind() {
		case document.NumberInt, document.NumberLong:
			w.WriteString(strconv.FormatInt(n.AsInt64(), 10))
		case document.NumberFloat:
			return w.double(n.AsFloat64(), 32)
		default:
			return w.double(n.AsFloat64(), 64)
		}
	case document.KindString, document.KindLabel:
		w.quote(n.AsString())
	case document.KindArray:
		arr := n.AsArray()
		w.open('[')
		for i, elem := range arr {
			w.item(i)
			if err := w.document(elem); err != nil {
				return err
			}
		}
		w.close(']', len(arr))
	case document.KindObject:
		obj := n.AsObject()
		w.open('{')
		for i, member := range obj.Members() {
			w.item(i)
			w.key(member.Key)
			if err := w.document(member.Value); err != nil {
				return err
			}
		}
		w.close('}', obj.Len())
	default:
		return fmt.Errorf("cannot render %s document value", n.Kind())
	}
	return nil
}

func (w *writer) runtimeValue(v runtimeval.Value) error {
	switch v.Type() {
	case runtimeval.TypeNull:
		w.WriteString("null")
	case runtimeval.TypeBoolean:
		w.WriteString(strconv.FormatBool(v.AsBoolean()))
	case runtimeval.TypeNumber:
		if v.IsInt() {
			w.WriteString(strconv.FormatInt(v.AsInt(), 10))
			return nil
		}
		return w.double(v.AsDouble(), 64)
	case runtimeval.TypeString:
		w.quote(v.AsString())
	case runtimeval.TypeMap:
		return w.runtimeMap(v.AsMap())
	case runtimeval.TypeArray:
		return w.runtimeArray(v.AsArray())
	default:
		return fmt.Errorf("cannot render %s runtime value", v.Type())
	}
	return nil
}

func (w *writer) runtimeMap(m *runtimeval.Map) error {
	w.open('{')
	for i, key := range m.Keys() {
		w.item(i)
		w.key(key)
		v, _ := m.Get(key)
		if err := w.runtimeValue(v); err != nil {
			return err
		}
	}
	w.close('}', m.Len())
	return nil
}

func (w *writer) runtimeArray(a *runtimeval.Array) error {
	w.open('[')
	for i := 0; i < a.Len(); i++ {
		w.item(i)
		if err := w.runtimeValue(a.At(i)); err != nil {
			return err
		}
	}
	w.close(']', a.Len())
	return nil
}

func (w *writer) hostValue(v host.Value) error {
	switch v.Type() {
	case host.TypeNull:
		w.WriteString("null")
	case host.TypeBoolean:
		w.WriteString(strconv.FormatBool(v.AsBoolean()))
	case host.TypeNumber:
		return w.double(v.AsNumber(), 64)
	case host.TypeString:
		w.quote(v.AsString())
	case host.TypeMap:
		return w.hostMap(v.AsMap())
	case host.TypeArray:
		return w.hostList(v.AsList())
	default:
		return fmt.Errorf("cannot render %s host value", v.Type())
	}
	return nil
}

func (w *writer) hostMap(m *host.Map) error {
	w.open('{')
	for i, key := range m.Keys() {
		w.item(i)
		w.key(key)
		v, _ := m.Get(key)
		if err := w.hostValue(v); err != nil {
			return err
		}
	}
	w.close('}', m.Len())
	return nil
}

func (w *writer) hostList(l *host.List) error {
	w.open('[')
	for i := 0; i < l.Len(); i++ {
		w.item(i)
		if err := w.hostValue(l.At(i)); err != nil {
			return err
		}
	}
	w.close(']', l.Len())
	return nil
}

// double writes f in its shortest form for the given precision, using
// exponent notation only outside [1e-6, 1e21) as encoding/json does. Integral
// values keep a ".0" suffix so they stay distinguishable from integers.
func (w *writer) double(f float64, bitSize int) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("cannot render non-finite number %v", f)
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 {
		if bitSize == 32 {
			abs = float64(float32(abs))
		}
		if abs < 1e-6 || abs >= 1e21 {
			format = 'e'
		}
	}
	text := strconv.FormatFloat(f, format, -1, bitSize)
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	w.WriteString(text)
	return nil
}
