// Package converter translates structured values between the host, document
// and runtime representations.
//
// The two directions use different failure policies. Host to document is
// fail-fast: the first unsupported value aborts the conversion and no partial
// result is returned. Every other direction recovers and continues: an
// unsupported key or element is dropped and the rest of the tree converts.
package converter

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/mcncl/smtbridge/internal/document"
	"github.com/mcncl/smtbridge/internal/errors"
	"github.com/mcncl/smtbridge/internal/host"
	"github.com/mcncl/smtbridge/internal/runtimeval"
)

// HostMapToDocument converts a host map into a document object. Numbers are
// always widened to double precision. An unsupported declared type fails the
// whole conversion with an error naming the offending key.
func HostMapToDocument(m *host.Map) (*document.Object, error) {
	return hostMapToDocument(m, "")
}

// HostListToDocument converts a host list into a document array with the same
// rules as HostMapToDocument.
func HostListToDocument(l *host.List) (document.Array, error) {
	return hostListToDocument(l, "")
}

func hostMapToDocument(m *host.Map, path string) (*document.Object, error) {
	obj := document.NewObject()
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		node, err := hostValueToNode(v, joinKey(path, key))
		if err != nil {
			return nil, err
		}
		obj.Set(key, node)
	}
	return obj, nil
}

func hostListToDocument(l *host.List, path string) (document.Array, error) {
	arr := make(document.Array, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		node, err := hostValueToNode(l.At(i), joinIndex(path, i))
		if err != nil {
			return nil, err
		}
		arr = append(arr, node)
	}
	return arr, nil
}

func hostValueToNode(v host.Value, path string) (document.Node, error) {
	switch v.Type() {
	case host.TypeNull:
		return document.Null(), nil
	case host.TypeBoolean:
		return document.Bool(v.AsBoolean()), nil
	case host.TypeNumber:
		return document.Double(v.AsNumber()), nil
	case host.TypeString:
		return document.String(v.AsString()), nil
	case host.TypeMap:
		obj, err := hostMapToDocument(v.AsMap(), path)
		if err != nil {
			return document.Node{}, err
		}
		return document.FromObject(obj), nil
	case host.TypeArray:
		arr, err := hostListToDocument(v.AsList(), path)
		if err != nil {
			return document.Node{}, err
		}
		return document.FromArray(arr), nil
	default:
		return document.Node{}, errors.NewConversionError(
			fmt.Sprintf("could not convert %s value at '%s'", v.Type(), path),
			errors.ErrUnsupportedValue,
		)
	}
}

// DocumentToRuntimeMap converts a document object into a runtime map. A nil
// or empty object yields an empty map. Members whose value has no runtime
// form are skipped.
func DocumentToRuntimeMap(obj *document.Object) *runtimeval.Map {
	out := runtimeval.NewMap()
	for _, member := range obj.Members() {
		putNode(out, member.Key, member.Value)
	}
	return out
}

// DocumentToRuntimeArray converts a document array into a runtime array with
// the same rules as DocumentToRuntimeMap.
func DocumentToRuntimeArray(arr document.Array) *runtimeval.Array {
	out := runtimeval.NewArray()
	for _, node := range arr {
		pushNode(out, node)
	}
	return out
}

func putNode(m *runtimeval.Map, key string, n document.Node) {
	switch n.Kind() {
	case document.KindNull:
		m.PutNull(key)
	case document.KindBool:
		m.PutBoolean(key, n.AsBool())
	case document.KindNumber:
		if n.IsIntegral() {
			m.PutInt(key, n.AsInt64())
			return
		}
		m.PutDouble(key, normalizeDouble(n))
	case document.KindString:
		m.PutString(key, n.AsString())
	case document.KindObject:
		m.PutMap(key, DocumentToRuntimeMap(n.AsObject()))
	case document.KindArray:
		m.PutArray(key, DocumentToRuntimeArray(n.AsArray()))
	case document.KindLabel:
		m.PutString(key, n.AsString())
	}
}

func pushNode(a *runtimeval.Array, n document.Node) {
	switch n.Kind() {
	case document.KindNull:
		a.PushNull()
	case document.KindBool:
		a.PushBoolean(n.AsBool())
	case document.KindNumber:
		if n.IsIntegral() {
			a.PushInt(n.AsInt64())
			return
		}
		a.PushDouble(normalizeDouble(n))
	case document.KindString:
		a.PushString(n.AsString())
	case document.KindObject:
		a.PushMap(DocumentToRuntimeMap(n.AsObject()))
	case document.KindArray:
		a.PushArray(DocumentToRuntimeArray(n.AsArray()))
	case document.KindLabel:
		a.PushString(n.AsString())
	}
}

// normalizeDouble formats a non-integral number as the shortest text in its
// source precision and reparses it as a float64. A float32 0.1 therefore
// becomes 0.1 rather than 0.10000000149011612.
func normalizeDouble(n document.Node) float64 {
	var text string
	switch n.NumberKind() {
	case document.NumberLong:
		text = strconv.FormatInt(n.AsInt64(), 10)
	case document.NumberFloat:
		text = strconv.FormatFloat(n.AsFloat64(), 'g', -1, 32)
	default:
		return n.AsFloat64()
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return n.AsFloat64()
	}
	return f
}

// RuntimeMapToHost converts a runtime map into a host map. Keys holding an
// unrecognized type are skipped. The returned map is never nil; the error,
// when set, is a *multierror.Error listing every skipped key.
func RuntimeMapToHost(m *runtimeval.Map) (*host.Map, error) {
	var result *multierror.Error
	out := runtimeMapToHost(m, "", &result)
	return out, result.ErrorOrNil()
}

// RuntimeArrayToHost converts a runtime array into a host list with the same
// rules as RuntimeMapToHost.
func RuntimeArrayToHost(a *runtimeval.Array) (*host.List, error) {
	var result *multierror.Error
	out := runtimeArrayToHost(a, "", &result)
	return out, result.ErrorOrNil()
}

func runtimeMapToHost(m *runtimeval.Map, path string, result **multierror.Error) *host.Map {
	out := host.NewMap()
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		if hv, ok := runtimeValueToHost(v, joinKey(path, key), result); ok {
			out.Put(key, hv)
		}
	}
	return out
}

func runtimeArrayToHost(a *runtimeval.Array, path string, result **multierror.Error) *host.List {
	out := host.NewList()
	for i := 0; i < a.Len(); i++ {
		if hv, ok := runtimeValueToHost(a.At(i), joinIndex(path, i), result); ok {
			out.Append(hv)
		}
	}
	return out
}

func runtimeValueToHost(v runtimeval.Value, path string, result **multierror.Error) (host.Value, bool) {
	switch v.Type() {
	case runtimeval.TypeNull:
		return host.Null(), true
	case runtimeval.TypeBoolean:
		return host.Boolean(v.AsBoolean()), true
	case runtimeval.TypeNumber:
		return host.Number(v.AsDouble()), true
	case runtimeval.TypeString:
		return host.String(v.AsString()), true
	case runtimeval.TypeMap:
		return host.MapValue(runtimeMapToHost(v.AsMap(), path, result)), true
	case runtimeval.TypeArray:
		return host.ListValue(runtimeArrayToHost(v.AsArray(), path, result)), true
	default:
		*result = multierror.Append(*result, errors.NewConversionError(
			fmt.Sprintf("could not convert %s value at '%s'", v.Type(), path),
			errors.ErrUnsupportedValue,
		))
		return host.Value{}, false
	}
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func joinIndex(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
