package converter

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/mcncl/smtbridge/internal/document"
)

// DocumentFromNative converts a plain Go value, as handed over by the vendor
// SDK, into a document node. Map keys are sorted so the resulting object has a
// deterministic order. Integer-kinded values implementing fmt.Stringer are
// treated as enumerations and become labels. Values with no document form
// become opaque nodes, which the runtime direction drops.
func DocumentFromNative(v any) document.Node {
	switch val := v.(type) {
	case nil:
		return document.Null()
	case document.Node:
		return val
	case bool:
		return document.Bool(val)
	case string:
		return document.String(val)
	case json.Number:
		if node, err := document.NumberFromText(val.String()); err == nil {
			return node
		}
		return document.String(val.String())
	case map[string]any:
		return document.FromObject(objectFromNative(val))
	case []any:
		arr := make(document.Array, len(val))
		for i, item := range val {
			arr[i] = DocumentFromNative(item)
		}
		return document.FromArray(arr)
	case fmt.Stringer:
		if k := reflect.ValueOf(val).Kind(); isIntegerKind(k) || k == reflect.String {
			return document.Label(val.String())
		}
	}

	rv := reflect.ValueOf(v)
	switch kind := rv.Kind(); {
	case kind == reflect.Int8 || kind == reflect.Int16 || kind == reflect.Int32:
		return document.Int(int32(rv.Int()))
	case kind == reflect.Uint8 || kind == reflect.Uint16:
		return document.Int(int32(rv.Uint()))
	case kind == reflect.Int || kind == reflect.Int64:
		return integerNode(rv.Int())
	case kind == reflect.Uint || kind == reflect.Uint32 || kind == reflect.Uint64 || kind == reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return document.Double(float64(u))
		}
		return integerNode(int64(u))
	case kind == reflect.String:
		// Named string types are enums.
		return document.Label(rv.String())
	case kind == reflect.Bool:
		return document.Bool(rv.Bool())
	case kind == reflect.Float32:
		return document.Float(float32(rv.Float()))
	case kind == reflect.Float64:
		return document.Double(rv.Float())
	case kind == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		obj := document.NewObject()
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, DocumentFromNative(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()))
		}
		return document.FromObject(obj)
	case kind == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8, kind == reflect.Array:
		arr := make(document.Array, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			arr[i] = DocumentFromNative(rv.Index(i).Interface())
		}
		return document.FromArray(arr)
	default:
		return document.Opaque(v)
	}
}

func objectFromNative(m map[string]any) *document.Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := document.NewObject()
	for _, k := range keys {
		obj.Set(k, DocumentFromNative(m[k]))
	}
	return obj
}

func integerNode(i int64) document.Node {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return document.Int(int32(i))
	}
	return document.Long(i)
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
