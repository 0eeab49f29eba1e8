package converter

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/mcncl/smtbridge/internal/document"
	"github.com/mcncl/smtbridge/internal/errors"
	"github.com/mcncl/smtbridge/internal/host"
	"github.com/mcncl/smtbridge/internal/runtimeval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleHostMap builds {"a": null, "b": [1, "x", {"c": true}]}.
func sampleHostMap() *host.Map {
	inner := host.NewMap().Put("c", host.Boolean(true))
	list := host.NewList(host.Number(1), host.String("x"), host.MapValue(inner))
	return host.NewMap().
		Put("a", host.Null()).
		Put("b", host.ListValue(list))
}

func TestHostMapToDocument_AllVariants(t *testing.T) {
	nested := host.NewMap().Put("deep", host.String("yes"))
	m := host.NewMap().
		Put("null", host.Null()).
		Put("bool", host.Boolean(true)).
		Put("number", host.Number(7)).
		Put("string", host.String("text")).
		Put("map", host.MapValue(nested)).
		Put("list", host.ListValue(host.NewList(host.Number(1.5), host.Null())))

	obj, err := HostMapToDocument(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"null", "bool", "number", "string", "map", "list"}, obj.Keys())

	n, _ := obj.Get("null")
	assert.True(t, n.IsNull())

	n, _ = obj.Get("bool")
	assert.Equal(t, document.KindBool, n.Kind())
	assert.True(t, n.AsBool())

	n, _ = obj.Get("number")
	assert.Equal(t, document.KindNumber, n.Kind())
	assert.Equal(t, document.NumberDouble, n.NumberKind(), "host numbers are always widened to double")
	assert.Equal(t, 7.0, n.AsFloat64())

	n, _ = obj.Get("string")
	assert.Equal(t, "text", n.AsString())

	n, _ = obj.Get("map")
	deep, ok := n.AsObject().Get("deep")
	require.True(t, ok)
	assert.Equal(t, "yes", deep.AsString())

	n, _ = obj.Get("list")
	require.Len(t, n.AsArray(), 2)
	assert.Equal(t, 1.5, n.AsArray()[0].AsFloat64())
	assert.True(t, n.AsArray()[1].IsNull())
}

func TestHostMapToDocument_NilInput(t *testing.T) {
	obj, err := HostMapToDocument(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, obj.Len())
}

func TestHostMapToDocument_UnsupportedFailsFast(t *testing.T) {
	m := host.NewMap().
		Put("ok", host.String("fine")).
		Put("blob", host.Binary([]byte{0xde, 0xad}))

	obj, err := HostMapToDocument(m)
	require.Error(t, err)
	assert.Nil(t, obj, "no partial result on failure")
	assert.ErrorIs(t, err, errors.ErrUnsupportedValue)
	assert.Contains(t, err.Error(), "'blob'")
	assert.Contains(t, err.Error(), "Binary")
}

func TestHostMapToDocument_UnsupportedNestedPath(t *testing.T) {
	inner := host.NewMap().Put("c", host.Opaque(struct{}{}))
	list := host.NewList(host.Number(1), host.String("x"), host.MapValue(inner))
	m := host.NewMap().Put("b", host.ListValue(list))

	_, err := HostMapToDocument(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'b[2].c'")
}

func TestHostListToDocument_UnsupportedElement(t *testing.T) {
	l := host.NewList(host.String("a"), host.Binary(nil))

	arr, err := HostListToDocument(l)
	require.Error(t, err)
	assert.Nil(t, arr)
	assert.ErrorIs(t, err, errors.ErrUnsupportedValue)
	assert.Contains(t, err.Error(), "'[1]'")
}

func TestDocumentToRuntimeMap_EmptyInputs(t *testing.T) {
	m := DocumentToRuntimeMap(nil)
	require.NotNil(t, m)
	assert.Equal(t, 0, m.Len())

	m = DocumentToRuntimeMap(document.NewObject())
	require.NotNil(t, m)
	assert.Equal(t, 0, m.Len())

	a := DocumentToRuntimeArray(nil)
	require.NotNil(t, a)
	assert.Equal(t, 0, a.Len())

	a = DocumentToRuntimeArray(document.Array{})
	require.NotNil(t, a)
	assert.Equal(t, 0, a.Len())
}

func TestDocumentToRuntimeMap_NumericSubtypes(t *testing.T) {
	obj := document.NewObject().
		Set("double", document.Double(3.0)).
		Set("int", document.Int(3)).
		Set("long", document.Long(1<<40)).
		Set("float", document.Float(0.1))

	m := DocumentToRuntimeMap(obj)

	v, _ := m.Get("double")
	assert.Equal(t, runtimeval.TypeNumber, v.Type())
	assert.False(t, v.IsInt())
	assert.Equal(t, 3.0, v.AsDouble())

	v, _ = m.Get("int")
	assert.True(t, v.IsInt())
	assert.Equal(t, int64(3), v.AsInt())

	v, _ = m.Get("long")
	assert.False(t, v.IsInt(), "64-bit integers become doubles")
	assert.Equal(t, float64(1<<40), v.AsDouble())

	v, _ = m.Get("float")
	assert.False(t, v.IsInt())
	assert.Equal(t, 0.1, v.AsDouble(), "single precision is normalized through its text form")
}

func TestNormalizeDouble_BitIdenticalForDoubles(t *testing.T) {
	values := []float64{0, -0.5, 1.0 / 3.0, math.MaxFloat64, math.SmallestNonzeroFloat64, 123456789.123456789}
	for _, f := range values {
		t.Run(fmt.Sprintf("%g", f), func(t *testing.T) {
			got := normalizeDouble(document.Double(f))
			assert.Equal(t, math.Float64bits(f), math.Float64bits(got))
		})
	}
}

func TestDocumentToRuntimeMap_LabelsAndOpaque(t *testing.T) {
	obj := document.NewObject().
		Set("status", document.Label("ACTIVE")).
		Set("handle", document.Opaque(make(chan int))).
		Set("after", document.String("still here"))

	m := DocumentToRuntimeMap(obj)
	assert.Equal(t, []string{"status", "after"}, m.Keys())
	assert.Equal(t, runtimeval.TypeString, m.Type("status"))
	assert.Equal(t, "ACTIVE", m.GetString("status"))
	assert.Equal(t, "still here", m.GetString("after"))
}

func TestDocumentToRuntimeArray_SkipsOpaqueElements(t *testing.T) {
	arr := document.Array{
		document.String("a"),
		document.Opaque(struct{}{}),
		document.Int(2),
		document.Null(),
	}

	a := DocumentToRuntimeArray(arr)
	require.Equal(t, 3, a.Len())
	assert.Equal(t, "a", a.At(0).AsString())
	assert.True(t, a.At(1).IsInt())
	assert.Equal(t, runtimeval.TypeNull, a.Type(2))
}

func TestDocumentToRuntimeMap_NestedEmptyContainers(t *testing.T) {
	obj := document.NewObject().
		Set("map", document.FromObject(document.NewObject())).
		Set("list", document.ArrayOf())

	m := DocumentToRuntimeMap(obj)
	assert.Equal(t, runtimeval.TypeMap, m.Type("map"))
	assert.Equal(t, 0, m.GetMap("map").Len())
	assert.Equal(t, runtimeval.TypeArray, m.Type("list"))
	assert.Equal(t, 0, m.GetArray("list").Len())
}

func TestHostToRuntime_EndToEnd(t *testing.T) {
	obj, err := HostMapToDocument(sampleHostMap())
	require.NoError(t, err)

	m := DocumentToRuntimeMap(obj)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, runtimeval.TypeNull, m.Type("a"))

	b := m.GetArray("b")
	require.Equal(t, 3, b.Len())
	assert.Equal(t, 1.0, b.At(0).AsDouble())
	assert.Equal(t, "x", b.At(1).AsString())
	require.Equal(t, runtimeval.TypeMap, b.Type(2))
	assert.True(t, b.At(2).AsMap().GetBoolean("c"))

	assert.Equal(t, map[string]any{
		"a": nil,
		"b": []any{1.0, "x", map[string]any{"c": true}},
	}, m.Interface())
}

func TestRuntimeMapToHost_AllVariants(t *testing.T) {
	m := runtimeval.NewMap().
		PutNull("null").
		PutBoolean("bool", false).
		PutInt("int", 5).
		PutDouble("double", 2.5).
		PutString("string", "s").
		PutMap("map", runtimeval.NewMap().PutString("k", "v")).
		PutArray("list", runtimeval.NewArray().PushInt(1).PushNull())

	out, err := RuntimeMapToHost(m)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"null":   nil,
		"bool":   false,
		"int":    5.0,
		"double": 2.5,
		"string": "s",
		"map":    map[string]any{"k": "v"},
		"list":   []any{1.0, nil},
	}, out.Native())
	assert.Equal(t, host.TypeNumber, out.Type("int"))
}

func TestRuntimeMapToHost_UnsupportedRecoversAndContinues(t *testing.T) {
	m := runtimeval.NewMap().
		PutString("before", "x").
		PutOpaque("callback", func() {}).
		PutString("after", "y").
		PutMap("nested", runtimeval.NewMap().PutOpaque("fn", func() {}).PutBoolean("ok", true))

	out, err := RuntimeMapToHost(m)
	require.NotNil(t, out, "partial result is returned alongside the error")
	assert.Equal(t, []string{"before", "after", "nested"}, out.Keys())
	assert.Equal(t, map[string]any{"ok": true}, out.Native()["nested"])

	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, merr.Errors[0], errors.ErrUnsupportedValue)
	assert.Contains(t, merr.Errors[0].Error(), "'callback'")
	assert.Contains(t, merr.Errors[1].Error(), "'nested.fn'")
}

func TestRuntimeArrayToHost_SkipsUnsupportedElements(t *testing.T) {
	a := runtimeval.NewArray().
		PushString("a").
		PushOpaque(struct{}{}).
		PushDouble(0.5).
		PushArray(runtimeval.NewArray().PushOpaque(1))

	out, err := RuntimeArrayToHost(a)
	require.NotNil(t, out)
	assert.Equal(t, []any{"a", 0.5, []any{}}, out.Native())

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)
	assert.Contains(t, merr.Errors[0].Error(), "'[1]'")
	assert.Contains(t, merr.Errors[1].Error(), "'[3][0]'")
}

func TestRuntimeMapToHost_NilAndEmpty(t *testing.T) {
	out, err := RuntimeMapToHost(nil)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 0, out.Len())

	list, err := RuntimeArrayToHost(runtimeval.NewArray())
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
}

func TestRoundTrip_PreservesKeySets(t *testing.T) {
	original := sampleHostMap().Put("score", host.Number(99.5)).Put("name", host.String("n"))

	obj, err := HostMapToDocument(original)
	require.NoError(t, err)
	back, err := RuntimeMapToHost(DocumentToRuntimeMap(obj))
	require.NoError(t, err)

	assert.Equal(t, original.Keys(), back.Keys())
	assert.Equal(t, original.Native(), back.Native())
}

func TestRuntimeToHost_IntegersWiden(t *testing.T) {
	m := DocumentToRuntimeMap(document.NewObject().Set("n", document.Int(3)))
	require.True(t, m.Type("n") == runtimeval.TypeNumber)

	out, err := RuntimeMapToHost(m)
	require.NoError(t, err)
	v, ok := out.Get("n")
	require.True(t, ok)
	assert.Equal(t, 3.0, v.AsNumber())
}

// buildPayload returns a moderately deep host map whose contents depend on seed.
func buildPayload(seed int) *host.Map {
	items := host.NewList()
	for i := 0; i < 10; i++ {
		entry := host.NewMap().
			Put("index", host.Number(float64(i))).
			Put("label", host.String(fmt.Sprintf("item-%d-%d", seed, i))).
			Put("even", host.Boolean(i%2 == 0))
		items.Append(host.MapValue(entry))
	}
	return host.NewMap().
		Put("seed", host.Number(float64(seed))).
		Put("items", host.ListValue(items)).
		Put("missing", host.Null())
}

func TestConcurrentConversionsMatchSequential(t *testing.T) {
	const workers = 16
	const rounds = 50

	expected := make([]map[string]any, workers)
	for w := 0; w < workers; w++ {
		obj, err := HostMapToDocument(buildPayload(w))
		require.NoError(t, err)
		back, err := RuntimeMapToHost(DocumentToRuntimeMap(obj))
		require.NoError(t, err)
		expected[w] = back.Native()
	}

	var wg sync.WaitGroup
	failures := make(chan string, workers*rounds)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				obj, err := HostMapToDocument(buildPayload(w))
				if err != nil {
					failures <- err.Error()
					return
				}
				back, err := RuntimeMapToHost(DocumentToRuntimeMap(obj))
				if err != nil {
					failures <- err.Error()
					return
				}
				if !assert.ObjectsAreEqual(expected[w], back.Native()) {
					failures <- fmt.Sprintf("worker %d round %d diverged", w, r)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(failures)

	for f := range failures {
		t.Error(f)
	}
}
