package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_PutKeepsOrderAndReplaces(t *testing.T) {
	m := NewMap().
		Put("first", Number(1)).
		Put("second", String("two")).
		Put("first", Boolean(true))

	assert.Equal(t, []string{"first", "second"}, m.Keys())
	assert.Equal(t, TypeBoolean, m.Type("first"))
	assert.Equal(t, TypeNull, m.Type("missing"))
}

func TestMap_Native(t *testing.T) {
	m := NewMap().
		Put("n", Number(2)).
		Put("list", ListValue(NewList(String("a"), Null()))).
		Put("blob", Binary([]byte{1}))

	assert.Equal(t, map[string]any{
		"n":    2.0,
		"list": []any{"a", nil},
		"blob": []byte{1},
	}, m.Native())
}

func TestNilContainers(t *testing.T) {
	var m *Map
	var l *List
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())
	assert.Equal(t, map[string]any{}, m.Native())
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, []any{}, l.Native())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "Binary", TypeBinary.String())
	assert.Equal(t, "Map", TypeMap.String())
}
