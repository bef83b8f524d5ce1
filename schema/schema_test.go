package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/cbuf/errors"
)

func TestParse_InvalidCharacter(t *testing.T) {
	_, err := Parse("struct A { u8 x; } $")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidData))
	assert.Contains(t, err.Error(), "unexpected character $")
}

func TestSymbolTable_Resolution(t *testing.T) {
	g, err := Parse(`
enum Level { LOW, HIGH }
struct Header { u64 stamp; }
namespace sensors {
	enum Level { OFF, ON }
	struct Header @naked { u32 seq; }
	struct Reading {
		Header local;
		Level lvl;
		Stamp global_only;
	}
}
struct Stamp { u32 t; }
struct Top { Header h; sensors::Header sh; Level lvl; }
`)
	require.NoError(t, err)
	syms, err := NewSymbolTable(g)
	require.NoError(t, err)

	reading, err := syms.LookupStruct("sensors::Reading")
	require.NoError(t, err)

	local := syms.FindStruct(reading.Elements[0])
	require.NotNil(t, local)
	assert.Equal(t, "sensors::Header", local.QualifiedName(), "enclosing namespace wins")

	lvl := syms.FindEnum(reading.Elements[1])
	require.NotNil(t, lvl)
	assert.Equal(t, "sensors::Level", lvl.QualifiedName())
	assert.Nil(t, syms.FindStruct(reading.Elements[1]))

	global := syms.FindStruct(reading.Elements[2])
	require.NotNil(t, global)
	assert.Equal(t, "Stamp", global.QualifiedName(), "falls back to global")

	top, err := syms.LookupStruct("Top")
	require.NoError(t, err)
	assert.Equal(t, "Header", syms.FindStruct(top.Elements[0]).QualifiedName())
	assert.Equal(t, "sensors::Header", syms.FindStruct(top.Elements[1]).QualifiedName())
	assert.Equal(t, "Level", syms.FindEnum(top.Elements[2]).QualifiedName())
	assert.True(t, syms.FindSymbol(top.Elements[2]))
}

func TestSymbolTable_Unresolved(t *testing.T) {
	g, err := Parse(`struct A { Missing m; u32 plain; }`)
	require.NoError(t, err)
	syms, err := NewSymbolTable(g)
	require.NoError(t, err)

	st, err := syms.LookupStruct("A")
	require.NoError(t, err)
	assert.False(t, syms.FindSymbol(st.Elements[0]))
	assert.Nil(t, syms.FindStruct(st.Elements[1]), "scalars never resolve")
	assert.Nil(t, syms.FindEnum(st.Elements[1]))

	_, err = syms.LookupStruct("nope::A")
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
	_, err = syms.LookupEnum("A")
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestSymbolTable_Duplicates(t *testing.T) {
	g, err := Parse(`struct A { u8 x; } enum A { X }`)
	require.NoError(t, err)
	_, err = NewSymbolTable(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate definition")

	g, err = Parse(`namespace n { struct A { u8 x; } } struct A { u8 y; }`)
	require.NoError(t, err)
	_, err = NewSymbolTable(g)
	assert.NoError(t, err, "same name in different namespaces is fine")
}

func TestDecompose(t *testing.T) {
	ns, name := Decompose("geo::Point")
	assert.Equal(t, "geo", ns)
	assert.Equal(t, "Point", name)

	ns, name = Decompose("Point")
	assert.Empty(t, ns)
	assert.Equal(t, "Point", name)
}
