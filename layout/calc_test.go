package layout

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
	"github.com/wippyai/cbuf/schema"
)

func load(t *testing.T, src string) (*ast.Graph, *Calculator) {
	t.Helper()
	g, err := schema.Parse(src)
	require.NoError(t, err)
	syms, err := schema.NewSymbolTable(g)
	require.NoError(t, err)
	return g, NewCalculator(syms)
}

func lookup(t *testing.T, c *Calculator, name string) *ast.StructDef {
	t.Helper()
	st, err := c.Symbols().LookupStruct(name)
	require.NoError(t, err)
	return st
}

func TestStructSize_Point(t *testing.T) {
	_, c := load(t, `
struct Point { f32 x; f32 y; }
struct NakedPoint @naked { f32 x; f32 y; }
`)
	size, err := c.StructSize(lookup(t, c, "Point"))
	require.NoError(t, err)
	assert.Equal(t, uint32(20), size)

	size, err = c.StructSize(lookup(t, c, "NakedPoint"))
	require.NoError(t, err)
	assert.Equal(t, uint32(8), size)
}

func TestStructSize_Offsets(t *testing.T) {
	_, c := load(t, `
enum Mode { A, B }
struct Inner @naked { u16 a; u8 b; }
struct All {
	u8 b1;
	bool flag;
	s16 h;
	u32 w;
	f64 d;
	short_string tag;
	string name;
	Mode mode;
	Inner inner;
	u32 fixed[3];
	u16 capped[4] @compact;
	f32 dyn[];
	Inner many[2];
}`)
	st := lookup(t, c, "All")
	size, err := c.StructSize(st)
	require.NoError(t, err)

	want := []struct {
		offset, size, typeSize uint32
	}{
		{12, 1, 1},                 // b1
		{13, 1, 1},                 // flag
		{14, 2, 2},                 // h
		{16, 4, 4},                 // w
		{20, 8, 8},                 // d
		{28, 16, 16},               // tag
		{44, StringHandleSize, 16}, // name
		{60, 4, 4},                 // mode
		{64, 3, 3},                 // inner
		{67, 12, 4},                // fixed
		{79, 12, 2},                // capped: 4 + 4*2
		{91, SliceHandleSize, 0},   // dyn
		{115, 6, 3},                // many
	}
	require.Len(t, st.Elements, len(want))
	for i, w := range want {
		el := st.Elements[i]
		assert.Equal(t, w.offset, el.NativeOffset, "offset of %s", el.Name)
		assert.Equal(t, w.size, el.NativeSize, "size of %s", el.Name)
		assert.Equal(t, w.typeSize, el.TypeSize, "type size of %s", el.Name)
	}
	assert.Equal(t, uint32(121), size, spew.Sdump(st.Elements))
}

func TestStructSize_Memoized(t *testing.T) {
	_, c := load(t, `
struct Leaf { u32 v; }
struct Mid { Leaf a; Leaf b; }
struct Top { Mid m; Leaf l; }
`)
	top := lookup(t, c, "Top")
	first, err := c.StructSize(top)
	require.NoError(t, err)
	visits := c.Visits(ast.MemoSize)
	assert.Equal(t, 3, visits, "each struct traversed exactly once")

	second, err := c.StructSize(top)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, visits, c.Visits(ast.MemoSize))
	assert.True(t, top.Done.Has(ast.MemoSize))

	// A fresh calculator sees the frozen values too.
	fresh := NewCalculator(c.Symbols())
	third, err := fresh.StructSize(top)
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Zero(t, fresh.Visits(ast.MemoSize))
}

func TestStructSize_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind errors.Kind
	}{
		{"unresolved", `struct A { Missing m; }`, errors.KindSchemaResolution},
		{"multidimensional", `struct A { u8 grid[2][2]; }`, errors.KindUnsupportedShape},
		{"cycle", `struct A { B b; } struct B { A a; }`, errors.KindUnsupportedShape},
		{"self", `struct A { A next[2]; }`, errors.KindUnsupportedShape},
		{"overflow", `struct A { u64 huge[4294967295]; }`, errors.KindUnsupportedShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := load(t, tt.src)
			_, err := c.StructSize(lookup(t, c, "A"))
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestComputeAll(t *testing.T) {
	g, c := load(t, `
struct Good { u32 v; }
namespace n { struct Bad { Nope x; } }
`)
	err := c.ComputeAll(g, ast.MemoSize|ast.MemoHash)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSchemaResolution))
	assert.Contains(t, err.Error(), "n::Bad")
	assert.True(t, lookup(t, c, "Good").Done.Has(ast.MemoSize|ast.MemoHash))

	g, c = load(t, `struct A { u32 v; string s; u8 c[2] @compact; } struct B { A a; }`)
	require.NoError(t, c.ComputeAll(g, ast.MemoSize|ast.MemoHash|ast.MemoBounded|ast.MemoCompact))
	b := lookup(t, c, "B")
	assert.True(t, b.Done.Has(ast.MemoSize|ast.MemoHash|ast.MemoBounded|ast.MemoCompact))
	assert.False(t, b.Bounded)
	assert.True(t, b.HasCompact)
}

func TestScalarSize(t *testing.T) {
	assert.Equal(t, uint32(1), ScalarSize(ast.TypeBool))
	assert.Equal(t, uint32(2), ScalarSize(ast.TypeS16))
	assert.Equal(t, uint32(4), ScalarSize(ast.TypeF32))
	assert.Equal(t, uint32(8), ScalarSize(ast.TypeU64))
	assert.Equal(t, uint32(16), ScalarSize(ast.TypeShortString))
	assert.Equal(t, uint32(0), ScalarSize(ast.TypeCustom))
}

func TestSafeMath(t *testing.T) {
	_, ok := SafeMulU32(1<<20, 1<<12)
	assert.False(t, ok)
	v, ok := SafeMulU32(3, 4)
	assert.True(t, ok)
	assert.Equal(t, uint32(12), v)
	_, ok = SafeAddU32(^uint32(0), 1)
	assert.False(t, ok)
}
