package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
)

func hashOf(t *testing.T, src, name string) uint64 {
	t.Helper()
	_, c := load(t, src)
	h, err := c.Hash(lookup(t, c, name))
	require.NoError(t, err)
	return h
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t, HashSeed, HashBytes(nil))
	assert.Equal(t, HashSeed*33+'a', HashBytes([]byte("a")))
	assert.Equal(t, (HashSeed*33+'a')*33+'b', HashBytes([]byte("ab")))
}

func TestHash_NamingInvariance(t *testing.T) {
	base := hashOf(t, `struct Point { f32 x; f32 y; }`, "Point")

	assert.Equal(t, base, hashOf(t, `struct Vec2 { f32 x; f32 y; }`, "Vec2"), "struct rename")
	assert.Equal(t, base, hashOf(t, `namespace geo { struct Point { f32 x; f32 y; } }`, "geo::Point"), "namespace")
	assert.Equal(t, base, hashOf(t, `struct P @naked { f32 x; f32 y; }`, "P"), "naked flag is not shape")

	nestedA := hashOf(t, `struct In { u8 v; } struct Out { In a; }`, "Out")
	nestedB := hashOf(t, `namespace z { struct Other { u8 v; } struct Wrap { Other a; } }`, "z::Wrap")
	assert.Equal(t, nestedA, nestedB, "nested struct renamed")
}

func TestHash_ShapeSensitivity(t *testing.T) {
	base := hashOf(t, `struct S { u32 a; f32 b; }`, "S")
	variants := map[string]string{
		"field order":   `struct S { f32 b; u32 a; }`,
		"field name":    `struct S { u32 a; f32 c; }`,
		"field type":    `struct S { u32 a; f64 b; }`,
		"static array":  `struct S { u32 a[2]; f32 b; }`,
		"array bound":   `struct S { u32 a[3]; f32 b; }`,
		"compact array": `struct S { u32 a[2] @compact; f32 b; }`,
		"dynamic array": `struct S { u32 a[]; f32 b; }`,
		"extra field":   `struct S { u32 a; f32 b; u8 c; }`,
	}
	seen := map[uint64]string{base: "base"}
	for name, src := range variants {
		h := hashOf(t, src, "S")
		if prev, ok := seen[h]; ok {
			t.Errorf("%s collides with %s", name, prev)
		}
		seen[h] = name
	}

	nested := hashOf(t, `struct In { u8 v; } struct Out { In a; }`, "Out")
	changed := hashOf(t, `struct In { u16 v; } struct Out { In a; }`, "Out")
	assert.NotEqual(t, nested, changed, "transitive shape change")
}

func TestHash_Signature(t *testing.T) {
	_, c := load(t, `
enum Color { RED }
struct In { u8 v; }
struct S { s32 a[2]; Color c; In in; string s; short_string ss; bool b; }
`)
	inHash, err := c.Hash(lookup(t, c, "In"))
	require.NoError(t, err)

	sig, err := c.Signature(lookup(t, c, "S"))
	require.NoError(t, err)
	want := "struct \n" +
		"[2] int32_t a; \n" +
		"Color c;\n" +
		upperHex(inHash) + " in;\n" +
		"std::string s; \n" +
		"VString<15> ss; \n" +
		"bool b; \n"
	assert.Equal(t, want, sig)
}

func upperHex(v uint64) string {
	const digits = "0123456789ABCDEF"
	if v == 0 {
		return "0"
	}
	var b []byte
	for v > 0 {
		b = append([]byte{digits[v%16]}, b...)
		v /= 16
	}
	return string(b)
}

func TestHash_Memoized(t *testing.T) {
	_, c := load(t, `struct In { u8 v; } struct Out { In a; In b; }`)
	out := lookup(t, c, "Out")
	h1, err := c.Hash(out)
	require.NoError(t, err)
	visits := c.Visits(ast.MemoHash)
	assert.Equal(t, 2, visits)

	h2, err := c.Hash(out)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, visits, c.Visits(ast.MemoHash))
	assert.Equal(t, h1, out.HashValue)
}

func TestHash_Errors(t *testing.T) {
	_, c := load(t, `struct A { Missing m; }`)
	_, err := c.Hash(lookup(t, c, "A"))
	assert.True(t, errors.IsKind(err, errors.KindSchemaResolution))

	_, c = load(t, `struct A { B b; } struct B { A a[]; }`)
	_, err = c.Hash(lookup(t, c, "A"))
	assert.True(t, errors.IsKind(err, errors.KindUnsupportedShape))
}
