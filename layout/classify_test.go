package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
)

func TestBounded(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"scalars", `struct S { u32 a; f64 b; }`, true},
		{"dynamic string", `struct S { u32 a; string name; }`, false},
		{"short string", `struct S { u32 a; short_string name; }`, true},
		{"dynamic array", `struct S { u8 data[]; }`, false},
		{"compact array", `struct S { u8 data[8] @compact; }`, true},
		{"static array", `struct S { u8 data[8]; }`, true},
		{"enum", `enum E { A } struct S { E e; }`, true},
		{"nested unbounded", `struct In { string s; } struct S { In in; }`, false},
		{"deep unbounded", `struct A { u8 d[]; } struct B { A a; } struct S { B b[2]; }`, false},
		{"nested bounded", `struct In { short_string s; } struct S { In in[4]; }`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := load(t, tt.src)
			got, err := c.Bounded(lookup(t, c, "S"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasCompact(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"none", `struct S { u32 a[4]; u8 b[]; }`, false},
		{"direct", `struct S { u32 a[4] @compact; }`, true},
		{"nested", `struct In { u8 v[2] @compact; } struct S { u8 x; In in; }`, true},
		{"string excluded", `struct S { string names[4] @compact; }`, false},
		{"enum leaf", `enum E { A } struct S { E e[3]; }`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := load(t, tt.src)
			got, err := c.HasCompact(lookup(t, c, "S"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifiers_Memoized(t *testing.T) {
	_, c := load(t, `struct In { u8 v[2] @compact; } struct S { In a; In b; }`)
	st := lookup(t, c, "S")

	for i := 0; i < 2; i++ {
		b, err := c.Bounded(st)
		require.NoError(t, err)
		assert.True(t, b)
		h, err := c.HasCompact(st)
		require.NoError(t, err)
		assert.True(t, h)
	}
	assert.Equal(t, 2, c.Visits(ast.MemoBounded))
	assert.Equal(t, 2, c.Visits(ast.MemoCompact))
}

func TestClassifiers_Errors(t *testing.T) {
	_, c := load(t, `struct S { Missing m; }`)
	_, err := c.Bounded(lookup(t, c, "S"))
	assert.True(t, errors.IsKind(err, errors.KindSchemaResolution))
	_, err = c.HasCompact(lookup(t, c, "S"))
	assert.True(t, errors.IsKind(err, errors.KindSchemaResolution))

	_, c = load(t, `struct S { T t; } struct T { S s; }`)
	_, err = c.Bounded(lookup(t, c, "S"))
	assert.True(t, errors.IsKind(err, errors.KindUnsupportedShape))
}
